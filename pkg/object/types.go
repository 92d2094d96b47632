package object

import (
	"path"
	"sort"
)

// EntryKind identifies what a directory entry refers to.
type EntryKind uint8

const (
	KindFile EntryKind = 1
	KindDir  EntryKind = 2
)

func (k EntryKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	default:
		return "unknown"
	}
}

// Entry is one child of a Directory: either a file, identified by the
// fingerprint of its content, or a nested Directory owned by its parent.
type Entry struct {
	Kind EntryKind
	Blob Hash       // set when Kind == KindFile
	Tree *Directory // set when Kind == KindDir
}

// FileEntry returns an Entry for a file whose content hashes to blob.
func FileEntry(blob Hash) Entry {
	return Entry{Kind: KindFile, Blob: blob}
}

// DirEntry returns an Entry owning the subtree d.
func DirEntry(d *Directory) Entry {
	if d == nil {
		d = NewDirectory()
	}
	return Entry{Kind: KindDir, Tree: d}
}

// IsDir reports whether e is a subdirectory.
func (e Entry) IsDir() bool {
	return e.Kind == KindDir
}

// Equal reports whether e and other describe the same content.
func (e Entry) Equal(other Entry) bool {
	if e.Kind != other.Kind {
		return false
	}
	if e.Kind == KindDir {
		return e.Tree.Equal(other.Tree)
	}
	return e.Blob == other.Blob
}

// Directory is a snapshot of one directory level. Names are unique within
// a Directory and children are owned by value, so a Directory is always a
// tree. A Directory must not be modified after it has been added to a
// parent or written to a store.
type Directory struct {
	entries map[string]Entry

	// id is the fingerprint of this subtree once it has been written to
	// or read from a store.
	id    Hash
	hasID bool
}

// NewDirectory returns an empty Directory.
func NewDirectory() *Directory {
	return &Directory{entries: make(map[string]Entry)}
}

// Put sets the entry stored under name, replacing any previous one.
func (d *Directory) Put(name string, e Entry) {
	if d.entries == nil {
		d.entries = make(map[string]Entry)
	}
	d.entries[name] = e
	d.hasID = false
}

// Lookup returns the entry stored under name.
func (d *Directory) Lookup(name string) (Entry, bool) {
	if d == nil {
		return Entry{}, false
	}
	e, ok := d.entries[name]
	return e, ok
}

// Len returns the number of immediate children.
func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

// Names returns the immediate child names in sorted order.
func (d *Directory) Names() []string {
	if d == nil {
		return nil
	}
	names := make([]string, 0, len(d.entries))
	for name := range d.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ID returns the fingerprint of the subtree if it is known, which is the
// case after WriteTree or ReadTree.
func (d *Directory) ID() (Hash, bool) {
	if d == nil {
		return ZeroHash, false
	}
	return d.id, d.hasID
}

// Equal reports whether d and other hold the same content. Known ids are
// compared first; structural comparison is the fallback.
func (d *Directory) Equal(other *Directory) bool {
	if d == other {
		return true
	}
	if a, ok := d.ID(); ok {
		if b, ok := other.ID(); ok {
			return a == b
		}
	}
	if d.Len() != other.Len() {
		return false
	}
	if d == nil || other == nil {
		return true
	}
	for name, e := range d.entries {
		o, ok := other.entries[name]
		if !ok || !e.Equal(o) {
			return false
		}
	}
	return true
}

// Walk calls fn for every entry in the subtree, depth first with names
// visited in sorted order. Paths are slash-separated and relative to d.
// Directories are visited before their children.
func (d *Directory) Walk(fn func(p string, e Entry) error) error {
	return d.walk("", fn)
}

func (d *Directory) walk(prefix string, fn func(string, Entry) error) error {
	for _, name := range d.Names() {
		e := d.entries[name]
		p := name
		if prefix != "" {
			p = path.Join(prefix, name)
		}
		if err := fn(p, e); err != nil {
			return err
		}
		if e.IsDir() {
			if err := e.Tree.walk(p, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// Commit is an immutable node in the history graph. Its id is the
// fingerprint of its encoding, so it changes whenever the tree, the
// message or any parent changes. Parent order is significant: the first
// parent is the mainline.
type Commit struct {
	Tree    Hash   `cbor:"t"`
	Message string `cbor:"m"`
	Parents []Hash `cbor:"p"`
}

// NewCommit returns a Commit for tree with the given parents. Parents are
// not checked for existence.
func NewCommit(tree Hash, message string, parents ...Hash) Commit {
	c := Commit{Tree: tree, Message: message}
	if len(parents) > 0 {
		c.Parents = make([]Hash, len(parents))
		copy(c.Parents, parents)
	}
	return c
}

// IsRoot reports whether c has no parents.
func (c Commit) IsRoot() bool {
	return len(c.Parents) == 0
}

// IsMerge reports whether c has two or more parents.
func (c Commit) IsMerge() bool {
	return len(c.Parents) > 1
}
