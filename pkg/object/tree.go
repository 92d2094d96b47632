package object

import (
	"fmt"
	"strings"
)

// treeObject is the stored form of one Directory level. Subdirectories
// are referenced by their own id, so every subtree is a separate object
// and its id covers its whole content.
type treeObject struct {
	Entries map[string]treeRef `cbor:"e"`
}

type treeRef struct {
	Kind EntryKind `cbor:"k"`
	Hash Hash      `cbor:"h"`
}

// WriteTree pushes d and all of its subdirectories into s, bottom-up, and
// returns the id of d. Every written Directory remembers its id.
func WriteTree(s Store, d *Directory) (Hash, error) {
	if d == nil {
		d = NewDirectory()
	}
	obj := treeObject{Entries: make(map[string]treeRef, len(d.entries))}
	for name, e := range d.entries {
		switch e.Kind {
		case KindFile:
			obj.Entries[name] = treeRef{Kind: KindFile, Hash: e.Blob}
		case KindDir:
			sub, err := WriteTree(s, e.Tree)
			if err != nil {
				return ZeroHash, fmt.Errorf("write tree %q: %w", name, err)
			}
			obj.Entries[name] = treeRef{Kind: KindDir, Hash: sub}
		default:
			return ZeroHash, fmt.Errorf("write tree %q: unknown entry kind %d", name, e.Kind)
		}
	}

	h, err := Insert(s, obj)
	if err != nil {
		return ZeroHash, err
	}
	d.id, d.hasID = h, true
	return h, nil
}

// ReadTree loads the Directory with id h, and all of its subdirectories,
// from s.
func ReadTree(s Store, h Hash) (*Directory, error) {
	obj, err := Read[treeObject](s, h)
	if err != nil {
		return nil, err
	}

	d := &Directory{entries: make(map[string]Entry, len(obj.Entries))}
	for name, ref := range obj.Entries {
		if err := validEntryName(name); err != nil {
			return nil, malformedObject(h, err)
		}
		switch ref.Kind {
		case KindFile:
			d.entries[name] = FileEntry(ref.Hash)
		case KindDir:
			sub, err := ReadTree(s, ref.Hash)
			if err != nil {
				return nil, fmt.Errorf("read tree %s/%s: %w", h.Short(), name, err)
			}
			d.entries[name] = DirEntry(sub)
		default:
			return nil, malformedObject(h, fmt.Errorf("entry %q: unknown kind %d", name, ref.Kind))
		}
	}
	d.id, d.hasID = h, true
	return d, nil
}

// validEntryName rejects names that could not have come from a directory
// listing and would escape the tree when materialised.
func validEntryName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("invalid entry name %q", name)
	case strings.ContainsAny(name, "/\x00"):
		return fmt.Errorf("invalid entry name %q", name)
	}
	return nil
}

// WriteCommit serializes and stores a Commit.
func WriteCommit(s Store, c Commit) (Hash, error) {
	return Insert(s, c)
}

// ReadCommit reads and deserializes a Commit.
func ReadCommit(s Store, h Hash) (Commit, error) {
	return Read[Commit](s, h)
}
