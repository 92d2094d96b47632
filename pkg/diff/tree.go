package diff

import (
	"path"
	"sort"

	"github.com/odvcencio/dotlog/pkg/object"
)

// ChangeType classifies what happened at a path between two snapshots.
type ChangeType int

const (
	Added    ChangeType = iota // Path exists only in the new snapshot.
	Deleted                    // Path exists only in the old snapshot.
	Modified                   // Path exists in both but its content or kind changed.
)

func (c ChangeType) String() string {
	switch c {
	case Added:
		return "added"
	case Deleted:
		return "deleted"
	case Modified:
		return "modified"
	default:
		return "unknown"
	}
}

// Change holds both sides of a modified path.
type Change struct {
	Old object.Entry
	New object.Entry
}

// TypeChanged reports whether the path switched between file and directory.
func (c Change) TypeChanged() bool {
	return c.Old.Kind != c.New.Kind
}

// Diff is the comparison of two snapshots. Keys are slash-separated paths
// relative to the compared roots, and a path appears in at most one map.
//
// Changes inside a directory present on both sides are reported at the
// deepest differing path; the directory itself is never a key. A path
// present on only one side is reported once with its whole entry, without
// listing its contents. A path that is a file on one side and a directory
// on the other is Modified, with both complete entries.
type Diff struct {
	Added    map[string]object.Entry
	Deleted  map[string]object.Entry
	Modified map[string]Change
}

// Trees compares old against new. Either side may be nil, which is treated
// as an empty directory.
func Trees(old, new *object.Directory) *Diff {
	d := &Diff{
		Added:    make(map[string]object.Entry),
		Deleted:  make(map[string]object.Entry),
		Modified: make(map[string]Change),
	}
	d.compare("", old, new)
	return d
}

func (d *Diff) compare(prefix string, old, new *object.Directory) {
	// Subtrees with the same known id hold the same content.
	if oldID, ok := old.ID(); ok {
		if newID, ok := new.ID(); ok && oldID == newID {
			return
		}
	}

	for _, name := range new.Names() {
		ne, _ := new.Lookup(name)
		p := join(prefix, name)
		oe, ok := old.Lookup(name)
		switch {
		case !ok:
			d.Added[p] = ne
		case oe.IsDir() && ne.IsDir():
			d.compare(p, oe.Tree, ne.Tree)
		case oe.Kind != ne.Kind, oe.Blob != ne.Blob:
			d.Modified[p] = Change{Old: oe, New: ne}
		}
	}
	for _, name := range old.Names() {
		if _, ok := new.Lookup(name); ok {
			continue
		}
		oe, _ := old.Lookup(name)
		d.Deleted[join(prefix, name)] = oe
	}
}

func join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// Empty reports whether the two snapshots were identical.
func (d *Diff) Empty() bool {
	return d.Len() == 0
}

// Len returns the number of changed paths.
func (d *Diff) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Added) + len(d.Deleted) + len(d.Modified)
}

// Reverse returns the diff of new against old.
func (d *Diff) Reverse() *Diff {
	r := &Diff{
		Added:    make(map[string]object.Entry, len(d.Deleted)),
		Deleted:  make(map[string]object.Entry, len(d.Added)),
		Modified: make(map[string]Change, len(d.Modified)),
	}
	for p, e := range d.Deleted {
		r.Added[p] = e
	}
	for p, e := range d.Added {
		r.Deleted[p] = e
	}
	for p, c := range d.Modified {
		r.Modified[p] = Change{Old: c.New, New: c.Old}
	}
	return r
}

// PathChange is one row of a Diff listing.
type PathChange struct {
	Path string
	Type ChangeType
	Old  object.Entry // zero for Added
	New  object.Entry // zero for Deleted
}

// Changes lists every changed path sorted by path.
func (d *Diff) Changes() []PathChange {
	if d == nil {
		return nil
	}
	out := make([]PathChange, 0, d.Len())
	for p, e := range d.Added {
		out = append(out, PathChange{Path: p, Type: Added, New: e})
	}
	for p, e := range d.Deleted {
		out = append(out, PathChange{Path: p, Type: Deleted, Old: e})
	}
	for p, c := range d.Modified {
		out = append(out, PathChange{Path: p, Type: Modified, Old: c.Old, New: c.New})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
