package repo

import (
	"fmt"

	"github.com/odvcencio/dotlog/pkg/object"
)

// ObjectCount summarises the object store. Objects are never removed, so
// Unreachable only grows; it counts content such as snapshots of
// uncommitted files that no branch or reflog entry refers to.
type ObjectCount struct {
	Objects          int
	DiskBytes        int64
	Reachable        int
	Unreachable      int
	UnreachableBytes int64
}

// LiveRoots returns the commits that count as referenced: every branch
// tip and every commit recorded in a branch's reflog.
func (r *Repo) LiveRoots() ([]object.Hash, error) {
	branches, err := r.ListBranches()
	if err != nil {
		return nil, err
	}
	var roots []object.Hash
	for _, b := range branches {
		h, err := r.BranchCommit(b)
		if err != nil {
			return nil, err
		}
		roots = append(roots, h)

		entries, err := r.ReadReflog(b, 0)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			roots = append(roots, e.NewHash)
		}
	}
	return roots, nil
}

// CountObjects walks the store and classifies every object as reachable
// from LiveRoots or not.
func (r *Repo) CountObjects() (*ObjectCount, error) {
	roots, err := r.LiveRoots()
	if err != nil {
		return nil, fmt.Errorf("count objects: %w", err)
	}
	live, err := object.ReachableSet(r.Store, roots)
	if err != nil {
		return nil, fmt.Errorf("count objects: %w", err)
	}

	count := &ObjectCount{}
	err = r.Store.Walk(func(h object.Hash, size int64) error {
		count.Objects++
		count.DiskBytes += size
		if _, ok := live[h]; ok {
			count.Reachable++
			return nil
		}
		count.Unreachable++
		count.UnreachableBytes += size
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("count objects: %w", err)
	}
	return count, nil
}
