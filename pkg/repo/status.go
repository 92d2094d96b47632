package repo

import (
	"fmt"

	"github.com/odvcencio/dotlog/pkg/diff"
)

// Status compares the current branch's snapshot with the working tree.
// Files in the working tree are pushed to the object store as a side
// effect of snapshotting.
func (r *Repo) Status() (*diff.Diff, error) {
	head, err := r.HeadTree()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	work, err := r.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	return diff.Trees(head, work), nil
}

// DiffBranch compares the current branch's snapshot with the snapshot at
// the tip of branch name.
func (r *Repo) DiffBranch(name string) (*diff.Diff, error) {
	current, err := r.HeadTree()
	if err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}
	other, err := r.BranchTree(name)
	if err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}
	return diff.Trees(current, other), nil
}
