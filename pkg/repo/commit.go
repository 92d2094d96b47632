package repo

import (
	"fmt"
	"strings"

	"github.com/odvcencio/dotlog/pkg/object"
)

// CommitSigner signs the stored bytes of a commit and returns an encoded
// signature, kept beside the commit in .log/signatures/.
type CommitSigner func(payload []byte) (string, error)

// LogEntry is one commit in a history listing.
type LogEntry struct {
	Hash   object.Hash
	Commit object.Commit
}

// Commit snapshots the working tree and records it on the current branch
// with the branch's commit as sole parent.
func (r *Repo) Commit(message string) (object.Hash, error) {
	return r.CommitWithSigner(message, nil)
}

// CommitWithSigner is Commit with an optional detached signature.
func (r *Repo) CommitWithSigner(message string, signer CommitSigner) (object.Hash, error) {
	branch, err := r.CurrentBranch()
	if err != nil {
		return object.ZeroHash, fmt.Errorf("commit: %w", err)
	}
	head, err := r.BranchCommit(branch)
	if err != nil {
		return object.ZeroHash, fmt.Errorf("commit: %w", err)
	}
	return r.record(branch, message, []object.Hash{head}, false, signer)
}

// CommitMerge records the working tree as a commit with two parents: the
// current branch's commit followed by other's. Contents are not merged;
// the working tree is taken as the resolution.
func (r *Repo) CommitMerge(message, other string) (object.Hash, error) {
	return r.CommitMergeWithSigner(message, other, nil)
}

// CommitMergeWithSigner is CommitMerge with an optional detached signature.
func (r *Repo) CommitMergeWithSigner(message, other string, signer CommitSigner) (object.Hash, error) {
	branch, err := r.CurrentBranch()
	if err != nil {
		return object.ZeroHash, fmt.Errorf("merge: %w", err)
	}
	if other == branch {
		return object.ZeroHash, fmt.Errorf("merge: cannot merge branch %q into itself", other)
	}
	head, err := r.BranchCommit(branch)
	if err != nil {
		return object.ZeroHash, fmt.Errorf("merge: %w", err)
	}
	theirs, err := r.BranchCommit(other)
	if err != nil {
		return object.ZeroHash, fmt.Errorf("merge: %w", err)
	}
	if theirs == head {
		return object.ZeroHash, fmt.Errorf("merge: %q already at %s: %w", other, head.Short(), ErrNothingToCommit)
	}
	return r.record(branch, message, []object.Hash{head, theirs}, true, signer)
}

func (r *Repo) record(branch, message string, parents []object.Hash, allowSameTree bool, signer CommitSigner) (object.Hash, error) {
	if strings.TrimSpace(message) == "" {
		return object.ZeroHash, fmt.Errorf("commit: %w", ErrEmptyMessage)
	}

	parent, err := object.ReadCommit(r.Store, parents[0])
	if err != nil {
		return object.ZeroHash, fmt.Errorf("commit: read parent %s: %w", parents[0].Short(), err)
	}

	snap, err := r.Snapshot()
	if err != nil {
		return object.ZeroHash, fmt.Errorf("commit: %w", err)
	}
	tree, err := object.WriteTree(r.Store, snap)
	if err != nil {
		return object.ZeroHash, fmt.Errorf("commit: write tree: %w", err)
	}
	if tree == parent.Tree && !allowSameTree {
		return object.ZeroHash, fmt.Errorf("commit: %w", ErrNothingToCommit)
	}

	c := object.NewCommit(tree, message, parents...)
	id, err := object.WriteCommit(r.Store, c)
	if err != nil {
		return object.ZeroHash, fmt.Errorf("commit: write commit: %w", err)
	}

	if signer != nil {
		if err := r.SignCommit(id, signer); err != nil {
			return object.ZeroHash, fmt.Errorf("commit: %w", err)
		}
	}

	reason := "commit: " + firstLine(message)
	if len(parents) > 1 {
		reason = "merge: " + firstLine(message)
	}
	if err := r.updateBranch(branch, id, reason); err != nil {
		return object.ZeroHash, fmt.Errorf("commit: %w", err)
	}
	r.logger().Debug("recorded commit", "branch", branch, "commit", id.Short(), "tree", tree.Short(), "parents", len(parents))
	return id, nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// Log walks first-parent history from start, newest first, returning at
// most limit entries (all when limit <= 0). A missing commit is an error.
func (r *Repo) Log(start object.Hash, limit int) ([]LogEntry, error) {
	var entries []LogEntry
	current := start
	for limit <= 0 || len(entries) < limit {
		c, err := object.ReadCommit(r.Store, current)
		if err != nil {
			return nil, fmt.Errorf("log: read commit %s: %w", current.Short(), err)
		}
		entries = append(entries, LogEntry{Hash: current, Commit: c})
		if c.IsRoot() {
			break
		}
		current = c.Parents[0]
	}
	return entries, nil
}

// Ancestors returns start and every commit reachable from it through any
// parent, breadth first, each id once.
func (r *Repo) Ancestors(start object.Hash) ([]object.Hash, error) {
	seen := map[object.Hash]struct{}{start: {}}
	queue := []object.Hash{start}
	var out []object.Hash
	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]
		c, err := object.ReadCommit(r.Store, h)
		if err != nil {
			return nil, fmt.Errorf("ancestors: read commit %s: %w", h.Short(), err)
		}
		out = append(out, h)
		for _, p := range c.Parents {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			queue = append(queue, p)
		}
	}
	return out, nil
}

// IsAncestor reports whether ancestor is reachable from descendant.
func (r *Repo) IsAncestor(ancestor, descendant object.Hash) (bool, error) {
	all, err := r.Ancestors(descendant)
	if err != nil {
		return false, err
	}
	for _, h := range all {
		if h == ancestor {
			return true, nil
		}
	}
	return false, nil
}

// CommitTree reads the snapshot tree recorded by commit id.
func (r *Repo) CommitTree(id object.Hash) (*object.Directory, error) {
	c, err := object.ReadCommit(r.Store, id)
	if err != nil {
		return nil, err
	}
	return object.ReadTree(r.Store, c.Tree)
}

// BranchTree reads the snapshot tree at the tip of branch name.
func (r *Repo) BranchTree(name string) (*object.Directory, error) {
	id, err := r.BranchCommit(name)
	if err != nil {
		return nil, err
	}
	tree, err := r.CommitTree(id)
	if err != nil {
		return nil, fmt.Errorf("branch %q: %w", name, err)
	}
	return tree, nil
}

// HeadTree reads the snapshot tree of the current branch.
func (r *Repo) HeadTree() (*object.Directory, error) {
	name, err := r.CurrentBranch()
	if err != nil {
		return nil, err
	}
	return r.BranchTree(name)
}
