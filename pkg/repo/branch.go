package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/odvcencio/dotlog/pkg/object"
)

// CurrentBranch reads .log/branch and returns the name of the checked-out
// branch.
func (r *Repo) CurrentBranch() (string, error) {
	data, err := os.ReadFile(filepath.Join(r.LogDir, branchFile))
	if err != nil {
		return "", fmt.Errorf("current branch: %w", err)
	}
	name := strings.TrimSpace(string(data))
	if err := validBranchName(name); err != nil {
		return "", fmt.Errorf("current branch: %w", err)
	}
	return name, nil
}

// SetCurrentBranch points .log/branch at name. The branch must exist.
// The working tree is not touched; see Checkout.
func (r *Repo) SetCurrentBranch(name string) error {
	ok, err := r.BranchExists(name)
	if err != nil {
		return fmt.Errorf("set current branch: %w", err)
	}
	if !ok {
		return fmt.Errorf("set current branch %q: %w", name, ErrBranchNotFound)
	}
	if err := writeFileAtomic(filepath.Join(r.LogDir, branchFile), []byte(name+"\n")); err != nil {
		return fmt.Errorf("set current branch: %w", err)
	}
	return nil
}

// BranchCommit returns the commit id that branch name points to.
func (r *Repo) BranchCommit(name string) (object.Hash, error) {
	if err := validBranchName(name); err != nil {
		return object.ZeroHash, fmt.Errorf("branch commit: %w", err)
	}
	h, err := readHashFile(r.branchPath(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return object.ZeroHash, fmt.Errorf("branch commit %q: %w", name, ErrBranchNotFound)
		}
		return object.ZeroHash, fmt.Errorf("branch commit %q: %w", name, err)
	}
	return h, nil
}

// HeadCommit returns the commit id of the current branch.
func (r *Repo) HeadCommit() (object.Hash, error) {
	name, err := r.CurrentBranch()
	if err != nil {
		return object.ZeroHash, err
	}
	return r.BranchCommit(name)
}

// SetBranchCommit points branch name at id, creating the branch if it
// does not exist. id is not checked against the object store.
func (r *Repo) SetBranchCommit(name string, id object.Hash) error {
	return r.updateBranch(name, id, "set")
}

func (r *Repo) updateBranch(name string, id object.Hash, reason string) error {
	if err := validBranchName(name); err != nil {
		return fmt.Errorf("update branch: %w", err)
	}

	var old object.Hash
	if prev, err := readHashFile(r.branchPath(name)); err == nil {
		old = prev
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("update branch %q: %w", name, err)
	}

	if err := writeHashFile(r.branchPath(name), id); err != nil {
		return fmt.Errorf("update branch %q: %w", name, err)
	}
	// The ref is authoritative; a failed reflog append is only reported.
	if err := r.appendReflog(name, old, id, reason); err != nil {
		r.logger().Warn("reflog append failed", "branch", name, "err", err)
	}
	return nil
}

// BranchExists reports whether .log/branches/<name> exists.
func (r *Repo) BranchExists(name string) (bool, error) {
	if err := validBranchName(name); err != nil {
		return false, err
	}
	info, err := os.Stat(r.branchPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("branch exists %q: %w", name, err)
	}
	return !info.IsDir(), nil
}

// CreateBranch creates branch name pointing at the current branch's
// commit. It does not switch to the new branch.
func (r *Repo) CreateBranch(name string) error {
	ok, err := r.BranchExists(name)
	if err != nil {
		return fmt.Errorf("create branch: %w", err)
	}
	if ok {
		return fmt.Errorf("create branch %q: %w", name, ErrBranchExists)
	}
	head, err := r.HeadCommit()
	if err != nil {
		return fmt.Errorf("create branch %q: %w", name, err)
	}
	return r.updateBranch(name, head, "branch: created from HEAD")
}

// DeleteBranch removes .log/branches/<name> and its reflog. The current
// branch cannot be deleted.
func (r *Repo) DeleteBranch(name string) error {
	if err := validBranchName(name); err != nil {
		return fmt.Errorf("delete branch: %w", err)
	}
	current, err := r.CurrentBranch()
	if err != nil {
		return fmt.Errorf("delete branch: %w", err)
	}
	if current == name {
		return fmt.Errorf("delete branch: cannot delete current branch %q", name)
	}

	if err := os.Remove(r.branchPath(name)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("delete branch %q: %w", name, ErrBranchNotFound)
		}
		return fmt.Errorf("delete branch %q: %w", name, err)
	}
	if err := os.Remove(filepath.Join(r.LogDir, reflogDir, name)); err != nil && !os.IsNotExist(err) {
		r.logger().Warn("reflog remove failed", "branch", name, "err", err)
	}
	return nil
}

// ListBranches returns branch names sorted alphabetically.
func (r *Repo) ListBranches() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(r.LogDir, branchesDir))
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || validBranchName(e.Name()) != nil {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}
