package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/odvcencio/dotlog/pkg/diff"
	"github.com/odvcencio/dotlog/pkg/object"
)

// Checkout switches the working tree to the tip of branch name and makes
// it the current branch. It refuses with ErrDirtyWorktree if the working
// tree differs from the current branch, and with a *CheckoutConflictError
// before changing anything if untracked or ignored content is in the way.
// Ignored files are otherwise left alone.
func (r *Repo) Checkout(name string) error {
	status, err := r.Status()
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	if !status.Empty() {
		return fmt.Errorf("checkout: %d path(s) changed: %w", status.Len(), ErrDirtyWorktree)
	}

	current, err := r.HeadTree()
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	target, err := r.BranchTree(name)
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}

	changes := diff.Trees(current, target).Changes()
	// Nothing is touched until every write is known to succeed.
	for _, c := range changes {
		var old *object.Entry
		switch c.Type {
		case diff.Deleted:
			continue
		case diff.Modified:
			old = &c.Old
		}
		if err := r.checkBlocked(c.Path, old, c.New); err != nil {
			return fmt.Errorf("checkout %s: %w", name, err)
		}
	}

	for _, c := range changes {
		var err error
		switch c.Type {
		case diff.Added:
			err = r.materialize(c.Path, c.New)
		case diff.Deleted:
			err = r.removeEntry(c.Path, c.Old)
		case diff.Modified:
			if c.Old.Kind != c.New.Kind {
				if err = r.removeEntry(c.Path, c.Old); err != nil {
					break
				}
			}
			err = r.materialize(c.Path, c.New)
		}
		if err != nil {
			return fmt.Errorf("checkout %s: %w", name, err)
		}
	}

	// Removals may have pruned directories the target still has, empty
	// ones included.
	err = target.Walk(func(p string, e object.Entry) error {
		if !e.IsDir() {
			return nil
		}
		return os.MkdirAll(filepath.Join(r.RootDir, filepath.FromSlash(p)), 0o755)
	})
	if err != nil {
		return fmt.Errorf("checkout %s: %w", name, err)
	}

	if err := r.SetCurrentBranch(name); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	r.logger().Debug("checked out branch", "branch", name)
	return nil
}

// checkBlocked reports a *CheckoutConflictError if writing e at rel would
// run into content the current tree does not track, such as ignored files
// inside a directory that the target replaces with a file. old is the
// tracked entry at rel, if any.
func (r *Repo) checkBlocked(rel string, old *object.Entry, e object.Entry) error {
	abs := filepath.Join(r.RootDir, filepath.FromSlash(rel))
	info, err := os.Lstat(abs)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", rel, err)
	}

	switch {
	case !e.IsDir() && info.Mode().IsRegular():
		return nil
	case !e.IsDir() && info.IsDir():
		if old == nil || !old.IsDir() {
			return &CheckoutConflictError{Path: rel}
		}
		leftover, err := untracked(abs, rel, old.Tree)
		if err != nil {
			return err
		}
		if leftover != "" {
			return &CheckoutConflictError{Path: leftover}
		}
		return nil
	case e.IsDir() && info.IsDir():
		for _, name := range e.Tree.Names() {
			child, _ := e.Tree.Lookup(name)
			var oldChild *object.Entry
			if old != nil && old.IsDir() {
				if oc, ok := old.Tree.Lookup(name); ok {
					oldChild = &oc
				}
			}
			if err := r.checkBlocked(rel+"/"+name, oldChild, child); err != nil {
				return err
			}
		}
		return nil
	case e.IsDir() && info.Mode().IsRegular() && old != nil && !old.IsDir():
		return nil
	}
	return &CheckoutConflictError{Path: rel}
}

// untracked returns the first path under dir that tree does not track, or
// "" if removing tree's content would leave dir empty.
func untracked(dir, rel string, tree *object.Directory) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", rel, err)
	}
	for _, de := range entries {
		childRel := rel + "/" + de.Name()
		child, ok := tree.Lookup(de.Name())
		if !ok || child.IsDir() != de.IsDir() {
			return childRel, nil
		}
		if de.IsDir() {
			leftover, err := untracked(filepath.Join(dir, de.Name()), childRel, child.Tree)
			if err != nil || leftover != "" {
				return leftover, err
			}
		}
	}
	return "", nil
}

// materialize writes entry at rel, creating directories as needed.
func (r *Repo) materialize(rel string, e object.Entry) error {
	abs := filepath.Join(r.RootDir, filepath.FromSlash(rel))
	if e.IsDir() {
		if err := os.MkdirAll(abs, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", rel, err)
		}
		for _, name := range e.Tree.Names() {
			child, _ := e.Tree.Lookup(name)
			if err := r.materialize(rel+"/"+name, child); err != nil {
				return err
			}
		}
		return nil
	}

	data, ok, err := r.Store.Get(e.Blob)
	if err != nil {
		return fmt.Errorf("read %s: %w", rel, err)
	}
	if !ok {
		return fmt.Errorf("read %s (%s): %w", rel, e.Blob.Short(), object.ErrMissingObject)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(rel), err)
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	return nil
}

// removeEntry deletes the tracked content of entry at rel. Directories
// that still hold untracked or ignored files are kept.
func (r *Repo) removeEntry(rel string, e object.Entry) error {
	abs := filepath.Join(r.RootDir, filepath.FromSlash(rel))
	if e.IsDir() {
		for _, name := range e.Tree.Names() {
			child, _ := e.Tree.Lookup(name)
			if err := r.removeEntry(rel+"/"+name, child); err != nil {
				return err
			}
		}
		r.removeEmptyParents(abs)
		return nil
	}
	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", rel, err)
	}
	r.removeEmptyParents(filepath.Dir(abs))
	return nil
}

// removeEmptyParents removes empty directories up to (but not including)
// the repository root.
func (r *Repo) removeEmptyParents(dir string) {
	for {
		if dir == r.RootDir || !strings.HasPrefix(dir, r.RootDir+string(filepath.Separator)) {
			return
		}
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		os.Remove(dir)
		dir = filepath.Dir(dir)
	}
}
