package repo

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	// ErrNotRepository is returned when a path lacks the .log/ layout.
	ErrNotRepository = errors.New("not a dotlog repository")

	ErrBranchNotFound   = errors.New("branch does not exist")
	ErrBranchExists     = errors.New("branch already exists")
	ErrInvalidBranch    = errors.New("invalid branch name")
	ErrDirtyWorktree    = errors.New("working tree has uncommitted changes")
	ErrNothingToCommit  = errors.New("nothing to commit")
	ErrEmptyMessage     = errors.New("commit message is required")
	ErrNoSignature      = errors.New("commit has no signature")
	ErrInvalidSignature = errors.New("invalid commit signature")

	// ErrEntryChanged is returned when a path changes type between being
	// listed and being read.
	ErrEntryChanged = errors.New("entry changed during snapshot")
)

// CheckoutConflictError reports an untracked or ignored path that would be
// overwritten or left in the way by a checkout.
type CheckoutConflictError struct {
	Path string
}

func (e *CheckoutConflictError) Error() string {
	return fmt.Sprintf("%s is not tracked and would block checkout", e.Path)
}

// UnsupportedEntryError reports a directory entry that is neither a
// regular file nor a directory, such as a symlink, device or socket.
type UnsupportedEntryError struct {
	Path string
	Mode fs.FileMode
}

func (e *UnsupportedEntryError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("snapshot %s: unsupported file type %s", e.Path, describeMode(e.Mode))
}

func describeMode(m fs.FileMode) string {
	switch {
	case m&fs.ModeSymlink != 0:
		return "symlink"
	case m&fs.ModeNamedPipe != 0:
		return "named pipe"
	case m&fs.ModeSocket != 0:
		return "socket"
	case m&fs.ModeCharDevice != 0:
		return "character device"
	case m&fs.ModeDevice != 0:
		return "device"
	case m&fs.ModeIrregular != 0:
		return "irregular file"
	default:
		return m.Type().String()
	}
}
