package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/odvcencio/dotlog/pkg/object"
)

// writeFileAtomic replaces path with data using temp file + rename, so
// readers see either the old or the new content. There is no lock: two
// concurrent writers race and the last rename wins.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// readHashFile reads a file holding one hex-encoded hash.
func readHashFile(path string) (object.Hash, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return object.ZeroHash, err
	}
	h, err := object.ParseHash(strings.TrimSpace(string(data)))
	if err != nil {
		return object.ZeroHash, fmt.Errorf("%s: %w", path, err)
	}
	return h, nil
}

func writeHashFile(path string, h object.Hash) error {
	return writeFileAtomic(path, []byte(h.String()+"\n"))
}

// validBranchName accepts names that map to a single file under
// .log/branches/.
func validBranchName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidBranch)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidBranch, name)
	case strings.HasPrefix(name, "."):
		return fmt.Errorf("%w: %q starts with a dot", ErrInvalidBranch, name)
	case strings.ContainsAny(name, "/\\\x00 \t\n"):
		return fmt.Errorf("%w: %q contains a separator or whitespace", ErrInvalidBranch, name)
	}
	return nil
}

func (r *Repo) branchPath(name string) string {
	return filepath.Join(r.LogDir, branchesDir, name)
}
