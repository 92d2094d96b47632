package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/odvcencio/dotlog/pkg/object"
)

// InitialCommitMessage is the message of the root commit made by Init.
const InitialCommitMessage = "Initial commit"

const initTempPrefix = DirName + ".init-"

// Init creates a repository in path, creating path if needed. Everything
// is written into a temporary sibling of .log/ and renamed into place, so
// an interrupted Init leaves nothing Open will accept.
//
// If path already holds a repository, Init opens it and reports created
// as false without writing anything. If .log/ exists but is incomplete,
// Init refuses with ErrNotRepository rather than repairing it.
func Init(path string, cfg *Config) (r *Repo, created bool, err error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, false, fmt.Errorf("init: abs path: %w", err)
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.validate(); err != nil {
		return nil, false, fmt.Errorf("init: %w", err)
	}

	logDir := filepath.Join(abs, DirName)
	if _, err := os.Lstat(logDir); err == nil {
		r, err := openAt(abs, logDir)
		if err != nil {
			return nil, false, fmt.Errorf("init: %w", err)
		}
		return r, false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, false, fmt.Errorf("init: %w", err)
	}

	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, false, fmt.Errorf("init: mkdir %s: %w", abs, err)
	}
	removeStaleInit(abs)

	tmp, err := os.MkdirTemp(abs, initTempPrefix)
	if err != nil {
		return nil, false, fmt.Errorf("init: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			os.RemoveAll(tmp)
		}
	}()

	if err := populate(tmp, cfg); err != nil {
		return nil, false, fmt.Errorf("init: %w", err)
	}
	if err := os.Rename(tmp, logDir); err != nil {
		return nil, false, fmt.Errorf("init: %w", err)
	}
	committed = true

	r, err = openAt(abs, logDir)
	if err != nil {
		return nil, false, fmt.Errorf("init: %w", err)
	}
	return r, true, nil
}

// populate writes a complete .log/ layout into dir.
func populate(dir string, cfg *Config) error {
	for _, d := range []string{objectsDir, branchesDir, reflogDir, signaturesDir} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", d, err)
		}
	}
	if err := WriteConfig(dir, cfg); err != nil {
		return err
	}

	codec, err := object.ParseCodec(cfg.Objects.Compression)
	if err != nil {
		return err
	}
	staged := &Repo{
		LogDir: dir,
		Store:  object.NewDiskStore(filepath.Join(dir, objectsDir), codec),
		Config: cfg,
	}

	tree, err := object.WriteTree(staged.Store, object.NewDirectory())
	if err != nil {
		return fmt.Errorf("write empty tree: %w", err)
	}
	root, err := object.WriteCommit(staged.Store, object.NewCommit(tree, InitialCommitMessage))
	if err != nil {
		return fmt.Errorf("write root commit: %w", err)
	}

	branch := cfg.Core.DefaultBranch
	if err := staged.updateBranch(branch, root, "init"); err != nil {
		return err
	}
	if err := writeFileAtomic(filepath.Join(dir, branchFile), []byte(branch+"\n")); err != nil {
		return fmt.Errorf("write branch: %w", err)
	}
	return writeIgnores(dir, DefaultIgnores())
}

// removeStaleInit deletes temporary directories left by interrupted runs
// of Init.
func removeStaleInit(root string) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), initTempPrefix) {
			os.RemoveAll(filepath.Join(root, e.Name()))
		}
	}
}
