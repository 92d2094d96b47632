package repo

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/odvcencio/dotlog/pkg/object"
)

// Layout of the .log/ directory.
const (
	DirName = ".log"

	branchFile    = "branch"
	branchesDir   = "branches"
	ignoresFile   = "ignores"
	objectsDir    = "objects"
	configFile    = "config.toml"
	statCacheFile = "index.db"
	signaturesDir = "signatures"
	reflogDir     = "logs"
)

// Repo represents an opened dotlog repository. It is not safe for
// concurrent use, and two processes updating the same branch race with
// last-writer-wins semantics.
type Repo struct {
	RootDir string           // working tree root
	LogDir  string           // .log/ directory
	Store   *object.DiskStore // content-addressed object store
	Config  *Config

	// Logger receives diagnostics. Nil discards them.
	Logger *slog.Logger

	statCache StatCache
}

// Open searches upward from path for a .log/ directory and opens the
// repository. It returns ErrNotRepository if none is found or the one
// found is incomplete.
func Open(path string) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}

	cur := abs
	for {
		logDir := filepath.Join(cur, DirName)
		info, err := os.Stat(logDir)
		if err == nil && info.IsDir() {
			return openAt(cur, logDir)
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, fmt.Errorf("open %s: %w (or any parent up to /)", abs, ErrNotRepository)
		}
		cur = parent
	}
}

// openAt opens the repository whose metadata lives in logDir after
// checking that every required part of the layout is present.
func openAt(rootDir, logDir string) (*Repo, error) {
	if err := checkLayout(logDir); err != nil {
		return nil, err
	}
	cfg, err := ReadConfig(filepath.Join(logDir, configFile))
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	codec, err := object.ParseCodec(cfg.Objects.Compression)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	return &Repo{
		RootDir: rootDir,
		LogDir:  logDir,
		Store:   object.NewDiskStore(filepath.Join(logDir, objectsDir), codec),
		Config:  cfg,
	}, nil
}

func checkLayout(logDir string) error {
	if info, err := os.Stat(logDir); err != nil || !info.IsDir() {
		return fmt.Errorf("%s: %w", logDir, ErrNotRepository)
	}
	required := []struct {
		name string
		dir  bool
	}{
		{branchFile, false},
		{branchesDir, true},
		{ignoresFile, false},
		{objectsDir, true},
	}
	for _, req := range required {
		p := filepath.Join(logDir, req.name)
		info, err := os.Stat(p)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("%s: missing %s: %w", logDir, req.name, ErrNotRepository)
			}
			return fmt.Errorf("check layout: %w", err)
		}
		if info.IsDir() != req.dir {
			return fmt.Errorf("%s: unexpected type for %s: %w", logDir, req.name, ErrNotRepository)
		}
	}
	return nil
}

// ObjectStore returns the repository's object store.
func (r *Repo) ObjectStore() object.Store {
	return r.Store
}

// Close releases resources held by the repository, such as the stat cache.
func (r *Repo) Close() error {
	if c, ok := r.statCache.(io.Closer); ok {
		r.statCache = nil
		return c.Close()
	}
	return nil
}

func (r *Repo) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return discardLogger
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
