package repo

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/odvcencio/dotlog/pkg/object"
)

// Builder turns a directory on disk into a snapshot tree, pushing the
// bytes of every file it includes into Store.
type Builder struct {
	Store   object.Store
	Ignores *Ignores

	// Cache, when set, lets unchanged files skip being read again. A
	// cached fingerprint is only trusted if Store already has it.
	Cache StatCache

	// SkipUnsupported skips symlinks, devices, sockets and pipes with a
	// warning. Otherwise they fail the build with *UnsupportedEntryError.
	SkipUnsupported bool

	Logger *slog.Logger
}

// Build snapshots dir. Any read error aborts the whole build.
func (b *Builder) Build(dir string) (*object.Directory, error) {
	if b.Store == nil {
		return nil, fmt.Errorf("snapshot %s: nil object store", dir)
	}
	return b.buildDir(dir, "")
}

func (b *Builder) buildDir(abs, rel string) (*object.Directory, error) {
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", abs, err)
	}

	tree := object.NewDirectory()
	for _, de := range entries {
		name := de.Name()
		if b.Ignores.Match(name) {
			continue
		}
		childAbs := filepath.Join(abs, name)
		childRel := path.Join(rel, name)

		switch mode := de.Type(); {
		case mode.IsDir():
			sub, err := b.buildDir(childAbs, childRel)
			if err != nil {
				return nil, err
			}
			tree.Put(name, object.DirEntry(sub))
		case mode.IsRegular():
			h, err := b.addFile(childAbs, childRel)
			if err != nil {
				return nil, err
			}
			tree.Put(name, object.FileEntry(h))
		default:
			if err := b.unsupported(childRel, mode); err != nil {
				return nil, err
			}
		}
	}
	return tree, nil
}

func (b *Builder) unsupported(rel string, mode fs.FileMode) error {
	if !b.SkipUnsupported {
		return &UnsupportedEntryError{Path: rel, Mode: mode}
	}
	b.logger().Warn("skipping unsupported entry", "path", rel, "type", describeMode(mode))
	return nil
}

func (b *Builder) addFile(abs, rel string) (object.Hash, error) {
	info, err := os.Lstat(abs)
	if err != nil {
		return object.ZeroHash, fmt.Errorf("snapshot %s: %w", abs, err)
	}
	// Replaced by something else since the directory was listed.
	if !info.Mode().IsRegular() {
		return object.ZeroHash, fmt.Errorf("snapshot %s: %w", abs, ErrEntryChanged)
	}

	if b.Cache != nil {
		if h, ok := b.Cache.Lookup(rel, info); ok {
			has, err := b.Store.Has(h)
			if err != nil {
				return object.ZeroHash, fmt.Errorf("snapshot %s: %w", abs, err)
			}
			if has {
				return h, nil
			}
		}
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return object.ZeroHash, fmt.Errorf("snapshot %s: %w", abs, err)
	}
	h, err := b.Store.Push(data)
	if err != nil {
		return object.ZeroHash, fmt.Errorf("snapshot %s: %w", abs, err)
	}

	if b.Cache != nil {
		if err := b.Cache.Store(rel, info, h); err != nil {
			b.logger().Debug("stat cache update failed", "path", rel, "err", err)
		}
	}
	return h, nil
}

func (b *Builder) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return discardLogger
}

// Snapshot builds a snapshot of the working tree using the repository's
// object store, ignore-list and settings.
func (r *Repo) Snapshot() (*object.Directory, error) {
	ig, err := r.Ignores()
	if err != nil {
		return nil, err
	}
	b := &Builder{
		Store:           r.Store,
		Ignores:         ig,
		Cache:           r.cache(),
		SkipUnsupported: r.Config.Core.SkipUnsupported,
		Logger:          r.logger(),
	}
	return b.Build(r.RootDir)
}

// cache opens the stat cache on first use. Failing to open it only
// disables caching.
func (r *Repo) cache() StatCache {
	if !r.Config.Core.StatCache {
		return nil
	}
	if r.statCache != nil {
		return r.statCache
	}
	c, err := OpenStatCache(filepath.Join(r.LogDir, statCacheFile))
	if err != nil {
		r.logger().Warn("stat cache disabled", "err", err)
		return nil
	}
	r.statCache = c
	return c
}
