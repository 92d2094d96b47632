package repo

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	_ "modernc.org/sqlite"

	"github.com/odvcencio/dotlog/pkg/object"
)

// StatCache remembers the fingerprint computed for a file the last time
// it was read, keyed by its path and stat data. A hit lets the builder
// skip reading a file whose stat data has not changed.
type StatCache interface {
	Lookup(path string, info fs.FileInfo) (object.Hash, bool)
	Store(path string, info fs.FileInfo, h object.Hash) error
}

// fileStamp is the stat data a cache entry is valid for.
type fileStamp struct {
	Size     int64
	ModTime  int64
	Mode     uint32
	ChangeNS int64
	Device   int64
	Inode    int64
}

func stampOf(info fs.FileInfo) fileStamp {
	st := fileStamp{
		Size:    info.Size(),
		ModTime: info.ModTime().UnixNano(),
		Mode:    uint32(info.Mode()),
	}
	if ns, ok := changeTimeNano(info); ok {
		st.ChangeNS = ns
	}
	if dev, ino, ok := deviceAndInode(info); ok {
		st.Device = int64(dev)
		st.Inode = int64(ino)
	}
	return st
}

const statCacheSchema = `
CREATE TABLE IF NOT EXISTS stat_cache (
	path      TEXT PRIMARY KEY,
	size      INTEGER NOT NULL,
	mtime_ns  INTEGER NOT NULL,
	mode      INTEGER NOT NULL,
	ctime_ns  INTEGER NOT NULL,
	device    INTEGER NOT NULL,
	inode     INTEGER NOT NULL,
	hash      TEXT NOT NULL
);`

// SQLiteStatCache is a StatCache persisted in .log/index.db.
type SQLiteStatCache struct {
	db *sql.DB
}

// OpenStatCache opens (creating if needed) the stat cache database at path.
func OpenStatCache(path string) (*SQLiteStatCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open stat cache: %w", err)
	}
	db.SetMaxOpenConns(1)

	stmts := []string{
		`PRAGMA journal_mode = WAL;`,
		`PRAGMA synchronous = NORMAL;`,
		statCacheSchema,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("open stat cache %s: %w", path, err)
		}
	}
	return &SQLiteStatCache{db: db}, nil
}

// Lookup returns the cached fingerprint for path if its stat data still
// matches info exactly.
func (c *SQLiteStatCache) Lookup(path string, info fs.FileInfo) (object.Hash, bool) {
	var (
		cached fileStamp
		hexID  string
	)
	row := c.db.QueryRow(`SELECT size, mtime_ns, mode, ctime_ns, device, inode, hash FROM stat_cache WHERE path = ?`, path)
	if err := row.Scan(&cached.Size, &cached.ModTime, &cached.Mode, &cached.ChangeNS, &cached.Device, &cached.Inode, &hexID); err != nil {
		return object.ZeroHash, false
	}
	if cached != stampOf(info) {
		return object.ZeroHash, false
	}
	h, err := object.ParseHash(hexID)
	if err != nil {
		return object.ZeroHash, false
	}
	return h, true
}

// Store records h as the fingerprint of path at the stat data in info.
func (c *SQLiteStatCache) Store(path string, info fs.FileInfo, h object.Hash) error {
	st := stampOf(info)
	_, err := c.db.Exec(`INSERT INTO stat_cache(path, size, mtime_ns, mode, ctime_ns, device, inode, hash)
		VALUES(?,?,?,?,?,?,?,?)
		ON CONFLICT(path) DO UPDATE SET
			size=excluded.size, mtime_ns=excluded.mtime_ns, mode=excluded.mode,
			ctime_ns=excluded.ctime_ns, device=excluded.device, inode=excluded.inode,
			hash=excluded.hash`,
		path, st.Size, st.ModTime, st.Mode, st.ChangeNS, st.Device, st.Inode, h.String())
	if err != nil {
		return fmt.Errorf("stat cache store %s: %w", path, err)
	}
	return nil
}

// Len returns the number of cached paths.
func (c *SQLiteStatCache) Len() (int, error) {
	var n int
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM stat_cache`).Scan(&n); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("stat cache len: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (c *SQLiteStatCache) Close() error {
	return c.db.Close()
}
