package object

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Store is a content-addressed object store. Objects are immutable once
// pushed; pushing the same bytes twice yields the same id and writes
// nothing the second time.
type Store interface {
	// Has reports whether an object with id h exists, without reading it.
	Has(h Hash) (bool, error)
	// Get returns the exact bytes pushed under h. ok is false when no such
	// object exists.
	Get(h Hash) (data []byte, ok bool, err error)
	// Push stores data and returns its fingerprint.
	Push(data []byte) (Hash, error)
}

// DiskStore is a Store with a 2-character fan-out directory layout:
// <root>/ab/cdef0123...
type DiskStore struct {
	root  string
	codec Codec
}

// NewDiskStore creates a DiskStore rooted at the given directory. The root
// and shard directories are created lazily on first write. A nil codec
// stores payloads as-is.
func NewDiskStore(root string, codec Codec) *DiskStore {
	if codec == nil {
		codec = rawCodec{}
	}
	return &DiskStore{root: root, codec: codec}
}

// Root returns the directory holding the shard directories.
func (s *DiskStore) Root() string {
	return s.root
}

// Codec returns the codec applied to payloads at rest.
func (s *DiskStore) Codec() Codec {
	return s.codec
}

// objectPath returns the filesystem path for a given hash.
func (s *DiskStore) objectPath(h Hash) string {
	hex := h.String()
	return filepath.Join(s.root, hex[:2], hex[2:])
}

// Has reports whether the store contains an object with the given hash.
func (s *DiskStore) Has(h Hash) (bool, error) {
	p := s.objectPath(h)
	_, err := os.Stat(p)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, &StoreError{Op: "stat", Path: p, Err: err}
}

// Get reads an object by hash.
func (s *DiskStore) Get(h Hash) ([]byte, bool, error) {
	p := s.objectPath(h)
	raw, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, &StoreError{Op: "read", Path: p, Err: err}
	}
	data, err := s.codec.Decode(raw)
	if err != nil {
		return nil, false, malformedObject(h, fmt.Errorf("%s decode %s: %w", s.codec.Name(), p, err))
	}
	return data, true, nil
}

// Push stores data and returns its content hash. Writes are atomic: data
// is written to a temp file in the shard directory and then renamed into
// place.
func (s *DiskStore) Push(data []byte) (Hash, error) {
	h := HashBytes(data)

	// Fast path: already exists.
	ok, err := s.Has(h)
	if err != nil {
		return ZeroHash, err
	}
	if ok {
		return h, nil
	}

	encoded, err := s.codec.Encode(data)
	if err != nil {
		return ZeroHash, &StoreError{Op: "encode", Path: s.objectPath(h), Err: err}
	}

	dir := filepath.Dir(s.objectPath(h))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ZeroHash, &StoreError{Op: "mkdir", Path: dir, Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return ZeroHash, &StoreError{Op: "create", Path: dir, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(encoded); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return ZeroHash, &StoreError{Op: "write", Path: tmpName, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return ZeroHash, &StoreError{Op: "close", Path: tmpName, Err: err}
	}

	dest := s.objectPath(h)
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return ZeroHash, &StoreError{Op: "rename", Path: dest, Err: err}
	}
	return h, nil
}
