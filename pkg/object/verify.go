package object

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// VerifyReport summarises a full integrity pass over a DiskStore.
type VerifyReport struct {
	Objects   int
	DiskBytes int64
	Corrupt   []Hash
}

// Walk calls fn for every object id present in the store, in no
// particular order. Temp files and foreign names are skipped.
func (s *DiskStore) Walk(fn func(h Hash, diskSize int64) error) error {
	shards, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return &StoreError{Op: "readdir", Path: s.root, Err: err}
	}
	for _, shard := range shards {
		if !shard.IsDir() || len(shard.Name()) != 2 {
			continue
		}
		dir := filepath.Join(s.root, shard.Name())
		files, err := os.ReadDir(dir)
		if err != nil {
			return &StoreError{Op: "readdir", Path: dir, Err: err}
		}
		for _, f := range files {
			if f.IsDir() || strings.HasPrefix(f.Name(), ".") {
				continue
			}
			h, err := ParseHash(shard.Name() + f.Name())
			if err != nil {
				continue
			}
			info, err := f.Info()
			if err != nil {
				return &StoreError{Op: "stat", Path: filepath.Join(dir, f.Name()), Err: err}
			}
			if err := fn(h, info.Size()); err != nil {
				return err
			}
		}
	}
	return nil
}

// Verify re-reads every stored object and checks that its content still
// hashes to its id. Objects that fail to decode are reported as corrupt.
func (s *DiskStore) Verify() (*VerifyReport, error) {
	report := &VerifyReport{}
	err := s.Walk(func(h Hash, diskSize int64) error {
		report.Objects++
		report.DiskBytes += diskSize

		data, ok, err := s.Get(h)
		if err != nil {
			if errors.Is(err, ErrMalformedObject) {
				report.Corrupt = append(report.Corrupt, h)
				return nil
			}
			return err
		}
		if !ok || HashBytes(data) != h {
			report.Corrupt = append(report.Corrupt, h)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}
