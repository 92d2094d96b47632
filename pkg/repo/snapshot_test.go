package repo

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/odvcencio/dotlog/pkg/object"
)

func TestBuilder_NestedTree(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "x.txt"), "x")
	writeFile(t, filepath.Join(dir, "dir", "y.txt"), "y")
	writeFile(t, filepath.Join(dir, "dir", "deep", "z.txt"), "z")
	if err := os.MkdirAll(filepath.Join(dir, "empty"), 0o755); err != nil {
		t.Fatal(err)
	}

	store := object.NewMemoryStore()
	tree, err := (&Builder{Store: store}).Build(dir)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	x, ok := tree.Lookup("x.txt")
	if !ok || x.Kind != object.KindFile || x.Blob != object.HashBytes([]byte("x")) {
		t.Fatalf("x.txt = %+v, %v", x, ok)
	}
	d, ok := tree.Lookup("dir")
	if !ok || !d.IsDir() {
		t.Fatalf("dir = %+v, %v", d, ok)
	}
	deep, ok := d.Tree.Lookup("deep")
	if !ok || !deep.IsDir() {
		t.Fatalf("dir/deep = %+v, %v", deep, ok)
	}
	if z, ok := deep.Tree.Lookup("z.txt"); !ok || z.Blob != object.HashBytes([]byte("z")) {
		t.Fatalf("dir/deep/z.txt = %+v, %v", z, ok)
	}
	if e, ok := tree.Lookup("empty"); !ok || !e.IsDir() || e.Tree.Len() != 0 {
		t.Fatalf("empty = %+v, %v", e, ok)
	}

	for _, content := range []string{"x", "y", "z"} {
		data, ok, err := store.Get(object.HashBytes([]byte(content)))
		if err != nil || !ok || string(data) != content {
			t.Fatalf("store.Get(%q) = %q, %v, %v", content, data, ok, err)
		}
	}
}

func TestBuilder_IgnoredNeverStored(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "keep.txt"), "keep")
	writeFile(t, filepath.Join(dir, "secret.env"), "top secret")
	writeFile(t, filepath.Join(dir, "nested", "secret.env"), "nested secret")
	writeFile(t, filepath.Join(dir, "nested", "cache", "blob"), "cached")
	writeFile(t, filepath.Join(dir, "scratch.tmp"), "scratch")

	store := object.NewMemoryStore()
	b := &Builder{Store: store, Ignores: NewIgnores("secret.env", "cache", "*.tmp")}
	tree, err := b.Build(dir)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	err = tree.Walk(func(p string, e object.Entry) error {
		switch filepath.Base(p) {
		case "secret.env", "cache", "scratch.tmp":
			t.Errorf("ignored path %s in tree", p)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, content := range []string{"top secret", "nested secret", "cached", "scratch"} {
		if ok, _ := store.Has(object.HashBytes([]byte(content))); ok {
			t.Errorf("bytes of ignored file %q were pushed", content)
		}
	}
	if store.Len() != 1 {
		t.Fatalf("store holds %d objects, want 1", store.Len())
	}
}

func TestBuilder_SymlinkUnsupported(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "target.txt"), "t")
	if err := os.Symlink("target.txt", filepath.Join(dir, "link")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	_, err := (&Builder{Store: object.NewMemoryStore()}).Build(dir)
	var ue *UnsupportedEntryError
	if !errors.As(err, &ue) {
		t.Fatalf("Build: err = %v, want *UnsupportedEntryError", err)
	}
	if ue.Path != "link" || ue.Mode&fs.ModeSymlink == 0 {
		t.Fatalf("UnsupportedEntryError = %+v", ue)
	}
}

func TestBuilder_SkipUnsupported(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "target.txt"), "t")
	if err := os.Symlink("target.txt", filepath.Join(dir, "link")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	tree, err := (&Builder{Store: object.NewMemoryStore(), SkipUnsupported: true}).Build(dir)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, ok := tree.Lookup("link"); ok {
		t.Fatal("skipped symlink present in tree")
	}
	if _, ok := tree.Lookup("target.txt"); !ok {
		t.Fatal("target.txt missing")
	}
}

func TestBuilder_FileReplacedByDirectory(t *testing.T) {
	dir := t.TempDir()
	// A file listed earlier that is now a directory.
	if err := os.MkdirAll(filepath.Join(dir, "swapped"), 0o755); err != nil {
		t.Fatal(err)
	}

	b := &Builder{Store: object.NewMemoryStore(), SkipUnsupported: true}
	_, err := b.addFile(filepath.Join(dir, "swapped"), "swapped")
	if !errors.Is(err, ErrEntryChanged) {
		t.Fatalf("addFile: err = %v, want ErrEntryChanged", err)
	}
	var ue *UnsupportedEntryError
	if errors.As(err, &ue) {
		t.Fatalf("type change reported as unsupported entry: %v", err)
	}
	if !strings.Contains(err.Error(), "swapped") {
		t.Fatalf("error %q does not name the path", err)
	}
}

func TestBuilder_UnreadableDirFails(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	dir := t.TempDir()
	locked := filepath.Join(dir, "locked")
	writeFile(t, filepath.Join(locked, "f"), "f")
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatal(err)
	}
	defer os.Chmod(locked, 0o755)

	_, err := (&Builder{Store: object.NewMemoryStore()}).Build(dir)
	if !errors.Is(err, fs.ErrPermission) {
		t.Fatalf("Build: err = %v, want permission error", err)
	}
}

type countingStore struct {
	object.Store
	pushes int
}

func (s *countingStore) Push(data []byte) (object.Hash, error) {
	s.pushes++
	return s.Store.Push(data)
}

type mapStatCache struct {
	entries map[string]object.Hash
	stores  int
}

func (c *mapStatCache) Lookup(path string, info fs.FileInfo) (object.Hash, bool) {
	h, ok := c.entries[path]
	return h, ok
}

func (c *mapStatCache) Store(path string, info fs.FileInfo, h object.Hash) error {
	c.entries[path] = h
	c.stores++
	return nil
}

func TestBuilder_CacheHitRequiresStoredObject(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "real")

	// The cache claims a fingerprint the store has never seen.
	bogus := object.HashBytes([]byte("bogus"))
	cache := &mapStatCache{entries: map[string]object.Hash{"a.txt": bogus}}
	store := &countingStore{Store: object.NewMemoryStore()}

	tree, err := (&Builder{Store: store, Cache: cache}).Build(dir)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	e, _ := tree.Lookup("a.txt")
	if e.Blob != object.HashBytes([]byte("real")) {
		t.Fatalf("a.txt blob = %s, want fingerprint of content", e.Blob.Short())
	}
	if cache.entries["a.txt"] != e.Blob {
		t.Fatal("cache not refreshed after read")
	}

	// Now the cached value is present in the store and is trusted.
	pushes := store.pushes
	if _, err := (&Builder{Store: store, Cache: cache}).Build(dir); err != nil {
		t.Fatal(err)
	}
	if store.pushes != pushes {
		t.Fatalf("cache hit still read and pushed the file: pushes %d -> %d", pushes, store.pushes)
	}
}

func TestSQLiteStatCache(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	writeFile(t, file, "one")

	cache, err := OpenStatCache(filepath.Join(dir, "index.db"))
	if err != nil {
		t.Fatalf("OpenStatCache: %v", err)
	}
	defer cache.Close()

	info, err := os.Lstat(file)
	if err != nil {
		t.Fatal(err)
	}
	h := object.HashBytes([]byte("one"))
	if _, ok := cache.Lookup("f.txt", info); ok {
		t.Fatal("Lookup hit on empty cache")
	}
	if err := cache.Store("f.txt", info, h); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if got, ok := cache.Lookup("f.txt", info); !ok || got != h {
		t.Fatalf("Lookup = %s, %v, want %s", got.Short(), ok, h.Short())
	}
	if err := cache.Store("f.txt", info, h); err != nil {
		t.Fatalf("second Store: %v", err)
	}
	if n, err := cache.Len(); err != nil || n != 1 {
		t.Fatalf("Len = %d, %v, want 1", n, err)
	}

	writeFile(t, file, "changed content")
	changed, err := os.Lstat(file)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := cache.Lookup("f.txt", changed); ok {
		t.Fatal("Lookup hit after file changed size")
	}
}

func TestRepoSnapshot_UsesStatCache(t *testing.T) {
	r := initRepo(t)
	writeFile(t, filepath.Join(r.RootDir, "a.txt"), "a")

	if _, err := r.Snapshot(); err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	c, ok := r.statCache.(*SQLiteStatCache)
	if !ok {
		t.Fatalf("stat cache = %T, want *SQLiteStatCache", r.statCache)
	}
	if n, _ := c.Len(); n != 1 {
		t.Fatalf("stat cache holds %d paths, want 1", n)
	}
	assertFile(t, filepath.Join(r.LogDir, statCacheFile))
}
