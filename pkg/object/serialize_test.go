package object

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type sample struct {
	Names map[string]int `cbor:"n"`
	Note  string         `cbor:"s"`
}

func TestMarshalMapKeysAreCanonical(t *testing.T) {
	// Go map iteration order is random; the encoding must not be.
	var first []byte
	for i := 0; i < 20; i++ {
		v := sample{Names: map[string]int{"zeta": 1, "alpha": 2, "mid": 3, "beta": 4}}
		data, err := Marshal(v)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if first == nil {
			first = data
			continue
		}
		if !bytes.Equal(first, data) {
			t.Fatalf("encoding differs between runs:\n%x\n%x", first, data)
		}
	}
}

func TestInsertReadRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	in := sample{Names: map[string]int{"a": 1}, Note: "hi"}
	h, err := Insert(s, in)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	out, err := Read[sample](s, h)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if out.Note != "hi" || out.Names["a"] != 1 || len(out.Names) != 1 {
		t.Errorf("Read = %+v, want %+v", out, in)
	}

	h2, err := Insert(s, sample{Names: map[string]int{"a": 1}, Note: "hi"})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if h2 != h {
		t.Error("equal values produced different ids")
	}
}

func TestReadMissingObject(t *testing.T) {
	s := NewMemoryStore()
	_, err := Read[Commit](s, HashBytes([]byte("absent")))
	if !errors.Is(err, ErrMissingObject) {
		t.Fatalf("Read(absent) error = %v, want ErrMissingObject", err)
	}
	if errors.Is(err, ErrMalformedObject) {
		t.Error("missing object must not be reported as malformed")
	}
}

func TestReadMalformedObject(t *testing.T) {
	s := NewMemoryStore()
	h, err := s.Push([]byte("definitely not cbor \xff\xff"))
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	_, err = Read[Commit](s, h)
	if !errors.Is(err, ErrMalformedObject) {
		t.Fatalf("Read(garbage) error = %v, want ErrMalformedObject", err)
	}
	if errors.Is(err, ErrMissingObject) {
		t.Error("malformed object must not be reported as missing")
	}
}

func TestReadCorruptCompressedObjectIsMalformed(t *testing.T) {
	codec, err := ParseCodec(CodecZstd)
	if err != nil {
		t.Fatalf("ParseCodec: %v", err)
	}
	s := NewDiskStore(filepath.Join(t.TempDir(), "objects"), codec)
	h, err := WriteCommit(s, NewCommit(HashBytes([]byte("tree")), "msg"))
	if err != nil {
		t.Fatalf("WriteCommit: %v", err)
	}
	p := s.objectPath(h)
	os.Chmod(p, 0o644)
	if err := os.WriteFile(p, []byte("not a zstd frame"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err = ReadCommit(s, h)
	if !errors.Is(err, ErrMalformedObject) {
		t.Fatalf("ReadCommit(corrupt) error = %v, want ErrMalformedObject", err)
	}
	var se *StoreError
	if errors.As(err, &se) {
		t.Errorf("corrupt object reported as store I/O failure: %v", err)
	}

	report, err := s.Verify()
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if len(report.Corrupt) != 1 || report.Corrupt[0] != h {
		t.Errorf("Corrupt = %v, want [%s]", report.Corrupt, h)
	}
}

func TestReadWrongTypeIsMalformed(t *testing.T) {
	s := NewMemoryStore()
	ch, err := WriteCommit(s, NewCommit(HashBytes([]byte("tree")), "msg"))
	if err != nil {
		t.Fatalf("WriteCommit: %v", err)
	}
	if _, err := ReadTree(s, ch); !errors.Is(err, ErrMalformedObject) {
		t.Errorf("ReadTree(commit id) error = %v, want ErrMalformedObject", err)
	}
}

func TestHashRejectsWrongLength(t *testing.T) {
	data, err := Marshal(struct {
		H []byte `cbor:"t"`
	}{H: []byte{1, 2, 3}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var c struct {
		H Hash `cbor:"t"`
	}
	if err := Unmarshal(data, &c); err == nil {
		t.Error("decoding a 3-byte hash should fail")
	}
}

func TestCommitIdentity(t *testing.T) {
	s := NewMemoryStore()
	tree := HashBytes([]byte("tree"))
	p1 := HashBytes([]byte("parent one"))
	p2 := HashBytes([]byte("parent two"))

	id := func(c Commit) Hash {
		t.Helper()
		h, err := WriteCommit(s, c)
		if err != nil {
			t.Fatalf("WriteCommit: %v", err)
		}
		return h
	}

	base := id(NewCommit(tree, "msg", p1))
	if again := id(NewCommit(tree, "msg", p1)); again != base {
		t.Error("identical commits produced different ids")
	}
	if other := id(NewCommit(tree, "msg", p2)); other == base {
		t.Error("different parents produced the same id")
	}
	if merge := id(NewCommit(tree, "msg", p1, p2)); merge == base {
		t.Error("adding a parent did not change the id")
	}
	if root := id(NewCommit(tree, "msg")); root == base {
		t.Error("root commit shares an id with its child")
	}
	if msg := id(NewCommit(tree, "other", p1)); msg == base {
		t.Error("different messages produced the same id")
	}
}

func TestCommitRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	in := NewCommit(HashBytes([]byte("tree")), "merge it", HashBytes([]byte("a")), HashBytes([]byte("b")))
	h, err := WriteCommit(s, in)
	if err != nil {
		t.Fatalf("WriteCommit: %v", err)
	}
	out, err := ReadCommit(s, h)
	if err != nil {
		t.Fatalf("ReadCommit: %v", err)
	}
	if out.Tree != in.Tree || out.Message != in.Message || len(out.Parents) != 2 ||
		out.Parents[0] != in.Parents[0] || out.Parents[1] != in.Parents[1] {
		t.Errorf("ReadCommit = %+v, want %+v", out, in)
	}
	if !out.IsMerge() || out.IsRoot() {
		t.Error("two-parent commit should be a merge")
	}

	root, err := WriteCommit(s, NewCommit(in.Tree, "root"))
	if err != nil {
		t.Fatalf("WriteCommit: %v", err)
	}
	rc, err := ReadCommit(s, root)
	if err != nil {
		t.Fatalf("ReadCommit: %v", err)
	}
	if !rc.IsRoot() {
		t.Errorf("root commit has parents %v", rc.Parents)
	}
}
