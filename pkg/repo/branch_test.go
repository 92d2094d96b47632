package repo

import (
	"errors"
	"reflect"
	"testing"

	"github.com/odvcencio/dotlog/pkg/object"
)

func TestCreateBranch_PointsAtCurrentCommit(t *testing.T) {
	r := initRepo(t)
	head, err := r.HeadCommit()
	if err != nil {
		t.Fatal(err)
	}

	if err := r.CreateBranch("feature"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	got, err := r.BranchCommit("feature")
	if err != nil {
		t.Fatalf("BranchCommit: %v", err)
	}
	if got != head {
		t.Fatalf("feature = %s, want %s", got, head)
	}

	// Creating does not switch.
	if cur, _ := r.CurrentBranch(); cur != "master" {
		t.Fatalf("CurrentBranch = %q after CreateBranch, want master", cur)
	}
}

func TestCreateBranch_Exists(t *testing.T) {
	r := initRepo(t)
	if err := r.CreateBranch("master"); !errors.Is(err, ErrBranchExists) {
		t.Fatalf("CreateBranch(master): err = %v, want ErrBranchExists", err)
	}
}

func TestBranchExists(t *testing.T) {
	r := initRepo(t)

	ok, err := r.BranchExists("master")
	if err != nil || !ok {
		t.Fatalf("BranchExists(master) = %v, %v", ok, err)
	}
	ok, err = r.BranchExists("nope")
	if err != nil || ok {
		t.Fatalf("BranchExists(nope) = %v, %v", ok, err)
	}
}

func TestBranchCommit_Missing(t *testing.T) {
	r := initRepo(t)
	if _, err := r.BranchCommit("nope"); !errors.Is(err, ErrBranchNotFound) {
		t.Fatalf("BranchCommit(nope): err = %v, want ErrBranchNotFound", err)
	}
}

func TestSetBranchCommit_CreatesAndMoves(t *testing.T) {
	r := initRepo(t)
	h1 := object.HashBytes([]byte("one"))
	h2 := object.HashBytes([]byte("two"))

	if err := r.SetBranchCommit("topic", h1); err != nil {
		t.Fatalf("SetBranchCommit(h1): %v", err)
	}
	if err := r.SetBranchCommit("topic", h2); err != nil {
		t.Fatalf("SetBranchCommit(h2): %v", err)
	}
	got, err := r.BranchCommit("topic")
	if err != nil {
		t.Fatal(err)
	}
	if got != h2 {
		t.Fatalf("topic = %s, want %s", got, h2)
	}

	entries, err := r.ReadReflog("topic", 10)
	if err != nil {
		t.Fatalf("ReadReflog: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("reflog has %d entries, want 2", len(entries))
	}
	if entries[0].OldHash != h1 || entries[0].NewHash != h2 {
		t.Fatalf("latest entry = %s -> %s, want %s -> %s", entries[0].OldHash, entries[0].NewHash, h1, h2)
	}
	if !entries[1].OldHash.IsZero() || entries[1].NewHash != h1 {
		t.Fatalf("first entry = %s -> %s, want zero -> %s", entries[1].OldHash, entries[1].NewHash, h1)
	}

	limited, err := r.ReadReflog("topic", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 || limited[0].NewHash != h2 {
		t.Fatalf("ReadReflog limit 1 = %+v", limited)
	}
}

func TestSetCurrentBranch(t *testing.T) {
	r := initRepo(t)

	if err := r.SetCurrentBranch("missing"); !errors.Is(err, ErrBranchNotFound) {
		t.Fatalf("SetCurrentBranch(missing): err = %v, want ErrBranchNotFound", err)
	}
	if err := r.CreateBranch("dev"); err != nil {
		t.Fatal(err)
	}
	if err := r.SetCurrentBranch("dev"); err != nil {
		t.Fatalf("SetCurrentBranch(dev): %v", err)
	}
	if cur, _ := r.CurrentBranch(); cur != "dev" {
		t.Fatalf("CurrentBranch = %q, want dev", cur)
	}
}

func TestInvalidBranchNames(t *testing.T) {
	r := initRepo(t)
	for _, name := range []string{"", ".", "..", ".hidden", "a/b", "with space", "tab\there"} {
		if err := r.SetBranchCommit(name, object.ZeroHash); !errors.Is(err, ErrInvalidBranch) {
			t.Errorf("SetBranchCommit(%q): err = %v, want ErrInvalidBranch", name, err)
		}
	}
}

func TestDeleteBranch(t *testing.T) {
	r := initRepo(t)
	if err := r.CreateBranch("old"); err != nil {
		t.Fatal(err)
	}

	if err := r.DeleteBranch("master"); err == nil {
		t.Fatal("DeleteBranch(current) succeeded")
	}
	if err := r.DeleteBranch("old"); err != nil {
		t.Fatalf("DeleteBranch(old): %v", err)
	}
	if ok, _ := r.BranchExists("old"); ok {
		t.Fatal("old still exists")
	}
	if err := r.DeleteBranch("old"); !errors.Is(err, ErrBranchNotFound) {
		t.Fatalf("second DeleteBranch: err = %v, want ErrBranchNotFound", err)
	}
	if entries, _ := r.ReadReflog("old", 0); len(entries) != 0 {
		t.Fatalf("reflog of deleted branch has %d entries", len(entries))
	}
}

func TestListBranches_Sorted(t *testing.T) {
	r := initRepo(t)
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := r.CreateBranch(name); err != nil {
			t.Fatal(err)
		}
	}
	got, err := r.ListBranches()
	if err != nil {
		t.Fatalf("ListBranches: %v", err)
	}
	want := []string{"alpha", "master", "mid", "zeta"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ListBranches = %v, want %v", got, want)
	}
}
