package repo

import (
	"path/filepath"
	"testing"

	"github.com/odvcencio/dotlog/pkg/object"
)

func TestCountObjects_Unreachable(t *testing.T) {
	r := initRepo(t)
	commitFile(t, r, "a.txt", "kept", "keep")

	orphan, err := r.Store.Push([]byte("nobody points here"))
	if err != nil {
		t.Fatal(err)
	}
	// Snapshotting an uncommitted file pushes its bytes too.
	writeFile(t, filepath.Join(r.RootDir, "draft.txt"), "draft")
	if _, err := r.Status(); err != nil {
		t.Fatal(err)
	}

	count, err := r.CountObjects()
	if err != nil {
		t.Fatalf("CountObjects: %v", err)
	}
	if count.Unreachable != 2 || count.UnreachableBytes <= 0 {
		t.Fatalf("count = %+v, want 2 unreachable objects", count)
	}
	if count.Reachable+count.Unreachable != count.Objects {
		t.Fatalf("count = %+v does not add up", count)
	}
	if ok, _ := r.Store.Has(orphan); !ok {
		t.Fatal("counting removed an object")
	}
	if ok, _ := r.Store.Has(object.HashBytes([]byte("draft"))); !ok {
		t.Fatal("counting removed the draft blob")
	}
}

func TestLiveRoots_IncludesReflog(t *testing.T) {
	r := initRepo(t)
	first := commitFile(t, r, "a.txt", "1", "one")
	commitFile(t, r, "a.txt", "2", "two")

	// Rewind the branch; the dropped commit is still in the reflog.
	second, _ := r.HeadCommit()
	if err := r.SetBranchCommit("master", first); err != nil {
		t.Fatal(err)
	}
	roots, err := r.LiveRoots()
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, h := range roots {
		if h == second {
			found = true
		}
	}
	if !found {
		t.Fatal("commit recorded in the reflog is not a live root")
	}

	count, err := r.CountObjects()
	if err != nil {
		t.Fatal(err)
	}
	if count.Unreachable != 0 {
		t.Fatalf("count = %+v, want everything reachable", count)
	}
}
