package object

import (
	"fmt"
	"sort"
)

type reachKind uint8

const (
	reachCommit reachKind = iota
	reachTree
	reachBlob
)

type reachItem struct {
	hash Hash
	kind reachKind
}

// ReachableSet returns every object id reachable from the given commits by
// following parents, trees, subtrees and file blobs. Ids that are not in
// the store are skipped, so a partially missing history still reports
// what is present.
func ReachableSet(s Store, commits []Hash) (map[Hash]struct{}, error) {
	out := make(map[Hash]struct{})
	stack := make([]reachItem, 0, len(commits))
	for _, h := range uniqueSortedHashes(commits) {
		stack = append(stack, reachItem{hash: h, kind: reachCommit})
	}

	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if it.hash.IsZero() {
			continue
		}
		if _, ok := out[it.hash]; ok {
			continue
		}
		ok, err := s.Has(it.hash)
		if err != nil {
			return nil, fmt.Errorf("reachable set: %w", err)
		}
		if !ok {
			continue
		}
		out[it.hash] = struct{}{}

		switch it.kind {
		case reachCommit:
			c, err := ReadCommit(s, it.hash)
			if err != nil {
				return nil, fmt.Errorf("reachable set commit %s: %w", it.hash, err)
			}
			stack = append(stack, reachItem{hash: c.Tree, kind: reachTree})
			for _, p := range c.Parents {
				stack = append(stack, reachItem{hash: p, kind: reachCommit})
			}
		case reachTree:
			obj, err := Read[treeObject](s, it.hash)
			if err != nil {
				return nil, fmt.Errorf("reachable set tree %s: %w", it.hash, err)
			}
			for _, ref := range obj.Entries {
				kind := reachBlob
				if ref.Kind == KindDir {
					kind = reachTree
				}
				stack = append(stack, reachItem{hash: ref.Hash, kind: kind})
			}
		}
	}
	return out, nil
}

func uniqueSortedHashes(in []Hash) []Hash {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[Hash]struct{}, len(in))
	out := make([]Hash, 0, len(in))
	for _, h := range in {
		if h.IsZero() {
			continue
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Compare(out[j]) < 0 })
	return out
}
