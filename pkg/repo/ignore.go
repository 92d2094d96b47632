package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/odvcencio/dotlog/pkg/object"
)

// ErrInvalidIgnore is returned for ignore entries that cannot match a
// basename.
var ErrInvalidIgnore = errors.New("invalid ignore entry")

// Ignores is the set of basenames excluded from snapshots. An entry
// matches a file or directory whose basename equals it. Entries holding
// * or [ are gitignore patterns matched against the basename only.
type Ignores struct {
	// Set holds the entries, sorted and unique.
	Set []string `cbor:"set"`

	globs *ignore.GitIgnore
}

// DefaultIgnores returns the ignore-list written by Init: the repository
// metadata directory itself.
func DefaultIgnores() *Ignores {
	return NewIgnores(DirName)
}

// NewIgnores returns an ignore-list holding names. Invalid names are
// dropped.
func NewIgnores(names ...string) *Ignores {
	ig := &Ignores{}
	for _, n := range names {
		_, _ = ig.Add(n)
	}
	return ig
}

func validIgnore(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: empty", ErrInvalidIgnore)
	case strings.Contains(name, "/"):
		return fmt.Errorf("%w: %q contains a slash; entries match basenames", ErrInvalidIgnore, name)
	case strings.HasPrefix(name, "#"):
		return fmt.Errorf("%w: %q would be read as a comment", ErrInvalidIgnore, name)
	case strings.HasPrefix(name, "!"):
		return fmt.Errorf("%w: %q would be read as a negation", ErrInvalidIgnore, name)
	}
	return nil
}

func isGlob(name string) bool {
	return strings.ContainsAny(name, "*[")
}

// Add inserts name and reports whether the set changed.
func (ig *Ignores) Add(name string) (bool, error) {
	if err := validIgnore(name); err != nil {
		return false, err
	}
	i := sort.SearchStrings(ig.Set, name)
	if i < len(ig.Set) && ig.Set[i] == name {
		return false, nil
	}
	ig.Set = append(ig.Set, "")
	copy(ig.Set[i+1:], ig.Set[i:])
	ig.Set[i] = name
	ig.globs = nil
	return true, nil
}

// Remove deletes name and reports whether it was present.
func (ig *Ignores) Remove(name string) bool {
	i := sort.SearchStrings(ig.Set, name)
	if i >= len(ig.Set) || ig.Set[i] != name {
		return false
	}
	ig.Set = append(ig.Set[:i], ig.Set[i+1:]...)
	ig.globs = nil
	return true
}

// Names returns the entries in sorted order.
func (ig *Ignores) Names() []string {
	if ig == nil {
		return nil
	}
	return append([]string(nil), ig.Set...)
}

// Len returns the number of entries.
func (ig *Ignores) Len() int {
	if ig == nil {
		return 0
	}
	return len(ig.Set)
}

// Match reports whether a file or directory with the given basename is
// ignored.
func (ig *Ignores) Match(base string) bool {
	if ig == nil || len(ig.Set) == 0 {
		return false
	}
	i := sort.SearchStrings(ig.Set, base)
	if i < len(ig.Set) && ig.Set[i] == base {
		return true
	}
	if ig.globs == nil {
		var patterns []string
		for _, n := range ig.Set {
			if isGlob(n) {
				patterns = append(patterns, n)
			}
		}
		if len(patterns) == 0 {
			return false
		}
		ig.globs = ignore.CompileIgnoreLines(patterns...)
	}
	return ig.globs.MatchesPath(base)
}

func (ig *Ignores) normalize() {
	names := ig.Set
	ig.Set = nil
	ig.globs = nil
	for _, n := range names {
		_, _ = ig.Add(n)
	}
}

// Ignores reads the ignore-list from .log/ignores.
func (r *Repo) Ignores() (*Ignores, error) {
	data, err := os.ReadFile(filepath.Join(r.LogDir, ignoresFile))
	if err != nil {
		return nil, fmt.Errorf("read ignores: %w", err)
	}
	var ig Ignores
	if err := object.Unmarshal(data, &ig); err != nil {
		return nil, fmt.Errorf("read ignores: %w: %v", object.ErrMalformedObject, err)
	}
	ig.normalize()
	return &ig, nil
}

// SetIgnores replaces .log/ignores with ig.
func (r *Repo) SetIgnores(ig *Ignores) error {
	return writeIgnores(r.LogDir, ig)
}

func writeIgnores(logDir string, ig *Ignores) error {
	if ig == nil {
		ig = &Ignores{}
	}
	data, err := object.Marshal(ig)
	if err != nil {
		return fmt.Errorf("write ignores: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(logDir, ignoresFile), data); err != nil {
		return fmt.Errorf("write ignores: %w", err)
	}
	return nil
}
