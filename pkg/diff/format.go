package diff

import (
	"fmt"
	"strings"

	"github.com/odvcencio/dotlog/pkg/object"
)

// Format produces a human-readable summary of a tree diff, one path per
// line in path order. Directories carry a trailing slash.
//
//	+ path        (added)
//	~ path        (modified)
//	- path        (deleted)
func Format(d *Diff) string {
	var b strings.Builder
	for _, c := range d.Changes() {
		var marker string
		switch c.Type {
		case Added:
			marker = "+"
		case Deleted:
			marker = "-"
		case Modified:
			marker = "~"
		}

		label := c.Type.String()
		if c.Type == Modified && c.Old.Kind != c.New.Kind {
			label = fmt.Sprintf("%s -> %s", c.Old.Kind, c.New.Kind)
		}
		fmt.Fprintf(&b, "  %s %s     (%s)\n", marker, displayPath(c), label)
	}
	return b.String()
}

func displayPath(c PathChange) string {
	e := c.New
	if c.Type == Deleted {
		e = c.Old
	}
	if e.Kind == object.KindDir {
		return c.Path + "/"
	}
	return c.Path
}
