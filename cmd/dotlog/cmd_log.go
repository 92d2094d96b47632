package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/odvcencio/dotlog/pkg/object"
	"github.com/odvcencio/dotlog/pkg/repo"
)

func newLogCmd() *cobra.Command {
	var oneline bool
	var limit int

	cmd := &cobra.Command{
		Use:   "log [branch]",
		Short: "Show first-parent commit history",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}
			defer r.Close()

			branch, err := r.CurrentBranch()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				branch = args[0]
			}
			tip, err := r.BranchCommit(branch)
			if err != nil {
				return err
			}

			entries, err := r.Log(tip, limit)
			if err != nil {
				return err
			}
			decorations, err := branchDecorations(r)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, e := range entries {
				printLogEntry(out, e, decorations[e.Hash], oneline)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&oneline, "oneline", false, "show each commit on a single line")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of commits to show (0 = all)")
	return cmd
}

// branchDecorations maps each branch tip to "(name, ...)".
func branchDecorations(r *repo.Repo) (map[object.Hash]string, error) {
	branches, err := r.ListBranches()
	if err != nil {
		return nil, err
	}
	names := make(map[object.Hash][]string)
	for _, b := range branches {
		h, err := r.BranchCommit(b)
		if err != nil {
			return nil, err
		}
		names[h] = append(names[h], b)
	}
	out := make(map[object.Hash]string, len(names))
	for h, ns := range names {
		out[h] = "(" + strings.Join(ns, ", ") + ")"
	}
	return out, nil
}

func printLogEntry(out io.Writer, e repo.LogEntry, decoration string, oneline bool) {
	c := e.Commit
	if oneline {
		if decoration != "" {
			fmt.Fprintf(out, "%s %s %s\n", e.Hash.Short(), decoration, firstLine(c.Message))
		} else {
			fmt.Fprintf(out, "%s %s\n", e.Hash.Short(), firstLine(c.Message))
		}
		return
	}

	if decoration != "" {
		fmt.Fprintf(out, "commit %s %s\n", e.Hash, decoration)
	} else {
		fmt.Fprintf(out, "commit %s\n", e.Hash)
	}
	if c.IsMerge() {
		parents := make([]string, len(c.Parents))
		for i, p := range c.Parents {
			parents[i] = p.Short()
		}
		fmt.Fprintf(out, "Merge: %s\n", strings.Join(parents, " "))
	}
	fmt.Fprintf(out, "Tree:  %s\n", c.Tree.Short())
	fmt.Fprintln(out)
	for _, line := range strings.Split(strings.TrimRight(c.Message, "\n"), "\n") {
		fmt.Fprintf(out, "    %s\n", line)
	}
	fmt.Fprintln(out)
}
