package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/dotlog/pkg/diff"
)

func newDiffCmd() *cobra.Command {
	var nameOnly bool

	cmd := &cobra.Command{
		Use:   "diff <branch>",
		Short: "Show differences between the current branch and another branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}
			defer r.Close()

			d, err := r.DiffBranch(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if nameOnly {
				for _, c := range d.Changes() {
					fmt.Fprintln(out, c.Path)
				}
				return nil
			}
			if d.Empty() {
				current, _ := r.CurrentBranch()
				fmt.Fprintf(out, "no differences between %s and %s\n", current, args[0])
				return nil
			}
			fmt.Fprint(out, diff.Format(d))
			return nil
		},
	}

	cmd.Flags().BoolVar(&nameOnly, "name-only", false, "print only changed paths")
	return cmd
}
