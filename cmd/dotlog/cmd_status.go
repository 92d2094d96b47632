package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/odvcencio/dotlog/pkg/diff"
	"github.com/odvcencio/dotlog/pkg/repo"
)

func newStatusCmd() *cobra.Command {
	var watch bool
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show changes between the current branch and the working tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}
			defer r.Close()

			out := cmd.OutOrStdout()
			if err := printStatus(out, r); err != nil {
				return err
			}
			if !watch {
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return watchWorktree(ctx, r, debounce, func() {
				fmt.Fprintln(out)
				if err := printStatus(out, r); err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), err)
				}
			})
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep running and reprint status when files change")
	cmd.Flags().DurationVar(&debounce, "debounce", 250*time.Millisecond, "quiet period before reprinting in --watch mode")
	return cmd
}

func printStatus(out io.Writer, r *repo.Repo) error {
	branch, err := r.CurrentBranch()
	if err != nil {
		return err
	}
	d, err := r.Status()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "on %s\n", branch)
	if d.Empty() {
		fmt.Fprintln(out, "nothing to commit, working tree clean")
		return nil
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "changes:")
	fmt.Fprint(out, diff.Format(d))
	return nil
}
