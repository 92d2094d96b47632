package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newIgnoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ignore",
		Short: "Manage the basenames excluded from snapshots",
	}
	cmd.AddCommand(newIgnoreListCmd(), newIgnoreAddCmd(), newIgnoreRemoveCmd())
	return cmd
}

func newIgnoreListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List ignore entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}
			defer r.Close()

			ig, err := r.Ignores()
			if err != nil {
				return err
			}
			for _, name := range ig.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newIgnoreAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>...",
		Short: "Ignore files and directories with these basenames (globs allowed)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}
			defer r.Close()

			ig, err := r.Ignores()
			if err != nil {
				return err
			}
			for _, name := range args {
				changed, err := ig.Add(name)
				if err != nil {
					return err
				}
				if !changed {
					fmt.Fprintf(cmd.OutOrStdout(), "already ignored: %s\n", name)
				}
			}
			return r.SetIgnores(ig)
		},
	}
}

func newIgnoreRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>...",
		Short: "Stop ignoring these entries",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}
			defer r.Close()

			ig, err := r.Ignores()
			if err != nil {
				return err
			}
			for _, name := range args {
				if !ig.Remove(name) {
					return fmt.Errorf("not ignored: %s", name)
				}
			}
			return r.SetIgnores(ig)
		},
	}
}
