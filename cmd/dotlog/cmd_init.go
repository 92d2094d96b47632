package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/odvcencio/dotlog/pkg/repo"
)

func newInitCmd() *cobra.Command {
	var compression string
	var defaultBranch string

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Create an empty dotlog repository",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			cfg := repo.DefaultConfig()
			cfg.Objects.Compression = compression
			if defaultBranch != "" {
				cfg.Core.DefaultBranch = defaultBranch
			}

			r, created, err := repo.Init(path, cfg)
			if err != nil {
				return err
			}
			defer r.Close()

			logDir := filepath.Join(r.RootDir, repo.DirName) + string(filepath.Separator)
			if !created {
				branch, err := r.CurrentBranch()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "repository already exists in %s (on %s)\n", logDir, branch)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "initialized empty dotlog repository in %s\n", logDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&compression, "compression", "none", "object compression: none or zstd")
	cmd.Flags().StringVar(&defaultBranch, "default-branch", "", "name of the first branch (default master)")
	return cmd
}
