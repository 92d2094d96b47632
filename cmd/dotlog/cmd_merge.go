package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMergeCmd() *cobra.Command {
	var message string
	var sign bool
	var signKey string

	cmd := &cobra.Command{
		Use:   "merge <branch>",
		Short: "Record the working tree as a merge of the current branch and another",
		Long: "Records a commit whose parents are the current branch and <branch>.\n" +
			"File contents are not combined: arrange the working tree as the merge\n" +
			"result first, then run merge.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			other := args[0]

			r, err := openRepo(cmd)
			if err != nil {
				return err
			}
			defer r.Close()

			current, err := r.CurrentBranch()
			if err != nil {
				return err
			}
			if message == "" {
				message = fmt.Sprintf("Merge branch '%s' into %s", other, current)
			}

			signer, err := commitSigner(cmd, sign, signKey)
			if err != nil {
				return err
			}
			h, err := r.CommitMergeWithSigner(message, other, signer)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[%s %s] %s\n", current, h.Short(), firstLine(message))
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "merge commit message (default: Merge branch '<branch>' into <current>)")
	addSigningFlags(cmd, &sign, &signKey)
	return cmd
}
