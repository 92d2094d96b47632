package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/dotlog/pkg/repo"
)

func newCommitCmd() *cobra.Command {
	var message string
	var sign bool
	var signKey string

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Record the working tree on the current branch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if message == "" {
				return fmt.Errorf("commit message is required (-m)")
			}

			r, err := openRepo(cmd)
			if err != nil {
				return err
			}
			defer r.Close()

			signer, err := commitSigner(cmd, sign, signKey)
			if err != nil {
				return err
			}

			h, err := r.CommitWithSigner(message, signer)
			if err != nil {
				return err
			}

			branch, err := r.CurrentBranch()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[%s %s] %s\n", branch, h.Short(), firstLine(message))
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	addSigningFlags(cmd, &sign, &signKey)
	return cmd
}

func addSigningFlags(cmd *cobra.Command, sign *bool, signKey *string) {
	cmd.Flags().BoolVarP(sign, "sign", "S", false, "sign the commit with an SSH key")
	cmd.Flags().StringVar(signKey, "sign-key", "", "SSH private key used with --sign (default: ~/.ssh/id_ed25519, id_ecdsa or id_rsa)")
}

// commitSigner returns nil when signing was not requested.
func commitSigner(cmd *cobra.Command, sign bool, keyPath string) (repo.CommitSigner, error) {
	if !sign && keyPath == "" {
		return nil, nil
	}
	signer, resolved, err := newSSHCommitSigner(keyPath)
	if err != nil {
		return nil, err
	}
	newLogger(cmd.ErrOrStderr()).Debug("signing commit", "key", resolved)
	return signer, nil
}
