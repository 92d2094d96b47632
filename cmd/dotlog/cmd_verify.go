package main

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/ssh"

	"github.com/odvcencio/dotlog/pkg/object"
	"github.com/odvcencio/dotlog/pkg/repo"
)

func newVerifyCmd() *cobra.Command {
	var signatures bool

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Re-hash every stored object and optionally check commit signatures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}
			defer r.Close()

			out := cmd.OutOrStdout()
			report, err := r.Store.Verify()
			if err != nil {
				return err
			}
			for _, h := range report.Corrupt {
				fmt.Fprintf(out, "corrupt: %s\n", h)
			}
			if len(report.Corrupt) > 0 {
				return fmt.Errorf("verify: %d corrupt object(s)", len(report.Corrupt))
			}
			fmt.Fprintf(out, "ok: verified %d object(s), %s on disk\n", report.Objects, humanize.IBytes(uint64(report.DiskBytes)))

			if !signatures {
				return nil
			}
			return verifySignatures(cmd, r)
		},
	}

	cmd.Flags().BoolVar(&signatures, "signatures", false, "also check commit signatures on every branch")
	return cmd
}

func verifySignatures(cmd *cobra.Command, r *repo.Repo) error {
	out := cmd.OutOrStdout()
	commits, err := allCommits(r)
	if err != nil {
		return err
	}

	var signed, bad int
	for _, h := range commits {
		key, err := r.VerifyCommit(h)
		switch {
		case err == nil:
			signed++
			fmt.Fprintf(out, "good: %s %s\n", h.Short(), ssh.FingerprintSHA256(key))
		case errors.Is(err, repo.ErrNoSignature):
		default:
			bad++
			fmt.Fprintf(out, "bad:  %s %v\n", h.Short(), err)
		}
	}
	fmt.Fprintf(out, "signatures: %d good, %d bad, %d unsigned\n", signed, bad, len(commits)-signed-bad)
	if bad > 0 {
		return fmt.Errorf("verify: %d invalid signature(s)", bad)
	}
	return nil
}

// allCommits lists every commit reachable from any branch once.
func allCommits(r *repo.Repo) ([]object.Hash, error) {
	branches, err := r.ListBranches()
	if err != nil {
		return nil, err
	}
	seen := make(map[object.Hash]struct{})
	var out []object.Hash
	for _, b := range branches {
		tip, err := r.BranchCommit(b)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[tip]; ok {
			continue
		}
		hashes, err := r.Ancestors(tip)
		if err != nil {
			return nil, err
		}
		for _, h := range hashes {
			if _, ok := seen[h]; ok {
				continue
			}
			seen[h] = struct{}{}
			out = append(out, h)
		}
	}
	return out, nil
}
