package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newCountObjectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count-objects",
		Short: "Count stored objects and their disk usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}
			defer r.Close()

			count, err := r.CountObjects()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "objects:     %s\n", humanize.Comma(int64(count.Objects)))
			fmt.Fprintf(out, "reachable:   %s\n", humanize.Comma(int64(count.Reachable)))
			fmt.Fprintf(out, "unreachable: %s (%s)\n", humanize.Comma(int64(count.Unreachable)), humanize.IBytes(uint64(count.UnreachableBytes)))
			fmt.Fprintf(out, "size:        %s\n", humanize.IBytes(uint64(count.DiskBytes)))
			fmt.Fprintf(out, "compression: %s\n", r.Store.Codec().Name())
			return nil
		},
	}
}
