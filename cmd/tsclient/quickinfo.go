package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dmora/tsclient"
)

// NewCmdQuickInfo opens FILE and prints the quickinfo body at LINE:OFFSET.
func NewCmdQuickInfo(out io.Writer, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "quickinfo FILE LINE OFFSET",
		Short: "Print type information at a 1-based position",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := strconv.Atoi(args[1])
			if err != nil || line < 1 {
				return fmt.Errorf("invalid line %q", args[1])
			}
			offset, err := strconv.Atoi(args[2])
			if err != nil || offset < 1 {
				return fmt.Errorf("invalid offset %q", args[2])
			}
			file := opts.absFile(args[0])

			return opts.withClient(cmd.Context(), func(ctx context.Context, c *tsclient.Client) error {
				if err := c.Open(tsclient.OpenArgs{File: file}); err != nil {
					return err
				}
				body, err := c.QuickInfo(ctx, tsclient.FileLocationArgs{File: file, Line: line, Offset: offset})
				if err != nil {
					return err
				}
				return printJSON(out, body)
			})
		},
	}
}
