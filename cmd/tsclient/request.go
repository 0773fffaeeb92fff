package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dmora/tsclient"
)

// NewCmdRequest sends an arbitrary command with optional JSON arguments.
func NewCmdRequest(out io.Writer, opts *options) *cobra.Command {
	var (
		noReply bool
		open    []string
	)
	cmd := &cobra.Command{
		Use:   "request COMMAND [JSON]",
		Short: "Send a raw protocol command and print the response body",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var reqArgs any
			if len(args) == 2 {
				if !json.Valid([]byte(args[1])) {
					return fmt.Errorf("arguments are not valid JSON: %s", args[1])
				}
				reqArgs = json.RawMessage(args[1])
			}

			return opts.withClient(cmd.Context(), func(ctx context.Context, c *tsclient.Client) error {
				for _, f := range open {
					if err := c.Open(tsclient.OpenArgs{File: opts.absFile(f)}); err != nil {
						return err
					}
				}
				if noReply {
					return c.Notify(args[0], reqArgs)
				}
				body, err := c.Request(ctx, args[0], reqArgs)
				if err != nil {
					return err
				}
				return printJSON(out, body)
			})
		},
	}
	cmd.Flags().BoolVar(&noReply, "no-reply", false, "Do not wait for a response")
	cmd.Flags().StringSliceVar(&open, "open", nil, "Files to open before sending the command")
	return cmd
}
