package main

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmora/tsclient"
	"github.com/dmora/tsclient/internal/log"
)

// NewCmdDiagnostics opens files and prints their asynchronous diagnostics.
func NewCmdDiagnostics(out io.Writer, opts *options) *cobra.Command {
	var (
		delay   int
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "diagnostics FILE...",
		Short: "Print syntax, semantic and suggestion diagnostics for files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files := make([]string, len(args))
			for i, a := range args {
				files[i] = opts.absFile(a)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			return opts.withClient(ctx, func(ctx context.Context, c *tsclient.Client) error {
				for _, f := range files {
					if err := c.Open(tsclient.OpenArgs{File: f}); err != nil {
						return err
					}
				}
				diags, err := tsclient.CollectDiagnostics(ctx, c.Session(), files, delay, func(ev tsclient.Event) error {
					log.Entry(ctx).Infof("%s %s", ev.Kind, ev.Name)
					return nil
				})
				if err != nil {
					return err
				}
				if diags == nil {
					diags = []json.RawMessage{}
				}
				return printJSON(out, diags)
			})
		},
	}
	cmd.Flags().IntVar(&delay, "delay", 0, "Milliseconds the server waits before checking")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "Give up after this long")
	return cmd
}
