package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dmora/tsclient"
	"github.com/dmora/tsclient/filter"
	"github.com/dmora/tsclient/internal/log"
	"github.com/dmora/tsclient/watch"
)

// NewCmdWatch keeps a session open and reloads projects when configuration
// files change, printing lifecycle and diagnostic events until interrupted.
func NewCmdWatch(out io.Writer, opts *options) *cobra.Command {
	var open []string
	cmd := &cobra.Command{
		Use:   "watch [DIR]",
		Short: "Reload projects on config changes and stream events",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := opts.cfg.Server.Dir
			if len(args) == 1 {
				root = opts.absFile(args[0])
			}

			return opts.withClient(cmd.Context(), func(ctx context.Context, c *tsclient.Client) error {
				for _, f := range open {
					if err := c.Open(tsclient.OpenArgs{File: opts.absFile(f)}); err != nil {
						return err
					}
				}

				w, err := watch.New(root, c,
					watch.WithPatterns(opts.cfg.Watch.Patterns...),
					watch.WithDebounce(opts.cfg.Watch.Debounce),
					watch.WithReloadHook(func(changed []string, err error) {
						if err == nil {
							fmt.Fprintf(out, "reload: %s\n", strings.Join(changed, ", "))
						}
					}),
				)
				if err != nil {
					return err
				}
				log.Entry(ctx).Infof("watching %s", w.Root())

				g, ctx := errgroup.WithContext(ctx)
				g.Go(func() error { return w.Run(ctx) })
				g.Go(func() error { return printEvents(ctx, out, c.Session()) })
				return g.Wait()
			})
		},
	}
	cmd.Flags().StringSliceVar(&open, "open", nil, "Files to open so their projects load")
	return cmd
}

// printEvents writes one line per lifecycle or diagnostic event until ctx
// is cancelled or the session ends.
func printEvents(ctx context.Context, out io.Writer, sess tsclient.Session) error {
	events := filter.Filter(ctx, sess.Events(), tsclient.EventLifecycle, tsclient.EventDiagnostics, tsclient.EventConnectionClosed)
	for ev := range events {
		switch ev.Kind {
		case tsclient.EventLifecycle:
			fmt.Fprintf(out, "%s %s\n", ev.Name, ev.Body)
		case tsclient.EventDiagnostics:
			fmt.Fprintf(out, "diagnostics seq=%d count=%d\n", ev.RequestSeq, len(ev.Diagnostics))
		case tsclient.EventConnectionClosed:
			if ev.Err != nil {
				return fmt.Errorf("server exited: %w", ev.Err)
			}
			return tsclient.ErrConnectionClosed
		}
	}
	return ctx.Err()
}
