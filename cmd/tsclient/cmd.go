package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"

	"github.com/dmora/tsclient"
	"github.com/dmora/tsclient/internal/config"
	"github.com/dmora/tsclient/internal/log"
	"github.com/dmora/tsclient/tsserver"
)

// options holds the persistent flags and the configuration they resolve to.
type options struct {
	configFile string
	server     string
	serverArgs string
	dir        string
	logLevel   string
	logFormat  string

	cfg *config.Config
}

// NewRootCommand builds the command tree. Command output goes to out; logs
// go to errOut.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	return newRootCommand(out, errOut, &options{})
}

func newRootCommand(out, errOut io.Writer, opts *options) *cobra.Command {
	root := &cobra.Command{
		Use:           "tsclient",
		Short:         "Drive a TypeScript language server over stdio.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.resolve(cmd, errOut)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&opts.configFile, "config", "", "Config file (default: ./.tsclient.yaml, ./.tsclient.toml, ~/.config/tsclient/config.yaml)")
	f.StringVar(&opts.server, "server", "", "Server executable (overrides server.path)")
	f.StringVar(&opts.serverArgs, "server-args", "", "Shell-quoted server arguments (overrides server.args)")
	f.StringVar(&opts.dir, "dir", "", "Server working directory (overrides server.dir; default: current directory)")
	f.StringVar(&opts.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	f.StringVar(&opts.logFormat, "log-format", "", "Log format (text, json)")

	root.AddCommand(NewCmdQuickInfo(out, opts))
	root.AddCommand(NewCmdRequest(out, opts))
	root.AddCommand(NewCmdDiagnostics(out, opts))
	root.AddCommand(NewCmdWatch(out, opts))
	return root
}

// resolve loads the configuration, applies flag overrides and sets up
// logging.
func (o *options) resolve(cmd *cobra.Command, errOut io.Writer) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, err := config.Resolve(o.configFile, wd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("server") {
		cfg.Server.Path = o.server
	}
	if flags.Changed("server-args") {
		args, err := shellquote.Split(o.serverArgs)
		if err != nil {
			return fmt.Errorf("--server-args: %w", err)
		}
		cfg.Server.Args = args
	}
	if flags.Changed("dir") {
		cfg.Server.Dir = o.dir
	}
	if cfg.Server.Dir == "" {
		cfg.Server.Dir = wd
	}
	if cfg.Server.Dir, err = filepath.Abs(cfg.Server.Dir); err != nil {
		return err
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = o.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := log.Setup(errOut, cfg.Log.Level, cfg.Log.Format); err != nil {
		return err
	}

	o.cfg = cfg
	return nil
}

// engine builds a tsserver engine from the resolved configuration.
func (o *options) engine() *tsserver.Engine {
	s := o.cfg.Server
	return tsserver.NewEngine(
		tsserver.WithBinary(s.Path),
		tsserver.WithArgs(s.Args...),
		tsserver.WithGracePeriod(s.GracePeriod),
		tsserver.WithMaxMessageSize(s.MaxMessageSize),
	)
}

// withClient starts a session, runs fn, and stops the session.
func (o *options) withClient(ctx context.Context, fn func(context.Context, *tsclient.Client) error) (err error) {
	sess, err := o.engine().Start(ctx,
		tsclient.WithDir(o.cfg.Server.Dir),
		tsclient.WithEnv(o.cfg.EnvList()...),
	)
	if err != nil {
		return err
	}
	defer func() {
		stopErr := sess.Stop(context.Background())
		if err == nil && stopErr != nil && !errors.Is(stopErr, tsclient.ErrTerminated) {
			err = stopErr
		}
	}()
	log.Entry(ctx).Debugf("session %s started", sess.ID())
	return fn(ctx, tsclient.NewClient(sess))
}

// absFile resolves path against the server working directory.
func (o *options) absFile(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(o.cfg.Server.Dir, path)
}

// printJSON writes raw indented, followed by a newline.
func printJSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "%s\n", data)
	return err
}
