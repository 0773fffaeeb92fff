package tsserver

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/dmora/tsclient"
	"github.com/dmora/tsclient/internal/log"
)

// eventQueueSize is the buffer between ReadLoop and the goroutine that
// feeds Session.Events. If the server emits more than eventQueueSize
// events before the consumer drains any, ReadLoop blocks and responses
// stall behind them. Consumers MUST drain Events concurrently with
// Request.
const eventQueueSize = 1024

// Engine launches tsserver sessions.
type Engine struct {
	opts EngineOptions
}

var _ tsclient.Engine = (*Engine)(nil)

// NewEngine creates an engine. Use EngineOption functions to customize the
// binary, arguments, buffer sizes and shutdown grace period.
func NewEngine(opts ...EngineOption) *Engine {
	return &Engine{opts: resolveEngineOptions(opts...)}
}

// Options returns the resolved engine options.
func (e *Engine) Options() EngineOptions {
	o := e.opts
	o.Args = slices.Clone(o.Args)
	return o
}

// Validate checks that the engine's binary is configured and available on PATH.
func (e *Engine) Validate() error {
	_, err := e.resolveBinary()
	return err
}

// resolveBinary checks for a configured binary and resolves it via PATH.
func (e *Engine) resolveBinary() (string, error) {
	if e.opts.Binary == "" {
		return "", fmt.Errorf("%w: no binary configured (use WithBinary)", tsclient.ErrUnavailable)
	}
	resolved, err := exec.LookPath(e.opts.Binary)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", tsclient.ErrUnavailable, e.opts.Binary, err)
	}
	return resolved, nil
}

// Start implements tsclient.Engine.
func (e *Engine) Start(ctx context.Context, opts ...tsclient.Option) (tsclient.Session, error) {
	s, err := e.StartSession(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// StartSession spawns the server and returns a running session. The
// process is not tied to ctx; end it with Session.Stop.
//
// A failure to launch returns a *tsclient.LaunchError and leaves no process
// or pipes behind.
func (e *Engine) StartSession(ctx context.Context, opts ...tsclient.Option) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	startOpts := tsclient.ResolveOptions(opts...)
	if startOpts.Dir != "" && !filepath.IsAbs(startOpts.Dir) {
		return nil, fmt.Errorf("tsserver: dir must be an absolute path, got %q", startOpts.Dir)
	}

	id := uuid.NewString()
	logCtx := log.WithSession(context.Background(), id, e.opts.Binary)

	cmd, stdin, stdout, err := e.spawn(logCtx, startOpts)
	if err != nil {
		return nil, err
	}

	s := newSession(id, cmd, stdin, e.opts, logCtx)
	wireReadLoop(s, stdout, e.opts)

	log.Entry(logCtx).Debugf("started pid %d", cmd.Process.Pid)
	return s, nil
}

// spawn resolves the binary and starts the server process.
func (e *Engine) spawn(ctx context.Context, so tsclient.StartOptions) (*exec.Cmd, io.WriteCloser, io.ReadCloser, error) {
	resolved, err := e.resolveBinary()
	if err != nil {
		return nil, nil, nil, &tsclient.LaunchError{Binary: e.opts.Binary, Err: err}
	}

	args := slices.Concat(e.opts.Args, so.Args)
	cmd := buildCommand(resolved, args)
	cmd.Dir = so.Dir
	if len(so.Env) > 0 {
		cmd.Env = append(os.Environ(), so.Env...)
	}
	cmd.Stderr = newStderrLogger(ctx)
	// Bounds how long Wait blocks on stderr copying once the process is
	// gone, in case a grandchild still holds the pipe.
	cmd.WaitDelay = e.opts.GracePeriod

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, nil, nil, &tsclient.LaunchError{Binary: resolved, Err: fmt.Errorf("stdin pipe: %w", err)}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		_ = stdin.Close()
		return nil, nil, nil, &tsclient.LaunchError{Binary: resolved, Err: fmt.Errorf("stdout pipe: %w", err)}
	}
	// Start closes both pipes itself when it fails.
	if err := cmd.Start(); err != nil {
		return nil, nil, nil, &tsclient.LaunchError{Binary: resolved, Err: err}
	}

	return cmd, stdin, stdout, nil
}

// wireReadLoop creates the Conn, starts the dispatch goroutine, and
// launches ReadLoop in the background. On ReadLoop exit, queued events are
// drained and the session is finished.
func wireReadLoop(s *Session, stdout io.Reader, opts EngineOptions) {
	queue := make(chan tsclient.Event, eventQueueSize)
	s.conn = newConn(stdout, s.stdin, connConfig{
		maxMessageSize: opts.MaxMessageSize,
		ctx:            s.logCtx,
		onEvent: func(ev tsclient.Event) {
			select {
			case queue <- ev:
			case <-s.ctx.Done():
			}
		},
	})

	// Dispatch goroutine: drains queue into the events channel.
	var dispatchDone sync.WaitGroup
	dispatchDone.Add(1)
	go func() {
		defer dispatchDone.Done()
		for ev := range queue {
			s.emit(ev)
		}
	}()

	// ReadLoop goroutine: the only producer for queue.
	go func() {
		s.conn.ReadLoop()
		if err := s.conn.Err(); err != nil {
			// The pipe is unusable but the child may still run; Wait
			// would block until it exits on its own.
			log.Entry(s.logCtx).Warnf("stdout read failed, killing server: %v", err)
			_ = kill(s.cmd.Process)
		}
		close(queue)
		dispatchDone.Wait()
		s.finish(s.cmd.Wait())
	}()
}
