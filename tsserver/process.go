package tsserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/acarl005/stripansi"

	"github.com/dmora/tsclient"
	"github.com/dmora/tsclient/internal/errfmt"
	"github.com/dmora/tsclient/internal/log"
)

// Session is one running server process. It implements tsclient.Session
// and additionally exposes the Call-level API and connection statistics.
type Session struct {
	id     string
	conn   *Conn
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	opts   EngineOptions
	logCtx context.Context

	events       chan tsclient.Event
	eventsMu     sync.Mutex // guards events channel close
	eventsClosed bool
	done         chan struct{}

	termErr    error
	stopping   atomic.Bool
	stopOnce   sync.Once
	finishOnce sync.Once

	ctx    context.Context
	cancel context.CancelFunc
}

var _ tsclient.Session = (*Session)(nil)

// newSession creates a session shell. The Conn and ReadLoop are wired up
// by Engine.StartSession after construction.
func newSession(id string, cmd *exec.Cmd, stdin io.WriteCloser, opts EngineOptions, logCtx context.Context) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		id:     id,
		cmd:    cmd,
		stdin:  stdin,
		opts:   opts,
		logCtx: logCtx,
		events: make(chan tsclient.Event, opts.EventBuffer),
		done:   make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
	}
}

// ID returns the session identifier used in log fields.
func (s *Session) ID() string { return s.id }

// Pid returns the server process id.
func (s *Session) Pid() int {
	if s.cmd.Process == nil {
		return 0
	}
	return s.cmd.Process.Pid
}

// Send writes a reply request and returns its Call without waiting.
func (s *Session) Send(command string, args any) (*Call, error) {
	return s.conn.Send(command, args)
}

// SendNoReply writes a no-reply request and returns its sequence number.
func (s *Session) SendNoReply(command string, args any) (int, error) {
	return s.conn.SendNoReply(command, args)
}

// Request sends a reply request and waits for the response body.
func (s *Session) Request(ctx context.Context, command string, args any) (json.RawMessage, error) {
	return s.conn.Call(ctx, command, args)
}

// Notify sends a no-reply request.
func (s *Session) Notify(command string, args any) error {
	_, err := s.conn.SendNoReply(command, args)
	return err
}

// Events returns the channel of dispatched events. It receives a final
// EventConnectionClosed and is then closed.
func (s *Session) Events() <-chan tsclient.Event {
	return s.events
}

// Stats returns a snapshot of the connection counters.
func (s *Session) Stats() Stats {
	return s.conn.Stats()
}

// Stop terminates the session. Safe to call multiple times.
func (s *Session) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() {
		s.stopping.Store(true)

		// Close stdin to signal EOF.
		_ = s.stdin.Close()

		// Cancel session context to unblock emit().
		s.cancel()

		// SIGTERM → grace → SIGKILL.
		_ = terminate(s.cmd.Process)

		select {
		case <-s.done:
		case <-time.After(s.opts.GracePeriod):
			log.Entry(s.logCtx).Debugf("grace period %s elapsed, killing", s.opts.GracePeriod)
			_ = kill(s.cmd.Process)
			<-s.done
		case <-ctx.Done():
			_ = kill(s.cmd.Process)
			<-s.done
		}
	})

	<-s.done
	return s.termErr
}

// Wait blocks until the session ends.
func (s *Session) Wait() error {
	<-s.done
	return s.termErr
}

// Err returns the terminal error, or nil if still running.
func (s *Session) Err() error {
	select {
	case <-s.done:
		return s.termErr
	default:
		return nil
	}
}

// emit sends an event to the events channel. Blocks until delivered,
// context is cancelled, or the channel is marked closed by finish().
//
// Holds eventsMu for the entire check+send to prevent a data race with
// finish() closing the channel. finish() calls s.cancel() before acquiring
// eventsMu, so an emit() blocked on a full channel unblocks via ctx.Done().
func (s *Session) emit(ev tsclient.Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	s.eventsMu.Lock()
	defer s.eventsMu.Unlock()
	if s.eventsClosed {
		return
	}
	// Deliver when there is room even if the session is stopping.
	select {
	case s.events <- ev:
		return
	default:
	}
	select {
	case s.events <- ev:
	case <-s.ctx.Done():
	}
}

// finish records the terminal error, fails pending calls, emits the final
// EventConnectionClosed and closes the events channel.
//
// done closes before the final event so Wait and Stop never depend on the
// consumer draining Events.
func (s *Session) finish(err error) {
	s.finishOnce.Do(func() {
		if s.stopping.Load() {
			err = tsclient.ErrTerminated
		} else {
			err = exitError(err)
		}
		s.termErr = err
		s.conn.Close(tsclient.ErrConnectionClosed)
		close(s.done)

		switch {
		case errors.Is(err, tsclient.ErrTerminated):
			log.Entry(s.logCtx).Debug("session stopped")
		case err != nil:
			log.Entry(s.logCtx).Warnf("server exited: %v", err)
		default:
			log.Entry(s.logCtx).Debug("session ended")
		}

		s.emit(tsclient.Event{
			Kind:       tsclient.EventConnectionClosed,
			RequestSeq: -1,
			Err:        err,
		})
		s.cancel()

		s.eventsMu.Lock()
		s.eventsClosed = true
		close(s.events)
		s.eventsMu.Unlock()
	})
}

// exitError maps a cmd.Wait error to *tsclient.ExitError.
func exitError(err error) error {
	if err == nil {
		return nil
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return &tsclient.ExitError{Code: ee.ExitCode(), Err: err}
	}
	return err
}

// stderrLogger is the child's stderr. Complete lines are logged at debug
// level with terminal escapes removed; tsserver writes nothing on stderr
// that the protocol depends on.
type stderrLogger struct {
	ctx context.Context
	mu  sync.Mutex
	buf []byte
}

func newStderrLogger(ctx context.Context) *stderrLogger {
	return &stderrLogger{ctx: ctx}
}

func (l *stderrLogger) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buf = append(l.buf, p...)
	for {
		i := bytes.IndexByte(l.buf, '\n')
		if i < 0 {
			break
		}
		l.logLine(l.buf[:i])
		l.buf = l.buf[i+1:]
	}
	// An unterminated line past errfmt.MaxLen is flushed as is.
	if len(l.buf) > errfmt.MaxLen {
		l.logLine(l.buf)
		l.buf = nil
	}
	return len(p), nil
}

func (l *stderrLogger) logLine(line []byte) {
	text := stripansi.Strip(string(bytes.TrimRight(line, "\r")))
	if text == "" {
		return
	}
	log.Entry(l.ctx).WithField("stream", "stderr").Debug(errfmt.Snippet(text))
}
