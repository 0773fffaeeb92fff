package tsclient

import (
	"context"
	"encoding/json"
)

// Session is one running child process and its correlation state.
//
// Requests may be issued from any number of goroutines. Responses are
// matched to requests by sequence number; completion order across callers
// is unspecified.
//
// Important: Events must be drained. The session pushes lifecycle and
// diagnostic events into a bounded queue; once it is full, the reader stops
// consuming the child's output and pending requests stall until the
// consumer catches up.
type Session interface {
	// ID returns the session identifier used in logs.
	ID() string

	// Request sends a command that expects a response and blocks until the
	// response arrives, the session ends, or ctx is done. Cancelling ctx
	// abandons the wait; the request itself is not cancelled.
	Request(ctx context.Context, command string, args any) (json.RawMessage, error)

	// Notify sends a command for which the server sends no response.
	// It still consumes a sequence number.
	Notify(command string, args any) error

	// Events returns the channel of out-of-band events. The channel is
	// closed after the final EventConnectionClosed.
	Events() <-chan Event

	// Stop terminates the child process group: SIGTERM, then SIGKILL after
	// a grace period. Safe to call multiple times.
	Stop(ctx context.Context) error

	// Wait blocks until the session ends and returns its terminal error.
	Wait() error

	// Err returns the terminal error, or nil while the session is running.
	Err() error
}

// Engine starts sessions.
type Engine interface {
	// Start launches the child process and returns once its pipes are
	// connected. Initialization completion is signaled later through an
	// EventLifecycle (projectLoadingFinish).
	Start(ctx context.Context, opts ...Option) (Session, error)

	// Validate checks that the configured executable can be found.
	Validate() error
}
