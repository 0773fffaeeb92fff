package tsclient

import (
	"errors"
	"fmt"
	"strconv"
)

// Sentinel errors for session operations.
var (
	// ErrUnavailable indicates the engine cannot start
	// (binary not configured or not found on PATH).
	ErrUnavailable = errors.New("tsclient: server unavailable")

	// ErrConnectionClosed indicates the child process exited or its pipes
	// closed. Every request still pending at that moment fails with an
	// error matching ErrConnectionClosed, and so does every later request.
	ErrConnectionClosed = errors.New("tsclient: connection closed")

	// ErrTerminated is the terminal error of a session ended through
	// Session.Stop.
	ErrTerminated = errors.New("tsclient: session terminated")
)

// LaunchError reports that the child process could not be started.
// No pipes or process are left behind when Start returns a LaunchError.
type LaunchError struct {
	Binary string
	Err    error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("tsclient: launch %s: %v", e.Binary, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// ApplicationError is a response with success=false. Only the caller that
// issued the request observes it; other in-flight requests are unaffected.
type ApplicationError struct {
	// Command is the protocol command of the failed request.
	Command string

	// Seq is the sequence number the request was sent with.
	Seq int

	// Message is the server-supplied failure message.
	Message string
}

func (e *ApplicationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("tsclient: %s (seq %d) failed", e.Command, e.Seq)
	}
	return fmt.Sprintf("tsclient: %s (seq %d): %s", e.Command, e.Seq, e.Message)
}

// ExitError represents a child process that exited with a non-zero status.
// Err wraps the underlying error; use errors.As with *exec.ExitError for
// signal detail.
//
// Code semantics: positive = exit status, negative (-1) = signal-killed.
//
// Sessions produce ExitError only for natural exits. User-initiated stops
// (via Session.Stop) produce ErrTerminated instead.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return "tsclient: exit status " + strconv.Itoa(e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode extracts the exit code from an error chain containing *ExitError.
// Returns (0, false) if the error does not contain an ExitError.
func ExitCode(err error) (int, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}

// IsApplicationError reports whether err carries a server-side failure and
// returns it.
func IsApplicationError(err error) (*ApplicationError, bool) {
	var appErr *ApplicationError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
