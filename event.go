package tsclient

import (
	"encoding/json"
	"time"
)

// EventKind identifies the kind of event a session emits.
// The set is fixed; consumers can switch over it exhaustively.
type EventKind string

const (
	// EventLifecycle re-emits a server lifecycle event such as
	// projectLoadingFinish. Name holds the wire event name.
	EventLifecycle EventKind = "lifecycle"

	// EventDiagnostics carries one diagnostic batch, released when the
	// server signals requestCompleted. Diagnostics is never nil: an empty
	// batch means "no diagnostics", not "not yet complete".
	EventDiagnostics EventKind = "diagnostics"

	// EventConnectionClosed is emitted once when the session ends. Err holds
	// the terminal error (nil on a clean exit).
	EventConnectionClosed EventKind = "connection_closed"
)

// Well-known wire event names.
const (
	EventNameProjectLoadingStart  = "projectLoadingStart"
	EventNameProjectLoadingFinish = "projectLoadingFinish"
	EventNameSemanticDiag         = "semanticDiag"
	EventNameSyntaxDiag           = "syntaxDiag"
	EventNameSuggestionDiag       = "suggestionDiag"
	EventNameRequestCompleted     = "requestCompleted"
)

// Event is an out-of-band notification from a session.
type Event struct {
	// Kind identifies the event.
	Kind EventKind `json:"kind"`

	// Name is the wire event name that produced the event: the lifecycle
	// event itself, or requestCompleted for a diagnostics batch.
	Name string `json:"name,omitempty"`

	// Body is the raw event body (lifecycle events only).
	Body json.RawMessage `json:"body,omitempty"`

	// Diagnostics holds the bodies of the diagnostic events of one batch,
	// in arrival order (diagnostics events only).
	Diagnostics []json.RawMessage `json:"diagnostics,omitempty"`

	// RequestSeq is the request_seq carried by requestCompleted, or -1 when
	// the server did not send one (diagnostics events only).
	RequestSeq int `json:"request_seq"`

	// Err is the terminal session error (connection-closed events only).
	Err error `json:"-"`

	// Timestamp is when the event was produced.
	Timestamp time.Time `json:"timestamp"`
}
