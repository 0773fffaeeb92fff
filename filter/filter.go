// Package filter provides composable channel middleware for session event
// streams. Consumers wrap sess.Events() with these functions to select the
// events they need.
package filter

import (
	"context"

	"github.com/dmora/tsclient"
)

// Filter returns a channel that only passes events of the given kinds.
// Spawns a goroutine that exits when ctx is cancelled or ch is closed.
// The returned channel is closed when the goroutine exits.
func Filter(ctx context.Context, ch <-chan tsclient.Event, kinds ...tsclient.EventKind) <-chan tsclient.Event {
	allowed := make(map[tsclient.EventKind]struct{}, len(kinds))
	for _, k := range kinds {
		allowed[k] = struct{}{}
	}
	return pipe(ctx, ch, func(ev tsclient.Event) bool {
		_, ok := allowed[ev.Kind]
		return ok
	})
}

// Diagnostics returns a channel that passes only diagnostic batches.
// Spawns a goroutine that exits when ctx is cancelled or ch is closed.
func Diagnostics(ctx context.Context, ch <-chan tsclient.Event) <-chan tsclient.Event {
	return pipe(ctx, ch, func(ev tsclient.Event) bool {
		return ev.Kind == tsclient.EventDiagnostics
	})
}

// Lifecycle returns a channel that passes lifecycle events. With names, only
// events whose wire name is listed pass. Spawns a goroutine that exits when
// ctx is cancelled or ch is closed.
func Lifecycle(ctx context.Context, ch <-chan tsclient.Event, names ...string) <-chan tsclient.Event {
	allowed := make(map[string]struct{}, len(names))
	for _, n := range names {
		allowed[n] = struct{}{}
	}
	return pipe(ctx, ch, func(ev tsclient.Event) bool {
		if ev.Kind != tsclient.EventLifecycle {
			return false
		}
		if len(allowed) == 0 {
			return true
		}
		_, ok := allowed[ev.Name]
		return ok
	})
}

// IsTerminal reports whether ev is the last event a session emits.
func IsTerminal(ev tsclient.Event) bool {
	return ev.Kind == tsclient.EventConnectionClosed
}

// pipe spawns a goroutine that reads from ch, passes events matching
// the predicate to the returned channel, and closes it when ch closes
// or ctx is cancelled. Callers must either drain the returned channel
// or cancel ctx to avoid goroutine leaks. Events accepted by the
// predicate may be silently dropped if ctx is cancelled mid-send.
func pipe(ctx context.Context, ch <-chan tsclient.Event, accept func(tsclient.Event) bool) <-chan tsclient.Event {
	out := make(chan tsclient.Event)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				if accept(ev) && !trySend(ctx, out, ev) {
					return
				}
			}
		}
	}()
	return out
}

// trySend sends ev on out, returning true on success.
// Returns false if ctx is cancelled before the send completes.
func trySend(ctx context.Context, out chan<- tsclient.Event, ev tsclient.Event) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
