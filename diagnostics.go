package tsclient

import (
	"context"
	"encoding/json"
)

// CollectDiagnostics sends geterr for files and drains sess.Events() until
// the diagnostics batch for that geterr arrives, returning it. handler, if
// non-nil, is called for every other event seen meanwhile; a handler error
// stops the drain and is returned.
//
// When sess reports the sequence number of no-reply commands (as
// *tsserver.Session does), batches released for other requests are passed
// to handler and skipped. Otherwise the first batch after the geterr is
// returned, which may belong to an earlier geterr still in flight.
//
// If the events channel closes first, CollectDiagnostics returns the
// session's terminal error, or ErrConnectionClosed if it has none.
func CollectDiagnostics(ctx context.Context, sess Session, files []string, delay int, handler func(Event) error) ([]json.RawMessage, error) {
	args := GeterrArgs{Files: files, Delay: delay}
	seq := -1
	if sn, ok := sess.(seqNotifier); ok {
		n, err := sn.SendNoReply(CommandGeterr, args)
		if err != nil {
			return nil, err
		}
		seq = n
	} else if err := sess.Notify(CommandGeterr, args); err != nil {
		return nil, err
	}
	return drainDiagnostics(ctx, sess, seq, handler)
}

// seqNotifier is a Session that reports the sequence number a no-reply
// command was written with.
type seqNotifier interface {
	SendNoReply(command string, args any) (int, error)
}

// drainDiagnostics reads sess.Events() until the batch for seq, channel
// close, or context cancellation. A negative seq, or a batch without a
// request_seq, matches any batch.
func drainDiagnostics(ctx context.Context, sess Session, seq int, handler func(Event) error) ([]json.RawMessage, error) {
	events := sess.Events()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil, closedErr(sess)
			}
			if ev.Kind == EventDiagnostics && (seq < 0 || ev.RequestSeq < 0 || ev.RequestSeq == seq) {
				return ev.Diagnostics, nil
			}
			if handler != nil {
				if err := handler(ev); err != nil {
					return nil, err
				}
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// closedErr returns the session's terminal error, falling back to
// ErrConnectionClosed for a clean exit.
func closedErr(sess Session) error {
	if err := sess.Err(); err != nil {
		return err
	}
	return ErrConnectionClosed
}
