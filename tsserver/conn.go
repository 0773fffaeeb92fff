package tsserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/dmora/tsclient"
	"github.com/dmora/tsclient/internal/errfmt"
	"github.com/dmora/tsclient/internal/log"
)

// Conn correlates requests with responses over one line-delimited JSON
// stream and routes events to a dispatcher.
//
// Two locks order the write side. writeMu serializes sequence allocation,
// registration and the pipe write, so sequence numbers reach the wire in
// allocation order and a request is registered before its bytes leave.
// mu guards the pending table; ReadLoop only takes mu, so a blocked pipe
// write never stalls response delivery.
//
// When ReadLoop exits, or Close is called, every pending call fails with
// an error matching tsclient.ErrConnectionClosed, and so does every later
// call.
type Conn struct {
	writeMu sync.Mutex
	w       io.Writer
	nextSeq int

	mu       sync.Mutex
	pending  map[int]*Call
	closed   bool
	closeErr error

	framer     *Framer
	dispatcher *dispatcher
	ctx        context.Context

	onMalformed func(line []byte, reason error)

	requests      atomic.Int64
	notifications atomic.Int64
	responses     atomic.Int64
	unmatched     atomic.Int64
	malformed     atomic.Int64

	done    chan struct{}
	readErr atomic.Value // stores error (nil = no error)
}

// connConfig holds optional configuration for a Conn.
type connConfig struct {
	maxMessageSize int

	// onEvent receives every dispatcher output in arrival order. It runs on
	// the ReadLoop goroutine.
	onEvent func(tsclient.Event)

	// onMalformed observes lines the codec rejected. The line is a copy.
	onMalformed func(line []byte, reason error)

	// ctx carries logging fields.
	ctx context.Context
}

// newConn creates a connection reading from r and writing to w.
// Call ReadLoop in a goroutine to start processing inbound messages.
func newConn(r io.Reader, w io.Writer, cfg connConfig) *Conn {
	ctx := cfg.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	onEvent := cfg.onEvent
	if onEvent == nil {
		onEvent = func(tsclient.Event) {}
	}
	framer := NewFramer(r, cfg.maxMessageSize)
	framer.onOversized = func(n int) {
		log.Entry(ctx).Debugf("dropping %d-byte line over the message size limit", n)
	}
	return &Conn{
		w:           w,
		pending:     make(map[int]*Call),
		framer:      framer,
		dispatcher:  newDispatcher(ctx, onEvent),
		ctx:         ctx,
		onMalformed: cfg.onMalformed,
		done:        make(chan struct{}),
	}
}

// Call is one in-flight request. It completes exactly once, with either a
// response body or an error.
type Call struct {
	seq     int
	command string

	once sync.Once
	done chan struct{}
	body json.RawMessage
	err  error
}

func newCall(seq int, command string) *Call {
	return &Call{seq: seq, command: command, done: make(chan struct{})}
}

// Seq returns the sequence number the request was sent with, or -1 if it
// was never written.
func (c *Call) Seq() int { return c.seq }

// Command returns the protocol command.
func (c *Call) Command() string { return c.command }

// Done returns a channel closed when the call completes.
func (c *Call) Done() <-chan struct{} { return c.done }

// Result returns the outcome of a completed call. Before Done is closed it
// returns (nil, nil).
func (c *Call) Result() (json.RawMessage, error) {
	select {
	case <-c.done:
		return c.body, c.err
	default:
		return nil, nil
	}
}

// Wait blocks until the call completes or ctx expires. Cancellation only
// abandons the wait: the request stays registered and a late response is
// still consumed.
func (c *Call) Wait(ctx context.Context) (json.RawMessage, error) {
	select {
	case <-c.done:
		return c.body, c.err
	case <-ctx.Done():
		// Prefer a result that arrived alongside cancellation.
		select {
		case <-c.done:
			return c.body, c.err
		default:
			return nil, ctx.Err()
		}
	}
}

func (c *Call) complete(body json.RawMessage, err error) {
	c.once.Do(func() {
		c.body = body
		c.err = err
		close(c.done)
	})
}

// failedCall returns a call that has already failed without being sent.
func failedCall(command string, err error) *Call {
	c := newCall(-1, command)
	c.complete(nil, err)
	return c
}

// Send writes a request that expects a response and returns its Call.
// The returned error is non-nil only when args cannot be encoded, in which
// case no sequence number is consumed. Write failures and a closed
// connection surface through the Call.
func (c *Conn) Send(command string, args any) (*Call, error) {
	raw, err := marshalArgs(args)
	if err != nil {
		return nil, fmt.Errorf("tsserver: marshal %s arguments: %w", command, err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	seq := c.nextSeq
	data, err := Encode(Request{Seq: seq, Type: typeRequest, Command: command, Arguments: raw})
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.closed {
		closeErr := c.closeErr
		c.mu.Unlock()
		return failedCall(command, closeErr), nil
	}
	c.nextSeq++
	call := newCall(seq, command)
	c.pending[seq] = call
	c.mu.Unlock()

	if _, err := c.w.Write(data); err != nil {
		c.mu.Lock()
		delete(c.pending, seq)
		c.mu.Unlock()
		call.complete(nil, fmt.Errorf("%w: write %s: %w", tsclient.ErrConnectionClosed, command, err))
		return call, nil
	}
	c.requests.Add(1)
	log.Entry(c.ctx).Tracef("-> %s seq=%d", command, seq)
	return call, nil
}

// SendNoReply writes a request whose response, if any, is not awaited.
// It consumes a sequence number like Send and returns it.
func (c *Conn) SendNoReply(command string, args any) (int, error) {
	raw, err := marshalArgs(args)
	if err != nil {
		return -1, fmt.Errorf("tsserver: marshal %s arguments: %w", command, err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.Lock()
	closed, closeErr := c.closed, c.closeErr
	c.mu.Unlock()
	if closed {
		return -1, closeErr
	}

	seq := c.nextSeq
	data, err := Encode(Request{Seq: seq, Type: typeRequest, Command: command, Arguments: raw})
	if err != nil {
		return -1, err
	}
	c.nextSeq++

	if _, err := c.w.Write(data); err != nil {
		return seq, fmt.Errorf("%w: write %s: %w", tsclient.ErrConnectionClosed, command, err)
	}
	c.notifications.Add(1)
	log.Entry(c.ctx).Tracef("-> %s seq=%d (no reply)", command, seq)
	return seq, nil
}

// Call sends a request and waits for its response.
func (c *Conn) Call(ctx context.Context, command string, args any) (json.RawMessage, error) {
	call, err := c.Send(command, args)
	if err != nil {
		return nil, err
	}
	return call.Wait(ctx)
}

// ReadLoop reads and dispatches inbound lines until the reader closes or
// an unrecoverable error occurs. On exit, every pending call fails.
// Must be called exactly once.
func (c *Conn) ReadLoop() {
	defer close(c.done)
	defer c.Close(tsclient.ErrConnectionClosed)

	for {
		line, ok := c.framer.Next()
		if !ok {
			break
		}
		c.handleLine(line)
	}

	if err := c.framer.Err(); err != nil {
		c.readErr.Store(err)
		log.Entry(c.ctx).Debugf("read loop stopped: %v", err)
	}
}

// Close marks the connection closed and fails every pending call with
// err. It does not close the underlying streams. Safe to call more than
// once; only the first error is kept.
func (c *Conn) Close(err error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.closeErr = err
	pending := c.pending
	c.pending = make(map[int]*Call)
	c.mu.Unlock()

	for _, call := range pending {
		call.complete(nil, err)
	}
}

// Err returns the ReadLoop error after it exits. Returns nil if ReadLoop
// hasn't finished or the reader closed cleanly.
func (c *Conn) Err() error {
	if v := c.readErr.Load(); v != nil {
		return v.(error)
	}
	return nil
}

// Done returns a channel that is closed when ReadLoop exits.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// Stats is a snapshot of connection counters.
type Stats struct {
	Requests      int64 // reply requests written
	Notifications int64 // no-reply requests written
	Responses     int64 // responses matched to a pending call
	Unmatched     int64 // responses whose request_seq was not pending
	Malformed     int64 // lines the codec rejected
	Skipped       int64 // lines the framer dropped before decoding
	Oversized     int64 // lines over the message size limit
	Events        int64 // events the dispatcher routed
	Pending       int   // calls currently awaiting a response
}

// Stats returns a snapshot of the connection counters.
func (c *Conn) Stats() Stats {
	c.mu.Lock()
	pending := len(c.pending)
	c.mu.Unlock()
	return Stats{
		Requests:      c.requests.Load(),
		Notifications: c.notifications.Load(),
		Responses:     c.responses.Load(),
		Unmatched:     c.unmatched.Load(),
		Malformed:     c.malformed.Load(),
		Skipped:       c.framer.Skipped(),
		Oversized:     c.framer.Oversized(),
		Events:        c.dispatcher.count(),
		Pending:       pending,
	}
}

// --- Internal ---

func (c *Conn) handleLine(line []byte) {
	msg := Decode(line)
	switch msg.Kind {
	case IncomingResponse:
		c.handleResponse(msg.Response)
	case IncomingEvent:
		c.dispatcher.dispatch(msg.Event)
	default:
		c.malformed.Add(1)
		log.Entry(c.ctx).Debugf("dropping malformed line (%v): %s", msg.Reason, errfmt.Snippet(string(line)))
		if c.onMalformed != nil {
			c.onMalformed(append([]byte(nil), line...), msg.Reason)
		}
	}
}

// handleResponse completes the pending call for resp.RequestSeq. A
// response nobody is waiting for is logged and dropped.
func (c *Conn) handleResponse(resp Response) {
	c.mu.Lock()
	call, ok := c.pending[resp.RequestSeq]
	if ok {
		delete(c.pending, resp.RequestSeq)
	}
	c.mu.Unlock()

	if !ok {
		c.unmatched.Add(1)
		log.Entry(c.ctx).Debugf("dropping response for unknown request_seq %d (%s)", resp.RequestSeq, errfmt.SanitizeName(resp.Command))
		return
	}

	c.responses.Add(1)
	if !resp.Success {
		call.complete(nil, &tsclient.ApplicationError{
			Command: call.command,
			Seq:     call.seq,
			Message: errfmt.Truncate(resp.Message),
		})
		return
	}
	call.complete(resp.Body, nil)
}
