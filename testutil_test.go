package tsclient

import (
	"context"
	"encoding/json"
	"sync"
)

// sentRequest records one call made on a mockSession.
type sentRequest struct {
	command string
	args    any
	noReply bool
}

// mockSession is a test double for Session.
// Shared across root-package test files.
type mockSession struct {
	events    chan Event
	requestFn func(ctx context.Context, command string, args any) (json.RawMessage, error)
	notifyFn  func(command string, args any) error
	stopFn    func(ctx context.Context) error
	termErr   error
	done      chan struct{}

	mu   sync.Mutex
	sent []sentRequest
}

func newMockSession() *mockSession {
	return &mockSession{
		events: make(chan Event, 16),
		done:   make(chan struct{}),
	}
}

func (m *mockSession) ID() string { return "mock" }

func (m *mockSession) Request(ctx context.Context, command string, args any) (json.RawMessage, error) {
	m.record(sentRequest{command: command, args: args})
	if m.requestFn != nil {
		return m.requestFn(ctx, command, args)
	}
	return json.RawMessage(`{}`), nil
}

func (m *mockSession) Notify(command string, args any) error {
	m.record(sentRequest{command: command, args: args, noReply: true})
	if m.notifyFn != nil {
		return m.notifyFn(command, args)
	}
	return nil
}

func (m *mockSession) Events() <-chan Event { return m.events }

func (m *mockSession) Stop(ctx context.Context) error {
	if m.stopFn != nil {
		return m.stopFn(ctx)
	}
	return nil
}

func (m *mockSession) Wait() error {
	<-m.done
	return m.termErr
}

func (m *mockSession) Err() error {
	select {
	case <-m.done:
		return m.termErr
	default:
		return nil
	}
}

func (m *mockSession) record(r sentRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, r)
}

func (m *mockSession) requests() []sentRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentRequest(nil), m.sent...)
}

// close closes the events channel and done channel.
func (m *mockSession) close() {
	close(m.events)
	close(m.done)
}
