package tsserver

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/dmora/tsclient"
	"github.com/dmora/tsclient/internal/log"
)

// eventPolicy says what the dispatcher does with one wire event name.
type eventPolicy int

const (
	// policyInformational events are dropped.
	policyInformational eventPolicy = iota

	// policyLifecycle events are re-emitted as EventLifecycle.
	policyLifecycle

	// policyDiagnostic event bodies are appended to the current batch.
	policyDiagnostic

	// policyBatchTerminator releases the current batch.
	policyBatchTerminator
)

// eventPolicies lists the event names with a non-default policy. Names
// not listed, including ones a newer server introduces, are informational.
var eventPolicies = map[string]eventPolicy{
	tsclient.EventNameProjectLoadingStart:  policyLifecycle,
	tsclient.EventNameProjectLoadingFinish: policyLifecycle,
	tsclient.EventNameSemanticDiag:         policyDiagnostic,
	tsclient.EventNameSyntaxDiag:           policyDiagnostic,
	tsclient.EventNameSuggestionDiag:       policyDiagnostic,
	tsclient.EventNameRequestCompleted:     policyBatchTerminator,

	"telemetry":                   policyInformational,
	"projectsUpdatedInBackground": policyInformational,
	"typingsInstallerPid":         policyInformational,
	"surveyReady":                 policyInformational,
	"configFileDiag":              policyInformational,
	"largeFileReferenced":         policyInformational,
}

func classifyEvent(name string) eventPolicy {
	return eventPolicies[name]
}

// dispatcher applies event policies and owns the diagnostic batch. It is
// driven only from the ReadLoop goroutine, so the batch needs no lock.
type dispatcher struct {
	ctx     context.Context
	emit    func(tsclient.Event)
	batch   []json.RawMessage
	emitted atomic.Int64
}

func newDispatcher(ctx context.Context, emit func(tsclient.Event)) *dispatcher {
	return &dispatcher{ctx: ctx, emit: emit}
}

func (d *dispatcher) dispatch(ev EventMessage) {
	switch classifyEvent(ev.Name) {
	case policyLifecycle:
		d.send(tsclient.Event{
			Kind:       tsclient.EventLifecycle,
			Name:       ev.Name,
			Body:       ev.Body,
			RequestSeq: -1,
		})
	case policyDiagnostic:
		d.batch = append(d.batch, ev.Body)
	case policyBatchTerminator:
		d.send(tsclient.Event{
			Kind:        tsclient.EventDiagnostics,
			Name:        ev.Name,
			Diagnostics: d.takeBatch(),
			RequestSeq:  completedSeq(ev.Body),
		})
	default:
		log.Entry(d.ctx).Tracef("ignoring event %q", ev.Name)
	}
}

func (d *dispatcher) send(ev tsclient.Event) {
	ev.Timestamp = time.Now()
	d.emitted.Add(1)
	d.emit(ev)
}

// takeBatch returns the accumulated batch and resets it. The result is
// never nil: an empty batch is a real answer.
func (d *dispatcher) takeBatch() []json.RawMessage {
	batch := d.batch
	d.batch = nil
	if batch == nil {
		batch = []json.RawMessage{}
	}
	return batch
}

func (d *dispatcher) count() int64 {
	return d.emitted.Load()
}

// completedSeq extracts request_seq from a requestCompleted body, or -1.
func completedSeq(body json.RawMessage) int {
	var v struct {
		RequestSeq json.RawMessage `json:"request_seq"`
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return -1
	}
	if seq, ok := numericField(v.RequestSeq); ok {
		return seq
	}
	return -1
}
