package tsserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Wire message types.
const (
	typeRequest  = "request"
	typeResponse = "response"
	typeEvent    = "event"
)

// Request is an outbound protocol request. Arguments are held as
// pre-encoded JSON so that encoding the envelope cannot fail on them.
type Request struct {
	Seq       int             `json:"seq"`
	Type      string          `json:"type"`
	Command   string          `json:"command"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// IncomingKind classifies a decoded line.
type IncomingKind int

const (
	// IncomingMalformed is a line that is not JSON, not an object, or
	// carries neither a numeric request_seq nor type "event".
	IncomingMalformed IncomingKind = iota

	// IncomingResponse answers a request.
	IncomingResponse

	// IncomingEvent is an out-of-band event.
	IncomingEvent
)

func (k IncomingKind) String() string {
	switch k {
	case IncomingResponse:
		return "response"
	case IncomingEvent:
		return "event"
	default:
		return "malformed"
	}
}

// Response is a decoded response message.
type Response struct {
	RequestSeq int
	Success    bool
	Command    string
	Body       json.RawMessage
	Message    string
}

// EventMessage is a decoded event message.
type EventMessage struct {
	Name string
	Body json.RawMessage
}

// Incoming is the tagged result of Decode. Exactly one of Response or
// Event is meaningful, selected by Kind. Reason explains a malformed line.
type Incoming struct {
	Kind     IncomingKind
	Response Response
	Event    EventMessage
	Reason   error
}

var (
	errNotObject       = errors.New("not a JSON object")
	errNoDiscriminator = errors.New("neither request_seq nor event type present")
)

// marshalArgs encodes request arguments without HTML escaping. nil yields
// nil (the field is omitted); a json.RawMessage is validated and compacted
// so that a pre-encoded payload cannot smuggle a raw line break onto the
// wire.
func marshalArgs(args any) (json.RawMessage, error) {
	switch v := args.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		if v == nil {
			return nil, nil
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, v); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(args); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

// Encode serializes req as one protocol line terminated by "\n".
// Field order is fixed by the Request struct; HTML characters are not
// escaped. JSON string escaping guarantees the output holds no other
// line break.
func Encode(req Request) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(req); err != nil { // Encode appends '\n'
		return nil, fmt.Errorf("tsserver: encode %s: %w", req.Command, err)
	}
	return buf.Bytes(), nil
}

// Decode classifies one line. It never fails: anything that is not a
// recognizable response or event comes back as IncomingMalformed.
func Decode(line []byte) Incoming {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(line, &fields); err != nil {
		return Incoming{Kind: IncomingMalformed, Reason: err}
	}
	if fields == nil {
		return Incoming{Kind: IncomingMalformed, Reason: errNotObject}
	}

	if seq, ok := numericField(fields["request_seq"]); ok {
		resp := Response{RequestSeq: seq}
		_ = json.Unmarshal(fields["success"], &resp.Success)
		_ = json.Unmarshal(fields["command"], &resp.Command)
		_ = json.Unmarshal(fields["message"], &resp.Message)
		resp.Body = fields["body"]
		return Incoming{Kind: IncomingResponse, Response: resp}
	}

	var typ string
	_ = json.Unmarshal(fields["type"], &typ)
	if typ == typeEvent {
		ev := EventMessage{Body: fields["body"]}
		_ = json.Unmarshal(fields["event"], &ev.Name)
		return Incoming{Kind: IncomingEvent, Event: ev}
	}

	return Incoming{Kind: IncomingMalformed, Reason: errNoDiscriminator}
}

// numericField reports whether raw is a JSON number and returns it as an
// int. Non-integral numbers still classify as numeric but map to -1, which
// no request ever uses.
func numericField(raw json.RawMessage) (int, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, false
	}
	if c := raw[0]; c != '-' && (c < '0' || c > '9') {
		return 0, false
	}
	if n, err := strconv.Atoi(string(raw)); err == nil {
		return n, true
	}
	if _, err := strconv.ParseFloat(string(raw), 64); err == nil {
		return -1, true
	}
	return 0, false
}
