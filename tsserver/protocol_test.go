package tsserver

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEncode_QuickinfoLine(t *testing.T) {
	args, err := marshalArgs(map[string]any{"file": "/p/a.ts", "line": 1, "offset": 7})
	if err != nil {
		t.Fatalf("marshalArgs: %v", err)
	}
	got, err := Encode(Request{Seq: 1, Type: typeRequest, Command: "quickinfo", Arguments: args})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := `{"seq":1,"type":"request","command":"quickinfo","arguments":{"file":"/p/a.ts","line":1,"offset":7}}` + "\n"
	if string(got) != want {
		t.Errorf("Encode =\n%s\nwant\n%s", got, want)
	}
}

func TestEncode_NilArgumentsOmitted(t *testing.T) {
	got, err := Encode(Request{Seq: 0, Type: typeRequest, Command: "reloadProjects"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if want := `{"seq":0,"type":"request","command":"reloadProjects"}` + "\n"; string(got) != want {
		t.Errorf("Encode = %q, want %q", got, want)
	}
}

func TestEncode_SingleLine(t *testing.T) {
	args, err := marshalArgs(json.RawMessage("{\n  \"fileContent\": \"a\\nb\\r\\nc\"\n}"))
	if err != nil {
		t.Fatalf("marshalArgs: %v", err)
	}
	got, err := Encode(Request{Seq: 2, Type: typeRequest, Command: "open", Arguments: args})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	body := strings.TrimSuffix(string(got), "\n")
	if strings.ContainsAny(body, "\r\n") {
		t.Errorf("encoded request spans lines: %q", got)
	}
	if !strings.HasSuffix(string(got), "\n") {
		t.Errorf("missing terminator: %q", got)
	}
}

func TestEncode_NoHTMLEscaping(t *testing.T) {
	tests := []struct {
		name string
		args any
	}{
		{name: "map", args: map[string]string{"file": "a<b>&c.ts"}},
		{name: "struct", args: struct {
			File string `json:"file"`
		}{File: "a<b>&c.ts"}},
		{name: "raw", args: json.RawMessage(`{"file": "a<b>&c.ts"}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, err := marshalArgs(tt.args)
			if err != nil {
				t.Fatalf("marshalArgs: %v", err)
			}
			if want := `{"file":"a<b>&c.ts"}`; string(args) != want {
				t.Errorf("marshalArgs = %s, want %s", args, want)
			}
			got, err := Encode(Request{Type: typeRequest, Command: "open", Arguments: args})
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			if !strings.Contains(string(got), `"arguments":{"file":"a<b>&c.ts"}`) {
				t.Errorf("Encode escaped HTML: %s", got)
			}
		})
	}
}

func TestMarshalArgs_InvalidRaw(t *testing.T) {
	if _, err := marshalArgs(json.RawMessage(`{"broken"`)); err == nil {
		t.Error("expected error for invalid raw arguments")
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Incoming
	}{
		{
			name: "response",
			line: `{"seq":0,"type":"response","command":"quickinfo","request_seq":1,"success":true,"body":{"displayString":"const x: number"}}`,
			want: Incoming{Kind: IncomingResponse, Response: Response{
				RequestSeq: 1,
				Success:    true,
				Command:    "quickinfo",
				Body:       json.RawMessage(`{"displayString":"const x: number"}`),
			}},
		},
		{
			name: "failed response",
			line: `{"request_seq":4,"success":false,"message":"No project."}`,
			want: Incoming{Kind: IncomingResponse, Response: Response{RequestSeq: 4, Message: "No project."}},
		},
		{
			name: "response without type",
			line: `{"request_seq":0,"success":true}`,
			want: Incoming{Kind: IncomingResponse, Response: Response{RequestSeq: 0, Success: true}},
		},
		{
			name: "fractional request_seq",
			line: `{"request_seq":1.5,"success":true}`,
			want: Incoming{Kind: IncomingResponse, Response: Response{RequestSeq: -1, Success: true}},
		},
		{
			name: "event",
			line: `{"seq":0,"type":"event","event":"semanticDiag","body":{"file":"/p/a.ts","diagnostics":[]}}`,
			want: Incoming{Kind: IncomingEvent, Event: EventMessage{
				Name: "semanticDiag",
				Body: json.RawMessage(`{"file":"/p/a.ts","diagnostics":[]}`),
			}},
		},
		{
			name: "event without body",
			line: `{"type":"event","event":"surveyReady"}`,
			want: Incoming{Kind: IncomingEvent, Event: EventMessage{Name: "surveyReady"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode([]byte(tt.line))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Decode (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecode_Malformed(t *testing.T) {
	for _, line := range []string{
		`{not json`,
		`[1,2,3]`,
		`null`,
		`{}`,
		`{"request_seq":"1","success":true}`,
		`{"type":"request","seq":1,"command":"open"}`,
		`{"type":"event"`,
	} {
		t.Run(line, func(t *testing.T) {
			got := Decode([]byte(line))
			if got.Kind != IncomingMalformed {
				t.Errorf("Kind = %v, want malformed", got.Kind)
			}
			if got.Reason == nil {
				t.Error("Reason is nil")
			}
		})
	}
}

func TestIncomingKind_String(t *testing.T) {
	for kind, want := range map[IncomingKind]string{
		IncomingMalformed: "malformed",
		IncomingResponse:  "response",
		IncomingEvent:     "event",
	} {
		if got := kind.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", kind, got, want)
		}
	}
}
