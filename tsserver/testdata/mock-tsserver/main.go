//go:build ignore

// Command mock-tsserver simulates tsserver for integration tests. It reads
// one JSON request per line on stdin and writes each message preceded by a
// Content-Length header line, the way tsserver does.
//
// Commands:
//
//	open              no reply; the first open emits projectLoadingStart,
//	                  telemetry, projectLoadingFinish
//	close, change     no reply
//	quickinfo         reply with a fixed displayString
//	echo              reply with the request arguments as body
//	fail              reply with success=false
//	hang              never reply
//	stray             reply to request_seq 9999, then to the request
//	geterr            syntaxDiag, semanticDiag, suggestionDiag per file, then requestCompleted
//	geterrForProject  the same for arguments.file
//	crash             exit 2 without replying
//	exit              exit 0 without replying
//
// Environment variables control process behavior:
//
//	TSS_MOCK_MODE=ignore-term  ignore SIGTERM and stdin EOF (for grace period tests)
//	TSS_MOCK_MODE=stderr       write colored stderr lines on startup
//	TSS_MOCK_MODE=banner       write a non-JSON banner on startup
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
)

type request struct {
	Seq       int             `json:"seq"`
	Type      string          `json:"type"`
	Command   string          `json:"command"`
	Arguments json.RawMessage `json:"arguments"`
}

type response struct {
	Seq        int             `json:"seq"`
	Type       string          `json:"type"`
	Command    string          `json:"command"`
	RequestSeq int             `json:"request_seq"`
	Success    bool            `json:"success"`
	Body       json.RawMessage `json:"body,omitempty"`
	Message    string          `json:"message,omitempty"`
}

type event struct {
	Seq   int    `json:"seq"`
	Type  string `json:"type"`
	Event string `json:"event"`
	Body  any    `json:"body,omitempty"`
}

var (
	out     = bufio.NewWriter(os.Stdout)
	scanner = bufio.NewScanner(os.Stdin)
	mode    = os.Getenv("TSS_MOCK_MODE")
	outSeq  int
	opened  bool
)

func main() {
	switch mode {
	case "ignore-term":
		signal.Ignore(syscall.SIGTERM)
	case "stderr":
		fmt.Fprintln(os.Stderr, "\x1b[33mwarning\x1b[0m: mock starting")
		fmt.Fprintln(os.Stderr, "\x1b[1mready\x1b[0m")
	case "banner":
		fmt.Fprintln(out, "mock-tsserver 0.0.0 starting")
		fmt.Fprintln(out)
		out.Flush()
	}

	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	for scanner.Scan() {
		var req request
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			continue
		}
		handle(&req)
		out.Flush()
	}
	if mode == "ignore-term" {
		time.Sleep(time.Hour) // outlive stdin EOF so only SIGKILL ends the process
	}
}

func handle(req *request) {
	switch req.Command {
	case "open":
		if !opened {
			opened = true
			write(event{Type: "event", Event: "projectLoadingStart", Body: map[string]string{"projectName": "/mock/tsconfig.json"}})
			write(event{Type: "event", Event: "telemetry", Body: map[string]string{"telemetryEventName": "projectInfo"}})
			write(event{Type: "event", Event: "projectLoadingFinish", Body: map[string]string{"projectName": "/mock/tsconfig.json"}})
		}
	case "close", "change", "reloadProjects":
	case "quickinfo":
		reply(req, true, json.RawMessage(`{"kind":"const","displayString":"const x: number","documentation":""}`), "")
	case "echo":
		reply(req, true, req.Arguments, "")
	case "fail":
		reply(req, false, nil, "mock failure")
	case "hang":
	case "stray":
		write(response{Type: "response", Command: req.Command, RequestSeq: 9999, Success: true})
		reply(req, true, json.RawMessage(`{"ok":true}`), "")
	case "geterr":
		var args struct {
			Files []string `json:"files"`
		}
		_ = json.Unmarshal(req.Arguments, &args)
		diagnose(req.Seq, args.Files)
	case "geterrForProject":
		var args struct {
			File string `json:"file"`
		}
		_ = json.Unmarshal(req.Arguments, &args)
		diagnose(req.Seq, []string{args.File})
	case "crash":
		out.Flush()
		os.Exit(2)
	case "exit":
		out.Flush()
		os.Exit(0)
	default:
		reply(req, false, nil, "Unrecognized JSON command: "+req.Command)
	}
}

func diagnose(seq int, files []string) {
	for _, f := range files {
		for _, name := range []string{"syntaxDiag", "semanticDiag", "suggestionDiag"} {
			write(event{Type: "event", Event: name, Body: map[string]any{"file": f, "diagnostics": []any{}}})
		}
	}
	write(event{Type: "event", Event: "requestCompleted", Body: map[string]int{"request_seq": seq}})
}

func reply(req *request, success bool, body json.RawMessage, message string) {
	write(response{
		Type:       "response",
		Command:    req.Command,
		RequestSeq: req.Seq,
		Success:    success,
		Body:       body,
		Message:    message,
	})
}

func write(v any) {
	switch m := v.(type) {
	case response:
		m.Seq = outSeq
		v = m
	case event:
		m.Seq = outSeq
		v = m
	}
	outSeq++
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	fmt.Fprintf(out, "Content-Length: %d\r\n\r\n%s\n", len(data)+1, data)
}
