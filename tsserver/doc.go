// Package tsserver provides the engine that drives a TypeScript language
// server (tsserver) as a child process.
//
// The server speaks line-delimited JSON over stdin/stdout. Requests carry a
// sequence number; responses echo it back as request_seq and may arrive in
// any order. Events arrive out of band. Diagnostic events are collected
// into a batch that is released as one tsclient.EventDiagnostics when the
// server sends requestCompleted.
//
// Non-JSON stdout lines, such as the Content-Length headers tsserver writes
// ahead of each message, are skipped. Stderr is logged at debug level.
//
//	engine := tsserver.NewEngine(tsserver.WithBinary("tsserver"))
//	sess, err := engine.StartSession(ctx, tsclient.WithDir(root))
package tsserver
