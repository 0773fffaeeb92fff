// Package tsclient drives a long-lived tsserver-style child process that
// speaks line-delimited JSON requests, responses and events over stdio.
//
// The root package defines the shared vocabulary: the [Session] and [Engine]
// interfaces, the [Event] stream with its fixed [EventKind] set, the error
// taxonomy, and the [Client] command facade. The process-backed
// implementation lives in the tsserver subpackage.
//
// # Core Types
//
//   - [Engine]: validates the executable and starts sessions
//   - [Session]: one running child process and its request stream
//   - [Event]: lifecycle, diagnostic batch, and connection-closed signals
//   - [Client]: one method per protocol command on top of a Session
//
// # Errors
//
// Callers of [Session.Request] see either the response body, an
// [*ApplicationError] carrying the server's message, or an error matching
// [ErrConnectionClosed]. Malformed output lines and responses that match no
// pending request are dropped inside the session and never surface here.
//
// # Quick Start
//
//	engine := tsserver.NewEngine(tsserver.WithBinary("tsserver"))
//	sess, err := engine.Start(ctx)
//	if err != nil { log.Fatal(err) }
//	defer sess.Stop(context.Background())
//
//	client := tsclient.NewClient(sess)
//	_ = client.Open(tsclient.OpenArgs{File: "/abs/a.ts"})
//	body, err := client.QuickInfo(ctx, tsclient.FileLocationArgs{File: "/abs/a.ts", Line: 1, Offset: 1})
package tsclient
