package tsclient

import (
	"context"
	"encoding/json"
	"fmt"
)

// Client is the command facade over a Session: one method per protocol
// command. Reply commands return the raw response body; decode it with
// DecodeBody or json.Unmarshal. No-reply commands only report write errors.
//
// The session's Events channel must still be drained while a Client is in
// use: once its buffers fill, the reader waits for the consumer and
// responses to reply commands stall behind the undelivered events.
type Client struct {
	sess Session
}

// NewClient returns a Client issuing commands on sess.
func NewClient(sess Session) *Client {
	return &Client{sess: sess}
}

// Session returns the underlying session.
func (c *Client) Session() Session {
	return c.sess
}

// Request sends an arbitrary reply command.
func (c *Client) Request(ctx context.Context, command string, args any) (json.RawMessage, error) {
	return c.sess.Request(ctx, command, args)
}

// Notify sends an arbitrary no-reply command.
func (c *Client) Notify(command string, args any) error {
	return c.sess.Notify(command, args)
}

// DecodeBody unmarshals a response body into a value of type T.
// A null or empty body yields the zero value.
func DecodeBody[T any](body json.RawMessage) (T, error) {
	var v T
	if len(body) == 0 || string(body) == "null" {
		return v, nil
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return v, fmt.Errorf("tsclient: decode body: %w", err)
	}
	return v, nil
}
