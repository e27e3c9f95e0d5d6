package client

import (
	"context"
	"time"
)

// ConnectionStatus is the outcome of a connection test.
type ConnectionStatus string

const (
	StatusSuccess ConnectionStatus = "success"
	StatusError   ConnectionStatus = "error"
)

// ConnectionTestResult reports whether a bucket could be listed.
type ConnectionTestResult struct {
	Status   ConnectionStatus `json:"status"`
	Message  string           `json:"message,omitempty"`
	TestedAt time.Time        `json:"testedAt"`
}

// TestConnection connects with creds and lists the bucket root. Failures
// are reported in the result, never as an error.
func TestConnection(ctx context.Context, creds Credentials, opts ...Option) ConnectionTestResult {
	c, err := New(ctx, creds, opts...)
	if err != nil {
		return ConnectionTestResult{Status: StatusError, Message: err.Error(), TestedAt: time.Now().UTC()}
	}
	defer c.Close()
	return c.Check(ctx)
}

// Check lists the bucket root through an existing client.
func (c *Client) Check(ctx context.Context) ConnectionTestResult {
	if _, err := c.List(ctx, "/"); err != nil {
		return ConnectionTestResult{Status: StatusError, Message: err.Error(), TestedAt: time.Now().UTC()}
	}
	return ConnectionTestResult{Status: StatusSuccess, Message: "Connection successful", TestedAt: time.Now().UTC()}
}
