package sshutil

import "context"

// Runner runs commands on one remote host. *Client satisfies it; tests use
// canned implementations.
type Runner interface {
	Exec(ctx context.Context, cmd string) (stdout, stderr []byte, exitCode int, err error)
	Close() error
}

var _ Runner = (*Client)(nil)
