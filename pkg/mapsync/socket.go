package mapsync

import (
	"context"
	"fmt"
	"net"
	"time"
)

// UnixSocket dials the proxy's admin UNIX stream socket fresh for every
// command, matching the original's one-shot socket.send-then-close (spec
// §4.6: "any socket failure is surfaced, not retried").
type UnixSocket struct {
	Path    string
	Timeout time.Duration
}

// NewUnixSocket constructs a UnixSocket. A zero timeout defaults to one
// second, the original's --haproxy-timeout default.
func NewUnixSocket(path string, timeout time.Duration) *UnixSocket {
	if timeout <= 0 {
		timeout = time.Second
	}
	return &UnixSocket{Path: path, Timeout: timeout}
}

// Send opens a new connection to the admin socket, writes cmd terminated
// by a newline, and closes it. The write deadline is the lesser of the
// configured timeout and whatever remains on ctx.
func (u *UnixSocket) Send(ctx context.Context, cmd string) error {
	conn, err := net.Dial("unix", u.Path)
	if err != nil {
		return fmt.Errorf("dialing admin socket %s: %w", u.Path, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(u.Timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("setting write deadline on %s: %w", u.Path, err)
	}

	if _, err := conn.Write([]byte(cmd + "\n")); err != nil {
		return fmt.Errorf("writing to admin socket %s: %w", u.Path, err)
	}
	return nil
}
