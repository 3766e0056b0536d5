// Package shimclient holds the connection-dialing and CC-protocol
// exchange logic shared by the argv shim (cmd/tmux) and the admin CLI
// (cmd/tmuxccctl). Both talk to tmuxccd over the same Unix-domain
// socket; neither runs inside a long-lived session, so each dial does
// one handshake-skip, one command, one response, then hangs up.
package shimclient

import (
	"bufio"
	"context"
	"net"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// SocketEnvVar is the environment variable carrying the path to
// tmuxccd's control socket, named after the original wezterm
// implementation's WEZTERM_TMUX_CC so existing tmux-compat tooling
// that already sets it keeps working unmodified.
const SocketEnvVar = "WEZTERM_TMUX_CC"

// Response is the body and outcome of one %begin/%end(or %error) block.
type Response struct {
	Body    string
	IsError bool
}

// Client holds one dialed connection to tmuxccd, past the initial
// handshake, ready to exchange command/response pairs.
type Client struct {
	conn net.Conn
	r    *bufio.Reader
}

// Dial connects to socketPath and consumes the server's initial
// handshake block (the greeting %begin/%end plus any %session-changed
// / %window-add notifications that follow it), mirroring the original
// shim's skip_handshake.
func Dial(ctx context.Context, socketPath string) (*Client, error) {
	d := net.Dialer{}
	conn, err := d.DialContext(ctx, "unix", socketPath)
	if err != nil {
		return nil, errors.Wrapf(err, "connect to %s", socketPath)
	}
	c := &Client{conn: conn, r: bufio.NewReader(conn)}
	if err := c.skipHandshake(); err != nil {
		conn.Close() //nolint:errcheck
		return nil, err
	}
	return c, nil
}

func (c *Client) skipHandshake() error {
	for {
		line, err := c.r.ReadString('\n')
		if err != nil {
			return errors.Wrap(err, "handshake: read greeting")
		}
		if strings.HasPrefix(strings.TrimSpace(line), "%end ") {
			break
		}
	}
	for {
		// Only look at bytes already buffered: a server that has sent its
		// handshake and is now waiting for our command line won't send
		// anything further, and Peek would block forever waiting for it.
		if c.r.Buffered() == 0 {
			return nil
		}
		peek, err := c.r.Peek(1)
		if err != nil {
			return nil
		}
		if peek[0] != '%' {
			return nil
		}
		if _, err := c.r.ReadString('\n'); err != nil {
			return errors.Wrap(err, "handshake: drain notification")
		}
	}
}

// Exchange sends one command line and reads back the resulting
// %begin/%end (or %error) block, skipping over any notification lines
// that arrive interleaved before the response starts.
func (c *Client) Exchange(command string) (Response, error) {
	if _, err := c.conn.Write([]byte(command + "\n")); err != nil {
		return Response{}, errors.Wrap(err, "send command")
	}

	var body strings.Builder
	inBlock := false
	for {
		line, err := c.r.ReadString('\n')
		if err != nil {
			return Response{}, errors.Wrap(err, "read response")
		}
		trimmed := strings.TrimRight(line, "\n")

		if !inBlock {
			if strings.HasPrefix(trimmed, "%begin ") {
				inBlock = true
			}
			continue
		}
		if strings.HasPrefix(trimmed, "%end ") {
			return Response{Body: body.String(), IsError: false}, nil
		}
		if strings.HasPrefix(trimmed, "%error ") {
			return Response{Body: body.String(), IsError: true}, nil
		}
		body.WriteString(line)
	}
}

// SetDeadline forwards to the underlying connection, letting callers
// bound a one-shot exchange the way cmd/tmux bounds its request.
func (c *Client) SetDeadline(t time.Time) error {
	return c.conn.SetDeadline(t)
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// QuoteArgs reconstructs a CC command line from argv the way the
// original shim does: arguments containing whitespace or quote
// characters are single-quoted (with embedded single quotes escaped)
// so the daemon's shellwords-based command parser splits them back
// into the same tokens.
func QuoteArgs(args []string) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = quoteArg(a)
	}
	return strings.Join(parts, " ")
}

func quoteArg(a string) string {
	if a == "" || strings.ContainsAny(a, " \t\"'") {
		return "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
	}
	return a
}
