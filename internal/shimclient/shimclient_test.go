package shimclient

import (
	"bufio"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeServer writes a CC-style handshake followed by one canned response
// to the single line it reads, enough to exercise Dial/Exchange's framing
// without a real daemon.
func fakeServer(t *testing.T, conn net.Conn, body string, isError bool) {
	t.Helper()
	_, _ = conn.Write([]byte("%begin 1 1 1\n%end 1 1 1\n%session-changed $0 default\n%window-add @0\n"))

	r := bufio.NewReader(conn)
	_, err := r.ReadString('\n')
	require.NoError(t, err)

	tag := "%end"
	if isError {
		tag = "%error"
	}
	_, _ = conn.Write([]byte("%begin 2 2 1\n" + body + "\n" + tag + " 2 2 1\n"))
}

func newClient(conn net.Conn) *Client {
	return &Client{conn: conn, r: bufio.NewReader(conn)}
}

func TestDialSkipsHandshakeAndExchanges(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	defer client.Close()

	go fakeServer(t, server, "hello", false)

	c := newClient(client)
	require.NoError(t, c.skipHandshake())

	resp, err := c.Exchange("list-panes")
	require.NoError(t, err)
	require.False(t, resp.IsError)
	require.Equal(t, "hello\n", resp.Body)
}

func TestExchangeSurfacesError(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	defer client.Close()

	go fakeServer(t, server, "no such pane", true)

	c := newClient(client)
	require.NoError(t, c.skipHandshake())

	resp, err := c.Exchange("kill-pane -t %9")
	require.NoError(t, err)
	require.True(t, resp.IsError)
	require.Equal(t, "no such pane\n", resp.Body)
}

func TestQuoteArgsEscapesSpacesAndQuotes(t *testing.T) {
	require.Equal(t, "send-keys -t %5 'echo hello' Enter", QuoteArgs([]string{"send-keys", "-t", "%5", "echo hello", "Enter"}))
	require.Equal(t, `'it'\''s'`, QuoteArgs([]string{"it's"}))
}

func TestSetDeadlineForwardsToConn(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	defer client.Close()

	c := newClient(client)
	require.NoError(t, c.SetDeadline(time.Now().Add(time.Hour)))
}
