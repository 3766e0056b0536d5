package daemon

import (
	"bytes"
	"context"
	"net"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/g960059/tmuxccd/internal/command"
	"github.com/g960059/tmuxccd/internal/response"
)

// handleConn drives one tmux CC client end to end: send the initial
// handshake, then concurrently read command lines off the socket and
// forward translated mux notifications to it, until the client detaches
// or the connection drops.
func (d *Daemon) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close() //nolint:errcheck

	d.registerConn(conn)
	defer d.unregisterConn(conn)

	cfg := d.configSnapshot()

	streamID := uuid.NewString()
	sess := NewSession(d.mux, d.buffers, cfg.DefaultWorkspace)
	sess.socketPath = cfg.SocketPath
	sess.waiters = d.waiters
	sess.shutdown = d.Shutdown

	var writeMu sync.Mutex
	write := func(s string) {
		writeMu.Lock()
		defer writeMu.Unlock()
		_, _ = conn.Write([]byte(s))
	}

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	notifCh, stopPump := d.startNotificationPump(connCtx, sess)
	defer stopPump()

	for _, line := range sess.buildInitialHandshake(connCtx) {
		write(line)
	}

	go func() {
		for {
			select {
			case line, ok := <-notifCh:
				if !ok {
					return
				}
				write(line)
			case <-connCtx.Done():
				return
			}
		}
	}()

	// The read loop accumulates raw bytes and splits on '\n' itself,
	// rather than wrapping conn in a bufio.Scanner: control-mode sockets
	// (in particular the Windows TCP-socket fallback) must never be
	// line-buffered on top of the platform transport.
	readBuf := make([]byte, 4096)
	var acc []byte
readLoop:
	for {
		n, rerr := conn.Read(readBuf)
		if n > 0 {
			acc = append(acc, readBuf[:n]...)
			for {
				idx := bytes.IndexByte(acc, '\n')
				if idx < 0 {
					break
				}
				raw := acc[:idx]
				acc = acc[idx+1:]

				line := strings.TrimSpace(string(raw))
				if line == "" {
					continue
				}

				resp, detach := sess.processLine(connCtx, line)
				write(resp)

				if d.audit != nil {
					// A guard block whose closing line is %error records
					// its body as the command's error message.
					auditErr := ""
					if blk := strings.Split(strings.TrimSuffix(resp, "\n"), "\n"); len(blk) >= 2 && strings.HasPrefix(blk[len(blk)-1], "%error ") {
						if auditErr = strings.Join(blk[1:len(blk)-1], "\n"); auditErr == "" {
							auditErr = "error"
						}
					}
					if err := d.audit.Record(connCtx, streamID, sess.workspace, line, auditErr); err != nil {
						_ = err // auditing is best-effort; never block the protocol loop on it
					}
				}
				for _, notif := range drainPending(sess) {
					write(notif)
				}
				if detach {
					write(response.ExitNotification(sess.exitReason))
					if sess.terminateServer && sess.shutdown != nil {
						sess.shutdown()
					}
					break readLoop
				}
			}
			if len(acc) == 0 {
				acc = nil
			}
		}
		if rerr != nil {
			break readLoop
		}
	}
}

// processLine parses and dispatches a single command line, returning the
// wire-format response block and whether the connection should now
// detach.
func (s *Session) processLine(ctx context.Context, line string) (string, bool) {
	cmd, err := command.ParseCommand(line)
	if err != nil {
		return s.writer.Error(err.Error()), false
	}
	out, err := s.dispatch(ctx, cmd)
	if err != nil {
		return s.writer.Error(err.Error()), s.detachRequested
	}
	return s.writer.Success(out), s.detachRequested
}

func drainPending(s *Session) []string {
	if len(s.pendingNotifications) == 0 {
		return nil
	}
	out := s.pendingNotifications
	s.pendingNotifications = nil
	return out
}
