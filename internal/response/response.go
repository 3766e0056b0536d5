// Package response generates tmux control-mode (CC) wire-format responses
// and notifications.
//
// Every command response is wrapped in %begin/%end (or %error) guard
// lines. Asynchronous notifications are single %-prefixed lines.
package response

import (
	"fmt"
	"strings"
	"time"
)

// VisEncode encodes a byte slice using the tmux vis-style encoding used in
// %output notifications. Bytes with ASCII value < 0x20 and backslash
// (0x5C) are replaced by a backslash followed by exactly three octal
// digits; all other bytes pass through unchanged.
func VisEncode(data []byte) string {
	var out strings.Builder
	out.Grow(len(data))
	for _, b := range data {
		if b < 0x20 || b == '\\' {
			fmt.Fprintf(&out, "\\%03o", b)
		} else {
			out.WriteByte(b)
		}
	}
	return out.String()
}

// Writer writes tmux control-mode response blocks (%begin/%end/%error).
// Each call to Success, EmptySuccess, or Error increments an internal
// counter so that every response block carries a unique, monotonically
// increasing command number.
type Writer struct {
	counter uint64

	// Now is overridable for deterministic tests; defaults to time.Now.
	Now func() time.Time
}

func NewWriter() *Writer {
	return &Writer{Now: time.Now}
}

func (w *Writer) nextCounter() uint64 {
	w.counter++
	return w.counter
}

func (w *Writer) timestamp() int64 {
	now := w.Now
	if now == nil {
		now = time.Now
	}
	return now().Unix()
}

func (w *Writer) formatGuardBlock(body string, isError bool) string {
	ts := w.timestamp()
	n := w.nextCounter()
	return FormatGuardBlockWith(ts, n, body, isError)
}

// FormatGuardBlockWith formats a guard block with an explicit timestamp
// and counter, making it easy to test without depending on wall-clock
// time.
func FormatGuardBlockWith(ts int64, n uint64, body string, isError bool) string {
	endTag := "%end"
	if isError {
		endTag = "%error"
	}

	var out strings.Builder
	fmt.Fprintf(&out, "%%begin %d %d 1\n", ts, n)

	if body != "" {
		out.WriteString(body)
		if !strings.HasSuffix(body, "\n") {
			out.WriteByte('\n')
		}
	}

	fmt.Fprintf(&out, "%s %d %d 1\n", endTag, ts, n)
	return out.String()
}

// Success generates a successful response wrapping the given output. If
// output is empty the result is the same as EmptySuccess.
func (w *Writer) Success(output string) string {
	return w.formatGuardBlock(output, false)
}

// EmptySuccess generates an empty success response, for commands that
// produce no output.
func (w *Writer) EmptySuccess() string {
	return w.formatGuardBlock("", false)
}

// Error generates an error response containing message.
func (w *Writer) Error(message string) string {
	return w.formatGuardBlock(message, true)
}

// ---------------------------------------------------------------------------
// Notifications
// ---------------------------------------------------------------------------

func OutputNotification(paneID uint64, data []byte) string {
	return fmt.Sprintf("%%output %%%d %s\n", paneID, VisEncode(data))
}

// ExtendedOutputNotification formats %extended-output, used for pane
// output tagged with an age hint in milliseconds. Not present in the
// original response.rs; authored from the wire format tmux itself emits
// for extended-output subscriptions, matching the free-function style of
// the notifications above.
func ExtendedOutputNotification(paneID uint64, ageMs int64, data []byte) string {
	return fmt.Sprintf("%%extended-output %%%d %d : %s\n", paneID, ageMs, VisEncode(data))
}

func LayoutChangeNotification(windowID uint64, layout string) string {
	return fmt.Sprintf("%%layout-change @%d %s\n", windowID, layout)
}

func WindowAddNotification(windowID uint64) string {
	return fmt.Sprintf("%%window-add @%d\n", windowID)
}

func WindowCloseNotification(windowID uint64) string {
	return fmt.Sprintf("%%window-close @%d\n", windowID)
}

func WindowRenamedNotification(windowID uint64, name string) string {
	return fmt.Sprintf("%%window-renamed @%d %s\n", windowID, name)
}

func WindowPaneChangedNotification(windowID, paneID uint64) string {
	return fmt.Sprintf("%%window-pane-changed @%d %%%d\n", windowID, paneID)
}

func SessionChangedNotification(sessionID uint64, name string) string {
	return fmt.Sprintf("%%session-changed $%d %s\n", sessionID, name)
}

func SessionRenamedNotification(sessionID uint64, name string) string {
	return fmt.Sprintf("%%session-renamed $%d %s\n", sessionID, name)
}

func SessionsChangedNotification() string {
	return "%sessions-changed\n"
}

func PasteBufferChangedNotification(bufferName string) string {
	return fmt.Sprintf("%%paste-buffer-changed %s\n", bufferName)
}

func PasteBufferDeletedNotification(bufferName string) string {
	return fmt.Sprintf("%%paste-buffer-deleted %s\n", bufferName)
}

func SessionWindowChangedNotification(sessionID, windowID uint64) string {
	return fmt.Sprintf("%%session-window-changed $%d @%d\n", sessionID, windowID)
}

// PauseNotification formats %pause, sent when a pane's output is paused
// because the client isn't reading fast enough (spec wire format table;
// absent from the original's response.rs, so authored fresh here in its
// style).
func PauseNotification(paneID uint64) string {
	return fmt.Sprintf("%%pause %%%d\n", paneID)
}

// ContinueNotification formats %continue, the counterpart to Pause.
func ContinueNotification(paneID uint64) string {
	return fmt.Sprintf("%%continue %%%d\n", paneID)
}

// SubscriptionChangedNotification formats %subscription-changed NAME $S
// @W IDX %P : VALUE, emitted when a refresh-client -B subscription's
// polled value changes. sessionID/windowID/paneID are this daemon's
// numeric ids for the subscription's resolved target; windowIndex is the
// window's position within its session.
func SubscriptionChangedNotification(name string, sessionID, windowID, windowIndex, paneID uint64, value string) string {
	return fmt.Sprintf("%%subscription-changed %s $%d @%d %d %%%d : %s\n", name, sessionID, windowID, windowIndex, paneID, value)
}

func ExitNotification(reason string) string {
	if reason == "" {
		return "%exit\n"
	}
	return fmt.Sprintf("%%exit %s\n", reason)
}
