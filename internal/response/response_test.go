package response

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVisEncodePlainASCII(t *testing.T) {
	require.Equal(t, "hello", VisEncode([]byte("hello")))
}

func TestVisEncodeCRLF(t *testing.T) {
	require.Equal(t, "hello\\015\\012", VisEncode([]byte("hello\r\n")))
}

func TestVisEncodeEscapeSequence(t *testing.T) {
	require.Equal(t, "\\033[1mtest", VisEncode([]byte("\x1b[1mtest")))
}

func TestVisEncodeBackslash(t *testing.T) {
	require.Equal(t, "back\\134slash", VisEncode([]byte("back\\slash")))
}

func TestVisEncodeTabAndNul(t *testing.T) {
	require.Equal(t, "\\011\\000", VisEncode([]byte{'\t', 0}))
}

func TestVisEncodePrintableUnchanged(t *testing.T) {
	require.Equal(t, "normal text 123!@#", VisEncode([]byte("normal text 123!@#")))
}

func TestVisEncodeEmpty(t *testing.T) {
	require.Equal(t, "", VisEncode([]byte{}))
}

func TestVisEncodeAllControlChars(t *testing.T) {
	for b := 0; b < 0x20; b++ {
		encoded := VisEncode([]byte{byte(b)})
		require.Lenf(t, encoded, 4, "byte %#02x should produce 4 chars", b)
		require.Truef(t, strings.HasPrefix(encoded, "\\"), "byte %#02x should start with \\", b)
	}
}

func TestVisEncodeSpaceNotEncoded(t *testing.T) {
	require.Equal(t, " ", VisEncode([]byte(" ")))
}

type guardBlock struct {
	ts      int64
	counter uint64
	body    string
	isError bool
}

func parseGuardBlock(t *testing.T, s string) guardBlock {
	t.Helper()
	lines := strings.Split(s, "\n")
	require.Equal(t, "", lines[len(lines)-1], "block should end with newline, got: %q", s)

	beginLine := lines[0]
	endLine := lines[len(lines)-2]

	beginParts := strings.SplitN(beginLine, " ", 4)
	require.Equal(t, "%begin", beginParts[0])
	ts, err := strconv.ParseInt(beginParts[1], 10, 64)
	require.NoError(t, err)
	counter, err := strconv.ParseUint(beginParts[2], 10, 64)
	require.NoError(t, err)
	require.Equal(t, "1", beginParts[3])

	endParts := strings.SplitN(endLine, " ", 4)
	isError := endParts[0] == "%error"
	require.True(t, endParts[0] == "%end" || endParts[0] == "%error", "unexpected closing tag: %s", endParts[0])
	endTS, err := strconv.ParseInt(endParts[1], 10, 64)
	require.NoError(t, err)
	endCounter, err := strconv.ParseUint(endParts[2], 10, 64)
	require.NoError(t, err)
	require.Equal(t, "1", endParts[3])

	require.Equal(t, ts, endTS, "timestamps must match")
	require.Equal(t, counter, endCounter, "counters must match")

	bodyLines := lines[1 : len(lines)-2]
	body := ""
	if len(bodyLines) > 0 {
		body = strings.Join(bodyLines, "\n") + "\n"
	}

	return guardBlock{ts: ts, counter: counter, body: body, isError: isError}
}

func TestEmptySuccessStructure(t *testing.T) {
	w := NewWriter()
	resp := w.EmptySuccess()
	gb := parseGuardBlock(t, resp)
	require.Equal(t, uint64(1), gb.counter)
	require.Equal(t, "", gb.body)
	require.False(t, gb.isError)
}

func TestSuccessWithContent(t *testing.T) {
	w := NewWriter()
	resp := w.Success("0 %0\n1 %1\n")
	gb := parseGuardBlock(t, resp)
	require.Equal(t, uint64(1), gb.counter)
	require.Equal(t, "0 %0\n1 %1\n", gb.body)
	require.False(t, gb.isError)
}

func TestSuccessAppendsNewlineWhenMissing(t *testing.T) {
	w := NewWriter()
	resp := w.Success("no trailing newline")
	gb := parseGuardBlock(t, resp)
	require.Equal(t, "no trailing newline\n", gb.body)
}

func TestSuccessEmptyStringSameAsEmptySuccess(t *testing.T) {
	w := NewWriter()
	a := parseGuardBlock(t, w.Success(""))
	w2 := NewWriter()
	b := parseGuardBlock(t, w2.EmptySuccess())
	require.Equal(t, a.body, b.body)
	require.Equal(t, a.isError, b.isError)
}

func TestErrorStructure(t *testing.T) {
	w := NewWriter()
	resp := w.Error("session not found")
	gb := parseGuardBlock(t, resp)
	require.Equal(t, uint64(1), gb.counter)
	require.Equal(t, "session not found\n", gb.body)
	require.True(t, gb.isError)
}

func TestCounterIncrements(t *testing.T) {
	w := NewWriter()
	require.Equal(t, uint64(1), parseGuardBlock(t, w.EmptySuccess()).counter)
	require.Equal(t, uint64(2), parseGuardBlock(t, w.Success("data\n")).counter)
	require.Equal(t, uint64(3), parseGuardBlock(t, w.Error("oops")).counter)
}

func TestFormatGuardBlockWithDeterministic(t *testing.T) {
	block := FormatGuardBlockWith(1700000000, 42, "hello\n", false)
	require.Equal(t, "%begin 1700000000 42 1\nhello\n%end 1700000000 42 1\n", block)
}

func TestFormatGuardBlockWithErrorDeterministic(t *testing.T) {
	block := FormatGuardBlockWith(1700000000, 7, "bad command", true)
	require.Equal(t, "%begin 1700000000 7 1\nbad command\n%error 1700000000 7 1\n", block)
}

func TestFormatGuardBlockWithEmptyBody(t *testing.T) {
	block := FormatGuardBlockWith(1234567890, 1, "", false)
	require.Equal(t, "%begin 1234567890 1 1\n%end 1234567890 1 1\n", block)
}

func TestOutputNotificationBasic(t *testing.T) {
	require.Equal(t, "%output %1 hello\\015\\012\n", OutputNotification(1, []byte("hello\r\n")))
}

func TestOutputNotificationEmpty(t *testing.T) {
	require.Equal(t, "%output %0 \n", OutputNotification(0, []byte{}))
}

func TestLayoutChangeNotificationBasic(t *testing.T) {
	require.Equal(t, "%layout-change @0 b25f,80x24,0,0,2\n", LayoutChangeNotification(0, "b25f,80x24,0,0,2"))
}

func TestWindowAddNotificationBasic(t *testing.T) {
	require.Equal(t, "%window-add @1\n", WindowAddNotification(1))
}

func TestWindowCloseNotificationBasic(t *testing.T) {
	require.Equal(t, "%window-close @3\n", WindowCloseNotification(3))
}

func TestWindowRenamedNotificationBasic(t *testing.T) {
	require.Equal(t, "%window-renamed @2 editor\n", WindowRenamedNotification(2, "editor"))
}

func TestWindowPaneChangedNotificationBasic(t *testing.T) {
	require.Equal(t, "%window-pane-changed @1 %5\n", WindowPaneChangedNotification(1, 5))
}

func TestSessionChangedNotificationBasic(t *testing.T) {
	require.Equal(t, "%session-changed $0 main\n", SessionChangedNotification(0, "main"))
}

func TestSessionRenamedNotificationBasic(t *testing.T) {
	require.Equal(t, "%session-renamed $0 newname\n", SessionRenamedNotification(0, "newname"))
}

func TestSessionsChangedNotificationBasic(t *testing.T) {
	require.Equal(t, "%sessions-changed\n", SessionsChangedNotification())
}

func TestExitNotificationNoReason(t *testing.T) {
	require.Equal(t, "%exit\n", ExitNotification(""))
}

func TestExitNotificationWithReason(t *testing.T) {
	require.Equal(t, "%exit detached\n", ExitNotification("detached"))
}

func TestPasteBufferChangedNotificationBasic(t *testing.T) {
	require.Equal(t, "%paste-buffer-changed buffer0\n", PasteBufferChangedNotification("buffer0"))
}

func TestSessionWindowChangedNotificationBasic(t *testing.T) {
	require.Equal(t, "%session-window-changed $0 @2\n", SessionWindowChangedNotification(0, 2))
}

func TestSessionWindowChangedNotificationLargeIDs(t *testing.T) {
	require.Equal(t, "%session-window-changed $3 @15\n", SessionWindowChangedNotification(3, 15))
}
