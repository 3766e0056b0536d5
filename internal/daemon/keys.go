package daemon

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// resolveKeys turns send-keys' positional key arguments into the raw
// bytes to write to a pane, concatenating each resolved key in order.
func resolveKeys(keys []string, literal, hex bool) ([]byte, error) {
	var out []byte
	for _, k := range keys {
		b, err := resolveKey(k, literal, hex)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

// resolveKey resolves one send-keys argument to raw bytes: a 0x-prefixed
// hex literal, a literal string (-l), a named key (Enter, C-a, ...), or
// failing all of those, the argument's own bytes.
func resolveKey(key string, literal, hex bool) ([]byte, error) {
	if rest, ok := strings.CutPrefix(key, "0x"); ok {
		n, err := strconv.ParseUint(rest, 16, 8)
		if err != nil {
			return nil, errors.Errorf("send-keys: invalid hex key %q", key)
		}
		return []byte{byte(n)}, nil
	}
	if literal {
		return []byte(key), nil
	}
	if b, ok := resolveNamedKey(key); ok {
		return b, nil
	}
	return []byte(key), nil
}

// resolveNamedKey maps a tmux key name to the byte sequence it sends.
func resolveNamedKey(name string) ([]byte, bool) {
	switch name {
	case "Enter", "CR":
		return []byte("\r"), true
	case "Space":
		return []byte(" "), true
	case "Tab":
		return []byte("\t"), true
	case "BTab":
		return []byte("\x1b[Z"), true
	case "Escape":
		return []byte("\x1b"), true
	case "BSpace":
		return []byte("\x7f"), true
	case "Up":
		return []byte("\x1b[A"), true
	case "Down":
		return []byte("\x1b[B"), true
	case "Right":
		return []byte("\x1b[C"), true
	case "Left":
		return []byte("\x1b[D"), true
	case "Home":
		return []byte("\x1b[H"), true
	case "End":
		return []byte("\x1b[F"), true
	case "Insert", "IC":
		return []byte("\x1b[2~"), true
	case "Delete", "DC":
		return []byte("\x1b[3~"), true
	case "PageUp", "PPage":
		return []byte("\x1b[5~"), true
	case "PageDown", "PgDn", "NPage":
		return []byte("\x1b[6~"), true
	case "F1":
		return []byte("\x1bOP"), true
	case "F2":
		return []byte("\x1bOQ"), true
	case "F3":
		return []byte("\x1bOR"), true
	case "F4":
		return []byte("\x1bOS"), true
	case "F5":
		return []byte("\x1b[15~"), true
	case "F6":
		return []byte("\x1b[17~"), true
	case "F7":
		return []byte("\x1b[18~"), true
	case "F8":
		return []byte("\x1b[19~"), true
	case "F9":
		return []byte("\x1b[20~"), true
	case "F10":
		return []byte("\x1b[21~"), true
	case "F11":
		return []byte("\x1b[23~"), true
	case "F12":
		return []byte("\x1b[24~"), true
	}
	if len(name) == 3 && name[0] == 'C' && name[1] == '-' {
		ch := name[2]
		if ch >= 'a' && ch <= 'z' {
			return []byte{ch - 'a' + 1}, true
		}
		if ch >= 'A' && ch <= 'Z' {
			return []byte{ch - 'A' + 1}, true
		}
	}
	return nil, false
}

// parseSplitSize parses split-window/split-pane's -l/-p size argument:
// "50%" -> percent, "20" -> fixed cells, "" -> an even 50% default.
func parseSplitSize(size string) (percent int, cells int, hasCells bool, err error) {
	if size == "" {
		return 50, 0, false, nil
	}
	if rest, ok := strings.CutSuffix(size, "%"); ok {
		n, convErr := strconv.Atoi(rest)
		if convErr != nil || n < 1 || n > 100 {
			return 0, 0, false, errors.Errorf("invalid split percentage: %q", size)
		}
		return n, 0, false, nil
	}
	n, convErr := strconv.Atoi(size)
	if convErr != nil || n <= 0 {
		return 0, 0, false, errors.Errorf("invalid split size: %q", size)
	}
	return 0, n, true, nil
}
