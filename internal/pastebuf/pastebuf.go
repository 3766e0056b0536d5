// Package pastebuf implements an in-process paste buffer store modelling
// tmux's named paste buffer stack. Auto-named buffers (buffer0, buffer1,
// ...) are capped at bufferLimit; user-named buffers are unlimited.
// Buffers are ordered by insertion time, most recent first.
package pastebuf

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// bufferLimit is the maximum number of auto-named buffers kept before the
// oldest is evicted.
const bufferLimit = 50

// Buffer is a single paste buffer entry.
type Buffer struct {
	Name      string
	Data      string
	Automatic bool
	// Order is the monotonic insertion order; lower means older.
	Order uint64
}

// Store is an ordered collection of paste buffers, keyed by name.
type Store struct {
	buffers      []Buffer
	nextOrder    uint64
	nextAutoIdx  uint64
}

func NewStore() *Store {
	return &Store{}
}

// Set inserts or replaces a buffer. If name is empty, a name is
// auto-assigned. Returns the buffer name used.
func (s *Store) Set(name, data string) string {
	var bufName string
	automatic := false
	if name != "" {
		bufName = name
	} else {
		bufName = fmt.Sprintf("buffer%d", s.nextAutoIdx)
		s.nextAutoIdx++
		automatic = true
	}

	s.buffers = removeByName(s.buffers, bufName)

	order := s.nextOrder
	s.nextOrder++

	s.buffers = append(s.buffers, Buffer{
		Name:      bufName,
		Data:      data,
		Automatic: automatic,
		Order:     order,
	})

	s.enforceLimit()
	return bufName
}

func removeByName(bufs []Buffer, name string) []Buffer {
	out := bufs[:0]
	for _, b := range bufs {
		if b.Name != name {
			out = append(out, b)
		}
	}
	return out
}

// Append appends data to an existing buffer, returning an error if the
// buffer doesn't exist.
func (s *Store) Append(name, data string) error {
	for i := range s.buffers {
		if s.buffers[i].Name == name {
			s.buffers[i].Data += data
			return nil
		}
	}
	return errors.Errorf("unknown buffer: %s", name)
}

// Get returns buffer content by name, and whether it was found.
func (s *Store) Get(name string) (Buffer, bool) {
	for _, b := range s.buffers {
		if b.Name == name {
			return b, true
		}
	}
	return Buffer{}, false
}

// MostRecent returns the most recently inserted buffer, if any.
func (s *Store) MostRecent() (Buffer, bool) {
	if len(s.buffers) == 0 {
		return Buffer{}, false
	}
	best := s.buffers[0]
	for _, b := range s.buffers[1:] {
		if b.Order > best.Order {
			best = b
		}
	}
	return best, true
}

// Delete removes a buffer by name, reporting whether it existed.
func (s *Store) Delete(name string) bool {
	before := len(s.buffers)
	s.buffers = removeByName(s.buffers, name)
	return len(s.buffers) < before
}

// DeleteMostRecent removes the most recently inserted buffer, returning
// its name.
func (s *Store) DeleteMostRecent() (string, bool) {
	b, ok := s.MostRecent()
	if !ok {
		return "", false
	}
	s.Delete(b.Name)
	return b.Name, true
}

// List returns all buffers ordered by insertion time, newest first.
func (s *Store) List() []Buffer {
	sorted := make([]Buffer, len(s.buffers))
	copy(sorted, s.buffers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Order > sorted[j].Order })
	return sorted
}

func (s *Store) Len() int { return len(s.buffers) }

func (s *Store) IsEmpty() bool { return len(s.buffers) == 0 }

func (s *Store) enforceLimit() {
	autoCount := 0
	for _, b := range s.buffers {
		if b.Automatic {
			autoCount++
		}
	}
	if autoCount <= bufferLimit {
		return
	}

	type indexedOrder struct {
		index int
		order uint64
	}
	var autoBufs []indexedOrder
	for i, b := range s.buffers {
		if b.Automatic {
			autoBufs = append(autoBufs, indexedOrder{i, b.Order})
		}
	}
	sort.Slice(autoBufs, func(i, j int) bool { return autoBufs[i].order < autoBufs[j].order })

	toRemove := autoCount - bufferLimit
	removeIdx := make(map[int]bool, toRemove)
	for _, io := range autoBufs[:toRemove] {
		removeIdx[io.index] = true
	}

	kept := s.buffers[:0]
	for i, b := range s.buffers {
		if !removeIdx[i] {
			kept = append(kept, b)
		}
	}
	s.buffers = kept
}

// Sample generates a #{buffer_sample} preview: the first 50 characters,
// with newline, carriage return and tab written as \n, \r and \t, other
// control characters escaped as octal, truncated with "..." if longer.
func Sample(data string) string {
	const maxLen = 50
	var out strings.Builder
	out.Grow(maxLen + 4)
	count := 0
	for _, ch := range data {
		if count >= maxLen {
			out.WriteString("...")
			break
		}
		switch ch {
		case '\n':
			out.WriteString("\\n")
		case '\r':
			out.WriteString("\\r")
		case '\t':
			out.WriteString("\\t")
		default:
			if ch < 0x20 || ch == 0x7f {
				fmt.Fprintf(&out, "\\%03o", ch)
			} else {
				out.WriteRune(ch)
			}
		}
		count++
	}
	return out.String()
}
