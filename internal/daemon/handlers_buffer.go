package daemon

import (
	"context"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/g960059/tmuxccd/internal/command"
	"github.com/g960059/tmuxccd/internal/pastebuf"
)

func (s *Session) handleShowBuffer(cmd command.Command) (string, error) {
	name := ""
	if cmd.HasBufferName {
		name = cmd.BufferName
	}
	if name == "" {
		buf, ok := s.buffers.MostRecent()
		if !ok {
			return "", errors.New("no buffers")
		}
		return buf.Data, nil
	}
	buf, ok := s.buffers.Get(name)
	if !ok {
		return "", errors.Errorf("buffer %s not found", name)
	}
	return buf.Data, nil
}

func (s *Session) handleSetBuffer(cmd command.Command) (string, error) {
	name := ""
	if cmd.HasBufferName {
		name = cmd.BufferName
	}
	data := ""
	if cmd.HasData {
		data = cmd.Data
	}
	if cmd.Append && name != "" {
		if err := s.buffers.Append(name, data); err != nil {
			s.buffers.Set(name, data)
		}
		return "", nil
	}
	s.buffers.Set(name, data)
	return "", nil
}

func (s *Session) handleDeleteBuffer(cmd command.Command) (string, error) {
	if cmd.HasBufferName {
		if !s.buffers.Delete(cmd.BufferName) {
			return "", errors.Errorf("buffer %s not found", cmd.BufferName)
		}
		return "", nil
	}
	if _, ok := s.buffers.DeleteMostRecent(); !ok {
		return "", errors.New("no buffers")
	}
	return "", nil
}

func (s *Session) handleListBuffers() string {
	var lines []string
	for _, b := range s.buffers.List() {
		lines = append(lines, formatBufferLine(b))
	}
	return strings.Join(lines, "\n")
}

func formatBufferLine(b pastebuf.Buffer) string {
	return b.Name + ": " + strconv.Itoa(len(b.Data)) + " bytes: \"" + pastebuf.Sample(b.Data) + "\""
}

func (s *Session) handlePasteBuffer(ctx context.Context, cmd command.Command) (string, error) {
	resolved, err := s.resolveTarget(ctx, s.targetOrEmpty(cmd))
	if err != nil {
		return "", err
	}
	if !resolved.HasPaneID {
		return "", errPaneNotFound("")
	}

	var buf pastebuf.Buffer
	var ok bool
	if cmd.HasBufferName {
		buf, ok = s.buffers.Get(cmd.BufferName)
	} else {
		buf, ok = s.buffers.MostRecent()
	}
	if !ok {
		return "", errors.New("no buffer to paste")
	}

	if err := s.mux.SendPaste(ctx, resolved.PaneID, []byte(buf.Data), cmd.Bracketed); err != nil {
		return "", err
	}
	if cmd.DeleteAfter {
		s.buffers.Delete(buf.Name)
	}
	return "", nil
}
