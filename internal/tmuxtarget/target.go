// Package tmuxtarget parses tmux -t TARGET strings.
//
// The tmux target format is SESSION:WINDOW.PANE where each component is
// optional. Individual components can be specified by ID ($N, @N, %N),
// by name/index, or omitted entirely.
package tmuxtarget

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// SessionRefKind tags which field of a SessionRef is populated.
type SessionRefKind int

const (
	SessionRefID SessionRefKind = iota
	SessionRefName
)

type SessionRef struct {
	Kind SessionRefKind
	ID   uint64
	Name string
}

type WindowRefKind int

const (
	WindowRefID WindowRefKind = iota
	WindowRefIndex
	WindowRefName
)

type WindowRef struct {
	Kind  WindowRefKind
	ID    uint64
	Index uint64
	Name  string
}

type PaneRefKind int

const (
	PaneRefID PaneRefKind = iota
	PaneRefIndex
)

type PaneRef struct {
	Kind  PaneRefKind
	ID    uint64
	Index uint64
}

// Target is a parsed tmux target. Each field is nil when not specified,
// meaning "use the current/default" for that level.
type Target struct {
	Session *SessionRef
	Window  *WindowRef
	Pane    *PaneRef
}

// Parse parses a tmux target string into its constituent session, window,
// and pane references.
//
// The general format is SESSION:WINDOW.PANE, but bare tokens have special
// cases:
//
//   - A bare %N is always a pane ID.
//   - A bare @N is always a window ID.
//   - A bare $N is always a session ID.
//   - A bare name (no ':' or '.', not all digits) is a session name.
//   - A bare number, or a WINDOW.PANE pair with no ':', is window.pane
//     shorthand.
func Parse(target string) (Target, error) {
	if target == "" {
		return Target{}, nil
	}

	if strings.HasPrefix(target, "%") && !strings.ContainsAny(target, ":.") {
		id, err := parseIDNumber(target[1:])
		if err != nil {
			return Target{}, err
		}
		return Target{Pane: &PaneRef{Kind: PaneRefID, ID: id}}, nil
	}

	if strings.HasPrefix(target, "@") && !strings.ContainsAny(target, ":.") {
		id, err := parseIDNumber(target[1:])
		if err != nil {
			return Target{}, err
		}
		return Target{Window: &WindowRef{Kind: WindowRefID, ID: id}}, nil
	}

	if strings.HasPrefix(target, "$") && !strings.ContainsAny(target, ":.") {
		id, err := parseIDNumber(target[1:])
		if err != nil {
			return Target{}, err
		}
		return Target{Session: &SessionRef{Kind: SessionRefID, ID: id}}, nil
	}

	var sessionPart, windowPanePart string
	if colon := strings.IndexByte(target, ':'); colon >= 0 {
		sessionPart = target[:colon]
		windowPanePart = target[colon+1:]
	} else if _, numErr := strconv.ParseUint(target, 10, 64); numErr != nil && !strings.Contains(target, ".") {
		sessionPart = target
	} else {
		windowPanePart = target
	}

	session, err := parseSessionRef(sessionPart)
	if err != nil {
		return Target{}, err
	}

	var window *WindowRef
	var pane *PaneRef
	if windowPanePart != "" {
		window, pane, err = parseWindowPane(windowPanePart)
		if err != nil {
			return Target{}, err
		}
	}

	return Target{Session: session, Window: window, Pane: pane}, nil
}

func parseSessionRef(s string) (*SessionRef, error) {
	if s == "" {
		return nil, nil
	}
	if rest, ok := strings.CutPrefix(s, "$"); ok {
		id, err := parseIDNumber(rest)
		if err != nil {
			return nil, err
		}
		return &SessionRef{Kind: SessionRefID, ID: id}, nil
	}
	return &SessionRef{Kind: SessionRefName, Name: s}, nil
}

// parseWindowPane parses the WINDOW.PANE portion of a target string. The
// dot separates window from pane; either part may be absent if the dot is
// at the edge, and the dot itself may be absent (window only). The first
// '.' found is the separator.
func parseWindowPane(s string) (*WindowRef, *PaneRef, error) {
	if s == "" {
		return nil, nil, nil
	}

	var windowPart, panePart string
	havePane := false
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		windowPart = s[:dot]
		panePart = s[dot+1:]
		havePane = true
	} else {
		windowPart = s
	}

	window, err := parseWindowRef(windowPart)
	if err != nil {
		return nil, nil, err
	}

	var pane *PaneRef
	if havePane && panePart != "" {
		pane, err = parsePaneRef(panePart)
		if err != nil {
			return nil, nil, err
		}
	}

	return window, pane, nil
}

func parseWindowRef(s string) (*WindowRef, error) {
	if s == "" {
		return nil, nil
	}
	if rest, ok := strings.CutPrefix(s, "@"); ok {
		id, err := parseIDNumber(rest)
		if err != nil {
			return nil, err
		}
		return &WindowRef{Kind: WindowRefID, ID: id}, nil
	}
	if index, err := strconv.ParseUint(s, 10, 64); err == nil {
		return &WindowRef{Kind: WindowRefIndex, Index: index}, nil
	}
	return &WindowRef{Kind: WindowRefName, Name: s}, nil
}

func parsePaneRef(s string) (*PaneRef, error) {
	if rest, ok := strings.CutPrefix(s, "%"); ok {
		id, err := parseIDNumber(rest)
		if err != nil {
			return nil, err
		}
		return &PaneRef{Kind: PaneRefID, ID: id}, nil
	}
	if index, err := strconv.ParseUint(s, 10, 64); err == nil {
		return &PaneRef{Kind: PaneRefIndex, Index: index}, nil
	}
	return nil, errors.Errorf("invalid pane reference: %q", s)
}

func parseIDNumber(s string) (uint64, error) {
	if s == "" {
		return 0, errors.New("expected a number after sigil")
	}
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errors.Errorf("invalid numeric id: %q", s)
	}
	return id, nil
}
