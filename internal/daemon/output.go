package daemon

import (
	"time"

	"github.com/g960059/tmuxccd/internal/hostmux"
	"github.com/g960059/tmuxccd/internal/response"
)

// registerTap records cancel as the live TapPaneOutput subscription for
// paneID, refusing a second registration so a racing initial-tap pass and
// a PaneAdded event can't both spawn a consumer for the same pane.
func (s *Session) registerTap(paneID hostmux.PaneID, cancel func()) bool {
	s.tapMu.Lock()
	defer s.tapMu.Unlock()
	if _, exists := s.paneTaps[paneID]; exists {
		return false
	}
	s.paneTaps[paneID] = cancel
	return true
}

func (s *Session) hasTap(paneID hostmux.PaneID) bool {
	s.tapMu.Lock()
	defer s.tapMu.Unlock()
	_, ok := s.paneTaps[paneID]
	return ok
}

// stopTap cancels and forgets paneID's tap, if any. Safe to call whether
// or not a tap was ever registered.
func (s *Session) stopTap(paneID hostmux.PaneID) {
	s.tapMu.Lock()
	cancel, ok := s.paneTaps[paneID]
	if ok {
		delete(s.paneTaps, paneID)
	}
	s.tapMu.Unlock()
	if ok {
		cancel()
	}
}

// clearTap forgets paneID's tap without cancelling it, for use by the tap
// goroutine itself once its channel has already closed.
func (s *Session) clearTap(paneID hostmux.PaneID) {
	s.tapMu.Lock()
	delete(s.paneTaps, paneID)
	s.tapMu.Unlock()
}

// stopAllTaps cancels every tap this session holds, for connection
// teardown.
func (s *Session) stopAllTaps() {
	s.tapMu.Lock()
	taps := s.paneTaps
	s.paneTaps = make(map[hostmux.PaneID]func())
	s.tapMu.Unlock()
	for _, cancel := range taps {
		cancel()
	}
}

// formatPaneOutput turns one chunk of raw pane output into the wire-format
// notification line(s) for it, applying the pause/flow-control state
// machine: once a threshold is armed (pauseAfter > 0), every pane's output
// uses %extended-output instead of %output, and a pane that has gone
// quiet for longer than the threshold is marked Paused and gets a %pause
// line ahead of its next chunk.
func (s *Session) formatPaneOutput(paneID hostmux.PaneID, data []byte) (string, bool) {
	tmuxPaneID, ok := s.idmap.TmuxPaneID(string(paneID))
	if !ok {
		return "", false
	}

	s.pauseMu.Lock()
	defer s.pauseMu.Unlock()

	now := time.Now()
	last, hadOutput := s.lastOutputAt[paneID]
	s.lastOutputAt[paneID] = now

	var notif string
	if s.pauseAfter > 0 && hadOutput && !s.pausedPanes[paneID] && now.Sub(last) > s.pauseAfter {
		s.pausedPanes[paneID] = true
		notif += response.PauseNotification(tmuxPaneID)
	}

	if s.pauseAfter == 0 {
		return notif + response.OutputNotification(tmuxPaneID, data), true
	}

	var ageMs int64
	if hadOutput {
		ageMs = now.Sub(last).Milliseconds()
	}
	return notif + response.ExtendedOutputNotification(tmuxPaneID, ageMs, data), true
}
