package daemon

import (
	"context"
	"strings"
	"time"

	"github.com/g960059/tmuxccd/internal/model"
	"github.com/g960059/tmuxccd/internal/response"
	"github.com/g960059/tmuxccd/internal/tmuxfmt"
)

// applySubscription handles refresh-client's -B NAME[:TARGET:FMT]. A bare
// NAME unsubscribes; NAME:TARGET:FMT registers (or replaces) a
// subscription polled by runSubscriptionTicker.
func (s *Session) applySubscription(value string) {
	if value == "" {
		return
	}
	parts := strings.SplitN(value, ":", 3)
	name := parts[0]
	if name == "" {
		return
	}
	if len(parts) == 1 {
		s.subMu.Lock()
		delete(s.subscriptions, name)
		s.subMu.Unlock()
		return
	}
	if len(parts) != 3 {
		return
	}
	sub := &model.Subscription{
		Name:   name,
		Kind:   model.SubscriptionFormat,
		Target: parts[1],
		Format: parts[2],
	}
	s.subMu.Lock()
	s.subscriptions[name] = sub
	s.subMu.Unlock()
}

// runSubscriptionTicker polls every registered subscription once a
// second, per spec's §4.9a design: one ticker shared across all of a
// connection's subscriptions rather than one timer per subscription.
func (s *Session) runSubscriptionTicker(ctx context.Context, out chan<- string) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			for _, line := range s.pollSubscriptions(ctx) {
				select {
				case out <- line:
				case <-ctx.Done():
					return
				}
			}
		case <-ctx.Done():
			return
		}
	}
}

// pollSubscriptions evaluates every subscription's target+format against
// current mux state and returns a %subscription-changed line for each one
// whose rendered value changed since the last poll.
func (s *Session) pollSubscriptions(ctx context.Context) []string {
	s.subMu.Lock()
	names := make([]string, 0, len(s.subscriptions))
	for name := range s.subscriptions {
		names = append(names, name)
	}
	s.subMu.Unlock()

	var lines []string
	for _, name := range names {
		s.subMu.Lock()
		sub, ok := s.subscriptions[name]
		s.subMu.Unlock()
		if !ok {
			continue
		}

		value, sessionID, windowID, windowIndex, paneID, ok := s.evaluateSubscription(ctx, sub)
		if !ok {
			continue
		}
		if value == sub.Last {
			continue
		}

		s.subMu.Lock()
		if current, stillRegistered := s.subscriptions[name]; stillRegistered && current == sub {
			sub.Last = value
		}
		s.subMu.Unlock()

		lines = append(lines, response.SubscriptionChangedNotification(name, sessionID, windowID, windowIndex, paneID, value))
	}
	return lines
}

// evaluateSubscription resolves sub's target fresh (it may have moved
// between ticks) and expands its format string against that pane.
func (s *Session) evaluateSubscription(ctx context.Context, sub *model.Subscription) (value string, sessionID, windowID, windowIndex, paneID uint64, ok bool) {
	resolved, err := s.resolveTarget(ctx, sub.Target)
	if err != nil || !resolved.HasPaneID {
		return "", 0, 0, 0, 0, false
	}
	fctx, err := s.buildFormatContextForTarget(ctx, resolved.PaneID, resolved.TabID, resolved.Workspace)
	if err != nil {
		return "", 0, 0, 0, 0, false
	}
	value = tmuxfmt.Expand(sub.Format, &fctx)
	return value, fctx.SessionID, fctx.WindowID, fctx.WindowIndex, fctx.PaneID, true
}
