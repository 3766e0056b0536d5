package daemon

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// waitRegistry implements tmux's wait-for channels: wait-for CHANNEL
// blocks until some connection runs wait-for -S CHANNEL. singleflight
// collapses concurrent -S signals for the same channel into one
// broadcast, so a burst of simultaneous signallers doesn't double-close
// (and panic) the waiters slice.
type waitRegistry struct {
	mu      sync.Mutex
	waiting map[string][]chan struct{}
	group   singleflight.Group
}

func newWaitRegistry() *waitRegistry {
	return &waitRegistry{waiting: make(map[string][]chan struct{})}
}

// wait blocks until channel is signalled or ctx is cancelled.
func (r *waitRegistry) wait(ctx context.Context, channel string) error {
	r.mu.Lock()
	ch := make(chan struct{})
	r.waiting[channel] = append(r.waiting[channel], ch)
	r.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// signal wakes every connection currently blocked in wait(channel).
func (r *waitRegistry) signal(channel string) {
	_, _, _ = r.group.Do(channel, func() (any, error) {
		r.mu.Lock()
		waiters := r.waiting[channel]
		delete(r.waiting, channel)
		r.mu.Unlock()
		for _, ch := range waiters {
			close(ch)
		}
		return nil, nil
	})
}
