package app

import (
	"context"
	"sync"

	"quizhub-service/internal/domain"
)

// Feed turns the append-only event log into push subscriptions. Each
// subscriber owns a cursor; the feed replays everything after it, then parks
// until woken by the next append. Events are delivered in sequence order and
// never skipped.
type Feed struct {
	log EventLog

	mu      sync.Mutex
	waiters map[chan struct{}]struct{}
}

func NewFeed(log EventLog) *Feed {
	return &Feed{log: log, waiters: make(map[chan struct{}]struct{})}
}

// Wake releases every parked subscriber so it re-polls the log. Nil-safe so
// the engine can run without a feed attached.
func (f *Feed) Wake() {
	if f == nil {
		return
	}
	f.mu.Lock()
	for w := range f.waiters {
		close(w)
		delete(f.waiters, w)
	}
	f.mu.Unlock()
}

// Subscribe streams events with Seq > after. The caller must invoke the
// returned cancel function (or cancel ctx) to release the subscription.
func (f *Feed) Subscribe(ctx context.Context, after uint64) (<-chan domain.Event, func()) {
	out := make(chan domain.Event, 16)
	stop := make(chan struct{})
	var stopOnce sync.Once
	cancel := func() {
		stopOnce.Do(func() { close(stop) })
	}

	go func() {
		defer close(out)
		cursor := after
		for {
			// Register before polling so an append between the poll and the
			// park below still wakes this subscriber.
			wait := f.addWaiter()

			events, err := f.log.EventsSince(ctx, cursor)
			if err != nil {
				f.removeWaiter(wait)
				return
			}
			if len(events) > 0 {
				f.removeWaiter(wait)
				for _, event := range events {
					select {
					case out <- event:
						cursor = event.Seq
					case <-ctx.Done():
						return
					case <-stop:
						return
					}
				}
				continue
			}

			select {
			case <-wait:
			case <-ctx.Done():
				f.removeWaiter(wait)
				return
			case <-stop:
				f.removeWaiter(wait)
				return
			}
		}
	}()

	return out, cancel
}

func (f *Feed) addWaiter() chan struct{} {
	w := make(chan struct{})
	f.mu.Lock()
	f.waiters[w] = struct{}{}
	f.mu.Unlock()
	return w
}

func (f *Feed) removeWaiter(w chan struct{}) {
	f.mu.Lock()
	delete(f.waiters, w)
	f.mu.Unlock()
}
