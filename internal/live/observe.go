package live

import (
	"context"
	"time"
)

// Snapshot is one delivery of a live query: the complete result set at that
// moment, or the error the fetch returned.
type Snapshot[T any] struct {
	Items []T
	Err   error
	At    time.Time
}

// FetchFunc loads the current result set.
type FetchFunc[T any] func(ctx context.Context) ([]T, error)

// Observe subscribes to topic and delivers a snapshot immediately and after
// every change notification, until ctx is done. The channel is closed when
// the observation ends.
func Observe[T any](ctx context.Context, hub *Hub, topic string, fetch FetchFunc[T]) <-chan Snapshot[T] {
	out := make(chan Snapshot[T])
	sub := hub.Subscribe(topic)

	go func() {
		defer close(out)
		defer hub.Unsubscribe(sub)

		for {
			items, err := fetch(ctx)
			if ctx.Err() != nil {
				return
			}
			select {
			case out <- Snapshot[T]{Items: items, Err: err, At: time.Now()}:
			case <-ctx.Done():
				return
			}

			select {
			case <-sub.C:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
