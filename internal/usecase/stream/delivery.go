package stream

import (
	"context"
	"time"
)

// Deliver emits chunks on the returned channel, honoring each chunk's
// delay. If ctx is cancelled, delivery stops without emitting further
// chunks and the channel is closed; the consumer sees closure, not an
// error. The channel is always closed once the sequence or the context
// ends.
func Deliver(ctx context.Context, chunks []Chunk) <-chan Chunk {
	out := make(chan Chunk)

	go func() {
		defer close(out)
		timer := time.NewTimer(0)
		defer timer.Stop()
		if !timer.Stop() {
			<-timer.C
		}

		for _, ch := range chunks {
			timer.Reset(ch.Delay)
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}

			select {
			case <-ctx.Done():
				return
			case out <- ch:
			}
		}
	}()

	return out
}
