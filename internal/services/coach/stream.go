package coach

import (
	"context"
	"time"
)

// DefaultTypingDelay is the pause between streamed characters.
const DefaultTypingDelay = 30 * time.Millisecond

// Stream emits text one rune at a time with delay between runes, like
// someone typing. The channel closes when the text is done or ctx ends.
func Stream(ctx context.Context, text string, delay time.Duration) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)

		var tick *time.Ticker
		if delay > 0 {
			tick = time.NewTicker(delay)
			defer tick.Stop()
		}

		for i, r := range []rune(text) {
			if i > 0 && tick != nil {
				select {
				case <-tick.C:
				case <-ctx.Done():
					return
				}
			}
			select {
			case out <- string(r):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
