package delivery

import (
	"context"
	"log"
	"sync"
)

// #region channel

// Channel is the outbound delivery collaborator: one capability, attempt
// to put text in front of the operator. delivered=false with a nil error
// means the channel declined (muted, no client attached); the pipeline's
// only obligation either way is passive recording.
type Channel interface {
	Deliver(ctx context.Context, text string) (delivered bool, err error)
}

// #endregion channel

// #region dispatch

// Dispatch fires a one-shot async delivery. The decision loop never waits
// on the result; onResult runs on the dispatch goroutine and must only
// observe, not touch decision state.
func Dispatch(ch Channel, text string, onResult func(delivered bool, err error)) {
	go func() {
		delivered, err := ch.Deliver(context.Background(), text)
		if onResult != nil {
			onResult(delivered, err)
		}
	}()
}

// #endregion dispatch

// #region log-channel

// LogChannel writes messages to the process log. Stands in for a real chat
// client and doubles as the passive-recording fallback.
type LogChannel struct{}

// Deliver logs the message and always reports success.
func (LogChannel) Deliver(_ context.Context, text string) (bool, error) {
	log.Printf("[CHAT] %s", text)
	return true, nil
}

// #endregion log-channel

// #region capture-channel

// CaptureChannel collects messages in memory for tests and replay. The
// mutex is only here because Dispatch delivers from another goroutine.
type CaptureChannel struct {
	mu       sync.Mutex
	messages []string
}

// Deliver records the message.
func (c *CaptureChannel) Deliver(_ context.Context, text string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, text)
	return true, nil
}

// Messages returns a copy of everything delivered so far.
func (c *CaptureChannel) Messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.messages))
	copy(out, c.messages)
	return out
}

// #endregion capture-channel
