package didcomm

import (
	"context"
	"sync"
	"time"
)

// MemoryTransport is an in-process Transport for tests and local runs.
// Queued messages model the offline inbox; Deliver feeds the live channel.
// Every Send is captured for inspection.
type MemoryTransport struct {
	mu     sync.Mutex
	queued []Message
	sent   []Message
	acked  []string
	mode   AccessMode

	live chan Message
}

func NewMemoryTransport() *MemoryTransport {
	return &MemoryTransport{live: make(chan Message, 64)}
}

// Queue places a message in the offline inbox.
func (t *MemoryTransport) Queue(message Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.queued = append(t.queued, message)
}

// Deliver pushes a live message for PollOne to pick up.
func (t *MemoryTransport) Deliver(message Message) {
	t.live <- message
}

func (t *MemoryTransport) Send(_ context.Context, message Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = append(t.sent, message)
	return nil
}

func (t *MemoryTransport) ReceiveBatch(_ context.Context, limit int) ([]Message, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if limit > len(t.queued) {
		limit = len(t.queued)
	}
	batch := make([]Message, limit)
	copy(batch, t.queued[:limit])
	return batch, nil
}

func (t *MemoryTransport) PollOne(ctx context.Context, timeout time.Duration) (*Message, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case message := <-t.live:
		return &message, nil
	case <-timer.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (t *MemoryTransport) Ack(_ context.Context, ids []string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	remaining := t.queued[:0]
	for _, message := range t.queued {
		if !containsID(ids, message.ID) {
			remaining = append(remaining, message)
		}
	}
	t.queued = remaining
	t.acked = append(t.acked, ids...)
	return nil
}

func (t *MemoryTransport) SetAccessMode(_ context.Context, mode AccessMode) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.mode = mode
	return nil
}

// Sent returns a copy of every message sent through the transport.
func (t *MemoryTransport) Sent() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Message(nil), t.sent...)
}

// Acked returns every acknowledged envelope id.
func (t *MemoryTransport) Acked() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.acked...)
}

// Queued returns the current offline inbox.
func (t *MemoryTransport) Queued() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Message(nil), t.queued...)
}

// Mode returns the last asserted access mode.
func (t *MemoryTransport) Mode() AccessMode {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mode
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
