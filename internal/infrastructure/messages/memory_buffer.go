package messages

import (
	"context"
	"sync"

	"github.com/cdCorey/woocommerce-sage-erp-connector/internal/application/export"
)

// MemoryBuffer implements export.MessageSink in process memory. Suitable for
// single-run CLI use and testing; buffered messages do not survive the
// process.
type MemoryBuffer struct {
	mu       sync.Mutex
	messages []string
}

// NewMemoryBuffer creates a new in-memory message buffer
func NewMemoryBuffer() *MemoryBuffer {
	return &MemoryBuffer{}
}

// Append buffers the messages
func (b *MemoryBuffer) Append(_ context.Context, messages ...string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, messages...)
	return nil
}

// Drain returns all buffered messages and clears the buffer
func (b *MemoryBuffer) Drain(_ context.Context) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	drained := b.messages
	b.messages = nil
	return drained, nil
}

// Ensure MemoryBuffer implements MessageSink
var _ export.MessageSink = (*MemoryBuffer)(nil)
