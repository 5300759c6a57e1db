package messages

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBuffer_AppendAndDrain(t *testing.T) {
	ctx := context.Background()
	buffer := NewMemoryBuffer()

	require.NoError(t, buffer.Append(ctx, "first"))
	require.NoError(t, buffer.Append(ctx, "second", "third"))

	drained, err := buffer.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, drained)
}

func TestMemoryBuffer_DrainClearsBuffer(t *testing.T) {
	ctx := context.Background()
	buffer := NewMemoryBuffer()

	require.NoError(t, buffer.Append(ctx, "only once"))

	_, err := buffer.Drain(ctx)
	require.NoError(t, err)

	drained, err := buffer.Drain(ctx)
	require.NoError(t, err)
	assert.Empty(t, drained)
}

func TestMemoryBuffer_ConcurrentAppend(t *testing.T) {
	ctx := context.Background()
	buffer := NewMemoryBuffer()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = buffer.Append(ctx, fmt.Sprintf("message %d", n))
		}(i)
	}
	wg.Wait()

	drained, err := buffer.Drain(ctx)
	require.NoError(t, err)
	assert.Len(t, drained, 10)
}
