package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repbep/internal/ai"
)

func TestMemoryHistoryAppendGetClear(t *testing.T) {
	ctx := context.Background()
	h := NewMemoryHistory(0)

	empty, err := h.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.NotNil(t, empty)

	require.NoError(t, h.Append(ctx, "s1", ai.ChatMessage{Role: "user", Content: "hi"}))
	require.NoError(t, h.Append(ctx, "s1", ai.ChatMessage{Role: "assistant", Content: "hello"}))
	require.NoError(t, h.Append(ctx, "s2", ai.ChatMessage{Role: "user", Content: "other"}))

	got, err := h.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []ai.ChatMessage{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
	}, got)

	require.NoError(t, h.Clear(ctx, "s1"))
	require.NoError(t, h.Clear(ctx, "missing"))
	got, err = h.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, got)

	other, err := h.Get(ctx, "s2")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestMemoryHistoryGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	h := NewMemoryHistory(0)
	require.NoError(t, h.Append(ctx, "s", ai.ChatMessage{Role: "user", Content: "original"}))

	got, err := h.Get(ctx, "s")
	require.NoError(t, err)
	got[0].Content = "mutated"

	again, err := h.Get(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "original", again[0].Content)
}

func TestMemoryHistoryConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	h := NewMemoryHistory(0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = h.Append(ctx, "s", ai.ChatMessage{Role: "user", Content: fmt.Sprint(i)})
		}(i)
	}
	wg.Wait()

	got, err := h.Get(ctx, "s")
	require.NoError(t, err)
	assert.Len(t, got, 50)
}

func TestMemoryHistoryIdleTTL(t *testing.T) {
	ctx := context.Background()
	h := NewMemoryHistory(20 * time.Millisecond)
	require.NoError(t, h.Append(ctx, "s", ai.ChatMessage{Role: "user", Content: "x"}))

	time.Sleep(40 * time.Millisecond)

	got, err := h.Get(ctx, "s")
	require.NoError(t, err)
	assert.Empty(t, got)
}
