package cache

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"repbep/internal/ai"
)

// MemoryHistory keeps session history in process memory. Entries live for the process
// lifetime unless an idle TTL is configured, in which case every append renews it.
type MemoryHistory struct {
	mu    sync.Mutex
	store *gocache.Cache
}

func NewMemoryHistory(idleTTL time.Duration) *MemoryHistory {
	expiration := gocache.NoExpiration
	var cleanup time.Duration
	if idleTTL > 0 {
		expiration = idleTTL
		cleanup = idleTTL
	}
	return &MemoryHistory{store: gocache.New(expiration, cleanup)}
}

func (h *MemoryHistory) Append(ctx context.Context, sessionID string, msg ai.ChatMessage) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	current := h.load(sessionID)
	// Full slice expression forces a fresh backing array so earlier readers never see the write.
	next := append(current[:len(current):len(current)], msg)
	h.store.Set(sessionID, next, gocache.DefaultExpiration)
	return nil
}

func (h *MemoryHistory) Get(ctx context.Context, sessionID string) ([]ai.ChatMessage, error) {
	current := h.load(sessionID)
	out := make([]ai.ChatMessage, len(current))
	copy(out, current)
	return out, nil
}

func (h *MemoryHistory) Clear(ctx context.Context, sessionID string) error {
	h.store.Delete(sessionID)
	return nil
}

func (h *MemoryHistory) load(sessionID string) []ai.ChatMessage {
	if v, ok := h.store.Get(sessionID); ok {
		return v.([]ai.ChatMessage)
	}
	return nil
}
