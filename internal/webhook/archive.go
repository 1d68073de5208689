package webhook

import (
	"context"
	"sync"

	"github.com/onexay/gitobs/internal/types"
)

// Archive journals deliveries so they can be listed later.
type Archive interface {
	Sink
	DeliveryLog
	Close() error
}

// MemoryArchive is a map-backed archive, the default when no journal file is configured.
type MemoryArchive struct {
	mu   sync.RWMutex
	data map[string][]types.Delivery // hookID -> deliveries
}

// NewMemoryArchive constructs an in-memory archive.
func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{data: make(map[string][]types.Delivery)}
}

func (m *MemoryArchive) Deliver(ctx context.Context, delivery types.Delivery) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[delivery.HookID] = append(m.data[delivery.HookID], delivery)
	return nil
}

func (m *MemoryArchive) Deliveries(ctx context.Context, hookID string) ([]types.Delivery, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]types.Delivery, len(m.data[hookID]))
	copy(result, m.data[hookID])
	return result, nil
}

func (m *MemoryArchive) Close() error { return nil }
