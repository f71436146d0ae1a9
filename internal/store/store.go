// Package store is the persistence collaborator. The pipeline never touches
// it; the API layer records completed exchanges so the front end can list
// recent history.
package store

import (
	"context"
	"sync"
	"time"
)

// Exchange is one completed question/answer pair.
type Exchange struct {
	ID        string    `json:"id"`
	Workflow  string    `json:"workflow"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}

type Store interface {
	SaveExchange(ctx context.Context, ex *Exchange) error
	RecentExchanges(ctx context.Context, limit int) ([]*Exchange, error)
}

// MemoryStore keeps the most recent exchanges in a bounded ring.
type MemoryStore struct {
	mu    sync.Mutex
	items []*Exchange
	cap   int
}

func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = 50
	}
	return &MemoryStore{cap: capacity}
}

func (m *MemoryStore) SaveExchange(_ context.Context, ex *Exchange) error {
	if ex == nil {
		return nil
	}
	cp := *ex
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, &cp)
	if len(m.items) > m.cap {
		m.items = m.items[len(m.items)-m.cap:]
	}
	return nil
}

func (m *MemoryStore) RecentExchanges(_ context.Context, limit int) ([]*Exchange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 || limit > len(m.items) {
		limit = len(m.items)
	}
	// newest first
	out := make([]*Exchange, 0, limit)
	for i := len(m.items) - 1; i >= len(m.items)-limit; i-- {
		cp := *m.items[i]
		out = append(out, &cp)
	}
	return out, nil
}
