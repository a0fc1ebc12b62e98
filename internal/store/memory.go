// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// Tables live only as long as the process.
//
// Characteristics:
//   - Stores *game.Game objects keyed by ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Get returns ErrNotFound for unknown ids.

package store

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/robalobadob/rummikub/internal/game"
)

// ErrNotFound is returned by Get for unknown game ids.
var ErrNotFound = errors.New("store: game not found")

// Store defines the persistence interface for tables.
type Store interface {
	// Save persists or updates a table.
	Save(ctx context.Context, g *game.Game) error

	// Get retrieves a table by ID.
	Get(ctx context.Context, id string) (*game.Game, error)

	// IDs lists stored table ids in sorted order.
	IDs(ctx context.Context) ([]string, error)
}

type memory struct {
	mu    sync.RWMutex
	games map[string]*game.Game
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{games: make(map[string]*game.Game)}
}

func (m *memory) Save(ctx context.Context, g *game.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[g.ID] = g
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*game.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if g, ok := m.games[id]; ok {
		return g, nil
	}
	return nil, ErrNotFound
}

func (m *memory) IDs(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.games))
	for id := range m.games {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}
