package universe

import (
	"sync"

	"github.com/robalobadob/rummikub/internal/deck"
)

// Cache shares universes between games with the same deck configuration.
// The owner (usually the HTTP server) constructs it explicitly.
type Cache struct {
	mu    sync.Mutex
	built map[string]*entry
}

type entry struct {
	once sync.Once
	u    *Universe
	err  error
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{built: make(map[string]*entry)}
}

// Get returns the universe for cfg, building it at most once per configuration.
func (c *Cache) Get(cfg deck.Config) (*Universe, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	key := cfg.Key()
	c.mu.Lock()
	e, ok := c.built[key]
	if !ok {
		e = new(entry)
		c.built[key] = e
	}
	c.mu.Unlock()

	e.once.Do(func() {
		e.u, e.err = Build(cfg)
	})
	return e.u, e.err
}

// Len is the number of cached configurations.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.built)
}
