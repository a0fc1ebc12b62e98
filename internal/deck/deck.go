// internal/deck/deck.go
//
// Deck holds the distinct tiles of a validated Config together with the
// number of physical copies of each.
// Responsibilities:
//   - Resolve external tile names against the configured deck.
//   - Turn tile lists into per-distinct-tile occurrence vectors (board/rack state).
//   - Enumerate every physical tile (for callers that model a draw pile).
//
// Distinct tiles are kept in code order; vector index i always refers to Tiles()[i].

package deck

import (
	"errors"
	"fmt"
	"slices"

	"github.com/robalobadob/rummikub/internal/tile"
)

var (
	// ErrUnknownTile is returned for names that are not part of the configured deck.
	ErrUnknownTile = errors.New("deck: unknown tile")
	// ErrTooManyCopies is returned when a tile list holds more copies than exist.
	ErrTooManyCopies = errors.New("deck: too many copies")
)

// Deck is immutable once constructed.
type Deck struct {
	cfg   Config
	tiles []tile.Tile
	caps  []int
	index map[int]int // code -> position in tiles
}

// New validates cfg and builds the distinct tile list.
func New(cfg Config) (*Deck, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Colors = slices.Clone(cfg.Colors)
	d := &Deck{cfg: cfg, index: make(map[int]int)}
	for _, c := range cfg.Colors {
		for r := cfg.LowRank; r <= cfg.HighRank; r++ {
			d.tiles = append(d.tiles, tile.New(c, r))
		}
	}
	if cfg.Wilds() > 0 {
		d.tiles = append(d.tiles, tile.Joker())
	}
	slices.SortFunc(d.tiles, tile.Compare)
	d.caps = make([]int, len(d.tiles))
	for i, t := range d.tiles {
		d.index[t.Code()] = i
		d.caps[i] = cfg.Copies
		if t.IsWild() {
			d.caps[i] = cfg.Wilds()
		}
	}
	return d, nil
}

// Config returns the configuration the deck was built from.
func (d *Deck) Config() Config { return d.cfg }

// Tiles returns the distinct tiles in code order. Callers must not modify it.
func (d *Deck) Tiles() []tile.Tile { return d.tiles }

// Len is the number of distinct tiles.
func (d *Deck) Len() int { return len(d.tiles) }

// Cap returns the physical copies of the distinct tile at index i.
func (d *Deck) Cap(i int) int { return d.caps[i] }

// Values returns the score value of every distinct tile.
func (d *Deck) Values() []int {
	v := make([]int, len(d.tiles))
	for i, t := range d.tiles {
		v[i] = t.Value()
	}
	return v
}

// Index returns the vector position of t, or false if t is not in the deck.
func (d *Deck) Index(t tile.Tile) (int, bool) {
	if t.IsWild() {
		t = tile.Joker()
	}
	i, ok := d.index[t.Code()]
	return i, ok
}

// Lookup resolves an external name to a tile of this deck.
func (d *Deck) Lookup(name string) (tile.Tile, error) {
	t, err := tile.Parse(name)
	if err != nil {
		return tile.Tile{}, fmt.Errorf("%w: %v", ErrUnknownTile, err)
	}
	if _, ok := d.Index(t); !ok {
		return tile.Tile{}, fmt.Errorf("%w: %s", ErrUnknownTile, t.Name())
	}
	return t, nil
}

// LookupAll resolves every name, failing on the first unknown one.
func (d *Deck) LookupAll(names []string) ([]tile.Tile, error) {
	out := make([]tile.Tile, 0, len(names))
	for _, n := range names {
		t, err := d.Lookup(n)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Counts converts a tile list into an occurrence vector, checking copy caps.
func (d *Deck) Counts(tiles []tile.Tile) ([]int, error) {
	v := make([]int, len(d.tiles))
	for _, t := range tiles {
		i, ok := d.Index(t)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTile, t.Name())
		}
		v[i]++
		if v[i] > d.caps[i] {
			return nil, fmt.Errorf("%w: %s (%d > %d)", ErrTooManyCopies, t.Name(), v[i], d.caps[i])
		}
	}
	return v, nil
}

// Expand is the inverse of Counts: one tile per unit of v, in code order.
func (d *Deck) Expand(v []int) []tile.Tile {
	var out []tile.Tile
	for i, n := range v {
		for range n {
			out = append(out, d.tiles[i])
		}
	}
	return out
}

// Physical returns every physical tile of the deck, sorted by code.
func (d *Deck) Physical() []tile.Tile {
	return d.Expand(d.caps)
}
