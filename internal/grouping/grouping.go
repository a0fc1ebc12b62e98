// internal/grouping/grouping.go
//
// Groupings are the legal tile combinations on a board.
// Defines:
//   - Kind: RUN (consecutive ranks, one color) or GROUP (one rank, distinct colors).
//   - Grouping: a kind tag plus an ordered tile sequence in canonical form.
//
// Canonical form:
//   - RUN:   numbered tiles sorted by rank; wildcards stay at the position they
//            were given, because the slot decides which rank they stand in for.
//   - GROUP: tiles sorted by code (color order, wildcards last).
//
// Structurally identical groupings share one Key regardless of construction order.

package grouping

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/robalobadob/rummikub/internal/tile"
)

// Kind tags the grouping shape.
type Kind uint8

const (
	Run   Kind = 1
	Group Kind = 2
)

func (k Kind) String() string {
	switch k {
	case Run:
		return "RUN"
	case Group:
		return "GROUP"
	}
	return "UNKNOWN"
}

// MarshalText writes the kind name.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText reads a kind name.
func (k *Kind) UnmarshalText(b []byte) error {
	switch strings.ToUpper(string(b)) {
	case "RUN":
		*k = Run
	case "GROUP":
		*k = Group
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrMalformed, b)
	}
	return nil
}

// Grouping is an ordered tile sequence of one kind. Treat it as immutable.
type Grouping struct {
	Kind  Kind
	Tiles []tile.Tile
}

// New canonicalizes tiles for the given kind.
func New(kind Kind, tiles []tile.Tile) Grouping {
	switch kind {
	case Run:
		return Grouping{Kind: Run, Tiles: canonicalRun(tiles)}
	default:
		return Grouping{Kind: kind, Tiles: canonicalGroup(tiles)}
	}
}

// NewRun returns the canonical run of tiles.
func NewRun(tiles []tile.Tile) Grouping { return New(Run, tiles) }

// NewGroup returns the canonical group of tiles.
func NewGroup(tiles []tile.Tile) Grouping { return New(Group, tiles) }

func canonicalRun(tiles []tile.Tile) []tile.Tile {
	numbered := make([]tile.Tile, 0, len(tiles))
	for _, t := range tiles {
		if !t.IsWild() {
			numbered = append(numbered, t)
		}
	}
	slices.SortStableFunc(numbered, func(a, b tile.Tile) int { return a.Rank - b.Rank })
	out := make([]tile.Tile, len(tiles))
	next := 0
	for i, t := range tiles {
		if t.IsWild() {
			out[i] = tile.Joker()
			continue
		}
		out[i] = numbered[next]
		next++
	}
	return out
}

func canonicalGroup(tiles []tile.Tile) []tile.Tile {
	out := make([]tile.Tile, len(tiles))
	for i, t := range tiles {
		if t.IsWild() {
			t = tile.Joker()
		}
		out[i] = t
	}
	slices.SortStableFunc(out, tile.Compare)
	return out
}

// Len is the number of tiles.
func (g Grouping) Len() int { return len(g.Tiles) }

// Wilds counts the wildcard slots.
func (g Grouping) Wilds() int {
	n := 0
	for _, t := range g.Tiles {
		if t.IsWild() {
			n++
		}
	}
	return n
}

// Value is the summed tile value.
func (g Grouping) Value() int {
	v := 0
	for _, t := range g.Tiles {
		v += t.Value()
	}
	return v
}

// Key is the equality/hash key: "RUN:1101,9000,1103".
func (g Grouping) Key() string {
	var sb strings.Builder
	sb.WriteString(g.Kind.String())
	sb.WriteByte(':')
	for i, t := range g.Tiles {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(t.Code()))
	}
	return sb.String()
}

// Equal reports structural equality.
func (g Grouping) Equal(o Grouping) bool { return g.Key() == o.Key() }

// Names returns the external tile names in order.
func (g Grouping) Names() []string {
	names := make([]string, len(g.Tiles))
	for i, t := range g.Tiles {
		names[i] = t.Name()
	}
	return names
}

func (g Grouping) String() string {
	parts := make([]string, len(g.Tiles))
	for i, t := range g.Tiles {
		parts[i] = t.String()
	}
	return g.Kind.String() + "[" + strings.Join(parts, ", ") + "]"
}

// Compare orders groupings by key, for deterministic listings.
func Compare(a, b Grouping) int { return strings.Compare(a.Key(), b.Key()) }
