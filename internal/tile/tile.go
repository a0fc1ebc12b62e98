// internal/tile/tile.go
//
// Tile value objects.
// Defines:
//   - Kind:  numbered tile or wildcard (joker).
//   - Color: one of the four tile colors.
//   - Tile:  an immutable (kind, color, rank) triple with a canonical integer code.
//
// Notes:
//   - Every wildcard shares one code, so wildcards are interchangeable.
//   - Numbered tiles have a unique code per (color, rank); codes give a total order
//     (color first, then rank, wildcards last).

package tile

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind distinguishes numbered tiles from wildcards.
type Kind uint8

const (
	Numbered Kind = 1
	Wild     Kind = 9
)

// WildValue is the score contribution of a wildcard.
const WildValue = 30

// WildName is the external name of a wildcard tile.
const WildName = "JOKER"

// MaxRank is the largest rank the code scheme can represent.
const MaxRank = 99

// ErrBadName is returned when a tile name cannot be parsed.
var ErrBadName = errors.New("tile: bad name")

// Tile is a single rummikub tile. The zero value is not a valid tile.
type Tile struct {
	Kind  Kind
	Color Color
	Rank  int
}

// New returns a numbered tile.
func New(c Color, rank int) Tile {
	return Tile{Kind: Numbered, Color: c, Rank: rank}
}

// Joker returns the wildcard tile.
func Joker() Tile {
	return Tile{Kind: Wild}
}

// IsWild reports whether t is a wildcard.
func (t Tile) IsWild() bool { return t.Kind == Wild }

// Code returns the canonical integer code: 1CRR for numbered tiles, 9000 for wildcards.
func (t Tile) Code() int {
	if t.IsWild() {
		return int(Wild) * 1000
	}
	return int(Numbered)*1000 + int(t.Color)*100 + t.Rank
}

// Value is the score contribution of the tile.
func (t Tile) Value() int {
	if t.IsWild() {
		return WildValue
	}
	return t.Rank
}

// Name returns the external identifier, e.g. "RED_5" or "JOKER".
func (t Tile) Name() string {
	if t.IsWild() {
		return WildName
	}
	return t.Color.String() + "_" + strconv.Itoa(t.Rank)
}

func (t Tile) String() string {
	return "[" + t.Name() + "]"
}

// Parse converts an external name into a tile. It checks syntax only;
// membership in a particular deck is checked by the deck package.
func Parse(name string) (Tile, error) {
	n := strings.ToUpper(strings.TrimSpace(name))
	if n == WildName {
		return Joker(), nil
	}
	colorName, rankText, ok := strings.Cut(n, "_")
	if !ok {
		return Tile{}, fmt.Errorf("%w: %q", ErrBadName, name)
	}
	c, err := ParseColor(colorName)
	if err != nil {
		return Tile{}, fmt.Errorf("%w: %q", ErrBadName, name)
	}
	rank, err := strconv.Atoi(rankText)
	if err != nil || rank < 1 || rank > MaxRank {
		return Tile{}, fmt.Errorf("%w: %q", ErrBadName, name)
	}
	return New(c, rank), nil
}

// Compare is a three-way comparison by code, for slices.SortFunc.
func Compare(a, b Tile) int { return a.Code() - b.Code() }
