// internal/deck/config.go
//
// Deck configuration.
// A Config describes deck composition (colors, rank range, copies, wildcards)
// plus the two rule knobs the optimizer honours: the minimum grouping length
// and the minimum value of a player's opening move.
//
// Validation happens here, before any candidate generation is attempted.

package deck

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/robalobadob/rummikub/internal/tile"
)

// ErrConfig reports deck parameters that cannot produce a playable universe.
var ErrConfig = errors.New("deck: invalid configuration")

// Upper limits on custom decks. Candidate counts grow exponentially in the
// grouping length and the number of wildcards.
const (
	MaxCopies = 4
	MaxWilds  = 8
	MaxMinLen = 6
)

// Config is the in-memory deck definition supplied by the caller.
type Config struct {
	Colors       []tile.Color `json:"colors"`
	LowRank      int          `json:"lowRank"`
	HighRank     int          `json:"highRank"`
	Copies       int          `json:"copies"`       // physical copies of every numbered tile
	WildsPerCopy int          `json:"wildsPerCopy"` // wildcards added per deck copy
	MinLen       int          `json:"minLen"`       // minimum grouping length m
	MinOpening   int          `json:"minOpening"`   // opening-move minimum value M
}

// Default returns the standard 106-tile configuration.
func Default() Config {
	return Config{
		Colors:       []tile.Color{tile.Black, tile.Blue, tile.Orange, tile.Red},
		LowRank:      1,
		HighRank:     13,
		Copies:       2,
		WildsPerCopy: 1,
		MinLen:       3,
		MinOpening:   30,
	}
}

// Ranks is the number of distinct ranks per color.
func (c Config) Ranks() int { return c.HighRank - c.LowRank + 1 }

// Wilds is the number of physical wildcard tiles.
func (c Config) Wilds() int { return c.Copies * c.WildsPerCopy }

// MaxRunLen is the longest run the candidate universe enumerates (2m-1).
func (c Config) MaxRunLen() int { return 2*c.MinLen - 1 }

// Validate checks every field and that at least one grouping of length MinLen exists.
func (c Config) Validate() error {
	if len(c.Colors) == 0 {
		return fmt.Errorf("%w: no colors", ErrConfig)
	}
	seen := make(map[tile.Color]bool, len(c.Colors))
	for _, col := range c.Colors {
		if !slices.Contains(tile.Colors, col) {
			return fmt.Errorf("%w: unknown color %v", ErrConfig, col)
		}
		if seen[col] {
			return fmt.Errorf("%w: duplicate color %v", ErrConfig, col)
		}
		seen[col] = true
	}
	switch {
	case c.LowRank < 1 || c.HighRank > tile.MaxRank || c.LowRank > c.HighRank:
		return fmt.Errorf("%w: rank range %d..%d", ErrConfig, c.LowRank, c.HighRank)
	case c.Copies < 1 || c.Copies > MaxCopies:
		return fmt.Errorf("%w: copies must be in 1..%d", ErrConfig, MaxCopies)
	case c.WildsPerCopy < 0:
		return fmt.Errorf("%w: negative wildcard count", ErrConfig)
	case c.Wilds() > MaxWilds:
		return fmt.Errorf("%w: %d wildcards, at most %d", ErrConfig, c.Wilds(), MaxWilds)
	case c.MinLen < 2 || c.MinLen > MaxMinLen:
		return fmt.Errorf("%w: minimum grouping length must be in 2..%d", ErrConfig, MaxMinLen)
	case c.MinOpening < 0:
		return fmt.Errorf("%w: negative opening minimum", ErrConfig)
	}
	if c.Ranks() < c.MinLen && len(c.Colors) < c.MinLen {
		return fmt.Errorf("%w: %d ranks and %d colors cannot form a grouping of length %d",
			ErrConfig, c.Ranks(), len(c.Colors), c.MinLen)
	}
	return nil
}

// Key identifies configurations that produce the same candidate universe.
// Color order does not matter.
func (c Config) Key() string {
	cols := slices.Clone(c.Colors)
	slices.Sort(cols)
	var sb strings.Builder
	for _, col := range cols {
		sb.WriteString(strconv.Itoa(int(col)))
	}
	fmt.Fprintf(&sb, "|%d-%d|c%d|w%d|m%d|o%d", c.LowRank, c.HighRank, c.Copies, c.WildsPerCopy, c.MinLen, c.MinOpening)
	return sb.String()
}
