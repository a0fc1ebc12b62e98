package grouping

import (
	"errors"
	"fmt"

	"github.com/robalobadob/rummikub/internal/tile"
)

// ErrMalformed is returned for groupings that are neither a valid run nor a valid group.
var ErrMalformed = errors.New("grouping: malformed")

// Limits bound grouping lengths and implied ranks.
type Limits struct {
	MinLen      int
	MaxRunLen   int
	MaxGroupLen int
	LowRank     int
	HighRank    int
}

// Validate checks g against its kind's invariants.
func (g Grouping) Validate(l Limits) error {
	switch g.Kind {
	case Run:
		return g.validateRun(l)
	case Group:
		return g.validateGroup(l)
	}
	return fmt.Errorf("%w: unknown kind %d", ErrMalformed, g.Kind)
}

func (g Grouping) validateRun(l Limits) error {
	if g.Len() < l.MinLen || g.Len() > l.MaxRunLen {
		return fmt.Errorf("%w: run length %d outside [%d, %d]", ErrMalformed, g.Len(), l.MinLen, l.MaxRunLen)
	}
	var color tile.Color
	start, anchored := 0, false
	for i, t := range g.Tiles {
		if t.IsWild() {
			continue
		}
		if !anchored {
			color, start, anchored = t.Color, t.Rank-i, true
			continue
		}
		if t.Color != color {
			return fmt.Errorf("%w: run mixes %v and %v", ErrMalformed, color, t.Color)
		}
		if t.Rank-i != start {
			return fmt.Errorf("%w: %v is not consecutive at position %d", ErrMalformed, t, i)
		}
	}
	if !anchored {
		if g.Len() > l.HighRank-l.LowRank+1 {
			return fmt.Errorf("%w: wildcard run longer than the rank range", ErrMalformed)
		}
		return nil
	}
	if start < l.LowRank || start+g.Len()-1 > l.HighRank {
		return fmt.Errorf("%w: run spans ranks %d..%d outside %d..%d",
			ErrMalformed, start, start+g.Len()-1, l.LowRank, l.HighRank)
	}
	return nil
}

func (g Grouping) validateGroup(l Limits) error {
	if g.Len() < l.MinLen || g.Len() > l.MaxGroupLen {
		return fmt.Errorf("%w: group length %d outside [%d, %d]", ErrMalformed, g.Len(), l.MinLen, l.MaxGroupLen)
	}
	rank := 0
	colors := make(map[tile.Color]bool, g.Len())
	for _, t := range g.Tiles {
		if t.IsWild() {
			continue
		}
		if rank == 0 {
			rank = t.Rank
		}
		if t.Rank != rank {
			return fmt.Errorf("%w: group mixes ranks %d and %d", ErrMalformed, rank, t.Rank)
		}
		if colors[t.Color] {
			return fmt.Errorf("%w: group repeats %v", ErrMalformed, t.Color)
		}
		colors[t.Color] = true
	}
	return nil
}

// Classify infers the kind of an externally supplied tile list: a run when every
// numbered tile shares a color, a group when every numbered tile shares a rank.
// Tiles sharing both (a single numbered tile among wildcards) classify as a run.
// The result is canonical but not yet validated against Limits.
func Classify(tiles []tile.Tile) (Grouping, error) {
	if len(tiles) == 0 {
		return Grouping{}, fmt.Errorf("%w: empty", ErrMalformed)
	}
	sameColor, sameRank := true, true
	var first *tile.Tile
	for i := range tiles {
		t := tiles[i]
		if t.IsWild() {
			continue
		}
		if first == nil {
			first = &tiles[i]
			continue
		}
		sameColor = sameColor && t.Color == first.Color
		sameRank = sameRank && t.Rank == first.Rank
	}
	switch {
	case sameColor:
		return NewRun(tiles), nil
	case sameRank:
		return NewGroup(tiles), nil
	}
	return Grouping{}, fmt.Errorf("%w: neither one color nor one rank", ErrMalformed)
}
