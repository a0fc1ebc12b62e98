// internal/universe/generate.go
//
// Candidate enumeration.
//
// Steps:
//   1. Runs:   windows of length m..2m-1 over numbered tiles sorted by (color, rank);
//              windows that straddle a color boundary are rejected, not wrapped.
//   2. Groups: every m..colors combination of one rank's tiles, in color order.
//   3. Wildcards: every subset of a base candidate's eligible positions, up to the
//              number of physical wildcards, replaced by a wildcard.
//
// Eligible positions:
//   - RUN longer than m:      interior positions only (endpoints stay fixed).
//   - RUN of length m:        every position.
//   - GROUP of length <= m:   every position.
//   - GROUP longer than m:    none.

package universe

import (
	"iter"
	"slices"

	"gonum.org/v1/gonum/stat/combin"

	"github.com/robalobadob/rummikub/internal/deck"
	"github.com/robalobadob/rummikub/internal/grouping"
	"github.com/robalobadob/rummikub/internal/tile"
)

// numbered returns the deck's numbered tiles sorted by (color, rank), which is code order.
func numbered(d *deck.Deck) []tile.Tile {
	out := make([]tile.Tile, 0, d.Len())
	for _, t := range d.Tiles() {
		if !t.IsWild() {
			out = append(out, t)
		}
	}
	return out
}

// baseRuns yields every wildcard-free run.
func baseRuns(tiles []tile.Tile, m int) iter.Seq[grouping.Grouping] {
	return func(yield func(grouping.Grouping) bool) {
		for i := range tiles {
			for l := m; l <= 2*m-1; l++ {
				if i+l > len(tiles) {
					break
				}
				window := tiles[i : i+l]
				if !oneColor(window) {
					continue
				}
				if !yield(grouping.NewRun(slices.Clone(window))) {
					return
				}
			}
		}
	}
}

func oneColor(tiles []tile.Tile) bool {
	for _, t := range tiles[1:] {
		if t.Color != tiles[0].Color {
			return false
		}
	}
	return true
}

// baseGroups yields every wildcard-free group.
func baseGroups(tiles []tile.Tile, m, colors int) iter.Seq[grouping.Grouping] {
	byRank := make(map[int][]tile.Tile)
	var ranks []int
	for _, t := range tiles {
		if _, ok := byRank[t.Rank]; !ok {
			ranks = append(ranks, t.Rank)
		}
		byRank[t.Rank] = append(byRank[t.Rank], t)
	}
	slices.Sort(ranks)
	return func(yield func(grouping.Grouping) bool) {
		for _, rank := range ranks {
			same := byRank[rank]
			for l := m; l <= colors && l <= len(same); l++ {
				for _, idx := range combin.Combinations(len(same), l) {
					members := make([]tile.Tile, l)
					for p, i := range idx {
						members[p] = same[i]
					}
					if !yield(grouping.NewGroup(members)) {
						return
					}
				}
			}
		}
	}
}

// eligible returns the positions of base that may hold a wildcard.
func eligible(base grouping.Grouping, m int) []int {
	n := base.Len()
	var lo, hi int
	switch {
	case base.Kind == grouping.Run && n > m:
		lo, hi = 1, n-1
	case base.Kind == grouping.Group && n > m:
		return nil
	default:
		lo, hi = 0, n
	}
	pos := make([]int, 0, hi-lo)
	for p := lo; p < hi; p++ {
		pos = append(pos, p)
	}
	return pos
}

// wildVariants yields every wildcard substitution of base using at most wilds wildcards.
func wildVariants(base grouping.Grouping, m, wilds int) iter.Seq[grouping.Grouping] {
	return func(yield func(grouping.Grouping) bool) {
		pos := eligible(base, m)
		for k := 1; k <= wilds && k <= len(pos); k++ {
			for _, subset := range combin.Combinations(len(pos), k) {
				members := slices.Clone(base.Tiles)
				for _, i := range subset {
					members[pos[i]] = tile.Joker()
				}
				if !yield(grouping.New(base.Kind, members)) {
					return
				}
			}
		}
	}
}

// MaxCandidates bounds the universe size Build accepts.
const MaxCandidates = 20000

// Estimate is an upper bound on the number of candidates cfg generates,
// computed without enumerating them.
func Estimate(cfg deck.Config) int {
	m, j := cfg.MinLen, cfg.Wilds()
	variants := func(eligible int) int {
		n := 1
		for k := 1; k <= j && k <= eligible; k++ {
			n += combin.Binomial(eligible, k)
		}
		return n
	}
	total := 0
	for l := m; l <= 2*m-1 && l <= cfg.Ranks(); l++ {
		eligible := l - 2
		if l == m {
			eligible = l
		}
		windows := len(cfg.Colors) * (cfg.Ranks() - l + 1)
		total += windows * variants(eligible)
	}
	for l := m; l <= len(cfg.Colors); l++ {
		eligible := 0
		if l <= m {
			eligible = l
		}
		total += cfg.Ranks() * combin.Binomial(len(cfg.Colors), l) * variants(eligible)
	}
	return total
}

// generate returns the deduplicated candidate set sorted by key.
func generate(d *deck.Deck) []grouping.Grouping {
	cfg := d.Config()
	m := cfg.MinLen
	tiles := numbered(d)

	set := make(map[string]grouping.Grouping)
	add := func(g grouping.Grouping) {
		set[g.Key()] = g
	}
	var bases []grouping.Grouping
	for g := range baseRuns(tiles, m) {
		bases = append(bases, g)
	}
	for g := range baseGroups(tiles, m, len(cfg.Colors)) {
		bases = append(bases, g)
	}
	for _, base := range bases {
		add(base)
		for v := range wildVariants(base, m, cfg.Wilds()) {
			add(v)
		}
	}

	out := make([]grouping.Grouping, 0, len(set))
	for _, g := range set {
		out = append(out, g)
	}
	slices.SortFunc(out, grouping.Compare)
	return out
}
