// internal/universe/universe.go
//
// Universe is the complete, deduplicated set of legal candidate groupings for
// one deck configuration, plus the per-candidate tile occurrence vectors the
// optimizer consumes.
//
// A Universe depends only on deck composition and length bounds. It is built
// once per game and never mutated afterwards, so any number of solves may read
// it concurrently.

package universe

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/rummikub/internal/deck"
	"github.com/robalobadob/rummikub/internal/grouping"
)

// Entry is one non-zero cell of a candidate's occurrence vector.
type Entry struct {
	Tile  int // index into Deck().Tiles()
	Count int
}

// Universe is immutable after Build.
type Universe struct {
	deck       *deck.Deck
	candidates []grouping.Grouping
	occ        [][]Entry
	byKey      map[string]int
}

// Build validates cfg and enumerates every legal candidate. Decks whose
// estimated universe exceeds MaxCandidates are rejected with deck.ErrConfig.
func Build(cfg deck.Config) (*Universe, error) {
	d, err := deck.New(cfg)
	if err != nil {
		return nil, err
	}
	if n := Estimate(cfg); n > MaxCandidates {
		return nil, fmt.Errorf("%w: about %d candidates, limit %d", deck.ErrConfig, n, MaxCandidates)
	}
	return fromDeck(d), nil
}

func fromDeck(d *deck.Deck) *Universe {
	start := time.Now()
	cands := generate(d)
	u := &Universe{
		deck:       d,
		candidates: cands,
		occ:        make([][]Entry, len(cands)),
		byKey:      make(map[string]int, len(cands)),
	}
	for s, g := range cands {
		u.byKey[g.Key()] = s
		counts := make(map[int]int, g.Len())
		var order []int
		for _, t := range g.Tiles {
			i, _ := d.Index(t)
			if counts[i] == 0 {
				order = append(order, i)
			}
			counts[i]++
		}
		for _, i := range order {
			u.occ[s] = append(u.occ[s], Entry{Tile: i, Count: counts[i]})
		}
	}
	log.Info().
		Str("deck", d.Config().Key()).
		Int("candidates", len(cands)).
		Dur("took", time.Since(start)).
		Msg("built candidate universe")
	return u
}

// Deck returns the deck the universe was built from.
func (u *Universe) Deck() *deck.Deck { return u.deck }

// Config returns the deck configuration.
func (u *Universe) Config() deck.Config { return u.deck.Config() }

// Len is the number of candidates.
func (u *Universe) Len() int { return len(u.candidates) }

// Candidate returns candidate s.
func (u *Universe) Candidate(s int) grouping.Grouping { return u.candidates[s] }

// Candidates returns every candidate in key order. Callers must not modify it.
func (u *Universe) Candidates() []grouping.Grouping { return u.candidates }

// Occurrences returns the non-zero tile counts of candidate s.
func (u *Universe) Occurrences(s int) []Entry { return u.occ[s] }

// Find returns the index of the candidate structurally equal to g.
func (u *Universe) Find(g grouping.Grouping) (int, bool) {
	s, ok := u.byKey[g.Key()]
	return s, ok
}

// CandidateLimits are the bounds every generated candidate satisfies.
func (u *Universe) CandidateLimits() grouping.Limits {
	cfg := u.Config()
	return grouping.Limits{
		MinLen:      cfg.MinLen,
		MaxRunLen:   cfg.MaxRunLen(),
		MaxGroupLen: len(cfg.Colors),
		LowRank:     cfg.LowRank,
		HighRank:    cfg.HighRank,
	}
}

// BoardLimits are the bounds for groupings read off a physical board. Runs
// there may be longer than any single candidate; the optimizer covers them
// with several candidates.
func (u *Universe) BoardLimits() grouping.Limits {
	l := u.CandidateLimits()
	l.MaxRunLen = u.Config().Ranks()
	return l
}
