// internal/optimizer/engine.go
//
// Move optimization.
//
// Given a candidate universe plus board and rack occurrence vectors, choose how
// many copies of each candidate appear on the resulting board (x) and how many
// copies of each tile move from the rack (y):
//
//	coverage:   sum_s occ(t, s) * x_s = B'_t + y_t   for every tile t
//	bounds:     0 <= x_s <= copies,  0 <= y_t <= min(R_t, cap_t)
//	objective:  maximize sum_t V_t * y_t
//
// B' is the board vector, or zero while the player's opening move is pending.
// With a non-zero B' the chosen candidates must rebuild the whole board, which
// re-validates its layout as a side effect.
//
// The integer program is solved by depth-first branch and bound over a
// warm-started dual simplex, bounded by a node count, a wall-clock limit and
// the caller's context. The time limit and context are also polled between
// simplex pivots.
// An Engine holds no mutable state; concurrent solves are independent.

package optimizer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/rummikub/internal/deck"
	"github.com/robalobadob/rummikub/internal/grouping"
	"github.com/robalobadob/rummikub/internal/tile"
	"github.com/robalobadob/rummikub/internal/universe"
)

// ErrState is returned for board or rack vectors that do not fit the deck.
var ErrState = errors.New("optimizer: invalid state")

// Outcome tags the result variants. None of them is an error.
type Outcome uint8

const (
	NoSolution Outcome = iota
	Success
	BelowOpeningMinimum
	BudgetExceeded
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case BelowOpeningMinimum:
		return "below_opening_minimum"
	case BudgetExceeded:
		return "budget_exceeded"
	}
	return "no_solution"
}

// MarshalText writes the outcome name.
func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// Config bounds the search. Zero values mean unbounded.
type Config struct {
	NodeLimit int
	TimeLimit time.Duration
}

// DefaultConfig matches the server defaults.
func DefaultConfig() Config {
	return Config{NodeLimit: 20000, TimeLimit: 10 * time.Second}
}

// State is the caller-owned snapshot a solve reads. Both vectors are indexed
// like Deck().Tiles().
type State struct {
	Board   []int
	Rack    []int
	Opening bool
}

// Result of one solve.
//
//   - Success: MovedTiles and Groupings describe the move, Value is its worth.
//   - BelowOpeningMinimum: Value is the best value found.
//   - BudgetExceeded: Value is the best value found before the search stopped (0 if none).
//   - NoSolution: nothing else is set.
type Result struct {
	Outcome    Outcome
	Value      int
	MovedTiles []tile.Tile
	Groupings  []grouping.Grouping
	Nodes      int
}

// Engine solves move problems. The zero value searches without limits.
type Engine struct {
	cfg Config
}

// New returns an engine with the given search limits.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Solve finds the maximum-value move for st against u.
func (e *Engine) Solve(ctx context.Context, u *universe.Universe, st State) (Result, error) {
	if err := checkState(u.Deck(), st); err != nil {
		return Result{}, err
	}
	start := time.Now()

	board := st.Board
	if st.Opening {
		board = make([]int, u.Deck().Len())
	}
	p, ok := presolve(u, board, st.Rack)
	if !ok {
		log.Debug().Msg("board tile outside every candidate")
		return Result{Outcome: NoSolution}, nil
	}

	s, err := p.branchAndBound(ctx, e.cfg)
	if err != nil {
		return Result{Nodes: s.nodes}, err
	}
	res := interpret(u, p, s, st.Opening)

	log.Debug().
		Int("candidates", p.nx()).
		Int("nodes", s.nodes).
		Int("pivots", s.pivots).
		Int("value", res.Value).
		Stringer("outcome", res.Outcome).
		Dur("took", time.Since(start)).
		Msg("solve finished")
	return res, nil
}

func interpret(u *universe.Universe, p *program, s search, opening bool) Result {
	res := Result{Nodes: s.nodes}
	switch {
	case s.exceeded:
		res.Outcome = BudgetExceeded
		if s.found {
			res.Value = s.value
		}
		return res
	case !s.found || s.value == 0:
		res.Outcome = NoSolution
		return res
	case opening && s.value < u.Config().MinOpening:
		res.Outcome = BelowOpeningMinimum
		res.Value = s.value
		return res
	}

	res.Outcome = Success
	res.Value = s.value
	moved := make([]int, u.Deck().Len())
	for r, t := range p.tiles {
		moved[t] = s.z[p.nx()+r]
	}
	res.MovedTiles = u.Deck().Expand(moved)
	for c, cand := range p.cands {
		for range s.z[c] {
			res.Groupings = append(res.Groupings, u.Candidate(cand))
		}
	}
	return res
}

func checkState(d *deck.Deck, st State) error {
	if len(st.Board) != d.Len() || len(st.Rack) != d.Len() {
		return fmt.Errorf("%w: vectors have %d and %d entries, deck has %d",
			ErrState, len(st.Board), len(st.Rack), d.Len())
	}
	for i := range d.Len() {
		if st.Board[i] < 0 || st.Rack[i] < 0 {
			return fmt.Errorf("%w: negative count for %s", ErrState, d.Tiles()[i].Name())
		}
		if st.Board[i]+st.Rack[i] > d.Cap(i) {
			return fmt.Errorf("%w: %s", deck.ErrTooManyCopies, d.Tiles()[i].Name())
		}
	}
	return nil
}

// StateFor builds a state from tile lists.
func StateFor(d *deck.Deck, board, rack []tile.Tile, opening bool) (State, error) {
	b, err := d.Counts(board)
	if err != nil {
		return State{}, err
	}
	r, err := d.Counts(rack)
	if err != nil {
		return State{}, err
	}
	return State{Board: b, Rack: r, Opening: opening}, nil
}
