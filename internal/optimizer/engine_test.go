package optimizer

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/robalobadob/rummikub/internal/deck"
	"github.com/robalobadob/rummikub/internal/grouping"
	"github.com/robalobadob/rummikub/internal/tile"
	"github.com/robalobadob/rummikub/internal/universe"
)

func build(t *testing.T, cfg deck.Config) *universe.Universe {
	t.Helper()
	u, err := universe.Build(cfg)
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	return u
}

func names(t *testing.T, u *universe.Universe, ns ...string) []tile.Tile {
	t.Helper()
	tiles, err := u.Deck().LookupAll(ns)
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	return tiles
}

func solve(t *testing.T, u *universe.Universe, board, rack []tile.Tile, opening bool) Result {
	t.Helper()
	st, err := StateFor(u.Deck(), board, rack, opening)
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	res, err := New(Config{}).Solve(context.Background(), u, st)
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	return res
}

// achieved is the best value a result proves, zero when no move exists.
func achieved(res Result) int {
	switch res.Outcome {
	case Success, BelowOpeningMinimum:
		return res.Value
	}
	return 0
}

func TestScenarios(t *testing.T) {
	u := build(t, deck.Default())
	scenarioTests := []struct {
		name      string
		board     []string
		rack      []string
		opening   bool
		want      Outcome
		wantValue int
		wantMoved int
	}{
		{
			name:      "one color run split in two",
			rack:      []string{"RED_1", "RED_2", "RED_3", "RED_4", "RED_5", "RED_6", "RED_7"},
			opening:   true,
			want:      BelowOpeningMinimum,
			wantValue: 28,
		},
		{
			name:      "four fives",
			rack:      []string{"BLUE_5", "RED_5", "BLACK_5", "ORANGE_5"},
			opening:   true,
			want:      BelowOpeningMinimum,
			wantValue: 20,
		},
		{
			name:      "two groups open",
			rack:      []string{"BLUE_5", "RED_5", "BLACK_5", "ORANGE_5", "BLUE_6", "RED_6", "BLACK_6"},
			opening:   true,
			want:      Success,
			wantValue: 38,
			wantMoved: 7,
		},
		{
			name:    "single tile",
			rack:    []string{"ORANGE_9"},
			opening: true,
			want:    NoSolution,
		},
		{
			name:      "extend board run",
			board:     []string{"RED_1", "RED_2", "RED_3"},
			rack:      []string{"RED_4", "BLUE_9"},
			want:      Success,
			wantValue: 4,
			wantMoved: 1,
		},
		{
			name:    "opening ignores board",
			board:   []string{"RED_1", "RED_2", "RED_3"},
			rack:    []string{"RED_4"},
			opening: true,
			want:    NoSolution,
		},
		{
			name:  "illegal board",
			board: []string{"RED_1", "BLUE_2"},
			rack:  []string{"BLUE_3", "BLACK_3", "ORANGE_3"},
			want:  NoSolution,
		},
		{
			name:      "wildcard fills a gap",
			rack:      []string{"RED_1", "RED_3", "JOKER"},
			want:      Success,
			wantValue: 1 + 3 + tile.WildValue,
			wantMoved: 3,
		},
		{
			name:      "wildcard opening",
			rack:      []string{"RED_10", "JOKER", "RED_12"},
			opening:   true,
			want:      Success,
			wantValue: 10 + 12 + tile.WildValue,
			wantMoved: 3,
		},
	}
	for _, test := range scenarioTests {
		t.Run(test.name, func(t *testing.T) {
			res := solve(t, u, names(t, u, test.board...), names(t, u, test.rack...), test.opening)
			if res.Outcome != test.want {
				t.Fatalf("wanted %v, got %v (value %v)", test.want, res.Outcome, res.Value)
			}
			if res.Value != test.wantValue {
				t.Errorf("wanted value %v, got %v", test.wantValue, res.Value)
			}
			if len(res.MovedTiles) != test.wantMoved {
				t.Errorf("wanted %v moved tiles, got %v", test.wantMoved, res.MovedTiles)
			}
		})
	}
}

func TestExtendBoardGroupings(t *testing.T) {
	u := build(t, deck.Default())
	res := solve(t, u, names(t, u, "RED_1", "RED_2", "RED_3"), names(t, u, "RED_4"), false)
	want := []string{"RUN:1401,1402,1403,1404"}
	got := make([]string, len(res.Groupings))
	for i, g := range res.Groupings {
		got[i] = g.Key()
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestSolveRejectsBadState(t *testing.T) {
	u := build(t, deck.Default())
	e := New(Config{})
	_, err := e.Solve(context.Background(), u, State{Board: []int{1}, Rack: []int{1}})
	if !errors.Is(err, ErrState) {
		t.Errorf("wanted ErrState, got %v", err)
	}
	st := State{Board: make([]int, u.Deck().Len()), Rack: make([]int, u.Deck().Len())}
	st.Board[0], st.Rack[0] = 2, 1
	if _, err := e.Solve(context.Background(), u, st); !errors.Is(err, deck.ErrTooManyCopies) {
		t.Errorf("wanted ErrTooManyCopies, got %v", err)
	}
}

func TestCancelledSolveExceedsBudget(t *testing.T) {
	u := build(t, deck.Default())
	st, err := StateFor(u.Deck(), nil, names(t, u, "RED_1", "RED_2", "RED_3"), false)
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := New(Config{}).Solve(ctx, u, st)
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	if res.Outcome != BudgetExceeded {
		t.Errorf("wanted %v, got %v", BudgetExceeded, res.Outcome)
	}
}

func smallConfig(copies int) deck.Config {
	return deck.Config{
		Colors:       []tile.Color{tile.Black, tile.Blue, tile.Red},
		LowRank:      1,
		HighRank:     5,
		Copies:       copies,
		WildsPerCopy: 1,
		MinLen:       3,
	}
}

// draw returns n random physical tiles without replacement.
func draw(rng *rand.Rand, pool []tile.Tile, n int) (picked, rest []tile.Tile) {
	pool = append([]tile.Tile(nil), pool...)
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return pool[:n], pool[n:]
}

// bruteForce returns the best value of any set of candidates packed into avail,
// each candidate used at most once.
func bruteForce(u *universe.Universe, avail []int) int {
	var fits []int
	for s := range u.Len() {
		ok := true
		for _, e := range u.Occurrences(s) {
			ok = ok && e.Count <= avail[e.Tile]
		}
		if ok {
			fits = append(fits, s)
		}
	}
	var best func(i int) int
	best = func(i int) int {
		if i == len(fits) {
			return 0
		}
		v := best(i + 1)
		s := fits[i]
		occ := u.Occurrences(s)
		for _, e := range occ {
			if e.Count > avail[e.Tile] {
				return v
			}
		}
		for _, e := range occ {
			avail[e.Tile] -= e.Count
		}
		v = max(v, u.Candidate(s).Value()+best(i+1))
		for _, e := range occ {
			avail[e.Tile] += e.Count
		}
		return v
	}
	return best(0)
}

func TestOptimalAgainstBruteForce(t *testing.T) {
	u := build(t, smallConfig(1))
	rng := rand.New(rand.NewPCG(7, 11))
	for i := range 40 {
		rack, _ := draw(rng, u.Deck().Physical(), 5+rng.IntN(5))
		avail, err := u.Deck().Counts(rack)
		if err != nil {
			t.Fatalf("unwanted error: %v", err)
		}
		want := bruteForce(u, avail)
		got := achieved(solve(t, u, nil, rack, false))
		if got != want {
			t.Errorf("Test %v (rack %v): wanted %v, got %v", i, rack, want, got)
		}
	}
}

func flatten(d *deck.Deck, gs []grouping.Grouping) []int {
	v := make([]int, d.Len())
	for _, g := range gs {
		for _, tl := range g.Tiles {
			i, _ := d.Index(tl)
			v[i]++
		}
	}
	return v
}

func TestSuccessCoversBoardAndMove(t *testing.T) {
	u := build(t, smallConfig(2))
	d := u.Deck()
	rng := rand.New(rand.NewPCG(3, 5))
	checked := 0
	for i := range 40 {
		// Lay one or two random wildcard-free candidates as the board.
		var board []tile.Tile
		for range 1 + rng.IntN(2) {
			g := u.Candidate(rng.IntN(u.Len()))
			if g.Wilds() == 0 {
				board = append(board, g.Tiles...)
			}
		}
		boardVec, err := d.Counts(board)
		if err != nil {
			continue
		}
		left := make([]int, d.Len())
		for j := range left {
			left[j] = d.Cap(j) - boardVec[j]
		}
		rack, _ := draw(rng, d.Expand(left), 4+rng.IntN(4))
		res := solve(t, u, board, rack, false)
		if res.Outcome != Success {
			if len(board) > 0 && res.Outcome != NoSolution {
				t.Errorf("Test %v: wanted success or no solution over a legal board, got %v", i, res.Outcome)
			}
			continue
		}
		checked++
		want, _ := d.Counts(append(append([]tile.Tile(nil), board...), res.MovedTiles...))
		if diff := cmp.Diff(want, flatten(d, res.Groupings)); diff != "" {
			t.Errorf("Test %v: coverage (-board+moved +placed):\n%s", i, diff)
		}
		moved := 0
		for _, tl := range res.MovedTiles {
			moved += tl.Value()
		}
		if moved != res.Value {
			t.Errorf("Test %v: wanted value %v, got %v", i, moved, res.Value)
		}
		for _, g := range res.Groupings {
			if err := g.Validate(u.CandidateLimits()); err != nil {
				t.Errorf("Test %v: placed %v: %v", i, g, err)
			}
		}
	}
	if checked == 0 {
		t.Errorf("wanted at least one successful solve")
	}
}

func TestMonotoneInRackCopies(t *testing.T) {
	u := build(t, smallConfig(2))
	d := u.Deck()
	rng := rand.New(rand.NewPCG(13, 17))
	for i := range 25 {
		rack, _ := draw(rng, d.Physical(), 4+rng.IntN(4))
		counts, _ := d.Counts(rack)
		before := achieved(solve(t, u, nil, rack, false))

		// Add one more copy of the most valuable tile that still has a copy left.
		best := -1
		for j, tl := range d.Tiles() {
			if counts[j] < d.Cap(j) && (best < 0 || tl.Value() > d.Tiles()[best].Value()) {
				best = j
			}
		}
		if best < 0 {
			continue
		}
		after := achieved(solve(t, u, nil, append(rack, d.Tiles()[best]), false))
		if after < before {
			t.Errorf("Test %v: adding %v dropped the value from %v to %v", i, d.Tiles()[best], before, after)
		}
	}
}

func TestOutcomeText(t *testing.T) {
	b, err := BelowOpeningMinimum.MarshalText()
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	if got, want := string(b), "below_opening_minimum"; got != want {
		t.Errorf("wanted %v, got %v", want, got)
	}
}
