package game

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/robalobadob/rummikub/internal/deck"
	"github.com/robalobadob/rummikub/internal/grouping"
	"github.com/robalobadob/rummikub/internal/optimizer"
	"github.com/robalobadob/rummikub/internal/universe"
)

func newTable(t *testing.T) *Game {
	t.Helper()
	u, err := universe.Build(deck.Default())
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	return New("", u)
}

func TestAddPlayer(t *testing.T) {
	g := newTable(t)
	a := g.AddPlayer("  ana ")
	b := g.AddPlayer("")
	if a.Name != "ana" || b.Name != "player 2" {
		t.Errorf("wanted names ana and player 2, got %q and %q", a.Name, b.Name)
	}
	if !a.Opening {
		t.Errorf("wanted a pending opening move")
	}
	if diff := cmp.Diff([]string{a.ID, b.ID}, g.PlayerIDs()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestSetRackErrors(t *testing.T) {
	g := newTable(t)
	p := g.AddPlayer("ana")
	setRackTests := []struct {
		id    string
		names []string
		want  error
	}{
		{id: p.ID, names: []string{"RED_1", "joker"}},
		{id: p.ID, names: []string{"PURPLE_1"}, want: deck.ErrUnknownTile},
		{id: p.ID, names: []string{"RED_14"}, want: deck.ErrUnknownTile},
		{id: p.ID, names: []string{"RED_1", "RED_1", "RED_1"}, want: deck.ErrTooManyCopies},
		{id: "nobody", names: []string{"RED_1"}, want: ErrPlayerNotFound},
	}
	for i, test := range setRackTests {
		err := g.SetRack(test.id, test.names)
		switch {
		case test.want == nil && err != nil:
			t.Errorf("Test %v: unwanted error: %v", i, err)
		case test.want != nil && !errors.Is(err, test.want):
			t.Errorf("Test %v: wanted %v, got %v", i, test.want, err)
		}
	}
	rack, err := g.Rack(p.ID)
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	if diff := cmp.Diff([]string{"RED_1", "JOKER"}, rack); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestSetBoard(t *testing.T) {
	g := newTable(t)
	setBoardTests := []struct {
		groups [][]string
		want   error
	}{
		{groups: [][]string{{"RED_1", "RED_2", "RED_3", "RED_4", "RED_5", "RED_6", "RED_7"}}},
		{groups: [][]string{{"BLUE_4", "RED_4", "JOKER"}, {"BLACK_9", "BLACK_10", "BLACK_11"}}},
		{groups: [][]string{{"RED_1", "BLUE_2", "BLACK_3"}}, want: grouping.ErrMalformed},
		{groups: [][]string{{"RED_1", "RED_2"}}, want: grouping.ErrMalformed},
		{groups: [][]string{{"RED_1", "RED_3", "RED_4"}}, want: grouping.ErrMalformed},
		{groups: [][]string{{"RED_1", "RED_2", "PINK_3"}}, want: deck.ErrUnknownTile},
		{groups: [][]string{{"RED_1", "RED_2", "RED_3"}, {"RED_1", "RED_2", "RED_3"}, {"RED_1", "BLUE_1", "BLACK_1"}}, want: deck.ErrTooManyCopies},
	}
	for i, test := range setBoardTests {
		err := g.SetBoard(test.groups)
		switch {
		case test.want == nil && err != nil:
			t.Errorf("Test %v: unwanted error: %v", i, err)
		case test.want != nil && !errors.Is(err, test.want):
			t.Errorf("Test %v: wanted %v, got %v", i, test.want, err)
		}
	}
}

func TestStateForIgnoresOtherRacks(t *testing.T) {
	g := newTable(t)
	a, b := g.AddPlayer("a"), g.AddPlayer("b")
	if err := g.SetRack(a.ID, []string{"RED_5"}); err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	if err := g.SetRack(b.ID, []string{"BLUE_5", "BLUE_6"}); err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	if err := g.SetBoard([][]string{{"BLACK_1", "BLACK_2", "BLACK_3"}}); err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	st, err := g.StateFor(a.ID)
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	sum := func(v []int) int {
		n := 0
		for _, x := range v {
			n += x
		}
		return n
	}
	if sum(st.Rack) != 1 || sum(st.Board) != 3 || !st.Opening {
		t.Errorf("wanted 1 rack tile, 3 board tiles and a pending opening, got %v, %v, %v",
			sum(st.Rack), sum(st.Board), st.Opening)
	}
	if _, err := g.StateFor("nobody"); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("wanted ErrPlayerNotFound, got %v", err)
	}
}

func TestSolveAndApply(t *testing.T) {
	g := newTable(t)
	p := g.AddPlayer("ana")
	e := optimizer.New(optimizer.Config{})
	ctx := context.Background()

	if err := g.SetBoard([][]string{{"BLACK_1", "BLACK_2", "BLACK_3"}}); err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	if err := g.SetRack(p.ID, []string{"RED_10", "RED_11", "RED_12", "BLACK_4", "ORANGE_2"}); err != nil {
		t.Fatalf("unwanted error: %v", err)
	}

	// Opening: the board is off limits, only the red run counts.
	res, err := g.Solve(ctx, e, p.ID)
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	if res.Outcome != optimizer.Success || res.Value != 33 {
		t.Fatalf("wanted success worth 33, got %v worth %v", res.Outcome, res.Value)
	}
	if err := g.Apply(p.ID, res); err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	snap := g.Snapshot()
	if len(snap.Board) != 2 || snap.Players[0].Opening || snap.Players[0].RackSize != 2 {
		t.Fatalf("unexpected snapshot after opening: %+v", snap)
	}
	if err := g.Apply(p.ID, res); !errors.Is(err, ErrStale) {
		t.Errorf("wanted ErrStale on replay, got %v", err)
	}

	// After opening the board may be rearranged: BLACK_4 extends the black run.
	res, err = g.Solve(ctx, e, p.ID)
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	if res.Outcome != optimizer.Success || res.Value != 4 {
		t.Fatalf("wanted success worth 4, got %v worth %v", res.Outcome, res.Value)
	}
	if err := g.Apply(p.ID, res); err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	rack, _ := g.Rack(p.ID)
	if diff := cmp.Diff([]string{"ORANGE_2"}, rack); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	snap = g.Snapshot()
	tiles := 0
	for _, gr := range snap.Board {
		tiles += len(gr.Tiles)
	}
	if tiles != 7 {
		t.Errorf("wanted 7 board tiles, got %v", tiles)
	}
	if snap.Players[0].Score != 2 {
		t.Errorf("wanted score 2, got %v", snap.Players[0].Score)
	}
}

func TestApplyRejectsNonMoves(t *testing.T) {
	g := newTable(t)
	p := g.AddPlayer("ana")
	err := g.Apply(p.ID, optimizer.Result{Outcome: optimizer.BelowOpeningMinimum, Value: 12})
	if !errors.Is(err, ErrNotApplicable) {
		t.Errorf("wanted ErrNotApplicable, got %v", err)
	}
}
