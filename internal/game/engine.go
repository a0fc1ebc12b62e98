// internal/game/engine.go
//
// Table state for the move optimizer.
// Responsibilities:
//   - Seat players and hold their racks and opening flags.
//   - Accept board and rack contents from the recognition feed, rejecting
//     unknown tile names and malformed groupings.
//   - Build fresh board/rack vectors for every solve.
//   - Apply a successful move: tiles leave the rack, groupings land on the board.
//
// The candidate universe is passed in at construction and never modified.

package game

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/rummikub/internal/grouping"
	"github.com/robalobadob/rummikub/internal/optimizer"
	"github.com/robalobadob/rummikub/internal/tile"
	"github.com/robalobadob/rummikub/internal/universe"
)

// New constructs an empty table over u. An empty id gets a fresh uuid.
func New(id string, u *universe.Universe) *Game {
	if id == "" {
		id = uuid.NewString()
	}
	return &Game{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		universe:  u,
		players:   make(map[string]*Player),
	}
}

// Universe returns the candidate universe the table was built with.
func (g *Game) Universe() *universe.Universe { return g.universe }

// AddPlayer seats a new player with an empty rack and a pending opening move.
func (g *Game) AddPlayer(name string) *Player {
	g.mu.Lock()
	defer g.mu.Unlock()
	p := &Player{
		ID:      uuid.NewString(),
		Name:    strings.TrimSpace(name),
		Opening: true,
	}
	if p.Name == "" {
		p.Name = fmt.Sprintf("player %d", len(g.order)+1)
	}
	g.players[p.ID] = p
	g.order = append(g.order, p.ID)
	return p
}

// PlayerIDs lists seated players in seat order.
func (g *Game) PlayerIDs() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.order)
}

// Rack returns the tile names a player holds.
func (g *Game) Rack(playerID string) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.players[playerID]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	names := make([]string, len(p.Rack))
	for i, t := range p.Rack {
		names[i] = t.Name()
	}
	return names, nil
}

// SetRack replaces a player's rack with the named tiles.
func (g *Game) SetRack(playerID string, names []string) error {
	d := g.universe.Deck()
	tiles, err := d.LookupAll(names)
	if err != nil {
		return err
	}
	if _, err := d.Counts(tiles); err != nil {
		return err
	}
	slices.SortFunc(tiles, tile.Compare)

	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.players[playerID]
	if !ok {
		return ErrPlayerNotFound
	}
	p.Rack = tiles
	return nil
}

// ParseBoard classifies and validates externally clustered tile groups.
// Board runs may be longer than any single candidate.
func ParseBoard(u *universe.Universe, groups [][]string) ([]grouping.Grouping, error) {
	d := u.Deck()
	limits := u.BoardLimits()
	out := make([]grouping.Grouping, 0, len(groups))
	var all []tile.Tile
	for i, names := range groups {
		tiles, err := d.LookupAll(names)
		if err != nil {
			return nil, fmt.Errorf("board grouping %d: %w", i, err)
		}
		gr, err := grouping.Classify(tiles)
		if err != nil {
			return nil, fmt.Errorf("board grouping %d: %w", i, err)
		}
		if err := gr.Validate(limits); err != nil {
			return nil, fmt.Errorf("board grouping %d: %w", i, err)
		}
		out = append(out, gr)
		all = append(all, gr.Tiles...)
	}
	if _, err := d.Counts(all); err != nil {
		return nil, err
	}
	return out, nil
}

// SetBoard replaces the board with the given tile groups.
func (g *Game) SetBoard(groups [][]string) error {
	board, err := ParseBoard(g.universe, groups)
	if err != nil {
		return err
	}
	g.mu.Lock()
	g.board = board
	g.mu.Unlock()
	return nil
}

// StateFor builds fresh occurrence vectors for one player's solve.
func (g *Game) StateFor(playerID string) (optimizer.State, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stateFor(playerID)
}

func (g *Game) stateFor(playerID string) (optimizer.State, error) {
	p, ok := g.players[playerID]
	if !ok {
		return optimizer.State{}, ErrPlayerNotFound
	}
	var board []tile.Tile
	for _, gr := range g.board {
		board = append(board, gr.Tiles...)
	}
	return optimizer.StateFor(g.universe.Deck(), board, p.Rack, p.Opening)
}

// Solve computes the best move for a player. The table lock is held only while
// the state vectors are built.
func (g *Game) Solve(ctx context.Context, e *optimizer.Engine, playerID string) (optimizer.Result, error) {
	st, err := g.StateFor(playerID)
	if err != nil {
		return optimizer.Result{}, err
	}
	return e.Solve(ctx, g.universe, st)
}

// Apply plays a successful result for a player. During the opening move the
// new groupings join the untouched board; afterwards they replace it, since the
// solve rebuilt the whole board.
func (g *Game) Apply(playerID string, res optimizer.Result) error {
	if res.Outcome != optimizer.Success {
		return fmt.Errorf("%w: %v", ErrNotApplicable, res.Outcome)
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.players[playerID]
	if !ok {
		return ErrPlayerNotFound
	}
	d := g.universe.Deck()
	st, err := g.stateFor(playerID)
	if err != nil {
		return err
	}
	moved, err := d.Counts(res.MovedTiles)
	if err != nil {
		return err
	}
	placed := make([]int, d.Len())
	for _, gr := range res.Groupings {
		for _, t := range gr.Tiles {
			i, _ := d.Index(t)
			placed[i]++
		}
	}
	for i := range moved {
		if moved[i] > st.Rack[i] {
			return fmt.Errorf("%w: %s is not on the rack", ErrStale, d.Tiles()[i].Name())
		}
		want := moved[i]
		if !p.Opening {
			want += st.Board[i]
		}
		if placed[i] != want {
			return fmt.Errorf("%w: %s placed %d times, expected %d", ErrStale, d.Tiles()[i].Name(), placed[i], want)
		}
	}

	rack := make([]int, d.Len())
	for i := range rack {
		rack[i] = st.Rack[i] - moved[i]
	}
	p.Rack = d.Expand(rack)
	if p.Opening {
		g.board = append(g.board, res.Groupings...)
	} else {
		g.board = slices.Clone(res.Groupings)
	}
	p.Opening = false
	return nil
}

// Snapshot copies the public table state.
func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	s := Snapshot{
		ID:         g.ID,
		Deck:       g.universe.Config(),
		Candidates: g.universe.Len(),
		Board:      make([]GroupingView, len(g.board)),
		Players:    make([]PlayerView, 0, len(g.order)),
		CreatedAt:  g.CreatedAt,
	}
	for i, gr := range g.board {
		s.Board[i] = GroupingView{Kind: gr.Kind, Tiles: gr.Names()}
	}
	for _, id := range g.order {
		p := g.players[id]
		s.Players = append(s.Players, PlayerView{
			ID:       p.ID,
			Name:     p.Name,
			RackSize: len(p.Rack),
			Score:    p.Score(),
			Opening:  p.Opening,
		})
	}
	return s
}
