// internal/game/types.go
//
// Core type definitions for a rummikub table.
// Defines:
//   - Player: one seat with its rack and opening-move flag.
//   - Game:   the shared board, the seated players and the candidate universe.
//   - Snapshot views returned to clients.

package game

import (
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/rummikub/internal/deck"
	"github.com/robalobadob/rummikub/internal/grouping"
	"github.com/robalobadob/rummikub/internal/tile"
	"github.com/robalobadob/rummikub/internal/universe"
)

var (
	// ErrPlayerNotFound is returned for unknown player ids.
	ErrPlayerNotFound = errors.New("game: player not found")
	// ErrNotApplicable is returned when applying a result that is not a successful move.
	ErrNotApplicable = errors.New("game: result is not a move")
	// ErrStale is returned when the board or rack changed after the result was computed.
	ErrStale = errors.New("game: result no longer matches the table")
)

// Player is one seat at the table.
type Player struct {
	ID      string      // uuid
	Name    string      // display name
	Rack    []tile.Tile // tiles held
	Opening bool        // true until the player's first move lands
}

// Score is the summed value of the tiles still on the rack.
func (p *Player) Score() int {
	s := 0
	for _, t := range p.Rack {
		s += t.Value()
	}
	return s
}

// Game holds one table. Methods are safe for concurrent use.
type Game struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	universe *universe.Universe
	board    []grouping.Grouping
	players  map[string]*Player
	order    []string // seat order
}

// GroupingView is a board grouping as clients see it.
type GroupingView struct {
	Kind  grouping.Kind `json:"kind"`
	Tiles []string      `json:"tiles"`
}

// PlayerView hides the rack contents.
type PlayerView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	RackSize int    `json:"rackSize"`
	Score    int    `json:"score"`
	Opening  bool   `json:"opening"`
}

// Snapshot is a point-in-time copy of the table.
type Snapshot struct {
	ID         string         `json:"id"`
	Deck       deck.Config    `json:"deck"`
	Candidates int            `json:"candidates"`
	Board      []GroupingView `json:"board"`
	Players    []PlayerView   `json:"players"`
	CreatedAt  time.Time      `json:"createdAt"`
}
