package history

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Record is one stored solve.
type Record struct {
	ID        string     `json:"id"`
	GameID    string     `json:"gameId"`
	PlayerID  string     `json:"playerId"`
	Opening   bool       `json:"opening"`
	Outcome   string     `json:"outcome"`
	Value     int        `json:"value"`
	Moved     []string   `json:"moved"`
	Groupings [][]string `json:"groupings"`
	Nodes     int        `json:"nodes"`
	ElapsedMs int64      `json:"elapsedMs"`
	CreatedAt time.Time  `json:"createdAt"`
}

type Store struct{ db *DB }

func NewStore(db *DB) *Store { return &Store{db: db} }

// Insert stores r, filling in ID and CreatedAt when empty.
func (s *Store) Insert(ctx context.Context, r Record) (Record, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	groupings, err := json.Marshal(r.Groupings)
	if err != nil {
		return r, fmt.Errorf("encode groupings: %w", err)
	}
	_, err = s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO solves
			(id, game_id, player_id, opening, outcome, value, moved, groupings, nodes, elapsed_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		r.ID, r.GameID, r.PlayerID, r.Opening, r.Outcome, r.Value,
		strings.Join(r.Moved, ","), string(groupings), r.Nodes, r.ElapsedMs, r.CreatedAt,
	)
	return r, err
}

// ByGame returns the newest solves of a game, newest first. limit defaults to 20.
func (s *Store) ByGame(ctx context.Context, gameID string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, s.db.Rebind(`
		SELECT id, game_id, player_id, opening, outcome, value, moved, groupings, nodes, elapsed_ms, created_at
		FROM solves
		WHERE game_id=?
		ORDER BY created_at DESC, id ASC
		LIMIT ?`), gameID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Record, 0, limit)
	for rows.Next() {
		var (
			r         Record
			moved     string
			groupings string
		)
		if err := rows.Scan(&r.ID, &r.GameID, &r.PlayerID, &r.Opening, &r.Outcome, &r.Value,
			&moved, &groupings, &r.Nodes, &r.ElapsedMs, &r.CreatedAt); err != nil {
			return nil, err
		}
		if moved != "" {
			r.Moved = strings.Split(moved, ",")
		}
		if err := json.Unmarshal([]byte(groupings), &r.Groupings); err != nil {
			return nil, fmt.Errorf("decode groupings of %s: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
