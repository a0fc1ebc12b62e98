// internal/httpserver/routes_games.go
//
// Table routes.
//   - POST /games                                   → new table + host token
//   - GET  /games/{gameID}                          → snapshot
//   - POST /games/{gameID}/players                  → seat a player (host)
//   - PUT  /games/{gameID}/board                    → replace the board (host)
//   - PUT  /games/{gameID}/players/{playerID}/rack  → replace a rack (host or that player)
//   - POST /games/{gameID}/players/{playerID}/solve → best move, optionally applied
//   - GET  /games/{gameID}/hints                    → best move for every player (host)
//   - GET  /games/{gameID}/history                  → recent solves (host)

package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/rummikub/internal/deck"
	"github.com/robalobadob/rummikub/internal/game"
	"github.com/robalobadob/rummikub/internal/history"
	"github.com/robalobadob/rummikub/internal/optimizer"
)

// hintWorkers bounds concurrent solves per hints request.
const hintWorkers = 4

func (s *Server) mountGame(r chi.Router) {
	r.Use(s.requireGame())
	r.Get("/feed", s.handleFeed)

	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(s.handlerTimeout()))
		r.Use(jsonContentType)

		r.Get("/", s.handleSnapshot)
		r.With(requireHost).Post("/players", s.handleAddPlayer)
		r.With(requireHost).Put("/board", s.handleSetBoard)
		r.With(requireSeat).Put("/players/{playerID}/rack", s.handleSetRack)
		r.With(requireSeat).Post("/players/{playerID}/solve", s.handleSolve)
		r.With(requireHost).Get("/hints", s.handleHints)
		r.With(requireHost).Get("/history", s.handleHistory)
	})
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	out := make(map[string]deck.Config)
	for _, name := range deck.PresetNames() {
		out[name], _ = deck.Preset(name)
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"presets": out})
}

type newGameReq struct {
	Preset string       `json:"preset"`
	Deck   *deck.Config `json:"deck"`
}

type newGameRes struct {
	GameID     string `json:"gameId"`
	HostToken  string `json:"hostToken"`
	Candidates int    `json:"candidates"`
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorRes{Error: "bad_json"})
			return
		}
	}
	cfg := deck.Default()
	switch {
	case req.Deck != nil:
		cfg = *req.Deck
	case req.Preset != "":
		var ok bool
		if cfg, ok = deck.Preset(req.Preset); !ok {
			writeJSON(w, http.StatusBadRequest, errorRes{Error: "unknown_preset", Msg: req.Preset})
			return
		}
	default:
		if c, ok := deck.Preset(deck.StandardPreset); ok {
			cfg = c
		}
	}

	u, err := s.universes.Get(cfg)
	if err != nil {
		writeErr(w, err)
		return
	}
	g := game.New("", u)
	if err := s.store.Save(r.Context(), g); err != nil {
		log.Error().Err(err).Msg("save game")
		writeJSON(w, http.StatusInternalServerError, errorRes{Error: "save_failed"})
		return
	}
	tok, err := s.tokens.sign(g.ID, "", roleHost)
	if err != nil {
		writeErr(w, err)
		return
	}
	log.Info().Str("gameId", g.ID).Int("candidates", u.Len()).Msg("game created")
	writeJSON(w, http.StatusCreated, newGameRes{GameID: g.ID, HostToken: tok, Candidates: u.Len()})
}

// table loads the game named in the URL, writing the error response itself.
func (s *Server) table(w http.ResponseWriter, r *http.Request) (*game.Game, bool) {
	g, err := s.store.Get(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		writeErr(w, err)
		return nil, false
	}
	return g, true
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	g, ok := s.table(w, r)
	if !ok {
		return
	}
	_ = json.NewEncoder(w).Encode(g.Snapshot())
}

type addPlayerReq struct {
	Name string `json:"name"`
}

type addPlayerRes struct {
	PlayerID string `json:"playerId"`
	Token    string `json:"token"`
}

func (s *Server) handleAddPlayer(w http.ResponseWriter, r *http.Request) {
	g, ok := s.table(w, r)
	if !ok {
		return
	}
	var req addPlayerReq
	_ = json.NewDecoder(r.Body).Decode(&req)
	p := g.AddPlayer(req.Name)
	tok, err := s.tokens.sign(g.ID, p.ID, rolePlayer)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, addPlayerRes{PlayerID: p.ID, Token: tok})
}

type boardReq struct {
	Groups [][]string `json:"groups"`
}

func (s *Server) handleSetBoard(w http.ResponseWriter, r *http.Request) {
	g, ok := s.table(w, r)
	if !ok {
		return
	}
	var req boardReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorRes{Error: "bad_json"})
		return
	}
	if err := g.SetBoard(req.Groups); err != nil {
		writeErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(g.Snapshot())
}

type rackReq struct {
	Tiles []string `json:"tiles"`
}

func (s *Server) handleSetRack(w http.ResponseWriter, r *http.Request) {
	g, ok := s.table(w, r)
	if !ok {
		return
	}
	var req rackReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorRes{Error: "bad_json"})
		return
	}
	pid := chi.URLParam(r, "playerID")
	if err := g.SetRack(pid, req.Tiles); err != nil {
		writeErr(w, err)
		return
	}
	rack, _ := g.Rack(pid)
	_ = json.NewEncoder(w).Encode(rackReq{Tiles: rack})
}

type solveReq struct {
	Apply bool `json:"apply"`
}

type solveRes struct {
	PlayerID  string              `json:"playerId"`
	Outcome   optimizer.Outcome   `json:"outcome"`
	Value     int                 `json:"value"`
	Moved     []string            `json:"moved"`
	Groupings []game.GroupingView `json:"groupings"`
	Nodes     int                 `json:"nodes"`
	Applied   bool                `json:"applied"`
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	g, ok := s.table(w, r)
	if !ok {
		return
	}
	var req solveReq
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorRes{Error: "bad_json"})
			return
		}
	}
	res, err := s.solve(r.Context(), g, chi.URLParam(r, "playerID"), req.Apply)
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(res)
}

// solve runs one bounded solve, records it, and applies it when asked and possible.
func (s *Server) solve(ctx context.Context, g *game.Game, playerID string, apply bool) (solveRes, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	st, err := g.StateFor(playerID)
	if err != nil {
		return solveRes{}, err
	}
	start := time.Now()
	res, err := s.engine.Solve(ctx, g.Universe(), st)
	if err != nil {
		return solveRes{}, err
	}
	out := toSolveRes(playerID, res)
	s.record(ctx, g.ID, st.Opening, out, time.Since(start))

	if apply && res.Outcome == optimizer.Success {
		if err := g.Apply(playerID, res); err != nil {
			return out, err
		}
		out.Applied = true
	}
	return out, nil
}

func toSolveRes(playerID string, res optimizer.Result) solveRes {
	out := solveRes{
		PlayerID:  playerID,
		Outcome:   res.Outcome,
		Value:     res.Value,
		Moved:     make([]string, len(res.MovedTiles)),
		Groupings: make([]game.GroupingView, len(res.Groupings)),
		Nodes:     res.Nodes,
	}
	for i, t := range res.MovedTiles {
		out.Moved[i] = t.Name()
	}
	for i, gr := range res.Groupings {
		out.Groupings[i] = game.GroupingView{Kind: gr.Kind, Tiles: gr.Names()}
	}
	return out
}

// record stores a solve in the history, logging instead of failing.
func (s *Server) record(ctx context.Context, gameID string, opening bool, res solveRes, took time.Duration) {
	if s.history == nil {
		return
	}
	rec := history.Record{
		GameID:    gameID,
		PlayerID:  res.PlayerID,
		Opening:   opening,
		Outcome:   res.Outcome.String(),
		Value:     res.Value,
		Moved:     res.Moved,
		Nodes:     res.Nodes,
		ElapsedMs: took.Milliseconds(),
	}
	for _, gr := range res.Groupings {
		rec.Groupings = append(rec.Groupings, gr.Tiles)
	}
	if _, err := s.history.Insert(context.WithoutCancel(ctx), rec); err != nil {
		log.Warn().Err(err).Str("gameId", gameID).Msg("record solve")
	}
}

// handleHints solves for every seated player concurrently without applying.
func (s *Server) handleHints(w http.ResponseWriter, r *http.Request) {
	g, ok := s.table(w, r)
	if !ok {
		return
	}
	ids := g.PlayerIDs()
	out := make([]solveRes, len(ids))
	eg, ctx := errgroup.WithContext(r.Context())
	eg.SetLimit(hintWorkers)
	for i, id := range ids {
		eg.Go(func() error {
			res, err := s.solve(ctx, g, id, false)
			if err != nil {
				return err
			}
			out[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		writeErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"hints": out})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	g, ok := s.table(w, r)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	out := []history.Record{}
	if s.history != nil {
		recs, err := s.history.ByGame(r.Context(), g.ID, limit)
		if err != nil {
			log.Error().Err(err).Str("gameId", g.ID).Msg("load history")
			writeJSON(w, http.StatusInternalServerError, errorRes{Error: "db_error"})
			return
		}
		out = append(out, recs...)
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"history": out})
}
