// internal/httpserver/server.go
//
// HTTP server wiring for the rummikub move optimizer.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/presets", POST /games.
//   - Table endpoints under /games/{gameID}, gated by host/player tokens.
//   - Recognition feed websocket at /games/{gameID}/feed (mounted outside the
//     handler timeout, since the connection is long-lived).
//
// Notes:
//   - Candidate universes are shared between tables with the same deck through
//     an explicitly owned universe.Cache.
//   - Solve history is best effort: a failed insert is logged, never returned.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/rummikub/internal/deck"
	"github.com/robalobadob/rummikub/internal/game"
	"github.com/robalobadob/rummikub/internal/grouping"
	"github.com/robalobadob/rummikub/internal/history"
	"github.com/robalobadob/rummikub/internal/optimizer"
	"github.com/robalobadob/rummikub/internal/store"
	"github.com/robalobadob/rummikub/internal/universe"
)

// Options configures a Server. History may be nil.
type Options struct {
	Store        store.Store
	History      *history.Store
	Engine       *optimizer.Engine
	JWTSecret    string
	JWTExpires   time.Duration
	ClientOrigin string
	SolveTimeout time.Duration
}

// Server bundles router, table store, universe cache and solve engine.
type Server struct {
	r         *chi.Mux
	store     store.Store
	history   *history.Store
	universes *universe.Cache
	engine    *optimizer.Engine
	tokens    tokens
	origin    string
	timeout   time.Duration
}

// New constructs a Server, installs middleware, and registers routes.
func New(opts Options) *Server {
	if opts.Engine == nil {
		opts.Engine = optimizer.New(optimizer.DefaultConfig())
	}
	if opts.SolveTimeout <= 0 {
		opts.SolveTimeout = 10 * time.Second
	}
	if opts.JWTExpires <= 0 {
		opts.JWTExpires = 24 * time.Hour
	}
	if opts.ClientOrigin == "" {
		opts.ClientOrigin = "*"
	}
	s := &Server{
		r:         chi.NewRouter(),
		store:     opts.Store,
		history:   opts.History,
		universes: universe.NewCache(),
		engine:    opts.Engine,
		tokens:    tokens{secret: []byte(opts.JWTSecret), ttl: opts.JWTExpires},
		origin:    opts.ClientOrigin,
		timeout:   opts.SolveTimeout,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer) // recover from panics
	s.r.Use(s.cors)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(s.handlerTimeout()))
		r.Use(jsonContentType)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"service":"rummikub-go","endpoints":["/health","/presets","POST /games","/games/{gameID}/*"]}`))
		})
		r.Get("/health", s.handleHealth)
		r.Get("/presets", s.handlePresets)
		r.Post("/games", s.handleNewGame)
	})
	s.r.Route("/games/{gameID}", s.mountGame)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})
	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

type healthRes struct {
	OK        bool `json:"ok"`
	Games     int  `json:"games"`
	Universes int  `json:"universes"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.IDs(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, healthRes{OK: true, Games: len(ids), Universes: s.universes.Len()})
}

// handlerTimeout leaves room for a full solve plus encoding.
func (s *Server) handlerTimeout() time.Duration { return s.timeout + 5*time.Second }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors allows a single configured origin ("*" for any).
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", s.origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ responses ----------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorRes struct {
	Error string `json:"error"`
	Msg   string `json:"msg,omitempty"`
}

// errorCode maps domain errors to a stable code and HTTP status.
func errorCode(err error) (string, int) {
	switch {
	case errors.Is(err, deck.ErrUnknownTile):
		return "unknown_tile", http.StatusBadRequest
	case errors.Is(err, deck.ErrTooManyCopies):
		return "too_many_copies", http.StatusBadRequest
	case errors.Is(err, deck.ErrConfig):
		return "bad_deck", http.StatusBadRequest
	case errors.Is(err, grouping.ErrMalformed):
		return "malformed_grouping", http.StatusBadRequest
	case errors.Is(err, optimizer.ErrState):
		return "bad_state", http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return "not_found", http.StatusNotFound
	case errors.Is(err, game.ErrPlayerNotFound):
		return "player_not_found", http.StatusNotFound
	case errors.Is(err, game.ErrStale):
		return "stale_result", http.StatusConflict
	case errors.Is(err, game.ErrNotApplicable):
		return "not_a_move", http.StatusConflict
	}
	return "internal", http.StatusInternalServerError
}

func writeErr(w http.ResponseWriter, err error) {
	code, status := errorCode(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
		writeJSON(w, status, errorRes{Error: code})
		return
	}
	writeJSON(w, status, errorRes{Error: code, Msg: err.Error()})
}
