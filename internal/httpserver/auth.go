package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
)

const (
	roleHost   = "host"
	rolePlayer = "player"
)

// claims scope a token to one table and, for players, one seat.
type claims struct {
	GameID   string `json:"gid"`
	PlayerID string `json:"pid,omitempty"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type tokens struct {
	secret []byte
	ttl    time.Duration
}

func (t tokens) sign(gameID, playerID, role string) (string, error) {
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		GameID:   gameID,
		PlayerID: playerID,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
	return tok.SignedString(t.secret)
}

func (t tokens) parse(s string) (*claims, error) {
	c := new(claims)
	tok, err := jwt.ParseWithClaims(s, c, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !tok.Valid || c.GameID == "" {
		return nil, errors.New("invalid token")
	}
	return c, nil
}

// bearerOrQuery reads "Authorization: Bearer <token>", falling back to the
// token query parameter browsers must use for websockets.
func bearerOrQuery(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	return r.URL.Query().Get("token")
}

// ctxClaimsKey is the context key type for storing claims.
type ctxClaimsKey struct{}

// requireGame enforces a valid token for the table named in the URL.
func (s *Server) requireGame() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := bearerOrQuery(r)
			if tok == "" {
				writeJSON(w, http.StatusUnauthorized, errorRes{Error: "unauthorized"})
				return
			}
			c, err := s.tokens.parse(tok)
			if err != nil || c.GameID != chi.URLParam(r, "gameID") {
				writeJSON(w, http.StatusUnauthorized, errorRes{Error: "invalid_token"})
				return
			}
			ctx := context.WithValue(r.Context(), ctxClaimsKey{}, c)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requireHost rejects player tokens.
func requireHost(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c := claimsFrom(r.Context()); c == nil || c.Role != roleHost {
			writeJSON(w, http.StatusForbidden, errorRes{Error: "host_only"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireSeat admits the host or the player named by {playerID}.
func requireSeat(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := claimsFrom(r.Context())
		if c == nil || !c.canActFor(chi.URLParam(r, "playerID")) {
			writeJSON(w, http.StatusForbidden, errorRes{Error: "forbidden"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (c *claims) canActFor(playerID string) bool {
	return c.Role == roleHost || (c.Role == rolePlayer && c.PlayerID == playerID)
}

func claimsFrom(ctx context.Context) *claims {
	c, _ := ctx.Value(ctxClaimsKey{}).(*claims)
	return c
}
