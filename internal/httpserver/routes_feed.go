// internal/httpserver/routes_feed.go
//
// Recognition feed: a websocket the tile-recognition collaborator uses to push
// rack and board contents and to request solves.
//
// Envelope: {"t": <type>, "reqId": <echoed>, "p": <payload>}
//   inbound   rack  {playerId, tiles}   board {groups}   solve {playerId, apply}
//   outbound  ok    {}                  result <solve result>   err {code, msg}
//
// Messages of one connection are handled in order. Only host tokens may connect.

package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/rummikub/internal/game"
)

const (
	feedReadLimit  = 64 << 10
	feedPongWait   = 120 * time.Second
	feedPingPeriod = 30 * time.Second
	feedWriteWait  = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type feedMsg struct {
	T     string          `json:"t"`
	ReqID string          `json:"reqId,omitempty"`
	P     json.RawMessage `json:"p,omitempty"`
}

type feedRack struct {
	PlayerID string   `json:"playerId"`
	Tiles    []string `json:"tiles"`
}

type feedSolve struct {
	PlayerID string `json:"playerId"`
	Apply    bool   `json:"apply"`
}

type feedErr struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	if c := claimsFrom(r.Context()); c == nil || c.Role != roleHost {
		writeJSON(w, http.StatusForbidden, errorRes{Error: "host_only"})
		return
	}
	g, ok := s.table(w, r)
	if !ok {
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("feed upgrade")
		return
	}
	log.Info().Str("gameId", g.ID).Str("remote", conn.RemoteAddr().String()).Msg("feed connected")

	send := make(chan feedMsg, 16)
	done := make(chan struct{})
	go writePump(conn, send, done)
	s.readPump(r.Context(), conn, g, send, done)
	<-done
}

// readPump handles inbound messages until the connection drops or the writer
// gives up, then closes send.
func (s *Server) readPump(ctx context.Context, conn *websocket.Conn, g *game.Game, send chan<- feedMsg, done <-chan struct{}) {
	defer close(send)
	conn.SetReadLimit(feedReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(feedPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(feedPongWait))
	})

	for {
		var in feedMsg
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("gameId", g.ID).Msg("feed read")
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(feedPongWait))
		select {
		case send <- s.dispatch(ctx, g, in):
		case <-done:
			return
		}
	}
}

// writePump drains send until it is closed or a write fails. done is closed on exit.
func writePump(conn *websocket.Conn, send <-chan feedMsg, done chan<- struct{}) {
	ticker := time.NewTicker(feedPingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
		close(done)
	}()
	for {
		select {
		case msg, ok := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				log.Warn().Err(err).Msg("feed write")
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// dispatch applies one inbound message and builds the reply.
func (s *Server) dispatch(ctx context.Context, g *game.Game, in feedMsg) feedMsg {
	reply := func(t string, p any) feedMsg {
		b, _ := json.Marshal(p)
		return feedMsg{T: t, ReqID: in.ReqID, P: b}
	}
	fail := func(err error) feedMsg {
		code, _ := errorCode(err)
		return reply("err", feedErr{Code: code, Msg: err.Error()})
	}
	badPayload := func(err error) feedMsg {
		return reply("err", feedErr{Code: "bad_json", Msg: err.Error()})
	}

	switch in.T {
	case "rack":
		var p feedRack
		if err := json.Unmarshal(in.P, &p); err != nil {
			return badPayload(err)
		}
		if err := g.SetRack(p.PlayerID, p.Tiles); err != nil {
			return fail(err)
		}
		return reply("ok", struct{}{})
	case "board":
		var p boardReq
		if err := json.Unmarshal(in.P, &p); err != nil {
			return badPayload(err)
		}
		if err := g.SetBoard(p.Groups); err != nil {
			return fail(err)
		}
		return reply("ok", struct{}{})
	case "solve":
		var p feedSolve
		if err := json.Unmarshal(in.P, &p); err != nil {
			return badPayload(err)
		}
		res, err := s.solve(ctx, g, p.PlayerID, p.Apply)
		if err != nil {
			return fail(err)
		}
		return reply("result", res)
	case "ping":
		return reply("pong", struct{}{})
	}
	return reply("err", feedErr{Code: "unknown_type", Msg: in.T})
}
