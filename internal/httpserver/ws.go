// internal/httpserver/ws.go
//
// Live room feed. Clients connect to GET /rooms/{code}/ws and receive the
// full redacted snapshot after every committed mutation. The feed is
// snapshot-only: clients never send game actions over the socket (those go
// through the HTTP mutation endpoints), so inbound frames are drained just
// to notice disconnects.

package httpserver

import (
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/signullgame/server/internal/game"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Same single-origin policy as corsFromEnv, including its default, so
	// the upgrade never admits origins the HTTP surface would refuse.
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // non-browser client
		}
		allowed := os.Getenv("CLIENT_ORIGIN")
		if allowed == "" {
			allowed = "http://localhost:5173"
		}
		return origin == allowed
	},
}

// handleRoomWS upgrades the connection and streams room snapshots. The
// session token comes from the usual header/cookie or a ?token= query
// param (browsers cannot set headers on WebSocket dials). Spectators
// without a token get the guest-redacted view.
func (s *Server) handleRoomWS(w http.ResponseWriter, r *http.Request) {
	code := roomCodeParam(r)

	viewer := ""
	tok := bearerOrCookie(r)
	if tok == "" {
		tok = r.URL.Query().Get("token")
	}
	if sess, ok := s.parseSession(tok); ok && sess.RoomCode == code {
		viewer = sess.PlayerID
	}

	// Reject unknown rooms before committing to the upgrade.
	room, err := s.store.Get(r.Context(), code)
	if err != nil {
		writeError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Str("room", code).Msg("ws upgrade")
		return
	}
	defer conn.Close()

	updates, cancel := s.store.Subscribe(code)
	defer cancel()

	// Drain inbound frames so control messages are processed and closes
	// are noticed; any read error tears the connection down.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := writeSnapshot(conn, room, viewer); err != nil {
		return
	}

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case room, ok := <-updates:
			if !ok {
				// Room deleted; say goodbye cleanly.
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "room closed"),
					time.Now().Add(wsWriteWait))
				return
			}
			if err := writeSnapshot(conn, room, viewer); err != nil {
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}

func writeSnapshot(conn *websocket.Conn, room *game.Room, viewer string) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(map[string]*game.Room{"room": viewFor(room, viewer)})
}
