// internal/httpserver/routes_rooms.go
//
// Room lifecycle + gameplay mutation handlers. Every mutation runs inside
// store.Update so concurrent actions serialize per room; handlers decode
// the request, call one engine operation, and ship the redacted snapshot
// back. Games that reach the ended phase are archived best-effort.

package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/signullgame/server/internal/archive"
	"github.com/signullgame/server/internal/game"
	"github.com/signullgame/server/internal/names"
	"github.com/signullgame/server/internal/store"
)

// createRoomAttempts bounds room-code generation retries on collision.
const createRoomAttempts = 5

// ---------------------------- room lifecycle -------------------------------

type createRoomReq struct {
	Name     string         `json:"name"`
	Passcode string         `json:"passcode"`
	Settings *game.Settings `json:"settings"`
}
type createRoomRes struct {
	Code     string     `json:"code"`
	PlayerID string     `json:"playerId"`
	Token    string     `json:"token"`
	Room     *game.Room `json:"room"`
}

// handleCreateRoom creates a room with the caller as host and setter.
func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomReq
	_ = json.NewDecoder(r.Body).Decode(&req)

	var passcodeHash []byte
	if req.Passcode != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(req.Passcode), bcrypt.DefaultCost)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "INTERNAL"})
			return
		}
		passcodeHash = h
	}

	creator := &game.Player{ID: game.NewPlayerID(), Name: displayName(req.Name)}

	var room *game.Room
	for i := 0; i < createRoomAttempts; i++ {
		room = game.NewRoom(game.NewRoomCode(), creator, passcodeHash, time.Now())
		if req.Settings != nil {
			if err := room.UpdateSettings(creator.ID, *req.Settings); err != nil {
				writeError(w, err)
				return
			}
		}
		err := s.store.Create(r.Context(), room)
		if err == nil {
			break
		}
		if err != store.ErrExists || i == createRoomAttempts-1 {
			writeError(w, err)
			return
		}
	}

	token, err := s.signSession(creator.ID, room.Code)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "INTERNAL"})
		return
	}
	setSessionCookie(w, token)
	writeJSON(w, http.StatusCreated, createRoomRes{
		Code:     room.Code,
		PlayerID: creator.ID,
		Token:    token,
		Room:     viewFor(room, creator.ID),
	})
}

type joinRoomReq struct {
	Name     string `json:"name"`
	Passcode string `json:"passcode"`
}
type joinRoomRes struct {
	PlayerID string     `json:"playerId"`
	Token    string     `json:"token"`
	Room     *game.Room `json:"room"`
}

// handleJoinRoom adds a player as a guesser. Private rooms check the
// passcode against the stored bcrypt hash before the join is applied.
func (s *Server) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	var req joinRoomReq
	_ = json.NewDecoder(r.Body).Decode(&req)

	p := &game.Player{ID: game.NewPlayerID(), Name: displayName(req.Name)}
	room, err := s.store.Update(r.Context(), roomCodeParam(r), func(rm *game.Room) error {
		if len(rm.PasscodeHash) > 0 {
			if req.Passcode == "" {
				return game.ErrPasscodeRequired()
			}
			if bcrypt.CompareHashAndPassword(rm.PasscodeHash, []byte(req.Passcode)) != nil {
				return game.ErrInvalidPasscode()
			}
		}
		return rm.Join(p, time.Now())
	})
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := s.signSession(p.ID, room.Code)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "INTERNAL"})
		return
	}
	setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, joinRoomRes{PlayerID: p.ID, Token: token, Room: viewFor(room, p.ID)})
}

// handleLeaveRoom removes the caller. An emptied room is deleted outright.
func (s *Server) handleLeaveRoom(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	room, err := s.store.Update(r.Context(), roomCodeParam(r), func(rm *game.Room) error {
		return rm.Leave(sess.PlayerID)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if room.Empty() {
		if err := s.store.Delete(r.Context(), room.Code); err != nil && err != store.ErrNotFound {
			log.Warn().Err(err).Str("room", room.Code).Msg("delete empty room")
		}
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleGetRoom returns a snapshot redacted for the caller (or a spectator).
func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := s.store.Get(r.Context(), roomCodeParam(r))
	if err != nil {
		writeError(w, err)
		return
	}
	viewer := ""
	if sess := currentSession(r); sess != nil && sess.RoomCode == room.Code {
		viewer = sess.PlayerID
	}
	writeJSON(w, http.StatusOK, map[string]*game.Room{"room": viewFor(room, viewer)})
}

// ------------------------------ gameplay -----------------------------------

// mutate runs one engine operation inside store.Update and writes the
// caller's redacted snapshot on success.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, op func(*game.Room, *session) error) *game.Room {
	sess := currentSession(r)
	room, err := s.store.Update(r.Context(), roomCodeParam(r), func(rm *game.Room) error {
		return op(rm, sess)
	})
	if err != nil {
		writeError(w, err)
		return nil
	}
	writeJSON(w, http.StatusOK, map[string]*game.Room{"room": viewFor(room, sess.PlayerID)})
	return room
}

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(rm *game.Room, sess *session) error {
		return rm.StartGame(sess.PlayerID)
	})
}

type setWordReq struct {
	Word string `json:"word"`
}

func (s *Server) handleSetWord(w http.ResponseWriter, r *http.Request) {
	var req setWordReq
	_ = json.NewDecoder(r.Body).Decode(&req)
	s.mutate(w, r, func(rm *game.Room, sess *session) error {
		return rm.SetSecretWord(sess.PlayerID, req.Word)
	})
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req game.Settings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "BAD_JSON"})
		return
	}
	s.mutate(w, r, func(rm *game.Room, sess *session) error {
		return rm.UpdateSettings(sess.PlayerID, req)
	})
}

type changeSetterReq struct {
	PlayerID string `json:"playerId"`
}

func (s *Server) handleChangeSetter(w http.ResponseWriter, r *http.Request) {
	var req changeSetterReq
	_ = json.NewDecoder(r.Body).Decode(&req)
	s.mutate(w, r, func(rm *game.Room, sess *session) error {
		return rm.ChangeSetter(sess.PlayerID, req.PlayerID)
	})
}

type createSignullReq struct {
	Word string `json:"word"`
	Clue string `json:"clue"`
}
type createSignullRes struct {
	SignullID string     `json:"signullId"`
	Room      *game.Room `json:"room"`
}

func (s *Server) handleCreateSignull(w http.ResponseWriter, r *http.Request) {
	var req createSignullReq
	_ = json.NewDecoder(r.Body).Decode(&req)

	sess := currentSession(r)
	var id string
	room, err := s.store.Update(r.Context(), roomCodeParam(r), func(rm *game.Room) error {
		var err error
		id, err = rm.CreateSignull(sess.PlayerID, req.Word, req.Clue, time.Now())
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createSignullRes{SignullID: id, Room: viewFor(room, sess.PlayerID)})
}

type connectReq struct {
	SignullID string `json:"signullId"`
	Guess     string `json:"guess"`
}

func (s *Server) handleSubmitConnect(w http.ResponseWriter, r *http.Request) {
	var req connectReq
	_ = json.NewDecoder(r.Body).Decode(&req)
	room := s.mutate(w, r, func(rm *game.Room, sess *session) error {
		return rm.SubmitConnect(sess.PlayerID, req.SignullID, req.Guess, time.Now())
	})
	s.recordIfEnded(r.Context(), room)
}

type directGuessReq struct {
	Guess string `json:"guess"`
}

func (s *Server) handleDirectGuess(w http.ResponseWriter, r *http.Request) {
	var req directGuessReq
	_ = json.NewDecoder(r.Body).Decode(&req)
	room := s.mutate(w, r, func(rm *game.Room, sess *session) error {
		return rm.SubmitDirectGuess(sess.PlayerID, req.Guess)
	})
	s.recordIfEnded(r.Context(), room)
}

func (s *Server) handlePlayAgain(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(rm *game.Room, sess *session) error {
		return rm.PlayAgain(sess.PlayerID)
	})
}

type backToLobbyReq struct {
	ResetScores bool `json:"resetScores"`
}

func (s *Server) handleBackToLobby(w http.ResponseWriter, r *http.Request) {
	var req backToLobbyReq
	_ = json.NewDecoder(r.Body).Decode(&req)
	s.mutate(w, r, func(rm *game.Room, sess *session) error {
		return rm.BackToLobby(sess.PlayerID, req.ResetScores)
	})
}

// recordIfEnded archives a finished game. Only connect and direct-guess can
// move a room into the ended phase, and both error once it is there, so a
// committed ended snapshot from those handlers is the transition itself.
func (s *Server) recordIfEnded(ctx context.Context, room *game.Room) {
	if s.archive == nil || room == nil || room.Phase != game.PhaseEnded {
		return
	}
	if err := s.archive.RecordGame(ctx, room, time.Now()); err != nil {
		log.Warn().Err(err).Str("room", room.Code).Msg("archive finished game")
	}
}

// ------------------------------- history -----------------------------------

// handleLeaderboard returns the daily score leaderboard.
// Query params: date=YYYY-MM-DD (default today UTC), limit (default 20).
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = archiveToday()
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := parsePositive(v); err == nil {
			limit = n
		}
	}
	rows, err := s.archive.DailyLeaderboard(r.Context(), date, limit)
	if err != nil {
		log.Error().Err(err).Str("date", date).Msg("leaderboard query")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "INTERNAL"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": date, "rows": rows})
}

// handlePlayerStats returns lifetime stats for one player id.
func (s *Server) handlePlayerStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.archive.Stats(r.Context(), chi.URLParam(r, "playerId"))
	if err != nil {
		if err == archive.ErrNotFound {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": string(game.CodePlayerNotFound)})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "INTERNAL"})
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// ------------------------------- helpers -----------------------------------

// maxNameLength caps player display names.
const maxNameLength = 24

// displayName trims and bounds the requested name, generating one when absent.
func displayName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return names.Random()
	}
	if len(name) > maxNameLength {
		name = strings.TrimSpace(name[:maxNameLength])
	}
	return name
}

// archiveToday is the leaderboard default date (UTC).
func archiveToday() string { return archive.DateKey(time.Now()) }

// parsePositive parses a positive integer query value.
func parsePositive(v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, strconv.ErrRange
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
