// internal/httpserver/server.go
//
// HTTP server wiring for the signull backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", POST /rooms, POST /rooms/{code}/join.
//   - Room mutation endpoints (require a room session): word, start, settings,
//     setter, signulls, connects, direct-guess, play-again, back-to-lobby, leave.
//   - Snapshot endpoints: GET /rooms/{code} and the /ws live feed.
//   - Archive endpoints: /leaderboard, /stats/{playerId}.
//   - Mapping of engine error codes to HTTP statuses.
//
// Notes:
//   - CORS is origin‑aware and credentials‑enabled (so cookies work).
//   - All mutations go through store.Update; handlers never hold room state.
//   - Snapshots are redacted per viewer before they leave the process.

package httpserver

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/signullgame/server/internal/archive"
	"github.com/signullgame/server/internal/game"
	"github.com/signullgame/server/internal/store"
)

// Server bundles router, room store, archive, and the session signing key.
type Server struct {
	r       *chi.Mux
	store   store.Store
	archive *archive.Store // nil disables history endpoints and recording
	secret  []byte
}

// New constructs a Server, installs middleware, and registers routes.
// arch may be nil when the server runs without a database.
func New(st store.Store, arch *archive.Store) *Server {
	s := &Server{
		r:       chi.NewRouter(),
		store:   st,
		archive: arch,
		secret:  []byte(getEnv("JWT_SECRET", "dev_secret_change_me")),
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer) // recover from panics
	s.r.Use(jsonContentType) // default JSON responses
	s.r.Use(corsFromEnv)     // credentials-friendly CORS

	// The snapshot feed is long-lived, so it stays off the timeout chain.
	s.r.Get("/rooms/{code}/ws", s.handleRoomWS) // token checked during upgrade

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second)) // bound handler time

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"service":"signull-go","endpoints":["/health","POST /rooms","POST /rooms/{code}/join","GET /rooms/{code}","GET /rooms/{code}/ws"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"ok":true}`))
		})

		// Room lifecycle: creating or joining issues the session used by the rest.
		r.Post("/rooms", s.handleCreateRoom)
		r.Post("/rooms/{code}/join", s.handleJoinRoom)

		// Snapshot: OPTIONAL session (spectators get the redacted guest view).
		r.With(s.withOptionalSession).Get("/rooms/{code}", s.handleGetRoom)

		// Mutations require a session bound to {code}.
		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)
			r.Post("/rooms/{code}/leave", s.handleLeaveRoom)
			r.Post("/rooms/{code}/word", s.handleSetWord)
			r.Post("/rooms/{code}/start", s.handleStartGame)
			r.Post("/rooms/{code}/settings", s.handleUpdateSettings)
			r.Post("/rooms/{code}/setter", s.handleChangeSetter)
			r.Post("/rooms/{code}/signulls", s.handleCreateSignull)
			r.Post("/rooms/{code}/connects", s.handleSubmitConnect)
			r.Post("/rooms/{code}/direct-guess", s.handleDirectGuess)
			r.Post("/rooms/{code}/play-again", s.handlePlayAgain)
			r.Post("/rooms/{code}/back-to-lobby", s.handleBackToLobby)
		})

		// History endpoints are only available when a database is wired in.
		if arch != nil {
			r.Get("/leaderboard", s.handleLeaderboard)
			r.Get("/stats/{playerId}", s.handlePlayerStats)
		}
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

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

// corsFromEnv enables credentialed CORS for a single origin.
// Uses CLIENT_ORIGIN env var; defaults to http://localhost:5173.
func corsFromEnv(next http.Handler) http.Handler {
	origin := os.Getenv("CLIENT_ORIGIN")
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ---------------------------- error mapping --------------------------------

// statusForCode maps engine error codes to HTTP statuses. Unknown codes
// fall through to 400 so new engine errors fail loudly but safely.
func statusForCode(code game.Code) int {
	switch code {
	case game.CodeRoomNotFound, game.CodePlayerNotFound, game.CodeSignullNotFound:
		return http.StatusNotFound
	case game.CodeNotSetter, game.CodeNotGuesser, game.CodeOnlyGuesserCanCreate,
		game.CodeOnlyHostChangeSetter, game.CodeOnlyHost,
		game.CodeCannotConnectOwn, game.CodeInvalidPasscode:
		return http.StatusForbidden
	case game.CodePasscodeRequired:
		return http.StatusUnauthorized
	case game.CodeRoomFull, game.CodeInvalidPhase, game.CodeSignullNotPending,
		game.CodeAlreadyConnected, game.CodeNoGuessesLeft, game.CodeNotEnoughPlayers:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// writeError renders any error as the JSON error envelope. Engine errors
// carry their code; store sentinels get mapped; everything else is a 500.
func writeError(w http.ResponseWriter, err error) {
	var ge *game.Error
	if errors.As(err, &ge) {
		writeJSON(w, statusForCode(ge.Code), errBody(ge))
		return
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": string(game.CodeRoomNotFound)})
	case errors.Is(err, store.ErrExists):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "ROOM_EXISTS"})
	case errors.Is(err, store.ErrConflict):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "CONFLICT"})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "INTERNAL"})
	}
}

func errBody(ge *game.Error) map[string]string {
	body := map[string]string{"error": string(ge.Code)}
	if ge.Message != "" {
		body["message"] = ge.Message
	}
	if ge.Prefix != "" {
		body["prefix"] = ge.Prefix
	}
	return body
}

// ------------------------------- small util --------------------------------

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// roomCodeParam extracts the normalized {code} URL parameter.
func roomCodeParam(r *http.Request) string {
	return game.NormalizeWord(chi.URLParam(r, "code"))
}
