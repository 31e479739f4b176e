// internal/httpserver/session.go
//
// Per-player room sessions. Joining or creating a room issues an HS256
// JWT binding (playerId, roomCode); every mutation endpoint requires it,
// from the Authorization header or the session cookie. Tokens are scoped
// to one room: a token for ABCDE cannot act in FGHJK.

package httpserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const sessionCookieName = "signull_session"

// sessionTTL bounds how long an issued room session stays valid.
const sessionTTL = 24 * time.Hour

// session is the authenticated actor placed in the request context.
type session struct {
	PlayerID string
	RoomCode string
}

type ctxSessionKey struct{}

// signSession mints a room-scoped session token.
func (s *Server) signSession(playerID, roomCode string) (string, error) {
	exp := time.Now().Add(sessionTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"pid":  playerID,
		"room": roomCode,
		"exp":  exp.Unix(),
		"iat":  time.Now().Unix(),
	})
	return t.SignedString(s.secret)
}

// parseSession validates a token and extracts the actor.
func (s *Server) parseSession(tokenStr string) (*session, bool) {
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !t.Valid {
		return nil, false
	}
	pid, _ := claims["pid"].(string)
	room, _ := claims["room"].(string)
	if pid == "" || room == "" {
		return nil, false
	}
	return &session{PlayerID: pid, RoomCode: room}, true
}

// setSessionCookie stores the token alongside the JSON response so browser
// clients can skip the Authorization header.
func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(sessionTTL),
	})
}

// bearerOrCookie extracts a token from Authorization: Bearer or the cookie.
func bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(sessionCookieName); err == nil {
		return c.Value
	}
	return ""
}

// requireSession enforces a valid session matching the {code} URL param.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.parseSession(bearerOrCookie(r))
		if !ok {
			http.Error(w, `{"error":"UNAUTHORIZED"}`, http.StatusUnauthorized)
			return
		}
		if code := roomCodeParam(r); code != "" && code != sess.RoomCode {
			http.Error(w, `{"error":"UNAUTHORIZED"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxSessionKey{}, sess)))
	})
}

// withOptionalSession decorates the request when a valid token is present;
// guests still pass. Used for read-only snapshot routes.
func (s *Server) withOptionalSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sess, ok := s.parseSession(bearerOrCookie(r)); ok {
			r = r.WithContext(context.WithValue(r.Context(), ctxSessionKey{}, sess))
		}
		next.ServeHTTP(w, r)
	})
}

// currentSession returns the actor from context, or nil for guests.
func currentSession(r *http.Request) *session {
	sess, _ := r.Context().Value(ctxSessionKey{}).(*session)
	return sess
}
