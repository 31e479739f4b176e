// internal/httpserver/view.go
//
// Per-viewer redaction of room snapshots. The engine keeps full state; a
// snapshot that leaves the process must not leak the secret word to
// guessers or a pending signull word to anyone but its creator.

package httpserver

import (
	"github.com/signullgame/server/internal/game"
)

// viewFor returns a deep copy of the room redacted for the given viewer.
// viewerID may be "" for spectators, who get the most-redacted view.
func viewFor(r *game.Room, viewerID string) *game.Room {
	v := r.Clone()

	// Never ship the passcode hash.
	v.PasscodeHash = nil

	// Guessers and spectators only ever see the revealed prefix. Once the
	// game ends the full word is public.
	if viewerID != v.SetterID && v.Phase != game.PhaseEnded {
		v.SecretWord = v.RevealedPrefix()
	}

	// A pending signull's word is known only to its creator; it becomes
	// public when the signull reaches a terminal status. The lightning flag
	// is hidden for everyone while pending; revealing it would tell the
	// table the creator found the secret word. Guesses stay visible; they
	// are public by nature.
	for _, e := range v.Signulls.Entries {
		if !e.Status.IsTerminal() {
			if e.CreatorID != viewerID {
				e.Word = ""
			}
			e.IsFinal = false
		}
	}
	return v
}
