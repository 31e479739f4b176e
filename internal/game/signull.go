// internal/game/signull.go
//
// Signull lifecycle: creation, connect accumulation, and resolution.
//
// Resolution runs after every connect, in fixed precedence:
//   1. block   : a correct setter connect intercepts the signull.
//   2. success : correct guesser connects reached the threshold.
//   3. failure : every eligible guesser tried and the threshold was
//                 never reached.
//   4. otherwise the entry stays pending.
//
// A resolved outcome marks every other still-pending entry in the same
// stage inactive, so at most one signull per stage ever completes a
// letter reveal. That invalidation happens in the same mutation as the
// resolving connect; the store commits them atomically.

package game

import (
	"strings"
	"time"
)

// CreateSignull records a new challenge and returns its id.
func (r *Room) CreateSignull(creatorID, word, clue string, now time.Time) (string, error) {
	p, err := r.player(creatorID)
	if err != nil {
		return "", err
	}
	if p.Role != RoleGuesser {
		return "", errCode(CodeOnlyGuesserCanCreate, "only guessers can create signulls")
	}
	if r.Phase != PhaseSignulls {
		return "", errCode(CodeInvalidPhase, "signulls can only be created during play")
	}
	w := NormalizeWord(word)
	if !wordPattern.MatchString(w) {
		return "", errCode(CodeInvalidWordFormat, "signull word must be letters only")
	}
	if r.Settings.PrefixMode {
		if prefix := r.RevealedPrefix(); prefix != "" && !strings.HasPrefix(w, prefix) {
			return "", errPrefixMismatch(prefix)
		}
	}

	entry := &SignullEntry{
		ID:        NewSignullID(now),
		CreatorID: creatorID,
		Word:      w,
		Clue:      strings.TrimSpace(clue),
		IsFinal:   w == r.SecretWord,
		Status:    StatusPending,
		Stage:     r.RevealedCount,
		CreatedAt: now,
	}
	r.Signulls.Entries[entry.ID] = entry
	r.Signulls.appendToStage(entry.Stage, entry.ID)
	r.pointTo(entry.ID)
	return entry.ID, nil
}

// SubmitConnect appends a guess attempt to a signull and evaluates the
// resolution rules. An empty signullID targets the round-robin pointer;
// free mode always requires an explicit id.
func (r *Room) SubmitConnect(actorID, signullID, guess string, now time.Time) error {
	actor, err := r.player(actorID)
	if err != nil {
		return err
	}
	if r.Phase != PhaseSignulls {
		return errCode(CodeInvalidPhase, "connects only during signulls")
	}

	if signullID == "" {
		if r.Settings.PlayMode != ModeRoundRobin {
			return errCode(CodeSignullIDRequired, "free mode requires an explicit signull id")
		}
		if r.Signulls.ActiveID == "" {
			return errCode(CodeNoActiveSignull, "no pending signull to connect to")
		}
		signullID = r.Signulls.ActiveID
	}

	entry := r.Signulls.Entry(signullID)
	if entry == nil {
		return errCode(CodeSignullNotFound, "signull %s not found", signullID)
	}
	if entry.Status != StatusPending {
		return errCode(CodeSignullNotPending, "signull %s is %s", signullID, entry.Status)
	}
	if actorID == entry.CreatorID {
		return errCode(CodeCannotConnectOwn, "cannot connect to your own signull")
	}
	if actor.Role != RoleSetter && entry.hasConnectFrom(actorID) {
		return errCode(CodeAlreadyConnected, "already connected to signull %s", signullID)
	}

	g := NormalizeWord(guess)
	entry.Connects = append(entry.Connects, SignullConnect{
		PlayerID: actorID,
		Guess:    g,
		Correct:  g == entry.Word,
		At:       now,
	})
	r.resolveAfterConnect(entry, actor, g == entry.Word, now)
	return nil
}

// resolveAfterConnect applies the fixed resolution precedence to an entry
// that just received a connect.
func (r *Room) resolveAfterConnect(entry *SignullEntry, actor *Player, correct bool, now time.Time) {
	// Rule 1: setter intercept. No reveal, no game end.
	if actor.Role == RoleSetter && correct {
		entry.close(StatusBlocked, now)
		r.applyScore(scoreIntercept(r, entry, now))
		r.advancePointer()
		return
	}

	// Rule 2: enough correct guesser connects.
	if len(r.correctGuesserIDs(entry)) >= r.Settings.ConnectsRequired {
		entry.close(StatusResolved, now)
		r.applyScore(scoreResolved(r, entry, now))
		if entry.IsFinal {
			// Lightning hit: bonuses computed against the reveal count at
			// resolution time, then the game ends with no further reveal.
			r.applyScore(scoreLightning(r, entry, now))
			r.invalidateStage(entry)
			r.advancePointer()
			r.endGame(WinnerGuessers)
			return
		}
		r.RevealedCount++
		r.invalidateStage(entry)
		r.advancePointer()
		if r.RevealedCount >= len(r.SecretWord) {
			r.endGame(WinnerGuessers)
		}
		return
	}

	// Rule 3: all eligible guessers tried without reaching the threshold.
	if r.allEligibleGuessersConnected(entry) {
		entry.close(StatusFailed, now)
		if entry.IsFinal {
			r.applyScore(scoreLightning(r, entry, now))
			r.advancePointer()
			r.endGame(WinnerSetter)
			return
		}
		r.advancePointer()
		return
	}

	// Rule 4: still pending.
}

// invalidateStage marks every other still-pending entry in the resolved
// entry's stage inactive (terminal, non-scoring).
func (r *Room) invalidateStage(resolved *SignullEntry) {
	for i := range r.Signulls.Order {
		if r.Signulls.Order[i].Stage != resolved.Stage {
			continue
		}
		for _, id := range r.Signulls.Order[i].IDs {
			if id == resolved.ID {
				continue
			}
			if e := r.Signulls.Entry(id); e != nil && e.Status == StatusPending {
				e.Status = StatusInactive
			}
		}
	}
}

// allEligibleGuessersConnected reports whether every guesser other than the
// entry's creator has submitted a connect.
func (r *Room) allEligibleGuessersConnected(entry *SignullEntry) bool {
	for _, p := range r.Guessers() {
		if p.ID == entry.CreatorID {
			continue
		}
		if !entry.hasConnectFrom(p.ID) {
			return false
		}
	}
	return true
}

// hasConnectFrom reports whether the player already has a connect recorded.
func (e *SignullEntry) hasConnectFrom(playerID string) bool {
	for _, c := range e.Connects {
		if c.PlayerID == playerID {
			return true
		}
	}
	return false
}

// close moves the entry to a terminal status and stamps the resolution.
func (e *SignullEntry) close(s SignullStatus, now time.Time) {
	e.Status = s
	t := now
	e.ResolvedAt = &t
}
