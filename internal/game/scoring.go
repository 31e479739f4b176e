// internal/game/scoring.go
//
// Scoring: deterministic pure functions from a game event to per-player
// deltas, plus the single apply step that keeps Player.Score reconciled
// with the append-only ScoreEvents log.
//
// Canonical rule set:
//   - intercept (setter blocks a signull):        setter +5
//   - signull resolved:                           creator +10, each correct
//                                                 guesser connect +5
//   - lightning resolved or failed:               creator and correct
//                                                 connectors +5 × remaining
//                                                 unrevealed letters
//   - lightning resolved only:                    setter +5 × revealed
//                                                 letters conceded
//   - direct guesses and generic game end:        no score change
//
// Earlier revisions of these rules awarded points for direct guesses; that
// behavior is intentionally absent here.

package game

import (
	"strconv"
	"time"
)

const (
	interceptPoints       = 5
	resolveCreatorPoints  = 10
	correctConnectPoints  = 5
	lightningLetterPoints = 5
)

// scoreIntercept credits the setter for blocking a signull.
func scoreIntercept(r *Room, e *SignullEntry, now time.Time) []ScoreEvent {
	return []ScoreEvent{{
		PlayerID: r.SetterID,
		Delta:    interceptPoints,
		Reason:   ReasonIntercept,
		At:       now,
		Details:  map[string]string{"signullId": e.ID, "word": e.Word},
	}}
}

// scoreResolved credits the creator and every correctly-connected guesser.
func scoreResolved(r *Room, e *SignullEntry, now time.Time) []ScoreEvent {
	events := []ScoreEvent{{
		PlayerID: e.CreatorID,
		Delta:    resolveCreatorPoints,
		Reason:   ReasonSignullResolved,
		At:       now,
		Details:  map[string]string{"signullId": e.ID},
	}}
	for _, pid := range r.correctGuesserIDs(e) {
		events = append(events, ScoreEvent{
			PlayerID: pid,
			Delta:    correctConnectPoints,
			Reason:   ReasonCorrectConnect,
			At:       now,
			Details:  map[string]string{"signullId": e.ID},
		})
	}
	return events
}

// scoreLightning awards the remaining-letter bonus when a lightning signull
// reaches a terminal resolved or failed state, and the conceded-letter
// reward to the setter when it resolved.
func scoreLightning(r *Room, e *SignullEntry, now time.Time) []ScoreEvent {
	remaining := len(r.SecretWord) - r.RevealedCount
	if remaining < 0 {
		remaining = 0
	}
	bonus := lightningLetterPoints * remaining
	var events []ScoreEvent
	if bonus > 0 {
		details := map[string]string{
			"signullId": e.ID,
			"remaining": strconv.Itoa(remaining),
		}
		events = append(events, ScoreEvent{
			PlayerID: e.CreatorID,
			Delta:    bonus,
			Reason:   ReasonLightningBonus,
			At:       now,
			Details:  details,
		})
		for _, pid := range r.correctGuesserIDs(e) {
			events = append(events, ScoreEvent{
				PlayerID: pid,
				Delta:    bonus,
				Reason:   ReasonLightningBonus,
				At:       now,
				Details:  details,
			})
		}
	}
	if e.Status == StatusResolved && r.RevealedCount > 0 {
		events = append(events, ScoreEvent{
			PlayerID: r.SetterID,
			Delta:    lightningLetterPoints * r.RevealedCount,
			Reason:   ReasonSetterConceded,
			At:       now,
			Details: map[string]string{
				"signullId": e.ID,
				"revealed":  strconv.Itoa(r.RevealedCount),
			},
		})
	}
	return events
}

// correctGuesserIDs lists guessers with a correct connect on the entry, in
// connect order. Setter attempts never earn connect credit.
func (r *Room) correctGuesserIDs(e *SignullEntry) []string {
	var out []string
	for _, c := range e.Connects {
		if c.Correct && c.PlayerID != r.SetterID && c.PlayerID != e.CreatorID && !containsID(out, c.PlayerID) {
			out = append(out, c.PlayerID)
		}
	}
	return out
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// applyScore applies deltas to player scores and appends the audit events.
// Events for players no longer in the room are still logged but move no
// score.
func (r *Room) applyScore(events []ScoreEvent) {
	for _, ev := range events {
		if p, ok := r.Players[ev.PlayerID]; ok {
			p.Score += ev.Delta
		}
		r.ScoreEvents = append(r.ScoreEvents, ev)
	}
}
