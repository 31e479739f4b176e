// internal/game/room.go
//
// Room lifecycle: creation, joining, leaving, and the shared actor/word
// lookup helpers the other operations build on.
// Role rules: the creating player is host and the initial setter; everyone
// joining later is a guesser. Exactly one setter exists at all times.

package game

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

var wordPattern = regexp.MustCompile(`^[A-Z]+$`)

// NormalizeWord trims and uppercases a word for storage and comparison.
func NormalizeWord(w string) string {
	return strings.ToUpper(strings.TrimSpace(w))
}

// NewRoom creates an empty lobby with its creator as host and setter.
func NewRoom(code string, creator *Player, passcodeHash []byte, now time.Time) *Room {
	creator.Role = RoleSetter
	creator.Online = true
	creator.JoinedAt = now
	return &Room{
		Code:         code,
		Phase:        PhaseLobby,
		Players:      map[string]*Player{creator.ID: creator},
		HostID:       creator.ID,
		SetterID:     creator.ID,
		Signulls:     NewLedger(),
		Settings:     DefaultSettings(),
		PasscodeHash: passcodeHash,
		CreatedAt:    now,
	}
}

// Join adds a guesser to the lobby. Joining is only legal before the
// secret word is set.
func (r *Room) Join(p *Player, now time.Time) error {
	switch r.Phase {
	case PhaseLobby, PhaseSetting:
	default:
		return errCode(CodeInvalidPhase, "cannot join during %s", r.Phase)
	}
	if len(r.Players) >= r.Settings.MaxPlayers {
		return errCode(CodeRoomFull, "room %s is full (%d players)", r.Code, len(r.Players))
	}
	p.Role = RoleGuesser
	p.Online = true
	p.JoinedAt = now
	r.Players[p.ID] = p
	return nil
}

// Leave removes a player from a lobby, or marks them offline mid-game so
// their scores and signull history survive. The host seat passes to the
// longest-joined online player when the host goes.
func (r *Room) Leave(actorID string) error {
	p, err := r.player(actorID)
	if err != nil {
		return err
	}
	if r.Phase == PhaseLobby {
		delete(r.Players, actorID)
	} else {
		p.Online = false
	}
	if r.HostID == actorID {
		r.HostID = ""
		for _, cand := range r.playersByJoinOrder() {
			if cand.ID != actorID && cand.Online {
				r.HostID = cand.ID
				break
			}
		}
	}
	return nil
}

// Empty reports whether no players remain (lobby) or nobody is online.
func (r *Room) Empty() bool {
	for _, p := range r.Players {
		if r.Phase == PhaseLobby || p.Online {
			return false
		}
	}
	return true
}

// player resolves an actor id or fails with PLAYER_NOT_FOUND.
func (r *Room) player(id string) (*Player, error) {
	p, ok := r.Players[id]
	if !ok {
		return nil, errCode(CodePlayerNotFound, "player %s is not in room %s", id, r.Code)
	}
	return p, nil
}

// playersByJoinOrder returns players sorted by join time then id, giving a
// deterministic order for host succession and views.
func (r *Room) playersByJoinOrder() []*Player {
	out := make([]*Player, 0, len(r.Players))
	for _, p := range r.Players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].JoinedAt.Before(out[j].JoinedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// PlayersByJoinOrder is the exported form used by views and the archive.
func (r *Room) PlayersByJoinOrder() []*Player { return r.playersByJoinOrder() }
