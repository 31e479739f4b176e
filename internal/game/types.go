// internal/game/types.go
//
// Core type definitions for the signull rules engine.
// Defines:
//   - Phase: room-level state machine states.
//   - Role, PlayMode, Winner, SignullStatus: closed string enums.
//   - Room: the single mutable aggregate per game room.
//   - Player, SignullEntry, SignullConnect, ScoreEvent, Insight.
//
// The engine is pure: every mutation is a method on *Room that either
// applies fully or returns a coded error, leaving the aggregate untouched.
// Persistence and broadcast live behind the store package.

package game

import "time"

// Phase is the room-level state machine state.
type Phase string

const (
	PhaseLobby    Phase = "lobby"    // players joining, settings editable
	PhaseSetting  Phase = "setting"  // setter choosing the secret word
	PhaseSignulls Phase = "signulls" // main play: signulls and connects
	PhaseEnded    Phase = "ended"    // winner decided, insights published
)

// Role distinguishes the single setter from everyone else.
type Role string

const (
	RoleSetter  Role = "setter"
	RoleGuesser Role = "guesser"
)

// PlayMode selects the turn-ordering discipline.
type PlayMode string

const (
	ModeRoundRobin PlayMode = "round_robin" // one rotating pointer over signulls
	ModeFree       PlayMode = "free"        // any pending signull targetable by id
)

// Winner is set once the room reaches PhaseEnded.
type Winner string

const (
	WinnerNone     Winner = ""
	WinnerGuessers Winner = "guessers"
	WinnerSetter   Winner = "setter"
)

// SignullStatus is terminal once it leaves pending.
type SignullStatus string

const (
	StatusPending  SignullStatus = "pending"
	StatusResolved SignullStatus = "resolved" // enough correct guesser connects
	StatusFailed   SignullStatus = "failed"   // all eligible guessers tried, threshold missed
	StatusBlocked  SignullStatus = "blocked"  // setter intercepted
	StatusInactive SignullStatus = "inactive" // sibling in the same stage resolved first
)

// IsTerminal reports whether the status can no longer change.
func (s SignullStatus) IsTerminal() bool { return s != StatusPending }

// Settings are host-editable while the room is in the lobby or setting phase.
type Settings struct {
	PlayMode          PlayMode `json:"playMode"`
	ConnectsRequired  int      `json:"connectsRequired"`
	PrefixMode        bool     `json:"prefixMode"`
	MaxPlayers        int      `json:"maxPlayers"`
	DirectGuessBudget int      `json:"directGuessBudget"`
}

// DefaultSettings returns the settings a fresh room starts with.
func DefaultSettings() Settings {
	return Settings{
		PlayMode:          ModeRoundRobin,
		ConnectsRequired:  2,
		PrefixMode:        true,
		MaxPlayers:        8,
		DirectGuessBudget: 3,
	}
}

// Player is one participant. Score always equals the sum of this player's
// ScoreEvent deltas in Room.ScoreEvents.
type Player struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Role     Role      `json:"role"`
	Online   bool      `json:"online"`
	Score    int       `json:"score"`
	JoinedAt time.Time `json:"joinedAt"`
}

// SignullConnect is one attempt to guess a signull's reference word.
type SignullConnect struct {
	PlayerID string    `json:"playerId"`
	Guess    string    `json:"guess"` // normalized uppercase
	Correct  bool      `json:"correct"`
	At       time.Time `json:"at"`
}

// SignullEntry is a guesser-issued challenge: a reference word plus a clue.
type SignullEntry struct {
	ID         string           `json:"id"`
	CreatorID  string           `json:"creatorId"`
	Word       string           `json:"word"` // uppercase
	Clue       string           `json:"clue"`
	Connects   []SignullConnect `json:"connects"`
	IsFinal    bool             `json:"isFinal"` // word == secret word at creation time
	Status     SignullStatus    `json:"status"`
	Stage      int              `json:"stage"` // revealedCount at creation, never updated
	CreatedAt  time.Time        `json:"createdAt"`
	ResolvedAt *time.Time       `json:"resolvedAt,omitempty"`
}

// StageGroup holds signull ids created at one stage, in creation order.
// The ledger iterates groups by ascending stage, then insertion order, so
// the flattened ordering is deterministic (never map-key enumeration).
type StageGroup struct {
	Stage int      `json:"stage"`
	IDs   []string `json:"ids"`
}

// Ledger owns signull entries, their stage-grouped ordering, and the
// round-robin pointer (empty string when cleared or in free mode).
type Ledger struct {
	Order    []StageGroup             `json:"order"`
	Entries  map[string]*SignullEntry `json:"entries"`
	ActiveID string                   `json:"activeId,omitempty"`
}

// NewLedger returns an empty ledger.
func NewLedger() Ledger {
	return Ledger{Entries: make(map[string]*SignullEntry)}
}

// ScoreEvent is one append-only audit entry explaining a score change.
type ScoreEvent struct {
	PlayerID string            `json:"playerId"`
	Delta    int               `json:"delta"`
	Reason   ScoreReason       `json:"reason"`
	At       time.Time         `json:"at"`
	Details  map[string]string `json:"details,omitempty"`
}

// ScoreReason tags why a delta was awarded.
type ScoreReason string

const (
	ReasonIntercept       ScoreReason = "intercept"
	ReasonSignullResolved ScoreReason = "signull_resolved"
	ReasonCorrectConnect  ScoreReason = "correct_connect"
	ReasonLightningBonus  ScoreReason = "lightning_bonus"
	ReasonSetterConceded  ScoreReason = "setter_conceded_letters"
)

// InsightType tags one of the five post-game highlight rules.
type InsightType string

const (
	InsightDynamicDuo    InsightType = "dynamic_duo"
	InsightOGInterceptor InsightType = "og_interceptor"
	InsightMachine       InsightType = "signull_machine"
	InsightKnowsItAll    InsightType = "knows_it_all"
	InsightLongestWord   InsightType = "longest_word_vibe"
)

// Insight is a human-readable highlight computed once at game end.
type Insight struct {
	ID        string         `json:"id"`
	Type      InsightType    `json:"type"`
	PlayerIDs []string       `json:"playerIds"`
	Title     string         `json:"title"`
	Subtitle  string         `json:"subtitle"`
	Metadata  map[string]int `json:"metadata,omitempty"`
}

// Room is the aggregate root: one per game room, mutated only through the
// engine's operations inside a store transaction.
type Room struct {
	Code              string             `json:"code"`
	Phase             Phase              `json:"phase"`
	Players           map[string]*Player `json:"players"`
	HostID            string             `json:"hostId"`
	SetterID          string             `json:"setterId"`
	SecretWord        string             `json:"secretWord"` // uppercase, empty until set
	RevealedCount     int                `json:"revealedCount"`
	Signulls          Ledger             `json:"signulls"`
	DirectGuessesLeft int                `json:"directGuessesLeft"`
	Winner            Winner             `json:"winner"`
	Settings          Settings           `json:"settings"`
	ScoreEvents       []ScoreEvent       `json:"scoreEvents"`
	Insights          []Insight          `json:"insights,omitempty"`

	// Private rooms carry a bcrypt passcode hash; never exposed in views.
	PasscodeHash []byte `json:"passcodeHash,omitempty"`

	// Maintained by the store: optimistic-concurrency version and the
	// monotonic snapshot stamp subscribers key on.
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a deep copy of the room. The store hands copies to mutation
// functions and subscribers so no caller can alias committed state.
func (r *Room) Clone() *Room {
	cp := *r

	cp.Players = make(map[string]*Player, len(r.Players))
	for id, p := range r.Players {
		pc := *p
		cp.Players[id] = &pc
	}

	cp.Signulls = Ledger{
		Order:    make([]StageGroup, len(r.Signulls.Order)),
		Entries:  make(map[string]*SignullEntry, len(r.Signulls.Entries)),
		ActiveID: r.Signulls.ActiveID,
	}
	for i, grp := range r.Signulls.Order {
		cp.Signulls.Order[i] = StageGroup{Stage: grp.Stage, IDs: append([]string(nil), grp.IDs...)}
	}
	for id, e := range r.Signulls.Entries {
		ec := *e
		ec.Connects = append([]SignullConnect(nil), e.Connects...)
		if e.ResolvedAt != nil {
			t := *e.ResolvedAt
			ec.ResolvedAt = &t
		}
		cp.Signulls.Entries[id] = &ec
	}

	cp.ScoreEvents = make([]ScoreEvent, len(r.ScoreEvents))
	for i, ev := range r.ScoreEvents {
		cp.ScoreEvents[i] = ev
		if ev.Details != nil {
			d := make(map[string]string, len(ev.Details))
			for k, v := range ev.Details {
				d[k] = v
			}
			cp.ScoreEvents[i].Details = d
		}
	}

	cp.Insights = make([]Insight, len(r.Insights))
	for i, in := range r.Insights {
		cp.Insights[i] = in
		cp.Insights[i].PlayerIDs = append([]string(nil), in.PlayerIDs...)
		if in.Metadata != nil {
			m := make(map[string]int, len(in.Metadata))
			for k, v := range in.Metadata {
				m[k] = v
			}
			cp.Insights[i].Metadata = m
		}
	}

	cp.PasscodeHash = append([]byte(nil), r.PasscodeHash...)
	return &cp
}

// RevealedPrefix returns the currently revealed prefix of the secret word.
func (r *Room) RevealedPrefix() string {
	if r.RevealedCount <= 0 || r.SecretWord == "" {
		return ""
	}
	n := r.RevealedCount
	if n > len(r.SecretWord) {
		n = len(r.SecretWord)
	}
	return r.SecretWord[:n]
}

// Guessers returns all players with the guesser role.
func (r *Room) Guessers() []*Player {
	var out []*Player
	for _, p := range r.Players {
		if p.Role == RoleGuesser {
			out = append(out, p)
		}
	}
	return out
}

// Entry looks up a signull by id; nil if absent.
func (l *Ledger) Entry(id string) *SignullEntry {
	return l.Entries[id]
}

// Flatten returns all signull ids by ascending stage then creation order.
func (l *Ledger) Flatten() []string {
	var out []string
	for _, grp := range l.Order {
		out = append(out, grp.IDs...)
	}
	return out
}

// appendToStage records an id under its stage group, creating the group if
// this is the stage's first entry. Groups stay sorted because stages only
// grow (revealedCount is monotonic within a round).
func (l *Ledger) appendToStage(stage int, id string) {
	for i := range l.Order {
		if l.Order[i].Stage == stage {
			l.Order[i].IDs = append(l.Order[i].IDs, id)
			return
		}
	}
	l.Order = append(l.Order, StageGroup{Stage: stage, IDs: []string{id}})
}
