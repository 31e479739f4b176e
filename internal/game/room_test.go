package game

import (
	"testing"
	"time"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// newTestRoom builds a room with a setter ("setter") and n guessers named
// g1..gn, already joined in order.
func newTestRoom(t *testing.T, guessers int) *Room {
	t.Helper()
	r := NewRoom("ABCDE", &Player{ID: "setter", Name: "Sam"}, nil, t0)
	for i := 1; i <= guessers; i++ {
		id := "g" + string(rune('0'+i))
		p := &Player{ID: id, Name: "Player " + id}
		if err := r.Join(p, t0.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("join %s: %v", id, err)
		}
	}
	return r
}

// startSignulls drives a room into the signulls phase with the given word.
func startSignulls(t *testing.T, r *Room, word string) {
	t.Helper()
	if err := r.StartGame("setter"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := r.SetSecretWord("setter", word); err != nil {
		t.Fatalf("set word: %v", err)
	}
}

// checkScoresMatchEvents asserts the score == sum(events) invariant.
func checkScoresMatchEvents(t *testing.T, r *Room) {
	t.Helper()
	sums := map[string]int{}
	for _, ev := range r.ScoreEvents {
		sums[ev.PlayerID] += ev.Delta
	}
	for id, p := range r.Players {
		if p.Score != sums[id] {
			t.Fatalf("player %s score %d != event sum %d", id, p.Score, sums[id])
		}
	}
}

func TestNewRoomRoles(t *testing.T) {
	r := newTestRoom(t, 2)
	if r.Phase != PhaseLobby {
		t.Fatalf("phase = %s, want lobby", r.Phase)
	}
	if r.HostID != "setter" || r.SetterID != "setter" {
		t.Fatalf("creator should be host and setter, got host=%s setter=%s", r.HostID, r.SetterID)
	}
	if r.Players["setter"].Role != RoleSetter {
		t.Fatalf("creator role = %s", r.Players["setter"].Role)
	}
	for _, id := range []string{"g1", "g2"} {
		if r.Players[id].Role != RoleGuesser {
			t.Fatalf("%s role = %s, want guesser", id, r.Players[id].Role)
		}
	}
}

func TestJoinPhaseGuards(t *testing.T) {
	r := newTestRoom(t, 2)
	startSignulls(t, r, "OXYGEN")

	err := r.Join(&Player{ID: "late"}, t0.Add(time.Minute))
	if !IsCode(err, CodeInvalidPhase) {
		t.Fatalf("join during signulls: got %v, want INVALID_PHASE", err)
	}
}

func TestJoinDuringSetting(t *testing.T) {
	r := newTestRoom(t, 1)
	if err := r.StartGame("setter"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := r.Join(&Player{ID: "late"}, t0.Add(time.Minute)); err != nil {
		t.Fatalf("join during setting: %v", err)
	}
}

func TestJoinRoomFull(t *testing.T) {
	r := newTestRoom(t, 7) // 8 players total with the setter
	err := r.Join(&Player{ID: "extra"}, t0.Add(time.Minute))
	if !IsCode(err, CodeRoomFull) {
		t.Fatalf("got %v, want ROOM_FULL", err)
	}
}

func TestLeaveLobbyRemovesPlayer(t *testing.T) {
	r := newTestRoom(t, 2)
	if err := r.Leave("g1"); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if _, ok := r.Players["g1"]; ok {
		t.Fatal("g1 should be removed in lobby")
	}
}

func TestLeaveMidGameMarksOffline(t *testing.T) {
	r := newTestRoom(t, 2)
	startSignulls(t, r, "OXYGEN")
	if err := r.Leave("g1"); err != nil {
		t.Fatalf("leave: %v", err)
	}
	p, ok := r.Players["g1"]
	if !ok {
		t.Fatal("g1 should remain in the room mid-game")
	}
	if p.Online {
		t.Fatal("g1 should be offline")
	}
}

func TestHostSuccession(t *testing.T) {
	r := newTestRoom(t, 2)
	if err := r.Leave("setter"); err != nil {
		t.Fatalf("leave: %v", err)
	}
	// g1 joined before g2, so the host seat passes to g1.
	if r.HostID != "g1" {
		t.Fatalf("host = %s, want g1", r.HostID)
	}
}

func TestEmpty(t *testing.T) {
	r := newTestRoom(t, 1)
	if r.Empty() {
		t.Fatal("room with players should not be empty")
	}
	_ = r.Leave("g1")
	_ = r.Leave("setter")
	if !r.Empty() {
		t.Fatal("lobby with everyone gone should be empty")
	}
}

func TestNormalizeWord(t *testing.T) {
	for _, tc := range []struct{ in, want string }{
		{"  oxygen ", "OXYGEN"},
		{"Oxygen", "OXYGEN"},
		{"OXYGEN", "OXYGEN"},
	} {
		if got := NormalizeWord(tc.in); got != tc.want {
			t.Fatalf("NormalizeWord(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
