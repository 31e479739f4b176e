package game

import (
	"errors"
	"testing"
	"time"
)

func mustCreate(t *testing.T, r *Room, creator, word, clue string, at time.Time) string {
	t.Helper()
	id, err := r.CreateSignull(creator, word, clue, at)
	if err != nil {
		t.Fatalf("create signull (%s, %q): %v", creator, word, err)
	}
	return id
}

func mustConnect(t *testing.T, r *Room, actor, signullID, guess string, at time.Time) {
	t.Helper()
	if err := r.SubmitConnect(actor, signullID, guess, at); err != nil {
		t.Fatalf("connect (%s → %s, %q): %v", actor, signullID, guess, err)
	}
}

func TestCreateSignullGuards(t *testing.T) {
	r := newTestRoom(t, 2)
	startSignulls(t, r, "OXYGEN")

	if _, err := r.CreateSignull("setter", "OTTER", "aquatic", t0); !IsCode(err, CodeOnlyGuesserCanCreate) {
		t.Fatalf("got %v, want ONLY_GUESSER_CAN_CREATE", err)
	}
	if _, err := r.CreateSignull("g1", "not a word", "", t0); !IsCode(err, CodeInvalidWordFormat) {
		t.Fatalf("got %v, want INVALID_WORD_FORMAT", err)
	}
}

func TestCreateSignullPrefixMode(t *testing.T) {
	r := newTestRoom(t, 2)
	startSignulls(t, r, "OXYGEN")
	r.RevealedCount = 2 // revealed prefix "OX"

	_, err := r.CreateSignull("g1", "ALPACA", "mountain animal", t0)
	if !IsCode(err, CodeWordPrefixMismatch) {
		t.Fatalf("got %v, want WORD_PREFIX_MISMATCH", err)
	}
	var ge *Error
	if !errors.As(err, &ge) || ge.Prefix != "OX" {
		t.Fatalf("prefix mismatch should carry prefix OX, got %+v", ge)
	}

	if _, err := r.CreateSignull("g1", "OXIDE", "rust stuff", t0); err != nil {
		t.Fatalf("matching prefix rejected: %v", err)
	}
}

func TestCreateSignullStage(t *testing.T) {
	r := newTestRoom(t, 2)
	startSignulls(t, r, "OXYGEN")

	id := mustCreate(t, r, "g1", "OTTER", "aquatic mammal", t0)
	if e := r.Signulls.Entry(id); e.Stage != 0 {
		t.Fatalf("stage = %d, want 0 at game start", e.Stage)
	}

	r.RevealedCount = 3
	id2 := mustCreate(t, r, "g2", "OXYMORON", "contradiction", t0.Add(time.Second))
	if e := r.Signulls.Entry(id2); e.Stage != 3 {
		t.Fatalf("stage = %d, want revealedCount at creation", e.Stage)
	}
}

func TestSetterIntercept(t *testing.T) {
	r := newTestRoom(t, 4)
	startSignulls(t, r, "OXYGEN")

	// One correct and one wrong guesser connect leave the entry pending
	// (g4 is still eligible); the intercept then wins over the live
	// correct connect.
	id := mustCreate(t, r, "g1", "OTTER", "aquatic mammal", t0)
	mustConnect(t, r, "g2", id, "OTTER", t0.Add(time.Second))
	mustConnect(t, r, "g3", id, "OSPREY", t0.Add(2*time.Second))
	if got := r.Signulls.Entry(id).Status; got != StatusPending {
		t.Fatalf("status before intercept = %s, want pending", got)
	}
	mustConnect(t, r, "setter", id, "otter", t0.Add(3*time.Second))

	e := r.Signulls.Entry(id)
	if e.Status != StatusBlocked {
		t.Fatalf("status = %s, want blocked", e.Status)
	}
	if e.ResolvedAt == nil {
		t.Fatal("blocked entry should carry ResolvedAt")
	}
	if r.RevealedCount != 0 {
		t.Fatalf("intercept must not reveal a letter, revealedCount = %d", r.RevealedCount)
	}
	if r.Players["setter"].Score != 5 {
		t.Fatalf("setter score = %d, want 5", r.Players["setter"].Score)
	}
	// A blocked entry pays nobody else, g2's correct connect included.
	for _, g := range []string{"g1", "g2", "g3", "g4"} {
		if got := r.Players[g].Score; got != 0 {
			t.Fatalf("%s score = %d, want 0", g, got)
		}
	}
	if r.Phase != PhaseSignulls {
		t.Fatalf("phase = %s, game must continue", r.Phase)
	}
	checkScoresMatchEvents(t, r)
}

func TestSetterCanRetryConnects(t *testing.T) {
	r := newTestRoom(t, 2)
	startSignulls(t, r, "OXYGEN")

	id := mustCreate(t, r, "g1", "OTTER", "aquatic mammal", t0)
	mustConnect(t, r, "setter", id, "OSPREY", t0.Add(time.Second))
	// A wrong setter guess leaves the entry pending; the setter may try again.
	mustConnect(t, r, "setter", id, "OTTER", t0.Add(2*time.Second))
	if got := r.Signulls.Entry(id).Status; got != StatusBlocked {
		t.Fatalf("status = %s, want blocked after retry", got)
	}
}

func TestResolveAtThreshold(t *testing.T) {
	r := newTestRoom(t, 3)
	startSignulls(t, r, "OXYGEN")

	id := mustCreate(t, r, "g1", "OTTER", "aquatic mammal", t0)
	mustConnect(t, r, "g2", id, "OTTER", t0.Add(time.Second))
	if got := r.Signulls.Entry(id).Status; got != StatusPending {
		t.Fatalf("one correct connect of two: status = %s, want pending", got)
	}
	mustConnect(t, r, "g3", id, "OTTER", t0.Add(2*time.Second))

	e := r.Signulls.Entry(id)
	if e.Status != StatusResolved {
		t.Fatalf("status = %s, want resolved", e.Status)
	}
	if r.RevealedCount != 1 {
		t.Fatalf("revealedCount = %d, want 1", r.RevealedCount)
	}
	if got := r.Players["g1"].Score; got != 10 {
		t.Fatalf("creator score = %d, want 10", got)
	}
	for _, id := range []string{"g2", "g3"} {
		if got := r.Players[id].Score; got != 5 {
			t.Fatalf("%s score = %d, want 5", id, got)
		}
	}
	checkScoresMatchEvents(t, r)
}

func TestResolveInvalidatesSameStage(t *testing.T) {
	r := newTestRoom(t, 3)
	startSignulls(t, r, "OXYGEN")

	a := mustCreate(t, r, "g1", "OTTER", "aquatic mammal", t0)
	b := mustCreate(t, r, "g2", "ORBIT", "around a planet", t0.Add(time.Second))

	mustConnect(t, r, "g2", a, "OTTER", t0.Add(2*time.Second))
	mustConnect(t, r, "g3", a, "OTTER", t0.Add(3*time.Second))

	if got := r.Signulls.Entry(a).Status; got != StatusResolved {
		t.Fatalf("a status = %s, want resolved", got)
	}
	if got := r.Signulls.Entry(b).Status; got != StatusInactive {
		t.Fatalf("sibling status = %s, want inactive", got)
	}
	// Inactive entries cannot take connects.
	if err := r.SubmitConnect("g3", b, "ORBIT", t0.Add(4*time.Second)); !IsCode(err, CodeSignullNotPending) {
		t.Fatalf("got %v, want SIGNULL_NOT_PENDING", err)
	}
	checkScoresMatchEvents(t, r)
}

func TestFailureWhenAllEligibleTried(t *testing.T) {
	r := newTestRoom(t, 3)
	startSignulls(t, r, "OXYGEN")

	id := mustCreate(t, r, "g1", "OTTER", "aquatic mammal", t0)
	mustConnect(t, r, "g2", id, "OSPREY", t0.Add(time.Second))
	mustConnect(t, r, "g3", id, "OCELOT", t0.Add(2*time.Second))

	e := r.Signulls.Entry(id)
	if e.Status != StatusFailed {
		t.Fatalf("status = %s, want failed", e.Status)
	}
	if len(r.ScoreEvents) != 0 {
		t.Fatalf("plain failure must not score, got %d events", len(r.ScoreEvents))
	}
	if r.Phase != PhaseSignulls {
		t.Fatalf("phase = %s, game must continue", r.Phase)
	}
}

func TestAlreadyConnected(t *testing.T) {
	r := newTestRoom(t, 3)
	startSignulls(t, r, "OXYGEN")

	id := mustCreate(t, r, "g1", "OTTER", "aquatic mammal", t0)
	mustConnect(t, r, "g2", id, "OSPREY", t0.Add(time.Second))
	if err := r.SubmitConnect("g2", id, "OTTER", t0.Add(2*time.Second)); !IsCode(err, CodeAlreadyConnected) {
		t.Fatalf("got %v, want ALREADY_CONNECTED", err)
	}
}

func TestCannotConnectOwnSignull(t *testing.T) {
	r := newTestRoom(t, 2)
	startSignulls(t, r, "OXYGEN")

	id := mustCreate(t, r, "g1", "OTTER", "aquatic mammal", t0)
	if err := r.SubmitConnect("g1", id, "OTTER", t0.Add(time.Second)); !IsCode(err, CodeCannotConnectOwn) {
		t.Fatalf("got %v, want CANNOT_CONNECT_OWN_SIGNULL", err)
	}
}

func TestLightningResolved(t *testing.T) {
	r := newTestRoom(t, 3)
	startSignulls(t, r, "OXYGEN")
	r.RevealedCount = 4 // OXYG revealed, two letters to go

	id := mustCreate(t, r, "g1", "OXYGEN", "the thing we breathe", t0)
	if !r.Signulls.Entry(id).IsFinal {
		t.Fatal("matching the secret word should mark the entry final")
	}
	mustConnect(t, r, "g2", id, "OXYGEN", t0.Add(time.Second))
	mustConnect(t, r, "g3", id, "OXYGEN", t0.Add(2*time.Second))

	if r.Phase != PhaseEnded || r.Winner != WinnerGuessers {
		t.Fatalf("phase=%s winner=%s, want ended/guessers", r.Phase, r.Winner)
	}
	if r.RevealedCount != 4 {
		t.Fatalf("lightning must not reveal another letter, revealedCount = %d", r.RevealedCount)
	}
	// creator: 10 resolve + 5×2 lightning; connectors: 5 + 10 each;
	// setter: 5×4 conceded letters.
	if got := r.Players["g1"].Score; got != 20 {
		t.Fatalf("creator score = %d, want 20", got)
	}
	for _, id := range []string{"g2", "g3"} {
		if got := r.Players[id].Score; got != 15 {
			t.Fatalf("%s score = %d, want 15", id, got)
		}
	}
	if got := r.Players["setter"].Score; got != 20 {
		t.Fatalf("setter score = %d, want 20", got)
	}
	checkScoresMatchEvents(t, r)
}

func TestLightningFailed(t *testing.T) {
	r := newTestRoom(t, 3)
	s := DefaultSettings()
	s.ConnectsRequired = 3
	if err := r.UpdateSettings("setter", s); err != nil {
		t.Fatalf("settings: %v", err)
	}
	startSignulls(t, r, "OXYGEN")
	r.RevealedCount = 4

	id := mustCreate(t, r, "g1", "OXYGEN", "the thing we breathe", t0)
	mustConnect(t, r, "g2", id, "OXYGEN", t0.Add(time.Second)) // correct, below threshold
	mustConnect(t, r, "g3", id, "OXFORD", t0.Add(2*time.Second))

	if got := r.Signulls.Entry(id).Status; got != StatusFailed {
		t.Fatalf("status = %s, want failed", got)
	}
	if r.Phase != PhaseEnded || r.Winner != WinnerSetter {
		t.Fatalf("phase=%s winner=%s, want ended/setter", r.Phase, r.Winner)
	}
	// Failed lightning still pays the remaining-letter bonus to the creator
	// and the correct connector, but not the conceded reward to the setter.
	if got := r.Players["g1"].Score; got != 10 {
		t.Fatalf("creator score = %d, want 10", got)
	}
	if got := r.Players["g2"].Score; got != 10 {
		t.Fatalf("g2 score = %d, want 10", got)
	}
	if got := r.Players["setter"].Score; got != 0 {
		t.Fatalf("setter score = %d, want 0", got)
	}
	checkScoresMatchEvents(t, r)
}

func TestFullRevealEndsGame(t *testing.T) {
	r := newTestRoom(t, 3)
	startSignulls(t, r, "OX")
	r.RevealedCount = 1

	id := mustCreate(t, r, "g1", "OXCART", "beast of burden rig", t0)
	mustConnect(t, r, "g2", id, "OXCART", t0.Add(time.Second))
	mustConnect(t, r, "g3", id, "OXCART", t0.Add(2*time.Second))

	if r.RevealedCount != 2 {
		t.Fatalf("revealedCount = %d, want 2", r.RevealedCount)
	}
	if r.Phase != PhaseEnded || r.Winner != WinnerGuessers {
		t.Fatalf("phase=%s winner=%s, want ended/guessers after full reveal", r.Phase, r.Winner)
	}
}
