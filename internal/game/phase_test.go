package game

import (
	"testing"
)

func TestStartGameGuards(t *testing.T) {
	t.Run("only host", func(t *testing.T) {
		r := newTestRoom(t, 2)
		if err := r.StartGame("g1"); !IsCode(err, CodeOnlyHost) {
			t.Fatalf("got %v, want ONLY_HOST", err)
		}
	})
	t.Run("needs two players", func(t *testing.T) {
		r := newTestRoom(t, 0)
		if err := r.StartGame("setter"); !IsCode(err, CodeNotEnoughPlayers) {
			t.Fatalf("got %v, want NOT_ENOUGH_PLAYERS", err)
		}
	})
	t.Run("lobby only", func(t *testing.T) {
		r := newTestRoom(t, 2)
		if err := r.StartGame("setter"); err != nil {
			t.Fatalf("start: %v", err)
		}
		if err := r.StartGame("setter"); !IsCode(err, CodeInvalidPhase) {
			t.Fatalf("got %v, want INVALID_PHASE", err)
		}
	})
}

func TestSetSecretWord(t *testing.T) {
	r := newTestRoom(t, 2)
	if err := r.StartGame("setter"); err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := r.SetSecretWord("g1", "OXYGEN"); !IsCode(err, CodeNotSetter) {
		t.Fatalf("guesser set word: got %v, want NOT_SETTER", err)
	}
	if err := r.SetSecretWord("setter", "not a word"); !IsCode(err, CodeInvalidWordFormat) {
		t.Fatalf("bad word: got %v, want INVALID_WORD_FORMAT", err)
	}
	if err := r.SetSecretWord("setter", " oxygen "); err != nil {
		t.Fatalf("set word: %v", err)
	}

	if r.Phase != PhaseSignulls {
		t.Fatalf("phase = %s, want signulls", r.Phase)
	}
	if r.SecretWord != "OXYGEN" {
		t.Fatalf("secret = %q", r.SecretWord)
	}
	if r.RevealedCount != 0 {
		t.Fatalf("revealedCount = %d, want 0", r.RevealedCount)
	}
	if r.DirectGuessesLeft != r.Settings.DirectGuessBudget {
		t.Fatalf("directGuessesLeft = %d, want %d", r.DirectGuessesLeft, r.Settings.DirectGuessBudget)
	}
}

func TestSetSecretWordSkipsExplicitStart(t *testing.T) {
	// The setter may set the word straight from the lobby.
	r := newTestRoom(t, 2)
	if err := r.SetSecretWord("setter", "OXYGEN"); err != nil {
		t.Fatalf("set word from lobby: %v", err)
	}
	if r.Phase != PhaseSignulls {
		t.Fatalf("phase = %s, want signulls", r.Phase)
	}
}

func TestChangeSetter(t *testing.T) {
	r := newTestRoom(t, 2)
	if err := r.StartGame("setter"); err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := r.ChangeSetter("g1", "g2"); !IsCode(err, CodeOnlyHostChangeSetter) {
		t.Fatalf("got %v, want ONLY_HOST_CAN_CHANGE_SETTER", err)
	}
	if err := r.ChangeSetter("setter", "g1"); err != nil {
		t.Fatalf("change setter: %v", err)
	}
	if r.SetterID != "g1" {
		t.Fatalf("setter = %s, want g1", r.SetterID)
	}
	if r.Players["g1"].Role != RoleSetter {
		t.Fatalf("g1 role = %s", r.Players["g1"].Role)
	}
	if r.Players["setter"].Role != RoleGuesser {
		t.Fatalf("old setter role = %s", r.Players["setter"].Role)
	}
}

func TestUpdateSettingsValidation(t *testing.T) {
	base := DefaultSettings()
	for name, mutate := range map[string]func(*Settings){
		"bad play mode":     func(s *Settings) { s.PlayMode = "turbo" },
		"zero connects":     func(s *Settings) { s.ConnectsRequired = 0 },
		"max below current": func(s *Settings) { s.MaxPlayers = 1 },
		"zero budget":       func(s *Settings) { s.DirectGuessBudget = 0 },
	} {
		t.Run(name, func(t *testing.T) {
			r := newTestRoom(t, 2)
			s := base
			mutate(&s)
			if err := r.UpdateSettings("setter", s); !IsCode(err, CodeInvalidSettings) {
				t.Fatalf("got %v, want INVALID_SETTINGS", err)
			}
		})
	}

	t.Run("frozen mid-game", func(t *testing.T) {
		r := newTestRoom(t, 2)
		startSignulls(t, r, "OXYGEN")
		if err := r.UpdateSettings("setter", base); !IsCode(err, CodeInvalidPhase) {
			t.Fatalf("got %v, want INVALID_PHASE", err)
		}
	})
}

func TestDirectGuessWins(t *testing.T) {
	r := newTestRoom(t, 2)
	startSignulls(t, r, "OXYGEN")

	if err := r.SubmitDirectGuess("g1", "oxygen"); err != nil {
		t.Fatalf("direct guess: %v", err)
	}
	if r.Phase != PhaseEnded || r.Winner != WinnerGuessers {
		t.Fatalf("phase=%s winner=%s, want ended/guessers", r.Phase, r.Winner)
	}
	if len(r.ScoreEvents) != 0 {
		t.Fatalf("direct guesses must not score, got %d events", len(r.ScoreEvents))
	}
	if r.DirectGuessesLeft != r.Settings.DirectGuessBudget-1 {
		t.Fatalf("directGuessesLeft = %d", r.DirectGuessesLeft)
	}
}

func TestDirectGuessExhaustion(t *testing.T) {
	r := newTestRoom(t, 2)
	startSignulls(t, r, "OXYGEN")

	for i := 0; i < r.Settings.DirectGuessBudget; i++ {
		if err := r.SubmitDirectGuess("g1", "WRONG"); err != nil {
			t.Fatalf("guess %d: %v", i, err)
		}
	}
	if r.Phase != PhaseEnded || r.Winner != WinnerSetter {
		t.Fatalf("phase=%s winner=%s, want ended/setter", r.Phase, r.Winner)
	}
	// Further guesses fail on phase, not budget, since the game is over.
	if err := r.SubmitDirectGuess("g2", "WRONG"); !IsCode(err, CodeInvalidPhase) {
		t.Fatalf("got %v, want INVALID_PHASE", err)
	}
}

func TestDirectGuessGuards(t *testing.T) {
	r := newTestRoom(t, 2)
	startSignulls(t, r, "OXYGEN")

	if err := r.SubmitDirectGuess("setter", "OXYGEN"); !IsCode(err, CodeNotGuesser) {
		t.Fatalf("setter direct guess: got %v, want NOT_GUESSER", err)
	}
	r.DirectGuessesLeft = 0
	if err := r.SubmitDirectGuess("g1", "OXYGEN"); !IsCode(err, CodeNoGuessesLeft) {
		t.Fatalf("got %v, want NO_GUESSES_LEFT", err)
	}
}

func TestPlayAgainKeepsScores(t *testing.T) {
	r := newTestRoom(t, 2)
	startSignulls(t, r, "OXYGEN")
	r.Players["g1"].Score = 15
	r.ScoreEvents = append(r.ScoreEvents, ScoreEvent{PlayerID: "g1", Delta: 15, Reason: ReasonSignullResolved})
	_ = r.SubmitDirectGuess("g1", "OXYGEN")

	if err := r.PlayAgain("g2"); err != nil {
		t.Fatalf("playAgain: %v", err)
	}
	if r.Phase != PhaseSetting {
		t.Fatalf("phase = %s, want setting", r.Phase)
	}
	if r.SecretWord != "" || r.Winner != WinnerNone || len(r.Signulls.Entries) != 0 {
		t.Fatal("round state should be cleared")
	}
	if r.Players["g1"].Score != 15 || len(r.ScoreEvents) != 1 {
		t.Fatal("scores and events must survive playAgain")
	}
	if r.SetterID != "setter" {
		t.Fatalf("setter = %s, want unchanged", r.SetterID)
	}
}

func TestBackToLobbyResetScores(t *testing.T) {
	r := newTestRoom(t, 2)
	startSignulls(t, r, "OXYGEN")
	r.Players["g1"].Score = 15
	r.ScoreEvents = append(r.ScoreEvents, ScoreEvent{PlayerID: "g1", Delta: 15, Reason: ReasonSignullResolved})

	if err := r.BackToLobby("setter", true); err != nil {
		t.Fatalf("backToLobby: %v", err)
	}
	if r.Phase != PhaseLobby {
		t.Fatalf("phase = %s, want lobby", r.Phase)
	}
	if r.Players["g1"].Score != 0 || len(r.ScoreEvents) != 0 {
		t.Fatal("resetScores must clear scores and events together")
	}
	checkScoresMatchEvents(t, r)
}

func TestBackToLobbyFromLobbyRejected(t *testing.T) {
	r := newTestRoom(t, 2)
	if err := r.BackToLobby("setter", false); !IsCode(err, CodeInvalidPhase) {
		t.Fatalf("got %v, want INVALID_PHASE", err)
	}
}
