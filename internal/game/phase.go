// internal/game/phase.go
//
// Phase state machine: lobby → setting → signulls → ended, plus the reset
// transitions (playAgain, backToLobby). Also owns the direct-guess budget.
//
// Transition guards:
//   - startGame: host only, lobby → setting, needs at least two players.
//   - setSecretWord: setter only, lobby|setting → signulls.
//   - changeSetter: host only, setting phase only.
//   - submitDirectGuess: guesser only, signulls phase only; every call
//     burns one guess whether or not it is correct.

package game

const minPlayersToStart = 2

// StartGame moves the lobby into the setting phase.
func (r *Room) StartGame(actorID string) error {
	if _, err := r.player(actorID); err != nil {
		return err
	}
	if actorID != r.HostID {
		return errCode(CodeOnlyHost, "only the host can start the game")
	}
	if r.Phase != PhaseLobby {
		return errCode(CodeInvalidPhase, "cannot start from %s", r.Phase)
	}
	if len(r.Players) < minPlayersToStart {
		return errCode(CodeNotEnoughPlayers, "need at least %d players", minPlayersToStart)
	}
	r.Phase = PhaseSetting
	return nil
}

// SetSecretWord stores the setter's word and opens the signull phase.
// The word must be non-empty uppercase letters after normalization.
func (r *Room) SetSecretWord(actorID, word string) error {
	if _, err := r.player(actorID); err != nil {
		return err
	}
	if actorID != r.SetterID {
		return errCode(CodeNotSetter, "only the setter can set the secret word")
	}
	switch r.Phase {
	case PhaseLobby, PhaseSetting:
	default:
		return errCode(CodeInvalidPhase, "cannot set the word during %s", r.Phase)
	}
	if len(r.Players) < minPlayersToStart {
		return errCode(CodeNotEnoughPlayers, "need at least %d players", minPlayersToStart)
	}
	w := NormalizeWord(word)
	if !wordPattern.MatchString(w) {
		return errCode(CodeInvalidWordFormat, "secret word must be letters only")
	}
	r.SecretWord = w
	r.RevealedCount = 0
	r.DirectGuessesLeft = r.Settings.DirectGuessBudget
	r.Phase = PhaseSignulls
	return nil
}

// ChangeSetter reassigns the setter role while the word is being chosen.
func (r *Room) ChangeSetter(actorID, targetID string) error {
	if _, err := r.player(actorID); err != nil {
		return err
	}
	if actorID != r.HostID {
		return errCode(CodeOnlyHostChangeSetter, "only the host can change the setter")
	}
	if r.Phase != PhaseSetting {
		return errCode(CodeInvalidPhase, "setter can only change during setting")
	}
	target, err := r.player(targetID)
	if err != nil {
		return err
	}
	if old, ok := r.Players[r.SetterID]; ok {
		old.Role = RoleGuesser
	}
	target.Role = RoleSetter
	r.SetterID = target.ID
	return nil
}

// UpdateSettings replaces the room settings before play starts.
func (r *Room) UpdateSettings(actorID string, s Settings) error {
	if _, err := r.player(actorID); err != nil {
		return err
	}
	if actorID != r.HostID {
		return errCode(CodeOnlyHost, "only the host can change settings")
	}
	switch r.Phase {
	case PhaseLobby, PhaseSetting:
	default:
		return errCode(CodeInvalidPhase, "settings are frozen during %s", r.Phase)
	}
	switch s.PlayMode {
	case ModeRoundRobin, ModeFree:
	default:
		return errCode(CodeInvalidSettings, "unknown play mode %q", s.PlayMode)
	}
	if s.ConnectsRequired < 1 {
		return errCode(CodeInvalidSettings, "connectsRequired must be at least 1")
	}
	if s.MaxPlayers < minPlayersToStart || s.MaxPlayers < len(r.Players) {
		return errCode(CodeInvalidSettings, "maxPlayers too small for current room")
	}
	if s.DirectGuessBudget < 1 {
		return errCode(CodeInvalidSettings, "directGuessBudget must be at least 1")
	}
	r.Settings = s
	return nil
}

// SubmitDirectGuess burns one direct guess at the full secret word.
// Correctness ends the game for the guessers; exhausting the budget on an
// incorrect guess ends it for the setter. No score change either way.
func (r *Room) SubmitDirectGuess(actorID, guess string) error {
	p, err := r.player(actorID)
	if err != nil {
		return err
	}
	if p.Role != RoleGuesser {
		return errCode(CodeNotGuesser, "only guessers can submit direct guesses")
	}
	if r.Phase != PhaseSignulls {
		return errCode(CodeInvalidPhase, "direct guesses only during signulls")
	}
	if r.DirectGuessesLeft <= 0 {
		return errCode(CodeNoGuessesLeft, "no direct guesses left")
	}
	r.DirectGuessesLeft--
	if NormalizeWord(guess) == r.SecretWord {
		r.endGame(WinnerGuessers)
		return nil
	}
	if r.DirectGuessesLeft == 0 {
		r.endGame(WinnerSetter)
	}
	return nil
}

// PlayAgain starts a new round with the same players and scores.
func (r *Room) PlayAgain(actorID string) error {
	if _, err := r.player(actorID); err != nil {
		return err
	}
	if r.Phase != PhaseEnded {
		return errCode(CodeInvalidPhase, "playAgain only after the game ends")
	}
	r.resetRound()
	r.Phase = PhaseSetting
	return nil
}

// BackToLobby abandons or wraps up the current round. When resetScores is
// set, scores and their audit log are cleared together so the score ==
// sum(events) invariant holds.
func (r *Room) BackToLobby(actorID string, resetScores bool) error {
	if _, err := r.player(actorID); err != nil {
		return err
	}
	switch r.Phase {
	case PhaseEnded, PhaseSignulls:
	default:
		return errCode(CodeInvalidPhase, "cannot return to lobby from %s", r.Phase)
	}
	r.resetRound()
	if resetScores {
		r.ScoreEvents = nil
		for _, p := range r.Players {
			p.Score = 0
		}
	}
	r.Phase = PhaseLobby
	return nil
}

// resetRound clears round-scoped state, preserving players and scores.
func (r *Room) resetRound() {
	r.SecretWord = ""
	r.RevealedCount = 0
	r.Signulls = NewLedger()
	r.DirectGuessesLeft = 0
	r.Winner = WinnerNone
	r.Insights = nil
}

// endGame finishes the round: phase, winner, and the one-shot insight pass.
func (r *Room) endGame(w Winner) {
	r.Phase = PhaseEnded
	r.Winner = w
	r.Insights = generateInsights(r)
}
