// internal/game/errors.go
//
// Coded errors raised by the rules engine. Every code is stable and
// machine-readable; callers map codes to user-facing text and HTTP status.
// An engine error always means the attempted mutation did not happen.

package game

import (
	"errors"
	"fmt"
)

// Code identifies one rejection reason.
type Code string

const (
	CodeRoomNotFound         Code = "ROOM_NOT_FOUND"
	CodeRoomFull             Code = "ROOM_FULL"
	CodeInvalidPhase         Code = "INVALID_PHASE"
	CodeNotSetter            Code = "NOT_SETTER"
	CodeOnlyGuesserCanCreate Code = "ONLY_GUESSER_CAN_CREATE"
	CodeInvalidWordFormat    Code = "INVALID_WORD_FORMAT"
	CodeWordPrefixMismatch   Code = "WORD_PREFIX_MISMATCH"
	CodePlayerNotFound       Code = "PLAYER_NOT_FOUND"
	CodeSignullNotFound      Code = "SIGNULL_NOT_FOUND"
	CodeSignullNotPending    Code = "SIGNULL_NOT_PENDING"
	CodeSignullIDRequired    Code = "SIGNULL_ID_REQUIRED"
	CodeNoActiveSignull      Code = "NO_ACTIVE_SIGNULL"
	CodeAlreadyConnected     Code = "ALREADY_CONNECTED"
	CodeCannotConnectOwn     Code = "CANNOT_CONNECT_OWN_SIGNULL"
	CodeNotGuesser           Code = "NOT_GUESSER"
	CodeNoGuessesLeft        Code = "NO_GUESSES_LEFT"
	CodeOnlyHostChangeSetter Code = "ONLY_HOST_CAN_CHANGE_SETTER"
	CodeOnlyHost             Code = "ONLY_HOST"
	CodePasscodeRequired     Code = "ROOM_PASSCODE_REQUIRED"
	CodeInvalidPasscode      Code = "INVALID_PASSCODE"
	CodeInvalidSettings      Code = "INVALID_SETTINGS"
	CodeNotEnoughPlayers     Code = "NOT_ENOUGH_PLAYERS"
)

// Error carries a code plus a human message. Prefix is only populated for
// WORD_PREFIX_MISMATCH, naming the prefix a signull word must start with.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Prefix  string `json:"prefix,omitempty"`
}

func (e *Error) Error() string {
	if e.Prefix != "" {
		return fmt.Sprintf("%s: %s (prefix %q)", e.Code, e.Message, e.Prefix)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// errCode builds a coded error with a formatted message.
func errCode(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// errPrefixMismatch builds the parameterized prefix-mismatch error.
func errPrefixMismatch(prefix string) *Error {
	return &Error{
		Code:    CodeWordPrefixMismatch,
		Message: fmt.Sprintf("signull word must start with the revealed prefix %q", prefix),
		Prefix:  prefix,
	}
}

// ErrPasscodeRequired and ErrInvalidPasscode are raised by the gateway when
// admission to a private room fails; defined here so every code has one
// construction site.
func ErrPasscodeRequired() error {
	return errCode(CodePasscodeRequired, "room requires a passcode")
}

func ErrInvalidPasscode() error {
	return errCode(CodeInvalidPasscode, "incorrect passcode")
}

// CodeOf extracts the engine code from err, or "" if err is not an engine
// error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool { return CodeOf(err) == code }
