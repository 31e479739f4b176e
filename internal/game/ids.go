// internal/game/ids.go
//
// Identifier generation:
//   - Room codes: short human-typeable uppercase strings (no 0/O/1/I).
//   - Player ids: UUIDv4.
//   - Signull ids: opaque, globally unique, time-ordered tokens
//     (base36 millisecond timestamp + random suffix), so chronological
//     sorting falls out of lexical ordering within a room.

package game

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// roomCodeAlphabet omits ambiguous glyphs so codes survive being read aloud.
const roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const roomCodeLength = 5

// NewRoomCode returns a fresh room code. Uniqueness is enforced by the
// store on create, not here.
func NewRoomCode() string {
	b := make([]byte, roomCodeLength)
	max := big.NewInt(int64(len(roomCodeAlphabet)))
	for i := range b {
		n, _ := rand.Int(rand.Reader, max)
		b[i] = roomCodeAlphabet[n.Int64()]
	}
	return string(b)
}

// NewPlayerID returns a new player identifier.
func NewPlayerID() string { return uuid.NewString() }

// NewSignullID returns a time-ordered opaque token.
func NewSignullID(now time.Time) string {
	var suffix [4]byte
	_, _ = rand.Read(suffix[:])
	return strconv.FormatInt(now.UnixMilli(), 36) + hex.EncodeToString(suffix[:])
}

// NewInsightID returns an identifier for a generated insight.
func NewInsightID() string {
	var b [6]byte
	_, _ = rand.Read(b[:])
	return "ins_" + hex.EncodeToString(b[:])
}
