// internal/store/store.go
//
// Persistence contract for room aggregates. Implementations must provide:
//   - atomic read-modify-write via Update, with automatic retry when two
//     callers race on the same room;
//   - a server-assigned, per-room monotonic UpdatedAt stamp on commit;
//   - push-based subscriptions delivering the full aggregate snapshot on
//     every commit (never a diff).
//
// A mutation function error aborts the whole transaction; partial writes
// are never observable.

package store

import (
	"context"
	"errors"
	"time"

	"github.com/signullgame/server/internal/game"
)

var (
	// ErrNotFound is returned when no room exists under the given code.
	ErrNotFound = errors.New("store: room not found")
	// ErrExists is returned by Create on a room-code collision.
	ErrExists = errors.New("store: room already exists")
	// ErrConflict is returned when Update ran out of retries against
	// concurrent commits.
	ErrConflict = errors.New("store: too many conflicting commits")
)

// maxRetries bounds Update's optimistic-concurrency retry loop.
const maxRetries = 5

// Store is the transactional room repository.
type Store interface {
	// Create persists a brand-new room.
	Create(ctx context.Context, r *game.Room) error

	// Get returns a snapshot of the room.
	Get(ctx context.Context, code string) (*game.Room, error)

	// Update loads the room, applies fn to a private copy, and commits it
	// atomically, retrying on conflicting concurrent commits. The returned
	// snapshot is the committed state.
	Update(ctx context.Context, code string, fn func(*game.Room) error) (*game.Room, error)

	// Delete removes the room.
	Delete(ctx context.Context, code string) error

	// Subscribe streams full-room snapshots on every commit until the
	// cancel func runs. Slow consumers lose oldest snapshots first; each
	// delivery is a full-state replacement keyed by Room.UpdatedAt.
	Subscribe(code string) (<-chan *game.Room, func())

	// PurgeStale deletes rooms whose last commit is older than the cutoff
	// and reports how many were removed.
	PurgeStale(ctx context.Context, olderThan time.Duration) (int, error)
}

// commitStamp returns the UpdatedAt for a new commit, strictly after the
// previous one so subscribers can rely on monotonic ordering.
func commitStamp(prev time.Time) time.Time {
	now := time.Now().UTC()
	if !now.After(prev) {
		now = prev.Add(time.Microsecond)
	}
	return now
}
