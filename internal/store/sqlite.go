// internal/store/sqlite.go
//
// SQLite-backed Store. Rooms are stored as JSON documents in a single
// table with a version column; commits use a compare-and-swap UPDATE
// (WHERE code=? AND version=?) so conflicting writers retry with a fresh
// snapshot instead of clobbering each other. Snapshot fan-out reuses the
// in-process hub, which is sufficient for the single-server deployment
// this game runs as.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/signullgame/server/internal/game"
)

type sqliteStore struct {
	db  *sql.DB
	hub *hub
}

// NewSQLite constructs a Store over an opened database handle. The rooms
// table must already exist (see sql/ migrations).
func NewSQLite(db *sql.DB) Store {
	return &sqliteStore{db: db, hub: newHub()}
}

func (s *sqliteStore) Create(ctx context.Context, r *game.Room) error {
	r.Version = 1
	r.UpdatedAt = commitStamp(time.Time{})
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal room %s: %w", r.Code, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO rooms(code, version, updated_at_us, data) VALUES(?,?,?,?)`,
		r.Code, r.Version, r.UpdatedAt.UnixMicro(), string(data),
	)
	if err != nil && isUniqueViolation(err) {
		return ErrExists
	}
	return err
}

func (s *sqliteStore) Get(ctx context.Context, code string) (*game.Room, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM rooms WHERE code=?`, code,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var r game.Room
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return nil, fmt.Errorf("unmarshal room %s: %w", code, err)
	}
	return &r, nil
}

func (s *sqliteStore) Update(ctx context.Context, code string, fn func(*game.Room) error) (*game.Room, error) {
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cur, err := s.Get(ctx, code)
		if err != nil {
			return nil, err
		}
		next := cur.Clone()
		if err := fn(next); err != nil {
			return nil, err
		}
		next.Version = cur.Version + 1
		next.UpdatedAt = commitStamp(cur.UpdatedAt)
		data, err := json.Marshal(next)
		if err != nil {
			return nil, fmt.Errorf("marshal room %s: %w", code, err)
		}

		res, err := s.db.ExecContext(ctx,
			`UPDATE rooms SET version=?, updated_at_us=?, data=? WHERE code=? AND version=?`,
			next.Version, next.UpdatedAt.UnixMicro(), string(data), code, cur.Version,
		)
		if err != nil {
			return nil, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if n == 0 {
			continue // concurrent commit won, reload and retry
		}
		s.hub.publish(next)
		return next, nil
	}
	return nil, ErrConflict
}

func (s *sqliteStore) Delete(ctx context.Context, code string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM rooms WHERE code=?`, code)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	s.hub.dropRoom(code)
	return nil
}

func (s *sqliteStore) Subscribe(code string) (<-chan *game.Room, func()) {
	return s.hub.subscribe(code)
}

func (s *sqliteStore) PurgeStale(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-olderThan).UnixMicro()
	rows, err := s.db.QueryContext(ctx,
		`SELECT code FROM rooms WHERE updated_at_us < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			rows.Close()
			return 0, err
		}
		codes = append(codes, code)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	purged := 0
	for _, code := range codes {
		res, err := s.db.ExecContext(ctx, `DELETE FROM rooms WHERE code=? AND updated_at_us < ?`, code, cutoff)
		if err != nil {
			return purged, err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			purged++
			s.hub.dropRoom(code)
		}
	}
	return purged, nil
}

// isUniqueViolation matches SQLite's unique-constraint error without
// importing the driver's error types here.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
