package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/signullgame/server/internal/game"
)

func testSQLite(t *testing.T) Store {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	if _, err := db.Exec(`CREATE TABLE rooms (
		code          TEXT PRIMARY KEY,
		version       INTEGER NOT NULL,
		updated_at_us INTEGER NOT NULL,
		data          TEXT NOT NULL
	)`); err != nil {
		t.Fatalf("schema: %v", err)
	}
	return NewSQLite(db)
}

func TestSQLiteRoundTrip(t *testing.T) {
	st := testSQLite(t)
	newStoredRoom(t, st, "AAAAA")

	got, err := st.Get(context.Background(), "AAAAA")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Code != "AAAAA" || got.Version != 1 {
		t.Fatalf("round trip: code=%s version=%d", got.Code, got.Version)
	}
	if got.Players["setter"].Role != game.RoleSetter {
		t.Fatal("player roles must survive serialization")
	}

	if err := st.Create(context.Background(), game.NewRoom("AAAAA", &game.Player{ID: "x"}, nil, time.Now())); !errors.Is(err, ErrExists) {
		t.Fatalf("duplicate create: got %v, want ErrExists", err)
	}
}

func TestSQLiteUpdate(t *testing.T) {
	st := testSQLite(t)
	newStoredRoom(t, st, "AAAAA")

	got, err := st.Update(context.Background(), "AAAAA", func(r *game.Room) error {
		return r.Join(&game.Player{ID: "g1", Name: "Gia"}, time.Now())
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Version != 2 {
		t.Fatalf("version = %d, want 2", got.Version)
	}

	reloaded, _ := st.Get(context.Background(), "AAAAA")
	if _, ok := reloaded.Players["g1"]; !ok {
		t.Fatal("committed mutation lost on reload")
	}

	if _, err := st.Update(context.Background(), "ZZZZZ", func(r *game.Room) error { return nil }); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing room: got %v, want ErrNotFound", err)
	}
}

func TestSQLiteSubscribe(t *testing.T) {
	st := testSQLite(t)
	newStoredRoom(t, st, "AAAAA")

	ch, cancel := st.Subscribe("AAAAA")
	defer cancel()

	if _, err := st.Update(context.Background(), "AAAAA", func(r *game.Room) error {
		return r.Join(&game.Player{ID: "g1", Name: "Gia"}, time.Now())
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	select {
	case snap := <-ch:
		if _, ok := snap.Players["g1"]; !ok {
			t.Fatal("subscriber should see the committed snapshot")
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot delivered")
	}
}

func TestSQLiteDeleteAndPurge(t *testing.T) {
	st := testSQLite(t)
	newStoredRoom(t, st, "AAAAA")
	newStoredRoom(t, st, "BBBBB")

	if err := st.Delete(context.Background(), "AAAAA"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := st.Get(context.Background(), "AAAAA"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}

	time.Sleep(10 * time.Millisecond)
	n, err := st.PurgeStale(context.Background(), 5*time.Millisecond)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if n != 1 {
		t.Fatalf("purged %d rooms, want 1", n)
	}
}
