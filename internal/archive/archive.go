// internal/archive/archive.go
//
// Finished-game history. When a room reaches the ended phase the gateway
// records a summary row plus per-player results, and bumps cumulative
// player stats. Everything here is best-effort from the caller's point of
// view: archiving failures never abort the game mutation that triggered
// them.

package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/signullgame/server/internal/game"
)

// ErrNotFound is returned when a player has no recorded stats yet.
var ErrNotFound = errors.New("archive: not found")

// DateKey returns YYYY-MM-DD in UTC, the bucket daily leaderboards use.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Store wraps the archive tables (see sql/ migrations).
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// RecordGame persists a finished room: one games row, one game_players row
// per participant, and a stats bump for each player. Runs in a single
// transaction so a half-recorded game is never visible.
func (s *Store) RecordGame(ctx context.Context, r *game.Room, finishedAt time.Time) error {
	if r.Phase != game.PhaseEnded {
		return fmt.Errorf("archive: room %s is not ended", r.Code)
	}
	signulls, resolved := 0, 0
	for _, e := range r.Signulls.Entries {
		signulls++
		if e.Status == game.StatusResolved {
			resolved++
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
        INSERT INTO games (room_code, date, word, winner, players, signulls, resolved, finished_at_ms)
        VALUES (?,?,?,?,?,?,?,?)`,
		r.Code, DateKey(finishedAt), r.SecretWord, string(r.Winner),
		len(r.Players), signulls, resolved, finishedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	gameID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	for _, p := range r.PlayersByJoinOrder() {
		won := (r.Winner == game.WinnerGuessers && p.Role == game.RoleGuesser) ||
			(r.Winner == game.WinnerSetter && p.Role == game.RoleSetter)
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO game_players (game_id, player_id, name, role, score, won)
            VALUES (?,?,?,?,?,?)`,
			gameID, p.ID, p.Name, string(p.Role), p.Score, boolInt(won),
		); err != nil {
			return fmt.Errorf("insert game player %s: %w", p.ID, err)
		}
		if err := bumpStats(ctx, tx, p, won); err != nil {
			return fmt.Errorf("bump stats %s: %w", p.ID, err)
		}
	}

	// The audit log goes along so score breakdowns survive the room.
	for _, ev := range r.ScoreEvents {
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO game_score_events (game_id, player_id, delta, reason, at_ms)
            VALUES (?,?,?,?,?)`,
			gameID, ev.PlayerID, ev.Delta, string(ev.Reason), ev.At.UnixMilli(),
		); err != nil {
			return fmt.Errorf("insert score event: %w", err)
		}
	}
	return tx.Commit()
}

// bumpStats upserts the cumulative per-player counters inside the tx.
func bumpStats(ctx context.Context, tx *sql.Tx, p *game.Player, won bool) error {
	_, err := tx.ExecContext(ctx, `
        INSERT INTO player_stats (player_id, name, games_played, wins, total_score)
        VALUES (?,?,1,?,?)
        ON CONFLICT(player_id) DO UPDATE SET
            name = excluded.name,
            games_played = games_played + 1,
            wins = wins + excluded.wins,
            total_score = total_score + excluded.total_score`,
		p.ID, p.Name, boolInt(won), p.Score,
	)
	return err
}

// LeaderboardRow is one daily-leaderboard entry.
type LeaderboardRow struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Games    int    `json:"games"`
}

// DailyLeaderboard returns the top scorers across games finished on the
// given date, ordered by total score descending.
func (s *Store) DailyLeaderboard(ctx context.Context, date string, limit int) ([]LeaderboardRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT gp.player_id, gp.name, SUM(gp.score) AS total, COUNT(1)
        FROM game_players gp
        JOIN games g ON g.id = gp.game_id
        WHERE g.date = ?
        GROUP BY gp.player_id, gp.name
        ORDER BY total DESC, gp.player_id ASC
        LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]LeaderboardRow, 0, limit)
	for rows.Next() {
		var r LeaderboardRow
		if err := rows.Scan(&r.PlayerID, &r.Name, &r.Score, &r.Games); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// PlayerStats are the cumulative counters for one player.
type PlayerStats struct {
	PlayerID    string `json:"playerId"`
	Name        string `json:"name"`
	GamesPlayed int    `json:"gamesPlayed"`
	Wins        int    `json:"wins"`
	TotalScore  int    `json:"totalScore"`
}

// Stats loads one player's cumulative counters.
func (s *Store) Stats(ctx context.Context, playerID string) (*PlayerStats, error) {
	var st PlayerStats
	err := s.db.QueryRowContext(ctx, `
        SELECT player_id, name, games_played, wins, total_score
        FROM player_stats WHERE player_id = ?`, playerID,
	).Scan(&st.PlayerID, &st.Name, &st.GamesPlayed, &st.Wins, &st.TotalScore)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
