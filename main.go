package main

import (
	"context"
	"database/sql"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/signullgame/server/internal/archive"
	"github.com/signullgame/server/internal/httpserver"
	"github.com/signullgame/server/internal/store"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	// Database backs the game archive and, optionally, the room store.
	// DB_PATH="" runs fully in memory with no history endpoints.
	var db *sql.DB
	var arch *archive.Store
	if dsn := getEnv("DB_PATH", "./data/signull.db"); dsn != "" {
		var err error
		db, err = openDB(dsn)
		if err != nil {
			log.Fatal().Err(err).Str("dsn", dsn).Msg("open database")
		}
		if err := migrate(db); err != nil {
			log.Fatal().Err(err).Msg("apply migrations")
		}
		arch = archive.NewStore(db)
	}

	backend := getEnv("STORE", "memory")
	var st store.Store
	switch backend {
	case "sqlite":
		if db == nil {
			log.Fatal().Msg("STORE=sqlite requires DB_PATH")
		}
		st = store.NewSQLite(db)
	default:
		backend = "memory"
		st = store.NewMemory()
	}

	// Janitor: rooms nobody has touched for ROOM_TTL_HOURS get dropped.
	ttl := time.Duration(envInt("ROOM_TTL_HOURS", 24)) * time.Hour
	c := cron.New()
	if _, err := c.AddFunc(getEnv("JANITOR_SCHEDULE", "@hourly"), func() {
		n, err := st.PurgeStale(context.Background(), ttl)
		if err != nil {
			log.Warn().Err(err).Msg("purge stale rooms")
			return
		}
		if n > 0 {
			log.Info().Int("rooms", n).Msg("purged stale rooms")
		}
	}); err != nil {
		log.Fatal().Err(err).Msg("invalid janitor schedule")
	}
	c.Start()
	defer c.Stop()

	srv := httpserver.New(st, arch)
	port := getEnv("PORT", "5175")
	log.Info().Str("port", port).Str("store", backend).Msg("starting signull-server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
