package main

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/impostor-party/server/internal/events"
	"github.com/impostor-party/server/internal/game"
	"github.com/impostor-party/server/internal/handlers"
	"github.com/impostor-party/server/internal/session"
	"github.com/impostor-party/server/internal/store"
)

func main() {
	godotenv.Load()

	log := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()
	if os.Getenv("DEBUG") == "" {
		log = log.Level(zerolog.InfoLevel)
	}

	wordsDir := envOr("WORDS_DIR", "data/words")
	words, err := game.LoadWordSource(wordsDir, rand.New(rand.NewSource(time.Now().UnixNano())))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load word lists")
	}

	var snapshots *store.DebouncedWriter
	var pg *store.PostgresStore
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		pg, err = store.NewPostgresStore(context.Background(), dsn)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to postgres")
		}
		snapshots = store.NewDebouncedWriter(pg, log)
		log.Info().Msg("snapshot persistence enabled")
	} else {
		log.Warn().Msg("DATABASE_URL not set, running without persistence")
	}

	ctx := &handlers.Context{
		Rooms:     store.NewRoomStore(),
		Sessions:  session.NewCoordinator(log),
		Hub:       events.NewHub(log),
		Words:     words,
		Snapshots: snapshots,
		PublicURL: envOr("PUBLIC_URL", "http://localhost:8080"),
		Log:       log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", ctx.HandleWS)
	mux.HandleFunc("/qr/", ctx.HandleQR)
	mux.HandleFunc("/healthz", ctx.HandleHealthz)

	addr := envOr("ADDR", ":8080")
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		log.Info().Str("addr", addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	<-stop.Done()

	log.Info().Msg("shutting down")
	shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	server.Shutdown(shutdownCtx)

	// Final snapshots: every live room flushes once; in-flight matches
	// are recorded with a server_shutdown end reason.
	if snapshots != nil {
		for _, rc := range ctx.Rooms.All() {
			if rec, ok := rc.ShutdownRecord(); ok {
				snapshots.SaveMatchRecordNow(shutdownCtx, rec)
			}
			snapshots.FlushNow(shutdownCtx, rc.Snapshot())
			rc.Close()
		}
		pg.Close()
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
