// Command cafe-api serves the cafe catalog over HTTP.
//
// Startup: load .env, read configuration, set up logging and tracing, open
// the store (creating the SQLite file and its directory when missing),
// migrate, then serve until SIGINT/SIGTERM and drain in-flight requests.
//
//	@title			Cafe & Wifi API
//	@version		1.0
//	@description	Catalog of laptop-friendly cafes.
//	@BasePath		/
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-cafe-api/internal/config"
	httpapi "github.com/tbourn/go-cafe-api/internal/http"
	"github.com/tbourn/go-cafe-api/internal/observability"
	"github.com/tbourn/go-cafe-api/internal/repo"
	"github.com/tbourn/go-cafe-api/internal/sysutil"
)

// version is set at build time with -ldflags "-X main.version=...".
var version string

const shutdownGrace = 10 * time.Second

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	sysutil.SetupLogger(os.Stderr, cfg.LogPretty)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	sysutil.SetLogLevel(cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	ver := sysutil.FirstNonEmpty(version, os.Getenv("APP_VERSION"), "dev")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, ver)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}

	if cfg.DB.Driver == config.DriverSQLite {
		if dir := filepath.Dir(cfg.DB.Path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				log.Fatal().Err(err).Str("dir", dir).Msg("cannot create db directory")
			}
		}
	}
	db, err := repo.Open(cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DB.Driver).Msg("open store")
	}
	if cfg.OTEL.Enabled {
		if err := repo.EnableTracing(db); err != nil {
			log.Fatal().Err(err).Msg("gorm tracing")
		}
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}
	if n, err := repo.PurgeExpiredIdempotency(ctx, db, time.Now().UTC()); err != nil {
		log.Warn().Err(err).Msg("idempotency purge failed")
	} else if n > 0 {
		log.Info().Int64("purged", n).Msg("expired idempotency records removed")
	}

	r := gin.New()
	httpapi.RegisterRoutes(r, db, cfg)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("version", ver).
			Str("driver", cfg.DB.Driver).
			Str("base_path", cfg.APIBasePath).
			Msg("cafe-api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := shutdownOTel(sctx); err != nil {
		log.Warn().Err(err).Msg("otel shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
