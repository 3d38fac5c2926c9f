// Package repo is the GORM persistence layer. It opens the record store
// (SQLite by default, Postgres optionally), migrates the schema and exposes
// free functions per table taking (ctx, db, ...).
package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/tbourn/go-cafe-api/internal/config"
	"github.com/tbourn/go-cafe-api/internal/domain"
)

type pool struct {
	maxOpen, maxIdle int
	idleTime, life   time.Duration
}

var (
	sqlitePool   = pool{maxOpen: 10, maxIdle: 10, idleTime: 5 * time.Minute, life: 30 * time.Minute}
	postgresPool = pool{maxOpen: 20, maxIdle: 10, idleTime: 5 * time.Minute, life: 30 * time.Minute}
)

// WAL lets readers proceed during a write; busy_timeout makes concurrent
// writers wait instead of failing with SQLITE_BUSY.
var sqlitePragmas = []string{
	"PRAGMA journal_mode=WAL;",
	"PRAGMA synchronous=NORMAL;",
	"PRAGMA busy_timeout=5000;",
}

func (p pool) apply(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(p.maxOpen)
	sqlDB.SetMaxIdleConns(p.maxIdle)
	sqlDB.SetConnMaxIdleTime(p.idleTime)
	sqlDB.SetConnMaxLifetime(p.life)
	return nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{TranslateError: true}
}

// Open connects to the store selected by cfg.Driver.
func Open(cfg config.DBConfig) (*gorm.DB, error) {
	if cfg.Driver == config.DriverPostgres {
		return OpenPostgres(cfg.DSN)
	}
	return OpenSQLite(cfg.Path)
}

// OpenSQLite opens path, creating the file but not its directory.
func OpenSQLite(path string) (*gorm.DB, error) {
	// sqlite reports a missing directory as "out of memory (14)" on some
	// platforms, so check it up front.
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), gormConfig())
	if err != nil {
		return nil, err
	}
	for _, p := range sqlitePragmas {
		if err := db.Exec(p).Error; err != nil {
			return nil, fmt.Errorf("sqlite %s: %w", p, err)
		}
	}
	if err := sqlitePool.apply(db); err != nil {
		return nil, err
	}
	return db, nil
}

// OpenPostgres connects with dsn and pings the server.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	if err := postgresPool.apply(db); err != nil {
		return nil, err
	}
	return db, nil
}

// EnableTracing turns every statement into a child span of the request span.
func EnableTracing(db *gorm.DB) error {
	return db.Use(tracing.NewPlugin(tracing.WithoutMetrics()))
}

// AutoMigrate creates the cafe and idempotency tables when absent.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.Cafe{}, &domain.Idempotency{})
}
