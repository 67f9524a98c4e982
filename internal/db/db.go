package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/memotica/memotica/internal/logger"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationTable records which embedded migrations have been applied.
const MigrationTable = "schema_migrations"

type DB struct {
	*sql.DB
	log *logger.Logger
}

// Open opens the SQLite database at path, creating its directory when needed,
// and brings the schema up to date. ":memory:" opens a private in-memory database.
func Open(path string) (*DB, error) {
	log := logger.Default().WithPrefix("db")

	if dir := dataDir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Error("failed to create data directory: %v", err)
			return nil, fmt.Errorf("create data directory %s: %w", dir, err)
		}
	}

	dsn := fmt.Sprintf("%s?_busy_timeout=5000&_foreign_keys=on&_journal_mode=WAL&_synchronous=NORMAL", path)
	log.Info("opening database: %s", path)

	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		log.Error("failed to open database: %v", err)
		return nil, err
	}
	// One connection: a single writer, and an in-memory database stays the same database.
	sqlDB.SetMaxOpenConns(1)

	db := &DB{DB: sqlDB, log: log}

	log.Debug("applying migrations")
	if err := db.migrate(context.Background()); err != nil {
		log.Error("failed to apply migrations: %v", err)
		_ = sqlDB.Close()
		return nil, err
	}

	log.Info("database ready")
	return db, nil
}

func (db *DB) migrate(ctx context.Context) error {
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(gooseLogger{log: db.log})
	goose.SetTableName(MigrationTable)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db.DB, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Version returns the latest applied migration version.
func (db *DB) Version(ctx context.Context) (int64, error) {
	return goose.GetDBVersionContext(ctx, db.DB)
}

// Check verifies the connection, for readiness probes.
func (db *DB) Check(ctx context.Context) error {
	return db.PingContext(ctx)
}

// dataDir returns the directory that must exist before the file at path can
// be created, or "" for in-memory databases and the working directory.
func dataDir(path string) string {
	p := strings.TrimPrefix(path, "file:")
	if p == "" || strings.HasPrefix(p, ":memory:") || strings.Contains(p, "mode=memory") {
		return ""
	}
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	dir := filepath.Dir(p)
	if dir == "." {
		return ""
	}
	return dir
}

// gooseLogger routes migration progress through the application logger.
type gooseLogger struct {
	log *logger.Logger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.log.Debug(strings.TrimSuffix(format, "\n"), v...)
}

// Fatalf logs without exiting; goose also returns the error to Open.
func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.log.Error(strings.TrimSuffix(format, "\n"), v...)
}
