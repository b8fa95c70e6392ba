// Package history persists one row per poll-second of battery/RTC
// telemetry to a local SQLite database, grounded in the teacher's
// internal/database package (Migrate() driving golang-migrate against a
// sqlite3 driver instance, and sqlite.QueueRepository's jmoiron/sqlx
// SelectContext/GetContext query style) but trimmed to this daemon's
// single telemetry table and retention sweep instead of the teacher's
// full application schema.
package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/sugarbeard/sugarbeardd/internal/orchestrator"
	"github.com/sugarbeard/sugarbeardd/pkg/daemonerrors"
)

// Sample is one retained row of telemetry history.
type Sample struct {
	Timestamp    time.Time `db:"ts"`
	Voltage      float64   `db:"voltage"`
	Current      float64   `db:"current"`
	Level        float64   `db:"level"`
	Charging     bool      `db:"charging"`
	PowerPlugged bool      `db:"power_plugged"`
}

// Store owns the SQLite connection and retention policy.
type Store struct {
	db        *sqlx.DB
	log       *logrus.Logger
	retention time.Duration
}

// Open creates dbPath's parent directory if needed, opens the database,
// and runs pending migrations from migrationsPath.
func Open(dbPath, migrationsPath string, retention time.Duration, log *logrus.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, daemonerrors.Wrap(daemonerrors.Config, "create history directory", err)
	}

	db, err := sqlx.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, daemonerrors.Wrap(daemonerrors.Bus, "open history database", err)
	}
	if err := db.Ping(); err != nil {
		return nil, daemonerrors.Wrap(daemonerrors.Bus, "ping history database", err)
	}

	if err := migrateUp(db, migrationsPath); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, log: log, retention: retention}, nil
}

func migrateUp(db *sqlx.DB, migrationsPath string) error {
	driver, err := sqlite3.WithInstance(db.DB, &sqlite3.Config{})
	if err != nil {
		return daemonerrors.Wrap(daemonerrors.Config, "create migration driver", err)
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsPath), "sqlite3", driver)
	if err != nil {
		return daemonerrors.Wrap(daemonerrors.Config, "create migration instance", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return daemonerrors.Wrap(daemonerrors.Config, "run history migrations", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Record inserts one telemetry row derived from a poll-tick Snapshot.
func (s *Store) Record(ctx context.Context, snap orchestrator.Snapshot, at time.Time) error {
	const query = `INSERT INTO battery_history (ts, voltage, current, level, charging, power_plugged)
	               VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, at.UTC(), snap.Voltage, snap.Current, snap.Level, snap.Charging, snap.PowerPlugged)
	if err != nil {
		return daemonerrors.Wrap(daemonerrors.Bus, "record history sample", err)
	}
	return nil
}

// Recent returns up to limit of the most recent samples, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Sample, error) {
	const query = `SELECT ts, voltage, current, level, charging, power_plugged
	               FROM battery_history ORDER BY ts DESC LIMIT ?`
	var samples []Sample
	if err := s.db.SelectContext(ctx, &samples, query, limit); err != nil {
		return nil, daemonerrors.Wrap(daemonerrors.Bus, "query history", err)
	}
	return samples, nil
}

// Prune deletes samples older than the configured retention window,
// invoked periodically by the daemon to keep the table bounded.
func (s *Store) Prune(ctx context.Context, now time.Time) (int64, error) {
	if s.retention <= 0 {
		return 0, nil
	}
	cutoff := now.Add(-s.retention).UTC()
	res, err := s.db.ExecContext(ctx, `DELETE FROM battery_history WHERE ts < ?`, cutoff)
	if err != nil {
		return 0, daemonerrors.Wrap(daemonerrors.Bus, "prune history", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		s.log.WithField("rows", n).Debug("pruned stale history samples")
	}
	return n, nil
}
