package history

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sugarbeard/sugarbeardd/internal/orchestrator"
)

const migrationsDir = "../../migrations/history"

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	return log
}

func openTestStore(t *testing.T, retention time.Duration) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(dbPath, migrationsDir, retention, newTestLogger())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := openTestStore(t, time.Hour)
	ctx := context.Background()

	base := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		snap := orchestrator.Snapshot{Voltage: 3.7 + float64(i)*0.01, Level: 50 + float64(i), Charging: i%2 == 0}
		if err := store.Record(ctx, snap, base.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	samples, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(samples) != 3 {
		t.Fatalf("len(samples) = %d, want 3", len(samples))
	}
	// Newest first.
	if !samples[0].Timestamp.Equal(base.Add(2 * time.Second)) {
		t.Fatalf("samples[0].Timestamp = %v, want %v", samples[0].Timestamp, base.Add(2*time.Second))
	}

	limited, err := store.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("len(limited) = %d, want 1", len(limited))
	}
}

func TestPruneRemovesStaleSamples(t *testing.T) {
	store := openTestStore(t, time.Hour)
	ctx := context.Background()

	now := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	if err := store.Record(ctx, orchestrator.Snapshot{Voltage: 3.7}, now.Add(-2*time.Hour)); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := store.Record(ctx, orchestrator.Snapshot{Voltage: 3.8}, now.Add(-time.Minute)); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	pruned, err := store.Prune(ctx, now)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if pruned != 1 {
		t.Fatalf("Prune() removed %d rows, want 1", pruned)
	}

	remaining, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("len(remaining) = %d, want 1", len(remaining))
	}
}

func TestPruneDisabledWithZeroRetention(t *testing.T) {
	store := openTestStore(t, 0)
	ctx := context.Background()

	if err := store.Record(ctx, orchestrator.Snapshot{Voltage: 3.7}, time.Now().Add(-48*time.Hour)); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	pruned, err := store.Prune(ctx, time.Now())
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if pruned != 0 {
		t.Fatalf("Prune() with zero retention removed %d rows, want 0", pruned)
	}
}
