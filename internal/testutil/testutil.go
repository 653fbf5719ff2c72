// Package testutil provides shared test helpers for setting up profile stores and services.
package testutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/attuneweb/attune/internal/adaptservice"
	"github.com/attuneweb/attune/internal/engine"
	"github.com/attuneweb/attune/internal/profilestore"
)

// TestStore creates a temporary SQLite profile store that is automatically
// cleaned up.
func TestStore(t *testing.T) *profilestore.DB {
	t.Helper()
	db, err := profilestore.Open(filepath.Join(t.TempDir(), "attune-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestLogger returns a quiet logger for tests.
func TestLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// TestService creates a service backed by a temporary store with the
// deterministic engine only. model may be nil.
func TestService(t *testing.T, model adaptservice.ModelClient) (*adaptservice.Service, *profilestore.DB) {
	t.Helper()
	db := TestStore(t)
	svc := adaptservice.New(db, engine.New(), model, TestLogger(t))
	return svc, db
}
