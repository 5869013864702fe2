package testsupport

import (
	"testing"

	"shotscout/internal/config"
	"shotscout/internal/runstore"
)

// MustOpenStore opens the run history store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *runstore.Store {
	t.Helper()

	store, err := runstore.Open(cfg.Paths.RunDBPath)
	if err != nil {
		t.Fatalf("runstore.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
