package testsupport

import (
	"testing"

	"simdb/internal/config"
	"simdb/internal/simdb"
)

// MustOpenStore opens a simdb.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *simdb.Store {
	t.Helper()

	store, err := simdb.Open(cfg.Paths.DBFile)
	if err != nil {
		t.Fatalf("simdb.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
