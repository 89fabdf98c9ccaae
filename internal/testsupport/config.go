package testsupport

import (
	"path/filepath"
	"testing"

	"simdb/internal/config"
)

// NewConfig produces a config backed by a unique temp directory per test.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = base
	cfg.Paths.DBFile = filepath.Join(base, "issue_db.sqlite")
	cfg.Catalog.BaseURL = "http://catalog.test"
	cfg.Search.BaseURL = "http://search.test"
	return &cfg
}
