package logging_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"simdb/internal/logging"
)

func TestNewJSONLoggerWritesToFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "simdb.log")

	logger, err := logging.New(logging.Options{
		Level:       "debug",
		Format:      "json",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("logging.New failed: %v", err)
	}

	logger.Info("publications loaded", "records", 3)

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(data, &record); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", data, err)
	}
	if record["msg"] != "publications loaded" {
		t.Fatalf("unexpected message: %v", record["msg"])
	}
	if record["records"] != float64(3) {
		t.Fatalf("unexpected records attr: %v", record["records"])
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestLevelFiltering(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "simdb.log")

	logger, err := logging.New(logging.Options{
		Level:       "error",
		Format:      "json",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("logging.New failed: %v", err)
	}

	logger.Info("suppressed")
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if len(data) != 0 {
		t.Fatalf("expected info record suppressed at error level, got %q", data)
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := logging.NewNop()
	logger.Error("ignored")
}
