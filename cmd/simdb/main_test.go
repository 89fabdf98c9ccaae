package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRootCommandWiring(t *testing.T) {
	root := newRootCommand()

	expected := []string{"init", "load-pubs", "load-issues", "aggregate", "status", "config"}
	for _, name := range expected {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("missing subcommand %q", name)
		}
	}
}

func TestInitAndStatusAgainstTempStore(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "issue_db.sqlite")
	configPath := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(configPath, []byte("[paths]\ndata_dir = \""+dir+"\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	run := func(args ...string) string {
		t.Helper()
		root := newRootCommand()
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetErr(&out)
		root.SetArgs(append(args, "--config", configPath, "--db", dbPath))
		if err := root.Execute(); err != nil {
			t.Fatalf("command %v failed: %v", args, err)
		}
		return out.String()
	}

	if out := run("init"); !strings.Contains(out, dbPath) {
		t.Fatalf("init output missing store path: %q", out)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("expected store file created: %v", err)
	}

	if out := run("status"); !strings.Contains(out, "Publications") {
		t.Fatalf("status output missing table: %q", out)
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"config", "init", "--path", target})
	if err := root.Execute(); err != nil {
		t.Fatalf("config init failed: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample config: %v", err)
	}
	if !strings.Contains(string(data), "[catalog]") {
		t.Fatalf("sample config missing catalog section: %q", data)
	}

	// Second run without --overwrite must refuse.
	root = newRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"config", "init", "--path", target})
	if err := root.Execute(); err == nil {
		t.Fatal("expected error when config already exists")
	}
}
