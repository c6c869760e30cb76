package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogsCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	content := "" +
		"2026-01-01T00:00:00Z INFO session[aaaa1111]: state changed state=ready\n" +
		"2026-01-01T00:00:01Z WARN syncbridge: push skipped\n"
	if err := os.MkdirAll(env.cfg.Paths.LogDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(env.cfg.Paths.LogDir, "qweend.log"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, []string{"logs", "--component", "syncbridge"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, out, "push skipped")
	if strings.Contains(out, "state changed") {
		t.Fatalf("expected session lines filtered out:\n%s", out)
	}
}

func TestStopWithoutDaemon(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	socket := filepath.Join(t.TempDir(), "absent.sock")

	out, _, err := runCLI(t, []string{"stop"}, socket, filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	requireContains(t, out, "not running")
}
