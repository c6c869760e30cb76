package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"qween/internal/camera"
	"qween/internal/config"
	"qween/internal/ipc"
	"qween/internal/mirror"
	"qween/internal/presets"
	"qween/internal/session"
	"qween/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	mirror     *mirror.Mirror
	engine     *testsupport.FakeEngine
	socketPath string
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	for _, key := range []string{"QWEEN_APP_ID", "QWEEN_LICENSE_KEY", "QWEEN_SECRET_KEY"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	homeDir := filepath.Join(t.TempDir(), "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	configPath := filepath.Join(homeDir, ".config", "qween", "config.toml")
	writeTestConfig(t, configPath, cfg)

	store, err := presets.Open(cfg)
	if err != nil {
		t.Fatalf("presets.Open: %v", err)
	}
	eng := testsupport.NewFakeEngine()
	eng.AutoReady = true
	m, err := mirror.New(mirror.Options{
		Config:     cfg,
		Engine:     eng,
		Negotiator: &testsupport.FakeNegotiator{Profile: camera.Profile{Width: 1280, Height: 720}},
		Presets:    store,
	})
	if err != nil {
		t.Fatalf("mirror.New: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := m.Start(ctx); err != nil {
		t.Fatalf("mirror.Start: %v", err)
	}
	waitCtx, waitCancel := context.WithTimeout(ctx, 2*time.Second)
	defer waitCancel()
	if st, err := m.Wait(waitCtx); err != nil || st.State != session.StateReady {
		t.Fatalf("session did not become ready: %+v err=%v", st, err)
	}

	srv, err := ipc.NewServer(ctx, cfg.Paths.SocketPath, m, nil)
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping CLI test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(srv.Close)

	return &cliTestEnv{
		cfg:        cfg,
		mirror:     m,
		engine:     eng,
		socketPath: cfg.Paths.SocketPath,
		configPath: configPath,
	}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, socket, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	full := make([]string, 0, len(args)+4)
	if socket != "" {
		full = append(full, "--socket", socket)
	}
	if configPath != "" {
		full = append(full, "--config", configPath)
	}
	full = append(full, args...)
	cmd.SetArgs(full)

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := cmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected %q in output:\n%s", needle, haystack)
	}
}
