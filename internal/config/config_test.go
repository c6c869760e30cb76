package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"qween/internal/config"
)

func clearCredentialEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"QWEEN_APP_ID", "QWEEN_LICENSE_KEY", "QWEEN_SECRET_KEY", "QWEEN_OTEL_ENDPOINT", "QWEEN_OTEL_ENABLED"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	clearCredentialEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "qween")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Paths.SocketPath != filepath.Join(wantState, "qween.sock") {
		t.Fatalf("unexpected socket path: %q", cfg.Paths.SocketPath)
	}
	if cfg.Camera.Device != "/dev/video0" {
		t.Fatalf("unexpected camera device: %q", cfg.Camera.Device)
	}
	if cfg.Camera.IdealWidth != 1920 || cfg.Camera.IdealHeight != 1080 {
		t.Fatalf("unexpected ideal resolution: %dx%d", cfg.Camera.IdealWidth, cfg.Camera.IdealHeight)
	}
	if cfg.Camera.FallbackWidth != 640 || cfg.Camera.FallbackHeight != 480 {
		t.Fatalf("unexpected fallback resolution: %dx%d", cfg.Camera.FallbackWidth, cfg.Camera.FallbackHeight)
	}
	if !cfg.Camera.Mirror {
		t.Fatal("expected mirroring enabled by default")
	}
	if cfg.Credentials.Complete() {
		t.Fatal("expected credentials to be incomplete without env or file")
	}
	if got := cfg.Credentials.Missing(); len(got) != 3 {
		t.Fatalf("expected three missing credentials, got %v", got)
	}
	if cfg.Telemetry.Enabled {
		t.Fatal("expected telemetry disabled by default")
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("HOME", t.TempDir())
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "qween.toml")

	type payload struct {
		Credentials struct {
			AppID      string `toml:"app_id"`
			LicenseKey string `toml:"license_key"`
			SecretKey  string `toml:"secret_key"`
		} `toml:"credentials"`
		Camera struct {
			Device string `toml:"device"`
		} `toml:"camera"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Credentials.AppID = "app"
	custom.Credentials.LicenseKey = "license"
	custom.Credentials.SecretKey = "secret"
	custom.Camera.Device = "/dev/video2"
	custom.Logging.Format = "JSON"

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom path to be used, got %q exists=%v", resolved, exists)
	}
	if !cfg.Credentials.Complete() {
		t.Fatalf("expected complete credentials, missing %v", cfg.Credentials.Missing())
	}
	if cfg.Camera.Device != "/dev/video2" {
		t.Fatalf("unexpected device: %q", cfg.Camera.Device)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected normalized log format, got %q", cfg.Logging.Format)
	}
	if cfg.Camera.IdealWidth != 1920 {
		t.Fatalf("expected default ideal width preserved, got %d", cfg.Camera.IdealWidth)
	}
}

func TestEnvironmentCredentialsOverrideFile(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	configPath := filepath.Join(dir, "qween.toml")
	content := "[credentials]\napp_id = \"file-app\"\nlicense_key = \"file-license\"\nsecret_key = \"file-secret\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("QWEEN_APP_ID", "env-app")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Credentials.AppID != "env-app" {
		t.Fatalf("expected env app id, got %q", cfg.Credentials.AppID)
	}
	if cfg.Credentials.LicenseKey != "file-license" {
		t.Fatalf("expected file license key, got %q", cfg.Credentials.LicenseKey)
	}
}

func TestDotEnvCredentials(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	envPath := filepath.Join(dir, "creds.env")
	dotenv := "QWEEN_APP_ID=dot-app\nQWEEN_LICENSE_KEY=dot-license\nQWEEN_SECRET_KEY=dot-secret\n"
	if err := os.WriteFile(envPath, []byte(dotenv), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	configPath := filepath.Join(dir, "qween.toml")
	content := "[paths]\nenv_file = \"" + envPath + "\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("QWEEN_SECRET_KEY", "process-secret")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Credentials.AppID != "dot-app" || cfg.Credentials.LicenseKey != "dot-license" {
		t.Fatalf("expected .env credentials, got %+v", cfg.Credentials)
	}
	if cfg.Credentials.SecretKey != "process-secret" {
		t.Fatalf("expected process environment to win over .env, got %q", cfg.Credentials.SecretKey)
	}
}

func TestMissingDotEnvIsIgnored(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	configPath := filepath.Join(dir, "qween.toml")
	content := "[paths]\nenv_file = \"" + filepath.Join(dir, "absent.env") + "\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*config.Config) {}},
		{
			name:    "device outside dev",
			mutate:  func(c *config.Config) { c.Camera.Device = "/tmp/video0" },
			wantErr: "camera.device",
		},
		{
			name:    "fallback larger than ideal",
			mutate:  func(c *config.Config) { c.Camera.FallbackWidth = 4000 },
			wantErr: "fallback resolution",
		},
		{
			name:    "engine scheme",
			mutate:  func(c *config.Config) { c.Engine.URL = "ftp://host/engine" },
			wantErr: "engine.url",
		},
		{
			name:    "log format",
			mutate:  func(c *config.Config) { c.Logging.Format = "xml" },
			wantErr: "logging.format",
		},
		{
			name: "telemetry without endpoint",
			mutate: func(c *config.Config) {
				c.Telemetry.Enabled = true
				c.Telemetry.Endpoint = ""
			},
			wantErr: "telemetry.endpoint",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCreateSampleLoads(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("expected sample to load, exists=%v err=%v", exists, err)
	}
}
