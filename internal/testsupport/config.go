package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"qween/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test
// and complete credentials. It applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.SocketPath = shortSocketPath(t)
	cfgVal.Paths.EnvFile = ""
	cfgVal.Credentials = config.Credentials{AppID: "test-app", LicenseKey: "test-license", SecretKey: "test-secret"}
	cfgVal.Camera.Device = "/dev/video0"
	cfgVal.Camera.WatchHotplug = false
	cfgVal.Camera.ProbeTimeoutSeconds = 1
	cfgVal.Engine.HandshakeTimeoutSeconds = 2

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// shortSocketPath keeps unix socket paths under the sun_path limit, which
// t.TempDir paths can exceed.
func shortSocketPath(t testing.TB) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "qween")
	if err != nil {
		t.Fatalf("socket dir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	return filepath.Join(dir, "q.sock")
}

// WithCredentials overrides the credentials on the test config.
func WithCredentials(appID, licenseKey, secretKey string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Credentials = config.Credentials{AppID: appID, LicenseKey: licenseKey, SecretKey: secretKey}
	}
}

// WithCameraDevice overrides the capture device path.
func WithCameraDevice(path string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Camera.Device = path
	}
}

// WithEngineURL points the config at a test runtime.
func WithEngineURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Engine.URL = url
	}
}

// WithRestoreLast toggles restoring the last parameter set at mount.
func WithRestoreLast(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Beauty.RestoreLast = enabled
	}
}

// WithEnvFile writes a .env file with the given lines and points the config at it.
func WithEnvFile(lines ...string) ConfigOption {
	return func(b *configBuilder) {
		path := filepath.Join(b.baseDir, "qween.env")
		var content []byte
		for _, line := range lines {
			content = append(content, line...)
			content = append(content, '\n')
		}
		if err := os.WriteFile(path, content, 0o600); err != nil {
			b.t.Fatalf("write env file: %v", err)
		}
		b.cfg.Paths.EnvFile = path
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
