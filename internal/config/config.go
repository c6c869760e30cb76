package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and socket configuration.
type Paths struct {
	StateDir   string `toml:"state_dir"`
	LogDir     string `toml:"log_dir"`
	SocketPath string `toml:"socket_path"`
	EnvFile    string `toml:"env_file"`
}

// Credentials holds the AR engine credentials. Values from the environment
// take precedence over the file.
type Credentials struct {
	AppID      string `toml:"app_id"`
	LicenseKey string `toml:"license_key"`
	SecretKey  string `toml:"secret_key"`
}

// Complete reports whether all three credentials are present.
func (c Credentials) Complete() bool {
	return strings.TrimSpace(c.AppID) != "" &&
		strings.TrimSpace(c.LicenseKey) != "" &&
		strings.TrimSpace(c.SecretKey) != ""
}

// Missing lists the names of absent credentials.
func (c Credentials) Missing() []string {
	var missing []string
	if strings.TrimSpace(c.AppID) == "" {
		missing = append(missing, "app_id")
	}
	if strings.TrimSpace(c.LicenseKey) == "" {
		missing = append(missing, "license_key")
	}
	if strings.TrimSpace(c.SecretKey) == "" {
		missing = append(missing, "secret_key")
	}
	return missing
}

// Camera contains capture device and negotiation settings.
type Camera struct {
	Device              string `toml:"device"`
	IdealWidth          int    `toml:"ideal_width"`
	IdealHeight         int    `toml:"ideal_height"`
	FallbackWidth       int    `toml:"fallback_width"`
	FallbackHeight      int    `toml:"fallback_height"`
	Mirror              bool   `toml:"mirror"`
	ProbeTimeoutSeconds int    `toml:"probe_timeout_seconds"`
	WatchHotplug        bool   `toml:"watch_hotplug"`
}

// Engine contains settings for the effect runtime bridge.
type Engine struct {
	URL                     string `toml:"url"`
	HandshakeTimeoutSeconds int    `toml:"handshake_timeout_seconds"`
	LoadingEnabled          bool   `toml:"loading_enabled"`
	LoadingLineWidth        int    `toml:"loading_line_width"`
}

// Beauty contains parameter persistence settings.
type Beauty struct {
	RestoreLast bool `toml:"restore_last"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Telemetry contains OpenTelemetry export settings.
type Telemetry struct {
	Enabled  bool   `toml:"enabled"`
	Endpoint string `toml:"endpoint"`
}

// Config encapsulates all configuration values for qween.
//
// Configuration sections by subsystem:
//   - Paths: state, log and socket locations
//   - Credentials: AR engine app id, license key and signing secret
//   - Camera: capture device and resolution negotiation
//   - Engine: effect runtime endpoint and loading indicator
//   - Beauty: parameter persistence
//   - Logging: log format and level
//   - Telemetry: OTLP trace export
type Config struct {
	Paths       Paths       `toml:"paths"`
	Credentials Credentials `toml:"credentials"`
	Camera      Camera      `toml:"camera"`
	Engine      Engine      `toml:"engine"`
	Beauty      Beauty      `toml:"beauty"`
	Logging     Logging     `toml:"logging"`
	Telemetry   Telemetry   `toml:"telemetry"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/qween/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and credentials resolved from the environment.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		info, err := os.Stat(expanded)
		if err != nil {
			if os.IsNotExist(err) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		if info.IsDir() {
			return "", false, fmt.Errorf("config path %q is a directory", expanded)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("qween.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir, filepath.Dir(c.Paths.SocketPath)} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// PresetDBPath returns the sqlite database holding saved parameter sets.
func (c *Config) PresetDBPath() string {
	return filepath.Join(c.Paths.StateDir, "presets.db")
}

// LockPath returns the daemon single-instance lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "qweend.lock")
}

// PIDPath returns the file holding the running daemon's process id.
func (c *Config) PIDPath() string {
	return filepath.Join(c.Paths.StateDir, "qweend.pid")
}

// DaemonLogPath returns the daemon log file.
func (c *Config) DaemonLogPath() string {
	return filepath.Join(c.Paths.LogDir, "qweend.log")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
