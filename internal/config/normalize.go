package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// envCredentials mirrors Credentials for environment parsing.
type envCredentials struct {
	AppID      string `env:"QWEEN_APP_ID"`
	LicenseKey string `env:"QWEEN_LICENSE_KEY"`
	SecretKey  string `env:"QWEEN_SECRET_KEY"`
}

type envTelemetry struct {
	Endpoint string `env:"QWEEN_OTEL_ENDPOINT"`
	Enabled  string `env:"QWEEN_OTEL_ENABLED"`
}

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	environment, err := c.environment()
	if err != nil {
		return err
	}
	if err := c.normalizeCredentials(environment); err != nil {
		return err
	}
	c.normalizeCamera()
	c.normalizeEngine()
	c.normalizeLogging()
	return c.normalizeTelemetry(environment)
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.StateDir, "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.SocketPath) == "" {
		c.Paths.SocketPath = filepath.Join(c.Paths.StateDir, defaultSocketName)
	}
	if c.Paths.SocketPath, err = expandPath(c.Paths.SocketPath); err != nil {
		return fmt.Errorf("paths.socket_path: %w", err)
	}
	if strings.TrimSpace(c.Paths.EnvFile) != "" {
		if c.Paths.EnvFile, err = expandPath(c.Paths.EnvFile); err != nil {
			return fmt.Errorf("paths.env_file: %w", err)
		}
	}
	return nil
}

// environment merges the optional .env file with the process environment.
// Process variables win, matching godotenv.Load semantics.
func (c *Config) environment() (map[string]string, error) {
	merged := env.ToMap(os.Environ())
	dotenv, err := loadDotEnv(c.Paths.EnvFile)
	if err != nil {
		return nil, fmt.Errorf("paths.env_file: %w", err)
	}
	for key, value := range dotenv {
		if _, ok := merged[key]; !ok {
			merged[key] = value
		}
	}
	return merged, nil
}

// loadDotEnv reads environment variables from path. Missing files are ignored.
func loadDotEnv(path string) (map[string]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return values, err
}

func (c *Config) normalizeCredentials(environment map[string]string) error {
	var fromEnv envCredentials
	if err := env.ParseWithOptions(&fromEnv, env.Options{Environment: environment}); err != nil {
		return fmt.Errorf("parse credentials from environment: %w", err)
	}
	if value := strings.TrimSpace(fromEnv.AppID); value != "" {
		c.Credentials.AppID = value
	}
	if value := strings.TrimSpace(fromEnv.LicenseKey); value != "" {
		c.Credentials.LicenseKey = value
	}
	if value := strings.TrimSpace(fromEnv.SecretKey); value != "" {
		c.Credentials.SecretKey = value
	}
	c.Credentials.AppID = strings.TrimSpace(c.Credentials.AppID)
	c.Credentials.LicenseKey = strings.TrimSpace(c.Credentials.LicenseKey)
	c.Credentials.SecretKey = strings.TrimSpace(c.Credentials.SecretKey)
	return nil
}

func (c *Config) normalizeCamera() {
	c.Camera.Device = strings.TrimSpace(c.Camera.Device)
	if c.Camera.IdealWidth <= 0 {
		c.Camera.IdealWidth = defaultIdealWidth
	}
	if c.Camera.IdealHeight <= 0 {
		c.Camera.IdealHeight = defaultIdealHeight
	}
	if c.Camera.FallbackWidth <= 0 {
		c.Camera.FallbackWidth = defaultFallbackWidth
	}
	if c.Camera.FallbackHeight <= 0 {
		c.Camera.FallbackHeight = defaultFallbackHeight
	}
	if c.Camera.ProbeTimeoutSeconds <= 0 {
		c.Camera.ProbeTimeoutSeconds = defaultProbeTimeoutSeconds
	}
}

func (c *Config) normalizeEngine() {
	c.Engine.URL = strings.TrimSpace(c.Engine.URL)
	if c.Engine.URL == "" {
		c.Engine.URL = defaultEngineURL
	}
	if c.Engine.HandshakeTimeoutSeconds <= 0 {
		c.Engine.HandshakeTimeoutSeconds = defaultHandshakeTimeout
	}
	if c.Engine.LoadingLineWidth <= 0 {
		c.Engine.LoadingLineWidth = defaultLoadingLineWidth
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeTelemetry(environment map[string]string) error {
	var fromEnv envTelemetry
	if err := env.ParseWithOptions(&fromEnv, env.Options{Environment: environment}); err != nil {
		return fmt.Errorf("parse telemetry from environment: %w", err)
	}
	if endpoint := strings.TrimSpace(fromEnv.Endpoint); endpoint != "" {
		c.Telemetry.Endpoint = endpoint
		c.Telemetry.Enabled = true
	}
	if strings.EqualFold(strings.TrimSpace(fromEnv.Enabled), "false") {
		c.Telemetry.Enabled = false
	}
	c.Telemetry.Endpoint = strings.TrimSpace(c.Telemetry.Endpoint)
	return nil
}
