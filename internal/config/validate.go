package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable. Credentials are not checked
// here; their absence is reported by the session as a failed mount.
func (c *Config) Validate() error {
	if err := c.validateCamera(); err != nil {
		return err
	}
	if err := c.validateEngine(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return c.validateTelemetry()
}

func (c *Config) validateCamera() error {
	if c.Camera.Device == "" {
		return errors.New("camera.device must be set")
	}
	if !strings.HasPrefix(c.Camera.Device, "/dev/") {
		return fmt.Errorf("camera.device must be a device node under /dev, got %q", c.Camera.Device)
	}
	if c.Camera.FallbackWidth > c.Camera.IdealWidth || c.Camera.FallbackHeight > c.Camera.IdealHeight {
		return errors.New("camera fallback resolution must not exceed the ideal resolution")
	}
	return nil
}

func (c *Config) validateEngine() error {
	parsed, err := url.Parse(c.Engine.URL)
	if err != nil {
		return fmt.Errorf("engine.url: %w", err)
	}
	switch parsed.Scheme {
	case "ws", "wss", "http", "https":
	default:
		return fmt.Errorf("engine.url must use ws, wss, http or https, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return errors.New("engine.url must include a host")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateTelemetry() error {
	if c.Telemetry.Enabled && c.Telemetry.Endpoint == "" {
		return errors.New("telemetry.endpoint must be set when telemetry.enabled is true")
	}
	return nil
}
