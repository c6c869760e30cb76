package config

const (
	defaultStateDir            = "~/.local/share/qween"
	defaultLogDir              = "~/.local/share/qween/logs"
	defaultSocketName          = "qween.sock"
	defaultEnvFile             = ".env"
	defaultCameraDevice        = "/dev/video0"
	defaultIdealWidth          = 1920
	defaultIdealHeight         = 1080
	defaultFallbackWidth       = 640
	defaultFallbackHeight      = 480
	defaultProbeTimeoutSeconds = 10
	defaultEngineURL           = "ws://127.0.0.1:7490/engine"
	defaultHandshakeTimeout    = 30
	defaultLoadingLineWidth    = 4
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
			EnvFile:  defaultEnvFile,
		},
		Camera: Camera{
			Device:              defaultCameraDevice,
			IdealWidth:          defaultIdealWidth,
			IdealHeight:         defaultIdealHeight,
			FallbackWidth:       defaultFallbackWidth,
			FallbackHeight:      defaultFallbackHeight,
			Mirror:              true,
			ProbeTimeoutSeconds: defaultProbeTimeoutSeconds,
			WatchHotplug:        true,
		},
		Engine: Engine{
			URL:                     defaultEngineURL,
			HandshakeTimeoutSeconds: defaultHandshakeTimeout,
			LoadingEnabled:          true,
			LoadingLineWidth:        defaultLoadingLineWidth,
		},
		Beauty: Beauty{
			RestoreLast: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
