// Package daemonrun wires the qween daemon process: logging, telemetry,
// preset storage, the mirror and its control socket.
package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"

	"qween/internal/config"
	"qween/internal/ipc"
	"qween/internal/logging"
	"qween/internal/mirror"
	"qween/internal/preflight"
	"qween/internal/presets"
	"qween/internal/telemetry"
)

const shutdownTimeout = 5 * time.Second

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
	// Diagnostic forces debug logging and tags every record with a run id.
	Diagnostic bool
}

// Run starts the qween daemon and blocks until SIGINT, SIGTERM or cmdCtx
// cancellation.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	level := opts.LogLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	var runID string
	if opts.Diagnostic {
		level = "debug"
		runID = uuid.NewString()
	}
	logger, err := logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout", cfg.DaemonLogPath()},
		Development: opts.Development,
		SessionID:   runID,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	pidPath := cfg.PIDPath()
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	shutdownTracing, err := telemetry.Setup(signalCtx, cfg.Telemetry)
	if err != nil {
		logging.WarnWithContext(logger, "telemetry setup failed", "telemetry_setup_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "session traces are not exported"),
			logging.String(logging.FieldErrorHint, "check telemetry.endpoint"),
		)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Debug("telemetry shutdown failed", logging.Error(err))
		}
	}()

	logPreflight(signalCtx, logger, cfg)

	store, err := presets.Open(cfg)
	if err != nil {
		logger.Error("open preset store", logging.Error(err))
		return err
	}

	m, err := mirror.New(mirror.Options{
		Config:  cfg,
		Presets: store,
		Logger:  logger,
	})
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("create mirror: %w", err)
	}
	defer m.Close()

	if err := m.Start(signalCtx); err != nil {
		logging.ErrorWithContext(logger, "mirror start failed", "mirror_start_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "stop the other qweend instance or remove a stale lock"),
		)
		return err
	}

	ipcServer, err := ipc.NewServer(signalCtx, cfg.Paths.SocketPath, m, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	<-signalCtx.Done()
	logger.Info("qween daemon shutting down", logging.String(logging.FieldEventType, "daemon_shutdown"))
	return nil
}

func logPreflight(ctx context.Context, logger *slog.Logger, cfg *config.Config) {
	results := preflight.RunAll(ctx, cfg)
	for _, r := range preflight.Failed(results) {
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", r.Name),
			logging.String("detail", r.Detail),
			logging.String(logging.FieldImpact, "the mirror session may fail to start"),
		)
	}
	logger.Info("preflight complete",
		logging.String(logging.FieldEventType, "preflight_complete"),
		logging.Int("checks", len(results)),
		logging.Int("failed", len(preflight.Failed(results))),
	)
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
