package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"
	"time"

	"qween/internal/logging"
	"qween/internal/mirror"
	"qween/internal/presets"
)

const (
	serviceName           = "Qween"
	defaultRemountTimeout = 30 * time.Second
)

// Server exposes mirror control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	mirror    *mirror.Mirror
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, m *mirror.Mirror, logger *slog.Logger) (*Server, error) {
	if m == nil {
		return nil, errors.New("ipc server requires mirror")
	}
	logger = logging.NewComponentLogger(logger, "ipc")

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{mirror: m, logger: logger, ctx: ctx}
	if err := rpcServer.RegisterName(serviceName, srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		mirror:    m,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				if errors.Is(err, net.ErrClosed) {
					return
				}
				logging.WarnWithContext(s.logger, "accept failed", "ipc_accept_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "CLI clients may fail to connect"),
					logging.String(logging.FieldErrorHint, "check socket permissions and restart the daemon if needed"),
				)
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		logging.WarnWithContext(s.logger, "failed to remove socket", "ipc_socket_cleanup_failed",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "stale socket may block future starts"),
			logging.String(logging.FieldErrorHint, "remove the socket file manually"),
		)
	}
}

type service struct {
	mirror *mirror.Mirror
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.mirror.Status()
	*resp = StatusResponse{
		Running:      status.Running,
		Session:      status.Session,
		Parameters:   status.Parameters,
		Effective:    status.Effective,
		Bridge:       status.Bridge,
		Device:       status.Device,
		Hotplug:      status.Hotplug,
		LockPath:     status.LockPath,
		PresetDBPath: status.PresetDBPath,
		PID:          status.PID,
	}
	return nil
}

func (s *service) Parameters(_ ParametersRequest, resp *ParametersResponse) error {
	status := s.mirror.Status()
	resp.Parameters = status.Parameters.Parameters
	resp.Enabled = status.Parameters.Enabled
	resp.Effective = status.Effective
	return nil
}

func (s *service) Update(req UpdateRequest, resp *UpdateResponse) error {
	params, err := s.mirror.Update(req.Key, req.Value)
	if err != nil {
		return err
	}
	resp.Key = req.Key
	resp.Parameters = params
	s.logger.Debug("parameter updated via IPC",
		logging.String("key", req.Key),
		logging.Int("value", req.Value),
	)
	return nil
}

func (s *service) SetEnabled(req SetEnabledRequest, resp *SetEnabledResponse) error {
	resp.Enabled = s.mirror.SetEnabled(req.Enabled).Enabled
	return nil
}

func (s *service) Toggle(_ ToggleRequest, resp *ToggleResponse) error {
	resp.Enabled = s.mirror.Toggle()
	return nil
}

func (s *service) Reset(_ ResetRequest, resp *ResetResponse) error {
	resp.Parameters = s.mirror.Reset()
	s.logger.Info("parameters reset via IPC", logging.String(logging.FieldEventType, "params_reset"))
	return nil
}

func (s *service) SavePreset(req SavePresetRequest, resp *SavePresetResponse) error {
	preset, err := s.mirror.SavePreset(s.ctx, req.Name)
	if err != nil {
		return err
	}
	resp.Preset = preset
	return nil
}

func (s *service) LoadPreset(req LoadPresetRequest, resp *LoadPresetResponse) error {
	preset, err := s.mirror.LoadPreset(s.ctx, req.Name)
	if err != nil {
		return err
	}
	resp.Preset = preset
	return nil
}

func (s *service) ListPresets(_ ListPresetsRequest, resp *ListPresetsResponse) error {
	list, err := s.mirror.ListPresets(s.ctx)
	if err != nil {
		return err
	}
	resp.Presets = list
	return nil
}

func (s *service) DeletePreset(req DeletePresetRequest, resp *DeletePresetResponse) error {
	if err := s.mirror.DeletePreset(s.ctx, req.Name); err != nil {
		return err
	}
	resp.Deleted = true
	return nil
}

func (s *service) ExportPreset(req ExportPresetRequest, resp *ExportPresetResponse) error {
	preset, err := s.mirror.Preset(s.ctx, req.Name)
	if err != nil {
		return err
	}
	data, err := presets.Export(preset)
	if err != nil {
		return err
	}
	resp.Document = string(data)
	return nil
}

func (s *service) ImportPreset(req ImportPresetRequest, resp *ImportPresetResponse) error {
	preset, err := presets.Import([]byte(req.Document))
	if err != nil {
		return err
	}
	stored, err := s.mirror.ImportPreset(s.ctx, preset)
	if err != nil {
		return err
	}
	resp.Preset = stored
	return nil
}

func (s *service) Remount(req RemountRequest, resp *RemountResponse) error {
	timeout := defaultRemountTimeout
	if req.TimeoutSeconds > 0 {
		timeout = time.Duration(req.TimeoutSeconds) * time.Second
	}
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	s.logger.Info("remount requested via IPC", logging.String(logging.FieldEventType, "mirror_remount"))
	status, err := s.mirror.Remount(ctx)
	resp.Session = status
	if errors.Is(err, context.DeadlineExceeded) {
		resp.TimedOut = true
		return nil
	}
	return err
}
