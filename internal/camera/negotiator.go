package camera

import (
	"context"
	"log/slog"
	"time"

	"qween/internal/logging"
)

// Negotiator picks the capture profile for a session.
type Negotiator struct {
	prober   Prober
	ideal    Profile
	fallback Profile
	timeout  time.Duration
	logger   *slog.Logger
}

// NegotiatorOption customises a Negotiator.
type NegotiatorOption func(*Negotiator)

// WithProfiles overrides the ideal and fallback profiles.
func WithProfiles(ideal, fallback Profile) NegotiatorOption {
	return func(n *Negotiator) {
		if !ideal.IsZero() {
			n.ideal = ideal
		}
		if !fallback.IsZero() {
			n.fallback = fallback
		}
	}
}

// WithProbeTimeout bounds a single probe.
func WithProbeTimeout(d time.Duration) NegotiatorOption {
	return func(n *Negotiator) { n.timeout = d }
}

// NewNegotiator returns a negotiator that probes through prober.
func NewNegotiator(prober Prober, logger *slog.Logger, opts ...NegotiatorOption) *Negotiator {
	n := &Negotiator{
		prober:   prober,
		ideal:    IdealProfile(),
		fallback: FallbackProfile(),
		logger:   logging.NewComponentLogger(logger, "camera"),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Negotiate probes the device and returns the profile to use. It never fails:
// probe errors are logged and the fallback profile is returned. The probe
// stream is released before Negotiate returns.
func (n *Negotiator) Negotiate(ctx context.Context) Profile {
	if n.prober == nil {
		return n.fallback
	}
	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	stream, err := n.prober.Open(ctx, n.ideal)
	if err != nil {
		logging.WarnWithContext(n.logger, "camera probe failed; using fallback resolution", "camera_probe_failed",
			logging.Error(err),
			logging.String("fallback", n.fallback.String()),
			logging.String(logging.FieldErrorHint, "check camera permissions and that no other process holds the device"),
			logging.String(logging.FieldImpact, "session starts at fallback resolution"),
		)
		return n.fallback
	}
	settings := stream.Settings()
	if err := stream.Close(); err != nil {
		n.logger.Debug("camera probe close failed", logging.Error(err))
	}

	if settings.Width > 0 && settings.Height > 0 {
		profile := Profile{Width: settings.Width, Height: settings.Height}
		n.logger.Info("camera profile negotiated",
			logging.String(logging.FieldEventType, "camera_negotiated"),
			logging.String("requested", n.ideal.String()),
			logging.String("granted", profile.String()),
		)
		return profile
	}

	n.logger.Info("camera did not report dimensions; using fallback resolution",
		logging.String(logging.FieldEventType, "camera_negotiated"),
		logging.Int("reported_width", settings.Width),
		logging.Int("reported_height", settings.Height),
		logging.String("granted", n.fallback.String()),
	)
	return n.fallback
}
