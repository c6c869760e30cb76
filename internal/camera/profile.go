package camera

import (
	"context"
	"fmt"
)

// Profile is a negotiated capture resolution.
type Profile struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (p Profile) String() string {
	return fmt.Sprintf("%dx%d", p.Width, p.Height)
}

// IsZero reports whether the profile is unset.
func (p Profile) IsZero() bool {
	return p.Width == 0 && p.Height == 0
}

// IdealProfile is requested first.
func IdealProfile() Profile { return Profile{Width: 1920, Height: 1080} }

// FallbackProfile is adopted when the device does not report both dimensions.
func FallbackProfile() Profile { return Profile{Width: 640, Height: 480} }

// TrackSettings is what the device reports after a probe. Zero means the
// dimension was not reported.
type TrackSettings struct {
	Width       int
	Height      int
	PixelFormat string
}

// Stream is an open probe of the capture device.
type Stream interface {
	Settings() TrackSettings
	Close() error
}

// Prober opens the capture device requesting ideal as a preference.
type Prober interface {
	Open(ctx context.Context, ideal Profile) (Stream, error)
}
