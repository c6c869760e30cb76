package wsengine

import (
	"qween/internal/auth"
	"qween/internal/beauty"
	"qween/internal/engine"
)

const (
	msgCreate      = "create"
	msgAuth        = "auth"
	msgGetOutput   = "get_output"
	msgSetBeautify = "set_beautify"
	msgClose       = "close"

	msgCreated     = "created"
	msgReady       = "ready"
	msgError       = "error"
	msgAuthRequest = "auth_request"
	msgOutput      = "output"
)

// message is the single envelope used in both directions.
type message struct {
	Type       string                `json:"type"`
	ID         string                `json:"id,omitempty"`
	AppID      string                `json:"appId,omitempty"`
	LicenseKey string                `json:"licenseKey,omitempty"`
	Camera     *engine.CameraConfig  `json:"camera,omitempty"`
	Loading    *engine.LoadingConfig `json:"loading,omitempty"`
	Beautify   *beauty.Effective     `json:"beautify,omitempty"`
	Signature  *auth.Signature       `json:"signature,omitempty"`
	Output     *engine.MediaStream   `json:"output,omitempty"`
	Error      *engine.Error         `json:"error,omitempty"`
}

func createMessage(cfg engine.Config) message {
	cam := cfg.Camera
	loading := cfg.Loading
	values := cfg.Beautify
	return message{
		Type:       msgCreate,
		AppID:      cfg.AppID,
		LicenseKey: cfg.LicenseKey,
		Camera:     &cam,
		Loading:    &loading,
		Beautify:   &values,
	}
}
