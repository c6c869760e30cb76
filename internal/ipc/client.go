package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func call[Req, Resp any](c *Client, method string, req Req) (*Resp, error) {
	var resp Resp
	if err := c.client.Call(serviceName+"."+method, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves the mirror status.
func (c *Client) Status() (*StatusResponse, error) {
	return call[StatusRequest, StatusResponse](c, "Status", StatusRequest{})
}

// Parameters retrieves the stored parameters.
func (c *Client) Parameters() (*ParametersResponse, error) {
	return call[ParametersRequest, ParametersResponse](c, "Parameters", ParametersRequest{})
}

// Update sets one slider.
func (c *Client) Update(key string, value int) (*UpdateResponse, error) {
	return call[UpdateRequest, UpdateResponse](c, "Update", UpdateRequest{Key: key, Value: value})
}

// SetEnabled switches effects on or off.
func (c *Client) SetEnabled(enabled bool) (*SetEnabledResponse, error) {
	return call[SetEnabledRequest, SetEnabledResponse](c, "SetEnabled", SetEnabledRequest{Enabled: enabled})
}

// Toggle flips the enabled flag.
func (c *Client) Toggle() (*ToggleResponse, error) {
	return call[ToggleRequest, ToggleResponse](c, "Toggle", ToggleRequest{})
}

// Reset restores the default parameters.
func (c *Client) Reset() (*ResetResponse, error) {
	return call[ResetRequest, ResetResponse](c, "Reset", ResetRequest{})
}

// SavePreset stores the current parameters under name.
func (c *Client) SavePreset(name string) (*SavePresetResponse, error) {
	return call[SavePresetRequest, SavePresetResponse](c, "SavePreset", SavePresetRequest{Name: name})
}

// LoadPreset applies a saved preset.
func (c *Client) LoadPreset(name string) (*LoadPresetResponse, error) {
	return call[LoadPresetRequest, LoadPresetResponse](c, "LoadPreset", LoadPresetRequest{Name: name})
}

// ListPresets lists saved presets.
func (c *Client) ListPresets() (*ListPresetsResponse, error) {
	return call[ListPresetsRequest, ListPresetsResponse](c, "ListPresets", ListPresetsRequest{})
}

// DeletePreset removes a saved preset.
func (c *Client) DeletePreset(name string) (*DeletePresetResponse, error) {
	return call[DeletePresetRequest, DeletePresetResponse](c, "DeletePreset", DeletePresetRequest{Name: name})
}

// ExportPreset renders a saved preset as TOML.
func (c *Client) ExportPreset(name string) (*ExportPresetResponse, error) {
	return call[ExportPresetRequest, ExportPresetResponse](c, "ExportPreset", ExportPresetRequest{Name: name})
}

// ImportPreset stores a TOML preset document.
func (c *Client) ImportPreset(document string) (*ImportPresetResponse, error) {
	return call[ImportPresetRequest, ImportPresetResponse](c, "ImportPreset", ImportPresetRequest{Document: document})
}

// Remount restarts the mirror session and waits for it to settle.
func (c *Client) Remount(timeoutSeconds int) (*RemountResponse, error) {
	return call[RemountRequest, RemountResponse](c, "Remount", RemountRequest{TimeoutSeconds: timeoutSeconds})
}
