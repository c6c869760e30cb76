package preflight

import (
	"context"

	"qween/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes all preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	return []Result{
		CheckCredentials(cfg.Credentials),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckCameraDevice(cfg.Camera.Device),
		CheckEngine(ctx, cfg.Engine.URL),
	}
}

// Failed returns only the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
