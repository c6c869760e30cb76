package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"qween/internal/ipc"
	"qween/internal/preflight"
	"qween/internal/session"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var skipChecks bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show mirror session, effects and environment status",
		RunE: func(cmd *cobra.Command, args []string) error {
			var status *ipc.StatusResponse
			err := ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Status()
				if err != nil {
					return err
				}
				status = resp
				return nil
			})
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, status)
			}

			var checks []preflight.Result
			if !skipChecks {
				if cfg, err := ctx.ensureConfig(); err == nil {
					checks = preflight.RunAll(cmd.Context(), cfg)
				}
			}

			out := cmd.OutOrStdout()
			for _, line := range renderStatus(status, checks, shouldColorize(out)) {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output raw status as JSON")
	cmd.Flags().BoolVar(&skipChecks, "no-checks", false, "Skip environment checks")
	return cmd
}

func renderStatus(status *ipc.StatusResponse, checks []preflight.Result, colorize bool) []string {
	lines := renderSectionHeader("Mirror", colorize)

	daemonKind := statusError
	daemonMsg := "stopped"
	if status.Running {
		daemonKind = statusOK
		daemonMsg = fmt.Sprintf("running (pid %d)", status.PID)
	}
	lines = append(lines, renderStatusLine("Daemon", daemonKind, daemonMsg, colorize))

	kind, msg := describeSession(status.Session)
	lines = append(lines, renderStatusLine("Session", kind, msg, colorize))
	if status.Session.Diagnostic != "" {
		lines = append(lines, renderStatusLine("Diagnostic", statusWarn, status.Session.Diagnostic, colorize))
	}
	lines = append(lines, renderStatusLine("Camera", statusInfo, describeCamera(status), colorize))
	lines = append(lines, renderStatusLine("Effects", statusInfo, onOff(status.Parameters.Enabled), colorize))
	lines = append(lines, renderStatusLine("Sync", statusInfo,
		fmt.Sprintf("%d pushed, %d skipped", status.Bridge.Pushed, status.Bridge.Skipped), colorize))

	if len(checks) > 0 {
		lines = append(lines, "")
		lines = append(lines, renderSectionHeader("Checks", colorize)...)
		for _, check := range checks {
			kind := statusOK
			if !check.Passed {
				kind = statusWarn
			}
			lines = append(lines, renderStatusLine(check.Name, kind, check.Detail, colorize))
		}
	}
	return lines
}

func describeSession(s session.Status) (statusKind, string) {
	switch s.State {
	case session.StateReady:
		msg := "ready"
		if !s.Profile.IsZero() {
			msg += " at " + s.Profile.String()
		}
		return statusOK, msg
	case session.StateInitializing:
		return statusInfo, "initializing"
	case session.StateFailed:
		msg := "failed: " + s.Reason
		if s.Kind != session.FailureNone {
			msg += fmt.Sprintf(" (%s)", s.Kind)
		}
		return statusError, msg
	default:
		return statusWarn, "idle"
	}
}

func describeCamera(status *ipc.StatusResponse) string {
	parts := []string{status.Device}
	if status.Hotplug {
		parts = append(parts, "hotplug watched")
	}
	return strings.Join(parts, ", ")
}
