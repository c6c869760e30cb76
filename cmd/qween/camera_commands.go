package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"qween/internal/camera"
	"qween/internal/logging"
)

func newCamerasCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:         "cameras",
		Short:       "List video4linux capture devices",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			devices, err := camera.ListDevices()
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, devices)
			}
			out := cmd.OutOrStdout()
			if len(devices) == 0 {
				fmt.Fprintln(out, "No cameras found")
				return nil
			}
			rows := make([][]string, 0, len(devices))
			for _, d := range devices {
				rows = append(rows, []string{d.Path, d.Name})
			}
			fmt.Fprintln(out, renderTable([]string{"Device", "Name"}, rows, nil))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output devices as JSON")
	return cmd
}

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var device string

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Negotiate a capture resolution the way a session would",
		Long: "Probe opens the camera with the ideal resolution, reads back what the\n" +
			"driver granted and releases the device. Run it while the daemon is\n" +
			"stopped; a mirror holding the camera reports busy.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			dev := strings.TrimSpace(device)
			if dev == "" {
				dev = cfg.Camera.Device
			}

			prober := camera.NewV4L2Prober(dev, filepath.Join(cfg.Paths.StateDir, "locks"))
			ideal := camera.Profile{Width: cfg.Camera.IdealWidth, Height: cfg.Camera.IdealHeight}
			fallback := camera.Profile{Width: cfg.Camera.FallbackWidth, Height: cfg.Camera.FallbackHeight}

			out := cmd.OutOrStdout()
			probeCtx, cancel := timeoutContext(cmd, time.Duration(cfg.Camera.ProbeTimeoutSeconds)*time.Second)
			defer cancel()
			stream, err := prober.Open(probeCtx, ideal)
			if err != nil {
				fmt.Fprintf(out, "Probe failed: %v\n", err)
				fmt.Fprintf(out, "Sessions would use the fallback %s\n", fallback)
				return nil
			}
			settings := stream.Settings()
			_ = stream.Close()

			negotiated := camera.NewNegotiator(prober, logging.NewNop(),
				camera.WithProfiles(ideal, fallback),
				camera.WithProbeTimeout(time.Duration(cfg.Camera.ProbeTimeoutSeconds)*time.Second),
			).Negotiate(cmd.Context())

			fmt.Fprintln(out, renderTable(
				[]string{"Device", "Requested", "Granted", "Format", "Session"},
				[][]string{{
					dev,
					ideal.String(),
					fmt.Sprintf("%dx%d", settings.Width, settings.Height),
					settings.PixelFormat,
					negotiated.String(),
				}},
				nil,
			))
			return nil
		},
	}
	cmd.Flags().StringVar(&device, "device", "", "Capture device (default camera.device)")
	return cmd
}
