package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"qween/internal/ipc"
)

func newPresetCommand(ctx *commandContext) *cobra.Command {
	presetCmd := &cobra.Command{
		Use:   "preset",
		Short: "Save, load and share parameter presets",
	}

	presetCmd.AddCommand(newPresetListCommand(ctx))
	presetCmd.AddCommand(newPresetSaveCommand(ctx))
	presetCmd.AddCommand(newPresetLoadCommand(ctx))
	presetCmd.AddCommand(newPresetDeleteCommand(ctx))
	presetCmd.AddCommand(newPresetExportCommand(ctx))
	presetCmd.AddCommand(newPresetImportCommand(ctx))

	return presetCmd
}

func newPresetListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.ListPresets()
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, resp.Presets)
				}
				out := cmd.OutOrStdout()
				if len(resp.Presets) == 0 {
					fmt.Fprintln(out, "No presets saved")
					return nil
				}
				rows := make([][]string, 0, len(resp.Presets))
				for _, p := range resp.Presets {
					rows = append(rows, []string{
						p.Name,
						onOff(p.Enabled),
						strconv.Itoa(p.Parameters.Whiten),
						strconv.Itoa(p.Parameters.Dermabrasion),
						p.UpdatedAt.Local().Format(time.DateTime),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Name", "Effects", "Whiten", "Smooth", "Updated"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output presets as JSON")
	return cmd
}

func newPresetSaveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "save <name>",
		Short: "Save the current parameters as a preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.SavePreset(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved preset %q\n", resp.Preset.Name)
				return nil
			})
		},
	}
}

func newPresetLoadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "load <name>",
		Short: "Apply a saved preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.LoadPreset(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Loaded preset %q (effects %s)\n", resp.Preset.Name, onOff(resp.Preset.Enabled))
				return nil
			})
		},
	}
}

func newPresetDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a saved preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.DeletePreset(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted preset %q\n", args[0])
				return nil
			})
		},
	}
}

func newPresetExportCommand(ctx *commandContext) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export <name>",
		Short: "Write a preset as TOML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.ExportPreset(args[0])
				if err != nil {
					return err
				}
				if outPath == "" || outPath == "-" {
					_, err := io.WriteString(cmd.OutOrStdout(), resp.Document)
					return err
				}
				if err := os.WriteFile(outPath, []byte(resp.Document), 0o644); err != nil {
					return fmt.Errorf("write preset: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported preset %q to %s\n", args[0], outPath)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Destination file (default stdout)")
	return cmd
}

func newPresetImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Store a preset from a TOML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read preset: %w", err)
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.ImportPreset(string(data))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported preset %q\n", resp.Preset.Name)
				return nil
			})
		},
	}
}
