package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"qween/internal/beauty"
	"qween/internal/ipc"
)

func newParameterCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newParamsCommand(ctx),
		newSetCommand(ctx),
		newEnableCommand(ctx, true),
		newEnableCommand(ctx, false),
		newToggleCommand(ctx),
		newResetCommand(ctx),
	}
}

func newParamsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "params",
		Short: "List beauty parameters and the values sent to the engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Parameters()
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, resp)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Effects: %s\n", onOff(resp.Enabled))
				fmt.Fprintln(out, renderParameters(resp.Parameters, resp.Effective))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output parameters as JSON")
	return cmd
}

func renderParameters(params beauty.Parameters, effective beauty.Effective) string {
	values := effective.Values()
	engineValue := make(map[beauty.Key]float64, len(values))
	for i, k := range beauty.Keys() {
		engineValue[k] = values[i]
	}
	var rows [][]string
	for _, group := range beauty.Groups() {
		for _, k := range group.Keys {
			stored, _ := params.Get(k)
			rows = append(rows, []string{
				group.Name,
				k.Label(),
				k.Snake(),
				strconv.Itoa(stored),
				strconv.FormatFloat(engineValue[k], 'f', 2, 64),
			})
		}
	}
	return renderTable(
		[]string{"Group", "Parameter", "Key", "Value", "Engine"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight},
	)
}

func newSetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set one parameter (0-100, clamped)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := beauty.ParseKey(args[0])
			if err != nil {
				return err
			}
			value, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("parse value %q: %w", args[1], err)
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Update(k.String(), value)
				if err != nil {
					return err
				}
				stored, _ := resp.Parameters.Get(k)
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %d\n", k.Label(), stored)
				return nil
			})
		},
	}
}

func newEnableCommand(ctx *commandContext, enabled bool) *cobra.Command {
	use, short := "enable", "Turn beauty effects on"
	if !enabled {
		use, short = "disable", "Turn beauty effects off (stored values are kept)"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.SetEnabled(enabled)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Effects %s\n", onOff(resp.Enabled))
				return nil
			})
		},
	}
}

func newToggleCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle",
		Short: "Flip beauty effects on or off",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Toggle()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Effects %s\n", onOff(resp.Enabled))
				return nil
			})
		},
	}
}

func newResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore default parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Reset()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Parameters reset (whiten %d, smooth %d)\n",
					resp.Parameters.Whiten, resp.Parameters.Dermabrasion)
				return nil
			})
		},
	}
}

func newRemountCommand(ctx *commandContext) *cobra.Command {
	var timeout int

	cmd := &cobra.Command{
		Use:   "remount",
		Short: "Tear down the mirror session and start a new one",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Remount(timeout)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if resp.TimedOut {
					fmt.Fprintln(out, "Session still initializing; check `qween status`")
					return nil
				}
				_, msg := describeSession(resp.Session)
				fmt.Fprintf(out, "Session %s\n", msg)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&timeout, "timeout", 30, "Seconds to wait for the session to settle")
	return cmd
}
