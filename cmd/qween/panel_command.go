package main

import (
	"github.com/spf13/cobra"

	"qween/internal/panel"
)

func newPanelCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "panel",
		Short: "Interactive slider panel for the running mirror",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.dialClient()
			if err != nil {
				return err
			}
			defer client.Close()
			return panel.Run(cmd.Context(), client)
		},
	}
}
