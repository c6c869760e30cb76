package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"qween/internal/auth"
)

func newSignCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Print a fresh engine authentication signature",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if missing := cfg.Credentials.Missing(); len(missing) > 0 {
				return errors.New("missing credentials: " + strings.Join(missing, ", "))
			}
			sig := auth.NewSigner(cfg.Credentials.AppID, cfg.Credentials.SecretKey).Sign()
			if jsonOutput {
				return writeJSON(cmd, sig)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "timestamp: %d\n", sig.Timestamp)
			fmt.Fprintf(out, "signature: %s\n", sig.Signature)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the signature as JSON")
	return cmd
}
