package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var pinoutModel string

var pinoutCmd = &cobra.Command{
	Use:   "pinout <component>",
	Short: "Show a pin-out / wiring reference for a component type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		e, err := initEnv(ctx, "cli")
		if err != nil {
			return err
		}
		defer e.Close()

		ref := circuitFor(ctx, e, args[0], pinoutModel)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(ref)
	},
}

func init() {
	pinoutCmd.Flags().StringVar(&pinoutModel, "model", "", "model identifier for a part-specific diagram")
	rootCmd.AddCommand(pinoutCmd)
}
