package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/roso1102/reboard/internal/model"
	"github.com/roso1102/reboard/internal/store"
)

var (
	invCategory string
	invStatus   string
	invGrade    string
	invListNow  bool
)

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Manage the component catalog",
}

var inventoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog components",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		e, err := initEnv(ctx, "cli")
		if err != nil {
			return err
		}
		defer e.Close()

		components, err := e.market.Components(ctx, store.ComponentFilter{
			Category: invCategory,
			Status:   model.ComponentStatus(invStatus),
			Grade:    model.Grade(invGrade),
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(components)
	},
}

var inventoryAddCmd = &cobra.Command{
	Use:   "add <file>",
	Short: "Add a pre-graded component from a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		raw, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrapf(err, "read component file %s", args[0])
		}
		var c model.Component
		if err := json.Unmarshal(raw, &c); err != nil {
			return eris.Wrapf(err, "parse component file %s", args[0])
		}

		e, err := initEnv(ctx, "cli")
		if err != nil {
			return err
		}
		defer e.Close()

		added, err := e.market.AddComponent(ctx, c, invListNow)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(added)
	},
}

var inventoryShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one component",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		e, err := initEnv(ctx, "cli")
		if err != nil {
			return err
		}
		defer e.Close()

		c, err := e.market.Component(ctx, args[0])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	},
}

var inventoryPublishCmd = &cobra.Command{
	Use:   "publish <id>",
	Short: "List a component on the marketplace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		e, err := initEnv(ctx, "cli")
		if err != nil {
			return err
		}
		defer e.Close()

		return e.market.List(ctx, args[0])
	},
}

var inventoryUnlistCmd = &cobra.Command{
	Use:   "unlist <id>",
	Short: "Take a component off the marketplace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		e, err := initEnv(ctx, "cli")
		if err != nil {
			return err
		}
		defer e.Close()

		return e.market.Unlist(ctx, args[0])
	},
}

func init() {
	inventoryListCmd.Flags().StringVar(&invCategory, "category", "", "filter by category")
	inventoryListCmd.Flags().StringVar(&invStatus, "status", "", "filter by status: internal|listed|sold")
	inventoryListCmd.Flags().StringVar(&invGrade, "grade", "", "filter by grade (A-D)")

	inventoryAddCmd.Flags().BoolVar(&invListNow, "list", false, "list on the marketplace immediately")

	inventoryCmd.AddCommand(inventoryListCmd, inventoryAddCmd, inventoryShowCmd, inventoryPublishCmd, inventoryUnlistCmd)
	rootCmd.AddCommand(inventoryCmd)
}
