package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roso1102/reboard/internal/export"
	"github.com/roso1102/reboard/internal/store"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export catalog or orders to XLSX",
}

var exportComponentsCmd = &cobra.Command{
	Use:   "components",
	Short: "Export the component catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		e, err := initEnv(ctx, "cli")
		if err != nil {
			return err
		}
		defer e.Close()

		components, err := e.market.Components(ctx, store.ComponentFilter{})
		if err != nil {
			return err
		}
		if err := export.Components(exportOut, components); err != nil {
			return eris.Wrap(err, "export components")
		}
		zap.L().Info("catalog exported", zap.String("path", exportOut), zap.Int("rows", len(components)))
		return nil
	},
}

var exportOrdersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Export placed orders",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		e, err := initEnv(ctx, "cli")
		if err != nil {
			return err
		}
		defer e.Close()

		orders, err := e.market.Orders(ctx, 0)
		if err != nil {
			return err
		}
		if err := export.Orders(exportOut, orders); err != nil {
			return eris.Wrap(err, "export orders")
		}
		zap.L().Info("orders exported", zap.String("path", exportOut), zap.Int("orders", len(orders)))
		return nil
	},
}

func init() {
	exportCmd.PersistentFlags().StringVar(&exportOut, "out", "reboard.xlsx", "output file path")
	exportCmd.AddCommand(exportComponentsCmd, exportOrdersCmd)
	rootCmd.AddCommand(exportCmd)
}
