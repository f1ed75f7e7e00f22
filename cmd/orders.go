package main

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/roso1102/reboard/internal/model"
)

var (
	ordersLimit int
	orderBuyer  string
	orderItems  []string
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Inspect and update placed orders",
}

var ordersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List orders, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		e, err := initEnv(ctx, "cli")
		if err != nil {
			return err
		}
		defer e.Close()

		orders, err := e.market.Orders(ctx, ordersLimit)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(orders)
	},
}

var ordersPlaceCmd = &cobra.Command{
	Use:   "place",
	Short: "Place an order for listed components",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		items, err := parseOrderItems(orderItems)
		if err != nil {
			return err
		}

		e, err := initEnv(ctx, "cli")
		if err != nil {
			return err
		}
		defer e.Close()

		order, err := e.market.PlaceOrderItems(ctx, orderBuyer, items)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(order)
	},
}

// parseOrderItems turns "id" or "id:qty" flags into cart lines.
func parseOrderItems(specs []string) ([]model.CartItem, error) {
	items := make([]model.CartItem, 0, len(specs))
	for _, s := range specs {
		id, qtyStr, found := strings.Cut(s, ":")
		qty := 1
		if found {
			n, err := strconv.Atoi(qtyStr)
			if err != nil {
				return nil, eris.Errorf("invalid item %q, want id or id:qty", s)
			}
			qty = n
		}
		if id == "" {
			return nil, eris.Errorf("invalid item %q, want id or id:qty", s)
		}
		items = append(items, model.CartItem{ComponentID: id, Quantity: qty})
	}
	return items, nil
}

var ordersShipCmd = &cobra.Command{
	Use:   "ship <id>",
	Short: "Mark an order as shipped",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setOrderStatus(cmd, args[0], model.OrderShipped)
	},
}

var ordersDeliverCmd = &cobra.Command{
	Use:   "deliver <id>",
	Short: "Mark an order as delivered",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setOrderStatus(cmd, args[0], model.OrderDelivered)
	},
}

func setOrderStatus(cmd *cobra.Command, id string, status model.OrderStatus) error {
	ctx := cmd.Context()

	e, err := initEnv(ctx, "cli")
	if err != nil {
		return err
	}
	defer e.Close()

	return e.market.UpdateOrderStatus(ctx, id, status)
}

func init() {
	ordersListCmd.Flags().IntVar(&ordersLimit, "limit", 50, "maximum orders to list")
	ordersPlaceCmd.Flags().StringVar(&orderBuyer, "buyer", "", "buyer name")
	ordersPlaceCmd.Flags().StringArrayVar(&orderItems, "item", nil, "component to buy, as id or id:qty (repeatable)")
	ordersCmd.AddCommand(ordersListCmd, ordersPlaceCmd, ordersShipCmd, ordersDeliverCmd)
	rootCmd.AddCommand(ordersCmd)
}
