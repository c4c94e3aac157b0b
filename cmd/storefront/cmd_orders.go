package main

import (
	"github.com/spf13/cobra"

	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/internal/shell"
)

var (
	checkoutForm domain.CheckoutForm
	orderQuery   shell.OrderQuery
)

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Place an order for the current cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		return command(cmd, "/checkout", shell.ActionCheckout, checkoutForm)
	},
}

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Track orders and manage the order ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		return query(cmd, "/orders", shell.ActionOrdersMine, nil)
	},
}

var orderTrackCmd = &cobra.Command{
	Use:   "track <tracking-id>",
	Short: "Look up an order by tracking id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return query(cmd, "/track-order", shell.ActionOrderTrack, args[0])
	},
}

var orderListCmd = &cobra.Command{
	Use:   "list",
	Short: "Page through all orders",
	RunE: func(cmd *cobra.Command, args []string) error {
		return query(cmd, "/admin/orders", shell.ActionOrdersList, orderQuery)
	},
}

var orderGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return query(cmd, "/admin/orders/"+args[0], shell.ActionOrderGet, id)
	},
}

var orderStatusCmd = &cobra.Command{
	Use:   "status <id> <Pending|Shipped|Delivered|Cancelled>",
	Short: "Change an order's status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return command(cmd, "/admin/orders/"+args[0], shell.ActionOrderStatus, shell.StatusChange{OrderID: id, Status: args[1]})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check API reachability and local storage",
	RunE: func(cmd *cobra.Command, args []string) error {
		return query(cmd, "/", shell.ActionHealthStatus, nil)
	},
}

func init() {
	checkoutCmd.Flags().StringVar(&checkoutForm.CustomerName, "name", "", "full name")
	checkoutCmd.Flags().StringVar(&checkoutForm.CustomerPhone, "phone", "", "phone number")
	checkoutCmd.Flags().StringVar(&checkoutForm.CustomerEmail, "email", "", "email (optional)")
	checkoutCmd.Flags().StringVar(&checkoutForm.CustomerAddress, "address", "", "delivery address")

	orderListCmd.Flags().StringVar(&orderQuery.Status, "status", "", "filter by status")
	orderListCmd.Flags().IntVar(&orderQuery.Page.Page, "page", 0, "zero-based page")
	orderListCmd.Flags().IntVar(&orderQuery.Page.Size, "size", 10, "page size")

	ordersCmd.AddCommand(orderTrackCmd, orderListCmd, orderGetCmd, orderStatusCmd)
}
