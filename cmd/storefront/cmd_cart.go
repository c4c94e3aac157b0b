package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fastygo/storefront/internal/shell"
)

var cartQuantity int

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Show or change the cart of the current identity",
	RunE: func(cmd *cobra.Command, args []string) error {
		return query(cmd, "/cart", shell.ActionCartShow, nil)
	},
}

var cartAddCmd = &cobra.Command{
	Use:   "add <product-id>",
	Short: "Add a product to the cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return command(cmd, "/cart", shell.ActionCartAdd, shell.CartLine{ProductID: id, Quantity: cartQuantity})
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <product-id>",
	Short: "Remove a product from the cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return command(cmd, "/cart", shell.ActionCartRemove, id)
	},
}

var cartSetCmd = &cobra.Command{
	Use:   "set <product-id> <quantity>",
	Short: "Overwrite the quantity of a cart line",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		qty, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid quantity %q", args[1])
		}
		return command(cmd, "/cart", shell.ActionCartSet, shell.CartLine{ProductID: id, Quantity: qty})
	},
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		return command(cmd, "/cart", shell.ActionCartClear, nil)
	},
}

var cartImportCmd = &cobra.Command{
	Use:   "import-guest",
	Short: "Move the guest cart into the logged-in customer's cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		return command(cmd, "/cart", shell.ActionCartImport, nil)
	},
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func init() {
	cartAddCmd.Flags().IntVarP(&cartQuantity, "quantity", "q", 1, "quantity to add")
	cartCmd.AddCommand(cartAddCmd, cartRemoveCmd, cartSetCmd, cartClearCmd, cartImportCmd)
}
