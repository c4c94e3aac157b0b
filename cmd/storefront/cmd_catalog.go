package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fastygo/storefront/api/transport"
	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/internal/shell"
)

var (
	productFilter domain.ProductFilter
	productForm   struct {
		name        string
		description string
		price       string
		stock       int
		imageURL    string
		categoryID  int64
	}
	categoryName        string
	categoryDescription string
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Browse and manage the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		return query(cmd, "/products", shell.ActionProductList, productFilter)
	},
}

var productGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return query(cmd, "/products/"+args[0], shell.ActionProductGet, id)
	},
}

var productCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a product",
	RunE: func(cmd *cobra.Command, args []string) error {
		return command(cmd, "/admin/products/new", shell.ActionProductCreate, productRequest())
	},
}

var productUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Replace a product's fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return command(cmd, "/admin/products/"+args[0], shell.ActionProductUpdate, shell.ProductUpdate{ID: id, Request: productRequest()})
	},
}

var productStockCmd = &cobra.Command{
	Use:   "stock <id> <stock>",
	Short: "Set a product's stock level",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		stock, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid stock %q", args[1])
		}
		return command(cmd, "/admin/products", shell.ActionProductStock, shell.StockUpdate{ProductID: id, Stock: stock})
	},
}

var productDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return command(cmd, "/admin/products", shell.ActionProductDelete, id)
	},
}

var productImageCmd = &cobra.Command{
	Use:   "image",
	Short: "Manage product images",
}

var productImageAddCmd = &cobra.Command{
	Use:   "add <product-id> <url>",
	Short: "Attach an image to a product",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return command(cmd, "/admin/products/"+args[0], shell.ActionProductImageAdd, shell.ImageAdd{ProductID: id, ImageURL: args[1]})
	},
}

var productImageDeleteCmd = &cobra.Command{
	Use:   "delete <image-id>",
	Short: "Remove a product image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return command(cmd, "/admin/products", shell.ActionProductImageDelete, id)
	},
}

var productImageMainCmd = &cobra.Command{
	Use:   "main <image-id>",
	Short: "Mark an image as the product's main image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return command(cmd, "/admin/products", shell.ActionProductImageMain, id)
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List and manage categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		return query(cmd, "/products", shell.ActionCategoryList, nil)
	},
}

var categoryCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a category",
	RunE: func(cmd *cobra.Command, args []string) error {
		req := transport.CategoryRequest{Name: categoryName, Description: categoryDescription}
		return command(cmd, "/admin/categories", shell.ActionCategoryCreate, req)
	},
}

var categoryUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Rename or describe a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		req := transport.CategoryRequest{Name: categoryName, Description: categoryDescription}
		return command(cmd, "/admin/categories", shell.ActionCategoryUpdate, shell.CategoryUpdate{ID: id, Request: req})
	},
}

var categoryDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return command(cmd, "/admin/categories", shell.ActionCategoryDelete, id)
	},
}

func productRequest() transport.ProductRequest {
	return transport.ProductRequest{
		Name:        productForm.name,
		Description: productForm.description,
		Price:       json.Number(productForm.price),
		Stock:       productForm.stock,
		ImageURL:    productForm.imageURL,
		CategoryID:  productForm.categoryID,
	}
}

func init() {
	productsCmd.Flags().StringVar(&productFilter.Search, "search", "", "search term")
	productsCmd.Flags().Int64Var(&productFilter.CategoryID, "category", 0, "category id")
	productsCmd.Flags().IntVar(&productFilter.Page, "page", 0, "zero-based page")
	productsCmd.Flags().IntVar(&productFilter.Size, "size", 10, "page size")

	for _, c := range []*cobra.Command{productCreateCmd, productUpdateCmd} {
		c.Flags().StringVar(&productForm.name, "name", "", "product name")
		c.Flags().StringVar(&productForm.description, "description", "", "product description")
		c.Flags().StringVar(&productForm.price, "price", "", "unit price, e.g. 9.99")
		c.Flags().IntVar(&productForm.stock, "stock", 0, "units in stock")
		c.Flags().StringVar(&productForm.imageURL, "image-url", "", "main image URL")
		c.Flags().Int64Var(&productForm.categoryID, "category", 0, "category id")
	}

	productImageCmd.AddCommand(productImageAddCmd, productImageDeleteCmd, productImageMainCmd)
	productsCmd.AddCommand(productGetCmd, productCreateCmd, productUpdateCmd, productStockCmd, productDeleteCmd, productImageCmd)

	for _, c := range []*cobra.Command{categoryCreateCmd, categoryUpdateCmd} {
		c.Flags().StringVar(&categoryName, "name", "", "category name")
		c.Flags().StringVar(&categoryDescription, "description", "", "category description")
	}
	categoriesCmd.AddCommand(categoryCreateCmd, categoryUpdateCmd, categoryDeleteCmd)
}
