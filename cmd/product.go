package cmd

import (
	"context"
	"fmt"
	"os"

	"giftlist-tools/feature/product/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags shared by product create, product update and promote
	productBrand    string
	productDetails  string
	productRetailer string
	productImageURL string
	productURL      string
	productPrice    string
	productHidden   bool
	createTest      bool
	createStaging   bool
	createProd      bool
)

// productCmd is the parent command for catalog product operations.
var productCmd = &cobra.Command{
	Use:   "product",
	Short: "Read and write catalog products",
}

var productGetCmd = &cobra.Command{
	Use:   "get <productId>",
	Short: "Print a product from the caller's environment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := a.products.Get(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(os.Stdout, p)
	},
}

var productCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a product in the selected environments",
	Long: `Creates a product under one new id in every environment selected with
--test, --staging and --prod.

Example:
  product create --brand "John Lewis" --details "Safari Mobile" --retailer johnlewis.com \
    --image-url https://img/1 --product-url https://www.johnlewis.com/p1 --price 30.99 --test --staging`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		req := models.CreateRequest{
			ProductDetails:       detailsFromFlags(cmd),
			EnvironmentSelection: models.EnvironmentSelection{Test: &createTest, Staging: &createStaging, Prod: &createProd},
		}
		res, err := a.products.Create(ctx, req)
		if err != nil {
			return err
		}
		if err := printJSON(os.Stdout, res); err != nil {
			return err
		}
		if res.Failed {
			return fmt.Errorf("product %s: one or more environments failed", res.ProductID)
		}
		return nil
	},
}

var productUpdateCmd = &cobra.Command{
	Use:   "update <productId>",
	Short: "Update a product in the caller's environment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.products.Update(ctx, args[0], detailsFromFlags(cmd)); err != nil {
			return err
		}
		a.logger.Info("Product updated", zap.String("product_id", args[0]), zap.String("environment", a.cfg.Server.Environment))
		return nil
	},
}

// detailsFromFlags reads the product detail flags. searchHidden is only sent when
// --search-hidden was given.
func detailsFromFlags(cmd *cobra.Command) models.ProductDetails {
	d := models.ProductDetails{
		Brand:      productBrand,
		Details:    productDetails,
		Retailer:   productRetailer,
		ImageURL:   productImageURL,
		ProductURL: productURL,
		Price:      productPrice,
	}
	if cmd.Flags().Changed("search-hidden") {
		hidden := productHidden
		d.SearchHidden = &hidden
	}
	return d
}

func addDetailFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&productBrand, "brand", "", "Product brand")
	cmd.Flags().StringVar(&productDetails, "details", "", "Product description")
	cmd.Flags().StringVar(&productRetailer, "retailer", "", "Retailer domain")
	cmd.Flags().StringVar(&productImageURL, "image-url", "", "Product image URL")
	cmd.Flags().StringVar(&productURL, "product-url", "", "Product page URL")
	cmd.Flags().StringVar(&productPrice, "price", "", "Product price")
}

func init() {
	addDetailFlags(productCreateCmd)
	productCreateCmd.Flags().BoolVar(&productHidden, "search-hidden", false, "Hide the product from search")
	productCreateCmd.Flags().BoolVar(&createTest, "test", false, "Create in the test environment")
	productCreateCmd.Flags().BoolVar(&createStaging, "staging", false, "Create in the staging environment")
	productCreateCmd.Flags().BoolVar(&createProd, "prod", false, "Create in the prod environment")

	addDetailFlags(productUpdateCmd)
	productUpdateCmd.Flags().BoolVar(&productHidden, "search-hidden", false, "Hide the product from search")

	productCmd.AddCommand(productGetCmd, productCreateCmd, productUpdateCmd)
	RootCmd.AddCommand(productCmd)
}
