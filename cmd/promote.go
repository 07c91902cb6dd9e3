package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// promoteCmd moves an unreviewed product into the catalog.
var promoteCmd = &cobra.Command{
	Use:   "promote <notfoundId>",
	Short: "Promote an unreviewed product into the catalog",
	Long: `Creates a catalog product from an unreviewed product and moves the list and
reservation records that reference it onto the new product.

The product URL falls back to the unreviewed product's when --product-url is not given.

Example:
  promote 12345678-notf-0010-1234-abcdefghijkl --brand "John Lewis" \
    --details "Safari Mobile" --retailer johnlewis.com --image-url https://img/1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.notfound.Promote(ctx, args[0], detailsFromFlags(cmd))
		if err != nil {
			return err
		}
		if err := printJSON(os.Stdout, result); err != nil {
			return err
		}
		if result.HasFailures() {
			return fmt.Errorf("promotion of %s left items behind; rerun to retry them", args[0])
		}

		a.logger.Info("Promotion complete",
			zap.String("notfound_id", args[0]),
			zap.String("product_id", result.ProductID),
			zap.Int("relinked", len(result.ListAdds.Succeeded)),
		)
		return nil
	},
}

func init() {
	addDetailFlags(promoteCmd)
	RootCmd.AddCommand(promoteCmd)
}
