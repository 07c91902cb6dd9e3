package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"giftlist-tools/core/storage"

	"github.com/spf13/cobra"
)

var latestReport bool

// reportsCmd lists or prints the published reports about a product.
var reportsCmd = &cobra.Command{
	Use:   "reports <kind> <id>",
	Short: "List the published check, repair, replicate or promotion reports of a product",
	Long: `Lists the keys of every report of kind about id in the report bucket, oldest
first. With --latest the newest report is printed instead.

Examples:
  reports repair 12345678-prod-0001-1234-abcdefghijkl
  reports promotion 12345678-notf-0010-1234-abcdefghijkl --latest`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, id := args[0], args[1]
		if !storage.IsKind(kind) {
			return fmt.Errorf("unknown report kind %q", kind)
		}

		ctx := context.Background()
		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		if a.reports == nil {
			return errors.New("report publishing is not enabled or the bucket is unreachable")
		}

		if latestReport {
			var report map[string]any
			key, err := a.reports.Latest(ctx, kind, id, &report)
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stderr, key)
			return printJSON(os.Stdout, report)
		}

		keys, err := a.reports.List(ctx, kind, id)
		if err != nil {
			return err
		}
		for _, key := range keys {
			fmt.Println(key)
		}
		return nil
	},
}

func init() {
	reportsCmd.Flags().BoolVar(&latestReport, "latest", false, "Print the newest report instead of listing keys")
	RootCmd.AddCommand(reportsCmd)
}
