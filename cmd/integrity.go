package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// integrityCmd checks that every environment and table is reachable.
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Check access to every environment, table and the report bucket",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		report := a.integrity.Check(ctx)
		if err := printJSON(os.Stdout, report); err != nil {
			return err
		}
		if !report.Healthy {
			return fmt.Errorf("integrity check failed: %v", report.Failing())
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(integrityCmd)
}
