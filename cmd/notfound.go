package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

// notfoundCmd is the parent command for unreviewed product operations.
var notfoundCmd = &cobra.Command{
	Use:   "notfound",
	Short: "Inspect unreviewed products",
}

var notfoundListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print every unreviewed product",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		items, err := a.notfound.List(ctx)
		if err != nil {
			return err
		}
		return printJSON(os.Stdout, map[string]any{"items": items})
	},
}

var notfoundCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the number of unreviewed products",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		count, err := a.notfound.Count(ctx)
		if err != nil {
			return err
		}
		return printJSON(os.Stdout, map[string]int{"count": count})
	},
}

var notfoundGetCmd = &cobra.Command{
	Use:   "get <notfoundId>",
	Short: "Print an unreviewed product with its creator and list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		detail, err := a.notfound.Get(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(os.Stdout, detail)
	},
}

func init() {
	notfoundCmd.AddCommand(notfoundListCmd, notfoundCountCmd, notfoundGetCmd)
	RootCmd.AddCommand(notfoundCmd)
}
