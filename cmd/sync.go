package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"giftlist-tools/core/reconcile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for sync check
	repairSync     bool
	dryRunSync     bool
	skipCreateSync bool
	skipUpdateSync bool
	yesConfirm     bool

	// Flags for sync repair
	repairEnvs []string
)

// syncCmd is the parent command for cross-environment product sync.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Check and repair a product across environments",
}

var syncCheckCmd = &cobra.Command{
	Use:   "check <productId>",
	Short: "Compare a product with the update environments (report + optionally repair)",
	Long: `Compares the primary copy of a product with every update environment and
reports each environment as IN SYNC, NOT IN SYNC or DOES NOT EXIST.

Examples:
  # Report only
  sync check 12345678-prod-0001-1234-abcdefghijkl

  # Show what a repair would do
  sync check 12345678-prod-0001-1234-abcdefghijkl --repair --dry-run

  # Repair stale copies only, without prompting
  sync check 12345678-prod-0001-1234-abcdefghijkl --repair --skip-create --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runSyncCheck,
}

var syncRepairCmd = &cobra.Command{
	Use:   "repair <productId>",
	Short: "Copy the primary version of a product into environments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		targets := a.products.Environments().Update
		if len(repairEnvs) > 0 {
			targets = repairEnvs
		}
		return repair(ctx, a, args[0], targets)
	},
}

func init() {
	syncCheckCmd.Flags().BoolVar(&repairSync, "repair", false, "Repair the environments that are missing or stale")
	syncCheckCmd.Flags().BoolVar(&dryRunSync, "dry-run", false, "Print the repair plan without changing anything")
	syncCheckCmd.Flags().BoolVar(&skipCreateSync, "skip-create", false, "Do not create the product where it is missing")
	syncCheckCmd.Flags().BoolVar(&skipUpdateSync, "skip-update", false, "Do not update stale copies")
	syncCheckCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm the repair (non-interactive)")

	syncRepairCmd.Flags().StringSliceVar(&repairEnvs, "env", nil, "Environments to repair (test, staging, prod); defaults to the update environments")

	syncCmd.AddCommand(syncCheckCmd, syncRepairCmd)
	RootCmd.AddCommand(syncCmd)
}

func runSyncCheck(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	id := args[0]
	plan, err := a.products.Plan(ctx, id, reconcile.Options{SkipCreate: skipCreateSync, SkipUpdate: skipUpdateSync})
	if err != nil {
		return err
	}

	printSyncReport(a.logger, id, plan)

	if !repairSync {
		if len(plan.Actions) > 0 {
			a.logger.Info("Environments out of sync. Use --repair to copy the primary version into them.")
		}
		return nil
	}

	if len(plan.Actions) == 0 {
		a.logger.Info("No actions required based on current flags.")
		return nil
	}
	if dryRunSync {
		a.logger.Info("Dry-run mode: No changes were made.")
		return printJSON(os.Stdout, plan)
	}
	if !confirmRepair() {
		a.logger.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	return repair(ctx, a, id, plan.Targets())
}

func repair(ctx context.Context, a *app, id string, targets []string) error {
	res, err := a.products.Repair(ctx, id, targets)
	if err != nil {
		return err
	}
	if err := printJSON(os.Stdout, res); err != nil {
		return err
	}
	if res.Failed {
		return fmt.Errorf("product %s: one or more environments failed", id)
	}
	return nil
}

// printSyncReport logs the state of every checked environment.
func printSyncReport(l *zap.Logger, id string, plan reconcile.Plan) {
	s := plan.Report.Summary()
	l.Info("Sync report",
		zap.String("product_id", id),
		zap.Int("in_sync", s.InSync),
		zap.Int("not_in_sync", s.NotInSync),
		zap.Int("does_not_exist", s.DoesNotExist),
	)

	for _, env := range plan.Report.Order {
		l.Info("Environment",
			zap.String("environment", env),
			zap.String("state", string(plan.Report.States[env])),
			zap.Strings("mismatches", plan.Report.Mismatches[env]),
		)
	}

	for _, action := range plan.Actions {
		l.Info("Planned action",
			zap.String("type", string(action.Type)),
			zap.String("environment", action.Environment),
			zap.String("reason", action.Reason),
		)
	}
}

// confirmRepair prompts the user for confirmation or uses --yes flag.
func confirmRepair() bool {
	if yesConfirm {
		fmt.Fprintln(os.Stderr, "Auto-confirmed via --yes flag")
		return true
	}

	fmt.Fprint(os.Stderr, "Type 'yes' to copy the primary version into these environments: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	return strings.TrimSpace(response) == "yes"
}
