package commands

import (
	"context"
	"errors"

	"github.com/aquamarinepk/aqm"
	"github.com/spf13/cobra"
)

var ErrNotConfirmed = errors.New("destructive command needs --yes")

// Runners execute the commands once their flags are resolved.
type Runners struct {
	Seed  func(ctx context.Context, opts SeedOptions) error
	Clear func(ctx context.Context) error
	Reset func(ctx context.Context) error
}

// DefaultRunners talk to the kitchen service and its database.
func DefaultRunners(config *aqm.Config, logger aqm.Logger) Runners {
	return Runners{
		Seed: func(ctx context.Context, opts SeedOptions) error {
			return SeedDemo(ctx, opts, logger)
		},
		Clear: func(ctx context.Context) error {
			return ClearDemo(ctx, config, logger)
		},
		Reset: func(ctx context.Context) error {
			return ResetDB(ctx, config, logger)
		},
	}
}

// NewRootCmd builds the utils command tree. Flag defaults come from config,
// so UTILS_* variables and flags can be mixed.
func NewRootCmd(name, version string, config *aqm.Config, run Runners) *cobra.Command {
	root := &cobra.Command{
		Use:           name,
		Short:         "Kitchen screen utility commands",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newSeedDemoCmd(config, run.Seed),
		newClearDemoCmd(run.Clear),
		newResetDBCmd(run.Reset),
	)
	return root
}

func newSeedDemoCmd(config *aqm.Config, seed func(context.Context, SeedOptions) error) *cobra.Command {
	opts := DefaultSeedOptions(config)

	cmd := &cobra.Command{
		Use:   "seed-demo",
		Short: "Send a demo screen and a rush of demo orders to the kitchen service",
		Example: `  kitchenscreen-utils seed-demo --shop 3 --orders 12
  UTILS_SERVICES_KITCHEN_URL=http://kitchen:8087 kitchenscreen-utils seed-demo`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return seed(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.KitchenURL, "kitchen-url", opts.KitchenURL, "Kitchen service URL")
	flags.Int64Var(&opts.ShopID, "shop", opts.ShopID, "Shop the demo screen and orders belong to")
	flags.IntVar(&opts.Orders, "orders", opts.Orders, "Number of demo orders")
	flags.Int64Var(&opts.Seed, "seed", opts.Seed, "Random seed for the demo lines")
	return cmd
}

func newClearDemoCmd(clear func(context.Context) error) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-demo",
		Short: "Remove demo orders, their lines and the kitchen seed markers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return clear(cmd.Context())
		},
	}
}

func newResetDBCmd(reset func(context.Context) error) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset-db",
		Short: "Drop the kitchen database",
		Long:  "Drop the whole kitchen database. This cannot be undone, so --yes is required.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return ErrNotConfirmed
			}
			return reset(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm dropping the database")
	return cmd
}
