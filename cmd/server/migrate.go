package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cartec/catalog/internal/adapter/storage"
	"github.com/cartec/catalog/internal/core/domain"
)

var seedSamples bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the cars table",
	Long: `Creates the record store schema if it does not exist yet. With --seed an
empty store is filled with the built-in sample cars.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&seedSamples, "seed", false, "insert the sample cars into an empty store")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	db, err := openMySQL(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := storage.NewMySQLAdapter(db)
	if err := repo.Migrate(ctx); err != nil {
		return err
	}
	logger.Info("schema migrated")

	if !seedSamples {
		return nil
	}

	existing, err := repo.ListCars(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "store already holds %d cars, not seeding\n", len(existing))
		return nil
	}

	n, err := repo.Seed(ctx, domain.SampleCars())
	if err != nil {
		return err
	}
	logger.Info("store seeded", zap.Int("cars", n))
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d sample cars\n", n)
	return nil
}
