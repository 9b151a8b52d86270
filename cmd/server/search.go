package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cartec/catalog/internal/adapter/storage"
	"github.com/cartec/catalog/internal/core/domain"
	"github.com/cartec/catalog/internal/core/service"
)

var searchFuel string

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "List cars matching a query and fuel type",
	Long: `Prints the catalog as visitors see it. The query matches name or model,
case-insensitively. The sample cars are listed when the store is unreachable.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchFuel, "fuel", domain.FuelAll,
		"fuel type: "+strings.Join(domain.FuelSelectors(), ", "))
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchFuel != domain.FuelAll && !domain.FuelType(searchFuel).Valid() {
		return fmt.Errorf("unknown fuel type %q", searchFuel)
	}
	var query string
	if len(args) == 1 {
		query = args[0]
	}

	db, err := newMySQL(cfg.MySQLDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	// read only, so no blob storage
	cars := service.NewCarService(storage.NewMySQLAdapter(db), nil, logger).
		WithStoreTimeout(cfg.StoreTimeout)
	catalog := service.NewCatalog(cars, logger)
	if err := catalog.Refetch(cmd.Context()); err != nil {
		return err
	}

	printCars(cmd.OutOrStdout(), catalog.Search(query, searchFuel))
	return nil
}

func printCars(out io.Writer, cars []domain.Car) {
	if len(cars) == 0 {
		fmt.Fprintln(out, "No cars found")
		return
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tMODEL\tFUEL\tPRICE")
	for _, c := range cars {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Model, c.FuelType, domain.FormatPrice(c.Price))
	}
	w.Flush()
}
