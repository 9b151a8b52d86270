package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cartec/catalog/internal/adapter/storage"
	"github.com/cartec/catalog/internal/core/domain"
	"github.com/cartec/catalog/internal/core/service"
)

var deleteAs string

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a car after confirmation",
	Long: `Deletes a stored car on behalf of an allow-listed admin. The command asks
for confirmation on stdin and announces the change to running servers.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().StringVar(&deleteAs, "as", "", "admin email or uid from ADMIN_ALLOWLIST")
	_ = deleteCmd.MarkFlagRequired("as")
}

// promptConfirmer asks a yes/no question on a terminal. Anything but y or
// yes declines.
type promptConfirmer struct {
	in  io.Reader
	out io.Writer
}

func (p promptConfirmer) Confirm(ctx context.Context, prompt string) bool {
	fmt.Fprintf(p.out, "%s [y/N]: ", prompt)

	answer, err := bufio.NewReader(p.in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	id := args[0]

	who := domain.Identity{UID: deleteAs}
	if strings.Contains(deleteAs, "@") {
		who.Email = deleteAs
	}
	capability, err := domain.NewAdminPolicy(cfg.AdminAllowList).Authorize(who)
	if err != nil {
		return fmt.Errorf("%s: %w", deleteAs, err)
	}

	db, err := openMySQL(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	rdb, err := openRedis(ctx)
	if err != nil {
		return err
	}
	defer rdb.Close()

	cars := service.NewCarService(storage.NewMySQLAdapter(db), nil, logger).WithStoreTimeout(cfg.StoreTimeout)
	catalog := service.NewCatalog(cars, logger)
	admin := service.NewAdminService(cars, storage.NewRedisAdapter(rdb, logger), catalog, logger)

	car, err := cars.GetCar(ctx, id)
	if err != nil {
		return err
	}

	confirmer := promptConfirmer{in: cmd.InOrStdin(), out: cmd.OutOrStdout()}
	if err := admin.RequestDelete(ctx, capability, id, car.Name, confirmer); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s (%s)\n", car.Name, id)
	return nil
}
