package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zezinho10632/DouglasApi/internal/store/postgres"
	"github.com/zezinho10632/DouglasApi/pkg/config"
	"github.com/zezinho10632/DouglasApi/pkg/database"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	Long: `Apply the embedded PostgreSQL schema.

Every statement is idempotent, so running it on an up-to-date database
changes nothing.

Example:
  go run ./cmd/quality migrate`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	if cfg.Store != config.StorePostgres {
		return fmt.Errorf("migrate needs STORE=%s, got %s", config.StorePostgres, cfg.Store)
	}

	db, err := database.New(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	if err := postgres.New(db).Migrate(cmd.Context()); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	log.Info("Schema is up to date")
	fmt.Println("✅ Migration complete")
	return nil
}
