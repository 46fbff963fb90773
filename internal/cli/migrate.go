package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/AFA55/pontifex-industries-sub002/internal/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [version]",
	Short: "Run database migrations",
	Long: `Run database migrations.

Without arguments, runs all pending migrations (up).
With a version number, migrates to that specific version (up or down as needed).

Examples:
  experiments migrate      # Run all pending migrations
  experiments migrate 2    # Migrate to version 2
  experiments migrate 0    # Rollback all migrations`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, app *AppContext) error {
		db := app.DB.DB

		if err := migrate.EnsureMigrationsTable(ctx, db); err != nil {
			return fmt.Errorf("creating migrations table: %w", err)
		}
		currentVersion, dirty, err := migrate.GetCurrentVersion(ctx, db)
		if err != nil {
			return fmt.Errorf("reading current version: %w", err)
		}
		if dirty {
			return fmt.Errorf("database is in dirty state at version %d, manual intervention required", currentVersion)
		}

		all, err := migrate.LoadMigrations()
		if err != nil {
			return fmt.Errorf("loading migrations: %w", err)
		}

		fmt.Printf("Current version: %d\n", currentVersion)

		if len(args) == 0 {
			if err := migrate.RunAll(ctx, db); err != nil {
				return err
			}
		} else {
			targetVersion, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version number: %s", args[0])
			}
			switch {
			case targetVersion > currentVersion:
				err = migrate.MigrateUpTo(ctx, db, all, currentVersion, targetVersion)
			case targetVersion < currentVersion:
				err = migrate.MigrateDownTo(ctx, db, all, currentVersion, targetVersion)
			default:
				fmt.Println("Already at target version")
			}
			if err != nil {
				return err
			}
		}

		newVersion, _, err := migrate.GetCurrentVersion(ctx, db)
		if err != nil {
			return err
		}
		fmt.Printf("Now at version %d\n", newVersion)
		return nil
	})
}
