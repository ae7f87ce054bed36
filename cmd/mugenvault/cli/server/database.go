package server

import (
	"fmt"
	"text/tabwriter"

	"github.com/mwantia/mugenvault/pkg/db/migrations"
	"github.com/mwantia/mugenvault/pkg/db/store"
	"github.com/spf13/cobra"

	config "github.com/mwantia/mugenvault/internal/config/server"
)

func NewDatabaseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the metadata database",
		Long:  "Inspect and migrate the schema of the sqlite metadata database.",
	}

	cmd.AddCommand(newDatabaseMigrateCommand())
	cmd.AddCommand(newDatabaseStatusCommand())
	cmd.AddCommand(newDatabaseRollbackCommand())

	return cmd
}

func openMigrator() (*migrations.Migrator, func(), error) {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load server configuration: %w", err)
	}

	s, err := store.NewSQLiteStore(store.SQLiteConfig{Path: cfg.Metadata.SQLite.Path})
	if err != nil {
		return nil, nil, err
	}

	return migrations.NewMigrator(s.DB()), func() { s.Close() }, nil
}

func newDatabaseMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			migrator, closer, err := openMigrator()
			if err != nil {
				return err
			}
			defer closer()

			if err := migrator.Migrate(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Database is up to date")
			return nil
		},
	}
}

func newDatabaseStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List migrations and whether they are applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			migrator, closer, err := openMigrator()
			if err != nil {
				return err
			}
			defer closer()

			statuses, err := migrator.Status(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "VERSION\tAPPLIED\tDESCRIPTION")
			for _, status := range statuses {
				fmt.Fprintf(w, "%d\t%t\t%s\n", status.Version, status.Applied, status.Description)
			}
			return w.Flush()
		},
	}
}

func newDatabaseRollbackCommand() *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "rollback",
		Short: "Roll back the last applied migration",
		Long:  "Roll back the last applied migration. Dropped tables lose their data, so the rollback needs confirmation.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return fmt.Errorf("rollback drops data, pass --confirm to proceed")
			}

			migrator, closer, err := openMigrator()
			if err != nil {
				return err
			}
			defer closer()

			if err := migrator.Rollback(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Rolled back the last migration")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&confirm, "confirm", "c", false, "Confirms the rollback")

	return cmd
}
