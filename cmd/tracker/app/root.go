package app

import (
	"github.com/spf13/cobra"
)

const rootDesc = `tracker ingests periodic snapshots of the vehicles available for rent,
records every state change per car and reconstructs the rentals in between.`

// NewRootCommand builds the tracker command tree
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tracker",
		Short:         "Carsharing occupancy tracker",
		Long:          rootDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	fs := cmd.PersistentFlags()
	fs.String("env", "", "application environment (APP_ENV, default development)")
	fs.String("log-level", "", "log level (LOG_LEVEL, default info)")
	fs.String("db-driver", "", "database driver: sqlite or pgx (DB_DRIVER)")
	fs.String("db-dsn", "", "database path or connection string (DB_DSN)")

	cmd.AddCommand(
		newMigrateCommand(),
		newImportCommand(),
		newTripsCommand(),
		newServeCommand(),
	)
	return cmd
}
