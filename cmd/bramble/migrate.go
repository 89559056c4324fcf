package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Ramsey-B/bramble/internal/database"
)

func migrateCmd() *cobra.Command {
	var (
		version int
		force   int
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the PostgreSQL schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			svc, st, err := a.startServices(cmd.Context(), needs{database: true})
			if err != nil {
				return err
			}
			defer func() { _ = st.Stop(context.Background()) }()

			migration := a.cfg.Migration()
			if cmd.Flags().Changed("version") {
				migration.Version = uint(version)
			}
			if cmd.Flags().Changed("force") {
				migration.Force = force
			}

			return database.NewMigrationService(a.logger, migration).Migrate(a.cfg.DatabaseName, svc.db.DB.DB)
		},
	}

	cmd.Flags().IntVar(&version, "version", 0, "Target version (0 migrates to the latest)")
	cmd.Flags().IntVar(&force, "force", 0, "Force the schema version before migrating")

	return cmd
}
