package system

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/nutriplan_backend/internal/repo"
	"github.com/Alijeyrad/nutriplan_backend/pkg/database"
)

func NewMigrateCommand() *cobra.Command {
	var showStatus bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig(cmd)
			if err != nil {
				return err
			}

			db, err := database.New(database.FromCentralConfig(cfg.Database))
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer db.Close()

			m, err := repo.NewMigrator(db.Dialect(), db.GetConnection())
			if err != nil {
				return err
			}

			timeout := time.Duration(cfg.Server.TimeoutSeconds) * time.Second
			if timeout < time.Minute {
				timeout = time.Minute
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			if showStatus {
				return printMigrationStatus(ctx, m)
			}

			applied, err := m.Up(ctx)
			if err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			version, err := m.CurrentVersion(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Applied %d migration(s), schema at version %d.\n", applied, version)
			return nil
		},
	}

	cmd.Flags().BoolVar(&showStatus, "status", false, "Print applied and pending migrations without applying them")

	return cmd
}

func printMigrationStatus(ctx context.Context, m *repo.Migrator) error {
	current, err := m.CurrentVersion(ctx)
	if err != nil {
		return err
	}
	migrations, err := m.Migrations()
	if err != nil {
		return err
	}
	for _, mig := range migrations {
		state := "pending"
		if mig.Version <= current {
			state = "applied"
		}
		fmt.Printf("%03d_%s\t%s\n", mig.Version, mig.Name, state)
	}
	return nil
}
