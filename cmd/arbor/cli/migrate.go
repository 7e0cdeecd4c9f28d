package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/arbor-cms/arbor/internal/platform/db"
)

func newMigrateCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(rt, func(m *db.Migrator) error {
				if err := m.Up(); err != nil {
					return err
				}
				return reportVersion(rt, cmd, m)
			})
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(rt, func(m *db.Migrator) error {
				if err := m.Down(steps); err != nil {
					return err
				}
				return reportVersion(rt, cmd, m)
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(rt, func(m *db.Migrator) error {
				return reportVersion(rt, cmd, m)
			})
		},
	}

	cmd.AddCommand(up, down, version)
	return cmd
}

func withMigrator(rt *runtime, fn func(*db.Migrator) error) error {
	m, err := db.NewMigrator(rt.cfg.PGDSN)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			rt.logger.Warn("close migrator", slog.Any("error", err))
		}
	}()
	return fn(m)
}

func reportVersion(rt *runtime, cmd *cobra.Command, m *db.Migrator) error {
	v, dirty, err := m.Version()
	if err != nil {
		return err
	}
	rt.logger.Info("schema version", slog.Uint64("version", uint64(v)), slog.Bool("dirty", dirty))
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "version %d dirty=%t\n", v, dirty)
	return err
}
