package cli

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"sat-practice-service/internal/config"
	"sat-practice-service/internal/infra/sqlstore"
	"sat-practice-service/internal/infra/sqlstore/migrations"
)

// NewMigrateCmd applies database migrations.
func NewMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(cmd.Context(), *configPath, newLogger())
		},
	}
}

func runMigrations(ctx context.Context, configPath string, log logrus.FieldLogger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("database url not configured")
	}

	db, err := sqlstore.Open(cfg.Database.URL)
	if err != nil {
		return err
	}
	defer db.Close()

	group, err := migrations.Apply(ctx, db)
	if err != nil {
		return err
	}
	if group.IsZero() {
		log.Info("no new migrations")
		return nil
	}
	log.WithField("group", group.String()).Info("migrations applied")
	return nil
}
