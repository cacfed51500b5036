package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"sat-practice-service/internal/config"
	"sat-practice-service/internal/domain"
	"sat-practice-service/internal/infra/sqlstore"
	"sat-practice-service/internal/infra/sqlstore/migrations"
)

// NewImportQuestionsCmd stores a bank document in Postgres for questions.source=postgres.
func NewImportQuestionsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import-questions <file>",
		Short: "Validate a question bank JSON file and store it in Postgres",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), *configPath, args[0], newLogger())
		},
	}
}

func runImport(ctx context.Context, configPath, path string, log logrus.FieldLogger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	driver, err := sqlstore.DriverFor(cfg.Database.URL)
	if err != nil {
		return err
	}
	if driver != sqlstore.DriverPostgres {
		return fmt.Errorf("import-questions needs a postgres database url")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	bank, err := domain.ParseBank(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	db, err := sqlstore.Open(cfg.Database.URL)
	if err != nil {
		return err
	}
	defer db.Close()
	if _, err := migrations.Apply(ctx, db); err != nil {
		return err
	}
	if err := sqlstore.SaveBankDocument(ctx, db, cfg.Questions.Name, data); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"name":      cfg.Questions.Name,
		"topics":    len(bank.Topics()),
		"questions": bank.Len(),
	}).Info("question bank imported")
	return nil
}
