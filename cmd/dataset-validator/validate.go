package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vitebski/dataset-validator/internal/analyzer"
	"github.com/vitebski/dataset-validator/internal/connector"
	"github.com/vitebski/dataset-validator/internal/reader"
	"github.com/vitebski/dataset-validator/internal/utils"
	"github.com/vitebski/dataset-validator/internal/validator"
	"github.com/vitebski/dataset-validator/pkg/models"
)

// sourceOptions describes how an input file is read
type sourceOptions struct {
	encoding  string
	schema    string
	delimiter string
}

func newValidateCmd(a *app) *cobra.Command {
	var (
		src        sourceOptions
		reportPath string
		sequential bool
	)

	cmd := &cobra.Command{
		Use:   "validate <file.dbf|file.csv>",
		Short: "Validate a DBF or CSV file and print a quality report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dataset, err := loadDataset(args[0], src, a.logger)
			if err != nil {
				return err
			}
			return validateDataset(cmd.Context(), dataset, reportPath, sequential, a.logger)
		},
	}

	cmd.Flags().StringVar(&src.encoding, "encoding", "", "Input encoding (default: try the fallback chain)")
	cmd.Flags().StringVarP(&src.schema, "schema", "s", "", "YAML schema file declaring field types")
	cmd.Flags().StringVarP(&src.delimiter, "delimiter", "d", "", "CSV delimiter (default: ;)")
	cmd.Flags().StringVarP(&reportPath, "report", "r", "", "Write the JSON report to this file")
	cmd.Flags().BoolVar(&sequential, "sequential", false, "Run the analysis stages one after another")
	return cmd
}

func newValidateTableCmd(a *app) *cobra.Command {
	var (
		host, user, password, database, port string
		limit                                int
		reportPath                           string
		sequential                           bool
	)

	cmd := &cobra.Command{
		Use:   "validate-table <table>",
		Short: "Validate a MySQL table and print a quality report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			table := args[0]

			db := connector.NewDatabaseConnector(host, user, password, database, port, a.logger)
			if err := utils.ValidateConnectionParams(db.Host, db.User, db.Password, db.Database, db.Port, a.logger); err != nil {
				return err
			}
			if err := db.Connect(ctx); err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Disconnect()

			schemaAnalyzer := analyzer.NewSchemaAnalyzer(db, db.Database, a.logger)
			fields, err := schemaAnalyzer.FieldDescriptors(ctx, table)
			if err != nil {
				return fmt.Errorf("failed to analyze table %s: %w", table, err)
			}

			records, err := db.LoadTable(ctx, table, limit)
			if err != nil {
				return err
			}

			dataset := &reader.Dataset{
				Source:   db.Database + "." + table,
				Encoding: "utf-8",
				Fields:   fields,
				Records:  analyzer.ApplyColumnTypes(records, fields),
			}
			return validateDataset(ctx, dataset, reportPath, sequential, a.logger)
		},
	}

	cmd.Flags().StringVarP(&host, "host", "H", "", "MySQL host (default: localhost)")
	cmd.Flags().StringVarP(&user, "user", "u", "", "MySQL user (default: root)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "MySQL password")
	cmd.Flags().StringVarP(&database, "database", "d", "", "MySQL database name")
	cmd.Flags().StringVarP(&port, "port", "P", "", "MySQL port (default: 3306)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of rows to load (0 loads all)")
	cmd.Flags().StringVarP(&reportPath, "report", "r", "", "Write the JSON report to this file")
	cmd.Flags().BoolVar(&sequential, "sequential", false, "Run the analysis stages one after another")
	return cmd
}

// loadDataset reads a DBF or CSV file, applying an optional YAML schema
func loadDataset(path string, src sourceOptions, logger *logrus.Logger) (*reader.Dataset, error) {
	var declared []models.FieldDescriptor
	if src.schema != "" {
		schema, err := reader.LoadSchema(src.schema)
		if err != nil {
			return nil, err
		}
		declared = schema.Fields
		if src.encoding == "" {
			src.encoding = schema.Encoding
		}
		if src.delimiter == "" {
			src.delimiter = schema.Delimiter
		}
	}

	if strings.EqualFold(filepath.Ext(path), ".dbf") {
		dataset, err := reader.ReadDBF(path, src.encoding, logger)
		if err != nil {
			return nil, err
		}
		if declared != nil {
			dataset.Fields = declared
		}
		return dataset, nil
	}

	delimiter, err := parseDelimiter(src.delimiter)
	if err != nil {
		return nil, err
	}
	return reader.ReadCSV(path, reader.CSVOptions{
		Delimiter: delimiter,
		Encoding:  src.encoding,
		Fields:    declared,
	}, logger)
}

// validateDataset runs the engine, prints the report and optionally stores it as JSON
func validateDataset(ctx context.Context, dataset *reader.Dataset, reportPath string, sequential bool, logger *logrus.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	opts := utils.EngineOptionsFromEnv()
	opts.Sequential = sequential

	dv := validator.NewDataValidator(dataset.Records, dataset.Fields, dataset.Encoding, opts, logger)
	report, err := dv.RunFullValidation(ctx)
	if err != nil {
		return fmt.Errorf("validation aborted: %w", err)
	}

	utils.PrintValidationReport(os.Stdout, dataset.Source, report)

	if reportPath != "" {
		if err := utils.WriteJSONReport(reportPath, report); err != nil {
			return err
		}
		logger.Infof("Validation report written to %s", reportPath)
	}
	return nil
}

func parseDelimiter(s string) (rune, error) {
	if s == "" {
		return reader.DefaultDelimiter, nil
	}
	if s == `\t` {
		return '\t', nil
	}
	runes := []rune(s)
	if len(runes) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s)
	}
	return runes[0], nil
}
