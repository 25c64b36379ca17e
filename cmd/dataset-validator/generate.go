package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vitebski/dataset-validator/internal/exporter"
	"github.com/vitebski/dataset-validator/internal/generator"
	"github.com/vitebski/dataset-validator/internal/reader"
	"github.com/vitebski/dataset-validator/pkg/models"
)

// generateConfig holds the flags of the generate command
type generateConfig struct {
	opts      generator.Options
	output    string
	schema    string
	schemaOut string
	encoding  string
	delimiter string
}

func newGenerateCmd(a *app) *cobra.Command {
	var cfg generateConfig

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a synthetic customer dataset with injected defects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return generateDataset(cfg, a.logger)
		},
	}

	cmd.Flags().IntVarP(&cfg.opts.Records, "records", "r", 100, "Number of records to generate")
	cmd.Flags().Int64Var(&cfg.opts.Seed, "seed", 0, "Random seed (default: time based)")
	cmd.Flags().Float64Var(&cfg.opts.DuplicateRate, "duplicate-rate", 0.05, "Share of records duplicated from earlier ones")
	cmd.Flags().Float64Var(&cfg.opts.NullRate, "null-rate", 0.05, "Share of values left null")
	cmd.Flags().Float64Var(&cfg.opts.InvalidRate, "invalid-rate", 0.02, "Share of typed values replaced by malformed ones")
	cmd.Flags().StringVarP(&cfg.output, "output", "o", "", "Output file, .dbf or .csv")
	cmd.Flags().StringVarP(&cfg.schema, "schema", "s", "", "YAML schema to generate (default: built-in customer table)")
	cmd.Flags().StringVar(&cfg.schemaOut, "schema-out", "", "Write the schema used as YAML to this file")
	cmd.Flags().StringVar(&cfg.encoding, "encoding", "cp1252", "Output encoding")
	cmd.Flags().StringVarP(&cfg.delimiter, "delimiter", "d", ";", "CSV delimiter")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func generateDataset(cfg generateConfig, logger *logrus.Logger) error {
	for name, rate := range map[string]float64{
		"duplicate-rate": cfg.opts.DuplicateRate,
		"null-rate":      cfg.opts.NullRate,
		"invalid-rate":   cfg.opts.InvalidRate,
	} {
		if rate < 0 || rate > 1 {
			return fmt.Errorf("%s must be between 0 and 1, got %v", name, rate)
		}
	}

	fields := generator.DefaultSchema()
	if cfg.schema != "" {
		schema, err := reader.LoadSchema(cfg.schema)
		if err != nil {
			return err
		}
		fields = schema.Fields
	}

	dg := generator.NewDataGenerator(cfg.opts, logger)
	records := dg.GenerateRecords(fields)

	switch strings.ToLower(filepath.Ext(cfg.output)) {
	case ".dbf":
		if err := reader.WriteDBF(cfg.output, fields, records, cfg.encoding); err != nil {
			return fmt.Errorf("failed to write %s: %w", cfg.output, err)
		}
	case ".csv":
		delim, err := parseDelimiter(cfg.delimiter)
		if err != nil {
			return err
		}
		writer := exporter.NewCSVWriter(delim, cfg.encoding, logger)
		if _, err := writer.WriteFile(cfg.output, fields, models.NewRecordSet(records)); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported output format %q, use .dbf or .csv", filepath.Ext(cfg.output))
	}
	logger.Infof("Wrote %d records to %s (seed %d)", len(records), cfg.output, dg.Options.Seed)

	if cfg.schemaOut != "" {
		schema := &reader.SchemaFile{Encoding: cfg.encoding, Fields: fields}
		if strings.EqualFold(filepath.Ext(cfg.output), ".csv") {
			schema.Delimiter = cfg.delimiter
		}
		if err := reader.WriteSchema(cfg.schemaOut, schema); err != nil {
			return err
		}
		logger.Infof("Wrote schema to %s", cfg.schemaOut)
	}
	return nil
}
