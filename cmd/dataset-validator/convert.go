package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vitebski/dataset-validator/internal/exporter"
	"github.com/vitebski/dataset-validator/internal/utils"
)

func newConvertCmd(a *app) *cobra.Command {
	var (
		output           string
		delimiter        string
		encoding         string
		outputEncoding   string
		validate         bool
		validationReport string
	)

	cmd := &cobra.Command{
		Use:   "convert <file.dbf>",
		Short: "Convert a DBF file to CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			if output == "" {
				output = strings.TrimSuffix(input, filepath.Ext(input)) + ".csv"
			}
			delim, err := parseDelimiter(delimiter)
			if err != nil {
				return err
			}

			dataset, err := loadDataset(input, sourceOptions{encoding: encoding}, a.logger)
			if err != nil {
				return err
			}

			writer := exporter.NewCSVWriter(delim, outputEncoding, a.logger)
			count, err := writer.WriteFile(output, dataset.Fields, dataset.Records)
			if err != nil {
				a.logger.Errorf("Conversion of %s failed after %d records: %v", input, count, err)
				return err
			}

			var size int64
			if info, err := os.Stat(output); err == nil {
				size = info.Size()
			}
			utils.PrintConversionSummary(os.Stdout, input, output, count, size)

			if validate || validationReport != "" {
				return validateDataset(cmd.Context(), dataset, validationReport, false, a.logger)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output CSV file (default: input name with .csv)")
	cmd.Flags().StringVarP(&delimiter, "delimiter", "d", ";", "CSV delimiter")
	cmd.Flags().StringVar(&encoding, "encoding", "", "DBF encoding (default: try the fallback chain)")
	cmd.Flags().StringVar(&outputEncoding, "output-encoding", "utf-8", "CSV encoding")
	cmd.Flags().BoolVar(&validate, "validate", false, "Validate the data after conversion")
	cmd.Flags().StringVar(&validationReport, "validation-report", "", "Write the JSON validation report to this file (implies --validate)")
	return cmd
}
