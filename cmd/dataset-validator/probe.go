package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vitebski/dataset-validator/internal/charset"
	"github.com/vitebski/dataset-validator/internal/reader"
	"github.com/vitebski/dataset-validator/internal/validator"
)

func newProbeCmd(a *app) *cobra.Command {
	var records int

	cmd := &cobra.Command{
		Use:   "probe <file.dbf>",
		Short: "Decode a DBF file with every known encoding and show values with diacritics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return probeEncodings(os.Stdout, args[0], records, a.logger)
		},
	}

	cmd.Flags().IntVarP(&records, "records", "n", 10, "Number of records to inspect per encoding")
	return cmd
}

// probeEncodings prints, per encoding, the values of the first records that
// contain diacritics so a human can spot the readable rendition
func probeEncodings(w io.Writer, path string, records int, logger *logrus.Logger) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("cannot probe %s: %w", path, err)
	}

	// Decoding failures are part of the output, not log noise
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	for _, candidate := range charset.All() {
		fmt.Fprintf(w, "\n%s\n", strings.Repeat("-", 60))
		fmt.Fprintf(w, "Encoding: %s\n", candidate.Name)

		dataset, err := reader.ReadDBF(path, candidate.Name, quiet)
		if err != nil {
			fmt.Fprintf(w, "  failed: %v\n", err)
			continue
		}

		limit := records
		if limit <= 0 || limit > dataset.Records.Len() {
			limit = dataset.Records.Len()
		}
		samples := validator.SampleText(dataset.Records, dataset.Fields, limit, limit*len(dataset.Fields))
		fmt.Fprintf(w, "  round-trip score: %.2f\n", validator.ScoreEncoding(samples, candidate))

		found := 0
		for i, record := range dataset.Records.Records[:limit] {
			for _, field := range dataset.Fields {
				text, ok := record[field.Name].(string)
				if !ok || !validator.HasDiacritics(text) {
					continue
				}
				found++
				fmt.Fprintf(w, "  record %d %s: %s\n", i, field.Name, text)
			}
		}
		if found == 0 {
			fmt.Fprintln(w, "  no values with diacritics")
		}
	}

	logger.Infof("Probed %s with %d encodings", path, len(charset.All()))
	return nil
}
