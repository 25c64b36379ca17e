package reader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vitebski/dataset-validator/internal/charset"
	"github.com/vitebski/dataset-validator/pkg/models"
)

// DefaultDelimiter separates CSV cells unless told otherwise
const DefaultDelimiter = ';'

const utf8BOM = "\ufeff"

// CSVOptions controls how a CSV file is read
type CSVOptions struct {
	// Delimiter defaults to DefaultDelimiter
	Delimiter rune
	// Encoding is tried alone when set, otherwise the fallback chain is used
	Encoding string
	// Fields types the columns; columns missing from it are read as Character
	Fields []models.FieldDescriptor
}

// ReadCSV loads a delimited text file with a header row. Empty cells are nulls.
func ReadCSV(path string, opts CSVOptions, logger *logrus.Logger) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	// Text files are tried as UTF-8 before the legacy code pages
	chain := []string{"utf-8"}
	for _, name := range charset.FallbackChain {
		if name != "utf-8" {
			chain = append(chain, name)
		}
	}
	if opts.Encoding != "" {
		chain = []string{opts.Encoding}
	}

	for _, name := range chain {
		candidate, ok := charset.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unsupported encoding: %s", name)
		}
		text, err := candidate.Decode(data)
		if err != nil {
			logger.Debugf("Failed to decode %s with encoding %s: %v", path, candidate.Name, err)
			continue
		}

		dataset, err := parseCSV(strings.TrimPrefix(text, utf8BOM), opts)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		dataset.Source = path
		dataset.Encoding = candidate.Name
		logger.Infof("Read %d records from %s using encoding %s", dataset.Records.Len(), path, candidate.Name)
		return dataset, nil
	}

	return nil, fmt.Errorf("%s: %w", path, ErrNoEncoding)
}

func parseCSV(text string, opts CSVOptions) (*Dataset, error) {
	delimiter := opts.Delimiter
	if delimiter == 0 {
		delimiter = DefaultDelimiter
	}

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delimiter
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("missing header row")
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.ReplaceAll(h, `"`, ""))
	}

	var records []models.Record
	for line := 2; ; line++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}

		record := make(models.Record, len(header))
		for i, name := range header {
			if i >= len(row) || row[i] == "" {
				record[name] = nil
				continue
			}
			record[name] = row[i]
		}
		records = append(records, record)
	}

	return &Dataset{
		Fields:  csvFields(header, opts.Fields),
		Records: models.NewRecordSet(records),
	}, nil
}

// csvFields orders the schema by the header, typing unknown columns as Character
func csvFields(header []string, declared []models.FieldDescriptor) []models.FieldDescriptor {
	byName := make(map[string]models.FieldDescriptor, len(declared))
	for _, f := range declared {
		byName[f.Name] = f
	}

	fields := make([]models.FieldDescriptor, 0, len(header))
	for _, name := range header {
		if f, ok := byName[name]; ok {
			fields = append(fields, f)
			continue
		}
		fields = append(fields, models.FieldDescriptor{Name: name, Type: models.Character})
	}
	return fields
}
