package exporter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"github.com/vitebski/dataset-validator/internal/charset"
	"github.com/vitebski/dataset-validator/pkg/models"
)

const (
	lineTerminator   = "\r\n"
	progressInterval = 1000
)

// CSVWriter writes record sets as delimited text with every cell quoted
type CSVWriter struct {
	Delimiter rune
	Encoding  string
	Logger    *logrus.Logger
}

// NewCSVWriter creates a new CSV writer
func NewCSVWriter(delimiter rune, encoding string, logger *logrus.Logger) *CSVWriter {
	if delimiter == 0 {
		delimiter = ';'
	}
	if encoding == "" {
		encoding = "utf-8"
	}
	return &CSVWriter{
		Delimiter: delimiter,
		Encoding:  encoding,
		Logger:    logger,
	}
}

// WriteFile writes the records to path, replacing any existing file
func (w *CSVWriter) WriteFile(path string, fields []models.FieldDescriptor, rs models.RecordSet) (int, error) {
	if _, err := os.Stat(path); err == nil {
		w.Logger.Warningf("Output file '%s' already exists and will be overwritten", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	count, err := w.Write(f, fields, rs)
	if err != nil {
		return count, err
	}
	if err := f.Close(); err != nil {
		return count, fmt.Errorf("failed to close %s: %w", path, err)
	}
	return count, nil
}

// Write emits a header row followed by one row per record and returns the
// number of records written
func (w *CSVWriter) Write(out io.Writer, fields []models.FieldDescriptor, rs models.RecordSet) (int, error) {
	candidate, ok := charset.Lookup(w.Encoding)
	if !ok {
		return 0, fmt.Errorf("unsupported output encoding: %s", w.Encoding)
	}
	buf := bufio.NewWriter(out)

	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	if err := w.writeRow(buf, candidate, names); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}

	cells := make([]string, len(fields))
	for n, record := range rs.Records {
		for i, f := range fields {
			cells[i] = CleanValue(record[f.Name])
		}
		if err := w.writeRow(buf, candidate, cells); err != nil {
			return n, fmt.Errorf("failed to write record %d: %w", n, err)
		}
		if (n+1)%progressInterval == 0 {
			w.Logger.Infof("Processed %d records...", n+1)
		}
	}

	if err := buf.Flush(); err != nil {
		return rs.Len(), fmt.Errorf("failed to flush output: %w", err)
	}
	return rs.Len(), nil
}

func (w *CSVWriter) writeRow(buf *bufio.Writer, candidate charset.Candidate, cells []string) error {
	var line strings.Builder
	for i, cell := range cells {
		if i > 0 {
			line.WriteRune(w.Delimiter)
		}
		line.WriteByte('"')
		line.WriteString(strings.ReplaceAll(cell, `"`, `""`))
		line.WriteByte('"')
	}
	line.WriteString(lineTerminator)

	encoded, err := candidate.Encode(line.String())
	if err != nil {
		return err
	}
	_, err = buf.Write(encoded)
	return err
}

// CleanValue renders a value as a single-line cell. Line breaks and tabs become
// spaces, whitespace runs collapse and NUL/EOF bytes are removed. Nulls are empty.
func CleanValue(v interface{}) string {
	if v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return cast.ToString(v)
	}

	s = strings.NewReplacer("\n", " ", "\r", " ", "\t", " ").Replace(s)
	s = strings.Join(strings.Fields(s), " ")
	return strings.NewReplacer("\x00", "", "\x1a", "").Replace(s)
}
