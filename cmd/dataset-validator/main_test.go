package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitebski/dataset-validator/internal/generator"
	"github.com/vitebski/dataset-validator/internal/reader"
	"github.com/vitebski/dataset-validator/pkg/models"
)

func createTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel) // Suppress log output during tests
	return logger
}

func TestParseDelimiter(t *testing.T) {
	tests := []struct {
		in       string
		expected rune
		wantErr  bool
	}{
		{"", ';', false},
		{",", ',', false},
		{`\t`, '\t', false},
		{"¦", '¦', false},
		{";;", 0, true},
	}
	for _, tt := range tests {
		got, err := parseDelimiter(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.expected, got, tt.in)
	}
}

func TestGenerateAndValidateDBF(t *testing.T) {
	dir := t.TempDir()
	cfg := generateConfig{
		opts:      generator.Options{Records: 60, Seed: 5, DuplicateRate: 0.1, NullRate: 0.05, InvalidRate: 0.05},
		output:    filepath.Join(dir, "kunden.dbf"),
		schemaOut: filepath.Join(dir, "kunden.yaml"),
		encoding:  "cp850",
		delimiter: ";",
	}
	require.NoError(t, generateDataset(cfg, createTestLogger()))

	dataset, err := loadDataset(cfg.output, sourceOptions{schema: cfg.schemaOut}, createTestLogger())
	require.NoError(t, err)
	assert.Equal(t, "cp850", dataset.Encoding)
	assert.Equal(t, 60, dataset.Records.Len())
	assert.Equal(t, generator.DefaultSchema(), dataset.Fields)

	reportPath := filepath.Join(dir, "report.json")
	require.NoError(t, validateDataset(context.Background(), dataset, reportPath, true, createTestLogger()))
	_, err = os.Stat(reportPath)
	assert.NoError(t, err)
}

func TestGenerateAndLoadCSV(t *testing.T) {
	dir := t.TempDir()
	cfg := generateConfig{
		opts:      generator.Options{Records: 20, Seed: 9},
		output:    filepath.Join(dir, "kunden.csv"),
		schemaOut: filepath.Join(dir, "kunden.yaml"),
		encoding:  "utf-8",
		delimiter: "|",
	}
	require.NoError(t, generateDataset(cfg, createTestLogger()))

	schema, err := reader.LoadSchema(cfg.schemaOut)
	require.NoError(t, err)
	assert.Equal(t, "|", schema.Delimiter)

	dataset, err := loadDataset(cfg.output, sourceOptions{schema: cfg.schemaOut}, createTestLogger())
	require.NoError(t, err)
	assert.Equal(t, 20, dataset.Records.Len())
	assert.Equal(t, models.Date, dataset.Fields[7].Type)
}

func TestGenerateRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	err := generateDataset(generateConfig{
		opts:   generator.Options{Records: 1, Seed: 1, NullRate: 1.5},
		output: filepath.Join(dir, "x.dbf"),
	}, createTestLogger())
	assert.Error(t, err)

	err = generateDataset(generateConfig{
		opts:   generator.Options{Records: 1, Seed: 1},
		output: filepath.Join(dir, "x.xlsx"),
	}, createTestLogger())
	assert.Error(t, err)
}

func TestProbeEncodings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "probe.dbf")
	fields := []models.FieldDescriptor{{Name: "NAME", Type: models.Character, Length: 20}}
	records := []models.Record{{"NAME": "Müller"}, {"NAME": "Weber"}}
	require.NoError(t, reader.WriteDBF(path, fields, records, "cp1252"))

	var out bytes.Buffer
	require.NoError(t, probeEncodings(&out, path, 10, createTestLogger()))

	text := out.String()
	assert.Contains(t, text, "Encoding: cp1252")
	assert.Contains(t, text, "record 0 NAME: Müller")
	assert.Contains(t, text, "Encoding: utf-8")

	assert.Error(t, probeEncodings(&out, filepath.Join(t.TempDir(), "missing.dbf"), 10, createTestLogger()))
}
