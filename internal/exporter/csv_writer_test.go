package exporter

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitebski/dataset-validator/pkg/models"
)

func createTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel) // Suppress log output during tests
	return logger
}

var testFields = []models.FieldDescriptor{
	{Name: "NAME", Type: models.Character},
	{Name: "AGE", Type: models.Numeric},
	{Name: "NOTE", Type: models.Character},
}

func TestCleanValue(t *testing.T) {
	tests := []struct {
		in       interface{}
		expected string
	}{
		{nil, ""},
		{"Müller", "Müller"},
		{"  line one\r\nline\ttwo  ", "line one line two"},
		{"a\x00b\x1a", "ab"},
		{int64(34), "34"},
		{12.5, "12.5"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, CleanValue(tt.in), "%#v", tt.in)
	}
}

func TestWrite(t *testing.T) {
	rs := models.NewRecordSet([]models.Record{
		{"NAME": "Müller", "AGE": int64(34), "NOTE": "says \"hi\"\nthere"},
		{"NAME": nil, "AGE": int64(29)},
	})

	var out bytes.Buffer
	w := NewCSVWriter(0, "", createTestLogger())
	count, err := w.Write(&out, testFields, rs)
	require.NoError(t, err)

	assert.Equal(t, 2, count)
	assert.Equal(t,
		"\"NAME\";\"AGE\";\"NOTE\"\r\n"+
			"\"Müller\";\"34\";\"says \"\"hi\"\" there\"\r\n"+
			"\"\";\"29\";\"\"\r\n",
		out.String())
}

func TestWriteLegacyEncoding(t *testing.T) {
	rs := models.NewRecordSet([]models.Record{{"NAME": "Müller"}})
	fields := []models.FieldDescriptor{{Name: "NAME"}}

	var out bytes.Buffer
	_, err := NewCSVWriter(',', "cp1252", createTestLogger()).Write(&out, fields, rs)
	require.NoError(t, err)
	assert.Equal(t, []byte("\"NAME\"\r\n\"M\xfcller\"\r\n"), out.Bytes())

	out.Reset()
	rs = models.NewRecordSet([]models.Record{{"NAME": "5 €"}})
	_, err = NewCSVWriter(',', "cp850", createTestLogger()).Write(&out, fields, rs)
	assert.Error(t, err)

	_, err = NewCSVWriter(',', "ebcdic", createTestLogger()).Write(&out, fields, rs)
	assert.Error(t, err)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	rs := models.NewRecordSet([]models.Record{{"NAME": "Weber", "AGE": "41"}})

	count, err := NewCSVWriter('|', "utf-8", createTestLogger()).WriteFile(path, testFields, rs)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "\"NAME\"|\"AGE\"|\"NOTE\"\r\n\"Weber\"|\"41\"|\"\"\r\n", string(data))
}
