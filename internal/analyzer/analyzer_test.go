package analyzer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/vitebski/dataset-validator/pkg/models"
)

// MockQuerier is a mock implementation of the Querier interface
type MockQuerier struct {
	QueryRecordsFunc func(query string, params ...interface{}) ([]models.Record, error)
}

func (m *MockQuerier) QueryRecords(ctx context.Context, query string, params ...interface{}) ([]models.Record, error) {
	return m.QueryRecordsFunc(query, params...)
}

func createTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel) // Suppress log output during tests
	return logger
}

func int64Ptr(n int64) *int64 {
	return &n
}

func TestNewSchemaAnalyzer(t *testing.T) {
	logger := createTestLogger()
	db := &MockQuerier{}

	analyzer := NewSchemaAnalyzer(db, "shop", logger)

	if analyzer == nil {
		t.Fatal("Expected analyzer to be created, got nil")
	}
	if analyzer.DB != db {
		t.Error("Expected analyzer.DB to be the mock querier")
	}
	if analyzer.Database != "shop" {
		t.Errorf("Expected database to be 'shop', got '%s'", analyzer.Database)
	}
	if analyzer.Logger != logger {
		t.Error("Expected analyzer.Logger to be the test logger")
	}
	if analyzer.TableColumns == nil {
		t.Error("Expected analyzer.TableColumns to be initialized")
	}
}

func TestListTables(t *testing.T) {
	db := &MockQuerier{
		QueryRecordsFunc: func(query string, params ...interface{}) ([]models.Record, error) {
			if !strings.Contains(query, "information_schema.tables") {
				t.Errorf("Unexpected query: %s", query)
			}
			if len(params) != 1 || params[0] != "shop" {
				t.Errorf("Expected database parameter 'shop', got %v", params)
			}
			return []models.Record{{"table_name": "customers"}, {"table_name": "orders"}}, nil
		},
	}

	analyzer := NewSchemaAnalyzer(db, "shop", createTestLogger())
	tables, err := analyzer.ListTables(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(tables) != 2 || tables[0] != "customers" || tables[1] != "orders" {
		t.Errorf("Expected [customers orders], got %v", tables)
	}
}

func TestFieldDescriptors(t *testing.T) {
	db := &MockQuerier{
		QueryRecordsFunc: func(query string, params ...interface{}) ([]models.Record, error) {
			return []models.Record{
				{"column_name": "id", "data_type": "int", "column_type": "int unsigned", "numeric_precision": uint64(10), "is_nullable": "NO"},
				{"column_name": "name", "data_type": "varchar", "column_type": "varchar(60)", "character_maximum_length": int64(60), "is_nullable": "YES"},
				{"column_name": "active", "data_type": "tinyint", "column_type": "tinyint(1)", "numeric_precision": int64(3), "is_nullable": "NO"},
				{"column_name": "born", "data_type": "DATE", "column_type": "date", "is_nullable": "YES"},
				{"column_name": "photo", "data_type": "blob", "column_type": "blob", "character_maximum_length": "65535", "is_nullable": "YES"},
			}, nil
		},
	}

	analyzer := NewSchemaAnalyzer(db, "shop", createTestLogger())
	fields, err := analyzer.FieldDescriptors(context.Background(), "customers")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expected := []models.FieldDescriptor{
		{Name: "id", Type: models.Numeric, Length: 10},
		{Name: "name", Type: models.Character, Length: 60},
		{Name: "active", Type: models.Logical, Length: 1},
		{Name: "born", Type: models.Date, Length: 8},
		{Name: "photo", Type: models.Unknown, Length: 65535},
	}
	if len(fields) != len(expected) {
		t.Fatalf("Expected %d fields, got %d", len(expected), len(fields))
	}
	for i, f := range expected {
		if fields[i] != f {
			t.Errorf("Field %d: expected %+v, got %+v", i, f, fields[i])
		}
	}

	if !analyzer.TableColumns["customers"][1].IsNullable {
		t.Error("Expected name column to be nullable")
	}
}

func TestAnalyzeTableErrors(t *testing.T) {
	queryErr := errors.New("access denied")
	failing := &MockQuerier{
		QueryRecordsFunc: func(query string, params ...interface{}) ([]models.Record, error) {
			return nil, queryErr
		},
	}
	analyzer := NewSchemaAnalyzer(failing, "shop", createTestLogger())
	if _, err := analyzer.AnalyzeTable(context.Background(), "customers"); !errors.Is(err, queryErr) {
		t.Errorf("Expected query error, got %v", err)
	}

	empty := &MockQuerier{
		QueryRecordsFunc: func(query string, params ...interface{}) ([]models.Record, error) {
			return nil, nil
		},
	}
	analyzer = NewSchemaAnalyzer(empty, "shop", createTestLogger())
	if _, err := analyzer.AnalyzeTable(context.Background(), "missing"); err == nil {
		t.Error("Expected an error for a table without columns")
	}
}

func TestColumnFieldType(t *testing.T) {
	tests := []struct {
		col      Column
		expected models.FieldType
	}{
		{Column{DataType: "tinyint", ColumnType: "tinyint(1)"}, models.Logical},
		{Column{DataType: "tinyint", ColumnType: "tinyint(4)"}, models.Numeric},
		{Column{DataType: "bit", ColumnType: "bit(1)"}, models.Logical},
		{Column{DataType: "bit", ColumnType: "bit(8)"}, models.Unknown},
		{Column{DataType: "decimal", ColumnType: "decimal(10,2)"}, models.Numeric},
		{Column{DataType: "timestamp", ColumnType: "timestamp"}, models.Date},
		{Column{DataType: "enum", ColumnType: "enum('a','b')"}, models.Character},
		{Column{DataType: "json", ColumnType: "json"}, models.Unknown},
	}

	for _, tt := range tests {
		if got := ColumnFieldType(tt.col); got != tt.expected {
			t.Errorf("Expected %s for %s, got %s", tt.expected, tt.col.ColumnType, got)
		}
	}
}

func TestApplyColumnTypes(t *testing.T) {
	fields := []models.FieldDescriptor{
		{Name: "active", Type: models.Logical},
		{Name: "flag", Type: models.Logical},
		{Name: "age", Type: models.Numeric},
	}
	rs := models.NewRecordSet([]models.Record{
		{"active": int64(1), "flag": "\x00", "age": int64(1)},
		{"active": int64(7), "flag": nil, "age": int64(0)},
	})

	out := ApplyColumnTypes(rs, fields)

	if out.Records[0]["active"] != true || out.Records[0]["flag"] != false {
		t.Errorf("Expected logical columns to become booleans, got %v", out.Records[0])
	}
	if out.Records[0]["age"] != int64(1) {
		t.Errorf("Expected numeric column to be untouched, got %v", out.Records[0]["age"])
	}
	if out.Records[1]["active"] != int64(7) {
		t.Errorf("Expected out-of-range value to be kept, got %v", out.Records[1]["active"])
	}
	if rs.Records[0]["active"] != int64(1) {
		t.Error("Expected input records to be left unchanged")
	}
}
