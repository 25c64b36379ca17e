package analyzer

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"github.com/vitebski/dataset-validator/pkg/models"
)

// Querier runs read queries and returns rows as records
type Querier interface {
	QueryRecords(ctx context.Context, query string, params ...interface{}) ([]models.Record, error)
}

// Column represents a database column with its properties
type Column struct {
	Name             string
	DataType         string
	ColumnType       string
	CharMaxLength    *int64
	NumericPrecision *int64
	IsNullable       bool
}

// SchemaAnalyzer reads table definitions from information_schema and maps them
// to validator field descriptors
type SchemaAnalyzer struct {
	DB           Querier
	Database     string
	Tables       []string
	TableColumns map[string][]Column
	Logger       *logrus.Logger
}

// NewSchemaAnalyzer creates a new schema analyzer
func NewSchemaAnalyzer(db Querier, database string, logger *logrus.Logger) *SchemaAnalyzer {
	return &SchemaAnalyzer{
		DB:           db,
		Database:     database,
		TableColumns: make(map[string][]Column),
		Logger:       logger,
	}
}

// ListTables loads the base tables of the database
func (sa *SchemaAnalyzer) ListTables(ctx context.Context) ([]string, error) {
	tablesQuery := `
		SELECT table_name AS table_name
		FROM information_schema.tables
		WHERE table_schema = ?
		AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`
	tablesResult, err := sa.DB.QueryRecords(ctx, tablesQuery, sa.Database)
	if err != nil {
		sa.Logger.Errorf("Error getting tables: %v", err)
		return nil, err
	}

	sa.Tables = sa.Tables[:0]
	for _, row := range tablesResult {
		sa.Tables = append(sa.Tables, cast.ToString(row["table_name"]))
	}
	return sa.Tables, nil
}

// AnalyzeTable loads the column definitions of one table
func (sa *SchemaAnalyzer) AnalyzeTable(ctx context.Context, table string) ([]Column, error) {
	columnsQuery := `
		SELECT
			column_name AS column_name,
			data_type AS data_type,
			column_type AS column_type,
			character_maximum_length AS character_maximum_length,
			numeric_precision AS numeric_precision,
			is_nullable AS is_nullable
		FROM information_schema.columns
		WHERE table_schema = ?
		AND table_name = ?
		ORDER BY ordinal_position
	`
	columnsResult, err := sa.DB.QueryRecords(ctx, columnsQuery, sa.Database, table)
	if err != nil {
		sa.Logger.Errorf("Failed to retrieve columns for table %s: %v", table, err)
		return nil, err
	}
	if len(columnsResult) == 0 {
		return nil, fmt.Errorf("table %s not found in database %s", table, sa.Database)
	}

	var columns []Column
	for _, row := range columnsResult {
		column := Column{
			Name:             cast.ToString(row["column_name"]),
			DataType:         strings.ToLower(cast.ToString(row["data_type"])),
			ColumnType:       strings.ToLower(cast.ToString(row["column_type"])),
			CharMaxLength:    optionalInt(row["character_maximum_length"]),
			NumericPrecision: optionalInt(row["numeric_precision"]),
			IsNullable:       cast.ToString(row["is_nullable"]) == "YES",
		}
		columns = append(columns, column)
	}

	sa.TableColumns[table] = columns
	sa.Logger.Debugf("Table %s has %d columns", table, len(columns))
	return columns, nil
}

// FieldDescriptors analyzes a table and returns its validator schema
func (sa *SchemaAnalyzer) FieldDescriptors(ctx context.Context, table string) ([]models.FieldDescriptor, error) {
	columns, err := sa.AnalyzeTable(ctx, table)
	if err != nil {
		return nil, err
	}

	fields := make([]models.FieldDescriptor, len(columns))
	for i, col := range columns {
		fields[i] = models.FieldDescriptor{
			Name:   col.Name,
			Type:   ColumnFieldType(col),
			Length: columnLength(col),
		}
	}
	return fields, nil
}

// ColumnFieldType maps a MySQL column to a type class
func ColumnFieldType(col Column) models.FieldType {
	switch col.DataType {
	case "tinyint":
		if strings.HasPrefix(col.ColumnType, "tinyint(1)") {
			return models.Logical
		}
		return models.Numeric
	case "bit":
		if col.ColumnType == "bit(1)" {
			return models.Logical
		}
		return models.Unknown
	case "bool", "boolean":
		return models.Logical
	case "smallint", "mediumint", "int", "integer", "bigint",
		"decimal", "numeric", "float", "double", "real", "year":
		return models.Numeric
	case "date", "datetime", "timestamp":
		return models.Date
	case "char", "varchar", "tinytext", "text", "mediumtext", "longtext", "enum", "set":
		return models.Character
	default:
		return models.Unknown
	}
}

func columnLength(col Column) int {
	switch ColumnFieldType(col) {
	case models.Date:
		return 8
	case models.Logical:
		return 1
	}
	if col.CharMaxLength != nil {
		return int(*col.CharMaxLength)
	}
	if col.NumericPrecision != nil {
		return int(*col.NumericPrecision)
	}
	return 0
}

// ApplyColumnTypes returns copies of the records with logical columns stored as
// 0/1 converted to booleans
func ApplyColumnTypes(rs models.RecordSet, fields []models.FieldDescriptor) models.RecordSet {
	var logical []string
	for _, f := range fields {
		if f.Type == models.Logical {
			logical = append(logical, f.Name)
		}
	}
	if len(logical) == 0 {
		return rs
	}

	records := make([]models.Record, len(rs.Records))
	for i, record := range rs.Records {
		out := record.Clone()
		for _, name := range logical {
			v, ok := out[name]
			if !ok || v == nil {
				continue
			}
			// bit(1) columns arrive as a single raw byte
			if s, isString := v.(string); isString && len(s) == 1 && s[0] <= 1 {
				out[name] = s[0] == 1
				continue
			}
			if n, err := cast.ToInt64E(v); err == nil && (n == 0 || n == 1) {
				out[name] = n == 1
			}
		}
		records[i] = out
	}
	return models.NewRecordSet(records)
}

func optionalInt(v interface{}) *int64 {
	if v == nil {
		return nil
	}
	n, err := cast.ToInt64E(v)
	if err != nil {
		return nil
	}
	return &n
}
