package connector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitebski/dataset-validator/pkg/models"
)

func TestNewDatabaseConnector(t *testing.T) {
	t.Setenv("MYSQL_HOST", "test-host")
	t.Setenv("MYSQL_USER", "test-user")
	t.Setenv("MYSQL_PASSWORD", "test-password")
	t.Setenv("MYSQL_DATABASE", "test-database")
	t.Setenv("MYSQL_PORT", "3307")

	logger := createTestLogger()

	// Create a new database connector
	db := NewDatabaseConnector("", "", "", "", "", logger)

	// Check that environment variables were used
	if db.Host != "test-host" {
		t.Errorf("Expected host to be 'test-host', got '%s'", db.Host)
	}
	if db.User != "test-user" {
		t.Errorf("Expected user to be 'test-user', got '%s'", db.User)
	}
	if db.Password != "test-password" {
		t.Errorf("Expected password to be 'test-password', got '%s'", db.Password)
	}
	if db.Database != "test-database" {
		t.Errorf("Expected database to be 'test-database', got '%s'", db.Database)
	}
	if db.Port != "3307" {
		t.Errorf("Expected port to be '3307', got '%s'", db.Port)
	}

	// Test with explicit parameters
	db = NewDatabaseConnector("explicit-host", "explicit-user", "explicit-password", "explicit-database", "3308", logger)

	if db.Host != "explicit-host" {
		t.Errorf("Expected host to be 'explicit-host', got '%s'", db.Host)
	}
	if db.Database != "explicit-database" {
		t.Errorf("Expected database to be 'explicit-database', got '%s'", db.Database)
	}
	if db.Port != "3308" {
		t.Errorf("Expected port to be '3308', got '%s'", db.Port)
	}
}

func TestDSN(t *testing.T) {
	dc := NewDatabaseConnector("db.local", "reader", "p@ss:word", "shop", "3308", createTestLogger())

	cfg, err := mysql.ParseDSN(dc.DSN())
	require.NoError(t, err)
	assert.Equal(t, "reader", cfg.User)
	assert.Equal(t, "p@ss:word", cfg.Passwd)
	assert.Equal(t, "db.local:3308", cfg.Addr)
	assert.Equal(t, "shop", cfg.DBName)
	assert.True(t, cfg.ParseTime)
	assert.Contains(t, dc.DSN(), "charset=utf8mb4")
}

func TestConnectRequiresDatabase(t *testing.T) {
	dc := &DatabaseConnector{Logger: createTestLogger()}
	if err := dc.Connect(context.Background()); err == nil {
		t.Error("Expected an error when no database name is configured")
	}
}

func TestLoadTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	born := time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC)
	expectRowCount(mock, "customers", 2)
	mock.ExpectQuery("SELECT \\* FROM `customers` LIMIT \\?").
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"name", "age", "born"}).
			AddRow([]byte("Müller"), int64(34), born).
			AddRow(nil, int64(29), time.Time{}))

	dc := &DatabaseConnector{DB: db, Logger: createTestLogger()}
	rs, err := dc.LoadTable(context.Background(), "customers", 2)
	require.NoError(t, err)

	assert.Equal(t, []models.Record{
		{"name": "Müller", "age": int64(34), "born": "19900102"},
		{"name": nil, "age": int64(29), "born": "00000000"},
	}, rs.Records)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadTableWithoutLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectRowCount(mock, "odd``name", 1)
	mock.ExpectQuery("SELECT \\* FROM `odd``name`$").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	dc := &DatabaseConnector{DB: db, Logger: createTestLogger()}
	rs, err := dc.LoadTable(context.Background(), "odd`name", 0)
	require.NoError(t, err)

	assert.Equal(t, 1, rs.Len())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadTableQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	queryErr := errors.New("table does not exist")
	mock.ExpectQuery("SELECT COUNT").WillReturnError(queryErr)
	mock.ExpectQuery("SELECT \\* FROM `missing`").WillReturnError(queryErr)

	dc := &DatabaseConnector{DB: db, Logger: createTestLogger()}
	_, err = dc.LoadTable(context.Background(), "missing", 0)

	assert.ErrorIs(t, err, queryErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) AS row_count FROM `orders`").
		WillReturnRows(sqlmock.NewRows([]string{"row_count"}).AddRow([]byte("1250")))

	dc := &DatabaseConnector{DB: db, Logger: createTestLogger()}
	count, err := dc.CountRows(context.Background(), "orders")
	require.NoError(t, err)
	assert.Equal(t, int64(1250), count)
}

func TestNormalizeValue(t *testing.T) {
	assert.Nil(t, normalizeValue(nil))
	assert.Equal(t, "12.50", normalizeValue([]byte("12.50")))
	assert.Equal(t, "20240131", normalizeValue(time.Date(2024, 1, 31, 13, 45, 0, 0, time.UTC)))
	assert.Equal(t, "00000000", normalizeValue(time.Time{}))
	assert.Equal(t, int64(7), normalizeValue(int64(7)))
}

func expectRowCount(mock sqlmock.Sqlmock, table string, count int64) {
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) AS row_count FROM `" + table + "`").
		WillReturnRows(sqlmock.NewRows([]string{"row_count"}).AddRow(count))
}

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, "`customers`", QuoteIdentifier("customers"))
	assert.Equal(t, "`a``b`", QuoteIdentifier("a`b"))
}

// Helper function to create a test logger
func createTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel) // Suppress log output during tests
	return logger
}
