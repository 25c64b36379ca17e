package connector

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"github.com/vitebski/dataset-validator/pkg/models"
)

// dateLayout is how date and time columns are handed to the validator
const dateLayout = "20060102"

// envDefaults maps each connection setting to its environment variable and fallback
var envDefaults = map[string][2]string{
	"host":     {"MYSQL_HOST", "localhost"},
	"user":     {"MYSQL_USER", "root"},
	"password": {"MYSQL_PASSWORD", ""},
	"database": {"MYSQL_DATABASE", ""},
	"port":     {"MYSQL_PORT", "3306"},
}

// DatabaseConnector reads tables from a MySQL database
type DatabaseConnector struct {
	Host     string
	User     string
	Password string
	Database string
	Port     string
	DB       *sql.DB
	Logger   *logrus.Logger
}

// NewDatabaseConnector creates a new database connector. Empty parameters fall
// back to the MYSQL_* environment variables.
func NewDatabaseConnector(host, user, password, database, port string, logger *logrus.Logger) *DatabaseConnector {
	return &DatabaseConnector{
		Host:     settingOrEnv(host, "host"),
		User:     settingOrEnv(user, "user"),
		Password: settingOrEnv(password, "password"),
		Database: settingOrEnv(database, "database"),
		Port:     settingOrEnv(port, "port"),
		Logger:   logger,
	}
}

// DSN returns the driver connection string. Temporal columns are parsed into
// time.Time and text is read as utf8mb4.
func (dc *DatabaseConnector) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = dc.User
	cfg.Passwd = dc.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(dc.Host, dc.Port)
	cfg.DBName = dc.Database
	cfg.ParseTime = true
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

// Connect opens the connection pool and checks that the server answers
func (dc *DatabaseConnector) Connect(ctx context.Context) error {
	if dc.Database == "" {
		return fmt.Errorf("no database selected: pass --database or set MYSQL_DATABASE")
	}

	db, err := sql.Open("mysql", dc.DSN())
	if err != nil {
		dc.Logger.Errorf("Failed to open MySQL connection to %s:%s: %v", dc.Host, dc.Port, err)
		return err
	}
	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetMaxOpenConns(4)

	if err := db.PingContext(ctx); err != nil {
		dc.Logger.Errorf("MySQL server at %s:%s is not reachable: %v", dc.Host, dc.Port, err)
		db.Close()
		return err
	}

	dc.DB = db
	dc.Logger.Infof("Connected to MySQL database %s on %s:%s", dc.Database, dc.Host, dc.Port)
	return nil
}

// Disconnect closes the connection pool
func (dc *DatabaseConnector) Disconnect() {
	if dc.DB == nil {
		return
	}
	if err := dc.DB.Close(); err != nil {
		dc.Logger.Errorf("Failed to close MySQL connection: %v", err)
		return
	}
	dc.Logger.Debug("MySQL connection closed")
}

// QueryRecords runs a read query and returns every row as a record keyed by column name
func (dc *DatabaseConnector) QueryRecords(ctx context.Context, query string, params ...interface{}) ([]models.Record, error) {
	if dc.DB == nil {
		if err := dc.Connect(ctx); err != nil {
			return nil, err
		}
	}

	rows, err := dc.DB.QueryContext(ctx, query, params...)
	if err != nil {
		dc.Logger.Errorf("Query failed: %v", err)
		return nil, err
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		dc.Logger.Errorf("Failed to read query results: %v", err)
		return nil, err
	}
	return records, nil
}

// CountRows returns the number of rows in a table
func (dc *DatabaseConnector) CountRows(ctx context.Context, table string) (int64, error) {
	result, err := dc.QueryRecords(ctx, "SELECT COUNT(*) AS row_count FROM "+QuoteIdentifier(table))
	if err != nil {
		return 0, fmt.Errorf("failed to count rows of %s: %w", table, err)
	}
	if len(result) == 0 {
		return 0, fmt.Errorf("no row count returned for %s", table)
	}
	count, err := cast.ToInt64E(result[0]["row_count"])
	if err != nil {
		return 0, fmt.Errorf("unexpected row count for %s: %w", table, err)
	}
	return count, nil
}

// LoadTable reads up to limit rows of a table; a limit of 0 reads everything
func (dc *DatabaseConnector) LoadTable(ctx context.Context, table string, limit int) (models.RecordSet, error) {
	query := "SELECT * FROM " + QuoteIdentifier(table)
	var params []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		params = append(params, limit)
	}

	if total, err := dc.CountRows(ctx, table); err == nil {
		dc.Logger.Infof("Table %s holds %d rows", table, total)
	} else {
		dc.Logger.Debugf("Skipping row count: %v", err)
	}

	records, err := dc.QueryRecords(ctx, query, params...)
	if err != nil {
		return models.RecordSet{}, fmt.Errorf("failed to load table %s: %w", table, err)
	}
	dc.Logger.Infof("Loaded %d records from table %s", len(records), table)
	return models.NewRecordSet(records), nil
}

// QuoteIdentifier wraps a table or column name in backticks
func QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func scanRecords(rows *sql.Rows) ([]models.Record, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	values := make([]interface{}, len(columns))
	targets := make([]interface{}, len(columns))
	for i := range values {
		targets[i] = &values[i]
	}

	var records []models.Record
	for rows.Next() {
		if err := rows.Scan(targets...); err != nil {
			return nil, err
		}
		record := make(models.Record, len(columns))
		for i, name := range columns {
			record[name] = normalizeValue(values[i])
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// normalizeValue converts driver values into the scalar forms the validator expects
func normalizeValue(val interface{}) interface{} {
	switch v := val.(type) {
	case []byte:
		// Text and decimal columns arrive as raw bytes
		return string(v)
	case time.Time:
		if v.IsZero() {
			return "00000000"
		}
		return v.Format(dateLayout)
	default:
		return v
	}
}

func settingOrEnv(value, setting string) string {
	if value != "" {
		return value
	}
	env := envDefaults[setting]
	if v, ok := os.LookupEnv(env[0]); ok {
		return v
	}
	return env[1]
}
