package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/vitebski/dataset-validator/internal/validator"
	"github.com/vitebski/dataset-validator/pkg/models"
)

const bannerWidth = 80

// SetupLogging configures the logging system
func SetupLogging(logLevel string) *logrus.Logger {
	logger := logrus.New()

	// Flag first, then environment, then info
	levelStr := logLevel
	if levelStr == "" {
		levelStr = GetEnvString("VALIDATOR_LOG_LEVEL", "info")
	}

	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}

	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	logger.SetOutput(os.Stderr)

	logger.Debugf("Logging configured with level: %s", level)
	return logger
}

// LoadEnvironmentVariables loads environment variables from a .env file and
// reports whether one was loaded
func LoadEnvironmentVariables(envFile string, logger *logrus.Logger) bool {
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		sampleEnvFile := envFile + ".sample"
		if _, err := os.Stat(sampleEnvFile); err == nil {
			logger.Infof("No %s file found, but %s exists. Consider copying %s to %s and updating it.",
				envFile, sampleEnvFile, sampleEnvFile, envFile)
		} else {
			logger.Debugf("No %s file found, using existing environment variables", envFile)
		}
		return false
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warningf("Error loading %s file: %v", envFile, err)
		return false
	}
	logger.Infof("Loaded environment variables from %s", envFile)

	if logger.IsLevelEnabled(logrus.DebugLevel) {
		for _, env := range os.Environ() {
			if !strings.HasPrefix(env, "VALIDATOR_") && !strings.HasPrefix(env, "MYSQL_") {
				continue
			}
			parts := strings.SplitN(env, "=", 2)
			if len(parts) != 2 {
				continue
			}
			if parts[0] == "MYSQL_PASSWORD" {
				logger.Debugf("%s=********", parts[0])
			} else {
				logger.Debugf("%s=%s", parts[0], parts[1])
			}
		}
	}
	return true
}

// GetEnvInt gets an integer value from environment variable
func GetEnvInt(varName string, defaultValue int) int {
	value := os.Getenv(varName)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

// GetEnvString gets a string value from environment variable
func GetEnvString(varName, defaultValue string) string {
	if value := os.Getenv(varName); value != "" {
		return value
	}
	return defaultValue
}

// EngineOptionsFromEnv returns the validator limits with VALIDATOR_* overrides applied
func EngineOptionsFromEnv() validator.Options {
	opts := validator.DefaultOptions()
	opts.MaxDuplicateGroups = GetEnvInt("VALIDATOR_MAX_DUPLICATE_GROUPS", opts.MaxDuplicateGroups)
	opts.MaxTypeExamples = GetEnvInt("VALIDATOR_MAX_TYPE_EXAMPLES", opts.MaxTypeExamples)
	opts.EncodingSampleSize = GetEnvInt("VALIDATOR_ENCODING_SAMPLE_SIZE", opts.EncodingSampleSize)
	return opts
}

// ValidateConnectionParams checks the MySQL connection settings before a
// connection is attempted. An empty password only logs a warning.
func ValidateConnectionParams(host, user, password, database, port string, logger *logrus.Logger) error {
	var missing []string
	for _, p := range []struct{ name, value string }{
		{"host", host}, {"user", user}, {"database", database},
	} {
		if p.value == "" {
			missing = append(missing, p.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing connection parameters: %s", strings.Join(missing, ", "))
	}

	if n, err := strconv.Atoi(port); err != nil || n <= 0 || n > 65535 {
		return fmt.Errorf("invalid port number: %s", port)
	}

	if password == "" {
		logger.Warning("Database password is empty")
	}
	return nil
}

// WriteJSONReport writes the report as indented JSON
func WriteJSONReport(path string, report *models.ValidationReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}

// PrintValidationReport renders a human readable report
func PrintValidationReport(w io.Writer, source string, report *models.ValidationReport) {
	banner := strings.Repeat("=", bannerWidth)
	summary := report.Summary

	fmt.Fprintln(w, "\n"+banner)
	fmt.Fprintln(w, "DATA VALIDATION REPORT")
	fmt.Fprintln(w, banner)
	if source != "" {
		fmt.Fprintf(w, "Source: %s\n", source)
	}
	fmt.Fprintf(w, "Report ID: %s\n", report.ReportID)
	fmt.Fprintf(w, "Generated: %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "Records: %s\n", humanize.Comma(int64(summary.TotalRecords)))
	fmt.Fprintf(w, "Fields: %s\n", humanize.Comma(int64(summary.TotalFields)))
	fmt.Fprintf(w, "Overall quality: %s (%.2f)\n", summary.OverallQuality, report.QualityScore.OverallScore)

	fmt.Fprintln(w, "\n1. COMPONENT SCORES")
	components := make([]string, 0, len(report.QualityScore.ComponentScores))
	for name := range report.QualityScore.ComponentScores {
		components = append(components, name)
	}
	sort.Strings(components)
	for _, name := range components {
		fmt.Fprintf(w, "   %-14s %6.2f\n", name, report.QualityScore.ComponentScores[name])
	}

	dups := report.Duplicates
	fmt.Fprintln(w, "\n2. DUPLICATES")
	fmt.Fprintf(w, "   Duplicate records: %s (%.2f%%)\n",
		humanize.Comma(int64(dups.TotalDuplicates)), dups.DuplicatePercentage)
	fmt.Fprintf(w, "   Records in duplicate groups: %s\n", humanize.Comma(int64(dups.TotalDuplicateRecords)))
	for _, group := range dups.Groups {
		fmt.Fprintf(w, "   - %dx records %s\n", group.Count, formatIndices(group.RecordIndices))
	}

	fmt.Fprintln(w, "\n3. DATA TYPE ISSUES")
	if len(report.DataTypes) == 0 {
		fmt.Fprintln(w, "   No type issues found")
	}
	for _, name := range sortedKeys(report.DataTypes) {
		issue := report.DataTypes[name]
		fmt.Fprintf(w, "   %s (%s): %s invalid values\n", name, issue.ExpectedType, humanize.Comma(int64(issue.IssueCount)))
		for _, ex := range issue.Examples {
			fmt.Fprintf(w, "     record %d: %q %s\n", ex.RecordIndex, ex.Value, ex.Issue)
		}
	}

	fmt.Fprintln(w, "\n4. MISSING DATA")
	incomplete := 0
	for _, name := range sortedKeys(report.MissingData.Fields) {
		stats := report.MissingData.Fields[name]
		if stats.TotalMissing == 0 {
			continue
		}
		incomplete++
		fmt.Fprintf(w, "   %-20s %s missing (%.2f%%): %s null, %s empty\n", name,
			humanize.Comma(int64(stats.TotalMissing)), stats.MissingPercentage,
			humanize.Comma(int64(stats.NullCount)), humanize.Comma(int64(stats.EmptyCount)))
	}
	if incomplete == 0 {
		fmt.Fprintln(w, "   All fields complete")
	}
	for _, group := range report.MissingData.CoMissingGroups {
		fmt.Fprintf(w, "   Missing together: %s\n", strings.Join(group, ", "))
	}

	enc := report.EncodingConfidence
	fmt.Fprintln(w, "\n5. ENCODING")
	fmt.Fprintf(w, "   Encoding used: %s\n", enc.EncodingUsed)
	fmt.Fprintf(w, "   Confidence: %.2f (%s)\n", enc.ConfidenceScore, enc.ConfidenceLevel)
	for _, alt := range enc.Alternatives {
		fmt.Fprintf(w, "     %-12s %6.2f\n", alt.Encoding, alt.Score)
	}
	fmt.Fprintf(w, "   %s\n", enc.Recommendation)

	if len(summary.KeyFindings) > 0 {
		fmt.Fprintln(w, "\nKEY FINDINGS")
		for _, finding := range summary.KeyFindings {
			fmt.Fprintf(w, "  - %s\n", finding)
		}
	}
	if len(summary.Recommendations) > 0 {
		fmt.Fprintln(w, "\nRECOMMENDATIONS")
		for _, rec := range summary.Recommendations {
			fmt.Fprintf(w, "  - %s\n", rec)
		}
	}

	fmt.Fprintln(w, banner)
}

// PrintConversionSummary prints the outcome of a DBF to CSV conversion
func PrintConversionSummary(w io.Writer, input, output string, records int, size int64) {
	fmt.Fprintln(w, "\n"+strings.Repeat("=", 50))
	fmt.Fprintln(w, "CONVERSION SUMMARY")
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintf(w, "Input: %s\n", input)
	fmt.Fprintf(w, "Output: %s (%s)\n", output, humanize.Bytes(uint64(size)))
	fmt.Fprintf(w, "Records written: %s\n", humanize.Comma(int64(records)))
	fmt.Fprintln(w, strings.Repeat("=", 50))
}

func formatIndices(indices []int) string {
	const shown = 10
	parts := make([]string, 0, shown)
	for i, idx := range indices {
		if i == shown {
			parts = append(parts, fmt.Sprintf("... +%d", len(indices)-shown))
			break
		}
		parts = append(parts, strconv.Itoa(idx))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
