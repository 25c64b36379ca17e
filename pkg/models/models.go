package models

import (
	"fmt"
	"strings"
	"time"
)

// FieldType is the declared type class of a field
type FieldType int

const (
	Unknown FieldType = iota
	Numeric
	Date
	Logical
	Character
)

var fieldTypeNames = map[FieldType]string{
	Unknown:   "Unknown",
	Numeric:   "Numeric",
	Date:      "Date",
	Logical:   "Logical",
	Character: "Character",
}

// String returns the type class name
func (t FieldType) String() string {
	if name, ok := fieldTypeNames[t]; ok {
		return name
	}
	return fieldTypeNames[Unknown]
}

// Code returns the single-letter DBF code for the type class
func (t FieldType) Code() string {
	switch t {
	case Numeric:
		return "N"
	case Date:
		return "D"
	case Logical:
		return "L"
	case Character:
		return "C"
	default:
		return "?"
	}
}

// ParseFieldType maps a DBF type code or a type class name to a FieldType.
// Unrecognised input yields Unknown.
func ParseFieldType(s string) FieldType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "n", "f", "i", "numeric", "number", "float", "integer":
		return Numeric
	case "d", "date":
		return Date
	case "l", "logical", "bool", "boolean":
		return Logical
	case "c", "m", "character", "char", "text", "string", "memo":
		return Character
	default:
		return Unknown
	}
}

// MarshalText implements encoding.TextMarshaler
func (t FieldType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *FieldType) UnmarshalText(text []byte) error {
	*t = ParseFieldType(string(text))
	return nil
}

// FieldDescriptor describes one declared field of the schema
type FieldDescriptor struct {
	Name   string    `json:"name" yaml:"name"`
	Type   FieldType `json:"type" yaml:"type"`
	Length int       `json:"length" yaml:"length"`
}

// Record is one row of named values. A missing key or a nil value is a null.
type Record map[string]interface{}

// Clone returns a shallow copy of the record
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// RecordSet is an ordered, re-iterable snapshot of records
type RecordSet struct {
	Records []Record
}

// NewRecordSet wraps records into a RecordSet
func NewRecordSet(records []Record) RecordSet {
	return RecordSet{Records: records}
}

// Len returns the number of records
func (rs RecordSet) Len() int {
	return len(rs.Records)
}

// PatternClass names one of the recognised value patterns
type PatternClass string

const (
	PatternEmail      PatternClass = "email_like"
	PatternPhone      PatternClass = "phone_like"
	PatternDate       PatternClass = "date_like"
	PatternNumeric    PatternClass = "numeric_like"
	PatternPostalCode PatternClass = "postal_code_like"
	PatternDiacritics PatternClass = "diacritic_characters"
)

// FieldProfile holds the statistics gathered for one field
type FieldProfile struct {
	Name               string               `json:"name"`
	Type               FieldType            `json:"type"`
	Length             int                  `json:"length"`
	NullCount          int                  `json:"null_count"`
	EmptyCount         int                  `json:"empty_count"`
	SkippedCount       int                  `json:"skipped_count"`
	UniqueCount        int                  `json:"unique_count"`
	MinLength          int                  `json:"min_length"`
	MaxLength          int                  `json:"max_length"`
	FillRate           float64              `json:"fill_rate"`
	SampleValues       []string             `json:"sample_values"`
	ValueDistribution  map[string]int       `json:"value_distribution"`
	AppearsCategorical bool                 `json:"appears_categorical"`
	PatternAnalysis    map[PatternClass]int `json:"pattern_analysis"`
}

// DuplicateGroup is a set of records sharing the same content fingerprint
type DuplicateGroup struct {
	Fingerprint   string `json:"hash"`
	RecordIndices []int  `json:"record_indices"`
	Count         int    `json:"count"`
	SampleRecord  Record `json:"sample_record"`
}

// DuplicateReport summarises duplicate detection
type DuplicateReport struct {
	TotalDuplicates       int              `json:"total_duplicates"`
	TotalDuplicateRecords int              `json:"total_duplicate_records"`
	DuplicatePercentage   float64          `json:"duplicate_percentage"`
	Groups                []DuplicateGroup `json:"duplicate_groups"`
}

// TypeIssueExample is one value that failed its field's type check
type TypeIssueExample struct {
	RecordIndex int    `json:"record_index"`
	Value       string `json:"value"`
	Issue       string `json:"issue"`
}

// TypeIssue collects the type-check failures of one field.
// IssueCount is the number of failures in the whole record set; Examples is capped.
type TypeIssue struct {
	FieldName    string             `json:"field_name"`
	ExpectedType FieldType          `json:"expected_type"`
	IssueCount   int                `json:"issue_count"`
	Examples     []TypeIssueExample `json:"examples"`
}

// MissingStats holds the missing-data counts of one field
type MissingStats struct {
	NullCount         int     `json:"null_count"`
	EmptyCount        int     `json:"empty_count"`
	TotalMissing      int     `json:"total_missing"`
	MissingPercentage float64 `json:"missing_percentage"`
	CompletenessScore float64 `json:"completeness_score"`
}

// MissingReport holds per-field missing data and groups of fields that go missing together
type MissingReport struct {
	Fields          map[string]MissingStats `json:"fields"`
	CoMissingGroups [][]string              `json:"co_missing_groups"`
}

// EncodingScore is the round-trip score of one candidate encoding
type EncodingScore struct {
	Encoding string  `json:"encoding"`
	Score    float64 `json:"score"`
}

// EncodingConfidence reports how well the used encoding represents the sampled text
type EncodingConfidence struct {
	EncodingUsed    string          `json:"encoding_used"`
	ConfidenceScore float64         `json:"confidence_score"`
	ConfidenceLevel string          `json:"confidence_level"`
	Alternatives    []EncodingScore `json:"alternative_encodings"`
	Recommendation  string          `json:"recommendation"`
}

// QualityGrade is a letter grade with its qualitative label
type QualityGrade struct {
	Letter string `json:"letter"`
	Label  string `json:"label"`
}

func (g QualityGrade) String() string {
	return fmt.Sprintf("%s (%s)", g.Letter, g.Label)
}

// QualityScore is the weighted overall score
type QualityScore struct {
	OverallScore    float64            `json:"overall_score"`
	Grade           QualityGrade       `json:"grade"`
	ComponentScores map[string]float64 `json:"component_scores"`
}

// Summary is the executive summary of a validation run
type Summary struct {
	TotalRecords    int      `json:"total_records"`
	TotalFields     int      `json:"total_fields"`
	OverallQuality  string   `json:"overall_quality"`
	KeyFindings     []string `json:"key_findings"`
	Recommendations []string `json:"recommendations"`
}

// ValidationReport is the result of one validation run
type ValidationReport struct {
	ReportID           string                  `json:"report_id"`
	GeneratedAt        time.Time               `json:"generated_at"`
	Duplicates         DuplicateReport         `json:"duplicates"`
	FieldAnalysis      map[string]FieldProfile `json:"field_analysis"`
	DataTypes          map[string]TypeIssue    `json:"data_types"`
	MissingData        MissingReport           `json:"missing_data"`
	EncodingConfidence EncodingConfidence      `json:"encoding_confidence"`
	QualityScore       QualityScore            `json:"quality_score"`
	Summary            Summary                 `json:"summary"`
}
