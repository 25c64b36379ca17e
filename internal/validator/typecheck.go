package validator

import (
	"context"
	"regexp"
	"strings"

	"github.com/vitebski/dataset-validator/pkg/models"
)

var (
	numericSyntax = regexp.MustCompile(`^-?\d*\.?\d*$`)
	dateSyntax    = regexp.MustCompile(`^\d{8}$`)
)

// typeValidator returns a description of what is wrong with a trimmed value,
// or "" when the value is acceptable
type typeValidator func(value string) string

var typeValidators = map[models.FieldType]typeValidator{
	models.Numeric: checkNumeric,
	models.Date:    checkDate,
	models.Logical: checkLogical,
}

func checkNumeric(value string) string {
	if numericSyntax.MatchString(value) {
		return ""
	}
	return "Non-numeric value in numeric field"
}

func checkDate(value string) string {
	// Blank and all-zero dates mean "unset".
	if value == "" || value == "00000000" || dateSyntax.MatchString(value) {
		return ""
	}
	return "Invalid date format (expected YYYYMMDD)"
}

func checkLogical(value string) string {
	switch strings.ToUpper(value) {
	case "T", "F", "Y", "N", "":
		return ""
	}
	return "Invalid logical value (expected T/F/Y/N)"
}

// CheckValue validates one non-null value against a type class. It returns the
// issue description and false when the value does not fit.
func CheckValue(fieldType models.FieldType, value interface{}) (string, bool) {
	validate, ok := typeValidators[fieldType]
	if !ok || value == nil {
		return "", true
	}
	if _, isBool := value.(bool); isBool && fieldType == models.Logical {
		return "", true
	}
	text, err := stringValue(value)
	if err != nil {
		return "", true
	}
	if issue := validate(strings.TrimSpace(text)); issue != "" {
		return issue, false
	}
	return "", true
}

// CheckTypes validates every non-null value against its field's declared type.
// IssueCount reflects every failure in the record set while Examples keeps at
// most maxExamples entries. Fields without failures are left out of the result.
func CheckTypes(
	ctx context.Context,
	rs models.RecordSet,
	fields []models.FieldDescriptor,
	maxExamples int,
) (map[string]models.TypeIssue, error) {
	issues := make(map[string]models.TypeIssue)

	for _, field := range fields {
		if _, checked := typeValidators[field.Type]; !checked {
			continue
		}

		issue := models.TypeIssue{FieldName: field.Name, ExpectedType: field.Type}
		for i, record := range rs.Records {
			if err := checkCancel(ctx, i); err != nil {
				return nil, err
			}
			value := record[field.Name]
			description, ok := CheckValue(field.Type, value)
			if ok {
				continue
			}
			issue.IssueCount++
			if len(issue.Examples) < maxExamples {
				text, _ := stringValue(value)
				issue.Examples = append(issue.Examples, models.TypeIssueExample{
					RecordIndex: i,
					Value:       truncate(strings.TrimSpace(text), exampleValueWidth),
					Issue:       description,
				})
			}
		}

		if issue.IssueCount > 0 {
			issues[field.Name] = issue
		}
	}
	return issues, nil
}
