package validator

import (
	"fmt"
	"math"

	"github.com/vitebski/dataset-validator/pkg/models"
)

// Component names used in QualityScore.ComponentScores
const (
	ComponentDuplicates   = "duplicates"
	ComponentCompleteness = "completeness"
	ComponentEncoding     = "encoding"
	ComponentDataTypes    = "data_types"
)

const duplicateRecommendationThreshold = 5.0

var componentWeights = map[string]float64{
	ComponentDuplicates:   20,
	ComponentCompleteness: 30,
	ComponentEncoding:     25,
	ComponentDataTypes:    25,
}

var gradeTable = []struct {
	Min   float64
	Grade models.QualityGrade
}{
	{90, models.QualityGrade{Letter: "A", Label: "Excellent"}},
	{80, models.QualityGrade{Letter: "B", Label: "Good"}},
	{70, models.QualityGrade{Letter: "C", Label: "Fair"}},
	{60, models.QualityGrade{Letter: "D", Label: "Poor"}},
}

// GradeFor maps an overall score to its letter grade
func GradeFor(score float64) models.QualityGrade {
	for _, g := range gradeTable {
		if score >= g.Min {
			return g.Grade
		}
	}
	return models.QualityGrade{Letter: "F", Label: "Very Poor"}
}

// StageResults carries the outputs of the independent analysis stages
type StageResults struct {
	Duplicates models.DuplicateReport
	Profiles   map[string]models.FieldProfile
	TypeIssues map[string]models.TypeIssue
	Missing    models.MissingReport
	Encoding   models.EncodingConfidence
}

// CalculateQualityScore combines the component scores into a weighted overall
// score. Completeness is left out when the schema has no fields.
func CalculateQualityScore(results StageResults, fields []models.FieldDescriptor) models.QualityScore {
	components := make(map[string]float64, len(componentWeights))

	components[ComponentDuplicates] = math.Max(0, 100-results.Duplicates.DuplicatePercentage*2)

	if len(fields) > 0 {
		var sum float64
		for _, field := range fields {
			sum += results.Missing.Fields[field.Name].CompletenessScore
		}
		components[ComponentCompleteness] = sum / float64(len(fields))
	}

	components[ComponentEncoding] = results.Encoding.ConfidenceScore

	if len(fields) > 0 {
		ratio := float64(len(results.TypeIssues)) / float64(len(fields)) * 100
		components[ComponentDataTypes] = math.Max(0, 100-ratio)
	} else {
		components[ComponentDataTypes] = 100
	}

	var weighted, weights float64
	for _, name := range []string{ComponentDuplicates, ComponentCompleteness, ComponentEncoding, ComponentDataTypes} {
		score, ok := components[name]
		if !ok {
			continue
		}
		weighted += score * componentWeights[name]
		weights += componentWeights[name]
	}

	overall := 0.0
	if weights > 0 {
		overall = weighted / weights
	}

	return models.QualityScore{
		OverallScore:    overall,
		Grade:           GradeFor(overall),
		ComponentScores: components,
	}
}

// BuildSummary derives the executive summary from the stage results and score
func BuildSummary(
	results StageResults,
	score models.QualityScore,
	totalRecords int,
	totalFields int,
) models.Summary {
	summary := models.Summary{
		TotalRecords:    totalRecords,
		TotalFields:     totalFields,
		OverallQuality:  score.Grade.String(),
		KeyFindings:     []string{},
		Recommendations: []string{},
	}

	if results.Duplicates.TotalDuplicates > 0 {
		summary.KeyFindings = append(summary.KeyFindings,
			fmt.Sprintf("Found %d duplicate record groups", results.Duplicates.TotalDuplicates))
	}
	if len(results.TypeIssues) > 0 {
		summary.KeyFindings = append(summary.KeyFindings,
			fmt.Sprintf("Data type inconsistencies found in %d fields", len(results.TypeIssues)))
	}
	if len(results.Missing.CoMissingGroups) > 0 {
		summary.KeyFindings = append(summary.KeyFindings,
			fmt.Sprintf("Found %d groups of fields that are missing together", len(results.Missing.CoMissingGroups)))
	}

	if results.Duplicates.DuplicatePercentage > duplicateRecommendationThreshold {
		summary.Recommendations = append(summary.Recommendations,
			"Consider removing duplicate records before processing")
	}
	if results.Encoding.ConfidenceScore < 70 {
		summary.Recommendations = append(summary.Recommendations, results.Encoding.Recommendation)
	}
	return summary
}
