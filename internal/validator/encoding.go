package validator

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/vitebski/dataset-validator/internal/charset"
	"github.com/vitebski/dataset-validator/pkg/models"
)

const (
	retentionWeight    = 40.0
	diacriticBonus     = 30.0
	noReplacementBonus = 30.0

	// switchMargin is how far the best candidate must lead before a switch is suggested
	switchMargin = 20.0
)

// SampleText collects up to maxSamples string values longer than five runes from
// the first maxRecords records, visiting fields in schema order.
func SampleText(rs models.RecordSet, fields []models.FieldDescriptor, maxRecords, maxSamples int) []string {
	samples := make([]string, 0, maxSamples)
	for i, record := range rs.Records {
		if i >= maxRecords {
			break
		}
		for _, field := range fields {
			text, ok := record[field.Name].(string)
			if !ok || runeLen(text) <= minSampleTextLength {
				continue
			}
			samples = append(samples, text)
			if len(samples) >= maxSamples {
				return samples
			}
		}
	}
	return samples
}

// ScoreEncoding rates how well the sample survives a round trip through the
// candidate encoding. An empty sample scores 0.
func ScoreEncoding(samples []string, candidate charset.Candidate) float64 {
	if len(samples) == 0 {
		return 0
	}

	var total float64
	for _, text := range samples {
		original := runeLen(text)
		if original == 0 {
			continue
		}
		decoded := candidate.RoundTrip(text)

		retention := float64(runeLen(decoded)) / float64(original)
		if retention > 1 {
			retention = 1
		}
		total += retention * retentionWeight
		if HasDiacritics(decoded) {
			total += diacriticBonus
		}
		if !strings.ContainsRune(decoded, utf8.RuneError) {
			total += noReplacementBonus
		}
	}
	return total / float64(len(samples))
}

// ConfidenceLevel buckets a confidence score
func ConfidenceLevel(score float64) string {
	switch {
	case score >= 80:
		return "High"
	case score >= 60:
		return "Medium"
	case score >= 40:
		return "Low"
	default:
		return "Very Low"
	}
}

// EstimateEncoding scores every estimator candidate against the sample and
// reports the confidence of the encoding the records were decoded with.
func EstimateEncoding(
	ctx context.Context,
	rs models.RecordSet,
	fields []models.FieldDescriptor,
	encodingUsed string,
	opts Options,
) (models.EncodingConfidence, error) {
	opts = opts.withDefaults()
	if err := ctx.Err(); err != nil {
		return models.EncodingConfidence{}, err
	}

	samples := SampleText(rs, fields, opts.EncodingSampleRecords, opts.EncodingSampleSize)

	scores := make([]models.EncodingScore, 0, len(charset.EstimatorCandidates))
	for _, name := range charset.EstimatorCandidates {
		scores = append(scores, models.EncodingScore{
			Encoding: name,
			Score:    ScoreEncoding(samples, charset.MustLookup(name)),
		})
	}

	usedName := charset.Normalize(encodingUsed)
	var usedScore float64
	for _, s := range scores {
		if s.Encoding == usedName {
			usedScore = s.Score
			break
		}
	}

	best := scores[0]
	for _, s := range scores[1:] {
		if s.Score > best.Score {
			best = s
		}
	}

	ranked := make([]models.EncodingScore, len(scores))
	copy(ranked, scores)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })

	return models.EncodingConfidence{
		EncodingUsed:    encodingUsed,
		ConfidenceScore: usedScore,
		ConfidenceLevel: ConfidenceLevel(usedScore),
		Alternatives:    ranked,
		Recommendation:  encodingRecommendation(encodingUsed, usedScore, best),
	}, nil
}

func encodingRecommendation(current string, currentScore float64, best models.EncodingScore) string {
	switch {
	case best.Score > currentScore+switchMargin:
		return fmt.Sprintf("Consider using '%s' (score: %.1f) instead of '%s' (score: %.1f)",
			best.Encoding, best.Score, current, currentScore)
	case currentScore >= 80:
		return fmt.Sprintf("Current encoding '%s' is optimal", current)
	default:
		return fmt.Sprintf("Current encoding '%s' may have issues. Best alternative: '%s'", current, best.Encoding)
	}
}
