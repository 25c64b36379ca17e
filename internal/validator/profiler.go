package validator

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vitebski/dataset-validator/pkg/models"
)

// fieldAccumulator collects the running statistics of one field
type fieldAccumulator struct {
	profile   models.FieldProfile
	samples   map[string]struct{}
	hasLength bool
}

func newFieldAccumulator(field models.FieldDescriptor) *fieldAccumulator {
	return &fieldAccumulator{
		profile: models.FieldProfile{
			Name:              field.Name,
			Type:              field.Type,
			Length:            field.Length,
			SampleValues:      make([]string, 0, sampleValueCap),
			ValueDistribution: make(map[string]int),
		},
		samples: make(map[string]struct{}, sampleValueCap),
	}
}

// Update feeds one raw value into the accumulator
func (a *fieldAccumulator) Update(value interface{}, present bool, logger *logrus.Logger) {
	if !present || value == nil {
		a.profile.NullCount++
		return
	}

	text, err := stringValue(value)
	if err != nil {
		a.profile.SkippedCount++
		logger.Debugf("Skipping unreadable value in field %s: %v", a.profile.Name, err)
		return
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		a.profile.EmptyCount++
		return
	}

	length := runeLen(trimmed)
	if !a.hasLength || length < a.profile.MinLength {
		a.profile.MinLength = length
	}
	if length > a.profile.MaxLength {
		a.profile.MaxLength = length
	}
	a.hasLength = true

	if len(a.profile.SampleValues) < sampleValueCap {
		sample := truncate(trimmed, sampleValueWidth)
		if _, seen := a.samples[sample]; !seen {
			a.samples[sample] = struct{}{}
			a.profile.SampleValues = append(a.profile.SampleValues, sample)
		}
	}

	if length < distributionValueLimit {
		a.profile.ValueDistribution[trimmed]++
	}
}

func (a *fieldAccumulator) finish(totalRecords int) models.FieldProfile {
	p := a.profile
	p.UniqueCount = len(p.ValueDistribution)
	p.FillRate = percentage(totalRecords-p.NullCount, totalRecords)
	p.AppearsCategorical = float64(p.UniqueCount) < float64(totalRecords)*0.1 && p.UniqueCount < 100
	p.PatternAnalysis = AnalyzePatterns(p.SampleValues)
	return p
}

// ProfileFields builds one profile per declared field in a single pass over the records
func ProfileFields(
	ctx context.Context,
	rs models.RecordSet,
	fields []models.FieldDescriptor,
	logger *logrus.Logger,
) (map[string]models.FieldProfile, error) {
	accumulators := make([]*fieldAccumulator, len(fields))
	for i, field := range fields {
		accumulators[i] = newFieldAccumulator(field)
	}

	for i, record := range rs.Records {
		if err := checkCancel(ctx, i); err != nil {
			return nil, err
		}
		for _, acc := range accumulators {
			value, present := record[acc.profile.Name]
			acc.Update(value, present, logger)
		}
	}

	profiles := make(map[string]models.FieldProfile, len(fields))
	for _, acc := range accumulators {
		profiles[acc.profile.Name] = acc.finish(rs.Len())
	}
	return profiles, nil
}
