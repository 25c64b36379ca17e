package validator

import (
	"context"
	"encoding/binary"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/vitebski/dataset-validator/pkg/models"
	"github.com/yourbasic/graph"
)

// isEmptyValue reports a present value whose text trims to ""
func isEmptyValue(v interface{}) bool {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val) == ""
	case []byte:
		return strings.TrimSpace(string(val)) == ""
	}
	return false
}

// missingSignature tracks which rows a field is missing in
type missingSignature struct {
	digest *xxhash.Digest
	count  int
}

func (s *missingSignature) add(row int) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(row))
	_, _ = s.digest.Write(buf[:])
	s.count++
}

// AnalyzeMissing counts null and empty values per field and groups fields that
// are missing in exactly the same rows.
func AnalyzeMissing(
	ctx context.Context,
	rs models.RecordSet,
	fields []models.FieldDescriptor,
) (models.MissingReport, error) {
	stats := make([]models.MissingStats, len(fields))
	signatures := make([]missingSignature, len(fields))
	for i := range signatures {
		signatures[i].digest = xxhash.New()
	}

	for row, record := range rs.Records {
		if err := checkCancel(ctx, row); err != nil {
			return models.MissingReport{}, err
		}
		for i, field := range fields {
			value, present := record[field.Name]
			switch {
			case !present || value == nil:
				stats[i].NullCount++
			case isEmptyValue(value):
				stats[i].EmptyCount++
			default:
				continue
			}
			signatures[i].add(row)
		}
	}

	total := rs.Len()
	report := models.MissingReport{
		Fields:          make(map[string]models.MissingStats, len(fields)),
		CoMissingGroups: [][]string{},
	}
	for i, field := range fields {
		s := stats[i]
		s.TotalMissing = s.NullCount + s.EmptyCount
		s.MissingPercentage = percentage(s.TotalMissing, total)
		s.CompletenessScore = 100 - s.MissingPercentage
		report.Fields[field.Name] = s
	}

	report.CoMissingGroups = coMissingGroups(fields, signatures)
	return report, nil
}

// coMissingGroups links fields with identical missing rows and returns the
// connected components with at least two members, in schema order.
func coMissingGroups(fields []models.FieldDescriptor, signatures []missingSignature) [][]string {
	g := graph.New(len(fields))
	bySignature := make(map[uint64]int)

	for i := range fields {
		if signatures[i].count == 0 {
			continue
		}
		key := signatures[i].digest.Sum64() ^ uint64(signatures[i].count)
		if first, ok := bySignature[key]; ok {
			g.AddBoth(first, i)
			continue
		}
		bySignature[key] = i
	}

	groups := [][]string{}
	for _, component := range graph.Components(g) {
		if len(component) < 2 {
			continue
		}
		sort.Ints(component)
		names := make([]string, len(component))
		for j, v := range component {
			names[j] = fields[v].Name
		}
		groups = append(groups, names)
	}
	sort.Slice(groups, func(a, b int) bool {
		return fieldIndex(fields, groups[a][0]) < fieldIndex(fields, groups[b][0])
	})
	return groups
}

func fieldIndex(fields []models.FieldDescriptor, name string) int {
	for i, f := range fields {
		if f.Name == name {
			return i
		}
	}
	return len(fields)
}
