package validator

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/vitebski/dataset-validator/pkg/models"
)

// Fingerprint hashes the non-null content of a record. Field order does not
// matter and values keep their type, so 34 and "34" differ.
func Fingerprint(record models.Record) string {
	keys := make([]string, 0, len(record))
	for k, v := range record {
		if v != nil {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(strconv.Quote(k))
		b.WriteByte('=')
		b.WriteString(canonicalValue(record[k]))
		b.WriteByte(0x1e)
	}
	return fmt.Sprintf("%016x", xxhash.Sum64String(b.String()))
}

func canonicalValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return "s:" + strconv.Quote(val)
	case []byte:
		return "s:" + strconv.Quote(string(val))
	case bool:
		return "b:" + strconv.FormatBool(val)
	case int:
		return "i:" + strconv.FormatInt(int64(val), 10)
	case int32:
		return "i:" + strconv.FormatInt(int64(val), 10)
	case int64:
		return "i:" + strconv.FormatInt(val, 10)
	case uint64:
		return "i:" + strconv.FormatUint(val, 10)
	case float32:
		return "f:" + strconv.FormatFloat(float64(val), 'g', -1, 32)
	case float64:
		return "f:" + strconv.FormatFloat(val, 'g', -1, 64)
	default:
		return fmt.Sprintf("%T:%v", v, v)
	}
}

// DetectDuplicates groups record indices by content fingerprint. Only groups
// with two or more members are reported, in order of first appearance, and at
// most maxGroups of them are kept for display.
func DetectDuplicates(ctx context.Context, rs models.RecordSet, maxGroups int) (models.DuplicateReport, error) {
	byFingerprint := make(map[string][]int)
	var order []string

	for i, record := range rs.Records {
		if err := checkCancel(ctx, i); err != nil {
			return models.DuplicateReport{}, err
		}
		fp := Fingerprint(record)
		if _, seen := byFingerprint[fp]; !seen {
			order = append(order, fp)
		}
		byFingerprint[fp] = append(byFingerprint[fp], i)
	}

	report := models.DuplicateReport{Groups: []models.DuplicateGroup{}}
	for _, fp := range order {
		indices := byFingerprint[fp]
		if len(indices) < 2 {
			continue
		}
		report.TotalDuplicates++
		report.TotalDuplicateRecords += len(indices)
		if len(report.Groups) < maxGroups {
			report.Groups = append(report.Groups, models.DuplicateGroup{
				Fingerprint:   fp,
				RecordIndices: indices,
				Count:         len(indices),
				SampleRecord:  rs.Records[indices[0]].Clone(),
			})
		}
	}
	report.DuplicatePercentage = percentage(report.TotalDuplicateRecords, rs.Len())
	return report, nil
}
