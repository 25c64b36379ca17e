package validator

import (
	"regexp"

	"github.com/vitebski/dataset-validator/pkg/models"
)

var diacriticPattern = regexp.MustCompile(`[À-ÖØ-öø-ÿ]`)

// patternTable is evaluated in order; every class is tested independently
var patternTable = []struct {
	Class   models.PatternClass
	Pattern *regexp.Regexp
}{
	{models.PatternEmail, regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)},
	{models.PatternPhone, regexp.MustCompile(`\+?[\d\s()-]{7,}`)},
	{models.PatternDate, regexp.MustCompile(`\d{1,2}[./-]\d{1,2}[./-]\d{2,4}`)},
	{models.PatternNumeric, regexp.MustCompile(`^[+-]?\d+(\.\d+)?$`)},
	{models.PatternPostalCode, regexp.MustCompile(`^\d{5}$`)},
	{models.PatternDiacritics, diacriticPattern},
}

// HasDiacritics reports whether text contains an accented Latin letter
func HasDiacritics(text string) bool {
	return diacriticPattern.MatchString(text)
}

// MatchPatterns returns every pattern class the value matches
func MatchPatterns(value string) []models.PatternClass {
	if value == "" {
		return nil
	}
	var matches []models.PatternClass
	for _, p := range patternTable {
		if p.Pattern.MatchString(value) {
			matches = append(matches, p.Class)
		}
	}
	return matches
}

// AnalyzePatterns counts pattern hits over a set of sample values
func AnalyzePatterns(samples []string) map[models.PatternClass]int {
	counts := make(map[models.PatternClass]int, len(patternTable))
	for _, p := range patternTable {
		counts[p.Class] = 0
	}
	for _, value := range samples {
		for _, class := range MatchPatterns(value) {
			counts[class]++
		}
	}
	return counts
}
