package validator

import (
	"context"
	"unicode/utf8"

	"github.com/spf13/cast"
)

// stringValue renders a non-null record value as text
func stringValue(v interface{}) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case []byte:
		return string(val), nil
	}
	return cast.ToStringE(v)
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// truncate cuts s to at most n runes
func truncate(s string, n int) string {
	if runeLen(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

func percentage(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// checkCancel reports the context error every cancelCheckInterval iterations
func checkCancel(ctx context.Context, i int) error {
	if i%cancelCheckInterval != 0 {
		return nil
	}
	return ctx.Err()
}
