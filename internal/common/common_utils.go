package common

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

func GetResponseTime(init time.Time) string {
	timeDiff := time.Since(init).Milliseconds()
	return fmt.Sprintf("%dms", timeDiff)
}

// NormalizeName folds a person name for comparison: accents stripped,
// upper-cased, inner whitespace collapsed. "Dueñas " and "DUENAS" fold to the same value.
func NormalizeName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	return strings.Join(strings.Fields(strings.ToUpper(folded)), " ")
}

// SameName compares two names with NormalizeName.
func SameName(a, b string) bool {
	return NormalizeName(a) == NormalizeName(b)
}

// MatchRoster returns the roster entry that names the same person as name.
func MatchRoster(name string, roster []string) (string, bool) {
	folded := NormalizeName(name)
	if folded == "" {
		return "", false
	}
	for _, entry := range roster {
		if NormalizeName(entry) == folded {
			return entry, true
		}
	}
	return "", false
}
