package ingest

import (
	"regexp"
	"strconv"
	"strings"

	"heli-training/logbook/internal/models"
)

// approachPattern matches one "<count>x <TYPE> @ <PLACE>" entry.
var approachPattern = regexp.MustCompile(`^(\d+)\s*[xX]\s*(\S.*?)\s*@\s*(\S.*)$`)

// ParseApproaches reads the comma-separated approaches cell. Entries that do
// not match the expected shape are dropped.
func ParseApproaches(raw string) []models.Approach {
	approaches := []models.Approach{}
	for _, entry := range strings.Split(raw, ",") {
		m := approachPattern.FindStringSubmatch(strings.TrimSpace(entry))
		if m == nil {
			continue
		}
		count, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		approaches = append(approaches, models.Approach{
			Type:  strings.ToUpper(strings.TrimSpace(m[2])),
			Count: count,
			Place: strings.TrimSpace(m[3]),
		})
	}
	return approaches
}

// FormatApproaches is the inverse of ParseApproaches.
func FormatApproaches(approaches []models.Approach) string {
	parts := make([]string, 0, len(approaches))
	for _, a := range approaches {
		parts = append(parts, a.String())
	}
	return strings.Join(parts, ", ")
}
