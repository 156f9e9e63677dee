package model

import (
	"strings"
	"time"
)

const tagDateFormat = "2006-01-02"

// GenerateTagName returns "<name>-<YYYY-MM-DD>-<environment>" for the current
// UTC date. Empty segments are omitted, e.g. "exampleApp-2024-01-15".
func GenerateTagName(name, environment string) string {
	return GenerateTagNameAt(time.Now(), name, environment)
}

// GenerateTagNameAt is GenerateTagName with an explicit clock
func GenerateTagNameAt(now time.Time, name, environment string) string {
	segments := []string{name, now.UTC().Format(tagDateFormat), environment}

	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s != "" {
			parts = append(parts, s)
		}
	}

	return strings.Join(parts, "-")
}
