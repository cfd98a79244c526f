package schema

import (
	"strings"
	"unicode"
)

// ShortIDLen is the number of hex digits shown for abbreviated commit ids.
const ShortIDLen = 10

// ShortID abbreviates a commit id for display.
func ShortID(id string) string {
	if len(id) <= ShortIDLen {
		return id
	}
	return id[:ShortIDLen]
}

// trimNamePart strips punctuation around a name part, keeping letters, digits, '-', '\'' and inner dots.
func trimNamePart(p string) string {
	p = strings.TrimFunc(p, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '-' && r != '\'' && r != '.'
	})
	return strings.TrimSuffix(p, ".")
}

// AbbreviateName formats "Samuel Huang" to "Samuel H".
// Single-word names are returned as-is and bot accounts are never abbreviated.
func AbbreviateName(name string) string {
	trimmed := strings.TrimSpace(name)
	if strings.Contains(trimmed, "[bot]") {
		return strings.Join(strings.Fields(trimmed), " ")
	}

	var parts []string
	for _, p := range strings.Fields(strings.Trim(trimmed, "()\"'`")) {
		if cp := trimNamePart(p); cp != "" {
			parts = append(parts, cp)
		}
	}

	switch len(parts) {
	case 0:
		return trimmed
	case 1:
		return parts[0]
	}
	last := []rune(parts[len(parts)-1])
	return parts[0] + " " + string(last[0])
}
