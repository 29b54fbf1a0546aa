package textutil

import "strings"

// StripQuotes removes surrounding whitespace and any number of leading or
// trailing quote characters from a CSV header or cell value. The export
// service quotes inconsistently between columns and releases, so values are
// compared only after passing through here.
func StripQuotes(value string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(value), `"`))
}

// NormalizeName prepares a game name for case-insensitive comparison.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// SplitList breaks a comma-separated configuration string into lowercased,
// trimmed terms, dropping empties. A blank input yields nil.
func SplitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	terms := make([]string, 0, len(parts))
	for _, part := range parts {
		term := strings.ToLower(strings.TrimSpace(part))
		if term == "" {
			continue
		}
		terms = append(terms, term)
	}
	if len(terms) == 0 {
		return nil
	}
	return terms
}

// SanitizeToken converts a string to a lowercase identifier-safe token.
// Letters are lowercased, digits and hyphens/underscores are kept, everything
// else becomes an underscore. Returns "unknown" for empty input.
func SanitizeToken(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "_-")
	if out == "" {
		return "unknown"
	}
	return out
}
