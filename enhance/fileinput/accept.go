package fileinput

import (
	"strings"
)

// ParseAccept splits an accept attribute into its patterns.
func ParseAccept(attr string) []string {
	var patterns []string
	for _, p := range strings.Split(attr, ",") {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	return patterns
}

// patternMatches tests one accept pattern against a file. A match is either
// a case-insensitive filename substring match, or a MIME-type match with
// wildcard subtype support ("image/*" matches "image/png"). Malformed
// patterns match nothing.
func patternMatches(pattern, fileName, mimeType string) bool {
	p := strings.ToLower(strings.TrimSpace(pattern))
	if p == "" {
		return false
	}

	if strings.Contains(strings.ToLower(fileName), p) {
		return true
	}

	if base, sub, ok := strings.Cut(p, "/"); ok && base != "" && sub != "" {
		mime := strings.ToLower(mimeType)
		if sub == "*" {
			return strings.HasPrefix(mime, base+"/")
		}
		return mime == p
	}

	return false
}

// fileAccepted reports whether any pattern in the accept list admits the
// file.
func fileAccepted(patterns []string, fileName, mimeType string) bool {
	for _, p := range patterns {
		if patternMatches(p, fileName, mimeType) {
			return true
		}
	}
	return false
}
