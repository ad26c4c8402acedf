package dom

import (
	"strings"
)

// MakeSafeForID derives a DOM-safe identifier from an arbitrary string:
// lower-cased, every run of non [a-z0-9] characters collapsed to a single
// hyphen. The result is never empty.
func MakeSafeForID(s string) string {
	var sb strings.Builder
	lastHyphen := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen && sb.Len() > 0 {
			sb.WriteByte('-')
			lastHyphen = true
		}
	}
	out := strings.TrimSuffix(sb.String(), "-")
	if out == "" {
		return "element"
	}
	return out
}
