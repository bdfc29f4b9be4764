package telemetry

import "strings"

// SanitizeID derives a stable identifier from a display name: lowercase,
// every run of non-alphanumeric characters collapsed to a single hyphen,
// leading and trailing hyphens trimmed. Repeated snapshots referencing the
// same agent always map to the same identity, and plan-step links depend on
// that. "Doc Extractor" and "doc-extractor" intentionally collide.
func SanitizeID(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	lastHyphen := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen && b.Len() > 0 {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
