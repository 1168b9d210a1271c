package viral

import (
	"strings"
	"unicode"
)

// titleKeyLength bounds the normalized key so near-identical headlines with
// divergent tails still collapse to one entry.
const titleKeyLength = 50

// TitleKey normalizes a title for cross-source deduplication: lowercase, strip
// everything but letters and digits, truncate to a fixed prefix.
func TitleKey(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
		if b.Len() >= titleKeyLength {
			break
		}
	}
	return b.String()
}

// DedupByTitle removes events whose normalized title key was already seen.
// First occurrence wins, so the caller's concatenation order is the observable
// tie-break between sources. Idempotent over its own output.
func DedupByTitle(events []Event) []Event {
	seen := make(map[string]struct{}, len(events))
	out := make([]Event, 0, len(events))
	for _, e := range events {
		key := TitleKey(e.Title)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, e)
	}
	return out
}
