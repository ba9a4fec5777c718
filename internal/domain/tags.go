package domain

import "strings"

// ParseTags splits a comma-delimited tag string, trims each entry, drops
// blanks and removes case-insensitive duplicates. The first spelling and the
// original order are kept.
func ParseTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		tag := strings.TrimSpace(p)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// HasTag reports whether tag appears in the comma-delimited raw string,
// ignoring case and surrounding whitespace.
func HasTag(raw, tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return false
	}
	for _, t := range ParseTags(raw) {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
