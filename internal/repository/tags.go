package repository

import "strings"

// ParseTags splits a comma-separated tag list into an ordered set: each tag
// is trimmed, empty entries are dropped and repeats keep their first
// position. The result is never nil.
func ParseTags(raw string) []string {
	tags := make([]string, 0)
	seen := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		tag := strings.TrimSpace(part)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}
