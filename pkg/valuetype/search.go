package valuetype

import (
	"sort"
	"strings"
)

// Search returns registered names containing query, case-insensitively.
// Names starting with the query come first, each group in insertion order. An
// empty query matches everything; limit <= 0 means no limit.
func (m *Manager) Search(query string, limit int) []string {
	names := m.Names()
	q := strings.ToLower(strings.TrimSpace(query))

	matches := make([]matchedName, 0, len(names))
	for _, name := range names {
		lower := strings.ToLower(name)
		if !strings.Contains(lower, q) {
			continue
		}
		matches = append(matches, matchedName{
			name:     name,
			isPrefix: strings.HasPrefix(lower, q),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].isPrefix && !matches[j].isPrefix
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]string, 0, len(matches))
	for _, match := range matches {
		out = append(out, match.name)
	}
	return out
}

type matchedName struct {
	name     string
	isPrefix bool
}
