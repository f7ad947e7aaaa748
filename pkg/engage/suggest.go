package engage

import (
	"sort"
	"strings"
)

// TopicSuggestion is a tag that recurs among the top-ranked videos,
// reported in its first-seen spelling.
type TopicSuggestion struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// SuggestTopics counts tags across the top-K ranked videos and returns
// the top-N most frequent as content topic suggestions. Tags are
// counted case-insensitively after trimming; ties keep first-seen
// order, so equal inputs always suggest identically.
func (e *Engine) SuggestTopics(ranked []ScoredVideo) []TopicSuggestion {
	top := ranked
	if len(top) > e.cfg.TopKForSuggestions {
		top = top[:e.cfg.TopKForSuggestions]
	}

	type tagCount struct {
		display string // first-seen spelling
		count   int
	}

	byKey := make(map[string]*tagCount)
	var firstSeen []*tagCount

	for _, sv := range top {
		for _, tag := range sv.Tags {
			display := strings.TrimSpace(tag)
			if display == "" {
				continue
			}
			key := strings.ToLower(display)

			tc, ok := byKey[key]
			if !ok {
				tc = &tagCount{display: display}
				byKey[key] = tc
				firstSeen = append(firstSeen, tc)
			}
			tc.count++
		}
	}

	// Stable sort over the first-seen sequence keeps tie order
	// deterministic.
	sort.SliceStable(firstSeen, func(i, j int) bool {
		return firstSeen[i].count > firstSeen[j].count
	})

	n := e.cfg.TopNSuggestions
	if n > len(firstSeen) {
		n = len(firstSeen)
	}

	suggestions := make([]TopicSuggestion, 0, n)
	for _, tc := range firstSeen[:n] {
		suggestions = append(suggestions, TopicSuggestion{Tag: tc.display, Count: tc.count})
	}
	return suggestions
}
