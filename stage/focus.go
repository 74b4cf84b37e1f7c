package stage

import (
	"strings"

	"github.com/stewardhq/steward"
)

// minSignificantLen is the word length below which a title word carries too
// little signal to count toward a fuzzy match.
const minSignificantLen = 3

// DetectFocus matches a message to at most one candidate initiative, in
// priority order: exact case-insensitive Jira key substring, fuzzy title
// match, exact id substring. First match wins; nil when nothing matches.
// The result only selects which guidance to inject; it never triggers tool
// execution by itself.
func DetectFocus(message string, candidates []steward.Initiative) *steward.Initiative {
	lower := strings.ToLower(message)

	for i := range candidates {
		if key := candidates[i].JiraKey; key != "" && strings.Contains(lower, strings.ToLower(key)) {
			return &candidates[i]
		}
	}

	for i := range candidates {
		if titleMatches(lower, candidates[i].Title) {
			return &candidates[i]
		}
	}

	for i := range candidates {
		if id := candidates[i].ID; id != "" && strings.Contains(lower, strings.ToLower(id)) {
			return &candidates[i]
		}
	}

	return nil
}

// titleMatches requires at least two significant title words (length > 3) to
// appear in the message, or all of them when the title has fewer than two.
func titleMatches(lowerMessage, title string) bool {
	var significant []string
	for _, w := range strings.Fields(strings.ToLower(title)) {
		if len(w) > minSignificantLen {
			significant = append(significant, w)
		}
	}
	if len(significant) == 0 {
		return false
	}

	needed := 2
	if len(significant) < 2 {
		needed = len(significant)
	}

	found := 0
	for _, w := range significant {
		if strings.Contains(lowerMessage, w) {
			found++
			if found >= needed {
				return true
			}
		}
	}
	return false
}
