package cv

import (
	"errors"
	"strings"
)

var ErrNoSuggestions = errors.New("no rewritten content to apply")

// MatchPolicy reports whether a rewritten block was produced from the given
// experience description.
type MatchPolicy func(original, description string) bool

// ContainsTrimmed matches when the trimmed original contains the trimmed
// description. Empty values never match.
func ContainsTrimmed(original, description string) bool {
	original = strings.TrimSpace(original)
	description = strings.TrimSpace(description)
	if original == "" || description == "" {
		return false
	}
	return strings.Contains(original, description)
}

// Applied reports what ApplySuggestions changed.
type Applied struct {
	Experience []int
	Summary    bool
}

// ApplySuggestions replaces every experience description that match attaches to
// a rewritten block (first match wins) and the summary when a rewritten one
// exists. Unmatched entries keep their text. The rewritten content itself is not
// modified.
func ApplySuggestions(doc *Document, rewritten *RewrittenContent, match MatchPolicy) (Applied, error) {
	var applied Applied
	if doc == nil {
		return applied, ErrNoDocument
	}
	if rewritten == nil {
		return applied, ErrNoSuggestions
	}
	if match == nil {
		match = ContainsTrimmed
	}

	for i := range doc.Experience {
		for _, block := range rewritten.Experience {
			if !match(block.Original, doc.Experience[i].Description) {
				continue
			}
			if doc.Experience[i].Description != block.Rewritten {
				doc.Experience[i].Description = block.Rewritten
				applied.Experience = append(applied.Experience, i)
			}
			break
		}
	}

	if strings.TrimSpace(rewritten.Summary) != "" && doc.Summary != rewritten.Summary {
		doc.Summary = rewritten.Summary
		applied.Summary = true
	}

	return applied, nil
}
