package cv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplySuggestionsReplacesMatchingEntry(t *testing.T) {
	doc := sampleDocument()
	rewritten := &RewrittenContent{
		Summary: "Backend engineer with 5 years of Go.",
		Experience: []RewrittenExperience{
			{Original: "Built X. Improved Y.", Rewritten: "Delivered X, improving Y by 30%."},
		},
	}

	applied, err := ApplySuggestions(doc, rewritten, nil)
	require.NoError(t, err)

	assert.Equal(t, []int{0}, applied.Experience)
	assert.True(t, applied.Summary)
	assert.Equal(t, "Delivered X, improving Y by 30%.", doc.Experience[0].Description)
	assert.Equal(t, "Led team.", doc.Experience[1].Description)
	assert.Equal(t, "Backend engineer with 5 years of Go.", doc.Summary)
	assert.Equal(t, "Built X. Improved Y.", rewritten.Experience[0].Original)
}

func TestApplySuggestionsIsIdempotent(t *testing.T) {
	doc := sampleDocument()
	rewritten := &RewrittenContent{
		Experience: []RewrittenExperience{
			{Original: "  Built X. Improved Y.  ", Rewritten: "Delivered X."},
			{Original: "Led team. Hired 3 engineers.", Rewritten: "Led a team of 5."},
		},
	}

	_, err := ApplySuggestions(doc, rewritten, nil)
	require.NoError(t, err)
	first := doc.Clone()

	applied, err := ApplySuggestions(doc, rewritten, nil)
	require.NoError(t, err)

	assert.Empty(t, applied.Experience)
	assert.False(t, applied.Summary)
	assert.Equal(t, first, doc)
}

func TestApplySuggestionsKeepsSummaryWhenRewriteEmpty(t *testing.T) {
	doc := sampleDocument()

	_, err := ApplySuggestions(doc, &RewrittenContent{Summary: "   "}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Backend developer.", doc.Summary)
}

func TestApplySuggestionsSkipsEmptyDescriptions(t *testing.T) {
	doc := sampleDocument()
	doc.Experience = append(doc.Experience, ExperienceEntry{Company: "New"})

	_, err := ApplySuggestions(doc, &RewrittenContent{
		Experience: []RewrittenExperience{{Original: "Anything at all.", Rewritten: "Rewritten."}},
	}, nil)
	require.NoError(t, err)
	assert.Empty(t, doc.Experience[2].Description)
}

func TestApplySuggestionsCustomPolicy(t *testing.T) {
	doc := sampleDocument()
	exact := func(original, description string) bool { return original == description }

	_, err := ApplySuggestions(doc, &RewrittenContent{
		Experience: []RewrittenExperience{{Original: "Built X.", Rewritten: "Should not apply."}},
	}, exact)
	require.NoError(t, err)
	assert.Equal(t, "Built X. Improved Y.", doc.Experience[0].Description)
}

func TestApplySuggestionsRequiresInputs(t *testing.T) {
	_, err := ApplySuggestions(nil, &RewrittenContent{}, nil)
	assert.ErrorIs(t, err, ErrNoDocument)

	_, err = ApplySuggestions(sampleDocument(), nil, nil)
	assert.ErrorIs(t, err, ErrNoSuggestions)
}

func TestContainsTrimmed(t *testing.T) {
	assert.True(t, ContainsTrimmed(" Built X. Improved Y. ", "Built X."))
	assert.False(t, ContainsTrimmed("Built X.", ""))
	assert.False(t, ContainsTrimmed("", "Built X."))
	assert.False(t, ContainsTrimmed("Built X.", "Built X. Improved Y."))
}

func TestAnalysisCloneIsDeep(t *testing.T) {
	a := &Analysis{
		GeneralAnalysis:     GeneralAnalysis{Strengths: []string{"clear"}},
		DetailedCorrections: []Correction{{Original: "a", Suggestion: "b"}},
		RewrittenContent:    &RewrittenContent{Experience: []RewrittenExperience{{Original: "o", Rewritten: "r"}}},
	}

	clone := a.Clone()
	clone.GeneralAnalysis.Strengths[0] = "changed"
	clone.DetailedCorrections[0].Original = "changed"
	clone.RewrittenContent.Experience[0].Rewritten = "changed"

	assert.Equal(t, "clear", a.GeneralAnalysis.Strengths[0])
	assert.Equal(t, "a", a.DetailedCorrections[0].Original)
	assert.Equal(t, "r", a.RewrittenContent.Experience[0].Rewritten)
}
