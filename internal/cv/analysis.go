package cv

// Analysis is the critique paired with the Document that produced it.
type Analysis struct {
	GeneralAnalysis        GeneralAnalysis        `json:"generalAnalysis"`
	DetailedCorrections    []Correction           `json:"detailedCorrections"`
	EnhancementSuggestions EnhancementSuggestions `json:"enhancementSuggestions"`
	RewrittenContent       *RewrittenContent      `json:"rewrittenContent,omitempty"`
}

type GeneralAnalysis struct {
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
}

// Correction is a literal excerpt of the CV and its suggested replacement.
type Correction struct {
	Original   string `json:"original"`
	Suggestion string `json:"suggestion"`
}

type EnhancementSuggestions struct {
	Skills   []string `json:"skills"`
	Keywords []string `json:"keywords"`
	Projects []string `json:"projects"`
}

// RewrittenContent holds the improved summary and experience descriptions.
type RewrittenContent struct {
	Summary    string                `json:"summary"`
	Experience []RewrittenExperience `json:"experience"`
}

// RewrittenExperience keeps the original description next to its rewrite so the
// rewrite can be attached back to the right experience entry.
type RewrittenExperience struct {
	Original  string `json:"original"`
	Rewritten string `json:"rewritten"`
}

// Clone returns a deep copy.
func (a *Analysis) Clone() *Analysis {
	if a == nil {
		return nil
	}
	out := Analysis{
		GeneralAnalysis: GeneralAnalysis{
			Strengths:  cloneStrings(a.GeneralAnalysis.Strengths),
			Weaknesses: cloneStrings(a.GeneralAnalysis.Weaknesses),
		},
		EnhancementSuggestions: EnhancementSuggestions{
			Skills:   cloneStrings(a.EnhancementSuggestions.Skills),
			Keywords: cloneStrings(a.EnhancementSuggestions.Keywords),
			Projects: cloneStrings(a.EnhancementSuggestions.Projects),
		},
	}
	if a.DetailedCorrections != nil {
		out.DetailedCorrections = make([]Correction, len(a.DetailedCorrections))
		copy(out.DetailedCorrections, a.DetailedCorrections)
	}
	if a.RewrittenContent != nil {
		rc := RewrittenContent{Summary: a.RewrittenContent.Summary}
		if a.RewrittenContent.Experience != nil {
			rc.Experience = make([]RewrittenExperience, len(a.RewrittenContent.Experience))
			copy(rc.Experience, a.RewrittenContent.Experience)
		}
		out.RewrittenContent = &rc
	}
	return &out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
