// Package cv holds the structured résumé, the critique produced alongside it and
// the edit operations the workflow applies to them.
package cv

// Document is an extracted or edited résumé. An empty string means the value is
// unknown; fields are never absent.
type Document struct {
	FullName   string            `json:"fullName"`
	Email      string            `json:"email"`
	Phone      string            `json:"phone"`
	LinkedIn   string            `json:"linkedin"`
	Summary    string            `json:"summary"`
	Experience []ExperienceEntry `json:"experience"`
	Education  string            `json:"education"`
	Skills     string            `json:"skills"`
}

// ExperienceEntry is one work-experience block. Slice order is display order.
type ExperienceEntry struct {
	Company     string `json:"company"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Result pairs the extracted document with the analysis from the same call.
type Result struct {
	ExtractedCV *Document `json:"extractedCv"`
	Analysis    *Analysis `json:"analysis"`
}

// Clone returns a deep copy. A nil experience stays nil.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := *d
	if d.Experience != nil {
		out.Experience = make([]ExperienceEntry, len(d.Experience))
		copy(out.Experience, d.Experience)
	}
	return &out
}

// Normalize defaults a missing experience list to an empty one.
func (d *Document) Normalize() {
	if d != nil && d.Experience == nil {
		d.Experience = []ExperienceEntry{}
	}
}
