// Package render projects workflow state into the text views shown by the
// interactive session. Rendering is a pure function of the state.
package render

import (
	"strings"
	"text/template"

	"github.com/hoangphuccoder123/tutorbond/internal/cv"
	"github.com/hoangphuccoder123/tutorbond/internal/i18n"
	"github.com/hoangphuccoder123/tutorbond/internal/workflow"
)

// Chrome describes the controls around the three views.
type Chrome struct {
	// UploadView is true until a document exists.
	UploadView bool
	// UploadSpinner is shown on the upload view while the first analysis runs.
	UploadSpinner    bool
	ReanalyzeEnabled bool
	ExportEnabled    bool
	ActiveView       workflow.View
	InlineError      string
	SourceName       string
}

type Views struct {
	Editor   string
	Preview  string
	Analysis string
	Chrome   Chrome
}

type Renderer struct {
	locale i18n.Locale
}

func New(locale i18n.Locale) *Renderer {
	return &Renderer{locale: locale}
}

// Render uses the English locale.
func Render(state workflow.State) Views {
	return New(i18n.English).Render(state)
}

func (r *Renderer) Render(state workflow.State) Views {
	views := Views{
		Analysis: r.analysis(state),
		Chrome:   chrome(state),
	}
	if state.Document != nil {
		views.Editor = editor(state.Document)
		views.Preview = r.preview(state.Document)
	}
	return views
}

func chrome(state workflow.State) Chrome {
	c := Chrome{
		UploadView:       state.Document == nil,
		UploadSpinner:    state.Document == nil && state.Loading(),
		ReanalyzeEnabled: !state.Loading() && state.Source != nil,
		ExportEnabled:    state.Document != nil,
		ActiveView:       state.View,
	}
	if state.Err != nil {
		c.InlineError = state.Err.Message
	}
	if state.Source != nil {
		c.SourceName = state.Source.Name
		if c.SourceName == "" {
			c.SourceName = "CV.docx"
		}
	}
	return c
}

// BulletPoints splits a description into sentences on '.', '!', '?' and line
// breaks, trimming each and dropping empties.
func BulletPoints(description string) []string {
	return trimNonEmpty(strings.FieldsFunc(description, func(r rune) bool {
		switch r {
		case '.', '!', '?', '\n', '\r':
			return true
		}
		return false
	}))
}

// SkillList splits a comma separated skills string.
func SkillList(skills string) []string {
	return trimNonEmpty(strings.Split(skills, ","))
}

func trimNonEmpty(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func execute(tmpl *template.Template, data any) string {
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		// Templates are fixed and data is plain structs.
		panic(err)
	}
	return b.String()
}

var funcs = template.FuncMap{
	"bullets": BulletPoints,
	"skills":  SkillList,
	"join":    strings.Join,
	"upper":   strings.ToUpper,
	"inc":     func(i int) int { return i + 1 },
}

type labeledField struct {
	Name  string
	Value string
}

var editorTemplate = template.Must(template.New("editor").Funcs(funcs).Parse(
	`{{range .Fields}}{{.Name}}: {{.Value}}
{{end}}
experience:
{{- range $i, $e := .Experience}}
  [{{inc $i}}] company: {{$e.Company}}
      title: {{$e.Title}}
      description: {{$e.Description}}
{{- else}}
  (none)
{{- end}}
`))

func editor(doc *cv.Document) string {
	fields := make([]labeledField, 0, len(cv.Fields))
	for _, f := range cv.Fields {
		value, _ := doc.Get(f)
		fields = append(fields, labeledField{Name: f.String(), Value: value})
	}
	return execute(editorTemplate, struct {
		Fields     []labeledField
		Experience []cv.ExperienceEntry
	}{Fields: fields, Experience: doc.Experience})
}
