package render

import (
	"strings"
	"text/template"

	"github.com/hoangphuccoder123/tutorbond/internal/cv"
	"github.com/hoangphuccoder123/tutorbond/internal/i18n"
)

var previewTemplate = template.Must(template.New("preview").Funcs(funcs).Parse(
	`{{upper .Name}}
{{.Contact}}

== {{upper .Headings.Summary}} ==
{{.Doc.Summary}}

== {{upper .Headings.Experience}} ==
{{- range .Doc.Experience}}
{{.Title}}
{{.Company}}
{{- range bullets .Description}}
  • {{.}}
{{- end}}
{{end}}
== {{upper .Headings.Education}} ==
{{.Doc.Education}}

== {{upper .Headings.Skills}} ==
{{join (skills .Doc.Skills) " | "}}
`))

type previewHeadings struct {
	Summary    string
	Experience string
	Education  string
	Skills     string
}

func (r *Renderer) preview(doc *cv.Document) string {
	name := doc.FullName
	if name == "" {
		name = r.locale.Text(i18n.MsgNamePlaceholder)
	}

	contact := make([]string, 0, 3)
	for _, v := range []string{doc.Email, doc.Phone, doc.LinkedIn} {
		if v != "" {
			contact = append(contact, v)
		}
	}

	return execute(previewTemplate, struct {
		Name     string
		Contact  string
		Doc      *cv.Document
		Headings previewHeadings
	}{
		Name:    name,
		Contact: strings.Join(contact, " • "),
		Doc:     doc,
		Headings: previewHeadings{
			Summary:    r.locale.Text(i18n.MsgHeadingSummary),
			Experience: r.locale.Text(i18n.MsgHeadingExperience),
			Education:  r.locale.Text(i18n.MsgHeadingEducation),
			Skills:     r.locale.Text(i18n.MsgHeadingSkills),
		},
	})
}
