package export

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/hoangphuccoder123/tutorbond/internal/cv"
	"github.com/hoangphuccoder123/tutorbond/internal/i18n"
)

var pageTemplate = template.Must(template.New("cv").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8"/>
<title>CV</title>
<style>
body{font-family:Arial,Helvetica,sans-serif; font-size:12pt; color:#000;}
h1{font-size:24pt; margin:0 0 6pt 0;}
h2{font-size:14pt; margin:16pt 0 6pt 0;}
p{margin:6pt 0;}
.contact{font-size:10pt; color:#333;}
.section{margin-top:10pt;}
</style>
</head>
<body>
<h1>{{.Name}}</h1>
<p class="contact">{{.Contact}}</p>
<div class="section">
<h2>{{.Headings.Summary}}</h2>
<p>{{.Summary}}</p>
</div>
<div class="section">
<h2>{{.Headings.Experience}}</h2>
{{- range .Experience}}
<div style="margin-bottom:12px;">
<div style="font-weight:700;">{{.Title}} — {{.Company}}</div>
{{- if .Points}}
<ul style="margin:6px 0 0 18px;">{{range .Points}}<li>{{.}}</li>{{end}}</ul>
{{- end}}
</div>
{{- end}}
</div>
<div class="section">
<h2>{{.Headings.Education}}</h2>
<p>{{.Education}}</p>
</div>
<div class="section">
<h2>{{.Headings.Skills}}</h2>
{{if .Skills}}<ul style="margin:6px 0 0 18px;">{{range .Skills}}<li>{{.}}</li>{{end}}</ul>{{else}}<p></p>{{end}}
</div>
</body>
</html>
`))

type headings struct {
	Summary    string
	Experience string
	Education  string
	Skills     string
}

type experienceBlock struct {
	Title   string
	Company string
	Points  []string
}

type page struct {
	Name       string
	Contact    string
	Summary    string
	Education  string
	Experience []experienceBlock
	Skills     []string
	Headings   headings
}

// HTML renders the printable page that goes into the exported document.
func HTML(doc *cv.Document, locale i18n.Locale) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("document is required")
	}

	p := page{
		Name:      doc.FullName,
		Contact:   contactLine(doc),
		Summary:   doc.Summary,
		Education: doc.Education,
		Skills:    splitSkills(doc.Skills),
		Headings: headings{
			Summary:    locale.Text(i18n.MsgHeadingSummary),
			Experience: locale.Text(i18n.MsgHeadingExperience),
			Education:  locale.Text(i18n.MsgHeadingEducation),
			Skills:     locale.Text(i18n.MsgHeadingSkills),
		},
	}
	if p.Name == "" {
		p.Name = locale.Text(i18n.MsgNamePlaceholder)
	}
	for _, entry := range doc.Experience {
		p.Experience = append(p.Experience, experienceBlock{
			Title:   entry.Title,
			Company: entry.Company,
			Points:  sentences(entry.Description),
		})
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, p); err != nil {
		return "", fmt.Errorf("render cv html: %w", err)
	}
	return buf.String(), nil
}

func contactLine(doc *cv.Document) string {
	parts := make([]string, 0, 3)
	for _, v := range []string{doc.Email, doc.Phone, doc.LinkedIn} {
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " • ")
}

// sentences splits a description into bullet points on full stops and line breaks.
func sentences(description string) []string {
	fields := strings.FieldsFunc(description, func(r rune) bool {
		return r == '.' || r == '\n'
	})
	return trimNonEmpty(fields)
}

func splitSkills(skills string) []string {
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
