package render

import (
	"text/template"

	"github.com/hoangphuccoder123/tutorbond/internal/cv"
	"github.com/hoangphuccoder123/tutorbond/internal/i18n"
	"github.com/hoangphuccoder123/tutorbond/internal/workflow"
)

var panelTemplate = template.Must(template.New("panel").Parse(
	`{{.Title}}
{{.Body}}
`))

var reportTemplate = template.Must(template.New("report").Funcs(funcs).Parse(
	`{{.T.Title}}

{{.T.Overview}}
  {{.T.Strengths}}
{{- range .A.GeneralAnalysis.Strengths}}
    - {{.}}
{{- end}}
  {{.T.Weaknesses}}
{{- range .A.GeneralAnalysis.Weaknesses}}
    - {{.}}
{{- end}}
{{with .A.RewrittenContent}}
{{$.T.Rewritten}}
  {{$.T.Summary}}
    {{.Summary}}
  {{$.T.Experience}}
{{- range .Experience}}
    {{$.T.Original}} {{.Original}}
    => {{.Rewritten}}
{{- end}}
{{end}}
{{.T.Extras}}
  {{.T.ExtrasHint}}
  {{.T.Skills}} {{join .A.EnhancementSuggestions.Skills ", "}}
  {{.T.Keywords}} {{join .A.EnhancementSuggestions.Keywords ", "}}
  {{.T.Projects}}
{{- range .A.EnhancementSuggestions.Projects}}
    - {{.}}
{{- end}}

{{.T.Corrections}}
{{- range .A.DetailedCorrections}}
  {{$.T.Original}} {{.Original}}
  {{$.T.Suggestion}} {{.Suggestion}}
{{- end}}
`))

type reportText struct {
	Title       string
	Overview    string
	Strengths   string
	Weaknesses  string
	Rewritten   string
	Summary     string
	Experience  string
	Extras      string
	ExtrasHint  string
	Skills      string
	Keywords    string
	Projects    string
	Corrections string
	Original    string
	Suggestion  string
}

// analysis picks the panel: loading, then error, then empty, then the report.
func (r *Renderer) analysis(state workflow.State) string {
	switch {
	case state.Loading():
		return r.panel(r.locale.Text(i18n.MsgPanelLoading), r.locale.Text(i18n.MsgPanelLoadingHint))
	case state.Err != nil:
		return r.panel(r.locale.Text(i18n.MsgPanelErrorTitle), state.Err.Message)
	case state.Analysis == nil:
		return r.panel(r.locale.Text(i18n.MsgPanelEmptyTitle), r.locale.Text(i18n.MsgPanelEmptyHint))
	default:
		return r.report(state.Analysis)
	}
}

func (r *Renderer) panel(title, body string) string {
	return execute(panelTemplate, struct{ Title, Body string }{Title: title, Body: body})
}

func (r *Renderer) report(a *cv.Analysis) string {
	t := r.locale.Text
	return execute(reportTemplate, struct {
		T reportText
		A *cv.Analysis
	}{
		T: reportText{
			Title:       t(i18n.MsgReportTitle),
			Overview:    t(i18n.MsgReportOverview),
			Strengths:   t(i18n.MsgReportStrengths),
			Weaknesses:  t(i18n.MsgReportWeaknesses),
			Rewritten:   t(i18n.MsgReportRewritten),
			Summary:     t(i18n.MsgReportSummary),
			Experience:  t(i18n.MsgReportExperience),
			Extras:      t(i18n.MsgReportExtras),
			ExtrasHint:  t(i18n.MsgReportExtrasHint),
			Skills:      t(i18n.MsgReportSkills),
			Keywords:    t(i18n.MsgReportKeywords),
			Projects:    t(i18n.MsgReportProjects),
			Corrections: t(i18n.MsgReportCorrections),
			Original:    t(i18n.MsgLabelOriginal),
			Suggestion:  t(i18n.MsgLabelSuggestion),
		},
		A: a,
	})
}
