package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/manifoldco/promptui"
	"go.uber.org/zap"

	"github.com/hoangphuccoder123/tutorbond/internal/cv"
	"github.com/hoangphuccoder123/tutorbond/internal/workflow"
)

const (
	PromptShowPreview      = "Show preview"
	PromptShowAnalysis     = "Show analysis"
	PromptEditField        = "Edit field"
	PromptEditExperience   = "Edit experience"
	PromptAddExperience    = "Add experience"
	PromptRemoveExperience = "Remove experience"
	PromptApplySuggestions = "Apply suggestions"
	PromptReanalyze        = "Re-analyze"
	PromptExport           = "Export DOCX"
	PromptRemoveSource     = "Remove source file"
	PromptExit             = "Exit"
	PromptBack             = "back"
)

var (
	errExit = errors.New("exit requested")
	errBack = errors.New("back requested")
)

// prompter is the part of promptui the session needs.
type prompter interface {
	Select(label string, items []string) (int, string, error)
	Input(label, current string) (string, error)
}

type promptuiPrompter struct{}

func (promptuiPrompter) Select(label string, items []string) (int, string, error) {
	p := promptui.Select{Label: label, Items: items, Size: len(items)}
	return p.Run()
}

func (promptuiPrompter) Input(label, current string) (string, error) {
	p := promptui.Prompt{Label: label, Default: current, AllowEdit: true}
	return p.Run()
}

type session struct {
	app    *application
	prompt prompter
	out    io.Writer
}

func newSession(app *application, out io.Writer) *session {
	return &session{app: app, prompt: promptuiPrompter{}, out: out}
}

// menuItems lists the actions available for the state.
func menuItems(state workflow.State) []string {
	items := make([]string, 0, 12)
	hasDoc := state.Document != nil

	if hasDoc {
		items = append(items, PromptShowPreview)
	}
	items = append(items, PromptShowAnalysis)

	if hasDoc {
		items = append(items, PromptEditField)
		if len(state.Document.Experience) > 0 {
			items = append(items, PromptEditExperience)
		}
		items = append(items, PromptAddExperience)
		if len(state.Document.Experience) > 0 {
			items = append(items, PromptRemoveExperience)
		}
		if state.Analysis != nil && state.Analysis.RewrittenContent != nil {
			items = append(items, PromptApplySuggestions)
		}
	}
	if !state.Loading() && state.Source != nil {
		items = append(items, PromptReanalyze)
	}
	if hasDoc {
		items = append(items, PromptExport)
	}
	if state.Source != nil {
		items = append(items, PromptRemoveSource)
	}

	return append(items, PromptExit)
}

func (s *session) run(ctx context.Context) error {
	s.show(workflow.RedrawAll)

	for {
		state := s.app.controller.Snapshot()
		_, action, err := s.prompt.Select("Choose an action", menuItems(state))
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return nil
			}
			return err
		}

		redraw, err := s.handle(ctx, action)
		switch {
		case errors.Is(err, errExit):
			return nil
		case errors.Is(err, errBack), isPromptCancel(err):
			continue
		case err != nil:
			var wfErr *workflow.Error
			if !errors.As(err, &wfErr) {
				return err
			}
			s.printf("! %s\n", wfErr.Message)
			continue
		}

		s.show(redraw)
	}
}

func (s *session) handle(ctx context.Context, action string) (workflow.Redraw, error) {
	c := s.app.controller

	switch action {
	case PromptShowPreview:
		return c.SetView(workflow.ViewPreview), nil
	case PromptShowAnalysis:
		return c.SetView(workflow.ViewAnalysis), nil
	case PromptEditField:
		return s.editField()
	case PromptEditExperience:
		return s.editExperience()
	case PromptAddExperience:
		index, redraw, err := c.AddExperience()
		if err != nil {
			return workflow.RedrawNone, err
		}
		s.printf("added experience #%d\n", index+1)
		return redraw, nil
	case PromptRemoveExperience:
		index, err := s.chooseExperience("Remove which experience?")
		if err != nil {
			return workflow.RedrawNone, err
		}
		return c.RemoveExperience(index)
	case PromptApplySuggestions:
		applied, redraw, err := c.ApplySuggestions()
		if err != nil {
			return workflow.RedrawNone, err
		}
		s.printf("applied rewritten content to %d experience entries (summary: %t)\n", len(applied.Experience), applied.Summary)
		return redraw, nil
	case PromptReanalyze:
		s.app.logger.Info("analyzing cv")
		if err := c.Analyze(ctx); err != nil {
			return workflow.RedrawAll, err
		}
		return workflow.RedrawAll, nil
	case PromptExport:
		path, err := s.app.exportTo(ctx, s.app.config.OutputDir)
		if err != nil {
			return workflow.RedrawNone, err
		}
		s.app.logger.Info("exported cv", zap.String("path", path))
		s.printf("saved %s\n", path)
		return workflow.RedrawNone, nil
	case PromptRemoveSource:
		return c.RemoveSource(), nil
	case PromptExit:
		return workflow.RedrawNone, errExit
	default:
		return workflow.RedrawNone, fmt.Errorf("invalid action: %s", action)
	}
}

func (s *session) editField() (workflow.Redraw, error) {
	names := make([]string, 0, len(cv.Fields)+1)
	for _, f := range cv.Fields {
		names = append(names, f.String())
	}

	_, name, err := s.prompt.Select("Which field?", append(names, PromptBack))
	if err != nil {
		return workflow.RedrawNone, err
	}
	if name == PromptBack {
		return workflow.RedrawNone, errBack
	}
	field, err := cv.ParseField(name)
	if err != nil {
		return workflow.RedrawNone, err
	}

	current, _ := s.app.controller.Snapshot().Document.Get(field)
	value, err := s.prompt.Input(name, current)
	if err != nil {
		return workflow.RedrawNone, err
	}
	return s.app.controller.EditField(field, value)
}

func (s *session) editExperience() (workflow.Redraw, error) {
	index, err := s.chooseExperience("Edit which experience?")
	if err != nil {
		return workflow.RedrawNone, err
	}

	names := make([]string, 0, len(cv.ExperienceFields)+1)
	for _, f := range cv.ExperienceFields {
		names = append(names, f.String())
	}
	_, name, err := s.prompt.Select("Which field?", append(names, PromptBack))
	if err != nil {
		return workflow.RedrawNone, err
	}
	if name == PromptBack {
		return workflow.RedrawNone, errBack
	}
	field, err := cv.ParseExperienceField(name)
	if err != nil {
		return workflow.RedrawNone, err
	}

	doc := s.app.controller.Snapshot().Document
	var current string
	if doc != nil && index < len(doc.Experience) {
		entry := doc.Experience[index]
		current = map[cv.ExperienceField]string{
			cv.ExperienceCompany:     entry.Company,
			cv.ExperienceTitle:       entry.Title,
			cv.ExperienceDescription: entry.Description,
		}[field]
	}

	value, err := s.prompt.Input(name, current)
	if err != nil {
		return workflow.RedrawNone, err
	}
	return s.app.controller.EditExperience(index, field, value)
}

func (s *session) chooseExperience(label string) (int, error) {
	doc := s.app.controller.Snapshot().Document
	if doc == nil {
		return -1, errBack
	}

	items := make([]string, 0, len(doc.Experience)+1)
	for i, e := range doc.Experience {
		items = append(items, fmt.Sprintf("%d. %s", i+1, experienceLabel(e)))
	}

	index, item, err := s.prompt.Select(label, append(items, PromptBack))
	if err != nil {
		return -1, err
	}
	if item == PromptBack {
		return -1, errBack
	}
	return index, nil
}

func experienceLabel(e cv.ExperienceEntry) string {
	parts := make([]string, 0, 2)
	for _, v := range []string{e.Title, e.Company} {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return "(empty)"
	}
	return strings.Join(parts, " @ ")
}

// show prints the surfaces named by redraw.
func (s *session) show(redraw workflow.Redraw) {
	views := s.app.renderer.Render(s.app.controller.Snapshot())

	if redraw.Has(workflow.RedrawChrome) && views.Chrome.SourceName != "" {
		s.printf("source: %s\n", views.Chrome.SourceName)
	}
	if redraw.Has(workflow.RedrawEditor) && views.Editor != "" {
		s.printf("\n%s", views.Editor)
	}
	if !redraw.Has(workflow.RedrawPreview) && !redraw.Has(workflow.RedrawAnalysis) {
		return
	}
	if views.Chrome.ActiveView == workflow.ViewPreview && views.Preview != "" {
		s.printf("\n%s", views.Preview)
		return
	}
	s.printf("\n%s", views.Analysis)
}

func (s *session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func isPromptCancel(err error) bool {
	return errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrAbort) || errors.Is(err, promptui.ErrEOF)
}
