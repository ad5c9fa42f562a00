package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/manifoldco/promptui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoangphuccoder123/tutorbond/internal/cv"
	"github.com/hoangphuccoder123/tutorbond/internal/workflow"
)

// scriptedPrompter answers prompts from a fixed script.
type scriptedPrompter struct {
	t       *testing.T
	selects []string
	inputs  []string
	labels  []string
}

func (p *scriptedPrompter) Select(label string, items []string) (int, string, error) {
	p.labels = append(p.labels, label)
	if len(p.selects) == 0 {
		return -1, "", promptui.ErrInterrupt
	}
	choice := p.selects[0]
	p.selects = p.selects[1:]
	for i, item := range items {
		if item == choice {
			return i, item, nil
		}
	}
	p.t.Fatalf("%q is not offered for %q: %v", choice, label, items)
	return -1, "", nil
}

func (p *scriptedPrompter) Input(label, current string) (string, error) {
	p.labels = append(p.labels, fmt.Sprintf("%s [%s]", label, current))
	if len(p.inputs) == 0 {
		return "", promptui.ErrAbort
	}
	value := p.inputs[0]
	p.inputs = p.inputs[1:]
	return value, nil
}

func loadedSession(t *testing.T, prompt *scriptedPrompter) (*session, *bytes.Buffer) {
	t.Helper()

	a := newTestApplication(t, &stubAnalyzer{result: sampleResult()})
	require.NoError(t, a.controller.SelectSource(context.Background(), workflow.SourceFile{Name: "cv.docx", Data: []byte("x")}))

	var out bytes.Buffer
	return &session{app: a, prompt: prompt, out: &out}, &out
}

func TestMenuItems(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{PromptShowAnalysis, PromptExit}, menuItems(workflow.State{}))

	doc := &cv.Document{Experience: []cv.ExperienceEntry{{Company: "ACME"}}}
	ready := workflow.State{
		Phase:    workflow.PhaseReady,
		Document: doc,
		Source:   &workflow.Source{Name: "cv.docx"},
		Analysis: &cv.Analysis{RewrittenContent: &cv.RewrittenContent{}},
	}
	assert.Equal(t, []string{
		PromptShowPreview, PromptShowAnalysis, PromptEditField, PromptEditExperience,
		PromptAddExperience, PromptRemoveExperience, PromptApplySuggestions,
		PromptReanalyze, PromptExport, PromptRemoveSource, PromptExit,
	}, menuItems(ready))

	noSource := workflow.State{Phase: workflow.PhaseReady, Document: &cv.Document{}}
	assert.Equal(t, []string{
		PromptShowPreview, PromptShowAnalysis, PromptEditField, PromptAddExperience, PromptExport, PromptExit,
	}, menuItems(noSource))

	loading := ready
	loading.Phase = workflow.PhaseAnalyzing
	assert.NotContains(t, menuItems(loading), PromptReanalyze)
}

func TestSessionEditApplyExport(t *testing.T) {
	t.Parallel()

	prompt := &scriptedPrompter{
		t: t,
		selects: []string{
			PromptEditField, "summary",
			PromptEditExperience, "1. Dev @ ACME", "title",
			PromptApplySuggestions,
			PromptExport,
			PromptExit,
		},
		inputs: []string{"Backend engineer", "Senior Dev"},
	}
	s, out := loadedSession(t, prompt)

	require.NoError(t, s.run(context.Background()))

	state := s.app.controller.Snapshot()
	assert.Equal(t, "Seasoned engineer", state.Document.Summary)
	assert.Equal(t, "Senior Dev", state.Document.Experience[0].Title)
	assert.Equal(t, "Shipped X to 1M users.", state.Document.Experience[0].Description)
	assert.Equal(t, workflow.ViewPreview, state.View)

	assert.Contains(t, prompt.labels, "summary [Engineer]")
	assert.Contains(t, prompt.labels, "title [Dev]")
	assert.Contains(t, out.String(), "applied rewritten content to 1 experience entries (summary: true)")
	assert.Contains(t, out.String(), "  • Shipped X to 1M users")

	path := filepath.Join(s.app.config.OutputDir, "Nguyen Van A.docx")
	assert.Contains(t, out.String(), "saved "+path)
	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestSessionAddRemoveExperience(t *testing.T) {
	t.Parallel()

	prompt := &scriptedPrompter{
		t: t,
		selects: []string{
			PromptAddExperience,
			PromptRemoveExperience, "1. Dev @ ACME",
			PromptRemoveExperience, PromptBack,
			PromptExit,
		},
	}
	s, out := loadedSession(t, prompt)

	require.NoError(t, s.run(context.Background()))

	state := s.app.controller.Snapshot()
	require.Len(t, state.Document.Experience, 1)
	assert.Equal(t, cv.ExperienceEntry{}, state.Document.Experience[0])
	assert.Contains(t, out.String(), "added experience #2")
	assert.Contains(t, out.String(), "[1] company: \n")
}

func TestSessionViewsAndSourceRemoval(t *testing.T) {
	t.Parallel()

	prompt := &scriptedPrompter{
		t:       t,
		selects: []string{PromptShowPreview, PromptShowAnalysis, PromptRemoveSource, PromptExit},
	}
	s, out := loadedSession(t, prompt)

	require.NoError(t, s.run(context.Background()))

	assert.Contains(t, out.String(), "NGUYEN VAN A\n")
	assert.Contains(t, out.String(), "AI ANALYSIS RESULT")

	state := s.app.controller.Snapshot()
	assert.Nil(t, state.Source)
	assert.NotNil(t, state.Document)
	assert.NotContains(t, menuItems(state), PromptReanalyze)
}

func TestSessionShowsWorkflowErrors(t *testing.T) {
	t.Parallel()

	analyzer := &stubAnalyzer{result: sampleResult()}
	a := newTestApplication(t, analyzer)
	require.NoError(t, a.controller.SelectSource(context.Background(), workflow.SourceFile{Name: "cv.docx", Data: []byte("x")}))

	analyzer.result = nil
	analyzer.err = errors.New("network down")

	var out bytes.Buffer
	s := &session{app: a, prompt: &scriptedPrompter{t: t, selects: []string{PromptReanalyze, PromptExit}}, out: &out}
	require.NoError(t, s.run(context.Background()))

	assert.Contains(t, out.String(), "! Could not analyze the CV from DOCX.")

	state := a.controller.Snapshot()
	assert.Equal(t, workflow.PhaseError, state.Phase)
	assert.NotNil(t, state.Document)
}

func TestSessionCancelledInputGoesBack(t *testing.T) {
	t.Parallel()

	prompt := &scriptedPrompter{
		t:       t,
		selects: []string{PromptEditField, "email", PromptExit},
	}
	s, _ := loadedSession(t, prompt)

	require.NoError(t, s.run(context.Background()))
	assert.Equal(t, "a@example.com", s.app.controller.Snapshot().Document.Email)
}

func TestSessionInterruptEnds(t *testing.T) {
	t.Parallel()

	s, _ := loadedSession(t, &scriptedPrompter{t: t})
	require.NoError(t, s.run(context.Background()))
}
