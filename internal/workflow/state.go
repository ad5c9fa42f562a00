// Package workflow drives the CV assistant: source selection, analysis,
// editing and export, behind one mutex-guarded state.
package workflow

import (
	"github.com/hoangphuccoder123/tutorbond/internal/cv"
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSourceLoaded
	PhaseAnalyzing
	PhaseReady
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSourceLoaded:
		return "source_loaded"
	case PhaseAnalyzing:
		return "analyzing"
	case PhaseReady:
		return "ready"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// View selects which panel the result area shows.
type View int

const (
	ViewPreview View = iota
	ViewAnalysis
)

func (v View) String() string {
	if v == ViewAnalysis {
		return "analysis"
	}
	return "preview"
}

// Redraw tells the caller which surfaces an operation invalidated.
type Redraw uint8

const (
	RedrawPreview Redraw = 1 << iota
	RedrawEditor
	RedrawAnalysis
	RedrawChrome

	RedrawNone Redraw = 0
	RedrawAll         = RedrawPreview | RedrawEditor | RedrawAnalysis | RedrawChrome
)

func (r Redraw) Has(flag Redraw) bool {
	return r&flag == flag
}

// SourceFile is a file handed in by the user.
type SourceFile struct {
	Name      string
	MediaType string
	Data      []byte
}

// Source is the accepted input of the current analysis. Text holds the
// extracted DOCX text; Data holds image bytes for image sources.
type Source struct {
	Name      string
	MediaType string
	Text      string
	Data      []byte
}

func (s *Source) IsImage() bool {
	return s != nil && len(s.Data) > 0
}

func (s *Source) clone() *Source {
	if s == nil {
		return nil
	}
	out := *s
	if s.Data != nil {
		out.Data = append([]byte(nil), s.Data...)
	}
	return &out
}

// State is a snapshot of the controller. Err is non-nil exactly when Phase is PhaseError.
type State struct {
	Phase      Phase
	Document   *cv.Document
	Source     *Source
	Analysis   *cv.Analysis
	Err        *Error
	View       View
	Generation uint64
}

func (s State) Loading() bool {
	return s.Phase == PhaseAnalyzing
}

func (s State) clone() State {
	out := s
	out.Document = s.Document.Clone()
	out.Source = s.Source.clone()
	out.Analysis = s.Analysis.Clone()
	if s.Err != nil {
		e := *s.Err
		out.Err = &e
	}
	return out
}
