package workflow

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/hoangphuccoder123/tutorbond/internal/ai"
	"github.com/hoangphuccoder123/tutorbond/internal/cv"
	"github.com/hoangphuccoder123/tutorbond/internal/export"
	"github.com/hoangphuccoder123/tutorbond/internal/extract"
	"github.com/hoangphuccoder123/tutorbond/internal/i18n"
	"github.com/hoangphuccoder123/tutorbond/internal/metrics"
	"go.uber.org/zap"
)

type Options struct {
	Extractor extract.Extractor
	Analyzer  ai.Analyzer
	Exporter  export.Exporter
	// MatchPolicy pairs rewritten experience with entries. Defaults to cv.ContainsTrimmed.
	MatchPolicy cv.MatchPolicy
	Locale      i18n.Locale
	Logger      *zap.Logger
}

// Controller owns the workflow state. All methods are safe for concurrent use;
// the analyzer is called without holding the lock.
type Controller struct {
	mu    sync.Mutex
	state State

	extractor extract.Extractor
	analyzer  ai.Analyzer
	exporter  export.Exporter
	match     cv.MatchPolicy
	locale    i18n.Locale
	logger    *zap.Logger
}

func New(opts Options) *Controller {
	if opts.MatchPolicy == nil {
		opts.MatchPolicy = cv.ContainsTrimmed
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Controller{
		extractor: opts.Extractor,
		analyzer:  opts.Analyzer,
		exporter:  opts.Exporter,
		match:     opts.MatchPolicy,
		locale:    opts.Locale,
		logger:    opts.Logger,
	}
}

// Snapshot returns a deep copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Reset discards everything. An analysis still in flight is dropped when it returns.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	generation := c.state.Generation + 1
	c.state = State{Generation: generation}
	c.transition(PhaseIdle)
}

func (c *Controller) SetView(view View) Redraw {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.View == view {
		return RedrawNone
	}
	c.state.View = view
	return RedrawAnalysis | RedrawPreview | RedrawChrome
}

// SelectSource accepts a DOCX file, extracts its text and analyzes it.
// A rejected file leaves the document, source and analysis untouched.
func (c *Controller) SelectSource(ctx context.Context, file SourceFile) error {
	c.mu.Lock()
	if c.state.Phase == PhaseAnalyzing {
		c.mu.Unlock()
		return ErrBusy
	}

	if !extract.IsDocx(file.Name, file.MediaType) {
		err := c.fail(ValidationError, i18n.MsgOnlyDocx, nil)
		c.mu.Unlock()
		return err
	}
	if c.extractor == nil {
		err := c.fail(ConfigurationError, i18n.MsgExtractorMissing, extract.ErrUnavailable)
		c.mu.Unlock()
		return err
	}

	text, err := c.extractor.ExtractText(ctx, file.Data)
	if err != nil {
		c.logger.Warn("extracting docx text failed", zap.String("file", file.Name), zap.Error(err))
		kind, msg := ValidationError, i18n.MsgExtractFailed
		if errors.Is(err, extract.ErrUnavailable) {
			kind, msg = ConfigurationError, i18n.MsgExtractorMissing
		}
		wfErr := c.fail(kind, msg, err)
		c.mu.Unlock()
		return wfErr
	}

	mediaType := file.MediaType
	if mediaType == "" {
		mediaType = extract.DocxMediaType
	}
	c.state.Source = &Source{Name: file.Name, MediaType: mediaType, Text: text}
	c.state.Err = nil
	c.transition(PhaseSourceLoaded)
	c.mu.Unlock()

	return c.Analyze(ctx)
}

// SelectImage accepts a CV image and analyzes it.
func (c *Controller) SelectImage(ctx context.Context, file SourceFile) error {
	c.mu.Lock()
	if c.state.Phase == PhaseAnalyzing {
		c.mu.Unlock()
		return ErrBusy
	}

	if !isImage(file.MediaType) || len(file.Data) == 0 {
		err := c.fail(ValidationError, i18n.MsgOnlyImage, nil)
		c.mu.Unlock()
		return err
	}

	c.state.Source = &Source{
		Name:      file.Name,
		MediaType: file.MediaType,
		Data:      append([]byte(nil), file.Data...),
	}
	c.state.Err = nil
	c.transition(PhaseSourceLoaded)
	c.mu.Unlock()

	return c.Analyze(ctx)
}

func isImage(mediaType string) bool {
	switch strings.ToLower(strings.TrimSpace(mediaType)) {
	case "image/png", "image/jpeg", "image/webp", "image/heic", "image/heif":
		return true
	default:
		return false
	}
}

// Analyze sends the current source to the analyzer. On success the document
// and analysis are replaced wholesale. If the analysis fails before any
// document existed, the source is cleared so the user starts over.
func (c *Controller) Analyze(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Phase == PhaseAnalyzing {
		c.mu.Unlock()
		return ErrBusy
	}
	if c.analyzer == nil {
		err := c.fail(ConfigurationError, i18n.MsgAnalyzerMissing, nil)
		c.mu.Unlock()
		return err
	}

	source := c.state.Source.clone()
	if source == nil || (!source.IsImage() && strings.TrimSpace(source.Text) == "") {
		err := c.fail(ValidationError, i18n.MsgReupload, nil)
		c.mu.Unlock()
		return err
	}

	firstAnalysis := c.state.Document == nil
	c.state.Err = nil
	c.state.Analysis = nil
	if !firstAnalysis {
		c.state.View = ViewAnalysis
	}
	c.state.Generation++
	generation := c.state.Generation
	c.transition(PhaseAnalyzing)
	c.mu.Unlock()

	var (
		result *cv.Result
		err    error
	)
	if source.IsImage() {
		result, err = c.analyzer.AnalyzeImage(ctx, source.Data, source.MediaType)
	} else {
		result, err = c.analyzer.AnalyzeText(ctx, source.Text)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Generation != generation {
		c.logger.Info("discarding stale analysis result",
			zap.Uint64("generation", generation),
			zap.Uint64("current_generation", c.state.Generation),
		)
		return ErrStale
	}

	if err == nil && (result == nil || result.ExtractedCV == nil || result.Analysis == nil) {
		err = &ai.AnalysisFailure{Kind: ai.FailureMalformed, Attempts: 1, Err: errors.New("analyzer returned an incomplete result")}
	}
	if err != nil {
		if firstAnalysis {
			c.state.Source = nil
		}
		return c.failAnalysis(source, err)
	}

	doc := result.ExtractedCV.Clone()
	doc.Normalize()
	c.state.Document = doc
	c.state.Analysis = result.Analysis.Clone()
	c.state.View = ViewAnalysis
	c.transition(PhaseReady)

	c.logger.Info("cv analysis completed",
		zap.Int("experience_entries", len(doc.Experience)),
		zap.Bool("has_rewrite", result.Analysis.RewrittenContent != nil),
	)
	return nil
}

func (c *Controller) failAnalysis(source *Source, err error) error {
	msg := i18n.MsgAnalyzeTextFailed
	if source.IsImage() {
		msg = i18n.MsgAnalyzeImageFailed
	}

	kind := ProviderError
	var failure *ai.AnalysisFailure
	if errors.As(err, &failure) {
		switch failure.Kind {
		case ai.FailureTransient:
			kind = TransientProviderError
		case ai.FailureMalformed:
			kind = MalformedResponseError
			msg = i18n.MsgMalformedResponse
		case ai.FailureCanceled:
			msg = i18n.MsgAnalysisInterrupted
		}
	}

	// Leave Analyzing first so the error is recorded.
	c.transition(PhaseError)
	wfErr := c.fail(kind, msg, err)
	if failure != nil && failure.Message != "" {
		wfErr.Message = failure.Message
	}
	return wfErr
}

// RemoveSource forgets the uploaded file. The document stays.
func (c *Controller) RemoveSource() Redraw {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Source = nil
	if c.state.Phase != PhaseAnalyzing {
		c.settle()
	}
	return RedrawChrome | RedrawEditor
}

// Export renders the current document through the exporter.
func (c *Controller) Export(ctx context.Context) (*export.File, error) {
	c.mu.Lock()
	doc := c.state.Document.Clone()
	if doc == nil {
		err := c.fail(ValidationError, i18n.MsgNothingToExport, nil)
		c.mu.Unlock()
		return nil, err
	}
	if c.exporter == nil {
		err := c.fail(ExportError, i18n.MsgExporterMissing, nil)
		c.mu.Unlock()
		return nil, err
	}
	c.mu.Unlock()

	file, err := c.exporter.Export(ctx, doc)
	if err != nil {
		metrics.RecordExport(metrics.OutcomeError)
		c.logger.Error("docx export failed", zap.Error(err))

		c.mu.Lock()
		defer c.mu.Unlock()
		return nil, c.fail(ExportError, i18n.MsgExportFailed, err)
	}

	metrics.RecordExport(metrics.OutcomeSuccess)
	return file, nil
}

// fail records a new error, replacing any previous one. While an analysis is
// in flight the error is only returned, so the phase stays Analyzing.
// The caller holds c.mu.
func (c *Controller) fail(kind ErrorKind, msg i18n.MessageID, cause error) *Error {
	err := &Error{Kind: kind, Message: c.locale.Text(msg), Err: cause}
	if c.state.Phase != PhaseAnalyzing {
		c.state.Err = err
		c.transition(PhaseError)
	}

	c.logger.Debug("workflow error",
		zap.String("kind", kind.String()),
		zap.String("message_id", string(msg)),
		zap.Error(cause),
	)
	return err
}

// settle derives the resting phase from what the state holds.
func (c *Controller) settle() {
	switch {
	case c.state.Err != nil:
		c.transition(PhaseError)
	case c.state.Document != nil:
		c.transition(PhaseReady)
	case c.state.Source != nil:
		c.transition(PhaseSourceLoaded)
	default:
		c.transition(PhaseIdle)
	}
}

func (c *Controller) transition(phase Phase) {
	if c.state.Phase == phase {
		return
	}
	c.state.Phase = phase
	metrics.RecordTransition(phase.String())
}
