package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/google/uuid"
	"github.com/hoangphuccoder123/tutorbond/internal/ai"
	"github.com/hoangphuccoder123/tutorbond/internal/cv"
	"github.com/hoangphuccoder123/tutorbond/internal/i18n"
	"github.com/hoangphuccoder123/tutorbond/internal/logger"
	"github.com/hoangphuccoder123/tutorbond/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

//go:embed instruction.md
var instructionTemplate string

const (
	defaultMaxLogLength = 200

	sourceText  = "text"
	sourceImage = "image"

	imagePrompt = "Extract and analyze the CV in this image. Give general assessments and improvement suggestions."
	textPrompt  = "Extract and analyze the CV from the following text."
)

type structuredGenerator interface {
	generate(ctx context.Context, req request) (string, error)
}

// Analyzer implements ai.Analyzer on top of a Generator.
type Analyzer struct {
	generator structuredGenerator
	validator *validator
	locale    i18n.Locale
	logger    *zap.Logger
	maxLogLen int
	newID     func() string
}

var _ ai.Analyzer = (*Analyzer)(nil)

func NewAnalyzer(generator *Generator, locale i18n.Locale, logger *zap.Logger, maxLogLength int) (*Analyzer, error) {
	if generator == nil {
		return nil, errors.New("gemini generator is required")
	}
	return newAnalyzer(generator, locale, logger, maxLogLength)
}

func newAnalyzer(generator structuredGenerator, locale i18n.Locale, log *zap.Logger, maxLogLength int) (*Analyzer, error) {
	v, err := newValidator(envelopeSchema)
	if err != nil {
		return nil, err
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Analyzer{
		generator: generator,
		validator: v,
		locale:    locale,
		logger:    log,
		maxLogLen: maxLogLength,
		newID:     uuid.NewString,
	}, nil
}

// AnalyzeText sends extracted document text.
func (a *Analyzer) AnalyzeText(ctx context.Context, documentText string) (*cv.Result, error) {
	if strings.TrimSpace(documentText) == "" {
		return nil, errors.New("document text must not be empty")
	}

	prompt := textPrompt + "\n\n" + documentText
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(prompt)}, genai.RoleUser),
	}

	return a.analyze(ctx, sourceText, contents, prompt, i18n.MsgAnalyzeTextFailed)
}

// AnalyzeImage sends the raw image bytes as inline data.
func (a *Analyzer) AnalyzeImage(ctx context.Context, data []byte, mimeType string) (*cv.Result, error) {
	if len(data) == 0 {
		return nil, errors.New("image data must not be empty")
	}
	mimeType = strings.TrimSpace(mimeType)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, fmt.Errorf("unsupported image type %q", mimeType)
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(data, mimeType),
			genai.NewPartFromText(imagePrompt),
		}, genai.RoleUser),
	}

	return a.analyze(ctx, sourceImage, contents, imagePrompt, i18n.MsgAnalyzeImageFailed)
}

func (a *Analyzer) analyze(ctx context.Context, source string, contents []*genai.Content, prompt string, failureMsg i18n.MessageID) (*cv.Result, error) {
	requestID := a.newID()
	log := a.logger.With(
		zap.String(logger.FieldRequestID, requestID),
		zap.String(logger.FieldSource, source),
	)

	log.Debug("cv analysis request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, a.maxLogLen)),
	)

	raw, err := a.generator.generate(ctx, request{
		id:       requestID,
		source:   source,
		system:   buildInstruction(a.locale),
		contents: contents,
		schema:   ResponseSchema,
		validate: a.validate,
	})
	if err != nil {
		var failure *ai.AnalysisFailure
		if !errors.As(err, &failure) {
			failure = &ai.AnalysisFailure{Kind: ai.FailureProvider, Attempts: 1, Err: err}
		}
		failure.Message = a.failureMessage(failure.Kind, failureMsg)

		log.Error("cv analysis failed",
			zap.String("kind", failure.Kind.String()),
			zap.Int("attempts", failure.Attempts),
			zap.Error(failure.Err),
		)
		return nil, failure
	}

	log.Debug("cv analysis response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
	)

	result, err := parseResponse(raw)
	if err != nil {
		// validate already accepted raw, so this only trips on decoder drift.
		return nil, &ai.AnalysisFailure{
			Kind:     ai.FailureMalformed,
			Attempts: 1,
			Message:  a.locale.Text(i18n.MsgMalformedResponse),
			Err:      err,
		}
	}
	return result, nil
}

func (a *Analyzer) failureMessage(kind ai.FailureKind, fallback i18n.MessageID) string {
	switch kind {
	case ai.FailureMalformed:
		return a.locale.Text(i18n.MsgMalformedResponse)
	case ai.FailureCanceled:
		return a.locale.Text(i18n.MsgAnalysisInterrupted)
	default:
		return a.locale.Text(fallback)
	}
}

func (a *Analyzer) validate(raw string) error {
	return a.validator.Validate(extractJSON(raw))
}

func buildInstruction(locale i18n.Locale) string {
	template := instructionTemplate
	if strings.TrimSpace(template) == "" {
		template = "Extract the CV into 'extractedCv' and critique it in 'analysis'. Reply in {{LANGUAGE}} with JSON only."
	}
	return strings.ReplaceAll(template, "{{LANGUAGE}}", locale.Language())
}

func parseResponse(raw string) (*cv.Result, error) {
	var result cv.Result
	if err := json.Unmarshal([]byte(extractJSON(raw)), &result); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}
	if result.ExtractedCV == nil || result.Analysis == nil {
		return nil, errors.New("gemini response is missing extractedCv or analysis")
	}
	return &result, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
