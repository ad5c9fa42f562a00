package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/hoangphuccoder123/tutorbond/internal/ai"
	"github.com/hoangphuccoder123/tutorbond/internal/keypool"
	"github.com/hoangphuccoder123/tutorbond/internal/logger"
	"github.com/hoangphuccoder123/tutorbond/internal/metrics"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	defaultModel       = "gemini-2.5-flash"
	defaultTemperature = float32(0.3)
)

var errEmptyResponse = errors.New("gemini api returned empty response")

// contentGenerator is the part of *genai.Models the generator needs.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// clientFactory builds a models client bound to one API key.
type clientFactory func(ctx context.Context, apiKey string) (contentGenerator, error)

func newGenAIModels(ctx context.Context, apiKey string) (contentGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return client.Models, nil
}

// Generator sends structured-output requests to Gemini, rotating API keys
// from a keypool.Pool when the provider rejects the current one.
type Generator struct {
	mu        sync.Mutex
	models    contentGenerator
	key       string
	newModels clientFactory

	pool        *keypool.Pool
	modelName   string
	temperature float32
	logger      *zap.Logger
}

type GeneratorOptions struct {
	Model       string
	Temperature float32
	Logger      *zap.Logger
}

// NewGenerator creates a Generator for the Gemini API backend using the pool's current key.
func NewGenerator(ctx context.Context, pool *keypool.Pool, opts GeneratorOptions) (*Generator, error) {
	return newGenerator(ctx, pool, opts, newGenAIModels)
}

func newGenerator(ctx context.Context, pool *keypool.Pool, opts GeneratorOptions, factory clientFactory) (*Generator, error) {
	if pool == nil {
		return nil, errors.New("gemini key pool is required")
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}
	temperature := opts.Temperature
	if temperature <= 0 {
		temperature = defaultTemperature
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	g := &Generator{
		newModels:   factory,
		pool:        pool,
		modelName:   model,
		temperature: temperature,
		logger:      logger.WithCommonFields(log, "gemini", model),
	}

	key := pool.Current()
	models, err := factory(ctx, key)
	if err != nil {
		return nil, err
	}
	g.models = models
	g.key = key

	return g, nil
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.modelName
}

// request is one structured-output call and the check its answer must pass.
type request struct {
	id       string
	source   string
	system   string
	contents []*genai.Content
	schema   *genai.Schema
	validate func(raw string) error
}

type errorClass int

const (
	classOther errorClass = iota
	classQuota
	classAuth
	classMalformed
)

func (c errorClass) outcome() string {
	switch c {
	case classQuota:
		return metrics.OutcomeQuota
	case classAuth:
		return metrics.OutcomeAuth
	case classMalformed:
		return metrics.OutcomeMalformed
	default:
		return metrics.OutcomeError
	}
}

// generate runs the attempt loop. With N extra keys in the pool it makes at
// most N+1 attempts, otherwise 2. Quota and credential failures move to a
// fresh key and retry at once. Malformed answers are retried on a fresh key
// when one exists and on the current key otherwise. Anything else stops.
func (g *Generator) generate(ctx context.Context, req request) (string, error) {
	if g == nil || g.models == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	if g.pool.ShouldRotatePreemptively() {
		if g.rotate(ctx, req.id) {
			metrics.RecordRotation(metrics.RotationPreemptive)
		}
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.system, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    req.schema,
		Temperature:       genai.Ptr(g.temperature),
	}

	maxAttempts := 2
	if size := g.pool.Size(); size > 0 {
		maxAttempts = size + 1
	}

	var (
		lastErr error
		class   errorClass
	)
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", &ai.AnalysisFailure{Kind: ai.FailureCanceled, Attempts: attempt - 1, Err: err}
		}

		models, keyIndex := g.client()
		log := g.logger.With(logger.AttemptFields(req.id, attempt, keyIndex)...).
			With(zap.String(logger.FieldSource, req.source))
		log.Debug("gemini generate content request")

		started := time.Now()
		resp, err := models.GenerateContent(ctx, g.modelName, req.contents, config)
		took := time.Since(started)

		var raw string
		if err == nil {
			g.pool.RecordRequest()
			raw, err = responseText(resp)
			if err == nil {
				err = req.validate(raw)
			}
			if err == nil {
				metrics.ObserveAttempt(req.source, metrics.OutcomeSuccess, took)
				log.Debug("gemini generate content response", zap.Duration("took", took))
				return raw, nil
			}
			class = classMalformed
		} else {
			class = classify(err)
		}
		lastErr = err

		if ctxErr := ctx.Err(); ctxErr != nil {
			metrics.ObserveAttempt(req.source, metrics.OutcomeCanceled, took)
			return "", &ai.AnalysisFailure{Kind: ai.FailureCanceled, Attempts: attempt, Err: ctxErr}
		}
		metrics.ObserveAttempt(req.source, class.outcome(), took)

		log.Warn("gemini attempt failed",
			zap.String("class", class.outcome()),
			zap.Int("max_attempts", maxAttempts),
			zap.Error(err),
		)

		if attempt == maxAttempts {
			break
		}

		switch class {
		case classQuota, classAuth:
			if !g.rotate(ctx, req.id) {
				return "", failure(class, attempt, lastErr)
			}
			metrics.RecordRotation(class.outcome())
		case classMalformed:
			if g.rotate(ctx, req.id) {
				metrics.RecordRotation(metrics.RotationMalformed)
			}
		default:
			return "", failure(class, attempt, lastErr)
		}
	}

	return "", failure(class, maxAttempts, lastErr)
}

func failure(class errorClass, attempts int, err error) *ai.AnalysisFailure {
	kind := ai.FailureProvider
	switch class {
	case classQuota, classAuth:
		kind = ai.FailureTransient
	case classMalformed:
		kind = ai.FailureMalformed
	}
	return &ai.AnalysisFailure{Kind: kind, Attempts: attempts, Err: err}
}

func (g *Generator) client() (contentGenerator, int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	key, index := g.pool.CurrentWithIndex()
	if key != g.key {
		// Another process moved the shared cursor.
		if models, err := g.newModels(context.Background(), key); err == nil {
			g.models = models
			g.key = key
		} else {
			g.logger.Warn("switching to shared key failed; keeping current client", zap.Error(err))
		}
	}
	return g.models, index
}

// rotate swaps the live client to the next key. It reports false when the
// pool is exhausted or the new client cannot be built.
func (g *Generator) rotate(ctx context.Context, requestID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	key, ok := g.pool.Rotate()
	if !ok || key == g.key {
		return false
	}

	models, err := g.newModels(ctx, key)
	if err != nil {
		g.logger.Warn("rebuilding gemini client after rotation failed",
			zap.String(logger.FieldRequestID, requestID),
			zap.Error(err),
		)
		return false
	}

	g.models = models
	g.key = key
	g.pool.MarkRotated()
	return true
}

// classify sorts provider errors into quota-like, auth-like or other.
func classify(err error) errorClass {
	code := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		code = apiErrPtr.Code
	}

	msg := strings.ToLower(err.Error())
	switch {
	case code == http.StatusTooManyRequests,
		strings.Contains(msg, "quota"),
		strings.Contains(msg, "exceed"):
		return classQuota
	case code == http.StatusUnauthorized,
		code == http.StatusForbidden,
		strings.Contains(msg, "api key"),
		strings.Contains(msg, "unauthorized"),
		strings.Contains(msg, "permission"):
		return classAuth
	default:
		return classOther
	}
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", errEmptyResponse
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errEmptyResponse
	}

	return output, nil
}
