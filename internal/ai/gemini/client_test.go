package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/hoangphuccoder123/tutorbond/internal/ai"
	"github.com/hoangphuccoder123/tutorbond/internal/keypool"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/genai"
)

const validResponse = `{
  "extractedCv": {
    "fullName": "Jane Doe", "email": "jane@example.com", "phone": "", "linkedin": "",
    "summary": "Backend engineer",
    "experience": [{"company": "Acme", "title": "Developer", "description": "Built X. Improved Y."}],
    "education": "BSc Computer Science", "skills": "Go, SQL"
  },
  "analysis": {
    "generalAnalysis": {"strengths": ["Clear structure"], "weaknesses": ["No metrics"]},
    "detailedCorrections": [{"original": "Built X.", "suggestion": "Built X serving 1M users."}],
    "enhancementSuggestions": {"skills": ["Kubernetes"], "keywords": ["scalability"], "projects": []},
    "rewrittenContent": {
      "summary": "Backend engineer focused on reliable services.",
      "experience": [{"original": "Built X. Improved Y.", "rewritten": "Shipped X and cut Y latency by 30%."}]
    }
  }
}`

type fakeCall struct {
	key      string
	model    string
	config   *genai.GenerateContentConfig
	contents []*genai.Content
}

type fakeResult struct {
	text string
	err  error
}

type fakeBackend struct {
	mu     sync.Mutex
	calls  []fakeCall
	script []fakeResult
}

func (b *fakeBackend) enqueue(text string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.script = append(b.script, fakeResult{text: text, err: err})
}

func (b *fakeBackend) factory(_ context.Context, apiKey string) (contentGenerator, error) {
	return &fakeModels{backend: b, key: apiKey}, nil
}

func (b *fakeBackend) keys() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	keys := make([]string, 0, len(b.calls))
	for _, call := range b.calls {
		keys = append(keys, call.key)
	}
	return keys
}

type fakeModels struct {
	backend *fakeBackend
	key     string
}

func (m *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	b := m.backend
	b.mu.Lock()
	defer b.mu.Unlock()

	b.calls = append(b.calls, fakeCall{key: m.key, model: model, config: config, contents: contents})
	if len(b.script) == 0 {
		return nil, errors.New("unexpected call")
	}
	res := b.script[0]
	b.script = b.script[1:]
	if res.err != nil {
		return nil, res.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: res.text}}},
		}},
	}, nil
}

func newTestPool(t *testing.T, extras []string, policy keypool.Policy) *keypool.Pool {
	t.Helper()
	pool, err := keypool.New("primary", extras, keypool.Options{Policy: policy})
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	return pool
}

func newTestGenerator(t *testing.T, pool *keypool.Pool, backend *fakeBackend, log *zap.Logger) *Generator {
	t.Helper()
	g, err := newGenerator(context.Background(), pool, GeneratorOptions{Model: "gemini-test", Logger: log}, backend.factory)
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	return g
}

func testRequest(t *testing.T) request {
	t.Helper()
	v, err := newValidator(envelopeSchema)
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}
	return request{
		id:       "req-1",
		source:   sourceText,
		system:   "system",
		contents: []*genai.Content{genai.NewContentFromText("cv text", genai.RoleUser)},
		schema:   ResponseSchema,
		validate: func(raw string) error { return v.Validate(extractJSON(raw)) },
	}
}

func quotaErr() error {
	return genai.APIError{Code: http.StatusTooManyRequests, Status: "RESOURCE_EXHAUSTED", Message: "Resource has been exhausted"}
}

func assertFailure(t *testing.T, err error, kind ai.FailureKind, attempts int) {
	t.Helper()
	var failure *ai.AnalysisFailure
	if !errors.As(err, &failure) {
		t.Fatalf("expected AnalysisFailure, got %v", err)
	}
	if failure.Kind != kind {
		t.Fatalf("expected kind %s, got %s", kind, failure.Kind)
	}
	if failure.Attempts != attempts {
		t.Fatalf("expected %d attempts, got %d", attempts, failure.Attempts)
	}
}

func equalKeys(t *testing.T, got, want []string) {
	t.Helper()
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("expected keys %v, got %v", want, got)
	}
}

func TestGeneratorPersistentQuotaMakesPoolSizePlusOneAttempts(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	for i := 0; i < 4; i++ {
		backend.enqueue("", quotaErr())
	}

	pool := newTestPool(t, []string{"k1", "k2", "k3"}, keypool.Policy{})
	g := newTestGenerator(t, pool, backend, zap.NewNop())

	_, err := g.generate(context.Background(), testRequest(t))
	assertFailure(t, err, ai.FailureTransient, 4)
	equalKeys(t, backend.keys(), []string{"primary", "k1", "k2", "k3"})

	if _, ok := pool.Rotate(); ok {
		t.Fatalf("expected pool to be exhausted")
	}
}

func TestGeneratorWithoutPoolStopsWhenRotationFails(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	backend.enqueue("", quotaErr())

	g := newTestGenerator(t, newTestPool(t, nil, keypool.Policy{}), backend, zap.NewNop())

	_, err := g.generate(context.Background(), testRequest(t))
	assertFailure(t, err, ai.FailureTransient, 1)
	equalKeys(t, backend.keys(), []string{"primary"})
}

func TestGeneratorRotatesOnAuthFailure(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	backend.enqueue("", errors.New("API key not valid. Please pass a valid API key."))
	backend.enqueue(validResponse, nil)

	g := newTestGenerator(t, newTestPool(t, []string{"k1"}, keypool.Policy{}), backend, zap.NewNop())

	raw, err := g.generate(context.Background(), testRequest(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw == "" {
		t.Fatalf("expected response text")
	}
	equalKeys(t, backend.keys(), []string{"primary", "k1"})
}

func TestGeneratorRetriesMalformedOnSameKeyWithoutPool(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	backend.enqueue("Sorry, I cannot help with that.", nil)
	backend.enqueue("```json\n"+validResponse+"\n```", nil)

	g := newTestGenerator(t, newTestPool(t, nil, keypool.Policy{}), backend, zap.NewNop())

	if _, err := g.generate(context.Background(), testRequest(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	equalKeys(t, backend.keys(), []string{"primary", "primary"})
}

func TestGeneratorRetriesMalformedOnFreshKey(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	backend.enqueue(`{"extractedCv": {}}`, nil)
	backend.enqueue(validResponse, nil)

	g := newTestGenerator(t, newTestPool(t, []string{"k1"}, keypool.Policy{}), backend, zap.NewNop())

	if _, err := g.generate(context.Background(), testRequest(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	equalKeys(t, backend.keys(), []string{"primary", "k1"})
}

func TestGeneratorMalformedExhausted(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	backend.enqueue(`{"analysis": {}}`, nil)
	backend.enqueue(`not json`, nil)

	g := newTestGenerator(t, newTestPool(t, nil, keypool.Policy{}), backend, zap.NewNop())

	_, err := g.generate(context.Background(), testRequest(t))
	assertFailure(t, err, ai.FailureMalformed, 2)
}

func TestGeneratorDoesNotRetryOtherErrors(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	backend.enqueue("", genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL", Message: "internal error"})

	g := newTestGenerator(t, newTestPool(t, []string{"k1", "k2"}, keypool.Policy{}), backend, zap.NewNop())

	_, err := g.generate(context.Background(), testRequest(t))
	assertFailure(t, err, ai.FailureProvider, 1)
	equalKeys(t, backend.keys(), []string{"primary"})
}

func TestGeneratorRotatesPreemptively(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	backend.enqueue(validResponse, nil)
	backend.enqueue(validResponse, nil)

	pool := newTestPool(t, []string{"k1"}, keypool.Policy{MaxRequests: 1})
	g := newTestGenerator(t, pool, backend, zap.NewNop())

	for i := 0; i < 2; i++ {
		if _, err := g.generate(context.Background(), testRequest(t)); err != nil {
			t.Fatalf("call %d: unexpected error: %v", i, err)
		}
	}
	equalKeys(t, backend.keys(), []string{"primary", "k1"})

	if pool.ShouldRotatePreemptively() {
		t.Fatalf("rotation counters should have been reset")
	}
}

func TestGeneratorCanceledContext(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	g := newTestGenerator(t, newTestPool(t, nil, keypool.Policy{}), backend, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.generate(ctx, testRequest(t))
	assertFailure(t, err, ai.FailureCanceled, 0)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled in chain, got %v", err)
	}
	if len(backend.keys()) != 0 {
		t.Fatalf("expected no provider calls")
	}
}

func TestGeneratorRequestConfig(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	backend.enqueue(validResponse, nil)

	g := newTestGenerator(t, newTestPool(t, nil, keypool.Policy{}), backend, zap.NewNop())
	if _, err := g.generate(context.Background(), testRequest(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	call := backend.calls[0]
	if call.model != "gemini-test" {
		t.Fatalf("unexpected model: %s", call.model)
	}
	cfg := call.config
	if cfg.ResponseMIMEType != "application/json" {
		t.Fatalf("unexpected mime type: %s", cfg.ResponseMIMEType)
	}
	if cfg.ResponseSchema != ResponseSchema {
		t.Fatalf("expected response schema to be attached")
	}
	if cfg.Temperature == nil || *cfg.Temperature != defaultTemperature {
		t.Fatalf("unexpected temperature: %v", cfg.Temperature)
	}
	if cfg.SystemInstruction == nil || cfg.SystemInstruction.Parts[0].Text != "system" {
		t.Fatalf("expected system instruction to be set")
	}
}

func TestGeneratorLogsAttemptsWithoutKeys(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.DebugLevel)

	backend := &fakeBackend{}
	backend.enqueue("", quotaErr())
	backend.enqueue(validResponse, nil)

	g := newTestGenerator(t, newTestPool(t, []string{"secret-extra"}, keypool.Policy{}), backend, zap.New(core))
	if _, err := g.generate(context.Background(), testRequest(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	failed := logs.FilterMessage("gemini attempt failed").All()
	if len(failed) != 1 {
		t.Fatalf("expected 1 failed attempt log, got %d", len(failed))
	}
	fields := failed[0].ContextMap()
	if fields["request_id"] != "req-1" {
		t.Fatalf("expected request id field, got %v", fields["request_id"])
	}
	if fields["key_index"] != int64(-1) {
		t.Fatalf("expected primary key index, got %v", fields["key_index"])
	}

	for _, entry := range logs.All() {
		for _, value := range entry.ContextMap() {
			if value == "secret-extra" || value == "primary" {
				t.Fatalf("api key leaked into log entry %q", entry.Message)
			}
		}
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want errorClass
	}{
		{name: "429 value", err: genai.APIError{Code: http.StatusTooManyRequests}, want: classQuota},
		{name: "quota message", err: errors.New("Quota exceeded for metric"), want: classQuota},
		{name: "403 pointer", err: &genai.APIError{Code: http.StatusForbidden}, want: classAuth},
		{name: "401 wrapped", err: fmt.Errorf("generate: %w", genai.APIError{Code: http.StatusUnauthorized}), want: classAuth},
		{name: "permission message", err: errors.New("caller does not have permission"), want: classAuth},
		{name: "server error", err: genai.APIError{Code: http.StatusBadGateway, Message: "bad gateway"}, want: classOther},
		{name: "plain", err: errors.New("connection reset"), want: classOther},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := classify(tt.err); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestResponseTextEmpty(t *testing.T) {
	t.Parallel()

	if _, err := responseText(&genai.GenerateContentResponse{}); !errors.Is(err, errEmptyResponse) {
		t.Fatalf("expected empty response error, got %v", err)
	}
	if _, err := responseText(nil); !errors.Is(err, errEmptyResponse) {
		t.Fatalf("expected empty response error for nil, got %v", err)
	}
}
