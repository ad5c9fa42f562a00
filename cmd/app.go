package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hoangphuccoder123/tutorbond/internal/ai"
	"github.com/hoangphuccoder123/tutorbond/internal/ai/gemini"
	"github.com/hoangphuccoder123/tutorbond/internal/export"
	"github.com/hoangphuccoder123/tutorbond/internal/extract"
	"github.com/hoangphuccoder123/tutorbond/internal/i18n"
	"github.com/hoangphuccoder123/tutorbond/internal/keypool"
	"github.com/hoangphuccoder123/tutorbond/internal/metrics"
	"github.com/hoangphuccoder123/tutorbond/internal/render"
	"github.com/hoangphuccoder123/tutorbond/internal/secrets"
	"github.com/hoangphuccoder123/tutorbond/internal/workflow"
)

// application holds everything a command needs once the config is loaded.
type application struct {
	config     *Config
	locale     i18n.Locale
	logger     *zap.Logger
	controller *workflow.Controller
	renderer   *render.Renderer
	closers    []func() error
}

func newApplication(ctx context.Context, config *Config, logger *zap.Logger) *application {
	locale := i18n.ParseLocale(config.Locale)
	a := &application{
		config:   config,
		locale:   locale,
		logger:   logger,
		renderer: render.New(locale),
	}

	// Without an analyzer the workflow still starts and reports a
	// configuration error on the first analysis.
	var analyzer ai.Analyzer
	geminiAnalyzer, err := a.newAnalyzer(ctx, config.AI)
	if err != nil {
		logger.Error("ai assistant is not available", zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY, GEMINI_API_KEY_FILE or ai.gemini.api-key-file"),
		)
	} else {
		analyzer = geminiAnalyzer
	}

	a.controller = workflow.New(workflow.Options{
		Extractor: extract.NewDocx(),
		Analyzer:  analyzer,
		Exporter:  export.NewDocx(locale),
		Locale:    locale,
		Logger:    logger,
	})

	return a
}

func (a *application) newAnalyzer(ctx context.Context, cfg *AIConfig) (*gemini.Analyzer, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	pool, err := a.newKeyPool(cfg.Gemini)
	if err != nil {
		return nil, err
	}

	generator, err := gemini.NewGenerator(ctx, pool, gemini.GeneratorOptions{
		Model:       cfg.Gemini.Model,
		Temperature: cfg.Gemini.Temperature,
		Logger:      a.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("building gemini generator: %w", err)
	}

	return gemini.NewAnalyzer(generator, a.locale, a.logger, cfg.Gemini.MaxLogLength)
}

func (a *application) newKeyPool(cfg *GeminiConfig) (*keypool.Pool, error) {
	primary, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.APIKey,
		File:  cfg.APIKeyFile,
	})
	if err != nil {
		return nil, err
	}

	extras, err := secrets.LoadList(cfg.PoolFile, cfg.PoolKeys, "gemini key pool")
	if err != nil {
		return nil, err
	}

	store := a.newCursorStore(cfg.Rotation)

	pool, err := keypool.New(primary, extras, keypool.Options{
		Policy: keypool.Policy{
			MaxRequests: cfg.Rotation.MaxRequests,
			MaxAge:      cfg.Rotation.MaxAge,
		},
		Store:  store,
		Logger: a.logger,
	})
	if err != nil {
		return nil, err
	}

	a.logger.Info("gemini key pool ready", zap.Int("extra_keys", pool.Size()))
	return pool, nil
}

func (a *application) newCursorStore(cfg *RotationConfig) keypool.CursorStore {
	if cfg.Redis == nil || cfg.Redis.Address == "" {
		return keypool.NewMemoryStore(cfg.CursorTTL)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	a.closers = append(a.closers, client.Close)

	key := cfg.Redis.Key
	if key == "" {
		key = keypool.DefaultRedisKey
	}
	a.logger.Info("sharing key rotation cursor through redis",
		zap.String("address", cfg.Redis.Address),
		zap.String("key", key),
	)
	return keypool.NewRedisStore(client, key, cfg.CursorTTL)
}

// serveMetrics exposes /metrics until ctx is done. It is a no-op without an address.
func (a *application) serveMetrics(ctx context.Context) {
	addr := a.config.Metrics.Address
	if addr == "" {
		return
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           metrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		a.logger.Info("serving metrics", zap.String("address", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server stopped", zap.Error(err))
		}
	}()

	a.closers = append(a.closers, func() error {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
}

func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("closing resources", zap.Error(err))
		}
	}
}

// exportTo exports the current document into dir and returns the written path.
func (a *application) exportTo(ctx context.Context, dir string) (string, error) {
	file, err := a.controller.Export(ctx)
	if err != nil {
		return "", err
	}
	return export.WriteFile(dir, file)
}
