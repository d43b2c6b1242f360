package app

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"example.com/onestop-outings/backend/internal/ai"
	"example.com/onestop-outings/backend/internal/cache"
	"example.com/onestop-outings/backend/internal/catalog"
	"example.com/onestop-outings/backend/internal/config"
	"example.com/onestop-outings/backend/internal/images"
	"example.com/onestop-outings/backend/internal/metrics"
	"example.com/onestop-outings/backend/internal/planner"
)

// App содержит зависимости, общие для HTTP-сервера и CLI.
type App struct {
	Config   config.Config
	Logger   *slog.Logger
	Catalog  *catalog.Catalog
	Planner  *planner.Planner
	Registry *prometheus.Registry
}

// New собирает каталог, клиентов внешних сервисов и оркестратор.
func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cat, err := catalog.NewDefault(catalog.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	if cfg.AI.APIKey == "" {
		logger.Warn("ai api key is not set, plans will come from the local catalog",
			slog.String("provider", cfg.AI.Provider))
	}

	registry := metrics.NewRegistry()
	aiService := ai.NewService(NewAIClient(cfg.AI), logger)
	memo := images.LoadMemo(cfg.Images.MemoPath, logger)
	imageClient := images.NewPexelsClient(cfg.Images.PexelsAPIKey, cfg.Images.BaseURL, ai.City, memo, logger)

	outings := planner.New(cat, aiService, imageClient,
		planner.WithLogger(logger),
		planner.WithMetrics(metrics.New(registry)),
		planner.WithPlanCache(cache.NewPlanCache(cache.DefaultTTL)),
		planner.WithQuota(cache.NewQuota()),
	)

	return &App{
		Config:   cfg,
		Logger:   logger,
		Catalog:  cat,
		Planner:  outings,
		Registry: registry,
	}, nil
}

// NewAIClient выбирает клиента модели по провайдеру из конфигурации.
func NewAIClient(cfg config.AIConfig) ai.Client {
	switch cfg.Provider {
	case config.ProviderGroq:
		return ai.NewGroqClient(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.MaxOutputTokens)
	default:
		return ai.NewGeminiClient(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.MaxOutputTokens)
	}
}
