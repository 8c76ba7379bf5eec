// Package bootstrap opens the persistence backend and LLM provider selected by
// configuration. Both binaries share it.
package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/warrantywizard-backend/internal/alerts"
	"github.com/angelmondragon/warrantywizard-backend/internal/chat"
	"github.com/angelmondragon/warrantywizard-backend/internal/insights"
	"github.com/angelmondragon/warrantywizard-backend/internal/warranties"
	"github.com/angelmondragon/warrantywizard-backend/pkg/config"
	"github.com/angelmondragon/warrantywizard-backend/pkg/db"
	"github.com/angelmondragon/warrantywizard-backend/pkg/llm"
	"github.com/angelmondragon/warrantywizard-backend/pkg/logger"
	"github.com/angelmondragon/warrantywizard-backend/pkg/migrate"
)

// History is the chat history surface used by the API and the cleanup job.
type History interface {
	chat.HistoryRepository
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Stores holds one repository per table. DB is nil for the memory driver.
type Stores struct {
	DB         *db.Client
	Warranties warranties.Repository
	Alerts     alerts.Repository
	Insights   insights.Repository
	History    History
}

// OpenStores connects to the configured driver and applies migrations where
// they are due.
func OpenStores(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*Stores, error) {
	if cfg.Store.Driver == config.StoreDriverMemory {
		logg.Info(logg.WithField(ctx, "driver", cfg.Store.Driver), "using in-memory store")
		return &Stores{
			Warranties: warranties.NewMemoryRepository(),
			Alerts:     alerts.NewMemoryRepository(),
			Insights:   insights.NewMemoryRepository(),
			History:    chat.NewMemoryHistory(),
		}, nil
	}

	client, err := db.New(ctx, cfg.Store.Driver, cfg.DB, logg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap database: %w", err)
	}
	if err := migrate.MaybeRun(ctx, cfg, logg, client); err != nil {
		client.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	conn := client.DB()
	return &Stores{
		DB:         client,
		Warranties: warranties.NewGormRepository(conn),
		Alerts:     alerts.NewGormRepository(conn),
		Insights:   insights.NewGormRepository(conn),
		History:    chat.NewGormHistory(conn),
	}, nil
}

// Pinger returns the database health check, or nil for the memory driver.
func (s *Stores) Pinger() db.Pinger {
	if s.DB == nil {
		return nil
	}
	return s.DB
}

// Shared reports whether other processes see the same data.
func (s *Stores) Shared() bool {
	return s.DB != nil
}

func (s *Stores) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

// NewCompleter builds the provider client named by cfg.Chat.Provider. It
// returns nil without an API key for that provider.
func NewCompleter(ctx context.Context, cfg *config.Config) (llm.Completer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Chat.Provider)) {
	case config.ChatProviderGemini:
		if cfg.Gemini.APIKey == "" {
			return nil, nil
		}
		client, err := llm.NewGeminiClient(ctx, cfg.Gemini.APIKey, cfg.Chat.Model)
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.ChatProviderOpenAI, "":
		if cfg.OpenAI.APIKey == "" {
			return nil, nil
		}
		var opts []llm.OpenAIOption
		if cfg.OpenAI.BaseURL != "" {
			opts = append(opts, llm.WithBaseURL(cfg.OpenAI.BaseURL))
		}
		client, err := llm.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.Chat.Model, opts...)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported chat provider %q", cfg.Chat.Provider)
	}
}
