package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"ai-pack-planner/internal/config"
	"ai-pack-planner/internal/database"
	"ai-pack-planner/internal/llm"
	"ai-pack-planner/internal/logger"
	"ai-pack-planner/internal/metrics"
	"ai-pack-planner/internal/planner"
	"ai-pack-planner/internal/trip"
	"ai-pack-planner/internal/wizard"
)

// App holds the wired dependencies shared by the CLI and the Telegram bot.
type App struct {
	cfg     *config.Config
	log     *logger.Logger
	db      *database.DB
	Metrics *metrics.Store
	Planner *planner.Planner
	Enrich  *planner.Enricher

	closers []func() error
}

// New opens the metrics database and builds the generators selected by cfg.
func New(cfg *config.Config, log *logger.Logger) (*App, error) {
	if log == nil {
		log = logger.NewNop()
	}

	db, err := database.NewDB(cfg.DatabasePath, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	a := &App{cfg: cfg, log: log, db: db, Metrics: metrics.NewStore(db.SQL)}
	a.closers = append(a.closers, db.Close)

	lists, distribution, err := a.textBackends()
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Planner = planner.NewPlanner(
		planner.NewGenerator(lists, a.Metrics, log),
		planner.NewGenerator(distribution, a.Metrics, log),
		planner.RegexBudgetParser{},
		log,
	)

	if cfg.EnrichEnabled {
		grounded := llm.NewGroundedGeminiClient(cfg.GeminiAPIKey, cfg.GoogleModelName)
		a.Enrich = planner.NewEnricher(
			planner.NewGroundedGenerator(grounded, a.Metrics, log),
			cfg.EnrichAttempts,
			log,
		)
	}

	log.Info("app initialized",
		"backend", cfg.TextBackend,
		"enrich", cfg.EnrichEnabled,
		"database", cfg.DatabasePath,
	)
	return a, nil
}

// textBackends returns the list generator and the distribution generator.
// OpenAI-compatible backends get a second client without JSON mode because
// the distribution answer is prose.
func (a *App) textBackends() (lists, distribution llm.TextGenerator, err error) {
	cfg := a.cfg
	switch cfg.TextBackend {
	case config.BackendGemini:
		gemini := llm.NewGeminiClient(cfg.GeminiAPIKey, cfg.GoogleModelName)
		a.closers = append(a.closers, gemini.Close)
		return gemini, gemini, nil
	case config.BackendGroq:
		return llm.NewGroqClient(cfg.GroqAPIKey, cfg.GroqModel, true),
			llm.NewGroqClient(cfg.GroqAPIKey, cfg.GroqModel, false), nil
	case config.BackendOpenAI:
		opts := llm.OpenAIOptions{
			Name:        "openai",
			APIKey:      cfg.OpenAIAPIKey,
			BaseURL:     cfg.OpenAIBaseURL,
			Model:       cfg.OpenAIModel,
			Temperature: 0.2,
			JSONMode:    true,
		}
		prose := opts
		prose.JSONMode = false
		return llm.NewOpenAICompatibleClient(opts), llm.NewOpenAICompatibleClient(prose), nil
	}
	return nil, nil, fmt.Errorf("unknown text backend %q", cfg.TextBackend)
}

// NewWizard returns a wizard over the app's generators. Each caller gets its
// own store, so concurrent chats never supersede each other.
func (a *App) NewWizard(opts ...wizard.Option) *wizard.Wizard {
	base := []wizard.Option{wizard.WithLogger(a.log)}
	if a.Enrich != nil {
		base = append(base, wizard.WithEnricher(a.Enrich))
	}
	return wizard.New(a.Planner, append(base, opts...)...)
}

// Generate runs one plan to completion, including enrichment.
func (a *App) Generate(ctx context.Context, params trip.Parameters, opts ...wizard.Option) (wizard.State, error) {
	run, err := a.NewWizard(opts...).Submit(ctx, params)
	if err != nil {
		return wizard.State{}, err
	}
	return run.Wait(ctx), nil
}

// DataDir is the directory holding the database, used for health reports.
func (a *App) DataDir() string {
	return filepath.Dir(a.cfg.DatabasePath)
}

func (a *App) Config() *config.Config { return a.cfg }

func (a *App) Logger() *logger.Logger { return a.log }

// Close releases clients and the database in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
