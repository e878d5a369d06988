package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/Ezzyro/Airtable-Test/pkg/audit"
	"github.com/Ezzyro/Airtable-Test/pkg/config"
	"github.com/Ezzyro/Airtable-Test/pkg/database"
	"github.com/Ezzyro/Airtable-Test/pkg/handlers"
	"github.com/Ezzyro/Airtable-Test/pkg/llm"
	"github.com/Ezzyro/Airtable-Test/pkg/logging"
	"github.com/Ezzyro/Airtable-Test/pkg/middleware"
	"github.com/Ezzyro/Airtable-Test/pkg/repositories"
	"github.com/Ezzyro/Airtable-Test/pkg/services"
	"github.com/Ezzyro/Airtable-Test/pkg/tabular"
	"github.com/Ezzyro/Airtable-Test/pkg/tabular/airtable"
	"github.com/Ezzyro/Airtable-Test/pkg/tabular/memory"
	"github.com/Ezzyro/Airtable-Test/pkg/tabular/postgres"
	"github.com/Ezzyro/Airtable-Test/pkg/webhook"
)

// app is the fully wired service graph for one command invocation.
type app struct {
	cfg    *config.Config
	logger *zap.Logger

	store *tabular.LazyStore
	db    *database.DB

	publisher *services.Publisher
	processor services.IntakeProcessor
	review    services.ReviewService
	upserter  services.NoteUpserter
	indexer   services.CommentIndexer
}

// loadConfig reads configuration and builds the logger.
func (rt *runtime) loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(rt.configPath, rt.version)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := rt.logger
	if logger == nil {
		logger, err = logging.NewLogger(cfg.Env, cfg.LogLevel)
		if err != nil {
			return nil, nil, err
		}
	}
	return cfg, logger, nil
}

// open builds the service graph. Missing store, model or webhook credentials
// do not fail here: the store opens lazily, an unconfigured model disables
// refinement and an unconfigured webhook fails each publish.
func (rt *runtime) open(ctx context.Context) (*app, error) {
	cfg, logger, err := rt.loadConfig()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger}
	a.store = tabular.Lazy(rt.opener(ctx, a))

	aiClient, err := llm.NewClientFromConfig(&cfg.AI, logger)
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		logger.Info("No model credential configured, summaries will not be refined")
	case err != nil:
		return nil, err
	}

	sender := rt.sender
	if sender == nil && cfg.Webhook.IsConfigured() {
		client, err := webhook.NewClient(cfg.Webhook.URL, cfg.Webhook.Timeout, logger)
		if err != nil {
			return nil, err
		}
		sender = client
	}

	rule, err := services.NextStepRuleFor(cfg.Summary.NextStepRule, rt.now)
	if err != nil {
		return nil, err
	}

	intakes := repositories.NewIntakeRepository(a.store)
	notes := repositories.NewStatusNoteRepository(a.store)
	projects := repositories.NewProjectRepository(a.store)
	issues := repositories.NewIssueRepository(a.store)

	a.publisher = services.NewPublisher(sender, rt.now, logger)
	a.processor = services.NewIntakeProcessor(
		a.store,
		intakes,
		notes,
		services.NewComposer(rule),
		services.NewRefiner(aiClient, cfg.AI.Temperature, logger),
		a.publisher,
		logger,
	)
	a.review = services.NewReviewService(intakes, a.publisher, logger)
	a.upserter = services.NewNoteUpserter(notes, services.DefaultCreationStrategies(projects), logger)
	a.indexer = services.NewCommentIndexer(issues, logger)

	return a, nil
}

// opener selects the store driver. Resolution happens on first use, so a
// missing credential fails the run and not the process.
func (rt *runtime) opener(ctx context.Context, a *app) tabular.Opener {
	if rt.store != nil {
		store := rt.store
		return func() (tabular.Store, error) { return store, nil }
	}

	cfg := a.cfg
	switch cfg.Store.Driver {
	case config.StorePostgres:
		return func() (tabular.Store, error) {
			db, err := a.database(ctx)
			if err != nil {
				return nil, err
			}
			return postgres.New(db.Pool, a.logger), nil
		}
	case config.StoreMemory:
		store := memory.New(memory.WithClock(rt.now))
		return func() (tabular.Store, error) { return store, nil }
	default:
		return func() (tabular.Store, error) {
			client, err := airtable.New(&airtable.Config{
				APIKey:  cfg.Store.Airtable.APIKey,
				BaseID:  cfg.Store.Airtable.BaseID,
				APIURL:  cfg.Store.Airtable.APIURL,
				Timeout: cfg.Store.Airtable.Timeout,
			}, a.logger)
			if err != nil {
				return nil, err
			}
			return client, nil
		}
	}
}

// database opens the PostgreSQL pool once per invocation.
func (a *app) database(ctx context.Context) (*database.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := database.Open(ctx, &a.cfg.Store.Database, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.db = db
	return db, nil
}

// handler builds the HTTP surface with its middleware chain.
func (a *app) handler() http.Handler {
	auditor := audit.NewSecurityAuditor(a.logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(a.cfg, a.logger).RegisterRoutes(mux)
	handlers.NewReviewResponseHandler(a.review, auditor, a.logger).RegisterRoutes(mux)
	handlers.NewIntakeHandler(a.processor, auditor, a.logger).RegisterRoutes(mux)

	var h http.Handler = mux
	h = middleware.RequestLogger(a.logger)(h)
	h = middleware.CORS(middleware.DefaultCORSConfig)(h)
	h = middleware.RequestID(h)
	return h
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
	_ = a.logger.Sync()
}
