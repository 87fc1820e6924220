package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/makifarslan/Mini-Farm/internal/adapters/metrics"
	"github.com/makifarslan/Mini-Farm/internal/adapters/persistence"
	"github.com/makifarslan/Mini-Farm/internal/application/common"
	applogging "github.com/makifarslan/Mini-Farm/internal/application/logging"
	"github.com/makifarslan/Mini-Farm/internal/application/mediator"
	prodCmd "github.com/makifarslan/Mini-Farm/internal/application/production/commands"
	prodQuery "github.com/makifarslan/Mini-Farm/internal/application/production/queries"
	prodTypes "github.com/makifarslan/Mini-Farm/internal/application/production/types"
	"github.com/makifarslan/Mini-Farm/internal/application/savegame"
	"github.com/makifarslan/Mini-Farm/internal/domain/production"
	"github.com/makifarslan/Mini-Farm/internal/domain/resource"
	domainSave "github.com/makifarslan/Mini-Farm/internal/domain/savegame"
	"github.com/makifarslan/Mini-Farm/internal/infrastructure/config"
	"github.com/makifarslan/Mini-Farm/internal/infrastructure/database"
	"github.com/makifarslan/Mini-Farm/internal/infrastructure/logging"
)

// App wires the farm: store, factories, persistence, logging and metrics
type App struct {
	Config      *config.Config
	Logger      zerolog.Logger
	Store       *resource.Store
	Registry    *production.Registry
	Coordinator *savegame.Coordinator

	commandMetrics *metrics.CommandMetricsCollector
	closers        []func() error
}

// NewApp builds the farm described by cfg. Close releases the log file and
// database connection.
func NewApp(cfg *config.Config) (*App, error) {
	app := &App{Config: cfg}

	logger, logCloser, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}
	app.Logger = logger
	app.closers = append(app.closers, logCloser.Close)

	repo, err := app.openRepository()
	if err != nil {
		app.Close()
		return nil, err
	}

	app.Store = resource.NewStore()
	app.Registry = production.NewRegistry()
	for _, fc := range cfg.Factories {
		def, err := fc.Definition()
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("invalid factory %d: %w", fc.ID, err)
		}
		factory, err := production.NewFactory(def, app.Store)
		if err != nil {
			app.Close()
			return nil, err
		}
		if err := app.Registry.Register(factory); err != nil {
			app.Close()
			return nil, err
		}
		factory.Subscribe(logging.FactoryEventLogger(logger))
	}
	app.Store.Subscribe(logging.ResourceChangeLogger(logger))

	app.Coordinator = savegame.NewCoordinator(app.Store, app.Registry, repo, nil)

	if cfg.Metrics.Enabled {
		if err := app.initMetrics(); err != nil {
			app.Close()
			return nil, err
		}
	}

	return app, nil
}

func (a *App) openRepository() (domainSave.Repository, error) {
	switch a.Config.Save.Backend {
	case "database":
		db, err := database.Open(&a.Config.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.closers = append(a.closers, func() error { return database.Close(db) })
		return persistence.NewGormSnapshotRepository(db, a.Config.Save.Retain), nil
	default:
		return persistence.NewFileSnapshotRepository(a.Config.Save.Path, a.Config.Save.Compress), nil
	}
}

func (a *App) initMetrics() error {
	metrics.InitRegistry()

	productionMetrics := metrics.NewProductionMetricsCollector()
	if err := productionMetrics.Register(); err != nil {
		return fmt.Errorf("failed to register production metrics: %w", err)
	}
	detach := productionMetrics.Attach(a.Registry, a.Store)
	a.closers = append(a.closers, func() error {
		detach()
		return nil
	})

	a.commandMetrics = metrics.NewCommandMetricsCollector()
	if err := a.commandMetrics.Register(); err != nil {
		return fmt.Errorf("failed to register command metrics: %w", err)
	}
	return nil
}

// Context returns ctx carrying the application logger
func (a *App) Context(ctx context.Context) context.Context {
	return applogging.WithLogger(ctx, logging.NewApplicationLogger(a.Logger))
}

// Mediator registers every handler against executor. Use the scheduler while
// the simulation loop runs and common.InlineExecutor otherwise.
func (a *App) Mediator(executor common.Executor) (mediator.Mediator, error) {
	med := mediator.NewMediator()
	if a.commandMetrics != nil {
		med.RegisterMiddleware(metrics.PrometheusMiddleware(a.commandMetrics))
	}

	controls := prodCmd.NewControlsHandler(a.Registry, executor)
	saves := savegame.NewSaveGameHandler(a.Coordinator, executor)

	registrations := []error{
		mediator.RegisterHandler[*prodTypes.EnqueueOrderCommand](med, prodCmd.NewEnqueueOrderHandler(a.Registry, executor)),
		mediator.RegisterHandler[*prodTypes.CancelOrderCommand](med, prodCmd.NewCancelOrderHandler(a.Registry, executor)),
		mediator.RegisterHandler[*prodTypes.CollectOutputCommand](med, prodCmd.NewCollectOutputHandler(a.Registry, executor)),
		mediator.RegisterHandler[*prodTypes.OpenControlsCommand](med, controls),
		mediator.RegisterHandler[*prodTypes.CloseControlsCommand](med, controls),
		mediator.RegisterHandler[*prodTypes.GetFactoryQuery](med, prodQuery.NewGetFactoryHandler(a.Registry, executor)),
		mediator.RegisterHandler[*prodTypes.ListFactoriesQuery](med, prodQuery.NewListFactoriesHandler(a.Registry, executor)),
		mediator.RegisterHandler[*prodTypes.ListResourcesQuery](med, prodQuery.NewListResourcesHandler(a.Store, executor)),
		mediator.RegisterHandler[*savegame.SaveGameCommand](med, saves),
		mediator.RegisterHandler[*savegame.LoadGameCommand](med, saves),
	}
	if err := errors.Join(registrations...); err != nil {
		return nil, fmt.Errorf("failed to register handlers: %w", err)
	}
	return med, nil
}

// Close releases resources in reverse order of acquisition
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
