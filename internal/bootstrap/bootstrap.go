package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	hclog "github.com/hashicorp/go-hclog"

	cataloginadapter "biochar/internal/modules/catalog/adapter/in"
	catalogoutadapter "biochar/internal/modules/catalog/adapter/out"
	catalogservice "biochar/internal/modules/catalog/service"
	catalogusecase "biochar/internal/modules/catalog/usecase"
	identityinadapter "biochar/internal/modules/identity/adapter/in"
	identityoutadapter "biochar/internal/modules/identity/adapter/out"
	identitydto "biochar/internal/modules/identity/dto"
	identityservice "biochar/internal/modules/identity/service"
	identityusecase "biochar/internal/modules/identity/usecase"
	integrationinadapter "biochar/internal/modules/integration/adapter/in"
	integrationoutadapter "biochar/internal/modules/integration/adapter/out"
	integrationservice "biochar/internal/modules/integration/service"
	integrationusecase "biochar/internal/modules/integration/usecase"
	pyrolysisinadapter "biochar/internal/modules/pyrolysis/adapter/in"
	pyrolysisoutadapter "biochar/internal/modules/pyrolysis/adapter/out"
	pyrolysisout "biochar/internal/modules/pyrolysis/port/out"
	pyrolysisservice "biochar/internal/modules/pyrolysis/service"
	pyrolysisusecase "biochar/internal/modules/pyrolysis/usecase"
	"biochar/internal/platform/clock"
	"biochar/internal/platform/config"
	"biochar/internal/platform/id"
	"biochar/internal/platform/logging"
	"biochar/internal/platform/sqlitedb"
	"biochar/internal/platform/watch"
	uiapp "biochar/internal/ui/app"
)

type App struct {
	IdentityCLI    identityinadapter.CLIHandler
	CatalogCLI     cataloginadapter.CLIHandler
	PyrolysisCLI   pyrolysisinadapter.CLIHandler
	IntegrationCLI integrationinadapter.CLIHandler
	Logger         hclog.Logger

	cfg     config.Config
	closers []io.Closer
}

// New wires every module against the stores under cfg. logOut receives the
// hclog output; nil means stderr.
func New(ctx context.Context, cfg config.Config, logOut io.Writer) (*App, error) {
	logger := logging.New(cfg.LogLevel, logOut)
	clk := clock.SystemClock{}
	ids := id.UUID{}

	db, err := sqlitedb.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	app := &App{Logger: logger, cfg: cfg, closers: []io.Closer{db}}

	if err := app.wire(ctx, db, clk, ids); err != nil {
		_ = app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) wire(ctx context.Context, db *sql.DB, clk clock.Clock, ids id.Generator) error {
	userStore, err := identityoutadapter.NewSQLiteUserStore(ctx, db)
	if err != nil {
		return fmt.Errorf("new user store: %w", err)
	}
	identityUC := identityusecase.NewInteractor(identityservice.NewUserService(clk, ids, userStore))

	catalogStore, err := catalogoutadapter.NewSQLiteCatalogStore(ctx, db)
	if err != nil {
		return fmt.Errorf("new catalog store: %w", err)
	}
	catalogUC := catalogusecase.NewInteractor(catalogservice.NewCatalogService(clk, ids, catalogStore, catalogStore))

	integrationUC := integrationusecase.NewInteractor(integrationservice.NewIntegrationService(
		integrationoutadapter.NewFileManifestStore(a.cfg.IntegrationsPath),
		integrationoutadapter.NewGRPCHost(a.Logger),
	))

	batchStore, err := pyrolysisoutadapter.NewSQLiteBatchStore(ctx, db)
	if err != nil {
		return fmt.Errorf("new batch store: %w", err)
	}
	batchSvc := pyrolysisservice.NewBatchService(
		clk,
		ids,
		batchStore,
		pyrolysisoutadapter.NewFileBlobStore(a.cfg.EvidenceDir),
		pyrolysisoutadapter.NewCatalogReferenceAdapter(catalogUC),
		a.Logger,
	)

	sinks := []pyrolysisout.EventSink{pyrolysisoutadapter.NewIntegrationEventSink(integrationUC)}
	if len(a.cfg.Kafka.Brokers) > 0 {
		kafkaSink := pyrolysisoutadapter.NewKafkaEventSink(a.cfg.Kafka.Brokers, a.cfg.Kafka.Topic)
		a.closers = append(a.closers, kafkaSink)
		sinks = append(sinks, kafkaSink)
	}
	pyrolysisUC := pyrolysisusecase.NewInteractor(
		batchSvc,
		pyrolysisoutadapter.NewMarkdownJournal(a.cfg.JournalDir),
		a.Logger,
		sinks...,
	)

	a.IdentityCLI = identityinadapter.NewCLIHandler(identityUC)
	a.CatalogCLI = cataloginadapter.NewCLIHandler(catalogUC)
	a.PyrolysisCLI = pyrolysisinadapter.NewCLIHandler(pyrolysisUC)
	a.IntegrationCLI = integrationinadapter.NewCLIHandler(integrationUC)
	return nil
}

// Close releases the database handle and the Kafka writer, newest first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// RunTUI runs the dashboard for actor, re-reading state whenever the
// database files under the data directory change.
func RunTUI(app *App, actor identitydto.Actor) error {
	watcher, err := watch.New(filepath.Dir(app.cfg.DBPath), filepath.Base(app.cfg.DBPath))
	if err != nil {
		return fmt.Errorf("watch data dir: %w", err)
	}
	defer watcher.Stop()
	if err := watcher.Start(); err != nil {
		return fmt.Errorf("watch data dir: %w", err)
	}

	model := uiapp.NewModel(actor, app.PyrolysisCLI, app.CatalogCLI, watcher.Changes)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	return err
}
