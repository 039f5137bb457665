// Package bootstrap wires configuration, storage, metrics and the catalog
// into a running application.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/artpar/botdef/adapters/clock"
	apihttp "github.com/artpar/botdef/adapters/http"
	"github.com/artpar/botdef/adapters/idgen"
	"github.com/artpar/botdef/adapters/memory"
	"github.com/artpar/botdef/adapters/metrics"
	"github.com/artpar/botdef/adapters/sqlite"
	"github.com/artpar/botdef/config"
	"github.com/artpar/botdef/core/bot"
	"github.com/artpar/botdef/core/catalog"
	"github.com/artpar/botdef/core/manifest"
	"github.com/artpar/botdef/ports"
)

// App is the wired application.
type App struct {
	Config     *config.Config
	Logger     zerolog.Logger
	Metrics    *metrics.Collector
	DB         *sqlite.DB
	Catalog    *catalog.Catalog
	HTTPServer *http.Server

	version string
}

// Option configures New.
type Option func(*App)

// WithLogger replaces the logger built from configuration.
func WithLogger(logger zerolog.Logger) Option {
	return func(a *App) { a.Logger = logger }
}

// WithVersion sets the version reported by the API.
func WithVersion(v string) Option {
	return func(a *App) { a.version = v }
}

// New creates the application from cfg. The catalog store is opened and
// migrated; the HTTP server is only built by InitHTTPServer.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	a := &App{
		Config:  cfg,
		Logger:  NewLogger(cfg.Logging, os.Stderr),
		Metrics: metrics.New(),
		version: "dev",
	}
	for _, opt := range opts {
		opt(a)
	}

	store, err := a.openStore()
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	a.Catalog = catalog.New(catalog.Deps{
		Store:          store,
		InterfaceIDs:   idgen.UUID{Prefix: idgen.InterfacePrefix},
		IntegrationIDs: idgen.UUID{Prefix: idgen.IntegrationPrefix},
		Clock:          clock.Real{},
		Logger:         a.Logger.With().Str("component", "catalog").Logger(),
	})

	return a, nil
}

func (a *App) openStore() (ports.PackageStore, error) {
	if a.Config.Database.Driver == "memory" {
		return memory.NewPackageStore(), nil
	}

	db, err := sqlite.Open(a.Config.Database.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	a.DB = db
	return sqlite.NewPackageStore(db), nil
}

// LoadProject loads and resolves the configured project.
func (a *App) LoadProject(ctx context.Context) (*manifest.Project, error) {
	start := time.Now()
	defer func() {
		a.Metrics.ProjectLoadSeconds.Observe(time.Since(start).Seconds())
	}()

	return manifest.Load(ctx, a.Config.Project.Dir,
		manifest.WithLogger(a.Logger),
		manifest.WithObserver(a.Metrics),
		manifest.WithWorkers(a.Config.Project.Workers),
	)
}

// BotResult is the validation outcome of one bot.
type BotResult struct {
	Bot    string
	Source string
	Err    error
}

// ValidateBots validates every bot of the project in name order.
func (a *App) ValidateBots(proj *manifest.Project) []BotResult {
	var results []BotResult
	for _, name := range proj.BotNames() {
		b, _ := proj.Bot(name)
		err := bot.Validate(b)
		a.Metrics.ValidationResult(err)

		ev := a.Logger.Debug()
		if err != nil {
			ev = a.Logger.Warn().Err(err)
		}
		ev.Str("bot", name).Msg("bot validated")

		results = append(results, BotResult{Bot: name, Source: proj.BotSource(name), Err: err})
	}
	return results
}

// PublishReport lists the package IDs published from a project.
type PublishReport struct {
	Interfaces   map[string]string
	Integrations map[string]string
}

// PublishProject publishes every interface, then every resolved integration,
// of the project.
func (a *App) PublishProject(ctx context.Context, proj *manifest.Project) (PublishReport, error) {
	report := PublishReport{
		Interfaces:   make(map[string]string),
		Integrations: make(map[string]string),
	}

	for _, iface := range proj.Interfaces() {
		pkg, err := a.Catalog.PublishInterface(ctx, iface)
		if err != nil {
			return report, err
		}
		a.Metrics.PackagesPublished.WithLabelValues(string(ports.KindInterface)).Inc()
		report.Interfaces[iface.Ref()] = pkg.ID
	}

	for _, def := range proj.Integrations() {
		pkg, err := a.Catalog.PublishIntegration(ctx, def)
		if err != nil {
			return report, err
		}
		a.Metrics.PackagesPublished.WithLabelValues(string(ports.KindIntegration)).Inc()
		report.Integrations[def.Ref()] = pkg.ID
	}

	return report, nil
}

// FlushMetrics writes the metrics textfile when one is configured.
func (a *App) FlushMetrics() error {
	if a.Config.Metrics.Textfile == "" {
		return nil
	}
	if err := a.Metrics.WriteToTextfile(a.Config.Metrics.Textfile); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// InitHTTPServer builds the catalog API server.
func (a *App) InitHTTPServer() {
	cfg := apihttp.RouterConfig{Version: a.version, EnableOpenAPI: true}
	if a.Config.Metrics.Enabled {
		cfg.Metrics = a.Metrics
	}

	handler := apihttp.NewCatalogHandler(a.Catalog, a.Logger)
	router := apihttp.NewRouter(handler, a.Logger, cfg)

	a.HTTPServer = &http.Server{
		Addr:         a.Config.Server.Addr(),
		Handler:      router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
	}
}

// Run starts the HTTP server and blocks until shutdown.
func (a *App) Run() error {
	if a.HTTPServer == nil {
		a.InitHTTPServer()
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().
			Str("addr", a.HTTPServer.Addr).
			Msg("starting http server")
		if err := a.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	return a.Shutdown()
}

// Shutdown gracefully stops the application.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if a.HTTPServer != nil {
		if err := a.HTTPServer.Shutdown(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("http server shutdown error")
		}
	}

	if err := a.FlushMetrics(); err != nil {
		a.Logger.Error().Err(err).Msg("metrics flush error")
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("database close error")
		}
	}

	a.Logger.Debug().Msg("shutdown complete")
	return nil
}

// NewLogger builds the logger described by cfg.
func NewLogger(cfg config.LoggingConfig, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	if cfg.Format == "console" {
		output := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
		return zerolog.New(output).Level(level).With().Timestamp().Logger()
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
