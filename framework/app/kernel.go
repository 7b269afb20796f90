package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/km-arc/go-inject/framework/config"
	"github.com/km-arc/go-inject/framework/container"
	"github.com/km-arc/go-inject/framework/logging"
	"github.com/km-arc/go-inject/framework/providers"
	"github.com/km-arc/go-inject/framework/routing"
	"github.com/km-arc/go-inject/framework/token"
)

// ErrInspectorDisabled is returned by Run when INSPECTOR_ENABLED is false.
var ErrInspectorDisabled = errors.New("app: inspector is disabled")

const shutdownTimeout = 5 * time.Second

// Application embeds the container and its module registry, like $app in
// Laravel's bootstrap/app.php.
type Application struct {
	*container.Container
	Modules *container.ModuleRegistry

	config *config.Config
	logger logrus.FieldLogger
}

// Option configures FromConfig.
type Option func(a *Application)

// WithLogger replaces the logger built from LOG_* settings.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(a *Application) { a.logger = logger }
}

// New loads configuration from envFiles and the environment, then creates
// the application.
func New(envFiles ...string) (*Application, error) {
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return nil, err
	}
	return FromConfig(cfg)
}

// FromConfig creates the application and registers the framework modules.
func FromConfig(cfg *config.Config, opts ...Option) (*Application, error) {
	a := &Application{config: cfg}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		logger, err := logging.New(cfg.Log)
		if err != nil {
			return nil, err
		}
		a.logger = logger.WithField("app", cfg.App.Name)
	}

	a.Container = container.New(container.WithLogger(a.logger))
	a.Modules = container.NewModuleRegistry(a.Container)

	for _, m := range providers.Framework(cfg, a.logger) {
		if err := a.Register(m); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Register adds a module to the application.
func (a *Application) Register(m container.Module) error {
	return a.Modules.Register(m)
}

// Boot runs the Boot phase of every module. With CONTAINER_STRICT it then
// validates the dependency graph, so a missing provider fails at startup
// instead of at first use.
func (a *Application) Boot() error {
	if err := a.Modules.Boot(); err != nil {
		return err
	}
	if a.config.Container.Strict {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("app: invalid container: %w", err)
		}
	}
	a.logger.WithField("bindings", len(a.Bindings())).Info("application booted")
	return nil
}

// Config returns the loaded configuration.
func (a *Application) Config() *config.Config { return a.config }

// Logger returns the application logger.
func (a *Application) Logger() logrus.FieldLogger { return a.logger }

// Router resolves the HTTP router.
func (a *Application) Router() (*routing.Router, error) {
	return container.Resolve(a.Container, token.ClassOf[*routing.Router]())
}

// Run boots the application if needed and serves the inspector until ctx
// is done, then shuts the server down gracefully.
func (a *Application) Run(ctx context.Context) error {
	if !a.Modules.Booted() {
		if err := a.Boot(); err != nil {
			return err
		}
	}
	if !a.config.Inspector.Enabled {
		return ErrInspectorDisabled
	}
	server, err := container.Resolve(a.Container, token.ClassOf[*http.Server]())
	if err != nil {
		return err
	}

	logger := a.logger.WithField("component", "server")
	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", server.Addr).Info("listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	logger.Info("shutting down")
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Environment returns the APP_ENV value.
func (a *Application) Environment() string { return a.config.App.Env }
func (a *Application) IsLocal() bool       { return a.Environment() == "local" }
func (a *Application) IsProduction() bool  { return a.config.IsProduction() }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }
func (a *Application) IsDebug() bool       { return a.config.App.Debug }
