// Package providers holds the modules every application registers before
// its own: configuration, logging, routing and the container inspector.
package providers

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/km-arc/go-inject/framework/config"
	"github.com/km-arc/go-inject/framework/container"
	"github.com/km-arc/go-inject/framework/inspect"
	"github.com/km-arc/go-inject/framework/provider"
	"github.com/km-arc/go-inject/framework/routing"
	"github.com/km-arc/go-inject/framework/token"
)

// LoggerToken resolves the application logger. Components derive their own
// with WithField("component", ...).
var LoggerToken = token.NewToken[logrus.FieldLogger]("Logger")

// ── ConfigModule ─────────────────────────────────────────────────────────────

// ConfigModule binds the loaded configuration and rejects invalid values at
// boot.
//
// Bound identities:
//   - token.ClassOf[*config.Config]()
type ConfigModule struct {
	container.BaseModule
	Config *config.Config
}

func (m *ConfigModule) Register(app *container.Container) error {
	return app.Register(provider.Value(token.ClassOf[*config.Config](), m.Config))
}

func (m *ConfigModule) Boot(_ *container.Container) error {
	if errs := m.Config.Validate(); errs != nil {
		return errs
	}
	return nil
}

func (m *ConfigModule) String() string { return "config" }

// ── LoggingModule ────────────────────────────────────────────────────────────

// LoggingModule binds the application logger.
//
// Bound identities:
//   - LoggerToken
type LoggingModule struct {
	container.BaseModule
	Logger logrus.FieldLogger
}

func (m *LoggingModule) Register(app *container.Container) error {
	return app.Register(provider.Value(LoggerToken, m.Logger))
}

func (m *LoggingModule) String() string { return "logging" }

// ── RoutingModule ────────────────────────────────────────────────────────────

// RoutingModule registers the HTTP router and the server that serves it.
//
// Bound identities:
//   - token.ClassOf[*routing.Router]()  (needs LoggerToken)
//   - token.ClassOf[*http.Server]()     (needs config, router)
type RoutingModule struct {
	container.BaseModule
}

func (m *RoutingModule) Register(app *container.Container) error {
	return app.RegisterAll(
		provider.Create1(routing.New, LoggerToken),
		provider.Create2(NewServer, token.ClassOf[*config.Config](), token.ClassOf[*routing.Router]()),
	)
}

func (m *RoutingModule) String() string { return "routing" }

// NewServer builds the HTTP server for the inspector address.
func NewServer(cfg *config.Config, router *routing.Router) *http.Server {
	return &http.Server{
		Addr:              cfg.Inspector.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// ── InspectorModule ──────────────────────────────────────────────────────────

// InspectorModule registers the container inspector and mounts its routes
// at boot when INSPECTOR_ENABLED is true.
//
// Bound identities:
//   - token.ClassOf[*inspect.Inspector]()  (needs the container, LoggerToken)
type InspectorModule struct {
	container.BaseModule
}

func (m *InspectorModule) Register(app *container.Container) error {
	return app.Register(provider.Create2(inspect.New, token.ClassOf[*container.Container](), LoggerToken))
}

func (m *InspectorModule) Boot(app *container.Container) error {
	cfg, err := container.Resolve(app, token.ClassOf[*config.Config]())
	if err != nil {
		return err
	}
	if !cfg.Inspector.Enabled {
		return nil
	}
	router, err := container.Resolve(app, token.ClassOf[*routing.Router]())
	if err != nil {
		return err
	}
	inspector, err := container.Resolve(app, token.ClassOf[*inspect.Inspector]())
	if err != nil {
		return err
	}
	inspector.Register(router)
	return nil
}

func (m *InspectorModule) String() string { return "inspector" }

// Framework returns the framework modules in registration order.
func Framework(cfg *config.Config, logger logrus.FieldLogger) []container.Module {
	return []container.Module{
		&ConfigModule{Config: cfg},
		&LoggingModule{Logger: logger},
		&RoutingModule{},
		&InspectorModule{},
	}
}
