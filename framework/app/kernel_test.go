package app_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-inject/framework/app"
	"github.com/km-arc/go-inject/framework/config"
	"github.com/km-arc/go-inject/framework/container"
	"github.com/km-arc/go-inject/framework/logging"
	"github.com/km-arc/go-inject/framework/provider"
	"github.com/km-arc/go-inject/framework/providers"
	"github.com/km-arc/go-inject/framework/routing"
	"github.com/km-arc/go-inject/framework/token"
)

func testConfig() *config.Config {
	return &config.Config{
		App:       config.AppConfig{Name: "kernel-test", Env: "testing"},
		Log:       config.LogConfig{Level: "info", Format: "text"},
		Inspector: config.InspectorConfig{Addr: "127.0.0.1:0", Enabled: true},
		Container: config.ContainerConfig{Strict: true},
	}
}

func newApp(t *testing.T, cfg *config.Config) *app.Application {
	t.Helper()
	a, err := app.FromConfig(cfg, app.WithLogger(logging.Discard()))
	require.NoError(t, err)
	return a
}

type Report struct{ source string }

var ReportSourceToken = token.NewToken[string]("ReportSource")

func NewReport(source string) *Report { return &Report{source: source} }

// ── New ──────────────────────────────────────────────────────────────────────

func TestNew_LoadsEnvFiles(t *testing.T) {
	a, err := app.New("testdata/app.env")
	require.NoError(t, err)

	assert.Equal(t, "kernel", a.Config().App.Name)
	assert.True(t, a.IsTesting())
	assert.False(t, a.IsProduction())
	assert.False(t, a.IsLocal())
	assert.True(t, a.IsDebug())
}

func TestFromConfig_RegistersFrameworkModules(t *testing.T) {
	t.Parallel()

	a := newApp(t, testConfig())

	assert.True(t, a.Bound(token.ClassOf[*config.Config]()))
	assert.True(t, a.Bound(providers.LoggerToken))
	assert.True(t, a.Bound(token.ClassOf[*routing.Router]()))
	assert.True(t, a.Bound(token.ClassOf[*http.Server]()))
	assert.Len(t, a.Modules.Modules(), 4)
	assert.Same(t, a.Container, container.MustResolve(a.Container, token.ClassOf[*container.Container]()))
}

func TestFromConfig_InvalidLogLevel(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Log.Level = "loud"

	_, err := app.FromConfig(cfg)
	assert.Error(t, err)
}

// ── Boot ─────────────────────────────────────────────────────────────────────

func TestBoot_MountsInspector(t *testing.T) {
	t.Parallel()

	a := newApp(t, testConfig())
	require.NoError(t, a.Boot())

	router, err := a.Router()
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestBoot_InspectorDisabled(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Inspector.Enabled = false
	a := newApp(t, cfg)
	require.NoError(t, a.Boot())

	router, err := a.Router()
	require.NoError(t, err)
	assert.Empty(t, router.Routes())

	assert.ErrorIs(t, a.Run(context.Background()), app.ErrInspectorDisabled)
}

func TestBoot_StrictRejectsMissingProvider(t *testing.T) {
	t.Parallel()

	a := newApp(t, testConfig())
	require.NoError(t, a.Register(container.Providers("reports",
		provider.Create1(NewReport, ReportSourceToken),
	)))

	err := a.Boot()
	require.Error(t, err)
	assert.ErrorIs(t, err, container.ErrNotBound)
	assert.Contains(t, err.Error(), "Symbol(ReportSource)")
}

func TestBoot_LenientAllowsMissingProvider(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Container.Strict = false
	a := newApp(t, cfg)
	require.NoError(t, a.Register(container.Providers("reports",
		provider.Create1(NewReport, ReportSourceToken),
	)))

	require.NoError(t, a.Boot())
	_, err := a.Make(token.ClassOf[*Report]())
	assert.ErrorIs(t, err, container.ErrNotBound)
}

func TestBoot_InvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.App.Env = "staging"
	a := newApp(t, cfg)

	err := a.Boot()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boot config")
	assert.Contains(t, err.Error(), "The selected APP_ENV is invalid.")
}

// ── Run ──────────────────────────────────────────────────────────────────────

func TestRun_StopsWhenContextDone(t *testing.T) {
	t.Parallel()

	a := newApp(t, testConfig())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.True(t, a.Modules.Booted())
}
