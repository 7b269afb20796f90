package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-json"
	"github.com/samber/do"
	"github.com/samber/lo"

	"github.com/km-arc/go-inject/examples/accounts"
	"github.com/km-arc/go-inject/framework/app"
	"github.com/km-arc/go-inject/framework/bridge"
	"github.com/km-arc/go-inject/framework/config"
	"github.com/km-arc/go-inject/framework/container"
	"github.com/km-arc/go-inject/framework/inspect"
	"github.com/km-arc/go-inject/framework/provider"
	"github.com/km-arc/go-inject/framework/providers"
	"github.com/km-arc/go-inject/framework/token"
)

var version = "dev"

// CLI is the root command configuration with subcommands.
type CLI struct {
	EnvFiles []string         `kong:"name='env-file',short='e',help='.env files to load, later files win',default='.env'"`
	LogLevel string           `kong:"short='l',help='Override LOG_LEVEL'"`
	ResetURL string           `kong:"name='reset-url',env='RESET_URL',help='Base URL of the password reset page, default APP_URL/password/reset'"`
	Version  kong.VersionFlag `kong:"short='v',help='Show version and exit.'"`

	List           ListCmd           `kong:"cmd,help='List registered providers'"`
	Check          CheckCmd          `kong:"cmd,help='Validate the dependency graph'"`
	Graph          GraphCmd          `kong:"cmd,help='Print the dependency graph'"`
	Serve          ServeCmd          `kong:"cmd,help='Serve the container inspector and the accounts API over HTTP'"`
	ForgotPassword ForgotPasswordCmd `kong:"cmd,name='forgot-password',help='Send a password reset link'"`

	Stdout io.Writer `kong:"-"`
}

// application builds the example application: framework modules plus the
// deferred accounts module.
func (cli *CLI) application() (*app.Application, error) {
	cfg, err := config.Load(cli.EnvFiles...)
	if err != nil {
		return nil, err
	}
	if cli.LogLevel != "" {
		cfg.Log.Level = cli.LogLevel
	}
	a, err := app.FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	if err := a.Register(accounts.Module(cli.resetURL(cfg))); err != nil {
		return nil, err
	}
	return a, nil
}

// resetURL is --reset-url, or the reset page under APP_URL.
func (cli *CLI) resetURL(cfg *config.Config) string {
	if cli.ResetURL != "" {
		return cli.ResetURL
	}
	return strings.TrimSuffix(cfg.App.URL, "/") + "/password/reset"
}

// ── list ─────────────────────────────────────────────────────────────────────

// ListCmd prints every registered identity.
type ListCmd struct {
	JSON bool `kong:"help='Print JSON instead of a table'"`
}

func (c *ListCmd) Run(cli *CLI) error {
	a, err := cli.application()
	if err != nil {
		return err
	}
	if err := a.Modules.Boot(); err != nil {
		return err
	}
	views := inspect.New(a.Container, a.Logger()).Providers()

	if c.JSON {
		enc := json.NewEncoder(cli.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	}

	tw := tabwriter.NewWriter(cli.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PROVIDE\tKIND\tSCOPE\tINJECT")
	for _, v := range views {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", v.Provide, v.Kind, lo.Ternary(v.Scope == "", "-", v.Scope), lo.Ternary(len(v.Inject) == 0, "-", fmt.Sprint(v.Inject)))
	}
	return tw.Flush()
}

// ── check ────────────────────────────────────────────────────────────────────

// CheckCmd validates the graph regardless of CONTAINER_STRICT.
type CheckCmd struct{}

func (c *CheckCmd) Run(cli *CLI) error {
	a, err := cli.application()
	if err != nil {
		return err
	}
	if err := a.Modules.Boot(); err != nil {
		return err
	}
	if err := a.Validate(); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cli.Stdout, "ok: %d bindings\n", len(a.Bindings()))
	return err
}

// ── graph ────────────────────────────────────────────────────────────────────

// GraphCmd prints the dependency graph as DOT, or the resolution order.
type GraphCmd struct {
	Format string `kong:"short='f',enum='dot,order',default='dot',help='Output format'"`
}

func (c *GraphCmd) Run(cli *CLI) error {
	a, err := cli.application()
	if err != nil {
		return err
	}
	if err := a.Modules.Boot(); err != nil {
		return err
	}
	g := a.Graph()

	if c.Format == "order" {
		order, err := g.Order()
		if err != nil {
			return err
		}
		for i, id := range order {
			fmt.Fprintf(cli.Stdout, "%2d. %s\n", i+1, id)
		}
		return nil
	}
	return g.WriteDOT(cli.Stdout)
}

// ── serve ────────────────────────────────────────────────────────────────────

// ServeCmd runs the inspector and the accounts API until SIGINT or SIGTERM.
type ServeCmd struct {
	Addr string `kong:"help='Override INSPECTOR_ADDR'"`
}

func (c *ServeCmd) Run(cli *CLI) error {
	a, err := cli.application()
	if err != nil {
		return err
	}
	if err := a.Register(&accounts.RoutesModule{}); err != nil {
		return err
	}
	if c.Addr != "" {
		a.Config().Inspector.Addr = c.Addr
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return a.Run(ctx)
}

// ── forgot-password ──────────────────────────────────────────────────────────

// ForgotPasswordCmd runs the accounts use case on the chosen host.
type ForgotPasswordCmd struct {
	Email string `kong:"required,help='Account email'"`
	Host  string `kong:"enum='container,do',default='container',help='Injector that builds the use case'"`
}

func (c *ForgotPasswordCmd) Run(cli *CLI) error {
	a, err := cli.application()
	if err != nil {
		return err
	}
	if err := a.Boot(); err != nil {
		return err
	}

	uc, mailer, err := c.resolve(cli, a)
	if err != nil {
		return err
	}
	if err := uc.Execute(context.Background(), c.Email); err != nil {
		return err
	}

	sent := mailer.Sent()
	if len(sent) == 0 {
		_, err = fmt.Fprintf(cli.Stdout, "no account for %s, nothing sent\n", c.Email)
		return err
	}
	_, err = fmt.Fprintf(cli.Stdout, "reset link sent to %s via %s\n", sent[len(sent)-1].To, c.Host)
	return err
}

func (c *ForgotPasswordCmd) resolve(cli *CLI, a *app.Application) (*accounts.ForgotPasswordUseCase, *accounts.LogMailer, error) {
	useCase, mailerClass := token.ClassOf[*accounts.ForgotPasswordUseCase](), token.ClassOf[*accounts.LogMailer]()

	if c.Host == "do" {
		inj := do.New()
		err := bridge.Install(inj, append(
			[]provider.Provider{provider.Value(providers.LoggerToken, a.Logger())},
			accounts.Providers(cli.resetURL(a.Config()))...)...)
		if err != nil {
			return nil, nil, err
		}
		uc, err := bridge.Invoke(inj, useCase)
		if err != nil {
			return nil, nil, err
		}
		mailer, err := bridge.Invoke(inj, mailerClass)
		return uc, mailer, err
	}

	uc, err := container.Resolve(a.Container, useCase)
	if err != nil {
		return nil, nil, err
	}
	mailer, err := container.Resolve(a.Container, mailerClass)
	return uc, mailer, err
}

// ── entry point ──────────────────────────────────────────────────────────────

func run(args []string, stdout io.Writer, opts ...kong.Option) error {
	cli := CLI{Stdout: stdout}
	parser, err := kong.New(&cli, append([]kong.Option{
		kong.Name("injectctl"),
		kong.Description("Inspect and exercise a typed provider container"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{"version": version},
	}, opts...)...)
	if err != nil {
		return err
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	return ctx.Run(&cli)
}
