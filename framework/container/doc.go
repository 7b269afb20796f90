// Package container is the host injector for provider descriptors, with a
// Laravel-style module system on top.
//
// # Overview
//
// The container stores provider.Provider descriptors keyed by their
// registration identity, resolves each descriptor's Inject identities in
// order and passes the values to its factory. Singletons are cached; transient
// providers are rebuilt on every resolution.
//
// # Container Lifecycle
//
//  1. Create: c := container.New()
//  2. Register modules: registry.Register(accounts.Module())
//  3. Boot: registry.Boot(), optionally c.Validate()
//  4. Serve requests
//
// # Registration
//
//	// Concrete class, registered under token.ClassOf[*Mailer]()
//	c.Register(provider.Create1(NewMailer, token.ClassOf[*config.Config]()))
//
//	// Interface behind a token
//	c.Register(provider.Create(NewInMemoryAccounts, provider.As(AccountRepositoryToken)))
//
//	// Pre-built value
//	c.Instance(token.ClassOf[*config.Config](), cfg)
//
//	// Alias
//	c.Alias(AccountRepositoryToken, LegacyAccountsToken)
//
// # Resolving
//
//	// Untyped
//	raw, err := c.Make(AccountRepositoryToken)
//
//	// Generic (preferred, no type assertion required)
//	accounts, err := container.Resolve(c, AccountRepositoryToken)
//
// # Contextual Binding
//
//	c.When(token.ClassOf[*ReportJob]()).
//	    Needs(StorageToken).
//	    Give(provider.Create(NewS3Storage, provider.As(StorageToken)))
//
// # Tags
//
//	c.Tag([]token.Identity{CPUReportToken, MemoryReportToken}, "reports")
//	reports, err := c.Tagged("reports")
//
// # Extend / Decorate
//
//	c.Extend(LoggerToken, func(instance any, c *container.Container) any {
//	    return instance.(logrus.FieldLogger).WithField("app", "demo")
//	})
//
// # Modules
//
//	registry := container.NewModuleRegistry(c)
//	registry.Register(container.Providers("accounts",
//	    provider.Create(NewInMemoryAccounts, provider.As(AccountRepositoryToken)),
//	    provider.Create1(NewForgotPasswordUseCase, AccountRepositoryToken),
//	))
//	registry.Boot()
//
// # Deferred Modules
//
//	heavy := container.Providers("reports", provider.Create(NewReportEngine)).Defer()
//	registry.Register(heavy) // NewReportEngine runs on the first Make
//
// # Validation
//
// Type mismatches between a constructor and its tokens are compile errors.
// What the compiler cannot see is whether every token has a provider; Validate
// checks that, and dependency cycles, before anything is built.
package container
