package container

import (
	"fmt"

	"github.com/km-arc/go-inject/framework/provider"
	"github.com/km-arc/go-inject/framework/token"
)

// ContextualBuilder implements the fluent contextual binding API.
//
//	c.When(token.ClassOf[*ReportJob]()).
//	    Needs(StorageToken).
//	    Give(provider.Create(NewS3Storage, provider.As(StorageToken)))
type ContextualBuilder struct {
	container *Container
	concrete  token.Identity
	needs     token.Identity
}

// Needs specifies which identity the concrete provider injects.
func (b *ContextualBuilder) Needs(id token.Identity) *ContextualBuilder {
	b.needs = id
	return b
}

// Give sets the provider used when the concrete provider resolves the needed
// identity. Contextual results are never cached.
func (b *ContextualBuilder) Give(p provider.Provider) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProvider, err)
	}
	c := b.container
	c.mu.Lock()
	defer c.mu.Unlock()

	concrete := c.canonical(token.KeyOf(b.concrete))
	needs := c.canonical(token.KeyOf(b.needs))
	if _, ok := c.contextual[concrete]; !ok {
		c.contextual[concrete] = make(map[token.Key]provider.Provider)
	}
	c.contextual[concrete][needs] = p
	return nil
}

// GiveValue is a shorthand for Give when the value is already built.
//
//	c.When(token.ClassOf[*PhotoController]()).Needs(StoragePathToken).GiveValue("/tmp/photos")
func (b *ContextualBuilder) GiveValue(value any) error {
	return b.Give(provider.Provider{
		Provide:    b.needs,
		Inject:     []token.Identity{},
		Scope:      provider.Transient,
		UseFactory: func(...any) (any, error) { return value, nil },
	})
}
