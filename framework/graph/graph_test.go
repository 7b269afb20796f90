package graph_test

import (
	"bytes"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/km-arc/go-inject/framework/graph"
	"github.com/km-arc/go-inject/framework/provider"
	"github.com/km-arc/go-inject/framework/token"
)

type (
	Config  struct{ DSN string }
	DB      struct{ Config *Config }
	Repo    interface{ Name() string }
	Service struct {
		Repo Repo
		DB   *DB
	}
	Loop struct{}
)

var (
	RepoToken = token.NewToken[Repo]("Repo")
	LoopToken = token.NewToken[*Loop]("Loop")
)

func newDB(c *Config) *DB                { return &DB{Config: c} }
func newService(r Repo, db *DB) *Service { return &Service{Repo: r, DB: db} }
func newLoop(*Loop) *Loop                { return &Loop{} }

func keys(ids []token.Identity) []token.Key {
	out := make([]token.Key, len(ids))
	for i, id := range ids {
		out[i] = id.Key()
	}
	return out
}

var _ = Describe("Graph", func() {
	var (
		dbProvider      provider.Provider
		serviceProvider provider.Provider
	)

	BeforeEach(func() {
		dbProvider = provider.Create1(newDB, token.ClassOf[*Config]())
		serviceProvider = provider.Create2(newService, RepoToken, token.ClassOf[*DB]())
	})

	Describe("Order", func() {
		Context("when every dependency is bound", func() {
			It("puts dependencies first", func() {
				g := graph.Build(
					[]provider.Provider{serviceProvider, dbProvider},
					graph.Instances(token.ClassOf[*Config](), RepoToken),
				)

				order, err := g.Order()

				Expect(err).ToNot(HaveOccurred())
				Expect(keys(order)).To(Equal([]token.Key{
					RepoToken.Key(),
					token.ClassOf[*Config]().Key(),
					token.ClassOf[*DB]().Key(),
					token.ClassOf[*Service]().Key(),
				}))
			})
		})

		Context("when a dependency is missing", func() {
			It("skips it", func() {
				g := graph.Build([]provider.Provider{dbProvider})

				order, err := g.Order()

				Expect(err).ToNot(HaveOccurred())
				Expect(keys(order)).To(Equal([]token.Key{token.ClassOf[*DB]().Key()}))
			})
		})

		Context("when providers form a loop", func() {
			It("returns a CycleError with the path", func() {
				g := graph.Build([]provider.Provider{
					provider.Create1(newLoop, LoopToken, provider.As(LoopToken)),
				})

				_, err := g.Order()

				Expect(errors.Is(err, graph.ErrCycle)).To(BeTrue())

				var cycle graph.CycleError
				Expect(errors.As(err, &cycle)).To(BeTrue())
				Expect(keys(cycle.Path)).To(Equal([]token.Key{LoopToken.Key(), LoopToken.Key()}))
				Expect(err.Error()).To(Equal("graph: dependency cycle: Symbol(Loop) -> Symbol(Loop)"))
			})

			It("reports loops through aliases", func() {
				alias := token.NewToken[*DB]("db")
				g := graph.Build(
					[]provider.Provider{provider.Create1(func(d *DB) *DB { return d }, alias)},
					graph.Alias(alias, token.ClassOf[*DB]()),
				)

				_, err := g.Order()

				var cycle graph.CycleError
				Expect(errors.As(err, &cycle)).To(BeTrue())
				Expect(cycle.Path).To(HaveLen(3))
			})
		})
	})

	Describe("Missing", func() {
		It("lists edges to unbound identities", func() {
			g := graph.Build([]provider.Provider{serviceProvider, dbProvider})

			missing := g.Missing()

			Expect(missing).To(HaveLen(2))
			Expect(missing[0].From.Key()).To(Equal(token.ClassOf[*Service]().Key()))
			Expect(missing[0].To.Key()).To(Equal(RepoToken.Key()))
			Expect(missing[1].To.Key()).To(Equal(token.ClassOf[*Config]().Key()))
		})

		It("is empty when instances cover the dependencies", func() {
			g := graph.Build(
				[]provider.Provider{serviceProvider, dbProvider},
				graph.Instances(RepoToken, token.ClassOf[*Config]()),
			)

			Expect(g.Missing()).To(BeEmpty())
		})
	})

	Describe("Nodes", func() {
		It("keeps registration order and replaces duplicates in place", func() {
			replacement := provider.Create(func() *DB { return &DB{} })
			g := graph.Build([]provider.Provider{dbProvider, serviceProvider, replacement})

			Expect(g.Len()).To(Equal(2))
			node, ok := g.Node(token.ClassOf[*DB]())
			Expect(ok).To(BeTrue())
			Expect(node.Deps).To(BeEmpty())
			Expect(g.Nodes()[0].ID.Key()).To(Equal(token.ClassOf[*DB]().Key()))
		})

		It("finds dependents", func() {
			g := graph.Build([]provider.Provider{serviceProvider, dbProvider})

			dependents := g.Dependents(token.ClassOf[*DB]())

			Expect(dependents).To(HaveLen(1))
			Expect(dependents[0].ID.Key()).To(Equal(token.ClassOf[*Service]().Key()))
		})
	})

	Describe("WriteDOT", func() {
		It("renders nodes, missing nodes and edges", func() {
			g := graph.Build([]provider.Provider{dbProvider})

			var buf bytes.Buffer
			Expect(g.WriteDOT(&buf)).To(Succeed())

			out := buf.String()
			Expect(out).To(HavePrefix("digraph providers {\n"))
			Expect(out).To(ContainSubstring(`[label="*graph_test.DB\nprovider singleton"]`))
			Expect(out).To(ContainSubstring(`[label="*graph_test.Config\nmissing", fillcolor=tomato]`))
			Expect(out).To(ContainSubstring(`"*github.com/km-arc/go-inject/framework/graph_test.Config" -> "*github.com/km-arc/go-inject/framework/graph_test.DB";`))
			Expect(out).To(HaveSuffix("}\n"))
		})
	})

	Describe("Kind", func() {
		It("has readable names", func() {
			Expect(graph.KindProvider.String()).To(Equal("provider"))
			Expect(graph.KindInstance.String()).To(Equal("instance"))
			Expect(graph.KindAlias.String()).To(Equal("alias"))
			Expect(graph.KindDeferred.String()).To(Equal("deferred"))
		})
	})
})
