package rendergraph

import (
	"github.com/vull-engine/vull/internal/logx"
)

// Graph accumulates resource and pass declarations. It is owned by a
// single caller: per §5's concurrency model, compile and execute must
// not overlap with further mutation of the same Graph.
type Graph struct {
	log       logx.Logger
	resources []*resource
	byName    map[string]ResourceID
	passes    []*pass
}

// Option configures a Graph at construction time.
type Option func(*graphConfig)

type graphConfig struct {
	log logx.Logger
}

// WithLogger attaches a structured logger; the default is a no-op
// logger.
func WithLogger(log logx.Logger) Option { return func(c *graphConfig) { c.log = log } }

// New constructs an empty Graph.
func New(opts ...Option) *Graph {
	c := graphConfig{log: logx.Nop()}
	for _, o := range opts {
		o(&c)
	}
	return &Graph{
		log:    c.log,
		byName: make(map[string]ResourceID),
	}
}

// NewAttachment mints a transient resource owned by the graph, sized
// and typed per desc.
func (g *Graph) NewAttachment(name string, desc ResourceDesc) ResourceID {
	id := ResourceID(len(g.resources))
	g.resources = append(g.resources, &resource{
		id:        id,
		name:      name,
		kind:      desc.Kind,
		desc:      desc,
		transient: true,
	})
	g.byName[name] = id
	return id
}

// Import mints a resource backed by an externally owned handle (e.g.
// the swapchain image for this frame). Imported resources are never
// treated as transient and are never pooled by the compiled plan.
func (g *Graph) Import(name string, imp Imported) ResourceID {
	id := ResourceID(len(g.resources))
	g.resources = append(g.resources, &resource{
		id:       id,
		name:     name,
		kind:     imp.Kind,
		imported: true,
		handle:   imp.Handle,
	})
	g.byName[name] = id
	return id
}

// AddPass declares a new pass of the given kind, returning a builder
// to accumulate its reads, writes, and execute callback.
func (g *Graph) AddPass(name string, kind PassKind) *PassBuilder {
	p := &pass{index: len(g.passes), name: name, kind: kind}
	g.passes = append(g.passes, p)
	return &PassBuilder{g: g, p: p}
}

// mustResolve panics with [ErrUnknownResource] if id was not minted by
// g, per the domain model's "unknown resource handle is a programming
// error" failure semantics.
func (g *Graph) mustResolve(id ResourceID) *resource {
	if int(id) < 0 || int(id) >= len(g.resources) {
		unknownResource(id)
	}
	return g.resources[id]
}

// ResourceName returns the declared name for id, panicking if unknown.
func (g *Graph) ResourceName(id ResourceID) string {
	return g.mustResolve(id).name
}
