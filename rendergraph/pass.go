package rendergraph

// PassKind discriminates the tagged variants of a pass declaration,
// flattening the original Graphics/Compute/Transfer node hierarchy
// into one struct with a kind tag.
type PassKind uint8

const (
	PassGraphics PassKind = iota
	PassCompute
	PassTransfer
)

func (k PassKind) String() string {
	switch k {
	case PassGraphics:
		return "Graphics"
	case PassCompute:
		return "Compute"
	case PassTransfer:
		return "Transfer"
	default:
		return "Unknown"
	}
}

// ExecuteFunc is invoked between a pass's bound barriers and its
// begin/end rendering (for Graphics passes). A nil ExecuteFunc makes
// the pass synchronization-only: barriers are still emitted and bound
// and no callback runs (a Graphics pass with attachments still begins
// and ends rendering), per the domain model's "missing execute
// callback is allowed" failure semantics.
type ExecuteFunc func(cb CommandBuffer)

// resourceUse records one pass's declared access to one resource, in
// declaration order.
type resourceUse struct {
	resource ResourceID
	access   AccessMask
}

// pass is the graph's internal record for one declared pass.
type pass struct {
	index             int
	name              string
	kind              PassKind
	reads             []resourceUse
	writes            []resourceUse
	colorAttachments  []ResourceID
	depthAttachment   ResourceID
	hasDepth          bool
	execute           ExecuteFunc
}

// PassBuilder accumulates one pass's reads, writes, and execute
// callback, returned by [Graph.AddPass].
type PassBuilder struct {
	g *Graph
	p *pass
}

// Read declares that p reads resource id with the given access
// category (e.g. AccessShaderResource). Panics if id is unknown.
func (b *PassBuilder) Read(id ResourceID, access AccessMask) *PassBuilder {
	b.g.mustResolve(id)
	b.p.reads = append(b.p.reads, resourceUse{resource: id, access: access | AccessRead})
	return b
}

// Write declares that p writes resource id with the given access
// category. Panics if id is unknown.
func (b *PassBuilder) Write(id ResourceID, access AccessMask) *PassBuilder {
	b.g.mustResolve(id)
	b.p.writes = append(b.p.writes, resourceUse{resource: id, access: access | AccessWrite})
	return b
}

// ColorAttachment declares id as one of a Graphics pass's color
// attachments, implying a write with AccessColorAttachment.
func (b *PassBuilder) ColorAttachment(id ResourceID) *PassBuilder {
	b.Write(id, AccessColorAttachment)
	b.p.colorAttachments = append(b.p.colorAttachments, id)
	return b
}

// DepthAttachment declares id as a Graphics pass's depth/stencil
// attachment, implying a write with AccessDepthStencilAttachment.
func (b *PassBuilder) DepthAttachment(id ResourceID) *PassBuilder {
	b.Write(id, AccessDepthStencilAttachment)
	b.p.depthAttachment = id
	b.p.hasDepth = true
	return b
}

// SetOnExecute attaches the callback invoked when the plan reaches
// this pass.
func (b *PassBuilder) SetOnExecute(fn ExecuteFunc) *PassBuilder {
	b.p.execute = fn
	return b
}
