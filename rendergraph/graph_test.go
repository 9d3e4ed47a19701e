package rendergraph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGraph_NewAttachmentAndImportMintDistinctIDs(t *testing.T) {
	g := New()
	a := g.NewAttachment("a", ResourceDesc{Kind: ResourceBuffer})
	b := g.Import("b", Imported{Kind: ResourceSwapchain, Handle: 1})
	require.NotEqual(t, a, b)
	require.Equal(t, "a", g.ResourceName(a))
	require.Equal(t, "b", g.ResourceName(b))
}

func TestGraph_ReadUnknownResourcePanics(t *testing.T) {
	g := New()
	require.Panics(t, func() {
		g.AddPass("p", PassGraphics).Read(ResourceID(99), AccessShaderResource)
	})
}

func TestGraph_PassBuilderChaining(t *testing.T) {
	g := New()
	color := g.NewAttachment("color", ResourceDesc{Kind: ResourceImage})
	depth := g.NewAttachment("depth", ResourceDesc{Kind: ResourceImage})

	g.AddPass("forward", PassGraphics).
		ColorAttachment(color).
		DepthAttachment(depth)

	require.Len(t, g.passes, 1)
	p := g.passes[0]
	require.Equal(t, []ResourceID{color}, p.colorAttachments)
	require.True(t, p.hasDepth)
	require.Equal(t, depth, p.depthAttachment)
}
