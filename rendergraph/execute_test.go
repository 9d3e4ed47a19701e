package rendergraph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExecute_MissingCallbackIsSyncOnly(t *testing.T) {
	g := New()
	r := g.NewAttachment("r", ResourceDesc{Kind: ResourceBuffer})
	target := g.NewAttachment("target", ResourceDesc{Kind: ResourceBuffer})

	g.AddPass("writer", PassTransfer).Write(r, AccessTransfer)
	// no SetOnExecute: a synchronization-only barrier pass
	g.AddPass("barrier-only", PassTransfer).Read(r, AccessTransfer).Write(target, AccessTransfer)

	plan, err := g.Compile(target)
	require.NoError(t, err)

	cb := &recordingCommandBuffer{}
	plan.Execute(cb)

	require.Contains(t, cb.calls, "barrier")
	require.NotContains(t, cb.calls, "begin-rendering")
}

func TestExecute_TimestampsReportPerPassDurations(t *testing.T) {
	g := New()
	r := g.NewAttachment("r", ResourceDesc{Kind: ResourceBuffer})
	g.AddPass("only", PassCompute).Write(r, AccessTransfer).
		SetOnExecute(func(CommandBuffer) {})

	plan, err := g.Compile(r)
	require.NoError(t, err)

	cb := &recordingCommandBuffer{}
	times := plan.Execute(cb, WithTimestampPool(true))
	require.Contains(t, times, "only")
}

func TestExecute_GraphicsPassWithAttachmentsBeginsRendering(t *testing.T) {
	g := New()
	color := g.NewAttachment("color", ResourceDesc{Kind: ResourceImage})
	g.AddPass("forward", PassGraphics).
		ColorAttachment(color).
		SetOnExecute(func(CommandBuffer) {})

	plan, err := g.Compile(color)
	require.NoError(t, err)

	cb := &recordingCommandBuffer{}
	plan.Execute(cb)
	require.Contains(t, cb.calls, "begin-rendering")
	require.Contains(t, cb.calls, "end-rendering")
}
