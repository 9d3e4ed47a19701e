package rendergraph

// CommandBuffer is the entire backend surface the graph assumes, per
// the domain model's "render graph to backend" interface: begin/end,
// pipeline barriers, begin/end rendering, bind/draw/dispatch/copy, and
// timestamp queries. Concrete graphics APIs implement this directly or
// via a thin adapter; the graph never reaches past it.
type CommandBuffer interface {
	Begin()
	End()

	PipelineBarrier(b PipelineBarrier)

	BeginRendering(colorAttachments []ResourceID, depthAttachment ResourceID)
	EndRendering()

	BindPipeline(pipeline any)
	BindDescriptors(set any)
	BindVertexBuffers(buffers []any)
	BindIndexBuffer(buffer any)

	Draw(vertexCount, instanceCount int)
	Dispatch(groupsX, groupsY, groupsZ int)
	Copy(src, dst any)

	WriteTimestamp(query int)
}

// BufferBarrier describes a synchronization point for a Buffer-kind
// resource between two accesses.
type BufferBarrier struct {
	Resource   ResourceID
	SrcAccess  AccessMask
	DstAccess  AccessMask
}

// ImageBarrier describes a synchronization point for an Image-kind
// resource, including the layout transition inferred from declared
// usage.
type ImageBarrier struct {
	Resource   ResourceID
	SrcAccess  AccessMask
	DstAccess  AccessMask
	OldLayout  ImageLayout
	NewLayout  ImageLayout
}

// PipelineBarrier collects every buffer/image barrier emitted ahead of
// one pass, per the compilation algorithm's step 4.
type PipelineBarrier struct {
	BufferBarriers []BufferBarrier
	ImageBarriers  []ImageBarrier
}

func (b PipelineBarrier) empty() bool {
	return len(b.BufferBarriers) == 0 && len(b.ImageBarriers) == 0
}

// ImageLayout models the subset of layout states the graph infers from
// declared accesses; backends map these onto their own enumerations.
type ImageLayout uint8

const (
	LayoutUndefined ImageLayout = iota
	LayoutColorAttachment
	LayoutDepthStencilAttachment
	LayoutShaderReadOnly
	LayoutTransferSrc
	LayoutTransferDst
	LayoutPresent
)

// layoutFor infers the image layout implied by an access category.
func layoutFor(a AccessMask) ImageLayout {
	switch {
	case a&AccessColorAttachment != 0:
		return LayoutColorAttachment
	case a&AccessDepthStencilAttachment != 0:
		return LayoutDepthStencilAttachment
	case a&AccessShaderResource != 0:
		return LayoutShaderReadOnly
	case a&AccessTransfer != 0 && a.isWrite():
		return LayoutTransferDst
	case a&AccessTransfer != 0:
		return LayoutTransferSrc
	case a&AccessPresent != 0:
		return LayoutPresent
	default:
		return LayoutUndefined
	}
}
