package metadata

/** @brief How vertices are assembled into primitives. */
type PrimitiveType int

const (
	PrimitiveTriangles PrimitiveType = iota
	PrimitiveTriangleStrip
	PrimitiveLines
	PrimitivePoints
)

/** @brief A vertex buffer as the backend sees it during a draw. */
type VertexBufferBinding struct {
	Handle      BufferHandle
	Layout      VertexBufferLayout
	VertexCount uint32
}

/** @brief An index buffer (16-bit indices) of one mesh part. */
type IndexBufferBinding struct {
	Handle     BufferHandle
	IndexCount uint32
}

/**
 * @brief Flattened draw description of a mesh. Resource objects build it and
 * the Renderer forwards it to the backend.
 */
type Geometry struct {
	VertexBuffers []VertexBufferBinding
	Parts         []IndexBufferBinding
	Primitive     PrimitiveType
}

// MinVertexCount is the number of vertices every vertex buffer can supply,
// which bounds a non-indexed draw.
func (g Geometry) MinVertexCount() uint32 {
	if len(g.VertexBuffers) == 0 {
		return 0
	}
	min := g.VertexBuffers[0].VertexCount
	for _, vb := range g.VertexBuffers[1:] {
		if vb.VertexCount < min {
			min = vb.VertexCount
		}
	}
	return min
}
