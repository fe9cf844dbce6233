package resources

import (
	"fmt"

	"github.com/spaghettifunk/solo/engine"
	"github.com/spaghettifunk/solo/engine/core"
	"github.com/spaghettifunk/solo/engine/renderer/metadata"
)

type vertexBuffer struct {
	handle      metadata.BufferHandle
	layout      metadata.VertexBufferLayout
	vertexCount uint32
	dynamic     bool
}

type meshPart struct {
	handle     metadata.BufferHandle
	indexCount uint32
}

// Mesh is an ordered list of vertex buffers plus optional index parts. A
// mesh without parts draws all its vertices.
type Mesh struct {
	resource
	vertexBuffers []vertexBuffer
	parts         []*meshPart
	primitive     metadata.PrimitiveType
}

func NewMesh(device *engine.Device) (*Mesh, error) {
	if device == nil {
		return nil, errNilDevice
	}
	m := &Mesh{primitive: metadata.PrimitiveTriangles}
	if err := m.track(device, "mesh", m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Mesh) PrimitiveType() metadata.PrimitiveType {
	return m.primitive
}

func (m *Mesh) SetPrimitiveType(primitive metadata.PrimitiveType) {
	m.primitive = primitive
}

// AddVertexBuffer uploads vertexCount interleaved vertices laid out by layout
// and returns the buffer's index in the mesh.
func (m *Mesh) AddVertexBuffer(layout metadata.VertexBufferLayout, data []float32, vertexCount uint32) (int, error) {
	return m.addVertexBuffer(layout, data, vertexCount, false)
}

// AddDynamicVertexBuffer is AddVertexBuffer for data that will be rewritten
// with UpdateDynamicVertexBuffer.
func (m *Mesh) AddDynamicVertexBuffer(layout metadata.VertexBufferLayout, data []float32, vertexCount uint32) (int, error) {
	return m.addVertexBuffer(layout, data, vertexCount, true)
}

func (m *Mesh) addVertexBuffer(layout metadata.VertexBufferLayout, data []float32, vertexCount uint32, dynamic bool) (int, error) {
	if err := layout.Validate(); err != nil {
		core.LogError("%s: %s", m.name, err)
		return -1, err
	}
	var (
		handle metadata.BufferHandle
		err    error
	)
	if dynamic {
		handle, err = m.renderer().CreateDynamicVertexBuffer(layout, data, vertexCount)
	} else {
		handle, err = m.renderer().CreateVertexBuffer(layout, data, vertexCount)
	}
	if err != nil {
		return -1, err
	}
	m.vertexBuffers = append(m.vertexBuffers, vertexBuffer{
		handle:      handle,
		layout:      layout,
		vertexCount: vertexCount,
		dynamic:     dynamic,
	})
	return len(m.vertexBuffers) - 1, nil
}

// UpdateDynamicVertexBuffer overwrites vertexCount vertices of buffer index
// starting at vertexOffset. The range is the caller's responsibility.
func (m *Mesh) UpdateDynamicVertexBuffer(index int, vertexOffset uint32, data []float32, vertexCount uint32) error {
	if index < 0 || index >= len(m.vertexBuffers) {
		return fmt.Errorf("%w: vertex buffer %d of %s", core.ErrNoSuchBuffer, index, m.name)
	}
	vb := m.vertexBuffers[index]
	if !vb.dynamic {
		return fmt.Errorf("%w: vertex buffer %d of %s", core.ErrNotDynamic, index, m.name)
	}
	m.renderer().UpdateDynamicVertexBuffer(vb.handle, vb.layout, vertexOffset, data, vertexCount)
	return nil
}

func (m *Mesh) VertexBufferCount() int {
	return len(m.vertexBuffers)
}

func (m *Mesh) VertexBufferHandle(index int) metadata.BufferHandle {
	return m.vertexBuffers[index].handle
}

// AddPart uploads an index list and returns the part's index.
func (m *Mesh) AddPart(indices []uint16) (int, error) {
	handle, err := m.renderer().CreateIndexBuffer(indices)
	if err != nil {
		return -1, err
	}
	m.parts = append(m.parts, &meshPart{handle: handle, indexCount: uint32(len(indices))})
	return len(m.parts) - 1, nil
}

// RemovePart destroys a part; later parts shift down by one.
func (m *Mesh) RemovePart(index int) error {
	if index < 0 || index >= len(m.parts) {
		return fmt.Errorf("%w: part %d of %s", core.ErrNoSuchBuffer, index, m.name)
	}
	m.renderer().DestroyIndexBuffer(m.parts[index].handle)
	m.parts = append(m.parts[:index], m.parts[index+1:]...)
	return nil
}

func (m *Mesh) PartCount() int {
	return len(m.parts)
}

// Geometry is the flattened description the renderer draws from.
func (m *Mesh) Geometry() metadata.Geometry {
	g := metadata.Geometry{
		VertexBuffers: make([]metadata.VertexBufferBinding, len(m.vertexBuffers)),
		Parts:         make([]metadata.IndexBufferBinding, len(m.parts)),
		Primitive:     m.primitive,
	}
	for i, vb := range m.vertexBuffers {
		g.VertexBuffers[i] = metadata.VertexBufferBinding{Handle: vb.handle, Layout: vb.layout, VertexCount: vb.vertexCount}
	}
	for i, p := range m.parts {
		g.Parts[i] = metadata.IndexBufferBinding{Handle: p.handle, IndexCount: p.indexCount}
	}
	return g
}

// Draw renders every part with effect, or all vertices when there are none.
// The effect's program must already be active with its uniforms applied.
func (m *Mesh) Draw(effect *Effect) {
	m.renderer().Draw(m.Geometry(), effect.Handle())
}

func (m *Mesh) DrawPart(part int, effect *Effect) error {
	if part < 0 || part >= len(m.parts) {
		return fmt.Errorf("%w: part %d of %s", core.ErrNoSuchBuffer, part, m.name)
	}
	m.renderer().DrawPart(m.Geometry(), part, effect.Handle())
	return nil
}

func (m *Mesh) Release() bool {
	return m.release(m.Destroy)
}

func (m *Mesh) Destroy() {
	if !m.finish() {
		return
	}
	r := m.renderer()
	for _, p := range m.parts {
		r.DestroyIndexBuffer(p.handle)
	}
	for _, vb := range m.vertexBuffers {
		r.DestroyVertexBuffer(vb.handle)
	}
	m.parts = nil
	m.vertexBuffers = nil
}

// AddVertexBufferFromArray takes the flat number array a script hands over.
func (m *Mesh) AddVertexBufferFromArray(layout metadata.VertexBufferLayout, data []float32, vertexCount uint32) (int, error) {
	return m.AddVertexBuffer(layout, data, vertexCount)
}

func (m *Mesh) AddDynamicVertexBufferFromArray(layout metadata.VertexBufferLayout, data []float32, vertexCount uint32) (int, error) {
	return m.AddDynamicVertexBuffer(layout, data, vertexCount)
}

func (m *Mesh) UpdateDynamicVertexBufferFromArray(index int, vertexOffset uint32, data []float32, vertexCount uint32) error {
	return m.UpdateDynamicVertexBuffer(index, vertexOffset, data, vertexCount)
}

// AddPartFromArray converts script numbers to 16-bit indices.
func (m *Mesh) AddPartFromArray(indices []float64) (int, error) {
	converted := make([]uint16, len(indices))
	for i, v := range indices {
		if v < 0 || v > 0xFFFF || v != float64(uint16(v)) {
			return -1, fmt.Errorf("index %d of %s is not a 16-bit index: %v", i, m.name, v)
		}
		converted[i] = uint16(v)
	}
	return m.AddPart(converted)
}

// NewQuadMesh builds a unit quad in [-1, 1] on the XY plane with texture
// coordinates, wound counter-clockwise, drawn as a triangle strip.
func NewQuadMesh(device *engine.Device) (*Mesh, error) {
	vertices := []float32{
		-1, -1, 0, 0, 0,
		1, -1, 0, 1, 0,
		-1, 1, 0, 0, 1,
		1, 1, 0, 1, 1,
	}
	m, err := NewMesh(device)
	if err != nil {
		return nil, err
	}
	if _, err := m.AddVertexBuffer(metadata.PositionTexCoordLayout, vertices, 4); err != nil {
		m.Destroy()
		return nil, err
	}
	m.SetPrimitiveType(metadata.PrimitiveTriangleStrip)
	return m, nil
}

// NewCubeMesh builds a unit cube in [-1, 1]^3 with per-face texture
// coordinates and counter-clockwise outward faces.
func NewCubeMesh(device *engine.Device) (*Mesh, error) {
	vertices := []float32{
		// front
		-1, -1, 1, 0, 0, 1, -1, 1, 1, 0, 1, 1, 1, 1, 1, -1, 1, 1, 0, 1,
		// back
		1, -1, -1, 0, 0, -1, -1, -1, 1, 0, -1, 1, -1, 1, 1, 1, 1, -1, 0, 1,
		// left
		-1, -1, -1, 0, 0, -1, -1, 1, 1, 0, -1, 1, 1, 1, 1, -1, 1, -1, 0, 1,
		// right
		1, -1, 1, 0, 0, 1, -1, -1, 1, 0, 1, 1, -1, 1, 1, 1, 1, 1, 0, 1,
		// top
		-1, 1, 1, 0, 0, 1, 1, 1, 1, 0, 1, 1, -1, 1, 1, -1, 1, -1, 0, 1,
		// bottom
		-1, -1, -1, 0, 0, 1, -1, -1, 1, 0, 1, -1, 1, 1, 1, -1, -1, 1, 0, 1,
	}
	indices := make([]uint16, 0, 36)
	for face := uint16(0); face < 6; face++ {
		base := face * 4
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	m, err := NewMesh(device)
	if err != nil {
		return nil, err
	}
	if _, err := m.AddVertexBuffer(metadata.PositionTexCoordLayout, vertices, 24); err != nil {
		m.Destroy()
		return nil, err
	}
	if _, err := m.AddPart(indices); err != nil {
		m.Destroy()
		return nil, err
	}
	return m, nil
}
