package metadata

import (
	"fmt"
	"sort"

	"github.com/spaghettifunk/solo/engine/core"
)

/** @brief Meaning of a vertex attribute. Informational for backends that bind by location. */
type VertexAttributeSemantic int

const (
	VertexAttributePosition VertexAttributeSemantic = iota
	VertexAttributeNormal
	VertexAttributeTexCoord0
	VertexAttributeTexCoord1
	VertexAttributeTangent
	VertexAttributeBinormal
	VertexAttributeColor
	VertexAttributeCustom
)

/** @brief One attribute of a vertex: semantic, shader location and float component count. */
type VertexAttribute struct {
	Semantic   VertexAttributeSemantic
	Slot       uint32
	Components uint32
}

// VertexBufferLayout describes the interleaved float32 attributes of one
// vertex buffer. It is immutable once built by NewVertexBufferLayout.
type VertexBufferLayout struct {
	attributes []VertexAttribute
	offsets    []uint32
	stride     uint32
}

// NewVertexBufferLayout validates that the attribute slots form exactly the
// set 0..N-1, in any order, and that every attribute has 1 to 4 components.
func NewVertexBufferLayout(attributes ...VertexAttribute) (VertexBufferLayout, error) {
	if err := validateSlots(attributes); err != nil {
		return VertexBufferLayout{}, err
	}
	l := VertexBufferLayout{
		attributes: append([]VertexAttribute(nil), attributes...),
		offsets:    make([]uint32, len(attributes)),
	}
	for i, a := range attributes {
		l.offsets[i] = l.stride
		l.stride += a.Components * 4
	}
	return l, nil
}

// MustVertexBufferLayout is NewVertexBufferLayout for layouts known at compile time.
func MustVertexBufferLayout(attributes ...VertexAttribute) VertexBufferLayout {
	l, err := NewVertexBufferLayout(attributes...)
	if err != nil {
		panic(err)
	}
	return l
}

func validateSlots(attributes []VertexAttribute) error {
	slots := make([]uint32, len(attributes))
	for i, a := range attributes {
		slots[i] = a.Slot
	}
	for _, a := range attributes {
		if a.Components == 0 || a.Components > 4 {
			return &core.InvalidLayoutError{Slots: slots, Reason: fmt.Sprintf("attribute at slot %d has %d components", a.Slot, a.Components)}
		}
	}
	if len(attributes) == 0 {
		return &core.InvalidLayoutError{Reason: "no attributes"}
	}
	sorted := append([]uint32(nil), slots...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	for i, s := range sorted {
		if s != uint32(i) {
			return &core.InvalidLayoutError{Slots: slots, Reason: fmt.Sprintf("slot %d missing or duplicated", i)}
		}
	}
	return nil
}

// Validate re-checks the slot invariant, catching zero-value layouts.
func (l VertexBufferLayout) Validate() error {
	return validateSlots(l.attributes)
}

func (l VertexBufferLayout) Attributes() []VertexAttribute {
	return append([]VertexAttribute(nil), l.attributes...)
}

func (l VertexBufferLayout) AttributeCount() int {
	return len(l.attributes)
}

func (l VertexBufferLayout) Attribute(i int) VertexAttribute {
	return l.attributes[i]
}

// Offset returns the byte offset of attribute i inside a vertex.
func (l VertexBufferLayout) Offset(i int) uint32 {
	return l.offsets[i]
}

// Stride is the size of one vertex in bytes.
func (l VertexBufferLayout) Stride() uint32 {
	return l.stride
}

// FloatsPerVertex is the stride expressed in float32 components.
func (l VertexBufferLayout) FloatsPerVertex() uint32 {
	return l.stride / 4
}

// Key identifies layouts with the same attribute arrangement.
func (l VertexBufferLayout) Key() string {
	return fmt.Sprint(l.attributes)
}

var (
	// PositionLayout is a bare 3D position.
	PositionLayout = MustVertexBufferLayout(
		VertexAttribute{Semantic: VertexAttributePosition, Slot: 0, Components: 3},
	)
	// PositionTexCoordLayout matches the quad and cube prefabs.
	PositionTexCoordLayout = MustVertexBufferLayout(
		VertexAttribute{Semantic: VertexAttributePosition, Slot: 0, Components: 3},
		VertexAttribute{Semantic: VertexAttributeTexCoord0, Slot: 1, Components: 2},
	)
)
