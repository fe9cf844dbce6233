package metadata

import (
	"testing"

	"github.com/spaghettifunk/solo/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVertexBufferLayoutAcceptsAnySlotOrder(t *testing.T) {
	l, err := NewVertexBufferLayout(
		VertexAttribute{Semantic: VertexAttributeTexCoord0, Slot: 1, Components: 2},
		VertexAttribute{Semantic: VertexAttributePosition, Slot: 0, Components: 3},
	)
	require.NoError(t, err)

	assert.Equal(t, 2, l.AttributeCount())
	assert.Equal(t, uint32(0), l.Offset(0))
	assert.Equal(t, uint32(8), l.Offset(1))
	assert.Equal(t, uint32(20), l.Stride())
	assert.Equal(t, uint32(5), l.FloatsPerVertex())
}

func TestVertexBufferLayoutRejectsBadSlots(t *testing.T) {
	cases := map[string][]VertexAttribute{
		"gap": {
			{Slot: 0, Components: 3},
			{Slot: 2, Components: 2},
		},
		"duplicate": {
			{Slot: 0, Components: 3},
			{Slot: 0, Components: 2},
		},
		"no zero": {
			{Slot: 1, Components: 3},
		},
		"too many components": {
			{Slot: 0, Components: 5},
		},
		"empty": nil,
	}
	for name, attrs := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewVertexBufferLayout(attrs...)
			assert.ErrorIs(t, err, core.ErrInvalidLayout)
		})
	}
}

func TestZeroLayoutFailsValidate(t *testing.T) {
	var l VertexBufferLayout
	assert.ErrorIs(t, l.Validate(), core.ErrInvalidLayout)
	assert.NoError(t, PositionTexCoordLayout.Validate())
}

func TestMustVertexBufferLayoutPanics(t *testing.T) {
	assert.Panics(t, func() {
		MustVertexBufferLayout(VertexAttribute{Slot: 3, Components: 1})
	})
}

func TestGeometryMinVertexCount(t *testing.T) {
	assert.Zero(t, Geometry{}.MinVertexCount())
	g := Geometry{VertexBuffers: []VertexBufferBinding{{VertexCount: 24}, {VertexCount: 12}, {VertexCount: 30}}}
	assert.Equal(t, uint32(12), g.MinVertexCount())
}
