package metadata

import (
	"testing"

	"github.com/spaghettifunk/solo/engine/core"
	"github.com/stretchr/testify/assert"
)

func TestDefaultTextureFlags(t *testing.T) {
	f := DefaultTextureFlags
	assert.Equal(t, TextureFilterLinear, f.MinFilter())
	assert.Equal(t, TextureFilterLinear, f.MagFilter())
	assert.Equal(t, TextureWrapRepeat, f.WrapU())
	assert.Equal(t, TextureWrapRepeat, f.WrapV())
	assert.Equal(t, TextureWrapRepeat, f.WrapW())
}

func TestTextureFlagsReplaceOneGroup(t *testing.T) {
	f := DefaultTextureFlags.
		WithMinFilter(TextureFilterNearestMipmapLinear).
		WithWrapU(TextureWrapClamp)

	assert.Equal(t, TextureFilterNearestMipmapLinear, f.MinFilter())
	assert.True(t, f.MinFilter().UsesMipmaps())
	assert.Equal(t, TextureWrapClamp, f.WrapU())
	assert.Equal(t, TextureWrapRepeat, f.WrapV())
	assert.False(t, f.Has(MinFilterLinear))
	assert.False(t, f.Has(HorizontalWrapRepeat))

	f = f.WithMinFilter(TextureFilterNearest)
	assert.Equal(t, TextureFilterNearest, f.MinFilter())
	assert.False(t, f.Has(MinFilterNearestMipmapLinear))
}

func TestMagFilterCollapsesMipmapModes(t *testing.T) {
	assert.Equal(t, TextureFilterLinear, DefaultTextureFlags.WithMagFilter(TextureFilterLinearMipmapLinear).MagFilter())
	assert.Equal(t, TextureFilterNearest, DefaultTextureFlags.WithMagFilter(TextureFilterNearestMipmapNearest).MagFilter())
}

func TestWithWrapSetsEveryAxis(t *testing.T) {
	f := DefaultTextureFlags.WithWrap(TextureWrapMirror)
	assert.Equal(t, TextureWrapMirror, f.WrapU())
	assert.Equal(t, TextureWrapMirror, f.WrapV())
	assert.Equal(t, TextureWrapMirror, f.WrapW())
}

func TestCheckTextureData(t *testing.T) {
	assert.NoError(t, CheckTextureData(TextureFormatRGBA, nil, 256, 256))
	assert.NoError(t, CheckTextureData(TextureFormatRGB, make([]byte, 2*2*3), 2, 2))
	assert.ErrorIs(t, CheckTextureData(TextureFormatRGBA, make([]byte, 15), 2, 2), core.ErrTextureDataSize)
	assert.ErrorIs(t, CheckTextureData(TextureFormat(42), nil, 2, 2), core.ErrUnsupportedFormat)
	assert.ErrorIs(t, CheckTextureData(TextureFormat(0), nil, 2, 2), core.ErrUnsupportedFormat)
}

func TestCheckerboard(t *testing.T) {
	pixels := DefaultTexturePixels{}.Checkerboard(4)
	assert.Len(t, pixels, 4*4*4)
	// (0,0) is blue, (0,1) white.
	assert.Equal(t, []uint8{0, 0, 255, 255}, pixels[0:4])
	assert.Equal(t, []uint8{255, 255, 255, 255}, pixels[4:8])
}

func TestCrossStitch(t *testing.T) {
	pixels := DefaultTexturePixels{}.CrossStitch(8)
	assert.Len(t, pixels, 8*8*4)
	at := func(row, col int) []uint8 {
		i := (row*8 + col) * 4
		return pixels[i : i+4]
	}
	assert.Equal(t, []uint8{255, 255, 255, 255}, at(0, 0))
	assert.Equal(t, []uint8{255, 255, 255, 255}, at(0, 7))
	assert.Equal(t, []uint8{255, 255, 255, 255}, at(4, 3))
	assert.Equal(t, []uint8{0, 0, 0, 0}, at(0, 4))
	assert.Equal(t, []uint8{0, 0, 0, 0}, at(7, 3))
}
