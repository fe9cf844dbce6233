package metadata

const (
	/** @brief The default texture name. */
	DEFAULT_TEXTURE_NAME string = "default"
	/** @brief The default white texture name. */
	DEFAULT_WHITE_TEXTURE_NAME string = "default_WHITE"
	/** @brief The default black texture name. */
	DEFAULT_BLACK_TEXTURE_NAME string = "default_BLACK"
	/** @brief The default normal texture name. */
	DEFAULT_NORMAL_TEXTURE_NAME string = "default_NORM"
)

/**
 * @brief Represents various types of textures.
 */
type TextureType int

const (
	/** @brief A standard two-dimensional texture. */
	TextureType2d TextureType = iota
	/** @brief A cube texture, used for cubemaps. */
	TextureTypeCube
)

/** @brief Faces of a cube texture, in upload order. */
type CubeFace int

const (
	CubeFacePositiveX CubeFace = iota
	CubeFaceNegativeX
	CubeFacePositiveY
	CubeFaceNegativeY
	CubeFacePositiveZ
	CubeFaceNegativeZ
)

const CubeFaceCount = 6

/** @brief Represents supported texture filtering modes. */
type TextureFilter int

const (
	TextureFilterNearest TextureFilter = iota
	TextureFilterLinear
	TextureFilterNearestMipmapNearest
	TextureFilterLinearMipmapNearest
	TextureFilterNearestMipmapLinear
	TextureFilterLinearMipmapLinear
)

// UsesMipmaps reports whether sampling with f reads mip levels.
func (f TextureFilter) UsesMipmaps() bool {
	return f >= TextureFilterNearestMipmapNearest
}

/** @brief Addressing mode outside [0, 1]. */
type TextureWrap int

const (
	TextureWrapRepeat TextureWrap = iota
	TextureWrapClamp
	TextureWrapMirror
)

/**
 * @brief Sampling state of a texture packed in a bitmask. Each group
 * (min filter, mag filter, one wrap per axis) has exactly one bit set once
 * normalized.
 */
type TextureFlags uint32

const (
	MinFilterNearest TextureFlags = 1 << iota
	MinFilterLinear
	MinFilterNearestMipmapNearest
	MinFilterLinearMipmapNearest
	MinFilterNearestMipmapLinear
	MinFilterLinearMipmapLinear
	MagFilterNearest
	MagFilterLinear
	HorizontalWrapRepeat
	HorizontalWrapClamp
	HorizontalWrapMirror
	VerticalWrapRepeat
	VerticalWrapClamp
	VerticalWrapMirror
	DepthWrapRepeat
	DepthWrapClamp
	DepthWrapMirror
)

const (
	minFilterMask      = MinFilterNearest | MinFilterLinear | MinFilterNearestMipmapNearest | MinFilterLinearMipmapNearest | MinFilterNearestMipmapLinear | MinFilterLinearMipmapLinear
	magFilterMask      = MagFilterNearest | MagFilterLinear
	horizontalWrapMask = HorizontalWrapRepeat | HorizontalWrapClamp | HorizontalWrapMirror
	verticalWrapMask   = VerticalWrapRepeat | VerticalWrapClamp | VerticalWrapMirror
	depthWrapMask      = DepthWrapRepeat | DepthWrapClamp | DepthWrapMirror

	DefaultTextureFlags = MinFilterLinear | MagFilterLinear | HorizontalWrapRepeat | VerticalWrapRepeat | DepthWrapRepeat
)

func (f TextureFlags) Has(bits TextureFlags) bool {
	return f&bits == bits
}

func (f TextureFlags) MinFilter() TextureFilter {
	switch {
	case f.Has(MinFilterNearest):
		return TextureFilterNearest
	case f.Has(MinFilterNearestMipmapNearest):
		return TextureFilterNearestMipmapNearest
	case f.Has(MinFilterLinearMipmapNearest):
		return TextureFilterLinearMipmapNearest
	case f.Has(MinFilterNearestMipmapLinear):
		return TextureFilterNearestMipmapLinear
	case f.Has(MinFilterLinearMipmapLinear):
		return TextureFilterLinearMipmapLinear
	}
	return TextureFilterLinear
}

func (f TextureFlags) MagFilter() TextureFilter {
	if f.Has(MagFilterNearest) {
		return TextureFilterNearest
	}
	return TextureFilterLinear
}

func (f TextureFlags) WrapU() TextureWrap {
	return wrapOf(f, HorizontalWrapClamp, HorizontalWrapMirror)
}

func (f TextureFlags) WrapV() TextureWrap {
	return wrapOf(f, VerticalWrapClamp, VerticalWrapMirror)
}

func (f TextureFlags) WrapW() TextureWrap {
	return wrapOf(f, DepthWrapClamp, DepthWrapMirror)
}

func wrapOf(f, clamp, mirror TextureFlags) TextureWrap {
	switch {
	case f.Has(clamp):
		return TextureWrapClamp
	case f.Has(mirror):
		return TextureWrapMirror
	}
	return TextureWrapRepeat
}

// WithMinFilter replaces the minification filter group.
func (f TextureFlags) WithMinFilter(filter TextureFilter) TextureFlags {
	bit := MinFilterNearest << TextureFlags(filter)
	return f&^minFilterMask | bit&minFilterMask
}

// WithMagFilter replaces the magnification filter group. Mipmap filters are
// not meaningful for magnification and collapse to their base filter.
func (f TextureFlags) WithMagFilter(filter TextureFilter) TextureFlags {
	f &^= magFilterMask
	switch filter {
	case TextureFilterNearest, TextureFilterNearestMipmapNearest, TextureFilterNearestMipmapLinear:
		return f | MagFilterNearest
	}
	return f | MagFilterLinear
}

func (f TextureFlags) WithWrapU(w TextureWrap) TextureFlags {
	return f&^horizontalWrapMask | HorizontalWrapRepeat<<TextureFlags(w)
}

func (f TextureFlags) WithWrapV(w TextureWrap) TextureFlags {
	return f&^verticalWrapMask | VerticalWrapRepeat<<TextureFlags(w)
}

func (f TextureFlags) WithWrapW(w TextureWrap) TextureFlags {
	return f&^depthWrapMask | DepthWrapRepeat<<TextureFlags(w)
}

// WithWrap sets the same addressing mode on every axis.
func (f TextureFlags) WithWrap(w TextureWrap) TextureFlags {
	return f.WithWrapU(w).WithWrapV(w).WithWrapW(w)
}

/** @brief Generates the pixels of the built-in textures. */
type DefaultTexturePixels struct{}

// Checkerboard returns a dimension x dimension RGBA blue/white checkerboard.
func (DefaultTexturePixels) Checkerboard(dimension uint32) []uint8 {
	const channels = 4
	pixels := make([]uint8, dimension*dimension*channels)
	for i := range pixels {
		pixels[i] = 255
	}
	for row := uint32(0); row < dimension; row++ {
		for col := uint32(0); col < dimension; col++ {
			index := ((row * dimension) + col) * channels
			if (row%2 == 0) == (col%2 == 0) {
				pixels[index+0] = 0
				pixels[index+1] = 0
			}
		}
	}
	return pixels
}

// CrossStitch returns a dimension x dimension RGBA tile holding an "X" of
// opaque white thread over a transparent background.
func (DefaultTexturePixels) CrossStitch(dimension uint32) []uint8 {
	const channels = 4
	pixels := make([]uint8, dimension*dimension*channels)
	last := int(dimension) - 1
	for row := 0; row <= last; row++ {
		for col := 0; col <= last; col++ {
			if abs(row-col) > 1 && abs(row+col-last) > 1 {
				continue
			}
			index := (row*int(dimension) + col) * channels
			pixels[index+0] = 255
			pixels[index+1] = 255
			pixels[index+2] = 255
			pixels[index+3] = 255
		}
	}
	return pixels
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Solid returns a dimension x dimension RGBA image filled with one colour.
func (DefaultTexturePixels) Solid(dimension uint32, r, g, b, a uint8) []uint8 {
	pixels := make([]uint8, dimension*dimension*4)
	for i := 0; i < len(pixels); i += 4 {
		pixels[i+0] = r
		pixels[i+1] = g
		pixels[i+2] = b
		pixels[i+3] = a
	}
	return pixels
}
