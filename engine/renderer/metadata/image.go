package metadata

import (
	"fmt"

	"github.com/spaghettifunk/solo/engine/core"
)

/** @brief Pixel formats accepted by texture storage. */
type TextureFormat int

const (
	/** @brief One 8-bit channel. */
	TextureFormatRed TextureFormat = iota + 1
	/** @brief Three 8-bit channels. */
	TextureFormatRGB
	/** @brief Four 8-bit channels. */
	TextureFormatRGBA
	/** @brief Four 32-bit float channels. */
	TextureFormatRGBAFloat
	/** @brief 32-bit float depth, only usable as a frame buffer attachment. */
	TextureFormatDepth
)

func (f TextureFormat) String() string {
	switch f {
	case TextureFormatRed:
		return "red"
	case TextureFormatRGB:
		return "rgb"
	case TextureFormatRGBA:
		return "rgba"
	case TextureFormatRGBAFloat:
		return "rgba32f"
	case TextureFormatDepth:
		return "depth"
	}
	return fmt.Sprintf("TextureFormat(%d)", int(f))
}

// Validate rejects format values outside the enumeration.
func (f TextureFormat) Validate() error {
	if f < TextureFormatRed || f > TextureFormatDepth {
		return &core.UnsupportedFormatError{Format: f.String()}
	}
	return nil
}

func (f TextureFormat) BytesPerPixel() uint32 {
	switch f {
	case TextureFormatRed:
		return 1
	case TextureFormatRGB:
		return 3
	case TextureFormatRGBA, TextureFormatDepth:
		return 4
	case TextureFormatRGBAFloat:
		return 16
	}
	return 0
}

func (f TextureFormat) IsDepth() bool {
	return f == TextureFormatDepth
}

// CheckTextureData validates that data is either empty or exactly covers a
// width x height image in format.
func CheckTextureData(format TextureFormat, data []byte, width, height uint32) error {
	if err := format.Validate(); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	if want := int(width * height * format.BytesPerPixel()); len(data) != want {
		return fmt.Errorf("%w: got %d bytes, want %d for %dx%d %s", core.ErrTextureDataSize, len(data), want, width, height, format)
	}
	return nil
}

/** @brief A structure to hold decoded image data. */
type ImageResourceData struct {
	/** @brief The pixel format of Pixels. */
	Format TextureFormat
	/** @brief The width of the image. */
	Width uint32
	/** @brief The height of the image. */
	Height uint32
	/** @brief The pixel data of the image. */
	Pixels []uint8
}

/** @brief Parameters used when loading an image. */
type ImageResourceParams struct {
	/** @brief Indicates if the image should be flipped on the y-axis when loaded. */
	FlipY bool
}
