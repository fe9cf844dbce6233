package loaders

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/spaghettifunk/solo/engine/core"
	"github.com/spaghettifunk/solo/engine/renderer/metadata"
)

type ImageLoader struct{}

// Load decodes any registered image format into tightly packed RGBA rows,
// bottom row first when FlipY is set.
func (il *ImageLoader) Load(path string, params interface{}) (*metadata.Resource, error) {
	flipY := false
	if p, ok := params.(*metadata.ImageResourceParams); ok && p != nil {
		flipY = p.FlipY
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}

	core.LogDebug("decoded %s image %s", format, path)
	data := ToRGBA(img, flipY)
	return &metadata.Resource{
		Name:     trimExt(filepath.Base(path)),
		FullPath: path,
		Type:     metadata.ResourceTypeImage,
		DataSize: uint64(len(data.Pixels)),
		Data:     data,
	}, nil
}

// ToRGBA converts img to an RGBA pixel buffer.
func ToRGBA(img image.Image, flipY bool) *metadata.ImageResourceData {
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	width, height := bounds.Dx(), bounds.Dy()
	pixels := make([]uint8, width*height*4)
	row := width * 4
	for y := 0; y < height; y++ {
		src := rgba.Pix[y*rgba.Stride : y*rgba.Stride+row]
		dst := y
		if flipY {
			dst = height - 1 - y
		}
		copy(pixels[dst*row:(dst+1)*row], src)
	}
	return &metadata.ImageResourceData{
		Format: metadata.TextureFormatRGBA,
		Width:  uint32(width),
		Height: uint32(height),
		Pixels: pixels,
	}
}

func (il *ImageLoader) Unload(r *metadata.Resource) error {
	r.Data = nil
	return nil
}
