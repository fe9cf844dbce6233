package systems

import (
	"fmt"

	"github.com/spaghettifunk/solo/engine"
	"github.com/spaghettifunk/solo/engine/assets"
	"github.com/spaghettifunk/solo/engine/core"
	"github.com/spaghettifunk/solo/engine/renderer/metadata"
	"github.com/spaghettifunk/solo/engine/resources"
)

const defaultTextureDimension = 16

type TextureSystemConfig struct {
	/** @brief The maximum number of textures that can be loaded at once. */
	MaxTextureCount uint32
}

type textureReference struct {
	texture        resources.Texture
	referenceCount uint64
	autoRelease    bool
}

// TextureSystem hands out named textures loaded from the asset directory and
// counts who holds them.
type TextureSystem struct {
	config       *TextureSystemConfig
	device       *engine.Device
	assetManager *assets.AssetManager
	defaults     map[string]*resources.Texture2D
	registered   map[string]*textureReference
}

func NewTextureSystem(config *TextureSystemConfig, device *engine.Device, am *assets.AssetManager) (*TextureSystem, error) {
	if config.MaxTextureCount == 0 {
		err := fmt.Errorf("func NewTextureSystem - config.MaxTextureCount must be > 0")
		core.LogError("%s", err.Error())
		return nil, err
	}
	return &TextureSystem{
		config:       config,
		device:       device,
		assetManager: am,
		defaults:     make(map[string]*resources.Texture2D),
		registered:   make(map[string]*textureReference),
	}, nil
}

// Initialize creates the built-in textures.
func (ts *TextureSystem) Initialize() error {
	pixels := metadata.DefaultTexturePixels{}
	builtins := map[string][]uint8{
		metadata.DEFAULT_TEXTURE_NAME:        pixels.Checkerboard(defaultTextureDimension),
		metadata.DEFAULT_WHITE_TEXTURE_NAME:  pixels.Solid(defaultTextureDimension, 255, 255, 255, 255),
		metadata.DEFAULT_BLACK_TEXTURE_NAME:  pixels.Solid(defaultTextureDimension, 0, 0, 0, 255),
		metadata.DEFAULT_NORMAL_TEXTURE_NAME: pixels.Solid(defaultTextureDimension, 128, 128, 255, 255),
	}
	for name, data := range builtins {
		t, err := resources.NewTexture2DWithData(ts.device, metadata.TextureFormatRGBA, data, defaultTextureDimension, defaultTextureDimension)
		if err != nil {
			return err
		}
		t.SetName(name)
		t.SetFiltering(metadata.TextureFilterNearest, metadata.TextureFilterNearest)
		ts.defaults[name] = t
	}
	return nil
}

func (ts *TextureSystem) Shutdown() error {
	for name, ref := range ts.registered {
		ref.texture.Release()
		delete(ts.registered, name)
	}
	for name, t := range ts.defaults {
		t.Release()
		delete(ts.defaults, name)
	}
	return nil
}

func (ts *TextureSystem) isDefault(name string) bool {
	_, ok := ts.defaults[name]
	return ok
}

func (ts *TextureSystem) DefaultTexture() *resources.Texture2D {
	return ts.defaults[metadata.DEFAULT_TEXTURE_NAME]
}

func (ts *TextureSystem) DefaultWhiteTexture() *resources.Texture2D {
	return ts.defaults[metadata.DEFAULT_WHITE_TEXTURE_NAME]
}

func (ts *TextureSystem) DefaultBlackTexture() *resources.Texture2D {
	return ts.defaults[metadata.DEFAULT_BLACK_TEXTURE_NAME]
}

func (ts *TextureSystem) DefaultNormalTexture() *resources.Texture2D {
	return ts.defaults[metadata.DEFAULT_NORMAL_TEXTURE_NAME]
}

// Acquire returns the texture loaded from the image asset name, loading it
// on first use. Default texture names return the built-in textures, which
// are never counted.
func (ts *TextureSystem) Acquire(name string, autoRelease bool) (resources.Texture, error) {
	if t, ok := ts.defaults[name]; ok {
		return t, nil
	}
	if ref, ok := ts.registered[name]; ok {
		ref.referenceCount++
		return ref.texture, nil
	}
	if err := ts.checkCapacity(name); err != nil {
		return nil, err
	}
	t, err := ts.load2D(name)
	if err != nil {
		return nil, err
	}
	ts.registered[name] = &textureReference{texture: t, referenceCount: 1, autoRelease: autoRelease}
	return t, nil
}

/**
 * @brief Acquires a cube texture built from six images named after name, one
 * per face in upload order: name_r, name_l, name_u, name_d, name_f, name_b.
 */
func (ts *TextureSystem) AcquireCube(name string, autoRelease bool) (resources.Texture, error) {
	if ref, ok := ts.registered[name]; ok {
		if ref.texture.Type() != metadata.TextureTypeCube {
			return nil, fmt.Errorf("texture %s is not a cube texture", name)
		}
		ref.referenceCount++
		return ref.texture, nil
	}
	if err := ts.checkCapacity(name); err != nil {
		return nil, err
	}
	t, err := ts.loadCube(name)
	if err != nil {
		return nil, err
	}
	ts.registered[name] = &textureReference{texture: t, referenceCount: 1, autoRelease: autoRelease}
	return t, nil
}

func (ts *TextureSystem) checkCapacity(name string) error {
	if uint32(len(ts.registered)) >= ts.config.MaxTextureCount {
		err := fmt.Errorf("texture system cannot hold %s, limit of %d reached", name, ts.config.MaxTextureCount)
		core.LogError("%s", err.Error())
		return err
	}
	return nil
}

// Release drops one reference. Auto-released textures are destroyed with
// the last one.
func (ts *TextureSystem) Release(name string) {
	if ts.isDefault(name) {
		return
	}
	ref, ok := ts.registered[name]
	if !ok {
		core.LogWarn("tried to release non-existent texture: '%s'", name)
		return
	}
	if ref.referenceCount == 0 {
		core.LogWarn("tried to release texture '%s' with no references", name)
		return
	}
	ref.referenceCount--
	if ref.referenceCount == 0 && ref.autoRelease {
		ref.texture.Release()
		delete(ts.registered, name)
		core.LogDebug("released texture '%s'", name)
	}
}

// ReferenceCount reports how many holders name has, or false when it is not
// loaded.
func (ts *TextureSystem) ReferenceCount(name string) (uint64, bool) {
	ref, ok := ts.registered[name]
	if !ok {
		return 0, false
	}
	return ref.referenceCount, true
}

// Reload re-reads the image behind a loaded 2D texture, keeping its handle.
func (ts *TextureSystem) Reload(name string) error {
	ref, ok := ts.registered[name]
	if !ok {
		return nil
	}
	t, ok := ref.texture.(*resources.Texture2D)
	if !ok {
		return nil
	}
	img, err := ts.loadImage(name)
	if err != nil {
		return err
	}
	if err := t.Reallocate(img.Format, img.Pixels, img.Width, img.Height); err != nil {
		return err
	}
	core.LogInfo("reloaded texture '%s'", name)
	return t.GenerateMipmaps()
}

func (ts *TextureSystem) loadImage(name string) (*metadata.ImageResourceData, error) {
	res, err := ts.assetManager.LoadAsset(name, metadata.ResourceTypeImage, &metadata.ImageResourceParams{FlipY: true})
	if err != nil {
		return nil, err
	}
	img, ok := res.Data.(*metadata.ImageResourceData)
	if !ok {
		return nil, fmt.Errorf("asset %s is not an image", name)
	}
	return img, nil
}

func (ts *TextureSystem) load2D(name string) (*resources.Texture2D, error) {
	img, err := ts.loadImage(name)
	if err != nil {
		core.LogError("failed to load texture '%s': %s", name, err)
		return nil, err
	}
	t, err := resources.NewTexture2DWithData(ts.device, img.Format, img.Pixels, img.Width, img.Height)
	if err != nil {
		return nil, err
	}
	t.SetName(name)
	if err := t.GenerateMipmaps(); err != nil {
		t.Destroy()
		return nil, err
	}
	t.SetFiltering(metadata.TextureFilterLinearMipmapLinear, metadata.TextureFilterLinear)
	core.LogDebug("loaded texture '%s' (%dx%d)", name, img.Width, img.Height)
	return t, nil
}

var cubeFaceSuffixes = [metadata.CubeFaceCount]string{"_r", "_l", "_u", "_d", "_f", "_b"}

func (ts *TextureSystem) loadCube(name string) (*resources.CubeTexture, error) {
	var faces [metadata.CubeFaceCount]*metadata.ImageResourceData
	for i, suffix := range cubeFaceSuffixes {
		img, err := ts.loadImage(name + suffix)
		if err != nil {
			core.LogError("failed to load face %d of cube texture '%s': %s", i, name, err)
			return nil, err
		}
		if img.Width != img.Height || (i > 0 && img.Width != faces[0].Width) {
			return nil, fmt.Errorf("cube texture %s: faces must be square and equally sized", name)
		}
		faces[i] = img
	}
	t, err := resources.NewCubeTexture(ts.device, faces[0].Width, faces[0].Format)
	if err != nil {
		return nil, err
	}
	t.SetName(name)
	for i, img := range faces {
		if err := t.SetFaceData(metadata.CubeFace(i), img.Pixels); err != nil {
			t.Destroy()
			return nil, err
		}
	}
	return t, nil
}
