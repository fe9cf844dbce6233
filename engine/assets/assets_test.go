package assets

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spaghettifunk/solo/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, data string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	img.Set(1, 0, color.NRGBA{G: 255, A: 255})
	img.Set(0, 1, color.NRGBA{B: 255, A: 255})
	img.Set(1, 1, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func newManager(t *testing.T, root string) *AssetManager {
	t.Helper()
	am, err := NewAssetManager(root)
	require.NoError(t, err)
	require.NoError(t, am.Initialize())
	t.Cleanup(func() { _ = am.Close() })
	return am
}

func TestDetermineAssetType(t *testing.T) {
	cases := map[string]metadata.ResourceType{
		"textures/wall.png":            metadata.ResourceTypeImage,
		"textures/wall.JPG":            metadata.ResourceTypeImage,
		"shaders/blur.frag.glsl":       metadata.ResourceTypeShader,
		"shaders/blur.frag.wgsl":       metadata.ResourceTypeShader,
		"materials/wall.material.toml": metadata.ResourceTypeMaterial,
		"solo.toml":                    metadata.ResourceTypeText,
		"model.fbx":                    metadata.ResourceTypeUnknown,
	}
	for path, want := range cases {
		assert.Equal(t, want, DetermineAssetType(path), path)
	}
}

func TestAssetManagerIndexesAndLoads(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "textures", "tiles.png"))
	writeFile(t, filepath.Join(root, "shaders", "plain.vert.glsl"), "#version 330 core\nvoid main() {}\n")
	writeFile(t, filepath.Join(root, "ignored.bin"), "x")

	am := newManager(t, root)
	assert.Equal(t, 2, am.Len())

	res, err := am.LoadAsset("tiles", metadata.ResourceTypeImage, &metadata.ImageResourceParams{})
	require.NoError(t, err)
	img := res.Data.(*metadata.ImageResourceData)
	assert.Equal(t, metadata.TextureFormatRGBA, img.Format)
	assert.Equal(t, uint32(2), img.Width)
	assert.Equal(t, uint32(2), img.Height)
	assert.Equal(t, []uint8{255, 0, 0, 255}, img.Pixels[:4])

	flipped, err := am.LoadAsset("textures/tiles.png", metadata.ResourceTypeImage, &metadata.ImageResourceParams{FlipY: true})
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 0, 255, 255}, flipped.Data.(*metadata.ImageResourceData).Pixels[:4])

	src, err := am.LoadAsset("plain.vert.glsl", metadata.ResourceTypeShader, nil)
	require.NoError(t, err)
	assert.Contains(t, src.Data.(string), "void main()")

	_, err = am.LoadAsset("missing", metadata.ResourceTypeImage, nil)
	assert.ErrorIs(t, err, ErrAssetNotFound)

	require.NoError(t, am.UnloadAsset(res))
	assert.Nil(t, res.Data)
}

func TestAssetManagerReportsChanges(t *testing.T) {
	root := t.TempDir()
	am := newManager(t, root)

	writeFile(t, filepath.Join(root, "notes.txt"), "hello")

	require.Eventually(t, func() bool {
		_, ok := am.Find("notes.txt", metadata.ResourceTypeText)
		return ok
	}, 5*time.Second, 10*time.Millisecond)

	select {
	case e := <-am.Events():
		assert.Equal(t, "notes.txt", e.Asset.Path)
	case <-time.After(5 * time.Second):
		t.Fatal("no asset event")
	}

	require.NoError(t, os.Remove(filepath.Join(root, "notes.txt")))
	require.Eventually(t, func() bool {
		_, ok := am.Find("notes.txt", metadata.ResourceTypeText)
		return !ok
	}, 5*time.Second, 10*time.Millisecond)
}

func TestCloseWithoutInitialize(t *testing.T) {
	am, err := NewAssetManager(t.TempDir())
	require.NoError(t, err)
	assert.NoError(t, am.Close())
	assert.NoError(t, am.Close())
}
