package loaders

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spaghettifunk/solo/engine/renderer/metadata"
)

// ShaderLoader reads shader sources as text. Vulkan also accepts SPIR-V
// binaries, which are passed through untouched.
type ShaderLoader struct{}

func (sl *ShaderLoader) Load(path string, params interface{}) (*metadata.Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &metadata.Resource{
		Name:     trimExt(filepath.Base(path)),
		FullPath: path,
		Type:     metadata.ResourceTypeShader,
		DataSize: uint64(len(data)),
		Data:     string(data),
	}, nil
}

func (sl *ShaderLoader) Unload(r *metadata.Resource) error {
	r.Data = nil
	return nil
}

// TextLoader reads any file as a string.
type TextLoader struct{}

func (tl *TextLoader) Load(path string, params interface{}) (*metadata.Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &metadata.Resource{
		Name:     filepath.Base(path),
		FullPath: path,
		Type:     metadata.ResourceTypeText,
		DataSize: uint64(len(data)),
		Data:     string(data),
	}, nil
}

func (tl *TextLoader) Unload(r *metadata.Resource) error {
	r.Data = nil
	return nil
}

// trimExt drops every extension, so "blur.frag.glsl" becomes "blur".
func trimExt(name string) string {
	if i := strings.IndexByte(name, '.'); i > 0 {
		return name[:i]
	}
	return name
}
