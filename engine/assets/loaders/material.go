package loaders

import (
	"bytes"
	"fmt"
	"os"
	"unsafe"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/solo/engine/renderer/metadata"
)

type MaterialLoader struct{}

func (ml *MaterialLoader) Load(path string, params interface{}) (*metadata.Resource, error) {
	cfg, err := ParseMaterialFile(path)
	if err != nil {
		return nil, err
	}
	return &metadata.Resource{
		Name:     cfg.Name,
		FullPath: path,
		Type:     metadata.ResourceTypeMaterial,
		DataSize: uint64(unsafe.Sizeof(metadata.MaterialConfig{})),
		Data:     cfg,
	}, nil
}

func ParseMaterialFile(path string) (*metadata.MaterialConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseMaterial(data)
}

// ParseMaterial decodes a material definition, rejecting unknown keys.
func ParseMaterial(data []byte) (*metadata.MaterialConfig, error) {
	cfg := &metadata.MaterialConfig{}
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("invalid material definition: %w", err)
	}
	if err := validateMaterial(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateMaterial(material *metadata.MaterialConfig) error {
	if material.Name == "" {
		return fmt.Errorf("material name is required")
	}
	if material.Effect == "" {
		return fmt.Errorf("material %s: effect name is required", material.Name)
	}
	seen := map[string]bool{}
	for _, p := range material.Parameters {
		if p.Name == "" {
			return fmt.Errorf("material %s: parameter without a name", material.Name)
		}
		if seen[p.Name] {
			return fmt.Errorf("material %s: parameter %s defined twice", material.Name, p.Name)
		}
		seen[p.Name] = true
		t, err := metadata.ShaderUniformTypeFromString(p.Type)
		if err != nil {
			return fmt.Errorf("material %s: parameter %s: %w", material.Name, p.Name, err)
		}
		if t == metadata.ShaderUniformTypeSampler {
			if p.Texture == "" {
				return fmt.Errorf("material %s: texture parameter %s has no texture", material.Name, p.Name)
			}
			continue
		}
		if n := int(t.Size() / 4); len(p.Value) != n {
			return fmt.Errorf("material %s: parameter %s expects %d values, got %d", material.Name, p.Name, n, len(p.Value))
		}
	}
	for name := range material.Bindings {
		if seen[name] {
			return fmt.Errorf("material %s: %s is both a parameter and a binding", material.Name, name)
		}
	}
	return nil
}

func (ml *MaterialLoader) Unload(r *metadata.Resource) error {
	r.Data = nil
	return nil
}
