package systems

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/solo/engine"
	"github.com/spaghettifunk/solo/engine/assets"
	"github.com/spaghettifunk/solo/engine/core"
	"github.com/spaghettifunk/solo/engine/graphics"
	"github.com/spaghettifunk/solo/engine/renderer/metadata"
	"github.com/spaghettifunk/solo/engine/resources"
)

type MaterialSystemConfig struct {
	MaxMaterialCount uint32
}

type materialReference struct {
	material       *resources.Material
	effectName     string
	textureNames   []string
	referenceCount uint64
	autoRelease    bool
}

// MaterialSystem builds materials from .material.toml definitions. The
// effects and textures a definition names are acquired through their systems
// and released again with the material.
type MaterialSystem struct {
	config       *MaterialSystemConfig
	device       *engine.Device
	assetManager *assets.AssetManager
	effects      *EffectSystem
	textures     *TextureSystem
	registered   map[string]*materialReference
}

func NewMaterialSystem(config *MaterialSystemConfig, device *engine.Device, am *assets.AssetManager, es *EffectSystem, ts *TextureSystem) (*MaterialSystem, error) {
	if config.MaxMaterialCount == 0 {
		err := fmt.Errorf("func NewMaterialSystem - config.MaxMaterialCount must be > 0")
		core.LogError("%s", err.Error())
		return nil, err
	}
	return &MaterialSystem{
		config:       config,
		device:       device,
		assetManager: am,
		effects:      es,
		textures:     ts,
		registered:   make(map[string]*materialReference),
	}, nil
}

// Initialize creates the default material: the passthrough effect sampling
// the default checkerboard texture.
func (ms *MaterialSystem) Initialize() error {
	_, err := ms.AcquireFromConfig(&metadata.MaterialConfig{
		Name:   metadata.DefaultMaterialName,
		Effect: graphics.EffectPassthrough.String(),
		Parameters: []metadata.MaterialParameterConfig{
			{Name: graphics.UniformMainTexture, Type: metadata.ShaderUniformTypeSampler.String(), Texture: metadata.DEFAULT_TEXTURE_NAME},
		},
	})
	return err
}

func (ms *MaterialSystem) Shutdown() error {
	for name, ref := range ms.registered {
		ms.destroy(ref)
		delete(ms.registered, name)
	}
	return nil
}

func (ms *MaterialSystem) DefaultMaterial() *resources.Material {
	if ref, ok := ms.registered[metadata.DefaultMaterialName]; ok {
		return ref.material
	}
	return nil
}

// Acquire returns the material defined by the asset name, building it on
// first use.
func (ms *MaterialSystem) Acquire(name string) (*resources.Material, error) {
	if ref, ok := ms.registered[name]; ok {
		ref.referenceCount++
		return ref.material, nil
	}
	res, err := ms.assetManager.LoadAsset(name, metadata.ResourceTypeMaterial, nil)
	if err != nil {
		core.LogError("failed to load material '%s': %s", name, err)
		return nil, err
	}
	cfg, ok := res.Data.(*metadata.MaterialConfig)
	if !ok {
		return nil, fmt.Errorf("asset %s is not a material definition", name)
	}
	return ms.AcquireFromConfig(cfg)
}

// AcquireFromConfig builds a material from an in-memory definition, or
// returns the one already registered under cfg.Name.
func (ms *MaterialSystem) AcquireFromConfig(cfg *metadata.MaterialConfig) (*resources.Material, error) {
	if ref, ok := ms.registered[cfg.Name]; ok {
		ref.referenceCount++
		return ref.material, nil
	}
	if uint32(len(ms.registered)) >= ms.config.MaxMaterialCount {
		return nil, fmt.Errorf("material system cannot hold %s, limit of %d reached", cfg.Name, ms.config.MaxMaterialCount)
	}

	effect, err := ms.effects.Acquire(cfg.Effect)
	if err != nil {
		return nil, err
	}
	material, err := resources.NewMaterial(ms.device, effect)
	if err != nil {
		ms.effects.Release(cfg.Effect)
		return nil, err
	}
	material.SetName(cfg.Name)
	ref := &materialReference{
		material:       material,
		effectName:     cfg.Effect,
		referenceCount: 1,
		autoRelease:    cfg.AutoRelease,
	}
	if err := ms.configure(ref, cfg); err != nil {
		ms.destroy(ref)
		return nil, err
	}
	ms.registered[cfg.Name] = ref
	core.LogDebug("created material '%s' with effect '%s'", cfg.Name, cfg.Effect)
	return material, nil
}

func (ms *MaterialSystem) configure(ref *materialReference, cfg *metadata.MaterialConfig) error {
	m := ref.material
	state := m.State()
	if cfg.State.DepthTest != nil {
		state.DepthTest = *cfg.State.DepthTest
	}
	if cfg.State.DepthWrite != nil {
		state.DepthWrite = *cfg.State.DepthWrite
	}
	if cfg.State.FaceCull != nil {
		state.FaceCull = *cfg.State.FaceCull
	}
	if cfg.State.PolygonMode != nil {
		state.PolygonMode = *cfg.State.PolygonMode
	}
	m.SetState(state)

	for _, p := range cfg.Parameters {
		t, err := metadata.ShaderUniformTypeFromString(p.Type)
		if err != nil {
			return fmt.Errorf("material %s: %w", cfg.Name, err)
		}
		if t != metadata.ShaderUniformTypeSampler && len(p.Value) != int(t.Size()/4) {
			return fmt.Errorf("material %s: parameter %s expects %d values, got %d", cfg.Name, p.Name, t.Size()/4, len(p.Value))
		}
		switch t {
		case metadata.ShaderUniformTypeFloat32:
			m.SetFloatParameter(p.Name, p.Value[0])
		case metadata.ShaderUniformTypeFloat32_2:
			m.SetVector2Parameter(p.Name, mgl32.Vec2{p.Value[0], p.Value[1]})
		case metadata.ShaderUniformTypeFloat32_3:
			m.SetVector3Parameter(p.Name, mgl32.Vec3{p.Value[0], p.Value[1], p.Value[2]})
		case metadata.ShaderUniformTypeFloat32_4:
			m.SetVector4Parameter(p.Name, mgl32.Vec4{p.Value[0], p.Value[1], p.Value[2], p.Value[3]})
		case metadata.ShaderUniformTypeMatrix4:
			var mat mgl32.Mat4
			copy(mat[:], p.Value)
			m.SetMatrixParameter(p.Name, mat)
		case metadata.ShaderUniformTypeSampler:
			texture, err := ms.textures.Acquire(p.Texture, true)
			if err != nil {
				return fmt.Errorf("material %s: %w", cfg.Name, err)
			}
			ref.textureNames = append(ref.textureNames, p.Texture)
			m.SetTextureParameter(p.Name, texture)
		}
	}
	names := make([]string, 0, len(cfg.Bindings))
	for name := range cfg.Bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		m.BindParameter(name, cfg.Bindings[name])
	}
	return nil
}

// Release drops one reference. Auto-released materials are destroyed with
// the last one.
func (ms *MaterialSystem) Release(name string) {
	if name == metadata.DefaultMaterialName {
		return
	}
	ref, ok := ms.registered[name]
	if !ok {
		core.LogWarn("tried to release non-existent material: '%s'", name)
		return
	}
	if ref.referenceCount > 0 {
		ref.referenceCount--
	}
	if ref.referenceCount == 0 && ref.autoRelease {
		ms.destroy(ref)
		delete(ms.registered, name)
	}
}

func (ms *MaterialSystem) ReferenceCount(name string) (uint64, bool) {
	ref, ok := ms.registered[name]
	if !ok {
		return 0, false
	}
	return ref.referenceCount, true
}

func (ms *MaterialSystem) destroy(ref *materialReference) {
	ref.material.Release()
	ms.effects.Release(ref.effectName)
	for _, t := range ref.textureNames {
		ms.textures.Release(t)
	}
}
