package systems

import (
	"fmt"

	"github.com/spaghettifunk/solo/engine"
	"github.com/spaghettifunk/solo/engine/assets"
	"github.com/spaghettifunk/solo/engine/core"
	"github.com/spaghettifunk/solo/engine/graphics"
	"github.com/spaghettifunk/solo/engine/renderer/metadata"
	"github.com/spaghettifunk/solo/engine/resources"
)

type EffectSystemConfig struct {
	MaxEffectCount uint32
}

type effectReference struct {
	effect         *resources.Effect
	referenceCount uint64
}

// EffectSystem compiles effects by name, once. A name is either one of the
// built-in post-process effects or the shared stem of a shader pair in the
// asset directory, such as "lit" for lit.vert.glsl and lit.frag.glsl.
// Vulkan devices read .wgsl (or .spv) files instead of .glsl.
type EffectSystem struct {
	config       *EffectSystemConfig
	device       *engine.Device
	assetManager *assets.AssetManager
	registered   map[string]*effectReference
}

func NewEffectSystem(config *EffectSystemConfig, device *engine.Device, am *assets.AssetManager) (*EffectSystem, error) {
	if config.MaxEffectCount == 0 {
		err := fmt.Errorf("func NewEffectSystem - config.MaxEffectCount must be > 0")
		core.LogError("%s", err.Error())
		return nil, err
	}
	return &EffectSystem{
		config:       config,
		device:       device,
		assetManager: am,
		registered:   make(map[string]*effectReference),
	}, nil
}

func (es *EffectSystem) Shutdown() error {
	for name, ref := range es.registered {
		ref.effect.Release()
		delete(es.registered, name)
	}
	return nil
}

// Acquire returns the effect called name, compiling it on first use.
func (es *EffectSystem) Acquire(name string) (*resources.Effect, error) {
	if ref, ok := es.registered[name]; ok {
		ref.referenceCount++
		return ref.effect, nil
	}
	if uint32(len(es.registered)) >= es.config.MaxEffectCount {
		return nil, fmt.Errorf("effect system cannot hold %s, limit of %d reached", name, es.config.MaxEffectCount)
	}
	effect, err := es.compile(name)
	if err != nil {
		core.LogError("failed to create effect '%s': %s", name, err)
		return nil, err
	}
	effect.SetName(name)
	es.registered[name] = &effectReference{effect: effect, referenceCount: 1}
	return effect, nil
}

// Release drops one reference and destroys the effect with the last one.
// Materials built from it keep it alive through their own reference.
func (es *EffectSystem) Release(name string) {
	ref, ok := es.registered[name]
	if !ok {
		core.LogWarn("tried to release non-existent effect: '%s'", name)
		return
	}
	ref.referenceCount--
	if ref.referenceCount == 0 {
		ref.effect.Release()
		delete(es.registered, name)
	}
}

func (es *EffectSystem) ReferenceCount(name string) (uint64, bool) {
	ref, ok := es.registered[name]
	if !ok {
		return 0, false
	}
	return ref.referenceCount, true
}

func (es *EffectSystem) compile(name string) (*resources.Effect, error) {
	if es.assetManager != nil {
		vs, vsErr := es.source(name + ".vert")
		fs, fsErr := es.source(name + ".frag")
		if vsErr == nil && fsErr == nil {
			return resources.NewEffect(es.device, vs, fs)
		}
	}
	if kind, ok := graphics.ParseEffectKind(name); ok {
		return graphics.NewEffect(es.device, kind)
	}
	return nil, fmt.Errorf("%w: no shader sources for effect %s", assets.ErrAssetNotFound, name)
}

func (es *EffectSystem) source(stem string) (string, error) {
	exts := []string{".glsl"}
	if es.device.Mode() == metadata.BackendVulkan {
		exts = []string{".wgsl", ".spv"}
	}
	var lastErr error
	for _, ext := range exts {
		res, err := es.assetManager.LoadAsset(stem+ext, metadata.ResourceTypeShader, nil)
		if err != nil {
			lastErr = err
			continue
		}
		return res.Data.(string), nil
	}
	return "", lastErr
}
