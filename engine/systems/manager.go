package systems

import (
	"path"
	"strings"

	"github.com/spaghettifunk/solo/engine"
	"github.com/spaghettifunk/solo/engine/assets"
	"github.com/spaghettifunk/solo/engine/core"
	"github.com/spaghettifunk/solo/engine/renderer/metadata"
)

type SystemManagerConfig struct {
	MaxTextureCount  uint32
	MaxEffectCount   uint32
	MaxMaterialCount uint32
}

var DefaultSystemManagerConfig = SystemManagerConfig{
	MaxTextureCount:  1024,
	MaxEffectCount:   256,
	MaxMaterialCount: 1024,
}

// SystemManager owns the named resource systems and tears them down in
// reverse dependency order.
type SystemManager struct {
	assetManager   *assets.AssetManager
	textureSystem  *TextureSystem
	effectSystem   *EffectSystem
	materialSystem *MaterialSystem
}

func NewSystemManager(config SystemManagerConfig, device *engine.Device, am *assets.AssetManager) (*SystemManager, error) {
	ts, err := NewTextureSystem(&TextureSystemConfig{
		MaxTextureCount: config.MaxTextureCount,
	}, device, am)
	if err != nil {
		return nil, err
	}
	es, err := NewEffectSystem(&EffectSystemConfig{
		MaxEffectCount: config.MaxEffectCount,
	}, device, am)
	if err != nil {
		return nil, err
	}
	ms, err := NewMaterialSystem(&MaterialSystemConfig{
		MaxMaterialCount: config.MaxMaterialCount,
	}, device, am, es, ts)
	if err != nil {
		return nil, err
	}
	return &SystemManager{
		assetManager:   am,
		textureSystem:  ts,
		effectSystem:   es,
		materialSystem: ms,
	}, nil
}

func (sm *SystemManager) Initialize() error {
	if err := sm.textureSystem.Initialize(); err != nil {
		return err
	}
	return sm.materialSystem.Initialize()
}

func (sm *SystemManager) Textures() *TextureSystem {
	return sm.textureSystem
}

func (sm *SystemManager) Effects() *EffectSystem {
	return sm.effectSystem
}

func (sm *SystemManager) Materials() *MaterialSystem {
	return sm.materialSystem
}

// Update applies pending asset changes. Modified images are re-uploaded
// into the textures loaded from them; other kinds are only logged.
func (sm *SystemManager) Update() {
	if sm.assetManager == nil {
		return
	}
	for {
		select {
		case e, ok := <-sm.assetManager.Events():
			if !ok {
				return
			}
			sm.handleAssetEvent(e)
		default:
			return
		}
	}
}

func (sm *SystemManager) handleAssetEvent(e assets.AssetEvent) {
	if e.Op == assets.AssetRemoved || e.Asset.Type != metadata.ResourceTypeImage {
		core.LogDebug("asset %s %s", e.Asset.Path, e.Op)
		return
	}
	name := path.Base(e.Asset.Path)
	if i := strings.IndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	if err := sm.textureSystem.Reload(name); err != nil {
		core.LogError("failed to reload texture '%s': %s", name, err)
	}
}

func (sm *SystemManager) Shutdown() error {
	if err := sm.materialSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.effectSystem.Shutdown(); err != nil {
		return err
	}
	return sm.textureSystem.Shutdown()
}
