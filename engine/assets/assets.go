// Package assets indexes an asset directory, decodes files on request and
// reports changes made to the directory while the engine runs.
package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/solo/engine/assets/loaders"
	"github.com/spaghettifunk/solo/engine/core"
	"github.com/spaghettifunk/solo/engine/renderer/metadata"
)

const eventBufferSize = 64

var ErrAssetNotFound = errors.New("asset not found")

type AssetInfo struct {
	// Path relative to the asset root, always slash separated.
	Path    string
	Type    metadata.ResourceType
	ModTime time.Time
}

type ChangeOp uint8

const (
	AssetCreated ChangeOp = iota
	AssetModified
	AssetRemoved
)

func (op ChangeOp) String() string {
	switch op {
	case AssetCreated:
		return "created"
	case AssetModified:
		return "modified"
	case AssetRemoved:
		return "removed"
	}
	return "unknown"
}

type AssetEvent struct {
	Asset AssetInfo
	Op    ChangeOp
}

type AssetManager struct {
	root    string
	assets  map[string]AssetInfo
	loaders map[metadata.ResourceType]Loader

	mutex sync.RWMutex

	done     chan struct{}
	stopped  chan struct{}
	fsnotify *fsnotify.Watcher
	started  bool
	isClosed bool
	events   chan AssetEvent
	errors   chan error
}

func NewAssetManager(root string) (*AssetManager, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &AssetManager{
		root:     abs,
		assets:   make(map[string]AssetInfo),
		loaders:  make(map[metadata.ResourceType]Loader),
		fsnotify: fsWatch,
		events:   make(chan AssetEvent, eventBufferSize),
		errors:   make(chan error, eventBufferSize),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}, nil
}

// Initialize indexes the asset root and starts watching it.
func (am *AssetManager) Initialize() error {
	am.registerLoader(metadata.ResourceTypeText, &loaders.TextLoader{})
	am.registerLoader(metadata.ResourceTypeShader, &loaders.ShaderLoader{})
	am.registerLoader(metadata.ResourceTypeImage, &loaders.ImageLoader{})
	am.registerLoader(metadata.ResourceTypeMaterial, &loaders.MaterialLoader{})

	if err := am.watchRecursive(am.root, false); err != nil {
		return err
	}
	am.started = true
	go am.start()

	core.LogInfo("indexed %d assets under %s", am.Len(), am.root)
	return nil
}

func (am *AssetManager) Root() string {
	return am.root
}

func (am *AssetManager) registerLoader(assetType metadata.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

// Events delivers index changes. Events are dropped when nobody reads them.
func (am *AssetManager) Events() <-chan AssetEvent {
	return am.events
}

func (am *AssetManager) Errors() <-chan error {
	return am.errors
}

func (am *AssetManager) Len() int {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	return len(am.assets)
}

// Assets lists the indexed assets of type t, sorted by path.
func (am *AssetManager) Assets(t metadata.ResourceType) []AssetInfo {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	var out []AssetInfo
	for _, a := range am.assets {
		if a.Type == t {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Find resolves name to an indexed asset of type t. name may be a path
// relative to the root, a file name, or a file name without extensions.
func (am *AssetManager) Find(name string, t metadata.ResourceType) (AssetInfo, bool) {
	am.mutex.RLock()
	if a, ok := am.assets[filepath.ToSlash(name)]; ok && a.Type == t {
		am.mutex.RUnlock()
		return a, true
	}
	am.mutex.RUnlock()

	for _, a := range am.Assets(t) {
		base := filepath.Base(a.Path)
		if base == name || stripExt(base) == name {
			return a, true
		}
	}
	return AssetInfo{}, false
}

// LoadAsset decodes the asset name resolves to with the loader for t.
func (am *AssetManager) LoadAsset(name string, t metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	asset, ok := am.Find(name, t)
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", ErrAssetNotFound, t, name)
	}
	loader, ok := am.loaders[asset.Type]
	if !ok {
		return nil, fmt.Errorf("no loader registered for asset type: %s", asset.Type)
	}
	res, err := loader.Load(filepath.Join(am.root, filepath.FromSlash(asset.Path)), params)
	if err != nil {
		core.LogError("failed to load %s: %s", asset.Path, err)
		return nil, err
	}
	return res, nil
}

func (am *AssetManager) UnloadAsset(resource *metadata.Resource) error {
	loader, ok := am.loaders[resource.Type]
	if !ok {
		return fmt.Errorf("no loader registered for asset type: %s", resource.Type)
	}
	return loader.Unload(resource)
}

// Close stops the watcher. The event and error channels are closed once it
// has exited.
func (am *AssetManager) Close() error {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return nil
	}
	am.isClosed = true
	am.mutex.Unlock()

	if !am.started {
		close(am.events)
		close(am.errors)
		return am.fsnotify.Close()
	}
	close(am.done)
	<-am.stopped
	return nil
}

func (am *AssetManager) start() {
	defer close(am.stopped)
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			am.handleWatchEvent(e)

		case e, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("asset watcher: %s", e)
			select {
			case am.errors <- e:
			default:
			}

		case <-am.done:
			am.fsnotify.Close()
			close(am.events)
			close(am.errors)
			return
		}
	}
}

func (am *AssetManager) handleWatchEvent(e fsnotify.Event) {
	s, err := os.Stat(e.Name)
	if err == nil && s.IsDir() {
		if e.Has(fsnotify.Create) {
			if err := am.watchRecursive(e.Name, false); err != nil {
				core.LogWarn("failed to watch %s: %s", e.Name, err)
			}
		}
		return
	}
	switch {
	case e.Has(fsnotify.Create):
		am.handleFileEvent(e.Name, AssetCreated)
	case e.Has(fsnotify.Write):
		am.handleFileEvent(e.Name, AssetModified)
	case e.Has(fsnotify.Remove), e.Has(fsnotify.Rename):
		// A removed directory cannot be stat'ed; dropping an unknown watch is harmless.
		_ = am.fsnotify.Remove(e.Name)
		am.removeAsset(e.Name)
	}
}

// watchRecursive adds or removes every directory under path and indexes the
// files found on the way in.
func (am *AssetManager) watchRecursive(path string, unWatch bool) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if unWatch {
				return am.fsnotify.Remove(walkPath)
			}
			return am.fsnotify.Add(walkPath)
		}
		if !unWatch {
			am.index(walkPath, fi.ModTime())
		}
		return nil
	})
}

func (am *AssetManager) relative(path string) (string, bool) {
	rel, err := filepath.Rel(am.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (am *AssetManager) index(path string, modTime time.Time) (AssetInfo, bool) {
	rel, ok := am.relative(path)
	if !ok {
		return AssetInfo{}, false
	}
	assetType := DetermineAssetType(rel)
	if assetType == metadata.ResourceTypeUnknown {
		return AssetInfo{}, false
	}
	info := AssetInfo{Path: rel, Type: assetType, ModTime: modTime}
	am.mutex.Lock()
	am.assets[rel] = info
	am.mutex.Unlock()
	return info, true
}

func (am *AssetManager) handleFileEvent(path string, op ChangeOp) {
	modTime := time.Now()
	if s, err := os.Stat(path); err == nil {
		modTime = s.ModTime()
	}
	if info, ok := am.index(path, modTime); ok {
		am.publish(AssetEvent{Asset: info, Op: op})
	}
}

func (am *AssetManager) removeAsset(path string) {
	rel, ok := am.relative(path)
	if !ok {
		return
	}
	am.mutex.Lock()
	info, ok := am.assets[rel]
	delete(am.assets, rel)
	am.mutex.Unlock()
	if ok {
		am.publish(AssetEvent{Asset: info, Op: AssetRemoved})
	}
}

func (am *AssetManager) publish(e AssetEvent) {
	core.LogDebug("asset %s %s", e.Asset.Path, e.Op)
	select {
	case am.events <- e:
	default:
		core.LogWarn("dropped asset event for %s", e.Asset.Path)
	}
}

// DetermineAssetType maps a file name to the loader that handles it.
func DetermineAssetType(path string) metadata.ResourceType {
	name := strings.ToLower(filepath.Base(path))
	if strings.HasSuffix(name, ".material.toml") {
		return metadata.ResourceTypeMaterial
	}
	switch filepath.Ext(name) {
	case ".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".webp":
		return metadata.ResourceTypeImage
	case ".glsl", ".wgsl", ".vert", ".frag", ".spv":
		return metadata.ResourceTypeShader
	case ".txt", ".toml", ".json":
		return metadata.ResourceTypeText
	default:
		return metadata.ResourceTypeUnknown
	}
}

func stripExt(name string) string {
	if i := strings.IndexByte(name, '.'); i > 0 {
		return name[:i]
	}
	return name
}
