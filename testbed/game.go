// Package testbed is a small scene exercising the engine: a textured cube
// rendered into an offscreen frame buffer and blitted to the window through
// a rotating set of post-process effects.
package testbed

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/solo/engine"
	"github.com/spaghettifunk/solo/engine/assets"
	"github.com/spaghettifunk/solo/engine/core"
	"github.com/spaghettifunk/solo/engine/graphics"
	"github.com/spaghettifunk/solo/engine/renderer/components"
	"github.com/spaghettifunk/solo/engine/renderer/metadata"
	"github.com/spaghettifunk/solo/engine/resources"
	"github.com/spaghettifunk/solo/engine/systems"
)

const (
	crateMaterialName = "crate"
	effectPeriod      = 5.0
	spinSpeed         = 0.8
)

// Effects the testbed cycles through.
var postEffects = []graphics.EffectKind{
	graphics.EffectPassthrough,
	graphics.EffectGrayscale,
	graphics.EffectSaturate,
	graphics.EffectStitch,
}

type TestGame struct {
	*engine.Game
	state *gameState
}

type gameState struct {
	device   *engine.Device
	assets   *assets.AssetManager
	systems  *systems.SystemManager
	graphics *graphics.Graphics

	camera        *components.Camera
	cube          *resources.Mesh
	cubeTransform *components.Transform
	crate         *resources.Material
	ownsCrate     bool

	color  *resources.Texture2D
	depth  *resources.Texture2D
	target *resources.FrameBuffer
	post   *resources.Material

	width   uint32
	height  uint32
	elapsed float64
	effect  int
}

func NewTestGame(stop <-chan struct{}) *TestGame {
	tg := &TestGame{
		Game:  &engine.Game{Stop: stop},
		state: &gameState{},
	}
	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnShutdown = tg.Shutdown
	return tg
}

func (g *TestGame) Initialize(device *engine.Device) error {
	core.LogInfo("initializing testbed...")
	state := g.state
	state.device = device

	am, err := assets.NewAssetManager(device.Setup().AssetsPath)
	if err != nil {
		return err
	}
	if err := am.Initialize(); err != nil {
		return err
	}
	state.assets = am

	sm, err := systems.NewSystemManager(systems.DefaultSystemManagerConfig, device, am)
	if err != nil {
		return err
	}
	if err := sm.Initialize(); err != nil {
		return err
	}
	state.systems = sm
	state.graphics = graphics.New(device)

	state.cube, err = resources.NewCubeMesh(device)
	if err != nil {
		return err
	}
	state.cubeTransform = components.NewTransform()

	state.crate, err = sm.Materials().Acquire(crateMaterialName)
	if err != nil {
		core.LogWarn("falling back to the default material: %s", err)
		state.crate = sm.Materials().DefaultMaterial()
		state.crate.BindParameter("worldViewProjection", metadata.SemanticsWorldViewProjectionMatrix)
	} else {
		state.ownsCrate = true
	}

	state.camera = components.NewCamera()
	state.camera.SetPosition(mgl32.Vec3{0, 1.5, 6})
	state.camera.Pitch(mgl32.DegToRad(-12))

	width, height := device.CanvasSize()
	if err := g.createTarget(width, height); err != nil {
		return err
	}
	return g.setEffect(0)
}

// createTarget builds the offscreen color and depth attachments at the
// canvas size, or resizes them when they already exist.
func (g *TestGame) createTarget(width, height uint32) error {
	state := g.state
	state.width, state.height = width, height
	state.camera.SetAspectRatio(float32(width) / float32(height))

	if state.target == nil {
		var err error
		if state.color, err = resources.NewTexture2D(state.device, width, height, metadata.TextureFormatRGBA); err != nil {
			return err
		}
		state.color.SetFiltering(metadata.TextureFilterLinear, metadata.TextureFilterLinear)
		state.color.SetWrapping(metadata.TextureWrapClamp)
		if state.depth, err = resources.NewTexture2D(state.device, width, height, metadata.TextureFormatDepth); err != nil {
			return err
		}
		if state.target, err = resources.NewFrameBuffer(state.device); err != nil {
			return err
		}
	} else {
		if err := state.color.Reallocate(metadata.TextureFormatRGBA, nil, width, height); err != nil {
			return err
		}
		if err := state.depth.Reallocate(metadata.TextureFormatDepth, nil, width, height); err != nil {
			return err
		}
	}
	return state.target.SetAttachments(state.color, state.depth)
}

// setEffect replaces the post-process material with postEffects[index].
func (g *TestGame) setEffect(index int) error {
	state := g.state
	kind := postEffects[index%len(postEffects)]
	post, err := graphics.NewPostProcessMaterial(state.device, kind, state.color)
	if err != nil {
		return fmt.Errorf("failed to build %s post-process: %w", kind, err)
	}
	if state.post != nil {
		state.post.Release()
	}
	state.post = post
	state.effect = index
	core.LogInfo("post-process effect: %s", kind)
	return nil
}

func (g *TestGame) Update(deltaTime float64) error {
	state := g.state
	state.systems.Update()

	width, height := state.device.CanvasSize()
	if width != state.width || height != state.height {
		if err := g.createTarget(width, height); err != nil {
			return err
		}
		// The resolution parameter follows the source size.
		if err := g.setEffect(state.effect); err != nil {
			return err
		}
	}

	state.cubeTransform.Rotate(mgl32.QuatRotate(float32(deltaTime)*spinSpeed, mgl32.Vec3{0, 1, 0}))

	state.elapsed += deltaTime
	if state.elapsed >= effectPeriod {
		state.elapsed = 0
		return g.setEffect(state.effect + 1)
	}
	return nil
}

func (g *TestGame) Render(deltaTime float64) error {
	state := g.state
	r := state.device.Renderer()

	state.target.Bind()
	r.SetViewport(metadata.Viewport{Width: state.width, Height: state.height})
	r.Clear(true, true, 0.08, 0.08, 0.12, 1)
	state.crate.Apply(state.camera, state.cubeTransform)
	state.cube.Draw(state.crate.Effect())
	state.target.Unbind()

	return state.graphics.Blit(state.post, nil)
}

func (g *TestGame) Shutdown() error {
	core.LogInfo("shutting down testbed...")
	state := g.state
	if state.post != nil {
		state.post.Release()
	}
	if state.target != nil {
		state.target.Destroy()
	}
	if state.depth != nil {
		state.depth.Destroy()
	}
	if state.color != nil {
		state.color.Destroy()
	}
	if state.graphics != nil {
		state.graphics.Destroy()
	}
	if state.cube != nil {
		state.cube.Destroy()
	}
	if state.systems != nil {
		if state.ownsCrate {
			state.systems.Materials().Release(crateMaterialName)
		}
		if err := state.systems.Shutdown(); err != nil {
			return err
		}
	}
	if state.assets != nil {
		return state.assets.Close()
	}
	return nil
}
