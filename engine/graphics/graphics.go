// Package graphics draws full-screen passes: a material applied over a quad
// into a frame buffer or the window.
package graphics

import (
	"github.com/spaghettifunk/solo/engine"
	"github.com/spaghettifunk/solo/engine/core"
	"github.com/spaghettifunk/solo/engine/renderer/metadata"
	"github.com/spaghettifunk/solo/engine/resources"
)

var blitState = metadata.RenderState{
	DepthTest:   false,
	DepthWrite:  false,
	FaceCull:    metadata.FaceCullNone,
	PolygonMode: metadata.PolygonModeFill,
}

type Graphics struct {
	device *engine.Device
	quad   *resources.Mesh
}

func New(device *engine.Device) *Graphics {
	return &Graphics{device: device}
}

func (g *Graphics) quadMesh() (*resources.Mesh, error) {
	if g.quad != nil {
		return g.quad, nil
	}
	quad, err := resources.NewQuadMesh(g.device)
	if err != nil {
		return nil, err
	}
	quad.SetName("graphics-blit-quad")
	g.quad = quad
	return quad, nil
}

// Blit draws a full-screen quad with material into target, or into the
// window when target is nil. Depth and culling are disabled for the pass and
// the material's own state is left as it was.
func (g *Graphics) Blit(material *resources.Material, target *resources.FrameBuffer) error {
	quad, err := g.quadMesh()
	if err != nil {
		core.LogError("failed to create blit quad: %s", err)
		return err
	}
	r := g.device.Renderer()

	var width, height uint32
	if target != nil {
		target.Bind()
		width, height = target.Size()
	} else {
		r.BindFrameBuffer(metadata.InvalidHandle)
		width, height = g.device.CanvasSize()
	}
	r.SetViewport(metadata.Viewport{Width: width, Height: height})

	saved := material.State()
	material.SetState(blitState)
	material.Apply(nil, nil)
	material.SetState(saved)

	quad.Draw(material.Effect())

	if target != nil {
		target.Unbind()
	}
	return nil
}

// BlitFromScript is Blit for callers that cannot pass a nil target.
func (g *Graphics) BlitFromScript(material *resources.Material, target *resources.FrameBuffer, toScreen bool) error {
	if toScreen {
		return g.Blit(material, nil)
	}
	return g.Blit(material, target)
}

func (g *Graphics) Destroy() {
	if g.quad == nil {
		return
	}
	g.quad.Release()
	g.quad = nil
}
