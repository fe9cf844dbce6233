package metadata

import "fmt"

/**
 * @brief Determines face culling during rendering. None disables culling,
 * CW and CCW pick the winding of front faces and cull back faces, All culls
 * front and back faces.
 */
type FaceCull int

const (
	FaceCullNone FaceCull = iota
	FaceCullCW
	FaceCullCCW
	FaceCullAll
)

func (c FaceCull) String() string {
	switch c {
	case FaceCullNone:
		return "none"
	case FaceCullCW:
		return "cw"
	case FaceCullCCW:
		return "ccw"
	case FaceCullAll:
		return "all"
	}
	return fmt.Sprintf("FaceCull(%d)", int(c))
}

func (c *FaceCull) UnmarshalText(text []byte) error {
	for _, v := range []FaceCull{FaceCullNone, FaceCullCW, FaceCullCCW, FaceCullAll} {
		if v.String() == string(text) {
			*c = v
			return nil
		}
	}
	return fmt.Errorf("unknown face cull mode %q", text)
}

/** @brief Rasterization fill mode. */
type PolygonMode int

const (
	PolygonModeFill PolygonMode = iota
	PolygonModeWireframe
	PolygonModePoints
)

func (m PolygonMode) String() string {
	switch m {
	case PolygonModeFill:
		return "fill"
	case PolygonModeWireframe:
		return "wireframe"
	case PolygonModePoints:
		return "points"
	}
	return fmt.Sprintf("PolygonMode(%d)", int(m))
}

func (m *PolygonMode) UnmarshalText(text []byte) error {
	for _, v := range []PolygonMode{PolygonModeFill, PolygonModeWireframe, PolygonModePoints} {
		if v.String() == string(text) {
			*m = v
			return nil
		}
	}
	return fmt.Errorf("unknown polygon mode %q", text)
}

/** @brief Fixed-function state applied before a draw. */
type RenderState struct {
	DepthTest   bool
	DepthWrite  bool
	FaceCull    FaceCull
	PolygonMode PolygonMode
}

// DefaultRenderState is what a new Material starts with.
var DefaultRenderState = RenderState{
	DepthTest:  true,
	DepthWrite: true,
	FaceCull:   FaceCullCCW,
}

/** @brief Viewport rectangle in pixels; a zero width or height means "the whole target". */
type Viewport struct {
	X, Y          int32
	Width, Height uint32
}

// Resolve returns the rectangle v covers on a target of the given size.
func (v Viewport) Resolve(width, height uint32) Viewport {
	if v.Width == 0 || v.Height == 0 {
		return Viewport{Width: width, Height: height}
	}
	return v
}
