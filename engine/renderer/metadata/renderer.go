package metadata

import "fmt"

/** @brief Selects the backend a Device drives. */
type BackendMode uint8

const (
	BackendNull BackendMode = iota
	BackendStub
	BackendOpenGL
	BackendVulkan
)

func (m BackendMode) String() string {
	switch m {
	case BackendNull:
		return "null"
	case BackendStub:
		return "stub"
	case BackendOpenGL:
		return "opengl"
	case BackendVulkan:
		return "vulkan"
	}
	return fmt.Sprintf("BackendMode(%d)", uint8(m))
}

// ParseBackendMode is the inverse of BackendMode.String.
func ParseBackendMode(s string) (BackendMode, error) {
	switch s {
	case "null":
		return BackendNull, nil
	case "stub":
		return BackendStub, nil
	case "opengl", "gl":
		return BackendOpenGL, nil
	case "vulkan", "vk":
		return BackendVulkan, nil
	}
	return 0, fmt.Errorf("unknown renderer backend %q", s)
}

func (m BackendMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *BackendMode) UnmarshalText(text []byte) error {
	mode, err := ParseBackendMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

/** @brief Handles are opaque backend identifiers. Zero is never valid. */
type (
	TextureHandle     uint32
	BufferHandle      uint32
	ProgramHandle     uint32
	FrameBufferHandle uint32
)

const InvalidHandle = 0

/** @brief Parameters a backend receives when the Device starts it. */
type BackendConfig struct {
	/** @brief Title of the window, for windowed backends. */
	Title string
	/** @brief Requested canvas width in pixels. */
	CanvasWidth uint32
	/** @brief Requested canvas height in pixels. */
	CanvasHeight uint32
	Fullscreen   bool
	VSync        bool
	/** @brief Enables API validation layers where the backend has them. */
	Debug bool
}

// Window is the platform surface a windowed backend renders into.
type Window interface {
	ShouldClose() bool
	PollEvents()
	SwapBuffers()
	CanvasSize() (uint32, uint32)
	Destroy()
}
