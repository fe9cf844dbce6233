package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrShaderCompilation  = errors.New("shader compilation failed")
	ErrUnsupportedFormat  = errors.New("unsupported format")
	ErrInvalidLayout      = errors.New("invalid vertex buffer layout")
	ErrContextCreation    = errors.New("graphics context creation failed")
	ErrBackendUnavailable = errors.New("renderer backend not linked into this build")
	ErrTextureDataSize    = errors.New("texture data does not match its dimensions")
	ErrAttachmentSize     = errors.New("frame buffer attachments differ in size")
	ErrAttachmentLayout   = errors.New("frame buffer accepts at most one depth attachment")
	ErrNoSuchBuffer       = errors.New("no such buffer")
	ErrNotDynamic         = errors.New("vertex buffer is not dynamic")
	ErrVertexDataSize     = errors.New("vertex data does not match layout and vertex count")
	ErrDeviceShutdown     = errors.New("device already shut down")
	ErrSwapchainBooting   = errors.New("swapchain resized or recreated, booting")
)

// ShaderStage names the step of program creation that failed.
type ShaderStage string

const (
	ShaderStageVertex   ShaderStage = "vertex"
	ShaderStageFragment ShaderStage = "fragment"
	ShaderStageLink     ShaderStage = "link"
)

// ShaderCompilationError carries the log produced by the backend compiler or
// linker.
type ShaderCompilationError struct {
	Stage ShaderStage
	Log   string
}

func (e *ShaderCompilationError) Error() string {
	return fmt.Sprintf("%s shader: %s", e.Stage, strings.TrimSpace(e.Log))
}

func (e *ShaderCompilationError) Unwrap() error {
	return ErrShaderCompilation
}

type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format %s", e.Format)
}

func (e *UnsupportedFormatError) Unwrap() error {
	return ErrUnsupportedFormat
}

// InvalidLayoutError reports a vertex layout whose slots are not exactly 0..N-1.
type InvalidLayoutError struct {
	Slots  []uint32
	Reason string
}

func (e *InvalidLayoutError) Error() string {
	return fmt.Sprintf("invalid vertex buffer layout %v: %s", e.Slots, e.Reason)
}

func (e *InvalidLayoutError) Unwrap() error {
	return ErrInvalidLayout
}

type ContextCreationError struct {
	Backend string
	Err     error
}

func (e *ContextCreationError) Error() string {
	return fmt.Sprintf("failed to create %s context: %v", e.Backend, e.Err)
}

func (e *ContextCreationError) Unwrap() []error {
	return []error{ErrContextCreation, e.Err}
}
