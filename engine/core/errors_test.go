package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShaderCompilationError(t *testing.T) {
	var err error = &ShaderCompilationError{Stage: ShaderStageFragment, Log: "0:3: 'foo' : undeclared identifier\n"}

	assert.ErrorIs(t, err, ErrShaderCompilation)
	assert.Equal(t, "fragment shader: 0:3: 'foo' : undeclared identifier", err.Error())

	var sce *ShaderCompilationError
	wrapped := fmt.Errorf("effect lit: %w", err)
	assert.True(t, errors.As(wrapped, &sce))
	assert.Equal(t, ShaderStageFragment, sce.Stage)
}

func TestContextCreationErrorMatchesBoth(t *testing.T) {
	cause := errors.New("no display")
	err := &ContextCreationError{Backend: "opengl", Err: cause}

	assert.ErrorIs(t, err, ErrContextCreation)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "opengl")
}

func TestTypedErrorsUnwrap(t *testing.T) {
	assert.ErrorIs(t, &UnsupportedFormatError{Format: "BGR"}, ErrUnsupportedFormat)
	assert.ErrorIs(t, &InvalidLayoutError{Slots: []uint32{0, 2}, Reason: "gap"}, ErrInvalidLayout)
	assert.NotErrorIs(t, &InvalidLayoutError{}, ErrUnsupportedFormat)
}
