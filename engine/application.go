package engine

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/solo/engine/core"
	"github.com/spaghettifunk/solo/engine/renderer/metadata"
)

// Setup is everything a Device needs at creation time. It is usually read
// from a TOML file with LoadSetup.
type Setup struct {
	// Backend the Device drives.
	Mode metadata.BackendMode `toml:"mode"`
	// Canvas width in pixels.
	CanvasWidth uint32 `toml:"canvas_width"`
	// Canvas height in pixels.
	CanvasHeight uint32 `toml:"canvas_height"`
	Fullscreen   bool   `toml:"fullscreen"`
	VSync        bool   `toml:"vsync"`
	// The window title, if applicable.
	WindowTitle string `toml:"window_title"`
	// Records are mirrored to this file when set.
	LogFilePath string `toml:"log_file"`
	LogLevel    string `toml:"log_level"`
	// Enables backend validation layers.
	Debug bool `toml:"debug"`
	// Root of the asset directory indexed by the asset manager.
	AssetsPath string `toml:"assets_path"`
}

func DefaultSetup() *Setup {
	return &Setup{
		Mode:         metadata.BackendOpenGL,
		CanvasWidth:  1280,
		CanvasHeight: 720,
		VSync:        true,
		WindowTitle:  "Solo",
		LogLevel:     string(core.LogLevelInfo),
		AssetsPath:   "assets",
	}
}

// LoadSetup reads path over DefaultSetup, so the file only needs the keys it
// changes.
func LoadSetup(path string) (*Setup, error) {
	setup := DefaultSetup()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read setup %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, setup); err != nil {
		return nil, fmt.Errorf("failed to parse setup %s: %w", path, err)
	}
	if err := setup.Validate(); err != nil {
		return nil, fmt.Errorf("invalid setup %s: %w", path, err)
	}
	return setup, nil
}

func (s *Setup) Validate() error {
	if s.CanvasWidth == 0 || s.CanvasHeight == 0 {
		return fmt.Errorf("canvas size must be positive, got %dx%d", s.CanvasWidth, s.CanvasHeight)
	}
	return nil
}

func (s *Setup) backendConfig() metadata.BackendConfig {
	return metadata.BackendConfig{
		Title:        s.WindowTitle,
		CanvasWidth:  s.CanvasWidth,
		CanvasHeight: s.CanvasHeight,
		Fullscreen:   s.Fullscreen,
		VSync:        s.VSync,
		Debug:        s.Debug,
	}
}
