package primer

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// ShaderFormat selects how embedded shaders are handed to the device.
type ShaderFormat string

const (
	// ShaderWGSL passes WGSL source to the backend, which compiles it.
	ShaderWGSL ShaderFormat = "wgsl"

	// ShaderSPIRV passes the SPIR-V modules pre-baked from the embedded
	// WGSL.
	ShaderSPIRV ShaderFormat = "spirv"
)

// Default window and text settings.
const (
	DefaultWidth          = 800
	DefaultHeight         = 600
	DefaultTitle          = "Vulkan Triangle"
	DefaultFramesInFlight = 2
	MaxFramesInFlight     = 3
	DefaultFontSize       = 32
	DefaultText           = "Hello Vulkan!"
)

// Layers selects what gets drawn each frame. Layers are composited in
// declaration order: triangle, quad, text, then the GUI overlay on top.
type Layers struct {
	Triangle bool `toml:"triangle"`
	Quad     bool `toml:"quad"`
	Text     bool `toml:"text"`
	Overlay  bool `toml:"overlay"`
}

// TextConfig configures the bitmap text layer.
type TextConfig struct {
	// Content is the string to render.
	Content string `toml:"content"`

	// FontPath is a TrueType/OpenType file. Empty selects the embedded
	// Go Regular font.
	FontPath string `toml:"font_path"`

	// Size is the pixel height the font is baked at.
	Size float64 `toml:"size"`

	// X and Y position the top-left of the first line in pixels.
	X float64 `toml:"x"`
	Y float64 `toml:"y"`

	// UpsideDown renders the text flipped vertically.
	UpsideDown bool `toml:"upside_down"`

	// Color is the RGBA tint applied to the glyph coverage.
	Color [4]float64 `toml:"color"`
}

// Config describes one tutorial program: its window, the frame pacing,
// and which layers it draws.
type Config struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`

	// Resizable recreates the swapchain when the window size changes.
	// When false the window is fixed-size and the initial extent is kept.
	Resizable bool `toml:"resizable"`

	// FramesInFlight bounds how many submitted frames may be pending on
	// the GPU at once (1..MaxFramesInFlight).
	FramesInFlight int `toml:"frames_in_flight"`

	// VSync selects FIFO presentation. When false, mailbox is requested.
	VSync bool `toml:"vsync"`

	ClearColor   [4]float64   `toml:"clear_color"`
	ShaderFormat ShaderFormat `toml:"shader_format"`
	Layers       Layers       `toml:"layers"`
	Text         TextConfig   `toml:"text"`
}

// DefaultConfig returns the settings shared by every tutorial program: an
// 800x600 window cleared to opaque black, drawing the triangle.
func DefaultConfig() Config {
	return Config{
		Title:          DefaultTitle,
		Width:          DefaultWidth,
		Height:         DefaultHeight,
		Resizable:      false,
		FramesInFlight: DefaultFramesInFlight,
		VSync:          true,
		ClearColor:     [4]float64{0, 0, 0, 1},
		ShaderFormat:   ShaderSPIRV,
		Layers:         Layers{Triangle: true},
		Text: TextConfig{
			Content: DefaultText,
			Size:    DefaultFontSize,
			X:       0,
			Y:       0,
			Color:   [4]float64{1, 1, 1, 1},
		},
	}
}

// LoadConfig reads a TOML file on top of base. Keys absent from the
// file keep base's values.
func LoadConfig(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data, base)
}

// ParseConfig decodes TOML data on top of base and validates the result.
func ParseConfig(data []byte, base Config) (Config, error) {
	cfg := base
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return base, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return base, err
	}
	return cfg, nil
}

// Marshal encodes the config as TOML.
func (c Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// Validate checks that the config can be used to open a window.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.FramesInFlight < 1 || c.FramesInFlight > MaxFramesInFlight {
		return fmt.Errorf("%w: frames_in_flight=%d (want 1..%d)",
			ErrInvalidConfig, c.FramesInFlight, MaxFramesInFlight)
	}
	switch c.ShaderFormat {
	case ShaderWGSL, ShaderSPIRV:
	default:
		return fmt.Errorf("%w: shader_format=%q", ErrInvalidConfig, c.ShaderFormat)
	}
	if c.Layers.Text && c.Text.Size <= 0 {
		return fmt.Errorf("%w: text size %v", ErrInvalidConfig, c.Text.Size)
	}
	return nil
}

// Extent returns the configured window size as an Extent.
func (c Config) Extent() Extent {
	return NewExtent(c.Width, c.Height)
}
