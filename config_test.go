package primer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
	if cfg.Width != 800 || cfg.Height != 600 {
		t.Errorf("default size = %dx%d, want 800x600", cfg.Width, cfg.Height)
	}
	if cfg.ClearColor != [4]float64{0, 0, 0, 1} {
		t.Errorf("default clear color = %v, want opaque black", cfg.ClearColor)
	}
	if !cfg.Layers.Triangle || cfg.Layers.Quad || cfg.Layers.Overlay {
		t.Errorf("default layers = %+v, want triangle only", cfg.Layers)
	}
}

func TestParseConfigOverridesDefaults(t *testing.T) {
	data := []byte(`
title = "Resizable"
width = 1024
resizable = true
frames_in_flight = 3

[layers]
triangle = true
quad = true
overlay = true

[text]
content = "abc"
upside_down = true
`)
	cfg, err := ParseConfig(data, DefaultConfig())
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.Title != "Resizable" {
		t.Errorf("Title = %q, want %q", cfg.Title, "Resizable")
	}
	if cfg.Width != 1024 {
		t.Errorf("Width = %d, want 1024", cfg.Width)
	}
	if cfg.Height != DefaultHeight {
		t.Errorf("Height = %d, want default %d", cfg.Height, DefaultHeight)
	}
	if !cfg.Resizable || cfg.FramesInFlight != 3 {
		t.Errorf("Resizable=%v FramesInFlight=%d", cfg.Resizable, cfg.FramesInFlight)
	}
	if !cfg.Layers.Quad || !cfg.Layers.Overlay {
		t.Errorf("Layers = %+v", cfg.Layers)
	}
	if cfg.Text.Content != "abc" || !cfg.Text.UpsideDown {
		t.Errorf("Text = %+v", cfg.Text)
	}
	if cfg.Text.Size != DefaultFontSize {
		t.Errorf("Text.Size = %v, want default %v", cfg.Text.Size, DefaultFontSize)
	}
}

func TestParseConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax", "width = "},
		{"zero width", "width = 0"},
		{"too many frames", "frames_in_flight = 4"},
		{"no frames", "frames_in_flight = 0"},
		{"shader format", `shader_format = "dxil"`},
		{"text size", "[layers]\ntext = true\n[text]\nsize = 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := DefaultConfig()
			cfg, err := ParseConfig([]byte(tt.data), base)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("ParseConfig() error = %v, want ErrInvalidConfig", err)
			}
			if cfg.Width != base.Width || cfg.FramesInFlight != base.FramesInFlight {
				t.Error("ParseConfig should return base on error")
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "primer.toml")
	if err := os.WriteFile(path, []byte("height = 480\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path, DefaultConfig())
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Height != 480 {
		t.Errorf("Height = %d, want 480", cfg.Height)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"), DefaultConfig()); err == nil {
		t.Error("LoadConfig on missing file should fail")
	}
}

func TestConfigMarshalRoundTrip(t *testing.T) {
	cfg := New(WithTitle("round trip"), WithLayers(Layers{Quad: true, Overlay: true}))
	data, err := cfg.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	got, err := ParseConfig(data, Config{})
	if err != nil {
		t.Fatalf("ParseConfig(Marshal()) error = %v", err)
	}
	if got.Title != cfg.Title || got.Layers != cfg.Layers || got.Text != cfg.Text {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, cfg)
	}
}
