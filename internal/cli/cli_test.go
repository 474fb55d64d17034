package cli

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/primer"
)

func parse(t *testing.T, args ...string) *Flags {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := Register(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse(%v) error = %v", args, err)
	}
	return f
}

func TestApplyDefaults(t *testing.T) {
	base := primer.DefaultConfig()
	cfg, err := parse(t).Apply(base)
	if err != nil {
		t.Fatal(err)
	}
	if cfg != base {
		t.Errorf("no flags changed the config: %+v", cfg)
	}
	if parse(t).Logger() != nil {
		t.Error("logging should be off without -v")
	}
}

func TestApplySizeAndVerbose(t *testing.T) {
	f := parse(t, "-v", "-width", "1024", "-height", "768")
	cfg, err := f.Apply(primer.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 1024 || cfg.Height != 768 {
		t.Errorf("size = %dx%d, want 1024x768", cfg.Width, cfg.Height)
	}
	if f.Logger() == nil {
		t.Error("-v should return a logger")
	}
}

func TestApplyConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "primer.toml")
	data := []byte("title = \"From File\"\nresizable = true\n\n[layers]\nquad = true\ntriangle = true\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := parse(t, "-config", path, "-width", "320").Apply(primer.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Title != "From File" || !cfg.Resizable || !cfg.Layers.Quad {
		t.Errorf("file settings not applied: %+v", cfg)
	}
	if cfg.Width != 320 || cfg.Height != primer.DefaultHeight {
		t.Errorf("size = %dx%d, want 320x%d", cfg.Width, cfg.Height, primer.DefaultHeight)
	}
}

func TestApplyErrors(t *testing.T) {
	if _, err := parse(t, "-config", filepath.Join(t.TempDir(), "missing.toml")).Apply(primer.DefaultConfig()); err == nil {
		t.Error("missing config file should fail")
	}

	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("frames_in_flight = 7\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := parse(t, "-config", path).Apply(primer.DefaultConfig())
	if !errors.Is(err, primer.ErrInvalidConfig) {
		t.Errorf("Apply error = %v, want ErrInvalidConfig", err)
	}
}
