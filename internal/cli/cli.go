// Package cli holds the flag handling shared by the tutorial programs.
package cli

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/primer"
)

// Flags are the options every program accepts. Every program also runs
// with none of them.
type Flags struct {
	Config  string
	Verbose bool
	Width   int
	Height  int
}

// Register defines the shared flags on fs.
func Register(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Config, "config", "", "TOML file overriding the built-in settings")
	fs.BoolVar(&f.Verbose, "v", false, "log debug output to stderr")
	fs.IntVar(&f.Width, "width", 0, "window width override")
	fs.IntVar(&f.Height, "height", 0, "window height override")
	return f
}

// Apply layers the flags over base: the config file first, then the size
// overrides. The result is validated.
func (f *Flags) Apply(base primer.Config) (primer.Config, error) {
	cfg := base
	if f.Config != "" {
		loaded, err := primer.LoadConfig(f.Config, base)
		if err != nil {
			return base, err
		}
		cfg = loaded
	}
	if f.Width > 0 {
		cfg.Width = f.Width
	}
	if f.Height > 0 {
		cfg.Height = f.Height
	}
	if err := cfg.Validate(); err != nil {
		return base, err
	}
	return cfg, nil
}

// Logger returns the logger selected by -v, or nil for silence.
func (f *Flags) Logger() *slog.Logger {
	if !f.Verbose {
		return nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// Parse parses the command line into base and installs the logger. Bad
// flags or config exit the program.
func Parse(base primer.Config) primer.Config {
	f := Register(flag.CommandLine)
	flag.Parse()

	primer.SetLogger(f.Logger())
	cfg, err := f.Apply(base)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}
