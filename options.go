package primer

// Option adjusts a Config. Tutorial programs build their config from
// DefaultConfig plus a handful of options.
//
// Example:
//
//	cfg := primer.New(
//	    primer.WithTitle("Vulkan Triangle"),
//	    primer.WithResizable(true),
//	)
type Option func(*Config)

// New returns DefaultConfig with opts applied in order.
func New(opts ...Option) Config {
	cfg := DefaultConfig()
	cfg.Apply(opts...)
	return cfg
}

// Apply applies opts to c in order.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
}

// WithTitle sets the window title.
func WithTitle(title string) Option {
	return func(c *Config) {
		c.Title = title
	}
}

// WithSize sets the initial window size in pixels.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithResizable enables swapchain recreation on window resize.
func WithResizable(resizable bool) Option {
	return func(c *Config) {
		c.Resizable = resizable
	}
}

// WithFramesInFlight sets how many frames may be queued on the GPU.
func WithFramesInFlight(n int) Option {
	return func(c *Config) {
		c.FramesInFlight = n
	}
}

// WithLayers replaces the set of drawn layers.
func WithLayers(l Layers) Option {
	return func(c *Config) {
		c.Layers = l
	}
}

// WithText enables the text layer and sets its content.
func WithText(content string) Option {
	return func(c *Config) {
		c.Layers.Text = true
		c.Text.Content = content
	}
}

// WithFont selects the font file and pixel size for the text layer.
// An empty path keeps the embedded font.
func WithFont(path string, size float64) Option {
	return func(c *Config) {
		c.Text.FontPath = path
		c.Text.Size = size
	}
}

// WithUpsideDown flips the text layer vertically.
func WithUpsideDown(flip bool) Option {
	return func(c *Config) {
		c.Text.UpsideDown = flip
	}
}

// WithClearColor sets the RGBA color each frame is cleared to.
func WithClearColor(r, g, b, a float64) Option {
	return func(c *Config) {
		c.ClearColor = [4]float64{r, g, b, a}
	}
}

// WithShaderFormat selects WGSL or SPIR-V shader modules.
func WithShaderFormat(f ShaderFormat) Option {
	return func(c *Config) {
		c.ShaderFormat = f
	}
}
