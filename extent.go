package primer

import "fmt"

// Extent is a width/height pair in physical pixels.
type Extent struct {
	Width  uint32
	Height uint32
}

// NewExtent converts window-system sizes (which are signed) to an Extent.
// Negative values are treated as zero.
func NewExtent(width, height int) Extent {
	return Extent{Width: clampUint32(width), Height: clampUint32(height)}
}

// IsZero reports whether either dimension is zero. A zero extent cannot be
// rendered to and is what a minimized window reports.
func (e Extent) IsZero() bool {
	return e.Width == 0 || e.Height == 0
}

// Clamp restricts e to the [lo, hi] box component-wise, the same way a
// swapchain extent is fitted to the surface's min/max image extent.
// A zero component in hi means "unbounded".
func (e Extent) Clamp(lo, hi Extent) Extent {
	return Extent{
		Width:  clampDim(e.Width, lo.Width, hi.Width),
		Height: clampDim(e.Height, lo.Height, hi.Height),
	}
}

// Area returns Width*Height.
func (e Extent) Area() uint64 {
	return uint64(e.Width) * uint64(e.Height)
}

// Aspect returns Width/Height, or 0 for a zero extent.
func (e Extent) Aspect() float32 {
	if e.IsZero() {
		return 0
	}
	return float32(e.Width) / float32(e.Height)
}

func (e Extent) String() string {
	return fmt.Sprintf("%dx%d", e.Width, e.Height)
}

func clampDim(v, lo, hi uint32) uint32 {
	if v < lo {
		v = lo
	}
	if hi != 0 && v > hi {
		v = hi
	}
	return v
}

func clampUint32(v int) uint32 {
	if v < 0 {
		return 0
	}
	return uint32(v) //nolint:gosec // non-negative checked above
}
