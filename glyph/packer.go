package glyph

import "fmt"

// DefaultPadding is the spacing kept between packed glyphs and shelves,
// so linear filtering never samples a neighbour.
const DefaultPadding = 1

// Region is a rectangle inside the atlas bitmap.
type Region struct {
	X, Y          int
	Width, Height int
}

// IsValid reports whether the region has a non-zero area.
func (r Region) IsValid() bool {
	return r.Width > 0 && r.Height > 0
}

// Overlaps reports whether two regions share any pixel.
func (r Region) Overlaps(o Region) bool {
	return r.X < o.X+o.Width && o.X < r.X+r.Width &&
		r.Y < o.Y+o.Height && o.Y < r.Y+r.Height
}

func (r Region) String() string {
	return fmt.Sprintf("Region(%d,%d %dx%d)", r.X, r.Y, r.Width, r.Height)
}

// shelf is one horizontal row of the packer.
type shelf struct {
	y      int // top edge
	height int // tallest item so far, padding included
	nextX  int // next free column
}

// Packer places rectangles into a fixed area using shelf packing: items go
// left to right on the current shelf, and a new shelf opens below the last
// one when nothing fits.
//
// Packer is not safe for concurrent use. Baking is single-shot.
type Packer struct {
	width   int
	height  int
	padding int
	shelves []shelf

	count    int
	usedArea int
}

// NewPacker creates a packer for a width x height area.
func NewPacker(width, height, padding int) *Packer {
	if padding < 0 {
		padding = 0
	}
	return &Packer{
		width:   width,
		height:  height,
		padding: padding,
		shelves: make([]shelf, 0, 16),
	}
}

// Allocate finds space for a width x height rectangle.
// It returns an invalid region when the rectangle does not fit.
func (p *Packer) Allocate(width, height int) Region {
	if width <= 0 || height <= 0 {
		return Region{}
	}

	pw := width + p.padding
	ph := height + p.padding
	if pw > p.width || ph > p.height {
		return Region{}
	}

	for i := range p.shelves {
		s := &p.shelves[i]
		// Shelves are opened with their first item, so their height is fixed.
		if s.nextX+pw > p.width || ph > s.height {
			continue
		}
		r := Region{X: s.nextX, Y: s.y, Width: width, Height: height}
		s.nextX += pw
		p.count++
		p.usedArea += width * height
		return r
	}

	y := 0
	if n := len(p.shelves); n > 0 {
		last := p.shelves[n-1]
		y = last.y + last.height
	}
	if y+ph > p.height {
		return Region{}
	}
	p.shelves = append(p.shelves, shelf{y: y, height: ph, nextX: pw})
	p.count++
	p.usedArea += width * height
	return Region{X: 0, Y: y, Width: width, Height: height}
}

// Reset makes the whole area available again.
func (p *Packer) Reset() {
	p.shelves = p.shelves[:0]
	p.count = 0
	p.usedArea = 0
}

// Count returns the number of successful allocations.
func (p *Packer) Count() int { return p.count }

// Utilization returns the fraction of the area covered by allocations.
func (p *Packer) Utilization() float64 {
	total := p.width * p.height
	if total == 0 {
		return 0
	}
	return float64(p.usedArea) / float64(total)
}
