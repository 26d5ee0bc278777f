package launcher

import (
	"strings"

	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
)

// GeometrySpec fixes the launcher window size limits. Heights are in rows and
// include Margins, the rows taken by the frame.
type GeometrySpec struct {
	Width     int
	MinHeight int
	MaxHeight int
	Margins   int
}

// horizontal space taken by the frame and padding
const framePadding = 4

func DefaultGeometry() GeometrySpec {
	return GeometrySpec{
		Width:     72,
		MinHeight: 3,
		MaxHeight: 20,
		Margins:   2,
	}
}

// Geometry tracks the window height derived from content height, and the
// scroll offset used once content overflows the maximum height.
type Geometry struct {
	spec     GeometrySpec
	maxWidth int

	content  int
	height   int
	overflow bool
	offset   int
}

func NewGeometry(spec GeometrySpec) *Geometry {
	if spec.MinHeight < spec.Margins+1 {
		spec.MinHeight = spec.Margins + 1
	}
	if spec.MaxHeight < spec.MinHeight {
		spec.MaxHeight = spec.MinHeight
	}
	return &Geometry{spec: spec, height: spec.MinHeight}
}

// Remeasure resizes the window for contentHeight rows of text and reports
// whether overflow scrolling is needed.
func (g *Geometry) Remeasure(contentHeight int) (height int, overflow bool) {
	g.content = contentHeight
	desired := contentHeight + g.spec.Margins
	g.height = clamp(desired, g.spec.MinHeight, g.spec.MaxHeight)
	g.overflow = desired > g.spec.MaxHeight
	if !g.overflow {
		g.offset = 0
	} else {
		g.offset = clamp(g.offset, 0, g.maxOffset())
	}
	return g.height, g.overflow
}

// Measure returns the number of rows text occupies at the current width.
func (g *Geometry) Measure(text string) int {
	return strings.Count(Wrap(text, g.TextWidth()), "\n") + 1
}

// SetMaxWidth caps the window width, e.g. to the terminal width.
func (g *Geometry) SetMaxWidth(cols int) {
	g.maxWidth = cols
}

func (g *Geometry) Width() int {
	if g.maxWidth > 0 && g.maxWidth < g.spec.Width {
		return g.maxWidth
	}
	return g.spec.Width
}

func (g *Geometry) TextWidth() int {
	return max(g.Width()-framePadding, 1)
}

func (g *Geometry) Height() int     { return g.height }
func (g *Geometry) Overflow() bool  { return g.overflow }
func (g *Geometry) Offset() int     { return g.offset }
func (g *Geometry) Content() int    { return g.content }
func (g *Geometry) ViewHeight() int { return max(g.height-g.spec.Margins, 1) }

// ScrollBy moves the scroll offset by delta rows. It does nothing unless
// overflow scrolling is active.
func (g *Geometry) ScrollBy(delta int) {
	if !g.overflow {
		return
	}
	g.offset = clamp(g.offset+delta, 0, g.maxOffset())
}

// ScrollTo puts row at the top of the view.
func (g *Geometry) ScrollTo(row int) {
	if !g.overflow {
		g.offset = 0
		return
	}
	g.offset = clamp(row, 0, g.maxOffset())
}

func (g *Geometry) maxOffset() int {
	return max(g.content-g.ViewHeight(), 0)
}

// Wrap word-wraps text at width and hard-wraps words longer than width. It is
// ANSI aware, so styled and plain text wrap to the same rows.
func Wrap(text string, width int) string {
	return wrap.String(wordwrap.String(text, width), width)
}
