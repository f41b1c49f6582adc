package shape

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/example/annoview/internal/geometry"
	"github.com/example/annoview/internal/render"
	"github.com/example/annoview/internal/theme"
)

// HandleSize is the edge length of a resize handle in canvas pixels.
const HandleSize = 8

// Handle identifies one of the eight resize handles.
type Handle int

const (
	NoHandle Handle = iota - 1
	TopLeft
	Top
	TopRight
	Right
	BottomRight
	Bottom
	BottomLeft
	Left
)

var handleNames = [...]string{"tl", "t", "tr", "r", "br", "b", "bl", "l"}

func (h Handle) String() string {
	if h < TopLeft || h > Left {
		return "none"
	}
	return handleNames[h]
}

// edges reports which sides of the rectangle a handle moves.
func (h Handle) edges() (left, top, right, bottom bool) {
	switch h {
	case TopLeft:
		return true, true, false, false
	case Top:
		return false, true, false, false
	case TopRight:
		return false, true, true, false
	case Right:
		return false, false, true, false
	case BottomRight:
		return false, false, true, true
	case Bottom:
		return false, false, false, true
	case BottomLeft:
		return true, false, false, true
	case Left:
		return true, false, false, false
	}
	return
}

// Transformer resizes a single shape through its handles. A transformer is
// bound to one shape for its whole life.
type Transformer struct {
	shape    *Shape
	editable bool

	grabbed    Handle
	grab       r2.Vec
	startRect  geometry.Rect
	fractional bool
}

// NewTransformer binds a transformer to s.
func NewTransformer(s *Shape, editable bool) *Transformer {
	return &Transformer{shape: s, editable: editable, grabbed: NoHandle}
}

// ID returns the id of the bound shape.
func (t *Transformer) ID() string { return t.shape.ID() }

// Shape returns the bound shape.
func (t *Transformer) Shape() *Shape { return t.shape }

// Active reports whether a handle is held.
func (t *Transformer) Active() bool { return t.grabbed != NoHandle }

// Handles returns the handle boxes around the projected mark in the order
// tl, t, tr, r, br, b, bl, l.
func (t *Transformer) Handles(project Project) [8]geometry.Rect {
	r := project(t.shape.a.Mark).Canon()
	hs := float64(HandleSize) / 2
	cx, cy := r.X+r.Width/2, r.Y+r.Height/2
	x0, y0, x1, y1 := r.X, r.Y, r.X+r.Width, r.Y+r.Height
	at := func(x, y float64) geometry.Rect {
		return geometry.Rect{X: x - hs, Y: y - hs, Width: HandleSize, Height: HandleSize}
	}
	return [8]geometry.Rect{
		at(x0, y0), // tl
		at(cx, y0), // t
		at(x1, y0), // tr
		at(x1, cy), // r
		at(x1, y1), // br
		at(cx, y1), // b
		at(x0, y1), // bl
		at(x0, cy), // l
	}
}

// HandleAt returns the handle under p, a point in the projected space.
func (t *Transformer) HandleAt(p r2.Vec, project Project) Handle {
	for i, hr := range t.Handles(project) {
		if hr.Hit(p, 0) {
			return Handle(i)
		}
	}
	return NoHandle
}

// Hit reports whether p is on any handle.
func (t *Transformer) Hit(p r2.Vec, project Project) bool {
	return t.HandleAt(p, project) != NoHandle
}

// Start grabs the handle under p. natural is the same pointer in natural
// asset space. It returns false when nothing was grabbed.
func (t *Transformer) Start(p, natural r2.Vec, project Project) bool {
	if !t.editable {
		return false
	}
	h := t.HandleAt(p, project)
	if h == NoHandle {
		return false
	}
	m := t.shape.a.Mark
	t.grabbed = h
	t.grab = natural
	t.fractional = m.Fractional()
	t.startRect = geometry.ToViewportNoOffset(m.Rect, m.Unit, t.shape.asset()).Canon()
	return true
}

// Transform moves the grabbed edges by the pointer travel since Start. The
// opposite edges stay fixed and the size never drops below one natural pixel.
func (t *Transformer) Transform(natural r2.Vec) bool {
	if t.grabbed == NoHandle {
		return false
	}
	d := r2.Sub(natural, t.grab)
	r := t.startRect
	x0, y0, x1, y1 := r.X, r.Y, r.X+r.Width, r.Y+r.Height
	left, top, right, bottom := t.grabbed.edges()
	if left {
		x0 = min(x0+d.X, x1-1)
	}
	if right {
		x1 = max(x1+d.X, x0+1)
	}
	if top {
		y0 = min(y0+d.Y, y1-1)
	}
	if bottom {
		y1 = max(y1+d.Y, y0+1)
	}
	next := geometry.Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
	next = geometry.FromViewportNoOffset(next, t.fractional, t.shape.asset())
	return t.shape.Adjust(AdjustTo(next))
}

// End releases the grabbed handle.
func (t *Transformer) End() {
	t.grabbed = NoHandle
}

// Paint draws the handles when the transformer is editable.
func (t *Transformer) Paint(c *render.Canvas, project Project, th *theme.Theme) {
	if !t.editable {
		return
	}
	for _, hr := range t.Handles(project) {
		r := hr.Image()
		c.FillRect(r, th.HandleFill)
		c.StrokeRect(r, th.HandleBorder, 1, 0)
	}
}

