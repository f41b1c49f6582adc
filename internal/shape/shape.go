// Package shape wraps annotations in live, paintable shapes and provides the
// resize handles drawn around the active one.
package shape

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/example/annoview/internal/annotation"
	"github.com/example/annoview/internal/geometry"
)

// Host is the owner of a shape.
type Host interface {
	// AssetSize is the natural size of the displayed asset.
	AssetSize() geometry.Size
	// ShapeChanged is called after every geometry mutation.
	ShapeChanged()
}

// Project maps a mark to a rectangle in some target space.
type Project func(annotation.Mark) geometry.Rect

// Shape is the live counterpart of one annotation.
type Shape struct {
	a    *annotation.Annotation
	host Host

	hovered  bool
	dragging bool
	offset   r2.Vec
}

// New wraps a. The shape mutates a in place.
func New(a *annotation.Annotation, host Host) *Shape {
	return &Shape{a: a, host: host}
}

// ID returns the annotation id.
func (s *Shape) ID() string { return s.a.ID }

// Annotation returns the wrapped annotation.
func (s *Shape) Annotation() *annotation.Annotation { return s.a }

// Hovered reports the hover flag.
func (s *Shape) Hovered() bool { return s.hovered }

// Dragging reports whether DragStart was called without a matching DragEnd.
func (s *Shape) Dragging() bool { return s.dragging }

func (s *Shape) asset() geometry.Size { return s.host.AssetSize().OrPlaceholder() }

// DragStart records the offset between p, a point in natural asset space,
// and the mark origin.
func (s *Shape) DragStart(p r2.Vec) {
	m := s.a.Mark
	if m.Fractional() {
		sz := s.asset()
		p = r2.Vec{X: p.X / sz.Width, Y: p.Y / sz.Height}
	}
	s.offset = r2.Sub(p, m.Min())
	s.dragging = true
}

// Drag moves the mark so the recorded offset stays under p. It does nothing
// unless a drag was started.
func (s *Shape) Drag(p r2.Vec) {
	if !s.dragging {
		return
	}
	if s.a.Mark.Fractional() {
		sz := s.asset()
		p = r2.Vec{X: p.X / sz.Width, Y: p.Y / sz.Height}
	}
	at := r2.Sub(p, s.offset)
	s.a.Mark.X, s.a.Mark.Y = at.X, at.Y
	s.host.ShapeChanged()
}

// DragEnd forgets the drag offset.
func (s *Shape) DragEnd() {
	s.dragging = false
	s.offset = r2.Vec{}
}

// Hit reports whether p lies on the mark, projected with project and grown
// by padding.
func (s *Shape) Hit(p r2.Vec, project Project, padding float64) bool {
	return project(s.a.Mark).Hit(p, padding)
}

// Hover sets the hover flag and reports whether it changed.
func (s *Shape) Hover(on bool) bool {
	if s.hovered == on {
		return false
	}
	s.hovered = on
	return true
}

// Adjustment replaces some of a mark's geometry. Nil fields keep their value.
type Adjustment struct {
	X, Y, Width, Height *float64
}

// AdjustTo is an Adjustment replacing the whole rectangle.
func AdjustTo(r geometry.Rect) Adjustment {
	return Adjustment{X: &r.X, Y: &r.Y, Width: &r.Width, Height: &r.Height}
}

// Adjust applies adj when the result has a positive, finite size. It reports
// whether the mark changed.
func (s *Shape) Adjust(adj Adjustment) bool {
	r := s.a.Mark.Rect
	pick := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	pick(&r.X, adj.X)
	pick(&r.Y, adj.Y)
	pick(&r.Width, adj.Width)
	pick(&r.Height, adj.Height)
	if !r.Valid() {
		return false
	}
	s.a.Mark.Rect = r
	s.host.ShapeChanged()
	return true
}

// Resize sets the mark geometry without the size guard. Used while a new
// mark is being dragged out.
func (s *Shape) Resize(r geometry.Rect) {
	for _, v := range []float64{r.X, r.Y, r.Width, r.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return
		}
	}
	s.a.Mark.Rect = r
	s.host.ShapeChanged()
}

// SetComment replaces the annotation comment.
func (s *Shape) SetComment(comment string) {
	s.a.Comment = comment
}

// Equal compares identity, comment and geometry with a.
func (s *Shape) Equal(a annotation.Annotation) bool {
	return a.ID == s.a.ID &&
		a.Comment == s.a.Comment &&
		a.Mark.X == s.a.Mark.X &&
		a.Mark.Y == s.a.Mark.Y &&
		a.Mark.Width == s.a.Mark.Width &&
		a.Mark.Height == s.a.Mark.Height
}
