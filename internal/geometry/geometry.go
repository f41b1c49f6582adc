// Package geometry maps rectangles and points between natural asset space,
// viewport (canvas) space and fractional space.
package geometry

import (
	"image"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Size is the width and height of an asset or canvas in pixels.
type Size struct {
	Width  float64
	Height float64
}

// Known reports whether both dimensions are positive.
func (s Size) Known() bool { return s.Width > 0 && s.Height > 0 }

// OrPlaceholder returns s, or a 1×1 size when s is unknown.
func (s Size) OrPlaceholder() Size {
	if !s.Known() {
		return Size{Width: 1, Height: 1}
	}
	return s
}

// Vec returns the size as a vector.
func (s Size) Vec() r2.Vec { return r2.Vec{X: s.Width, Y: s.Height} }

// Rect is an axis aligned rectangle. Width and Height may be negative while a
// rectangle is being dragged out.
type Rect struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Min returns the top-left corner as stored.
func (r Rect) Min() r2.Vec { return r2.Vec{X: r.X, Y: r.Y} }

// Max returns the corner opposite Min.
func (r Rect) Max() r2.Vec { return r2.Vec{X: r.X + r.Width, Y: r.Y + r.Height} }

// Center returns the midpoint of r.
func (r Rect) Center() r2.Vec { return r.Box().Center() }

// Box converts r into a canonical gonum box.
func (r Rect) Box() r2.Box {
	return r2.Box{Min: r.Min(), Max: r.Max()}.Canon()
}

// FromBox builds a Rect from a gonum box.
func FromBox(b r2.Box) Rect {
	b = b.Canon()
	return Rect{X: b.Min.X, Y: b.Min.Y, Width: b.Max.X - b.Min.X, Height: b.Max.Y - b.Min.Y}
}

// Canon returns r with non-negative width and height.
func (r Rect) Canon() Rect { return FromBox(r.Box()) }

// Valid reports whether r is finite with a strictly positive size.
func (r Rect) Valid() bool {
	for _, v := range []float64{r.X, r.Y, r.Width, r.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return r.Width > 0 && r.Height > 0
}

// Inset grows r by d on every side (shrinks for negative d).
func (r Rect) Inset(d float64) Rect {
	return Rect{X: r.X - d, Y: r.Y - d, Width: r.Width + 2*d, Height: r.Height + 2*d}
}

// Hit reports whether p falls inside r expanded by padding. Rectangles with a
// negative width or height are handled in either orientation.
func (r Rect) Hit(p r2.Vec, padding float64) bool {
	x0, x1 := r.X, r.X+r.Width
	y0, y1 := r.Y, r.Y+r.Height
	inX := (p.X > x0-padding && p.X < x1+padding) || (p.X < x0+padding && p.X > x1-padding)
	inY := (p.Y > y0-padding && p.Y < y1+padding) || (p.Y < y0+padding && p.Y > y1-padding)
	return inX && inY
}

// Image rounds r to an integer rectangle.
func (r Rect) Image() image.Rectangle {
	c := r.Canon()
	return image.Rect(
		int(math.Round(c.X)), int(math.Round(c.Y)),
		int(math.Round(c.X+c.Width)), int(math.Round(c.Y+c.Height)),
	)
}

// Unit selects how a mark's numbers are interpreted.
type Unit string

const (
	// UnitAuto infers the unit from the magnitude of the size.
	UnitAuto Unit = ""
	// UnitFraction means coordinates are fractions of the asset size.
	UnitFraction Unit = "fraction"
	// UnitAbsolute means coordinates are natural asset pixels.
	UnitAbsolute Unit = "absolute"
)

// IsFractional is the magnitude heuristic: a rectangle whose width and height
// are both in (0,1) is a fraction of the asset.
func IsFractional(r Rect) bool {
	return r.Width < 1 && r.Height < 1 && r.Width > 0 && r.Height > 0
}

// Fractional resolves u for r. An explicit unit always wins.
func (u Unit) Fractional(r Rect) bool {
	switch u {
	case UnitFraction:
		return true
	case UnitAbsolute:
		return false
	}
	return IsFractional(r)
}

// ToViewportNoOffset resolves fractional rectangles against the asset size
// without applying pan or zoom.
func ToViewportNoOffset(r Rect, u Unit, asset Size) Rect {
	if !u.Fractional(r) {
		return r
	}
	return Rect{
		X:      r.X * asset.Width,
		Y:      r.Y * asset.Height,
		Width:  r.Width * asset.Width,
		Height: r.Height * asset.Height,
	}
}

// FromViewportNoOffset is the inverse of ToViewportNoOffset.
func FromViewportNoOffset(r Rect, fractional bool, asset Size) Rect {
	if !fractional || !asset.Known() {
		return r
	}
	return Rect{
		X:      r.X / asset.Width,
		Y:      r.Y / asset.Height,
		Width:  r.Width / asset.Width,
		Height: r.Height / asset.Height,
	}
}

// ToViewport maps a mark rectangle onto the canvas.
func ToViewport(r Rect, u Unit, asset Size, vp Viewport) Rect {
	return vp.Apply(ToViewportNoOffset(r, u, asset))
}

// FromViewport maps a canvas rectangle back to mark units.
func FromViewport(r Rect, fractional bool, asset Size, vp Viewport) Rect {
	return FromViewportNoOffset(vp.Invert(r), fractional, asset)
}

// Viewport is the pan and zoom applied to natural asset space.
type Viewport struct {
	Scale   float64
	OriginX float64
	OriginY float64
}

// Identity is the viewport with no pan and unit zoom.
var Identity = Viewport{Scale: 1}

// Origin returns the canvas position of the asset origin.
func (vp Viewport) Origin() r2.Vec { return r2.Vec{X: vp.OriginX, Y: vp.OriginY} }

// Apply maps a natural-space rectangle to canvas space.
func (vp Viewport) Apply(r Rect) Rect {
	return Rect{
		X:      r.X*vp.Scale + vp.OriginX,
		Y:      r.Y*vp.Scale + vp.OriginY,
		Width:  r.Width * vp.Scale,
		Height: r.Height * vp.Scale,
	}
}

// Invert maps a canvas rectangle to natural space.
func (vp Viewport) Invert(r Rect) Rect {
	if vp.Scale == 0 {
		return r
	}
	return Rect{
		X:      (r.X - vp.OriginX) / vp.Scale,
		Y:      (r.Y - vp.OriginY) / vp.Scale,
		Width:  r.Width / vp.Scale,
		Height: r.Height / vp.Scale,
	}
}

// ToAsset converts a canvas point (pointer position) into natural space.
func (vp Viewport) ToAsset(p r2.Vec) r2.Vec {
	if vp.Scale == 0 {
		return p
	}
	return r2.Scale(1/vp.Scale, r2.Sub(p, vp.Origin()))
}

// ToCanvas converts a natural-space point into canvas space.
func (vp Viewport) ToCanvas(p r2.Vec) r2.Vec {
	return r2.Add(r2.Scale(vp.Scale, p), vp.Origin())
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
