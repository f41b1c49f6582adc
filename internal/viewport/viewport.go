// Package viewport owns the pan and zoom state of the canvas.
package viewport

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/example/annoview/internal/geometry"
)

const (
	MinScale = 0.1
	MaxScale = 10
	// ZoomStep is the relative change applied by ZoomIn and ZoomOut.
	ZoomStep = 0.2
	// DefaultFocusScale is the scale ZoomTo uses when none is given.
	DefaultFocusScale = 0.5
	// DefaultWheelModifier converts wheel deltas to scale changes.
	DefaultWheelModifier = 0.001
	// DefaultPinchModifier converts pinch length changes to scale changes.
	DefaultPinchModifier = 0.001
)

// Controller tracks scale and origin together with the canvas and asset
// sizes they relate.
type Controller struct {
	geometry.Viewport
	Canvas geometry.Size
	Asset  geometry.Size
}

// New returns a controller at unit scale.
func New() *Controller {
	return &Controller{Viewport: geometry.Identity}
}

func clampScale(s float64) float64 {
	if math.IsNaN(s) {
		return 1
	}
	return geometry.Clamp(s, MinScale, MaxScale)
}

// preClamp pulls an out of range scale back into range. It reports whether it
// had to, in which case the pending step is skipped.
func (c *Controller) preClamp() bool {
	switch {
	case c.Scale > MaxScale:
		c.Scale = MaxScale
	case c.Scale < MinScale:
		c.Scale = MinScale
	default:
		return false
	}
	return true
}

// SetScale sets the scale without moving the origin.
func (c *Controller) SetScale(s float64) {
	c.Scale = clampScale(s)
}

// ZoomIn grows the scale by ZoomStep.
func (c *Controller) ZoomIn() {
	if c.preClamp() {
		return
	}
	c.Scale = clampScale(c.Scale + c.Scale*ZoomStep)
}

// ZoomOut shrinks the scale by ZoomStep.
func (c *Controller) ZoomOut() {
	if c.preClamp() {
		return
	}
	c.Scale = clampScale(c.Scale - c.Scale*ZoomStep)
}

// ZoomAround changes the scale while keeping the asset point under p fixed.
func (c *Controller) ZoomAround(p r2.Vec, scale float64) {
	old := c.Scale
	scale = clampScale(scale)
	if old == 0 {
		c.Scale = scale
		return
	}
	origin := r2.Sub(p, r2.Scale(scale/old, r2.Sub(p, c.Origin())))
	c.OriginX, c.OriginY = origin.X, origin.Y
	c.Scale = scale
}

// Wheel applies a wheel event at canvas point at. With ctrl held it zooms by
// -delta.Y*modifier around at, otherwise it pans by twice the delta.
func (c *Controller) Wheel(delta, at r2.Vec, ctrl bool, modifier float64) {
	if !ctrl {
		c.Pan(-2*delta.X, -2*delta.Y)
		return
	}
	if modifier == 0 {
		modifier = DefaultWheelModifier
	}
	prev := c.Scale
	if !c.preClamp() {
		c.Scale = clampScale(c.Scale - delta.Y*modifier)
	}
	next := c.Scale
	c.Scale = prev
	c.ZoomAround(at, next)
}

// Pinch zooms around the midpoint of a two finger gesture. lastLength is the
// finger distance of the previous event, zero on the first one.
func (c *Controller) Pinch(mid r2.Vec, length, lastLength, modifier float64) {
	if modifier == 0 {
		modifier = DefaultPinchModifier
	}
	scale := c.Scale
	if lastLength != 0 {
		scale += (length - lastLength) * modifier
	}
	c.ZoomAround(mid, scale)
}

// Pan moves the origin by dx, dy canvas pixels.
func (c *Controller) Pan(dx, dy float64) {
	c.OriginX += dx
	c.OriginY += dy
}

// PanFrom places the origin at origin moved by the pointer travel from start
// to p.
func (c *Controller) PanFrom(start, origin, p r2.Vec) {
	o := r2.Add(origin, r2.Sub(p, start))
	c.OriginX, c.OriginY = o.X, o.Y
}

// ZoomTo centres the canvas on box, given as fractions of the asset, at
// scale. A zero scale means DefaultFocusScale. The previous origin is
// ignored.
func (c *Controller) ZoomTo(box r2.Box, scale float64) {
	if scale == 0 {
		scale = DefaultFocusScale
	}
	scale = clampScale(scale)
	asset := c.Asset.OrPlaceholder()
	center := box.Canon().Center()
	c.Scale = scale
	c.OriginX = c.Canvas.Width/2 - scale*asset.Width*center.X
	c.OriginY = c.Canvas.Height/2 - scale*asset.Height*center.Y
}

// Fit returns the scale that fits the asset inside the canvas.
func Fit(asset, canvas geometry.Size) float64 {
	if !asset.Known() || !canvas.Known() {
		return 1
	}
	if asset.Height/asset.Width < canvas.Height/canvas.Width {
		return canvas.Width / asset.Width
	}
	return canvas.Height / asset.Height
}

// Reset fits and centres the asset. It does nothing until both sizes are
// known.
func (c *Controller) Reset() {
	if !c.Asset.Known() || !c.Canvas.Known() {
		return
	}
	scale := clampScale(Fit(c.Asset, c.Canvas))
	c.Scale = scale
	c.OriginX = (c.Canvas.Width - scale*c.Asset.Width) / 2
	c.OriginY = (c.Canvas.Height - scale*c.Asset.Height) / 2
}
