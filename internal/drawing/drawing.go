// Package drawing converts freehand paint-layer strokes between display
// space and the asset-relative form they are stored in.
package drawing

import (
	"image/color"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/example/annoview/internal/geometry"
	"github.com/example/annoview/internal/render"
)

// StorageTolerance is the simplification tolerance, in display pixels, used
// when strokes are stored.
const StorageTolerance = 5

// Line is one freehand stroke.
type Line struct {
	Points      []r2.Vec   `json:"points" yaml:"points"`
	BrushColor  color.RGBA `json:"brushColor" yaml:"brushColor"`
	BrushRadius float64    `json:"brushRadius" yaml:"brushRadius"`
}

func usable(vp geometry.Viewport, asset geometry.Size) bool {
	return asset.Known() && vp.Scale != 0
}

// ToDisplay maps stored lines onto the canvas. It returns nil while the asset
// size is unknown.
func ToDisplay(lines []Line, vp geometry.Viewport, asset geometry.Size) []Line {
	if !usable(vp, asset) {
		return nil
	}
	out := make([]Line, len(lines))
	for i, l := range lines {
		pts := make([]r2.Vec, len(l.Points))
		for j, p := range l.Points {
			pts[j] = vp.ToCanvas(r2.Vec{X: p.X * asset.Width, Y: p.Y * asset.Height})
		}
		out[i] = Line{Points: pts, BrushColor: l.BrushColor, BrushRadius: l.BrushRadius * vp.Scale}
	}
	return out
}

// ToStorage simplifies display lines and maps them to fractions of the asset.
// It returns nil while the asset size is unknown.
func ToStorage(lines []Line, vp geometry.Viewport, asset geometry.Size) []Line {
	if !usable(vp, asset) {
		return nil
	}
	out := make([]Line, len(lines))
	for i, l := range lines {
		simple := Simplify(l.Points, StorageTolerance, true)
		pts := make([]r2.Vec, len(simple))
		for j, p := range simple {
			n := vp.ToAsset(p)
			pts[j] = r2.Vec{X: n.X / asset.Width, Y: n.Y / asset.Height}
		}
		out[i] = Line{Points: pts, BrushColor: l.BrushColor, BrushRadius: l.BrushRadius / vp.Scale}
	}
	return out
}

// SnapStraight reduces a stroke to its end points.
func SnapStraight(l Line) Line {
	if len(l.Points) <= 2 {
		return l
	}
	l.Points = []r2.Vec{l.Points[0], l.Points[len(l.Points)-1]}
	return l
}

// Paint strokes display-space lines onto c.
func Paint(c *render.Canvas, lines []Line) {
	for _, l := range lines {
		c.Polyline(l.Points, l.BrushColor, l.BrushRadius)
	}
}
