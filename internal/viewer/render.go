package viewer

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"

	"github.com/example/annoview/internal/asset"
	"github.com/example/annoview/internal/drawing"
	"github.com/example/annoview/internal/geometry"
	"github.com/example/annoview/internal/render"
	"github.com/example/annoview/internal/shape"
)

const checkerSize = 8

// Render paints the current state onto dst, which covers the canvas.
func (v *Viewer) Render(dst *image.RGBA) {
	th := v.theme
	c := render.Wrap(dst)
	draw.Draw(dst, dst.Bounds(), image.NewUniform(th.Background), image.Point{}, draw.Src)

	if v.img != nil {
		full := geometry.Rect{Width: v.vp.Asset.Width, Height: v.vp.Asset.Height}
		at := v.vp.Apply(full).Image()
		c.Checkerboard(at, checkerSize, th.CheckerLight, th.CheckerDark)
		scaler := xdraw.ApproxBiLinear
		if v.vp.Scale >= 1 {
			scaler = xdraw.NearestNeighbor
		}
		raster := asset.Raster(v.img)
		scaler.Scale(dst, at, raster, raster.Bounds(), draw.Over, nil)
	}

	drawing.Paint(c, drawing.ToDisplay(v.lines, v.vp.Viewport, v.vp.Asset))
	if v.machine.Drawing() {
		c.Polyline(v.machine.Stroke(), th.Brush, v.opts.BrushRadius)
	}

	project := v.CanvasProjection()
	style := shape.Style{Theme: th, Registry: v.registry}
	for _, s := range v.shapes {
		s.Paint(c, project, shape.PaintState{
			Selected:  v.selected(s.ID()),
			Hovered:   s.Hovered(),
			DrawLabel: v.opts.DrawLabel,
			Scale:     v.vp.Scale,
		}, style)
	}
	if v.transformer != nil {
		v.transformer.Paint(c, project, th)
	}
}

// Snapshot renders the current state into a new image of the canvas size.
func (v *Viewer) Snapshot() *image.RGBA {
	w, h := int(v.vp.Canvas.Width), int(v.vp.Canvas.Height)
	if w <= 0 || h <= 0 {
		w, h = 1, 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	v.Render(dst)
	return dst
}
