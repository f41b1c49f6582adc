// Package render holds the raster primitives used to paint marks, handles and
// paint-layer strokes onto an RGBA canvas.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Canvas is an RGBA surface with drawing helpers.
type Canvas struct {
	*image.RGBA
}

// NewCanvas allocates a transparent canvas.
func NewCanvas(w, h int) *Canvas {
	return &Canvas{RGBA: image.NewRGBA(image.Rect(0, 0, w, h))}
}

// Wrap turns an existing RGBA image into a canvas.
func Wrap(img *image.RGBA) *Canvas { return &Canvas{RGBA: img} }

func (c *Canvas) blend(x, y int, col color.Color) {
	if !image.Pt(x, y).In(c.Bounds()) {
		return
	}
	_, _, _, a := col.RGBA()
	if a == 0xffff {
		c.Set(x, y, col)
		return
	}
	draw.Draw(c.RGBA, image.Rect(x, y, x+1, y+1), image.NewUniform(col), image.Point{}, draw.Over)
}

func (c *Canvas) thickPixel(x, y, thick int, col color.Color) {
	r := thick / 2
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			c.blend(x+dx, y+dy, col)
		}
	}
}

// Line draws a Bresenham line of the given thickness.
func (c *Canvas) Line(x0, y0, x1, y1 int, col color.Color, thick int) {
	dx := math.Abs(float64(x1 - x0))
	dy := math.Abs(float64(y1 - y0))
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		c.thickPixel(x0, y0, thick, col)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// dashedLine draws an axis aligned dashed segment. Gaps are left untouched.
func (c *Canvas) dashedLine(x0, y0, x1, y1, dash, thick int, col color.Color) {
	horiz := y0 == y1
	length := x1 - x0
	if !horiz {
		length = y1 - y0
	}
	step := 1
	if length < 0 {
		length = -length
		step = -1
	}
	for i := 0; i <= length; i += dash * 2 {
		for j := 0; j < dash && i+j <= length; j++ {
			if horiz {
				c.thickPixel(x0+step*(i+j), y0, thick, col)
			} else {
				c.thickPixel(x0, y0+step*(i+j), thick, col)
			}
		}
	}
}

// StrokeRect outlines r. A dash of zero draws a solid border.
func (c *Canvas) StrokeRect(r image.Rectangle, col color.Color, thick, dash int) {
	if thick <= 0 {
		return
	}
	minX, minY, maxX, maxY := r.Min.X, r.Min.Y, r.Max.X-1, r.Max.Y-1
	if dash <= 0 {
		h := thick / 2
		lo, hi := -h, thick-h
		c.FillRect(image.Rect(minX+lo, minY+lo, maxX+hi, minY+hi), col)
		c.FillRect(image.Rect(minX+lo, maxY+lo, maxX+hi, maxY+hi), col)
		c.FillRect(image.Rect(minX+lo, minY+hi, minX+hi, maxY+lo), col)
		c.FillRect(image.Rect(maxX+lo, minY+hi, maxX+hi, maxY+lo), col)
		return
	}
	c.dashedLine(minX, minY, maxX, minY, dash, thick, col)
	c.dashedLine(maxX, minY, maxX, maxY, dash, thick, col)
	c.dashedLine(maxX, maxY, minX, maxY, dash, thick, col)
	c.dashedLine(minX, maxY, minX, minY, dash, thick, col)
}

// FillRect composites col over r.
func (c *Canvas) FillRect(r image.Rectangle, col color.Color) {
	draw.Draw(c.RGBA, r.Intersect(c.Bounds()), image.NewUniform(col), image.Point{}, draw.Over)
}

// FilledCircle paints a solid disc.
func (c *Canvas) FilledCircle(cx, cy, r int, col color.Color) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				c.blend(cx+dx, cy+dy, col)
			}
		}
	}
}

// Circle outlines a circle with the midpoint algorithm.
func (c *Canvas) Circle(cx, cy, r int, col color.Color, thick int) {
	if thick < 1 {
		thick = 1
	}
	start := -thick / 2
	for i := 0; i < thick; i++ {
		rr := r + start + i
		if rr < 0 {
			continue
		}
		x, y, e := rr, 0, 1-rr
		for x >= y {
			for _, p := range [][2]int{{x, y}, {y, x}, {-y, x}, {-x, y}, {-x, -y}, {-y, -x}, {y, -x}, {x, -y}} {
				c.blend(cx+p[0], cy+p[1], col)
			}
			y++
			if e < 0 {
				e += 2*y + 1
			} else {
				x--
				e += 2 * (y - x + 1)
			}
		}
	}
}

// Ellipse outlines the ellipse inscribed in r.
func (c *Canvas) Ellipse(r image.Rectangle, col color.Color, thick int) {
	cx, cy := (r.Min.X+r.Max.X)/2, (r.Min.Y+r.Max.Y)/2
	rx, ry := r.Dx()/2, r.Dy()/2
	steps := int(math.Ceil(2 * math.Pi * math.Sqrt(float64(rx*rx+ry*ry))))
	if steps < 8 {
		steps = 8
	}
	var px, py int
	for i := 0; i <= steps; i++ {
		angle := 2 * math.Pi * float64(i) / float64(steps)
		x := cx + int(math.Cos(angle)*float64(rx))
		y := cy + int(math.Sin(angle)*float64(ry))
		if i > 0 {
			c.Line(px, py, x, y, col, thick)
		}
		px, py = x, y
	}
}

// Polyline strokes consecutive points with round joins of the given radius.
func (c *Canvas) Polyline(points []r2.Vec, col color.Color, radius float64) {
	if len(points) == 0 {
		return
	}
	thick := int(math.Max(1, math.Round(radius)))
	if len(points) == 1 {
		c.FilledCircle(int(points[0].X), int(points[0].Y), thick/2, col)
		return
	}
	for i := 1; i < len(points); i++ {
		a, b := points[i-1], points[i]
		c.Line(int(a.X), int(a.Y), int(b.X), int(b.Y), col, thick)
	}
}

// Checkerboard fills rect with alternating squares, used behind transparent
// assets.
func (c *Canvas) Checkerboard(rect image.Rectangle, size int, light, dark color.Color) {
	rect = rect.Intersect(c.Bounds())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if ((x/size)+(y/size))%2 == 0 {
				c.Set(x, y, light)
			} else {
				c.Set(x, y, dark)
			}
		}
	}
}
