package render

import (
	"image"
	"image/color"
	"image/draw"
)

// ShadowOptions configures the soft shadow painted beneath a mark.
type ShadowOptions struct {
	Radius int
	Offset image.Point
	Color  color.RGBA
	// Frame is the width of the outline casting the shadow. Zero casts the
	// shadow of the whole filled rectangle.
	Frame int
}

// DefaultShadowOptions mirrors a 10px canvas blur with a translucent slate
// color.
func DefaultShadowOptions() ShadowOptions {
	return ShadowOptions{
		Radius: 10,
		Color:  color.RGBA{R: 25, G: 28, B: 30, A: 89},
		Frame:  4,
	}
}

// Shadow composites a blurred shadow of r onto the canvas. Only the part of
// the shadow that can reach the canvas is computed.
func (c *Canvas) Shadow(r image.Rectangle, opts ShadowOptions) {
	if r.Empty() || opts.Color.A == 0 {
		return
	}
	radius := opts.Radius
	if radius < 0 {
		radius = 0
	}
	src := r.Add(opts.Offset)
	padded := src.Inset(-radius)
	visible := padded.Intersect(c.Bounds().Inset(-radius))
	if visible.Empty() {
		return
	}

	mask := image.NewGray(visible.Sub(visible.Min))
	fill := func(rect image.Rectangle) {
		rect = rect.Intersect(visible).Sub(visible.Min)
		draw.Draw(mask, rect, image.NewUniform(color.Gray{Y: 255}), image.Point{}, draw.Src)
	}
	if opts.Frame <= 0 || opts.Frame*2 >= src.Dx() || opts.Frame*2 >= src.Dy() {
		fill(src)
	} else {
		f := opts.Frame
		fill(image.Rect(src.Min.X, src.Min.Y, src.Max.X, src.Min.Y+f))
		fill(image.Rect(src.Min.X, src.Max.Y-f, src.Max.X, src.Max.Y))
		fill(image.Rect(src.Min.X, src.Min.Y+f, src.Min.X+f, src.Max.Y-f))
		fill(image.Rect(src.Max.X-f, src.Min.Y+f, src.Max.X, src.Max.Y-f))
	}

	blurred := blurGray(mask, radius)
	shade := image.NewUniform(opts.Color)
	draw.DrawMask(c.RGBA, visible, shade, image.Point{}, blurred, image.Point{}, draw.Over)
}

// blurGray applies a separable box blur using prefix sums.
func blurGray(src *image.Gray, radius int) *image.Gray {
	if radius <= 0 {
		out := image.NewGray(src.Bounds())
		copy(out.Pix, src.Pix)
		return out
	}
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	tmp := image.NewGray(bounds)
	dst := image.NewGray(bounds)

	prefix := make([]int, max(w, h)+1)
	for y := 0; y < h; y++ {
		row := y * src.Stride
		for x := 0; x < w; x++ {
			prefix[x+1] = prefix[x] + int(src.Pix[row+x])
		}
		for x := 0; x < w; x++ {
			x0, x1 := max(x-radius, 0), min(x+radius, w-1)
			tmp.Pix[y*tmp.Stride+x] = uint8((prefix[x1+1] - prefix[x0]) / (x1 - x0 + 1))
		}
	}
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			prefix[y+1] = prefix[y] + int(tmp.Pix[y*tmp.Stride+x])
		}
		for y := 0; y < h; y++ {
			y0, y1 := max(y-radius, 0), min(y+radius, h-1)
			dst.Pix[y*dst.Stride+x] = uint8((prefix[y1+1] - prefix[y0]) / (y1 - y0 + 1))
		}
	}
	return dst
}
