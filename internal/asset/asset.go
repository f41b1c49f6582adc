// Package asset loads the raster shown under the annotations, from image
// files or from single PDF pages.
package asset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/example/annoview/internal/geometry"
)

var (
	// ErrNoPages is returned for documents without pages.
	ErrNoPages = errors.New("document has no pages")
	// ErrPageRange is returned when the requested page does not exist.
	ErrPageRange = errors.New("page out of range")
)

// Source is something that can be decoded into the displayed raster.
type Source interface {
	// ID identifies the source. Results of stale loads are matched by it.
	ID() string
	Decode(ctx context.Context) (image.Image, error)
}

// File is an image file on disk.
type File struct {
	Path string
}

func (f File) ID() string { return "file:" + f.Path }

// Decode reads and decodes the file.
func (f File) Decode(ctx context.Context) (image.Image, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.Path, err)
	}
	return img, nil
}

// Bytes is an in-memory encoded image, such as clipboard contents.
type Bytes struct {
	Name string
	Data []byte
}

func (b Bytes) ID() string { return "bytes:" + b.Name }

// Decode decodes the buffer.
func (b Bytes) Decode(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(b.Data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", b.Name, err)
	}
	return img, nil
}

// Scaled is a raster drawn at a resolution other than its natural size, such
// as a PDF page rendered above 72 dpi. Absolute marks on it are measured in
// natural units, so they do not depend on the render resolution.
type Scaled struct {
	image.Image
	Natural geometry.Size
}

// Size returns the natural size of img: Natural for a *Scaled, otherwise
// the pixel size.
func Size(img image.Image) geometry.Size {
	if s, ok := img.(*Scaled); ok {
		if s.Natural.Known() {
			return s.Natural
		}
		img = s.Image
	}
	if img == nil {
		return geometry.Size{}
	}
	b := img.Bounds()
	return geometry.Size{Width: float64(b.Dx()), Height: float64(b.Dy())}
}

// Raster returns the pixels behind img, unwrapping a *Scaled.
func Raster(img image.Image) image.Image {
	if s, ok := img.(*Scaled); ok {
		return s.Image
	}
	return img
}

// RGBA returns img as an *image.RGBA anchored at the origin, copying only
// when needed.
func RGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// Crop copies the part of img under r, in natural pixels. Areas outside the
// image stay transparent.
func Crop(img image.Image, r image.Rectangle) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	b := img.Bounds()
	src := r.Add(b.Min).Intersect(b)
	if !src.Empty() {
		draw.Draw(out, src.Sub(b.Min).Sub(r.Min), img, src.Min, draw.Src)
	}
	return out
}

// CropNatural copies the part of img under r, given in natural units, at
// the resolution of its raster.
func CropNatural(img image.Image, r geometry.Rect) *image.RGBA {
	raster := Raster(img)
	px := r
	if natural := Size(img); natural.Known() {
		b := raster.Bounds()
		sx, sy := float64(b.Dx())/natural.Width, float64(b.Dy())/natural.Height
		px = geometry.Rect{X: r.X * sx, Y: r.Y * sy, Width: r.Width * sx, Height: r.Height * sy}
	}
	return Crop(raster, px.Image())
}

// Rotate turns img clockwise by a multiple of 90 degrees.
func Rotate(img image.Image, degrees int) *image.RGBA {
	src := RGBA(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	switch ((degrees%360)+360)%360 {
	case 90:
		out := image.NewRGBA(image.Rect(0, 0, h, w))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				out.SetRGBA(h-1-y, x, src.RGBAAt(x, y))
			}
		}
		return out
	case 180:
		out := image.NewRGBA(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				out.SetRGBA(w-1-x, h-1-y, src.RGBAAt(x, y))
			}
		}
		return out
	case 270:
		out := image.NewRGBA(image.Rect(0, 0, h, w))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				out.SetRGBA(y, w-1-x, src.RGBAAt(x, y))
			}
		}
		return out
	}
	return src
}
