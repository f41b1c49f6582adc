// Package export flattens a page and its annotations into a PNG or PDF.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	xdraw "golang.org/x/image/draw"

	"github.com/example/annoview/internal/annotation"
	"github.com/example/annoview/internal/drawing"
	"github.com/example/annoview/internal/geometry"
	"github.com/example/annoview/internal/render"
	"github.com/example/annoview/internal/shape"
	"github.com/example/annoview/internal/theme"
)

// ErrUnknownFormat is returned for formats without an encoder.
var ErrUnknownFormat = errors.New("unknown export format")

// Format names an output encoding.
type Format string

const (
	FormatPNG Format = "png"
	FormatPDF Format = "pdf"
)

// ParseFormat accepts a format name or a file name with a known extension.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(s)
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		s = s[i+1:]
	}
	switch Format(s) {
	case FormatPNG, FormatPDF:
		return Format(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// DefaultStroke is the border colour of marks without a stroke colour.
var DefaultStroke = color.RGBA{B: 255, A: 255}

// Options controls what is flattened into the output.
type Options struct {
	DrawText   bool
	DrawBox    bool
	DrawCustom bool
	// Scale multiplies the page size to get the output resolution.
	Scale    float64
	Format   Format
	FontSize float64
	// BoxWidth is the border width, in page units, of marks without one.
	BoxWidth float64
}

// DefaultOptions draws everything at four times the page size.
func DefaultOptions() Options {
	return Options{
		DrawText:   true,
		DrawBox:    true,
		DrawCustom: true,
		Scale:      4,
		Format:     FormatPNG,
		FontSize:   12,
		BoxWidth:   2,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Scale <= 0 {
		o.Scale = d.Scale
	}
	if o.Format == "" {
		o.Format = d.Format
	}
	if o.FontSize <= 0 {
		o.FontSize = d.FontSize
	}
	if o.BoxWidth <= 0 {
		o.BoxWidth = d.BoxWidth
	}
	return o
}

// Page is the upright asset raster and everything painted over it.
type Page struct {
	Image image.Image
	// Size is the natural page size that marks and lines are measured in,
	// such as a PDF page in points. The image is stretched over it. Zero
	// uses the image size.
	Size     geometry.Size
	Lines    []drawing.Line
	Theme    *theme.Theme
	Registry *render.Registry
}

type staticHost geometry.Size

func (h staticHost) AssetSize() geometry.Size { return geometry.Size(h) }
func (staticHost) ShapeChanged()              {}

// Render rasterises page with its annotations.
func Render(page Page, list []annotation.Annotation, opts Options) (*image.RGBA, error) {
	if page.Image == nil {
		return nil, errors.New("export: no image")
	}
	opts = opts.withDefaults()
	b := page.Image.Bounds()
	natural := page.Size
	if !natural.Known() {
		natural = geometry.Size{Width: float64(b.Dx()), Height: float64(b.Dy())}
	}
	w := int(math.Round(natural.Width * opts.Scale))
	h := int(math.Round(natural.Height * opts.Scale))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("export: empty output %dx%d", w, h)
	}

	c := render.NewCanvas(w, h)
	xdraw.CatmullRom.Scale(c.RGBA, c.Bounds(), page.Image, b, draw.Src, nil)

	// natural units to output pixels
	vp := geometry.Viewport{Scale: float64(w) / natural.Width}
	sy := float64(h) / natural.Height
	project := func(m annotation.Mark) geometry.Rect {
		r := geometry.ToViewportNoOffset(m.Rect, m.Unit, natural)
		return geometry.Rect{X: r.X * vp.Scale, Y: r.Y * sy, Width: r.Width * vp.Scale, Height: r.Height * sy}
	}

	drawing.Paint(c, drawing.ToDisplay(page.Lines, vp, natural))

	th := page.Theme
	if th == nil {
		th = theme.Default()
	}
	exportTheme := *th
	exportTheme.ShapeStroke = DefaultStroke
	style := shape.Style{Theme: &exportTheme, Registry: page.Registry}
	host := staticHost(natural)
	for i := range list {
		a := list[i].Clone()
		if !a.Mark.Rect.Valid() {
			continue
		}
		width := opts.BoxWidth
		if a.Mark.StrokeWidth != nil && *a.Mark.StrokeWidth > 0 {
			width = *a.Mark.StrokeWidth
		}
		shape.New(&a, host).Paint(c, project, shape.PaintState{
			DrawLabel:  opts.DrawText,
			Scale:      opts.Scale,
			Export:     true,
			LabelSize:  opts.FontSize * opts.Scale,
			BoxWidth:   width * opts.Scale,
			HideBox:    !opts.DrawBox,
			SkipCustom: !opts.DrawCustom,
		}, style)
	}
	return c.RGBA, nil
}

// Export renders page and encodes it in opts.Format.
func Export(page Page, list []annotation.Annotation, opts Options) ([]byte, error) {
	opts = opts.withDefaults()
	enc, ok := Encoders[opts.Format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, opts.Format)
	}
	img, err := Render(page, list, opts)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := enc.Encode(&buf, img, page.Size); err != nil {
		return nil, fmt.Errorf("encode %s: %w", opts.Format, err)
	}
	return buf.Bytes(), nil
}
