package asset

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"math"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	xdraw "golang.org/x/image/draw"

	"github.com/example/annoview/internal/geometry"
)

// MaxRenderScale caps the raster resolution of a PDF page.
const MaxRenderScale = 8

// Paper is the colour of blank PDF pages.
var Paper = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// PageInfo describes one page of a PDF document in points.
type PageInfo struct {
	// Size is the unrotated media size.
	Size     geometry.Size
	Rotation int
}

// Display returns the page size after rotation.
func (p PageInfo) Display() geometry.Size {
	if p.Rotation%180 != 0 {
		return geometry.Size{Width: p.Size.Height, Height: p.Size.Width}
	}
	return p.Size
}

// Inspect reads page sizes and rotations from a PDF file.
func Inspect(path string) ([]PageInfo, error) {
	count, err := api.PageCountFile(path)
	if err != nil {
		return nil, fmt.Errorf("page count: %w", err)
	}
	if count == 0 {
		return nil, ErrNoPages
	}
	dims, err := api.PageDimsFile(path)
	if err != nil {
		return nil, fmt.Errorf("page dims: %w", err)
	}
	ctx, err := api.ReadContextFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	pages := make([]PageInfo, count)
	for i := range pages {
		if i < len(dims) {
			pages[i].Size = geometry.Size{Width: dims[i].Width, Height: dims[i].Height}
		}
		pageDict, _, inh, err := ctx.PageDict(i+1, false)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		rot := 0
		if obj, ok := pageDict.Find("Rotate"); ok {
			rot = number(obj)
		} else if inh != nil {
			rot = inh.Rotate
		}
		pages[i].Rotation = ((rot%360)+360)%360
	}
	return pages, nil
}

// RenderScale picks the raster scale for a page so it stays sharp when
// fitted into canvas, between 1 and MaxRenderScale.
func RenderScale(canvas, page geometry.Size) float64 {
	if page.Width <= 0 || page.Height <= 0 {
		return 1
	}
	s := math.Max(canvas.Width/(page.Width/4), canvas.Height/(page.Height/4))
	return math.Min(math.Max(s, 1), MaxRenderScale)
}

// PageRenderer rasterises an unrotated PDF page at scale.
type PageRenderer interface {
	RenderPage(ctx context.Context, path string, page int, info PageInfo, scale float64) (image.Image, error)
}

// PDFPage is one page of a PDF document.
type PDFPage struct {
	Path string
	// Page is 1-based.
	Page int
	// Canvas is the size the page will be shown in, used to pick the
	// render scale.
	Canvas geometry.Size
	// Scale fixes the render scale when positive, overriding Canvas. It is
	// capped at MaxRenderScale.
	Scale    float64
	Renderer PageRenderer
}

func (p PDFPage) ID() string { return fmt.Sprintf("pdf:%s#%d", p.Path, p.Page) }

// Decode renders the page and turns it upright according to its rotation.
// The result is a *Scaled whose natural size is the upright page in points.
func (p PDFPage) Decode(ctx context.Context) (image.Image, error) {
	pages, err := Inspect(p.Path)
	if err != nil {
		return nil, err
	}
	if p.Page < 1 || p.Page > len(pages) {
		return nil, fmt.Errorf("%w: %d of %d", ErrPageRange, p.Page, len(pages))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	info := pages[p.Page-1]
	renderer := p.Renderer
	if renderer == nil {
		renderer = EmbeddedRenderer{}
	}
	scale := RenderScale(p.Canvas, info.Display())
	if p.Scale > 0 {
		scale = math.Min(p.Scale, MaxRenderScale)
	}
	img, err := renderer.RenderPage(ctx, p.Path, p.Page, info, scale)
	if err != nil {
		return nil, err
	}
	if info.Rotation != 0 {
		img = Rotate(img, info.Rotation)
	}
	return &Scaled{Image: img, Natural: info.Display()}, nil
}

// EmbeddedRenderer draws the largest image XObject of a page scaled to the
// page box on white paper. Pages without images render blank. This covers
// scanned documents; vector content is not drawn.
type EmbeddedRenderer struct{}

// RenderPage implements PageRenderer.
func (EmbeddedRenderer) RenderPage(ctx context.Context, path string, page int, info PageInfo, scale float64) (image.Image, error) {
	w := int(math.Round(info.Size.Width * scale))
	h := int(math.Round(info.Size.Height * scale))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("page %d has no area", page)
	}
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), image.NewUniform(Paper), image.Point{}, draw.Src)

	pdf, err := api.ReadContextFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := largestImage(pdf, page)
	if err != nil {
		return nil, err
	}
	if img != nil {
		xdraw.CatmullRom.Scale(out, out.Bounds(), img, img.Bounds(), draw.Over, nil)
	}
	return out, nil
}

func largestImage(ctx *model.Context, page int) (image.Image, error) {
	pageDict, _, inh, err := ctx.PageDict(page, false)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", page, err)
	}
	var res types.Dict
	if obj, ok := pageDict.Find("Resources"); ok {
		res = dict(ctx, obj)
	} else if inh != nil {
		res = inh.Resources
	}
	if res == nil {
		return nil, nil
	}
	obj, ok := res.Find("XObject")
	if !ok {
		return nil, nil
	}
	var best image.Image
	area := 0
	for _, x := range dict(ctx, obj) {
		sd, ok := stream(ctx, x)
		if !ok || name(sd.Dict, "Subtype") != "Image" {
			continue
		}
		img, err := decodeImage(ctx, sd)
		if err != nil || img == nil {
			continue
		}
		if a := img.Bounds().Dx() * img.Bounds().Dy(); a > area {
			best, area = img, a
		}
	}
	return best, nil
}

func decodeImage(ctx *model.Context, sd types.StreamDict) (image.Image, error) {
	if filter := name(sd.Dict, "Filter"); filter == "DCTDecode" {
		return jpeg.Decode(bytes.NewReader(sd.Raw))
	}
	decoded, _, err := ctx.DereferenceStreamDict(sd)
	if err != nil {
		return nil, err
	}
	content := sd.Content
	if decoded != nil && len(decoded.Content) > 0 {
		content = decoded.Content
	}
	w, _ := sd.Find("Width")
	h, _ := sd.Find("Height")
	width, height := number(w), number(h)
	if bpc, ok := sd.Find("BitsPerComponent"); ok && number(bpc) != 8 {
		return nil, nil
	}
	if width <= 0 || height <= 0 {
		return nil, nil
	}
	switch name(sd.Dict, "ColorSpace") {
	case "DeviceGray":
		if len(content) < width*height {
			return nil, nil
		}
		img := image.NewGray(image.Rect(0, 0, width, height))
		copy(img.Pix, content)
		return img, nil
	case "DeviceRGB":
		if len(content) < width*height*3 {
			return nil, nil
		}
		img := image.NewRGBA(image.Rect(0, 0, width, height))
		for i := 0; i < width*height; i++ {
			img.Pix[i*4], img.Pix[i*4+1], img.Pix[i*4+2], img.Pix[i*4+3] = content[i*3], content[i*3+1], content[i*3+2], 0xff
		}
		return img, nil
	}
	return nil, nil
}

func deref(ctx *model.Context, obj types.Object) types.Object {
	if ref, ok := obj.(types.IndirectRef); ok {
		o, err := ctx.Dereference(ref)
		if err != nil {
			return nil
		}
		return o
	}
	return obj
}

func dict(ctx *model.Context, obj types.Object) types.Dict {
	d, _ := deref(ctx, obj).(types.Dict)
	return d
}

func stream(ctx *model.Context, obj types.Object) (types.StreamDict, bool) {
	sd, ok := deref(ctx, obj).(types.StreamDict)
	return sd, ok
}

func name(d types.Dict, key string) string {
	obj, ok := d.Find(key)
	if !ok {
		return ""
	}
	switch v := obj.(type) {
	case types.Name:
		return strings.TrimPrefix(v.String(), "/")
	case types.Array:
		if len(v) > 0 {
			if n, ok := v[0].(types.Name); ok {
				return strings.TrimPrefix(n.String(), "/")
			}
		}
	}
	return ""
}

func number(obj types.Object) int {
	switch v := obj.(type) {
	case types.Integer:
		return int(v)
	case types.Float:
		return int(v)
	}
	return 0
}
