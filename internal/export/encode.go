package export

import (
	"bytes"
	"image"
	"image/png"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/example/annoview/internal/geometry"
)

// Encoder writes a flattened raster. page is the page size in output units
// and may be zero.
type Encoder interface {
	Encode(w io.Writer, img image.Image, page geometry.Size) error
}

// EncoderFunc adapts a function to Encoder.
type EncoderFunc func(w io.Writer, img image.Image, page geometry.Size) error

func (f EncoderFunc) Encode(w io.Writer, img image.Image, page geometry.Size) error {
	return f(w, img, page)
}

// Encoders maps formats to their encoders.
var Encoders = map[Format]Encoder{
	FormatPNG: EncoderFunc(encodePNG),
	FormatPDF: EncoderFunc(encodePDF),
}

func encodePNG(w io.Writer, img image.Image, _ geometry.Size) error {
	return png.Encode(w, img)
}

// encodePDF places img on a single page filling it. Without a page size the
// page is the image size in points.
func encodePDF(w io.Writer, img image.Image, page geometry.Size) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	if !page.Known() {
		b := img.Bounds()
		page = geometry.Size{Width: float64(b.Dx()), Height: float64(b.Dy())}
	}
	imp := pdfcpu.DefaultImportConfig()
	imp.PageDim = &types.Dim{Width: page.Width, Height: page.Height}
	imp.UserDim = true
	imp.Pos = types.Full
	return api.ImportImages(nil, w, []io.Reader{&buf}, imp, model.NewDefaultConfiguration())
}
