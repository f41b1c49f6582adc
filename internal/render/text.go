package render

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	fontOnce  sync.Once
	fontErr   error
	goregFont *opentype.Font
	faces     sync.Map // map[float64]font.Face
)

func face(size float64) (font.Face, error) {
	fontOnce.Do(func() {
		goregFont, fontErr = opentype.Parse(goregular.TTF)
	})
	if fontErr != nil {
		return nil, fmt.Errorf("parse font: %w", fontErr)
	}
	if size <= 0 {
		size = 14
	}
	size = math.Round(size*4) / 4
	if f, ok := faces.Load(size); ok {
		return f.(font.Face), nil
	}
	f, err := opentype.NewFace(goregFont, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, err
	}
	actual, _ := faces.LoadOrStore(size, f)
	return actual.(font.Face), nil
}

// MeasureText returns the advance width and line height of text at size.
func MeasureText(text string, size float64) (width, height int, err error) {
	f, err := face(size)
	if err != nil {
		return 0, 0, err
	}
	m := f.Metrics()
	return font.MeasureString(f, text).Ceil(), (m.Ascent + m.Descent).Ceil(), nil
}

// LabelStyle controls a text box drawn by Label.
type LabelStyle struct {
	Size       float64
	Padding    int
	Foreground color.Color
	Background color.Color
}

// Label draws text inside a filled box whose top-left corner is at. It returns
// the box.
func (c *Canvas) Label(text string, at image.Point, st LabelStyle) image.Rectangle {
	f, err := face(st.Size)
	if err != nil {
		log.Printf("label: %v", err)
		return image.Rectangle{}
	}
	w := font.MeasureString(f, text).Ceil()
	size := int(math.Ceil(st.Size))
	box := image.Rect(at.X, at.Y, at.X+w+st.Padding*2, at.Y+size+st.Padding*2)
	if st.Background != nil {
		c.FillRect(box, st.Background)
	}
	fg := st.Foreground
	if fg == nil {
		fg = color.White
	}
	d := &font.Drawer{Dst: c.RGBA, Src: image.NewUniform(fg), Face: f}
	d.Dot = fixed.P(at.X+st.Padding, at.Y+st.Padding+f.Metrics().Ascent.Ceil())
	d.DrawString(text)
	return box
}
