package shape

import (
	"image"
	"image/color"
	"math"

	"github.com/example/annoview/internal/annotation"
	"github.com/example/annoview/internal/geometry"
	"github.com/example/annoview/internal/render"
	"github.com/example/annoview/internal/theme"
)

const (
	highlightPad   = 5
	labelPadding   = 8
	labelOffsetY   = 35
	badgeRadius    = 5
	badgeRingWidth = 2
	selectionDash  = 3
	// DefaultLabelSize is the on-screen label font size.
	DefaultLabelSize = 14
)

// PaintState describes how a shape is painted for one frame.
type PaintState struct {
	Selected  bool
	Hovered   bool
	DrawLabel bool
	Scale     float64
	// Export paints for a saved file: no shadow.
	Export    bool

	// LabelSize overrides DefaultLabelSize when positive.
	LabelSize  float64
	// BoxWidth overrides the mark stroke width when positive.
	BoxWidth   float64
	// HideBox skips the stroke and fill.
	HideBox    bool
	// SkipCustom ignores the mark's custom renderer.
	SkipCustom bool
}

// Style carries the shared resources used for painting.
type Style struct {
	Theme    *theme.Theme
	Registry *render.Registry
}

func (st Style) theme() *theme.Theme {
	if st.Theme == nil {
		return theme.Default()
	}
	return st.Theme
}

func colorOr(s string, fallback color.RGBA) color.RGBA {
	if s == "" {
		return fallback
	}
	c, err := theme.ParseColor(s)
	if err != nil {
		return fallback
	}
	return c
}

// Paint draws the shape onto c and returns its projected rectangle.
func (s *Shape) Paint(c *render.Canvas, project Project, ps PaintState, style Style) geometry.Rect {
	m := s.a.Mark
	r := project(m)
	th := style.theme()

	drawDefault := true
	if !ps.SkipCustom {
		if fn, ok := style.Registry.Lookup(m.Renderer); ok {
			drawDefault = fn(c, r.Image(), ps.Scale, ps.Export)
		}
	}
	if !drawDefault {
		return r
	}

	lw := m.Stroke()
	if ps.BoxWidth > 0 && lw > 0 {
		lw = ps.BoxWidth
	}
	box := r.Canon().Inset(lw / 2)
	if m.Highlight {
		box = box.Inset(highlightPad)
	}
	outline := box.Image()

	if !ps.HideBox {
		if lw > 0 {
			if !ps.Export {
				shadow := render.DefaultShadowOptions()
				shadow.Color = th.Shadow
				shadow.Frame = int(math.Ceil(lw))
				c.Shadow(outline, shadow)
			}
			dash := 0
			if ps.Selected {
				dash = selectionDash
			}
			c.StrokeRect(outline, colorOr(m.StrokeColor, th.ShapeStroke), int(math.Round(lw)), dash)
		}
		if ps.Selected || ps.Hovered {
			c.FillRect(outline, colorOr(m.BackgroundColor, th.ShapeBackground))
		}
	}

	if s.a.Comment != "" && ps.DrawLabel {
		size := ps.LabelSize
		if size <= 0 {
			size = DefaultLabelSize
		}
		at := image.Pt(int(math.Round(r.X))-2, int(math.Round(r.Y))-labelOffsetY)
		c.Label(s.a.Comment, at, render.LabelStyle{
			Size:       size,
			Padding:    labelPadding,
			Foreground: th.LabelText,
			Background: th.LabelBackground,
		})
	}

	if s.a.Status == annotation.StatusUnhandled {
		cx, cy := int(math.Round(r.X+r.Width)), int(math.Round(r.Y))
		c.FilledCircle(cx, cy, badgeRadius, th.StatusUnhandled)
		c.Circle(cx, cy, badgeRadius, th.StatusRing, badgeRingWidth)
	}
	return r
}
