package shape

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/example/annoview/internal/annotation"
	"github.com/example/annoview/internal/geometry"
	"github.com/example/annoview/internal/render"
	"github.com/example/annoview/internal/theme"
)

type fakeHost struct {
	size    geometry.Size
	changes int
}

func (h *fakeHost) AssetSize() geometry.Size { return h.size }
func (h *fakeHost) ShapeChanged()            { h.changes++ }

var approx = cmpopts.EquateApprox(0, 1e-9)

func natural(asset geometry.Size) Project {
	return func(m annotation.Mark) geometry.Rect {
		return geometry.ToViewportNoOffset(m.Rect, m.Unit, asset)
	}
}

func rectMark(x, y, w, h float64) *annotation.Annotation {
	return &annotation.Annotation{ID: "a", Mark: annotation.Mark{Type: annotation.TypeRect, Rect: geometry.Rect{X: x, Y: y, Width: w, Height: h}}}
}

func TestDragAbsolute(t *testing.T) {
	host := &fakeHost{size: geometry.Size{Width: 100, Height: 100}}
	s := New(rectMark(10, 10, 20, 20), host)

	s.Drag(r2.Vec{X: 50, Y: 50})
	if host.changes != 0 || s.Annotation().Mark.X != 10 {
		t.Fatal("Drag without DragStart must be a no-op")
	}

	s.DragStart(r2.Vec{X: 15, Y: 15})
	s.Drag(r2.Vec{X: 25, Y: 30})
	want := geometry.Rect{X: 20, Y: 25, Width: 20, Height: 20}
	if diff := cmp.Diff(want, s.Annotation().Mark.Rect); diff != "" {
		t.Fatalf("rect mismatch (-want +got):\n%s", diff)
	}
	if host.changes != 1 {
		t.Fatalf("changes = %d, want 1", host.changes)
	}

	s.DragEnd()
	s.Drag(r2.Vec{X: 90, Y: 90})
	if host.changes != 1 {
		t.Fatal("Drag after DragEnd must be a no-op")
	}
}

func TestDragFractional(t *testing.T) {
	host := &fakeHost{size: geometry.Size{Width: 100, Height: 200}}
	s := New(rectMark(0.1, 0.1, 0.2, 0.2), host)
	s.DragStart(r2.Vec{X: 15, Y: 30})
	s.Drag(r2.Vec{X: 35, Y: 70})
	want := geometry.Rect{X: 0.3, Y: 0.3, Width: 0.2, Height: 0.2}
	if diff := cmp.Diff(want, s.Annotation().Mark.Rect, approx); diff != "" {
		t.Fatalf("rect mismatch (-want +got):\n%s", diff)
	}
}

func TestAdjustGuard(t *testing.T) {
	host := &fakeHost{}
	s := New(rectMark(1, 1, 5, 5), host)
	zero, nan, neg, ok := 0.0, math.NaN(), -3.0, 7.0
	for _, adj := range []Adjustment{{Width: &zero}, {Height: &nan}, {Width: &neg}, {X: &nan}} {
		if s.Adjust(adj) {
			t.Fatalf("Adjust(%+v) should be rejected", adj)
		}
	}
	if host.changes != 0 {
		t.Fatal("rejected adjustments must not notify")
	}
	if !s.Adjust(Adjustment{Width: &ok}) {
		t.Fatal("valid adjustment rejected")
	}
	if diff := cmp.Diff(geometry.Rect{X: 1, Y: 1, Width: 7, Height: 5}, s.Annotation().Mark.Rect); diff != "" {
		t.Fatalf("rect mismatch (-want +got):\n%s", diff)
	}
}

func TestEqualAndHover(t *testing.T) {
	a := rectMark(1, 2, 3, 4)
	a.Comment = "pump"
	s := New(a, &fakeHost{})
	other := a.Clone()
	if !s.Equal(other) {
		t.Fatal("clone should be equal")
	}
	other.Mark.StrokeColor = "#fff"
	if !s.Equal(other) {
		t.Fatal("style is not part of equality")
	}
	other.Comment = "valve"
	if s.Equal(other) {
		t.Fatal("comment change should break equality")
	}
	if !s.Hover(true) || s.Hover(true) || !s.Hovered() {
		t.Fatal("Hover should report changes only")
	}
}

func TestHitUsesProjection(t *testing.T) {
	asset := geometry.Size{Width: 200, Height: 100}
	s := New(rectMark(0.5, 0.5, 0.25, 0.25), &fakeHost{size: asset})
	if !s.Hit(r2.Vec{X: 110, Y: 60}, natural(asset), 0) {
		t.Fatal("point inside projected mark should hit")
	}
	if s.Hit(r2.Vec{X: 95, Y: 60}, natural(asset), 0) {
		t.Fatal("point left of the mark should miss")
	}
	if !s.Hit(r2.Vec{X: 95, Y: 60}, natural(asset), 10) {
		t.Fatal("padding should extend the hit area")
	}
}

func TestTransformerResize(t *testing.T) {
	asset := geometry.Size{Width: 500, Height: 500}
	host := &fakeHost{size: asset}
	s := New(rectMark(100, 100, 50, 40), host)
	tr := NewTransformer(s, true)
	proj := natural(asset)

	hs := tr.Handles(proj)
	if diff := cmp.Diff(geometry.Rect{X: 146, Y: 136, Width: 8, Height: 8}, hs[BottomRight]); diff != "" {
		t.Fatalf("br handle mismatch (-want +got):\n%s", diff)
	}
	if h := tr.HandleAt(r2.Vec{X: 125, Y: 101}, proj); h != Top {
		t.Fatalf("HandleAt = %v, want t", h)
	}

	br := r2.Vec{X: 150, Y: 140}
	if !tr.Start(br, br, proj) {
		t.Fatal("Start on br handle failed")
	}
	tr.Transform(r2.Vec{X: 170, Y: 150})
	if diff := cmp.Diff(geometry.Rect{X: 100, Y: 100, Width: 70, Height: 50}, s.Annotation().Mark.Rect); diff != "" {
		t.Fatalf("resize mismatch (-want +got):\n%s", diff)
	}

	if !tr.Transform(r2.Vec{X: -1000, Y: -1000}) {
		t.Fatal("clamped transform should still apply")
	}
	if diff := cmp.Diff(geometry.Rect{X: 100, Y: 100, Width: 1, Height: 1}, s.Annotation().Mark.Rect); diff != "" {
		t.Fatalf("clamp mismatch (-want +got):\n%s", diff)
	}
	tr.End()
	if tr.Active() || tr.Transform(r2.Vec{X: 400, Y: 400}) {
		t.Fatal("transform after End must be ignored")
	}
}

func TestTransformerTopLeftClamp(t *testing.T) {
	asset := geometry.Size{Width: 500, Height: 500}
	s := New(rectMark(100, 100, 50, 40), &fakeHost{size: asset})
	tr := NewTransformer(s, true)
	tl := r2.Vec{X: 100, Y: 100}
	if !tr.Start(tl, tl, natural(asset)) {
		t.Fatal("Start on tl handle failed")
	}
	tr.Transform(r2.Vec{X: 300, Y: 300})
	if diff := cmp.Diff(geometry.Rect{X: 149, Y: 139, Width: 1, Height: 1}, s.Annotation().Mark.Rect); diff != "" {
		t.Fatalf("clamp mismatch (-want +got):\n%s", diff)
	}
}

func TestTransformerFractional(t *testing.T) {
	asset := geometry.Size{Width: 200, Height: 100}
	a := rectMark(0.25, 0.5, 0.25, 0.25)
	a.Mark.Unit = geometry.UnitFraction
	s := New(a, &fakeHost{size: asset})
	tr := NewTransformer(s, true)
	r := r2.Vec{X: 100, Y: 62.5}
	if !tr.Start(r, r, natural(asset)) {
		t.Fatal("Start on r handle failed")
	}
	tr.Transform(r2.Vec{X: 120, Y: 80})
	want := geometry.Rect{X: 0.25, Y: 0.5, Width: 0.35, Height: 0.25}
	if diff := cmp.Diff(want, s.Annotation().Mark.Rect, approx); diff != "" {
		t.Fatalf("rect mismatch (-want +got):\n%s", diff)
	}
}

func TestTransformerReadOnly(t *testing.T) {
	asset := geometry.Size{Width: 500, Height: 500}
	tr := NewTransformer(New(rectMark(100, 100, 50, 40), &fakeHost{size: asset}), false)
	p := r2.Vec{X: 100, Y: 100}
	if tr.Start(p, p, natural(asset)) {
		t.Fatal("read-only transformer must not start")
	}
}

func TestPaint(t *testing.T) {
	th := theme.Default()
	asset := geometry.Size{Width: 100, Height: 100}
	style := Style{Theme: th, Registry: render.NewRegistry()}

	c := render.NewCanvas(100, 100)
	s := New(rectMark(20, 20, 40, 40), &fakeHost{size: asset})
	got := s.Paint(c, natural(asset), PaintState{Scale: 1}, style)
	if got != (geometry.Rect{X: 20, Y: 20, Width: 40, Height: 40}) {
		t.Fatalf("Paint returned %+v", got)
	}
	if c.RGBAAt(18, 30) != th.ShapeStroke {
		t.Fatalf("stroke pixel = %v, want %v", c.RGBAAt(18, 30), th.ShapeStroke)
	}
	if c.RGBAAt(40, 40).A != 0 {
		t.Fatal("unselected, unhovered mark must not be filled")
	}

	c = render.NewCanvas(100, 100)
	s.Paint(c, natural(asset), PaintState{Hovered: true, Scale: 1}, style)
	if c.RGBAAt(40, 40) != th.ShapeBackground {
		t.Fatalf("hover fill = %v, want %v", c.RGBAAt(40, 40), th.ShapeBackground)
	}

	c = render.NewCanvas(100, 100)
	s.Annotation().Status = annotation.StatusUnhandled
	s.Annotation().Mark.StrokeColor = "#0000ff"
	s.Paint(c, natural(asset), PaintState{Scale: 1}, style)
	if c.RGBAAt(60, 20) != th.StatusUnhandled {
		t.Fatalf("badge pixel = %v", c.RGBAAt(60, 20))
	}
	if c.RGBAAt(18, 40) != (color.RGBA{0, 0, 255, 255}) {
		t.Fatalf("mark stroke colour ignored: %v", c.RGBAAt(18, 40))
	}
}

func TestPaintCustomRenderer(t *testing.T) {
	asset := geometry.Size{Width: 100, Height: 100}
	reg := render.NewRegistry()
	var seen image.Rectangle
	reg.Register("only", func(_ *render.Canvas, r image.Rectangle, _ float64, _ bool) bool {
		seen = r
		return false
	})
	a := rectMark(20, 20, 40, 40)
	a.Mark.Renderer = "only"
	c := render.NewCanvas(100, 100)
	New(a, &fakeHost{size: asset}).Paint(c, natural(asset), PaintState{Scale: 1}, Style{Registry: reg})
	if seen != image.Rect(20, 20, 60, 60) {
		t.Fatalf("custom renderer got %v", seen)
	}
	if c.RGBAAt(18, 30).A != 0 {
		t.Fatal("default box drawn although the renderer declined it")
	}

	c = render.NewCanvas(100, 100)
	New(a, &fakeHost{size: asset}).Paint(c, natural(asset), PaintState{Scale: 1, SkipCustom: true}, Style{Registry: reg})
	if c.RGBAAt(18, 30).A == 0 {
		t.Fatal("SkipCustom should draw the default box")
	}
}
