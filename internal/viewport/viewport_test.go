package viewport

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/example/annoview/internal/geometry"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestZoomClampConverges(t *testing.T) {
	c := New()
	for i := 0; i < 100; i++ {
		c.ZoomIn()
	}
	if c.Scale != MaxScale {
		t.Fatalf("scale = %v after repeated zoom in, want %v", c.Scale, MaxScale)
	}
	for i := 0; i < 100; i++ {
		c.ZoomOut()
	}
	if c.Scale != MinScale {
		t.Fatalf("scale = %v after repeated zoom out, want %v", c.Scale, MinScale)
	}
}

func TestZoomPreClamp(t *testing.T) {
	c := New()
	c.Scale = 50
	c.ZoomOut()
	if c.Scale != MaxScale {
		t.Fatalf("out of range scale should clamp first, got %v", c.Scale)
	}
	c.ZoomOut()
	if c.Scale != MaxScale*(1-ZoomStep) {
		t.Fatalf("second ZoomOut = %v", c.Scale)
	}
}

func TestResetIdempotent(t *testing.T) {
	c := New()
	c.Canvas = geometry.Size{Width: 800, Height: 600}
	c.Asset = geometry.Size{Width: 1000, Height: 500}
	c.Reset()
	first := c.Viewport
	c.Reset()
	if diff := cmp.Diff(first, c.Viewport); diff != "" {
		t.Fatalf("Reset not idempotent (-first +second):\n%s", diff)
	}
	want := geometry.Viewport{Scale: 0.8, OriginX: 0, OriginY: 100}
	if diff := cmp.Diff(want, first, approx); diff != "" {
		t.Fatalf("wide asset (-want +got):\n%s", diff)
	}

	c.Asset = geometry.Size{Width: 500, Height: 1000}
	c.Reset()
	want = geometry.Viewport{Scale: 0.6, OriginX: 250, OriginY: 0}
	if diff := cmp.Diff(want, c.Viewport, approx); diff != "" {
		t.Fatalf("tall asset (-want +got):\n%s", diff)
	}
}

func TestResetWaitsForSizes(t *testing.T) {
	c := New()
	c.Canvas = geometry.Size{Width: 800, Height: 600}
	c.Reset()
	if c.Viewport != geometry.Identity {
		t.Fatalf("Reset with unknown asset changed the viewport: %+v", c.Viewport)
	}
}

func TestZoomTo(t *testing.T) {
	c := New()
	c.Canvas = geometry.Size{Width: 800, Height: 600}
	c.Asset = geometry.Size{Width: 1000, Height: 1000}
	c.OriginX, c.OriginY = 123, 456
	c.ZoomTo(r2.Box{Min: r2.Vec{X: 0.4, Y: 0.4}, Max: r2.Vec{X: 0.6, Y: 0.6}}, 2)
	want := geometry.Viewport{Scale: 2, OriginX: -600, OriginY: -700}
	if diff := cmp.Diff(want, c.Viewport, approx); diff != "" {
		t.Fatalf("ZoomTo (-want +got):\n%s", diff)
	}

	c.ZoomTo(r2.Box{Max: r2.Vec{X: 1, Y: 1}}, 0)
	if c.Scale != DefaultFocusScale {
		t.Fatalf("default scale = %v", c.Scale)
	}
}

func TestZoomAroundKeepsPointFixed(t *testing.T) {
	c := New()
	c.Scale, c.OriginX, c.OriginY = 1.5, 40, -20
	p := r2.Vec{X: 300, Y: 200}
	before := c.ToAsset(p)
	c.ZoomAround(p, 3)
	if diff := cmp.Diff(before, c.ToAsset(p), approx); diff != "" {
		t.Fatalf("point under cursor moved (-before +after):\n%s", diff)
	}
}

func TestWheel(t *testing.T) {
	c := New()
	c.Wheel(r2.Vec{X: 5, Y: -10}, r2.Vec{}, false, 0)
	if c.OriginX != -10 || c.OriginY != 20 || c.Scale != 1 {
		t.Fatalf("pan wheel = %+v", c.Viewport)
	}

	c = New()
	at := r2.Vec{X: 100, Y: 100}
	c.Wheel(r2.Vec{Y: -500}, at, true, 0)
	if diff := cmp.Diff(1.5, c.Scale, approx); diff != "" {
		t.Fatalf("ctrl wheel scale (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(r2.Vec{X: 100, Y: 100}, c.ToCanvas(r2.Vec{X: 100, Y: 100}), approx); diff != "" {
		t.Fatalf("ctrl wheel moved the cursor point (-want +got):\n%s", diff)
	}
}

func TestPinch(t *testing.T) {
	c := New()
	mid := r2.Vec{X: 50, Y: 50}
	c.Pinch(mid, 100, 0, 0)
	if c.Scale != 1 {
		t.Fatal("first pinch event must not change the scale")
	}
	c.Pinch(mid, 600, 100, 0)
	if diff := cmp.Diff(1.5, c.Scale, approx); diff != "" {
		t.Fatalf("pinch scale (-want +got):\n%s", diff)
	}
	c.Pinch(mid, 1e9, 600, 0)
	if c.Scale != MaxScale {
		t.Fatalf("pinch must clamp, got %v", c.Scale)
	}
}

func TestPanFrom(t *testing.T) {
	c := New()
	c.PanFrom(r2.Vec{X: 10, Y: 10}, r2.Vec{X: 100, Y: 50}, r2.Vec{X: 30, Y: 5})
	if c.OriginX != 120 || c.OriginY != 45 {
		t.Fatalf("PanFrom origin = %v,%v", c.OriginX, c.OriginY)
	}
}
