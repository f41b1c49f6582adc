package geometry

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gonum.org/v1/gonum/spatial/r2"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestFractionalRoundTrip(t *testing.T) {
	asset := Size{Width: 1280, Height: 720}
	vp := Viewport{Scale: 1.7, OriginX: -42, OriginY: 13.5}
	marks := []Rect{
		{X: 0.1, Y: 0.2, Width: 0.3, Height: 0.4},
		{X: 0, Y: 0, Width: 0.999, Height: 0.001},
		{X: 0.75, Y: 0.6, Width: 0.05, Height: 0.9},
	}
	for _, m := range marks {
		if !IsFractional(m) {
			t.Fatalf("expected %+v to be fractional", m)
		}
		noOff := ToViewportNoOffset(m, UnitAuto, asset)
		if got := FromViewportNoOffset(noOff, true, asset); !cmp.Equal(got, m, approx) {
			t.Errorf("no offset round trip: %s", cmp.Diff(m, got, approx))
		}
		screen := ToViewport(m, UnitAuto, asset, vp)
		if got := FromViewport(screen, true, asset, vp); !cmp.Equal(got, m, approx) {
			t.Errorf("viewport round trip: %s", cmp.Diff(m, got, approx))
		}
	}
}

func TestUnitResolution(t *testing.T) {
	tiny := Rect{X: 3, Y: 4, Width: 0.5, Height: 0.5}
	if !UnitAuto.Fractional(tiny) {
		t.Error("auto unit should treat sub-pixel sizes as fractions")
	}
	if UnitAbsolute.Fractional(tiny) {
		t.Error("explicit absolute unit should win over the heuristic")
	}
	big := Rect{X: 0.1, Y: 0.1, Width: 20, Height: 0.5}
	if UnitAuto.Fractional(big) {
		t.Error("width >= 1 must not be fractional")
	}
	if !UnitFraction.Fractional(big) {
		t.Error("explicit fraction unit should win")
	}
	if IsFractional(Rect{Width: 0, Height: 0.5}) {
		t.Error("zero width is never fractional")
	}
}

func TestToViewportAbsolute(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 30, Height: 40}
	got := ToViewport(r, UnitAuto, Size{Width: 100, Height: 100}, Viewport{Scale: 2, OriginX: 5, OriginY: -5})
	want := Rect{X: 25, Y: 35, Width: 60, Height: 80}
	if got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestHitBothOrientations(t *testing.T) {
	tests := []struct {
		name    string
		r       Rect
		p       r2.Vec
		padding float64
		want    bool
	}{
		{"inside", Rect{X: 10, Y: 10, Width: 20, Height: 20}, r2.Vec{X: 15, Y: 15}, 0, true},
		{"outside", Rect{X: 10, Y: 10, Width: 20, Height: 20}, r2.Vec{X: 35, Y: 15}, 0, false},
		{"padded", Rect{X: 10, Y: 10, Width: 20, Height: 20}, r2.Vec{X: 35, Y: 15}, 6, true},
		{"inverted", Rect{X: 30, Y: 30, Width: -20, Height: -20}, r2.Vec{X: 15, Y: 15}, 0, true},
		{"on edge", Rect{X: 10, Y: 10, Width: 20, Height: 20}, r2.Vec{X: 10, Y: 15}, 0, false},
	}
	for _, tt := range tests {
		if got := tt.r.Hit(tt.p, tt.padding); got != tt.want {
			t.Errorf("%s: Hit=%v want %v", tt.name, got, tt.want)
		}
	}
}

func TestViewportPointInverse(t *testing.T) {
	vp := Viewport{Scale: 0.25, OriginX: 100, OriginY: -30}
	p := r2.Vec{X: 17, Y: 99}
	if got := vp.ToCanvas(vp.ToAsset(p)); !cmp.Equal(got, p, approx) {
		t.Fatalf("got %+v want %+v", got, p)
	}
}

func TestValid(t *testing.T) {
	if (Rect{Width: 1, Height: math.NaN()}).Valid() {
		t.Error("NaN size must be invalid")
	}
	if (Rect{Width: -1, Height: 1}).Valid() {
		t.Error("negative size must be invalid")
	}
	if !(Rect{X: -5, Width: 0.2, Height: 3}).Valid() {
		t.Error("positive finite rect should be valid")
	}
}

func TestCanonAndPlaceholder(t *testing.T) {
	got := Rect{X: 30, Y: 40, Width: -10, Height: -20}.Canon()
	if got != (Rect{X: 20, Y: 20, Width: 10, Height: 20}) {
		t.Fatalf("unexpected canon %+v", got)
	}
	if (Size{}).OrPlaceholder() != (Size{Width: 1, Height: 1}) {
		t.Fatal("unknown size should become 1x1")
	}
}
