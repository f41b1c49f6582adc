package annotation

import (
	"bytes"
	"strings"
	"testing"

	"github.com/example/annoview/internal/geometry"
	"github.com/google/go-cmp/cmp"
)

func TestDecodeJSONList(t *testing.T) {
	input := `[
  {"id": "a", "comment": "valve", "status": "unhandled",
   "mark": {"type": "rect", "x": 0.1, "y": 0.2, "width": 0.3, "height": 0.05}},
  {"id": "b", "page": 2, "mark": {"x": 10, "y": 20, "width": 30, "height": 40, "strokeWidth": 0}}
]`
	list, err := Decode(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 annotations, got %d", len(list))
	}
	if list[0].Status != StatusUnhandled || !list[0].Mark.Fractional() {
		t.Errorf("unexpected first annotation %+v", list[0])
	}
	if list[1].Mark.Type != TypeRect {
		t.Errorf("missing type should default to %q, got %q", TypeRect, list[1].Mark.Type)
	}
	if list[1].Mark.StrokeWidth == nil || list[1].Mark.Stroke() != 0 {
		t.Errorf("explicit zero stroke width lost: %+v", list[1].Mark.StrokeWidth)
	}
	if list[0].Mark.Stroke() != 4 {
		t.Errorf("default stroke width should be 4, got %v", list[0].Mark.Stroke())
	}
}

func TestDecodeYAMLDocument(t *testing.T) {
	input := `
annotations:
  - id: pump
    comment: P-101
    mark:
      type: rect
      x: 100
      y: 50
      width: 0.5
      height: 0.5
      unit: absolute
`
	list, err := Decode(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 annotation, got %d", len(list))
	}
	if list[0].Mark.Fractional() {
		t.Error("explicit absolute unit should not be fractional")
	}
}

func TestSanitizeDropsBadEntries(t *testing.T) {
	list := []Annotation{
		{ID: "ok", Mark: Mark{Rect: geometry.Rect{Width: 1, Height: 1}}},
		{ID: "ok", Mark: Mark{Rect: geometry.Rect{Width: 2, Height: 2}}},
		{ID: "zero", Mark: Mark{Rect: geometry.Rect{Width: 0, Height: 2}}},
		{ID: "", Mark: Mark{Rect: geometry.Rect{Width: 2, Height: 2}}},
		{ID: "neg", Mark: Mark{Rect: geometry.Rect{Width: -2, Height: 2}}},
	}
	got := Sanitize(list)
	if len(got) != 1 || got[0].ID != "ok" || got[0].Mark.Width != 1 {
		t.Fatalf("unexpected sanitize result %+v", got)
	}
}

func TestEncodeDecodeYAML(t *testing.T) {
	w := 3.0
	list := []Annotation{{ID: "x", Comment: "c", Mark: Mark{Type: TypeRect, Rect: geometry.Rect{X: 1, Y: 2, Width: 3, Height: 4}, StrokeWidth: &w}}}
	var buf bytes.Buffer
	if err := Encode(&buf, list, false); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if diff := cmp.Diff(list, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestCloneIsDeep(t *testing.T) {
	w := 2.0
	a := Annotation{ID: "a", Mark: Mark{StrokeWidth: &w}}
	b := a.Clone()
	*b.Mark.StrokeWidth = 9
	if *a.Mark.StrokeWidth != 2 {
		t.Fatal("clone shares stroke width pointer")
	}
	if !SameMark(a.Mark, a.Clone().Mark) {
		t.Fatal("SameMark should compare pointed-to widths")
	}
}

func TestFromBox(t *testing.T) {
	a := FromBox("id", "", Box{XMin: 0.4, YMin: 0.4, XMax: 0.6, YMax: 0.7}, 1)
	if a.Comment != DefaultLabel {
		t.Errorf("expected default label, got %q", a.Comment)
	}
	want := geometry.Rect{X: 0.4, Y: 0.4, Width: 0.6 - 0.4, Height: 0.7 - 0.4}
	if a.Mark.Rect != want {
		t.Errorf("got %+v want %+v", a.Mark.Rect, want)
	}
	if a.Mark.Stroke() != 2 || !a.Mark.Fractional() {
		t.Errorf("unexpected mark %+v", a.Mark)
	}
}
