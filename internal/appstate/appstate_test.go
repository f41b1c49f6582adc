package appstate

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/touch"

	"github.com/example/annoview/internal/annotation"
	"github.com/example/annoview/internal/geometry"
	"github.com/example/annoview/internal/viewer"
)

type recorder struct {
	lists [][]annotation.Annotation
}

func newState(t *testing.T, opts viewer.Options, extra ...Option) (*AppState, *recorder) {
	t.Helper()
	rec := &recorder{}
	a := New(extra...)
	v := viewer.New(
		viewer.WithOptions(opts),
		viewer.WithDispatcher(a.Dispatch),
		viewer.WithOnAnnotationListChanged(func(list []annotation.Annotation) {
			rec.lists = append(rec.lists, list)
		}),
	)
	a.Attach(v)
	a.resize(200, 100+bottomHeight)
	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	v.SetImage("file:/tmp/page.png", img)
	return a, rec
}

func press(a *AppState, b mouse.Button, x, y float32) {
	a.handleMouse(mouse.Event{X: x, Y: y, Button: b, Direction: mouse.DirPress})
}

func move(a *AppState, x, y float32) {
	a.handleMouse(mouse.Event{X: x, Y: y, Direction: mouse.DirNone})
}

func release(a *AppState, b mouse.Button, x, y float32) {
	a.handleMouse(mouse.Event{X: x, Y: y, Button: b, Direction: mouse.DirRelease})
}

func TestActionFor(t *testing.T) {
	tests := []struct {
		name string
		ev   key.Event
		want string
	}{
		{"plus with shift", key.Event{Rune: '+', Code: key.CodeEqualSign, Modifiers: key.ModShift}, "zoomin"},
		{"minus", key.Event{Rune: '-', Code: key.CodeHyphenMinus}, "zoomout"},
		{"ctrl c rune", key.Event{Rune: 'c', Code: key.CodeC, Modifiers: key.ModControl}, "copy"},
		{"ctrl c control char", key.Event{Rune: 0x03, Code: key.CodeC, Modifiers: key.ModControl}, "copy"},
		{"ctrl shift c", key.Event{Rune: 'C', Code: key.CodeC, Modifiers: key.ModControl | key.ModShift}, "copyjson"},
		{"backspace", key.Event{Rune: -1, Code: key.CodeDeleteBackspace}, "delete"},
		{"escape", key.Event{Rune: -1, Code: key.CodeEscape}, "deselect"},
		{"upper d", key.Event{Rune: 'D', Code: key.CodeD, Modifiers: key.ModShift}, "draw"},
		{"unbound", key.Event{Rune: 'x', Code: key.CodeX}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := actionFor(tt.ev)
			if got != tt.want {
				t.Fatalf("actionFor = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMouseGestureCreatesAnnotation(t *testing.T) {
	a, rec := newState(t, viewer.DefaultOptions())
	press(a, mouse.ButtonLeft, 10, 10)
	move(a, 60, 50)
	release(a, mouse.ButtonLeft, 60, 50)

	if len(rec.lists) == 0 {
		t.Fatal("creation was not reported")
	}
	list := rec.lists[len(rec.lists)-1]
	if len(list) != 1 {
		t.Fatalf("expected one annotation, got %v", list)
	}
	want := geometry.Rect{X: 10, Y: 10, Width: 50, Height: 40}
	if diff := cmp.Diff(want, list[0].Mark.Rect, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Fatalf("rect mismatch (-want +got):\n%s", diff)
	}

	a.handleKey(key.Event{Rune: -1, Code: key.CodeDeleteForward, Direction: key.DirPress})
	if got := a.Viewer.Annotations(); len(got) != 0 {
		t.Fatalf("delete shortcut left %v", got)
	}
}

func TestSaveOnGestureEnd(t *testing.T) {
	var saved [][]annotation.Annotation
	a := New()
	v := viewer.New(
		viewer.WithDispatcher(a.Dispatch),
		viewer.WithOnAnnotationListChanged(a.SaveOnGestureEnd(func(list []annotation.Annotation) {
			saved = append(saved, list)
		})),
	)
	a.Attach(v)
	a.resize(200, 100+bottomHeight)
	v.SetImage("file:/tmp/page.png", image.NewRGBA(image.Rect(0, 0, 200, 100)))

	press(a, mouse.ButtonLeft, 10, 10)
	move(a, 40, 30)
	move(a, 60, 50)
	if len(saved) != 0 {
		t.Fatalf("saved %d times during the gesture", len(saved))
	}
	release(a, mouse.ButtonLeft, 60, 50)
	if len(saved) != 1 {
		t.Fatalf("saved %d times, want once at release", len(saved))
	}
	want := geometry.Rect{X: 10, Y: 10, Width: 50, Height: 40}
	if diff := cmp.Diff(want, saved[0][0].Mark.Rect, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Fatalf("saved rect mismatch (-want +got):\n%s", diff)
	}

	a.handleKey(key.Event{Rune: -1, Code: key.CodeDeleteForward, Direction: key.DirPress})
	if len(saved) != 2 || len(saved[1]) != 0 {
		t.Fatalf("delete not saved at once: %v", saved)
	}
}

func TestPressInStatusBarIgnored(t *testing.T) {
	a, rec := newState(t, viewer.DefaultOptions())
	press(a, mouse.ButtonLeft, 10, 110)
	move(a, 60, 50)
	release(a, mouse.ButtonLeft, 60, 50)
	if len(rec.lists) != 0 || len(a.Viewer.Annotations()) != 0 {
		t.Fatalf("status bar press created %v", a.Viewer.Annotations())
	}
}

func TestRightDragPaints(t *testing.T) {
	opts := viewer.DefaultOptions()
	opts.Drawable = true
	a, _ := newState(t, opts)
	press(a, mouse.ButtonRight, 10, 10)
	move(a, 100, 50)
	release(a, mouse.ButtonRight, 100, 50)
	if got := len(a.Viewer.Lines()); got != 1 {
		t.Fatalf("lines = %d, want 1", got)
	}
	if got := len(a.Viewer.Annotations()); got != 0 {
		t.Fatalf("paint stroke created %d annotations", got)
	}
}

func TestDrawToggleRoutesLeftButton(t *testing.T) {
	opts := viewer.DefaultOptions()
	opts.Drawable = true
	a, _ := newState(t, opts)
	a.handleKey(key.Event{Rune: 'd', Code: key.CodeD, Direction: key.DirPress})
	if !a.drawMode {
		t.Fatal("draw mode not enabled")
	}
	press(a, mouse.ButtonLeft, 10, 10)
	move(a, 100, 50)
	release(a, mouse.ButtonLeft, 100, 50)
	if got := len(a.Viewer.Lines()); got != 1 {
		t.Fatalf("lines = %d, want 1", got)
	}
}

func TestWheel(t *testing.T) {
	a, _ := newState(t, viewer.DefaultOptions())
	a.handleMouse(mouse.Event{X: 100, Y: 50, Button: mouse.ButtonWheelDown, Direction: mouse.DirStep})
	if got := a.Viewer.Viewport().Origin(); got.Y != -2*wheelStep {
		t.Fatalf("pan origin = %v", got)
	}
	before := a.Viewer.Viewport().Scale
	a.handleMouse(mouse.Event{X: 100, Y: 50, Button: mouse.ButtonWheelUp, Direction: mouse.DirStep, Modifiers: key.ModControl})
	if got := a.Viewer.Viewport().Scale; got <= before {
		t.Fatalf("scale = %v, want > %v", got, before)
	}
}

func TestTouchPinchZooms(t *testing.T) {
	a, _ := newState(t, viewer.DefaultOptions())
	a.handleTouch(touch.Event{X: 50, Y: 50, Sequence: 1, Type: touch.TypeBegin})
	a.handleTouch(touch.Event{X: 60, Y: 50, Sequence: 2, Type: touch.TypeBegin})
	a.handleTouch(touch.Event{X: 160, Y: 50, Sequence: 2, Type: touch.TypeMove})
	if got := a.Viewer.Viewport().Scale; got < 1.09 || got > 1.11 {
		t.Fatalf("scale = %v, want about 1.1", got)
	}
	a.handleTouch(touch.Event{X: 160, Y: 50, Sequence: 2, Type: touch.TypeEnd})
	a.handleTouch(touch.Event{X: 50, Y: 50, Sequence: 1, Type: touch.TypeEnd})
	if len(a.touches) != 0 {
		t.Fatalf("touches left: %v", a.touches)
	}
	if got := len(a.Viewer.Annotations()); got != 0 {
		t.Fatalf("pinch created %d annotations", got)
	}
}

func TestExportShortcut(t *testing.T) {
	var gotPath string
	var gotData []byte
	original := writeFile
	writeFile = func(name string, data []byte, _ os.FileMode) error {
		gotPath, gotData = name, data
		return nil
	}
	t.Cleanup(func() { writeFile = original })

	out := filepath.Join(t.TempDir(), "view.png")
	a, _ := newState(t, viewer.DefaultOptions(), WithOutput(out))
	a.handleKey(key.Event{Rune: 's', Code: key.CodeS, Modifiers: key.ModControl, Direction: key.DirPress})

	if gotPath != out {
		t.Fatalf("wrote %q, want %q", gotPath, out)
	}
	if !bytes.HasPrefix(gotData, []byte("\x89PNG")) {
		t.Fatalf("export is not a PNG: % x", gotData[:min(8, len(gotData))])
	}
	if msg := a.activeMessage(); msg != "saved "+out {
		t.Fatalf("message = %q", msg)
	}
}

func TestCopyFailureShowsNoMessage(t *testing.T) {
	original := writeImage
	writeImage = func(image.Image) error { return errors.New("no display") }
	t.Cleanup(func() { writeImage = original })

	a, _ := newState(t, viewer.DefaultOptions())
	a.copyView()
	if msg := a.activeMessage(); msg != "" {
		t.Fatalf("message = %q", msg)
	}
}

func TestCopyAnnotations(t *testing.T) {
	var copied []annotation.Annotation
	original := writeAnnotations
	writeAnnotations = func(list []annotation.Annotation) error {
		copied = list
		return nil
	}
	t.Cleanup(func() { writeAnnotations = original })

	a, _ := newState(t, viewer.DefaultOptions())
	a.Viewer.Sync([]annotation.Annotation{{
		ID:   "a",
		Mark: annotation.Mark{Type: annotation.TypeRect, Rect: geometry.Rect{X: 1, Y: 1, Width: 5, Height: 5}},
	}})
	a.handleKey(key.Event{Rune: 'C', Code: key.CodeC, Modifiers: key.ModControl | key.ModShift, Direction: key.DirPress})
	if len(copied) != 1 || copied[0].ID != "a" {
		t.Fatalf("copied %v", copied)
	}
}

func TestComposeStatusBar(t *testing.T) {
	a, _ := newState(t, viewer.DefaultOptions())
	dst := image.NewRGBA(image.Rect(0, 0, 200, 100+bottomHeight))
	a.compose(dst)
	if got, want := dst.RGBAAt(199, 100+bottomHeight-1), a.Viewer.Theme().ToolbarBackground; got != want {
		t.Fatalf("status bar pixel = %v, want %v", got, want)
	}
	if got := dst.RGBAAt(100, 50); got != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("canvas pixel = %v, want white asset", got)
	}
	if got := a.statusText(); got != "page.png  100%  default" {
		t.Fatalf("status = %q", got)
	}
}

func TestInitialSize(t *testing.T) {
	tests := []struct {
		img  image.Image
		w, h int
	}{
		{nil, 800, 600},
		{image.NewRGBA(image.Rect(0, 0, 640, 480)), 640, 480},
		{image.NewRGBA(image.Rect(0, 0, 2560, 900)), 1280, 450},
		{image.NewRGBA(image.Rect(0, 0, 100, 50)), 320, 240},
	}
	for _, tt := range tests {
		w, h := initialSize(tt.img)
		if w != tt.w || h != tt.h {
			t.Errorf("initialSize(%v) = %d,%d want %d,%d", tt.img, w, h, tt.w, tt.h)
		}
	}
}
