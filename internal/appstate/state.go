package appstate

import (
	"context"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
	"golang.org/x/mobile/event/touch"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/example/annoview/internal/annotation"
	"github.com/example/annoview/internal/clipboard"
	"github.com/example/annoview/internal/export"
	"github.com/example/annoview/internal/interaction"
	"github.com/example/annoview/internal/notify"
	"github.com/example/annoview/internal/viewer"
)

// Replaced in tests.
var (
	writeImage       = clipboard.WriteImage
	writeAnnotations = clipboard.WriteAnnotations
	readAsset        = clipboard.ReadAsset
	writeFile        = os.WriteFile
	now              = time.Now
)

const messageDuration = 2 * time.Second

// MaxWidth and MaxHeight bound the initial window size.
const MaxWidth, MaxHeight = 1280, 900

// AppState runs a viewer inside a shiny window.
type AppState struct {
	Viewer   *viewer.Viewer
	Title    string
	Output   string
	Export   export.Options
	Notifier *notify.Notifier

	calls chan func()

	width, height int
	drawMode      bool
	message       string
	messageUntil  time.Time
	touches       []touchPoint

	actions map[string]func()

	// save deferred to the end of a gesture
	pendingSave func()

	onClose   func()
	closeOnce sync.Once
}

type touchPoint struct {
	seq touch.Sequence
	pos r2.Vec
}

// Option modifies an AppState during creation.
type Option func(*AppState)

// WithTitle sets the window title.
func WithTitle(title string) Option { return func(a *AppState) { a.Title = title } }

// WithOutput sets the file written by the export shortcut.
func WithOutput(out string) Option { return func(a *AppState) { a.Output = out } }

// WithExportOptions sets the options used by the export shortcut.
func WithExportOptions(o export.Options) Option { return func(a *AppState) { a.Export = o } }

// WithNotifier sets the desktop notifier.
func WithNotifier(n *notify.Notifier) Option { return func(a *AppState) { a.Notifier = n } }

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(a *AppState) { a.onClose = fn } }

// New creates an AppState. The viewer is attached afterwards with Attach so
// that it can be built with Dispatch as its dispatcher.
func New(opts ...Option) *AppState {
	a := &AppState{
		Title:  "annoview",
		Output: "annotated.png",
		Export: export.DefaultOptions(),
		calls:  make(chan func(), 16),
	}
	for _, o := range opts {
		o(a)
	}
	a.actions = a.registerActions()
	return a
}

// Attach sets the viewer driven by the window.
func (a *AppState) Attach(v *viewer.Viewer) { a.Viewer = v }

// Dispatch queues fn to run on the event loop. It is meant for
// viewer.WithDispatcher.
func (a *AppState) Dispatch(fn func()) { a.calls <- fn }

// callEvent carries a dispatched function through the window's event queue.
type callEvent struct{ fn func() }

func (a *AppState) notifyClose() {
	a.flushSave()
	a.closeOnce.Do(func() {
		if a.onClose != nil {
			a.onClose()
		}
	})
}

func (a *AppState) showMessage(format string, args ...any) {
	a.message = fmt.Sprintf(format, args...)
	a.messageUntil = now().Add(messageDuration)
	log.Print(a.message)
	a.Viewer.RequestRepaint()
}

func (a *AppState) activeMessage() string {
	if a.message != "" && now().Before(a.messageUntil) {
		return a.message
	}
	return ""
}

// LoadFailed reports a failed load in the status bar and as a notification.
func (a *AppState) LoadFailed(err *viewer.LoadError) {
	a.showMessage("could not open %s", err.Source)
	if a.Notifier != nil {
		a.Notifier.LoadFailure(err.Source, err.Err)
	}
}

func (a *AppState) registerActions() map[string]func() {
	return map[string]func(){
		"zoomin":   func() { a.Viewer.ZoomIn() },
		"zoomout":  func() { a.Viewer.ZoomOut() },
		"reset":    func() { a.Viewer.ResetView() },
		"delete":   func() { a.Viewer.DeleteSelected() },
		"deselect": func() { a.Viewer.SetSelection(nil) },
		"focus":    a.focusSelection,
		"draw":     a.toggleDraw,
		"copy":     a.copyView,
		"copyjson": a.copyAnnotations,
		"paste":    a.pasteAsset,
		"export":   a.exportView,
	}
}

func (a *AppState) focusSelection() {
	sel := a.Viewer.Selection()
	if len(sel) == 0 {
		return
	}
	if err := a.Viewer.ZoomToAnnotation(sel[len(sel)-1], 0); err != nil {
		log.Printf("focus: %v", err)
	}
}

func (a *AppState) toggleDraw() {
	a.drawMode = !a.drawMode
	if a.drawMode {
		a.showMessage("draw mode on")
		return
	}
	a.showMessage("draw mode off")
}

func (a *AppState) copyView() {
	if err := writeImage(a.Viewer.Snapshot()); err != nil {
		log.Printf("copy: %v", err)
		return
	}
	a.showMessage("view copied to clipboard")
	if a.Notifier != nil {
		a.Notifier.Copy("view")
	}
}

func (a *AppState) copyAnnotations() {
	list := a.Viewer.Annotations()
	if err := writeAnnotations(list); err != nil {
		log.Printf("copy: %v", err)
		return
	}
	a.showMessage("%d annotations copied to clipboard", len(list))
	if a.Notifier != nil {
		a.Notifier.Copy("annotations")
	}
}

func (a *AppState) pasteAsset() {
	src, err := readAsset()
	if err != nil {
		log.Printf("paste: %v", err)
		return
	}
	a.Viewer.Load(context.Background(), src)
}

func (a *AppState) exportView() {
	data, err := a.Viewer.ExportCurrentView(a.Output, a.Export)
	if err != nil {
		log.Printf("export: %v", err)
		a.showMessage("export failed: %v", err)
		return
	}
	if dir := filepath.Dir(a.Output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Printf("export: %v", err)
			return
		}
	}
	if err := writeFile(a.Output, data, 0o644); err != nil {
		log.Printf("export: %v", err)
		a.showMessage("export failed: %v", err)
		return
	}
	a.showMessage("saved %s", a.Output)
	if a.Notifier != nil {
		a.Notifier.Export(a.Output, a.Viewer.Snapshot())
	}
}

// Run executes the UI loop using shiny's driver.
func (a *AppState) Run() { driver.Main(a.Main) }

// Main opens the window and processes events until it closes.
func (a *AppState) Main(s screen.Screen) {
	if a.Viewer == nil {
		log.Print("appstate: no viewer attached")
		return
	}
	width, height := initialSize(a.Viewer.Image())
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height + bottomHeight, Title: a.Title})
	if err != nil {
		log.Fatalf("new window: %v", err)
	}
	defer w.Release()
	defer a.notifyClose()

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-a.Viewer.Repaints():
				w.Send(paint.Event{})
			case fn := <-a.calls:
				w.Send(callEvent{fn: fn})
			case <-done:
				return
			}
		}
	}()

	for {
		switch e := w.NextEvent().(type) {
		case callEvent:
			e.fn()
		case lifecycle.Event:
			if e.Crosses(lifecycle.StageFocused) == lifecycle.CrossOff {
				a.Viewer.Machine().ForceMouseUp()
				a.flushSave()
			}
			if e.To == lifecycle.StageDead {
				return
			}
		case size.Event:
			a.resize(e.WidthPx, e.HeightPx)
		case paint.Event:
			a.drawFrame(s, w)
		case mouse.Event:
			a.handleMouse(e)
		case touch.Event:
			a.handleTouch(e)
		case key.Event:
			a.handleKey(e)
		case error:
			log.Print(e)
		}
	}
}

func (a *AppState) resize(width, height int) {
	a.width, a.height = width, height
	a.Viewer.SetCanvasSize(float64(width), float64(canvasHeight(height)))
}

func canvasHeight(height int) int {
	if h := height - bottomHeight; h > 0 {
		return h
	}
	return 0
}

// initialSize picks a window size for img, shrinking large assets to fit a
// typical screen.
func initialSize(img image.Image) (int, int) {
	if img == nil {
		return 800, 600
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w <= 0 || h <= 0 {
		return 800, 600
	}
	if w > MaxWidth || h > MaxHeight {
		scale := min(float64(MaxWidth)/float64(w), float64(MaxHeight)/float64(h))
		w, h = int(float64(w)*scale), int(float64(h)*scale)
	}
	return max(w, 320), max(h, 240)
}

// SaveOnGestureEnd returns an OnAnnotationListChanged callback that hands
// the list to save once the pointer gesture changing it ends, so a drag is
// saved once rather than on every move. Changes made between gestures, such
// as a deletion, are saved at once.
func (a *AppState) SaveOnGestureEnd(save func([]annotation.Annotation)) func([]annotation.Annotation) {
	return func(list []annotation.Annotation) {
		a.pendingSave = func() { save(list) }
		if a.Viewer == nil || a.Viewer.Machine().Mode() == interaction.ModeDefault {
			a.flushSave()
		}
	}
}

func (a *AppState) flushSave() {
	if fn := a.pendingSave; fn != nil {
		a.pendingSave = nil
		fn()
	}
}

// SaveAnnotations returns a callback that writes a list to path.
func SaveAnnotations(path string) func([]annotation.Annotation) {
	return func(list []annotation.Annotation) {
		if err := annotation.Save(path, list); err != nil {
			log.Printf("save %s: %v", path, err)
		}
	}
}

// sourceLabel shortens an asset id for the status bar.
func sourceLabel(id string) string {
	switch {
	case id == "":
		return "no asset"
	case len(id) > 5 && id[:5] == "file:":
		return filepath.Base(id[5:])
	case len(id) > 4 && id[:4] == "pdf:":
		return filepath.Base(id[4:])
	}
	return id
}
