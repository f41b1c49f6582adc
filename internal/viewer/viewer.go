// Package viewer is the annotation surface: it owns the shapes, the
// selection, the viewport and the loaded asset, and reports changes through
// callbacks. All methods must be called from one goroutine, normally the UI
// event loop.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/example/annoview/internal/annotation"
	"github.com/example/annoview/internal/asset"
	"github.com/example/annoview/internal/drawing"
	"github.com/example/annoview/internal/export"
	"github.com/example/annoview/internal/geometry"
	"github.com/example/annoview/internal/interaction"
	"github.com/example/annoview/internal/render"
	"github.com/example/annoview/internal/shape"
	"github.com/example/annoview/internal/theme"
	"github.com/example/annoview/internal/viewport"
)

var (
	// ErrNotFound is returned when no shape carries the requested id.
	ErrNotFound = errors.New("annotation not found")
	// ErrNoAsset is returned by operations that need a loaded asset.
	ErrNoAsset = errors.New("no asset loaded")
)

// LoadError reports a failed asset load.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string { return fmt.Sprintf("load %s: %v", e.Source, e.Err) }
func (e *LoadError) Unwrap() error { return e.Err }

// Options are the viewer capabilities.
type Options struct {
	Editable      bool
	Creatable     bool
	Hoverable     bool
	Drawable      bool
	UsePercentage bool
	DrawLabel     bool

	MouseWheelScaleModifier float64
	PinchScaleModifier      float64
	// BrushRadius is the display width of new paint-layer strokes.
	BrushRadius             float64
}

// DefaultOptions returns an editable viewer with labels.
func DefaultOptions() Options {
	return Options{
		Editable:                true,
		Creatable:               true,
		Hoverable:               true,
		DrawLabel:               true,
		MouseWheelScaleModifier: viewport.DefaultWheelModifier,
		PinchScaleModifier:      viewport.DefaultPinchModifier,
		BrushRadius:             4,
	}
}

// Viewer holds the annotation state for one displayed asset.
type Viewer struct {
	opts     Options
	theme    *theme.Theme
	registry *render.Registry
	dispatch func(func())

	vp          *viewport.Controller
	machine     *interaction.Machine
	shapes      []*shape.Shape
	selection   []string
	transformer *shape.Transformer
	lines       []drawing.Line

	img     image.Image
	current string
	pending string
	cancel  context.CancelFunc

	onList      func([]annotation.Annotation)
	onSelection func([]string)
	onLoad      func(*LoadError)
	onLines     func([]drawing.Line)

	updateCh chan struct{}
}

// Option modifies a Viewer during creation.
type Option func(*Viewer)

// WithOptions sets the capabilities.
func WithOptions(o Options) Option { return func(v *Viewer) { v.opts = o } }

// WithTheme sets the colours used for painting.
func WithTheme(t *theme.Theme) Option { return func(v *Viewer) { v.theme = t } }

// WithRegistry sets the custom renderer registry.
func WithRegistry(r *render.Registry) Option { return func(v *Viewer) { v.registry = r } }

// WithDispatcher sets how load results are handed back to the owning
// goroutine. Without one the result is applied on the loading goroutine.
func WithDispatcher(fn func(func())) Option { return func(v *Viewer) { v.dispatch = fn } }

// WithOnAnnotationListChanged registers the annotation list callback.
func WithOnAnnotationListChanged(fn func([]annotation.Annotation)) Option {
	return func(v *Viewer) { v.onList = fn }
}

// WithOnSelectionChanged registers the selection callback.
func WithOnSelectionChanged(fn func([]string)) Option {
	return func(v *Viewer) { v.onSelection = fn }
}

// WithOnLoadFailure registers the asset load failure callback.
func WithOnLoadFailure(fn func(*LoadError)) Option { return func(v *Viewer) { v.onLoad = fn } }

// WithOnLinesChanged registers the paint layer callback.
func WithOnLinesChanged(fn func([]drawing.Line)) Option { return func(v *Viewer) { v.onLines = fn } }

// New creates a viewer with no asset.
func New(opts ...Option) *Viewer {
	v := &Viewer{
		opts:     DefaultOptions(),
		vp:       viewport.New(),
		dispatch: func(fn func()) { fn() },
		updateCh: make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(v)
	}
	if v.theme == nil {
		v.theme = theme.Default()
	}
	if v.registry == nil {
		v.registry = render.NewRegistry()
	}
	v.machine = interaction.New(v)
	return v
}

// Machine returns the input state machine fed by the front-end.
func (v *Viewer) Machine() *interaction.Machine { return v.machine }

// Theme returns the painting colours.
func (v *Viewer) Theme() *theme.Theme { return v.theme }

// Registry returns the custom renderer registry.
func (v *Viewer) Registry() *render.Registry { return v.registry }

// Image returns the loaded asset or nil. It may be an *asset.Scaled.
func (v *Viewer) Image() image.Image { return v.img }

// RequestRepaint schedules a repaint without blocking. Requests made before
// the previous one was consumed are merged.
func (v *Viewer) RequestRepaint() {
	select {
	case v.updateCh <- struct{}{}:
	default:
	}
}

// Repaints delivers one value per merged repaint request.
func (v *Viewer) Repaints() <-chan struct{} { return v.updateCh }

// SetCanvasSize records the drawable size. The first known size fits the
// asset.
func (v *Viewer) SetCanvasSize(w, h float64) {
	first := !v.vp.Canvas.Known()
	v.vp.Canvas = geometry.Size{Width: w, Height: h}
	if first {
		v.vp.Reset()
	}
	v.RequestRepaint()
}

// Load decodes src in the background. Only the most recent load is applied.
func (v *Viewer) Load(ctx context.Context, src asset.Source) {
	id := src.ID()
	if v.cancel != nil {
		v.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	v.pending, v.cancel = id, cancel
	go func() {
		img, err := src.Decode(ctx)
		v.dispatch(func() { v.Complete(id, img, err) })
	}()
}

// Complete applies the result of the load identified by id. Results of
// superseded loads are dropped and Complete reports false.
func (v *Viewer) Complete(id string, img image.Image, err error) bool {
	if id == "" || id != v.pending {
		return false
	}
	v.pending = ""
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	if err == nil && img == nil {
		err = errors.New("empty image")
	}
	if err != nil {
		lerr := &LoadError{Source: id, Err: err}
		log.Print(lerr)
		if v.onLoad != nil {
			v.onLoad(lerr)
		}
		return true
	}
	v.setImage(id, img)
	return true
}

// SetImage shows img directly, dropping any pending load.
func (v *Viewer) SetImage(id string, img image.Image) {
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.pending = ""
	v.setImage(id, img)
}

func (v *Viewer) setImage(id string, img image.Image) {
	v.img, v.current = img, id
	v.vp.Asset = asset.Size(img)
	v.vp.Reset()
	v.RequestRepaint()
}

// Source returns the id of the displayed asset.
func (v *Viewer) Source() string { return v.current }

// Options implements interaction.Host.
func (v *Viewer) Options() interaction.Options {
	return interaction.Options{
		Editable:           v.opts.Editable,
		Creatable:          v.opts.Creatable,
		Hoverable:          v.opts.Hoverable,
		Drawable:           v.opts.Drawable,
		UsePercentage:      v.opts.UsePercentage,
		PinchScaleModifier: v.opts.PinchScaleModifier,
	}
}

// Viewport returns the pan and zoom controller.
func (v *Viewer) Viewport() *viewport.Controller { return v.vp }

// AssetSize returns the natural asset size, zero until an asset is loaded.
func (v *Viewer) AssetSize() geometry.Size { return v.vp.Asset }

// Shapes returns the shapes in paint order.
func (v *Viewer) Shapes() []*shape.Shape { return v.shapes }

// Transformer returns the transformer of the focused shape, if any.
func (v *Viewer) Transformer() *shape.Transformer { return v.transformer }

// CanvasProjection maps marks to canvas rectangles.
func (v *Viewer) CanvasProjection() shape.Project {
	return func(m annotation.Mark) geometry.Rect {
		return geometry.ToViewport(m.Rect, m.Unit, v.vp.Asset.OrPlaceholder(), v.vp.Viewport)
	}
}

// AddShape appends a shape for a. It is reported once it has a size.
func (v *Viewer) AddShape(a annotation.Annotation) *shape.Shape {
	a = a.Clone()
	s := shape.New(&a, v)
	v.shapes = append(v.shapes, s)
	v.RequestRepaint()
	return s
}

// RemoveShape drops a shape without reporting.
func (v *Viewer) RemoveShape(id string) {
	if v.removeShape(id) {
		v.RequestRepaint()
	}
}

func (v *Viewer) removeShape(id string) bool {
	i := v.index(id)
	if i < 0 {
		return false
	}
	v.shapes = append(v.shapes[:i], v.shapes[i+1:]...)
	if v.transformer != nil && v.transformer.ID() == id {
		v.transformer = nil
	}
	return true
}

// RaiseShape moves a shape to the top of the paint order.
func (v *Viewer) RaiseShape(id string) {
	i := v.index(id)
	if i < 0 || i == len(v.shapes)-1 {
		return
	}
	s := v.shapes[i]
	v.shapes = append(append(v.shapes[:i:i], v.shapes[i+1:]...), s)
	v.RequestRepaint()
}

func (v *Viewer) index(id string) int {
	for i, s := range v.shapes {
		if s.ID() == id {
			return i
		}
	}
	return -1
}

func (v *Viewer) find(id string) *shape.Shape {
	if i := v.index(id); i >= 0 {
		return v.shapes[i]
	}
	return nil
}

// HoverChanged implements interaction.Host.
func (v *Viewer) HoverChanged() {
	v.syncTransformer()
	v.RequestRepaint()
}

// ViewChanged implements interaction.Host.
func (v *Viewer) ViewChanged() { v.RequestRepaint() }

// ShapeChanged implements shape.Host.
func (v *Viewer) ShapeChanged() {
	v.report()
	v.RequestRepaint()
}

// Annotations returns copies of the annotations with a valid size, in paint
// order.
func (v *Viewer) Annotations() []annotation.Annotation {
	out := make([]annotation.Annotation, 0, len(v.shapes))
	for _, s := range v.shapes {
		a := s.Annotation()
		if a.Mark.Rect.Valid() {
			out = append(out, a.Clone())
		}
	}
	return out
}

func (v *Viewer) report() {
	if v.onList != nil {
		v.onList(v.Annotations())
	}
}

// syncTransformer binds the transformer to the last selected shape, or the
// hovered one. A transformer in the middle of a resize is kept.
func (v *Viewer) syncTransformer() {
	if v.transformer != nil && v.transformer.Active() && v.find(v.transformer.ID()) != nil {
		return
	}
	var target *shape.Shape
	for i := len(v.selection) - 1; i >= 0 && target == nil; i-- {
		target = v.find(v.selection[i])
	}
	if target == nil && v.opts.Hoverable {
		for i := len(v.shapes) - 1; i >= 0; i-- {
			if v.shapes[i].Hovered() {
				target = v.shapes[i]
				break
			}
		}
	}
	switch {
	case target == nil:
		v.transformer = nil
	case v.transformer == nil || v.transformer.ID() != target.ID():
		v.transformer = shape.NewTransformer(target, v.opts.Editable)
	}
}

// AddStroke stores a finished display-space paint stroke.
func (v *Viewer) AddStroke(points []r2.Vec) {
	line := drawing.Line{Points: points, BrushColor: v.theme.Brush, BrushRadius: v.opts.BrushRadius}
	stored := drawing.ToStorage([]drawing.Line{line}, v.vp.Viewport, v.vp.Asset)
	if len(stored) == 0 {
		return
	}
	v.lines = append(v.lines, stored...)
	if v.onLines != nil {
		v.onLines(v.Lines())
	}
	v.RequestRepaint()
}

// Lines returns a copy of the paint layer in storage form.
func (v *Viewer) Lines() []drawing.Line {
	out := make([]drawing.Line, len(v.lines))
	for i, l := range v.lines {
		l.Points = append([]r2.Vec(nil), l.Points...)
		out[i] = l
	}
	return out
}

// SetLines replaces the paint layer.
func (v *Viewer) SetLines(lines []drawing.Line) {
	v.lines = append([]drawing.Line(nil), lines...)
	v.RequestRepaint()
}

// ZoomIn zooms one step.
func (v *Viewer) ZoomIn() {
	v.vp.ZoomIn()
	v.RequestRepaint()
}

// ZoomOut zooms out one step.
func (v *Viewer) ZoomOut() {
	v.vp.ZoomOut()
	v.RequestRepaint()
}

// ResetView fits and centres the asset.
func (v *Viewer) ResetView() {
	v.vp.Reset()
	v.RequestRepaint()
}

// Wheel applies a scroll gesture at canvas point at.
func (v *Viewer) Wheel(delta, at r2.Vec, ctrl bool) {
	v.vp.Wheel(delta, at, ctrl, v.opts.MouseWheelScaleModifier)
	v.RequestRepaint()
}

// ZoomToAnnotation centres the view on an annotation at scale. A zero scale
// uses viewport.DefaultFocusScale.
func (v *Viewer) ZoomToAnnotation(id string, scale float64) error {
	s := v.find(id)
	if s == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	sz := v.vp.Asset.OrPlaceholder()
	m := s.Annotation().Mark
	r := geometry.ToViewportNoOffset(m.Rect, m.Unit, sz)
	frac := geometry.FromViewportNoOffset(r, true, sz)
	v.vp.ZoomTo(frac.Box(), scale)
	v.RequestRepaint()
	return nil
}

// DeleteAnnotation removes an annotation and drops it from the selection.
func (v *Viewer) DeleteAnnotation(id string) error {
	if !v.removeShape(id) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	v.SetSelection(v.selection)
	v.report()
	v.RequestRepaint()
	return nil
}

// DeleteSelected removes every selected annotation.
func (v *Viewer) DeleteSelected() {
	ids := append([]string(nil), v.selection...)
	for _, id := range ids {
		if err := v.DeleteAnnotation(id); err != nil {
			log.Printf("delete: %v", err)
		}
	}
}

// SetComment replaces an annotation's comment.
func (v *Viewer) SetComment(id, comment string) error {
	s := v.find(id)
	if s == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.SetComment(comment)
	v.report()
	v.RequestRepaint()
	return nil
}

// ExportCurrentView flattens the asset with its annotations and paint layer.
// The output is opts.Scale times the natural asset size, page points for a
// PDF. An empty opts.Format is taken from filename.
func (v *Viewer) ExportCurrentView(filename string, opts export.Options) ([]byte, error) {
	if v.img == nil {
		return nil, ErrNoAsset
	}
	if opts.Format == "" && filename != "" {
		f, err := export.ParseFormat(filename)
		if err != nil {
			return nil, err
		}
		opts.Format = f
	}
	page := export.Page{
		Image:    asset.Raster(v.img),
		Size:     v.vp.Asset,
		Lines:    v.lines,
		Theme:    v.theme,
		Registry: v.registry,
	}
	return export.Export(page, v.Annotations(), opts)
}

// ExtractRegion returns the part of the asset under an annotation.
func (v *Viewer) ExtractRegion(id string) (image.Image, error) {
	s := v.find(id)
	if s == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if v.img == nil {
		return nil, ErrNoAsset
	}
	m := s.Annotation().Mark
	r := geometry.ToViewportNoOffset(m.Rect, m.Unit, v.vp.Asset)
	out := asset.CropNatural(v.img, r)
	if out.Rect.Empty() {
		return nil, fmt.Errorf("annotation %s has no area", id)
	}
	return out, nil
}
