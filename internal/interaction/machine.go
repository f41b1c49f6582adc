// Package interaction turns pointer, key and touch input into shape edits,
// selection changes and viewport moves.
package interaction

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/example/annoview/internal/annotation"
	"github.com/example/annoview/internal/geometry"
	"github.com/example/annoview/internal/shape"
	"github.com/example/annoview/internal/viewport"
)

// HoverPadding is added to a mark's stroke width to form its hover margin.
const HoverPadding = 10

// Mode is the state of the pointer machine.
type Mode int

const (
	ModeDefault Mode = iota
	ModeCreating
	ModeDragging
	ModeTransforming
)

func (m Mode) String() string {
	switch m {
	case ModeDefault:
		return "default"
	case ModeCreating:
		return "creating"
	case ModeDragging:
		return "dragging"
	case ModeTransforming:
		return "transforming"
	}
	return "unknown"
}

// Options are the capabilities the machine honours.
type Options struct {
	Editable           bool
	Creatable          bool
	Hoverable          bool
	Drawable           bool
	UsePercentage      bool
	PinchScaleModifier float64
}

// Host is the viewer the machine drives. The machine keeps no shape data of
// its own.
type Host interface {
	Options() Options
	Viewport() *viewport.Controller
	AssetSize() geometry.Size
	// Shapes returns the shapes in paint order, topmost last.
	Shapes() []*shape.Shape
	// Transformer returns the active transformer or nil.
	Transformer() *shape.Transformer
	// CanvasProjection maps marks to canvas rectangles.
	CanvasProjection() shape.Project
	AddShape(a annotation.Annotation) *shape.Shape
	RemoveShape(id string)
	RaiseShape(id string)
	SetSelection(ids []string)
	HoverChanged()
	ViewChanged()
	AddStroke(points []r2.Vec)
}

// Pointer is a pointer sample in canvas coordinates.
type Pointer struct {
	Pos   r2.Vec
	Shift bool
	// Draw routes the gesture to the paint layer.
	Draw bool
}

type handlers struct {
	down func(m *Machine, p Pointer)
	move func(m *Machine, p Pointer)
	up   func(m *Machine, p Pointer)
}

// Machine is the pointer state machine.
type Machine struct {
	host     Host
	mode     Mode
	dispatch map[Mode]handlers

	pressed   bool
	moved     bool
	downAt    r2.Vec
	hitOnDown bool

	space     bool
	panning   bool
	panOrigin r2.Vec

	creating    *shape.Shape
	createStart r2.Vec
	createFrac  bool

	dragged *shape.Shape

	stroke []r2.Vec

	pinching  bool
	lastPinch float64
}

// New returns a machine in ModeDefault.
func New(host Host) *Machine {
	return &Machine{
		host: host,
		mode: ModeDefault,
		dispatch: map[Mode]handlers{
			ModeDefault:      {down: (*Machine).defaultDown, move: (*Machine).defaultMove, up: (*Machine).defaultUp},
			ModeCreating:     {down: nop, move: (*Machine).creatingMove, up: (*Machine).creatingUp},
			ModeDragging:     {down: nop, move: (*Machine).draggingMove, up: (*Machine).draggingUp},
			ModeTransforming: {down: nop, move: (*Machine).transformingMove, up: (*Machine).transformingUp},
		},
	}
}

func nop(*Machine, Pointer) {}

// Mode returns the current state.
func (m *Machine) Mode() Mode { return m.mode }

// Panning reports whether a pan gesture is in progress.
func (m *Machine) Panning() bool { return m.panning }

// Drawing reports whether a paint stroke is in progress.
func (m *Machine) Drawing() bool { return m.stroke != nil }

// Stroke returns the points of the stroke in progress.
func (m *Machine) Stroke() []r2.Vec { return m.stroke }

// SetSpace records the state of the space bar, which arms panning.
func (m *Machine) SetSpace(down bool) { m.space = down }

func (m *Machine) natural(p r2.Vec) r2.Vec {
	return m.host.Viewport().ToAsset(p)
}

func (m *Machine) panArmed(p Pointer) bool {
	o := m.host.Options()
	return p.Shift || m.space || !(o.Creatable || o.Editable || o.Drawable)
}

// PointerDown starts a gesture.
func (m *Machine) PointerDown(p Pointer) {
	if m.pinching {
		return
	}
	m.pressed, m.moved, m.downAt, m.hitOnDown = true, false, p.Pos, false
	if p.Draw && m.host.Options().Drawable {
		m.stroke = []r2.Vec{p.Pos}
		return
	}
	if m.panArmed(p) {
		m.panning = true
		m.panOrigin = m.host.Viewport().Origin()
		return
	}
	m.dispatch[m.mode].down(m, p)
}

// PointerMove continues a gesture or updates hover state.
func (m *Machine) PointerMove(p Pointer) {
	if m.pinching {
		return
	}
	if m.pressed && p.Pos != m.downAt {
		m.moved = true
	}
	switch {
	case m.stroke != nil:
		m.stroke = append(m.stroke, p.Pos)
		m.host.ViewChanged()
	case m.panning:
		m.host.Viewport().PanFrom(m.downAt, m.panOrigin, p.Pos)
		m.host.ViewChanged()
	default:
		m.dispatch[m.mode].move(m, p)
	}
}

// PointerUp ends a gesture.
func (m *Machine) PointerUp(p Pointer) {
	if !m.pressed {
		return
	}
	switch {
	case m.stroke != nil:
		pts := m.stroke
		m.stroke = nil
		m.host.AddStroke(pts)
	case m.panning:
		m.panning = false
		if !m.moved {
			m.click(p.Pos)
		}
	default:
		m.dispatch[m.mode].up(m, p)
	}
	m.pressed = false
}

// PointerLeave forces the current gesture to finish.
func (m *Machine) PointerLeave() {
	if !m.pressed {
		m.clearHover()
		return
	}
	m.PointerUp(Pointer{Pos: m.downAt})
	m.moved = false
}

// ForceMouseUp is PointerLeave for callers outside the canvas.
func (m *Machine) ForceMouseUp() { m.PointerLeave() }

// topmost returns the last shape in paint order hit at canvas point p.
func (m *Machine) topmost(p r2.Vec, padding func(*shape.Shape) float64) *shape.Shape {
	shapes := m.host.Shapes()
	proj := m.host.CanvasProjection()
	for i := len(shapes) - 1; i >= 0; i-- {
		s := shapes[i]
		if s.Hit(p, proj, padding(s)) {
			return s
		}
	}
	return nil
}

func noPadding(*shape.Shape) float64 { return 0 }

func hoverPadding(s *shape.Shape) float64 {
	return s.Annotation().Mark.Stroke() + HoverPadding
}

// click applies click selection: the topmost clickable shape is selected and
// an empty spot clears the selection.
func (m *Machine) click(p r2.Vec) {
	s := m.topmost(p, noPadding)
	if s == nil {
		m.host.SetSelection(nil)
		return
	}
	if !s.Annotation().DisableClick {
		m.host.SetSelection([]string{s.ID()})
	}
}

func (m *Machine) defaultDown(p Pointer) {
	o := m.host.Options()
	nat := m.natural(p.Pos)
	if t := m.host.Transformer(); t != nil && t.Start(p.Pos, nat, m.host.CanvasProjection()) {
		m.hitOnDown = true
		m.mode = ModeTransforming
		return
	}
	if s := m.topmost(p.Pos, noPadding); s != nil {
		m.hitOnDown = true
		if s.Annotation().DisableClick {
			return
		}
		m.host.SetSelection([]string{s.ID()})
		if !o.Editable {
			return
		}
		m.host.RaiseShape(s.ID())
		s.DragStart(nat)
		m.dragged = s
		m.mode = ModeDragging
		return
	}
	if !(o.Creatable || o.Editable) {
		return
	}
	m.createFrac = o.UsePercentage
	m.createStart = nat
	unit := geometry.UnitAbsolute
	at := nat
	if m.createFrac {
		unit = geometry.UnitFraction
		asset := m.host.AssetSize().OrPlaceholder()
		at = r2.Vec{X: nat.X / asset.Width, Y: nat.Y / asset.Height}
	}
	m.creating = m.host.AddShape(annotation.Annotation{
		ID: annotation.NewID(),
		Mark: annotation.Mark{
			Type: annotation.TypeRect,
			Rect: geometry.Rect{X: at.X, Y: at.Y},
			Unit: unit,
		},
	})
	m.mode = ModeCreating
}

func (m *Machine) defaultMove(p Pointer) {
	if m.pressed || !m.host.Options().Hoverable {
		return
	}
	hit := m.topmost(p.Pos, hoverPadding)
	changed := false
	for _, s := range m.host.Shapes() {
		if s.Hover(s == hit) {
			changed = true
		}
	}
	if changed {
		m.host.HoverChanged()
	}
}

func (m *Machine) clearHover() {
	changed := false
	for _, s := range m.host.Shapes() {
		if s.Hover(false) {
			changed = true
		}
	}
	if changed {
		m.host.HoverChanged()
	}
}

func (m *Machine) defaultUp(p Pointer) {
	if !m.moved && !m.hitOnDown {
		m.host.SetSelection(nil)
	}
}

func (m *Machine) creatingMove(p Pointer) {
	if m.creating == nil {
		return
	}
	r := geometry.FromBox(r2.Box{Min: m.createStart, Max: m.natural(p.Pos)})
	r = geometry.FromViewportNoOffset(r, m.createFrac, m.host.AssetSize().OrPlaceholder())
	m.creating.Resize(r)
}

func (m *Machine) creatingUp(p Pointer) {
	s := m.creating
	m.creating = nil
	m.mode = ModeDefault
	if s == nil {
		return
	}
	if !s.Annotation().Mark.Rect.Valid() {
		m.host.RemoveShape(s.ID())
		m.host.SetSelection(nil)
		return
	}
	m.host.SetSelection([]string{s.ID()})
}

func (m *Machine) draggingMove(p Pointer) {
	if m.dragged != nil {
		m.dragged.Drag(m.natural(p.Pos))
	}
}

func (m *Machine) draggingUp(Pointer) {
	if m.dragged != nil {
		m.dragged.DragEnd()
	}
	m.dragged = nil
	m.mode = ModeDefault
}

func (m *Machine) transformingMove(p Pointer) {
	if t := m.host.Transformer(); t != nil {
		t.Transform(m.natural(p.Pos))
	}
}

func (m *Machine) transformingUp(Pointer) {
	if t := m.host.Transformer(); t != nil {
		t.End()
	}
	m.mode = ModeDefault
}
