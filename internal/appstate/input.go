package appstate

import (
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/touch"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/example/annoview/internal/interaction"
)

// wheelStep is the scroll delta of one wheel notch.
const wheelStep = 50

func wheelDelta(b mouse.Button) r2.Vec {
	switch b {
	case mouse.ButtonWheelUp:
		return r2.Vec{Y: -wheelStep}
	case mouse.ButtonWheelDown:
		return r2.Vec{Y: wheelStep}
	case mouse.ButtonWheelLeft:
		return r2.Vec{X: -wheelStep}
	case mouse.ButtonWheelRight:
		return r2.Vec{X: wheelStep}
	}
	return r2.Vec{}
}

func (a *AppState) handleMouse(e mouse.Event) {
	pos := r2.Vec{X: float64(e.X), Y: float64(e.Y)}
	if e.Button.IsWheel() {
		if e.Direction != mouse.DirRelease {
			a.Viewer.Wheel(wheelDelta(e.Button), pos, e.Modifiers&key.ModControl != 0)
		}
		return
	}
	m := a.Viewer.Machine()
	p := interaction.Pointer{
		Pos:   pos,
		Shift: e.Modifiers&key.ModShift != 0,
		Draw:  a.drawMode || e.Button == mouse.ButtonRight,
	}
	switch e.Direction {
	case mouse.DirPress:
		if e.Button != mouse.ButtonLeft && e.Button != mouse.ButtonRight {
			return
		}
		if int(e.Y) >= canvasHeight(a.height) && a.height > 0 {
			return
		}
		m.PointerDown(p)
	case mouse.DirRelease:
		m.PointerUp(p)
		a.flushSave()
	case mouse.DirNone:
		m.PointerMove(p)
	}
	a.Viewer.RequestRepaint()
}

func (a *AppState) touchPositions() []r2.Vec {
	pts := make([]r2.Vec, len(a.touches))
	for i, t := range a.touches {
		pts[i] = t.pos
	}
	return pts
}

func (a *AppState) handleTouch(e touch.Event) {
	pos := r2.Vec{X: float64(e.X), Y: float64(e.Y)}
	m := a.Viewer.Machine()
	switch e.Type {
	case touch.TypeBegin:
		a.touches = append(a.touches, touchPoint{seq: e.Sequence, pos: pos})
		m.TouchStart(a.touchPositions())
	case touch.TypeMove:
		for i := range a.touches {
			if a.touches[i].seq == e.Sequence {
				a.touches[i].pos = pos
			}
		}
		m.TouchMove(a.touchPositions())
	case touch.TypeEnd:
		kept := a.touches[:0]
		for _, t := range a.touches {
			if t.seq != e.Sequence {
				kept = append(kept, t)
			}
		}
		a.touches = kept
		m.TouchEnd(a.touchPositions())
		a.flushSave()
	}
	a.Viewer.RequestRepaint()
}
