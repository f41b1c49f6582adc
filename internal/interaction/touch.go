package interaction

import (
	"gonum.org/v1/gonum/spatial/r2"
)

func pinchGeometry(touches []r2.Vec) (mid r2.Vec, length float64) {
	a, b := touches[0], touches[1]
	return r2.Scale(0.5, r2.Add(a, b)), r2.Norm(r2.Sub(b, a))
}

// TouchStart handles new touches. One finger acts as the mouse, two start a
// pinch.
func (m *Machine) TouchStart(touches []r2.Vec) {
	switch {
	case len(touches) >= 2:
		if m.pressed {
			m.PointerLeave()
		}
		m.pinching = true
		_, m.lastPinch = pinchGeometry(touches)
	case len(touches) == 1:
		m.PointerDown(Pointer{Pos: touches[0]})
	}
}

// TouchMove follows touches. Two fingers always pinch-zoom around their
// midpoint.
func (m *Machine) TouchMove(touches []r2.Vec) {
	switch {
	case len(touches) >= 2:
		if !m.pinching {
			m.TouchStart(touches)
			return
		}
		mid, length := pinchGeometry(touches)
		m.host.Viewport().Pinch(mid, length, m.lastPinch, m.host.Options().PinchScaleModifier)
		m.lastPinch = length
		m.host.ViewChanged()
	case len(touches) == 1:
		m.PointerMove(Pointer{Pos: touches[0]})
	}
}

// TouchEnd handles lifted fingers. remaining are the touches still down.
func (m *Machine) TouchEnd(remaining []r2.Vec) {
	if m.pinching {
		if len(remaining) < 2 {
			m.pinching = false
			m.lastPinch = 0
		}
		return
	}
	pos := m.downAt
	if len(remaining) > 0 {
		pos = remaining[0]
	}
	m.PointerUp(Pointer{Pos: pos})
}
