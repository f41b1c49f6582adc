package viewer

import (
	"github.com/example/annoview/internal/annotation"
	"github.com/example/annoview/internal/shape"
)

// Sync reconciles the shapes with an incoming annotation list. Shapes are
// matched by id, so the list order does not need to follow the paint order.
// When every id matches a shape with the same comment and geometry the
// shapes, their paint order and any gesture on them are kept. Otherwise the
// shapes are rebuilt in list order.
func (v *Viewer) Sync(list []annotation.Annotation) {
	list = annotation.Sanitize(list)
	if v.matches(list) {
		for _, a := range list {
			cur := v.find(a.ID).Annotation()
			cur.Status, cur.Page, cur.DisableClick = a.Status, a.Page, a.DisableClick
		}
	} else {
		shapes := make([]*shape.Shape, len(list))
		for i := range list {
			a := list[i].Clone()
			shapes[i] = shape.New(&a, v)
		}
		v.shapes = shapes
		// rebound below to the new shape when it is still selected
		v.transformer = nil
	}
	v.SetSelection(v.selection)
	v.RequestRepaint()
}

func (v *Viewer) matches(list []annotation.Annotation) bool {
	if len(list) != len(v.shapes) {
		return false
	}
	for _, a := range list {
		s := v.find(a.ID)
		if s == nil || !s.Equal(a) || !annotation.SameMark(s.Annotation().Mark, a.Mark) {
			return false
		}
	}
	return true
}

// Selection returns a copy of the selected ids.
func (v *Viewer) Selection() []string { return append([]string(nil), v.selection...) }

// SetSelection selects the existing shapes among ids. The selection
// callback fires only when the set of ids changes.
func (v *Viewer) SetSelection(ids []string) {
	next := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] || v.find(id) == nil {
			continue
		}
		seen[id] = true
		next = append(next, id)
	}
	changed := !sameSet(v.selection, next)
	v.selection = next
	v.syncTransformer()
	if changed && v.onSelection != nil {
		v.onSelection(v.Selection())
	}
	v.RequestRepaint()
}

func (v *Viewer) selected(id string) bool {
	for _, s := range v.selection {
		if s == id {
			return true
		}
	}
	return false
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	in := make(map[string]bool, len(a))
	for _, id := range a {
		in[id] = true
	}
	for _, id := range b {
		if !in[id] {
			return false
		}
	}
	return true
}
