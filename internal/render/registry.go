package render

import (
	"image"
	"image/color"
	"sort"
	"sync"
)

// Custom paints a mark in place of, or in addition to, the default box.
// r is the mark's rectangle on the canvas. Returning true asks the caller to
// draw the default box as well.
type Custom func(c *Canvas, r image.Rectangle, scale float64, export bool) bool

// Registry resolves renderer names stored on marks to Custom functions.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Custom
}

// NewRegistry returns a registry holding the built-in renderers.
func NewRegistry() *Registry {
	reg := &Registry{funcs: map[string]Custom{}}
	reg.Register("ellipse", drawEllipseMark)
	reg.Register("cross", drawCrossMark)
	return reg
}

// Register adds or replaces a renderer.
func (r *Registry) Register(name string, fn Custom) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if fn == nil {
		delete(r.funcs, name)
		return
	}
	r.funcs[name] = fn
}

// Lookup returns the renderer registered under name.
func (r *Registry) Lookup(name string) (Custom, bool) {
	if r == nil || name == "" {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[name]
	return fn, ok
}

// Names lists the registered renderer names in order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

var markRed = color.RGBA{R: 247, G: 72, B: 83, A: 255}

func strokeFor(scale float64) int {
	w := int(2 * scale)
	if w < 1 {
		return 1
	}
	return w
}

func drawEllipseMark(c *Canvas, r image.Rectangle, scale float64, _ bool) bool {
	c.Ellipse(r, markRed, strokeFor(scale))
	return false
}

func drawCrossMark(c *Canvas, r image.Rectangle, scale float64, _ bool) bool {
	t := strokeFor(scale)
	c.Line(r.Min.X, r.Min.Y, r.Max.X, r.Max.Y, markRed, t)
	c.Line(r.Max.X, r.Min.Y, r.Min.X, r.Max.Y, markRed, t)
	return true
}
