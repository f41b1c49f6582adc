// Package appstate hosts the viewer in a desktop window: it owns the event
// loop, keyboard shortcuts and the status bar.
package appstate

import (
	"fmt"
	"image"
	"image/draw"
	"log"
	"unicode"

	"golang.org/x/exp/shiny/screen"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/mobile/event/key"
)

const bottomHeight = 24

// KeyShortcut identifies a key combination. Rune is zero for shortcuts
// matched by Code.
type KeyShortcut struct {
	Rune      rune
	Code      key.Code
	Modifiers key.Modifiers
}

// KeyboardShortcuts lists the combinations that trigger an action.
type KeyboardShortcuts interface {
	KeyboardShortcuts() []KeyShortcut
}

type shortcutList []KeyShortcut

func (s shortcutList) KeyboardShortcuts() []KeyShortcut { return []KeyShortcut(s) }

var bindings = map[string]KeyboardShortcuts{
	"zoomin":   shortcutList{{Rune: '+'}, {Rune: '='}, {Code: key.CodeKeypadPlusSign}},
	"zoomout":  shortcutList{{Rune: '-'}, {Code: key.CodeKeypadHyphenMinus}},
	"reset":    shortcutList{{Rune: '0'}, {Code: key.CodeHome}},
	"delete":   shortcutList{{Code: key.CodeDeleteForward}, {Code: key.CodeDeleteBackspace}},
	"deselect": shortcutList{{Code: key.CodeEscape}},
	"focus":    shortcutList{{Rune: 'f'}},
	"draw":     shortcutList{{Rune: 'd'}},
	"copy": shortcutList{
		{Rune: 'c', Modifiers: key.ModControl},
		{Code: key.CodeC, Modifiers: key.ModControl},
	},
	"copyjson": shortcutList{
		{Rune: 'c', Modifiers: key.ModControl | key.ModShift},
		{Code: key.CodeC, Modifiers: key.ModControl | key.ModShift},
	},
	"paste": shortcutList{
		{Rune: 'v', Modifiers: key.ModControl},
		{Code: key.CodeV, Modifiers: key.ModControl},
	},
	"export": shortcutList{
		{Rune: 's', Modifiers: key.ModControl},
		{Code: key.CodeS, Modifiers: key.ModControl},
	},
}

var keyboardAction = func() map[KeyShortcut]string {
	m := map[KeyShortcut]string{}
	for name, keys := range bindings {
		for _, sc := range keys.KeyboardShortcuts() {
			m[sc] = name
		}
	}
	return m
}()

// modifiers drops shift unless another modifier is held, since shift only
// selects the rune for plain keys.
func modifiers(m key.Modifiers) key.Modifiers {
	held := m & (key.ModControl | key.ModAlt | key.ModMeta)
	if held != 0 {
		held |= m & key.ModShift
	}
	return held
}

// actionFor returns the action bound to a key press.
func actionFor(e key.Event) (string, bool) {
	mods := modifiers(e.Modifiers)
	if unicode.IsPrint(e.Rune) {
		if name, ok := keyboardAction[KeyShortcut{Rune: unicode.ToLower(e.Rune), Modifiers: mods}]; ok {
			return name, true
		}
	}
	name, ok := keyboardAction[KeyShortcut{Code: e.Code, Modifiers: mods}]
	return name, ok
}

func (a *AppState) handleKey(e key.Event) {
	if e.Code == key.CodeSpacebar {
		switch e.Direction {
		case key.DirPress:
			a.Viewer.Machine().SetSpace(true)
		case key.DirRelease:
			a.Viewer.Machine().SetSpace(false)
		}
		return
	}
	if e.Direction == key.DirRelease {
		return
	}
	name, ok := actionFor(e)
	if !ok {
		return
	}
	if fn, ok := a.actions[name]; ok {
		fn()
	}
	a.Viewer.RequestRepaint()
}

// statusText is the line shown in the status bar.
func (a *AppState) statusText() string {
	if msg := a.activeMessage(); msg != "" {
		return msg
	}
	v := a.Viewer
	text := fmt.Sprintf("%s  %.0f%%  %s", sourceLabel(v.Source()), v.Viewport().Scale*100, v.Machine().Mode())
	if n := len(v.Selection()); n > 0 {
		text += fmt.Sprintf("  %d selected", n)
	}
	if a.drawMode {
		text += "  draw"
	}
	return text
}

// compose paints the viewer and the status bar onto dst.
func (a *AppState) compose(dst *image.RGBA) {
	b := dst.Bounds()
	canvas := image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+canvasHeight(b.Dy()))
	a.Viewer.Render(dst.SubImage(canvas).(*image.RGBA))

	th := a.Viewer.Theme()
	bar := image.Rect(b.Min.X, canvas.Max.Y, b.Max.X, b.Max.Y)
	draw.Draw(dst, bar, image.NewUniform(th.ToolbarBackground), image.Point{}, draw.Src)
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(th.Foreground), Face: basicfont.Face7x13}
	d.Dot = fixed.P(bar.Min.X+6, bar.Min.Y+(bottomHeight+basicfont.Face7x13.Ascent)/2)
	d.DrawString(a.statusText())
}

func (a *AppState) drawFrame(s screen.Screen, w screen.Window) {
	if a.width <= 0 || a.height <= 0 {
		return
	}
	b, err := s.NewBuffer(image.Point{a.width, a.height})
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()
	a.compose(b.RGBA())
	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}
