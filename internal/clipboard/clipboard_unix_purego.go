//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && !cgo

package clipboard

import (
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

var (
	initOnce     sync.Once
	initErr      error
	errNoDisplay = errors.New("clipboard initialization requires DISPLAY or WAYLAND_DISPLAY")
	errNoTarget  = errors.New("clipboard target unavailable")
	backend      *x11Clipboard
)

// propertyName is the window property selections are converted into.
const propertyName = "ANNOVIEW_CLIPBOARD"

// targetKinds maps the selection targets served, besides the predefined
// STRING atom, to offer kinds.
var targetKinds = map[string]string{
	"UTF8_STRING":              kindText,
	"text/plain;charset=utf-8": kindText,
	"image/png":                kindImage,
}

func ensureInit() error {
	initOnce.Do(func() {
		if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
			initErr = errNoDisplay
			return
		}
		clip := &x11Clipboard{}
		if err := clip.initialize(); err != nil {
			initErr = err
			return
		}
		backend = clip
	})
	return initErr
}

// WriteImage encodes the provided image as PNG and publishes it to the clipboard.
func WriteImage(img image.Image) error {
	if err := ensureInit(); err != nil {
		return err
	}
	data, err := encodeImage(img)
	if err != nil {
		return err
	}
	return backend.own(kindImage, data)
}

// ReadImage retrieves PNG image data from the clipboard and decodes it.
func ReadImage() (image.Image, error) {
	if err := ensureInit(); err != nil {
		return nil, err
	}
	data, err := backend.readSelection(backend.atoms.png)
	if err != nil {
		return nil, err
	}
	return decodeImage(data)
}

// WriteText writes text data to the clipboard.
func WriteText(text string) error {
	if err := ensureInit(); err != nil {
		return err
	}
	return backend.own(kindText, []byte(text))
}

// ReadText returns UTF-8 text data from the clipboard.
func ReadText() (string, error) {
	if err := ensureInit(); err != nil {
		return "", err
	}
	data, err := backend.readSelection(backend.atoms.utf8)
	if err != nil {
		data, err = backend.readSelection(xproto.AtomString)
		if err != nil {
			return "", err
		}
	}
	return decodeText(data)
}

type x11Clipboard struct {
	conn   *xgb.Conn
	window xproto.Window
	atoms  atomSet
	offer  offer
}

type atomSet struct {
	clipboard xproto.Atom
	targets   xproto.Atom
	property  xproto.Atom
	utf8      xproto.Atom
	png       xproto.Atom
	// kinds maps every served target to its offer kind.
	kinds map[xproto.Atom]string
}

func (c *x11Clipboard) initialize() error {
	conn, err := xgb.NewConn()
	if err != nil {
		return err
	}
	screen := xproto.Setup(conn).DefaultScreen(conn)
	window, err := xproto.NewWindowId(conn)
	if err != nil {
		conn.Close()
		return err
	}
	const eventMask = xproto.EventMaskPropertyChange | xproto.EventMaskStructureNotify
	if err := xproto.CreateWindowChecked(conn, screen.RootDepth, window, screen.Root, 0, 0, 1, 1, 0, xproto.WindowClassInputOutput, screen.RootVisual, xproto.CwEventMask, []uint32{eventMask}).Check(); err != nil {
		conn.Close()
		return err
	}
	atoms, err := internAtoms(conn)
	if err != nil {
		xproto.DestroyWindow(conn, window)
		conn.Close()
		return err
	}
	c.conn, c.window, c.atoms = conn, window, atoms
	go c.eventLoop()
	return nil
}

func internAtoms(conn *xgb.Conn) (atomSet, error) {
	names := []string{"CLIPBOARD", "TARGETS", propertyName}
	for name := range targetKinds {
		names = append(names, name)
	}
	got := make(map[string]xproto.Atom, len(names))
	for _, name := range names {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			return atomSet{}, fmt.Errorf("intern %s: %w", name, err)
		}
		got[name] = reply.Atom
	}
	set := atomSet{
		clipboard: got["CLIPBOARD"],
		targets:   got["TARGETS"],
		property:  got[propertyName],
		utf8:      got["UTF8_STRING"],
		png:       got["image/png"],
		kinds:     map[xproto.Atom]string{xproto.AtomString: kindText},
	}
	for name, kind := range targetKinds {
		set.kinds[got[name]] = kind
	}
	return set, nil
}

// own stores data as the offered content and claims the CLIPBOARD selection.
func (c *x11Clipboard) own(kind string, data []byte) error {
	c.offer.set(kind, data)
	return xproto.SetSelectionOwnerChecked(c.conn, c.window, c.atoms.clipboard, xproto.TimeCurrentTime).Check()
}

func (c *x11Clipboard) eventLoop() {
	for {
		ev, err := c.conn.WaitForEvent()
		if err != nil {
			return
		}
		switch e := ev.(type) {
		case xproto.SelectionRequestEvent:
			c.handleSelectionRequest(e)
		case xproto.SelectionClearEvent:
			c.offer.clear()
		}
	}
}

// reply picks the property type, format and payload answering a request for
// target. ok is false when nothing is offered under target.
func (c *x11Clipboard) reply(target xproto.Atom) (typ xproto.Atom, format byte, payload []byte, ok bool) {
	if target == c.atoms.targets {
		list := []xproto.Atom{c.atoms.targets}
		if kind := c.offer.offered(); kind != "" {
			for atom, k := range c.atoms.kinds {
				if k == kind {
					list = append(list, atom)
				}
			}
		}
		return xproto.AtomAtom, 32, atomsToBytes(list), true
	}
	kind := c.atoms.kinds[target]
	data := c.offer.serve(kind)
	if data == nil {
		return 0, 0, nil, false
	}
	if kind == kindText {
		return c.atoms.utf8, 8, data, true
	}
	return target, 8, data, true
}

func (c *x11Clipboard) handleSelectionRequest(e xproto.SelectionRequestEvent) {
	property := e.Property
	if property == xproto.AtomNone {
		property = e.Target
	}
	if typ, format, payload, ok := c.reply(e.Target); ok {
		length := uint32(len(payload)) / uint32(format/8)
		xproto.ChangeProperty(c.conn, xproto.PropModeReplace, e.Requestor, property, typ, format, length, payload)
	} else {
		property = xproto.AtomNone
	}
	notify := xproto.SelectionNotifyEvent{
		Time:      e.Time,
		Requestor: e.Requestor,
		Selection: e.Selection,
		Target:    e.Target,
		Property:  property,
	}
	_ = xproto.SendEvent(c.conn, false, e.Requestor, 0, string(notify.Bytes()))
}

// requestWindow creates an input-only window that receives a converted
// selection.
func requestWindow(conn *xgb.Conn) (xproto.Window, error) {
	screen := xproto.Setup(conn).DefaultScreen(conn)
	window, err := xproto.NewWindowId(conn)
	if err != nil {
		return 0, err
	}
	err = xproto.CreateWindowChecked(conn, 0, window, screen.Root, 0, 0, 1, 1, 0, xproto.WindowClassInputOnly, 0, xproto.CwEventMask, []uint32{xproto.EventMaskPropertyChange}).Check()
	return window, err
}

// readSelection converts the CLIPBOARD selection to target on a separate
// connection, so that reading works while this process owns the selection.
func (c *x11Clipboard) readSelection(target xproto.Atom) ([]byte, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	window, err := requestWindow(conn)
	if err != nil {
		return nil, err
	}
	defer xproto.DestroyWindow(conn, window)

	if err := xproto.DeletePropertyChecked(conn, window, c.atoms.property).Check(); err != nil {
		return nil, err
	}
	if err := xproto.ConvertSelectionChecked(conn, window, c.atoms.clipboard, target, c.atoms.property, xproto.TimeCurrentTime).Check(); err != nil {
		return nil, err
	}
	for {
		ev, err := conn.WaitForEvent()
		if err != nil {
			return nil, err
		}
		e, ok := ev.(xproto.SelectionNotifyEvent)
		if !ok {
			continue
		}
		if e.Property == xproto.AtomNone {
			return nil, errNoTarget
		}
		if e.Property != c.atoms.property {
			continue
		}
		reply, err := xproto.GetProperty(conn, true, window, c.atoms.property, xproto.GetPropertyTypeAny, 0, (1<<31)-1).Reply()
		if err != nil {
			return nil, err
		}
		return append([]byte(nil), reply.Value...), nil
	}
}

func atomsToBytes(atoms []xproto.Atom) []byte {
	buf := make([]byte, len(atoms)*4)
	for i, atom := range atoms {
		xgb.Put32(buf[i*4:], uint32(atom))
	}
	return buf
}
