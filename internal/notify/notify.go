// Package notify sends desktop notifications for exports, clipboard copies
// and asset load failures.
package notify

import (
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/annoview/internal/platform"
)

// Event identifies a notification trigger.
type Event string

const (
	// EventExport fires when a flattened view is written to disk.
	EventExport Event = "export"
	// EventCopy fires when data is copied to the clipboard.
	EventCopy Event = "copy"
	// EventLoadFailure fires when an asset cannot be decoded.
	EventLoadFailure Event = "load_failure"
)

// send is replaced in tests.
var send = platform.Notify

// EventPreference describes formatting for a notification event.
type EventPreference struct {
	Template string
}

// Preferences describes notification behaviour loaded from configuration.
type Preferences struct {
	Title  string
	Events map[Event]EventPreference
}

// DefaultPreferences returns the default notification settings.
func DefaultPreferences() Preferences {
	return Preferences{
		Title: "annoview",
		Events: map[Event]EventPreference{
			EventExport:      {Template: "Exported %s"},
			EventCopy:        {Template: "Copied %s to clipboard"},
			EventLoadFailure: {Template: "Could not open %s"},
		},
	}
}

// LoadPreferences reads ANNOVIEW_NOTIFY_*_TEXT overrides through lookup,
// usually os.Getenv.
func LoadPreferences(lookup func(string) string) Preferences {
	prefs := DefaultPreferences()
	if v := strings.TrimSpace(lookup("ANNOVIEW_NOTIFY_TITLE")); v != "" {
		prefs.Title = v
	}
	apply := func(key string, event Event) {
		if v := strings.TrimSpace(lookup(key)); v != "" {
			prefs.Events[event] = EventPreference{Template: v}
		}
	}
	apply("ANNOVIEW_NOTIFY_EXPORT_TEXT", EventExport)
	apply("ANNOVIEW_NOTIFY_COPY_TEXT", EventCopy)
	apply("ANNOVIEW_NOTIFY_LOAD_FAILURE_TEXT", EventLoadFailure)
	return prefs
}

// Notifier sends OS-level notifications based on the configured preferences.
// A nil Notifier sends nothing.
type Notifier struct {
	prefs   Preferences
	enabled map[Event]bool
}

// New creates a new Notifier using the provided preferences.
func New(prefs Preferences) *Notifier {
	cloned := Preferences{Title: prefs.Title, Events: make(map[Event]EventPreference, len(prefs.Events))}
	for k, v := range prefs.Events {
		cloned.Events[k] = v
	}
	return &Notifier{prefs: cloned, enabled: make(map[Event]bool)}
}

// Enable toggles the notifier for the provided event.
func (n *Notifier) Enable(event Event, enabled bool) {
	if n == nil {
		return
	}
	n.enabled[event] = enabled
}

// Export reports a written file. img, when set, becomes the preview icon.
func (n *Notifier) Export(path string, img image.Image) {
	if !n.enabledFor(EventExport) {
		return
	}
	detail := strings.TrimSpace(path)
	if abs, err := filepath.Abs(path); err == nil {
		detail = abs
	}
	opts := platform.Options{}
	if img != nil {
		if preview, cleanup, err := createPreview(img); err != nil {
			log.Printf("notification preview: %v", err)
		} else {
			defer cleanup()
			opts.IconPath = preview
		}
	}
	n.dispatch(EventExport, detail, opts)
}

// Copy reports a clipboard copy.
func (n *Notifier) Copy(detail string) {
	if strings.TrimSpace(detail) == "" {
		detail = "image"
	}
	n.dispatch(EventCopy, detail, platform.Options{})
}

// LoadFailure reports an asset that could not be shown.
func (n *Notifier) LoadFailure(source string, err error) {
	detail := source
	if err != nil {
		detail = fmt.Sprintf("%s: %v", source, err)
	}
	n.dispatch(EventLoadFailure, detail, platform.Options{Urgent: true})
}

func (n *Notifier) enabledFor(event Event) bool {
	return n != nil && n.enabled[event]
}

func (n *Notifier) dispatch(event Event, detail string, opts platform.Options) {
	if !n.enabledFor(event) {
		return
	}
	pref, ok := n.prefs.Events[event]
	template := strings.TrimSpace(pref.Template)
	if !ok || template == "" {
		return
	}
	body := strings.TrimSpace(fmt.Sprintf(template, strings.TrimSpace(detail)))
	if body == "" {
		return
	}
	if err := send(n.prefs.Title, body, opts); err != nil {
		log.Printf("notification %s: %v", event, err)
	}
}

func createPreview(img image.Image) (string, func(), error) {
	f, err := os.CreateTemp("", "annoview-preview-*.png")
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", nil, err
	}
	cleanup := func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("remove preview: %v", err)
		}
	}
	return path, cleanup, nil
}
