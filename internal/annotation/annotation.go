// Package annotation defines the annotation records exchanged with the
// outside world and their on-disk list format.
package annotation

import (
	"fmt"
	"log"
	"math/rand/v2"

	"github.com/example/annoview/internal/geometry"
)

// Status is the review state of an annotation.
type Status string

const (
	StatusNone      Status = ""
	StatusUnhandled Status = "unhandled"
	StatusDeleted   Status = "deleted"
	StatusApproved  Status = "approved"
)

// TypeRect is the only mark variant.
const TypeRect = "rect"

// DefaultLabel is used for converted boxes that carry no label.
const DefaultLabel = "No Label"

// Mark is the geometry and style payload of an annotation.
type Mark struct {
	Type string `json:"type" yaml:"type"`
	geometry.Rect `yaml:",inline"`
	// Unit overrides the fraction/absolute inference when set.
	Unit            geometry.Unit `json:"unit,omitempty" yaml:"unit,omitempty"`
	StrokeColor     string        `json:"strokeColor,omitempty" yaml:"strokeColor,omitempty"`
	StrokeWidth     *float64      `json:"strokeWidth,omitempty" yaml:"strokeWidth,omitempty"`
	BackgroundColor string        `json:"backgroundColor,omitempty" yaml:"backgroundColor,omitempty"`
	Highlight       bool          `json:"highlight,omitempty" yaml:"highlight,omitempty"`
	// Renderer names a custom renderer registered with the viewer.
	Renderer string `json:"renderer,omitempty" yaml:"renderer,omitempty"`
}

// Fractional reports whether the mark's numbers are asset fractions.
func (m Mark) Fractional() bool { return m.Unit.Fractional(m.Rect) }

// Stroke returns the stroke width, defaulting to 4 when unset.
func (m Mark) Stroke() float64 {
	if m.StrokeWidth == nil {
		return 4
	}
	return *m.StrokeWidth
}

// Annotation is one mark with its metadata.
type Annotation struct {
	ID           string `json:"id" yaml:"id"`
	Mark         Mark   `json:"mark" yaml:"mark"`
	Comment      string `json:"comment,omitempty" yaml:"comment,omitempty"`
	Page         int    `json:"page,omitempty" yaml:"page,omitempty"`
	Status       Status `json:"status,omitempty" yaml:"status,omitempty"`
	DisableClick bool   `json:"disableClick,omitempty" yaml:"disableClick,omitempty"`
}

// Clone returns a deep copy of a.
func (a Annotation) Clone() Annotation {
	if a.Mark.StrokeWidth != nil {
		w := *a.Mark.StrokeWidth
		a.Mark.StrokeWidth = &w
	}
	return a
}

// SameMark reports whether both marks are identical, style included.
func SameMark(a, b Mark) bool {
	if (a.StrokeWidth == nil) != (b.StrokeWidth == nil) {
		return false
	}
	if a.StrokeWidth != nil && *a.StrokeWidth != *b.StrokeWidth {
		return false
	}
	a.StrokeWidth, b.StrokeWidth = nil, nil
	return a == b
}

// CloneAll deep copies a list.
func CloneAll(list []Annotation) []Annotation {
	out := make([]Annotation, len(list))
	for i, a := range list {
		out[i] = a.Clone()
	}
	return out
}

// Sanitize drops annotations with duplicate ids or malformed geometry.
func Sanitize(list []Annotation) []Annotation {
	seen := make(map[string]bool, len(list))
	out := list[:0:0]
	for _, a := range list {
		switch {
		case a.ID == "":
			log.Printf("annotation without id dropped")
			continue
		case seen[a.ID]:
			log.Printf("annotation %s: duplicate id dropped", a.ID)
			continue
		case !a.Mark.Rect.Valid():
			log.Printf("annotation %s: invalid geometry %+v dropped", a.ID, a.Mark.Rect)
			continue
		}
		if a.Mark.Type == "" {
			a.Mark.Type = TypeRect
		}
		seen[a.ID] = true
		out = append(out, a)
	}
	return out
}

// NewID returns a random identifier for a freshly drawn annotation.
func NewID() string {
	return fmt.Sprintf("%08x%08x", rand.Uint32(), rand.Uint32())
}

// Box is a bounding box expressed as fractions of the asset.
type Box struct {
	XMin float64 `json:"xMin" yaml:"xMin"`
	YMin float64 `json:"yMin" yaml:"yMin"`
	XMax float64 `json:"xMax" yaml:"xMax"`
	YMax float64 `json:"yMax" yaml:"yMax"`
}

// Rect returns the box as an x/y/width/height rectangle.
func (b Box) Rect() geometry.Rect {
	return geometry.Rect{X: b.XMin, Y: b.YMin, Width: b.XMax - b.XMin, Height: b.YMax - b.YMin}
}

// FromBox converts a labelled bounding box into a fractional annotation.
func FromBox(id, label string, b Box, page int) Annotation {
	if label == "" {
		label = DefaultLabel
	}
	w := 2.0
	return Annotation{
		ID:      id,
		Comment: label,
		Page:    page,
		Mark: Mark{
			Type:        TypeRect,
			Rect:        b.Rect(),
			Unit:        geometry.UnitFraction,
			StrokeWidth: &w,
		},
	}
}
