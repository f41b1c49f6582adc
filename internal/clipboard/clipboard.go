// Package clipboard moves images, text and annotation lists through the
// system clipboard.
package clipboard

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"
	"sync"

	"github.com/example/annoview/internal/annotation"
	"github.com/example/annoview/internal/asset"
)

var (
	errNoImage = errors.New("clipboard does not contain image data")
	errNoText  = errors.New("clipboard does not contain text data")
)

func encodeImage(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeImage(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, errNoImage
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode clipboard image: %w", err)
	}
	return img, nil
}

// decodeText drops the trailing NUL some owners append to STRING targets.
func decodeText(data []byte) (string, error) {
	data = bytes.TrimSuffix(data, []byte{0})
	if len(data) == 0 {
		return "", errNoText
	}
	return string(data), nil
}

// Content kinds this process can serve while it owns the clipboard.
const (
	kindText  = "text"
	kindImage = "image/png"
)

// offer is what this process serves while it owns the clipboard. Setting one
// kind replaces the other, matching what a single copy does.
type offer struct {
	mu   sync.RWMutex
	kind string
	data []byte
}

func (o *offer) set(kind string, data []byte) {
	o.mu.Lock()
	o.kind, o.data = kind, append([]byte(nil), data...)
	o.mu.Unlock()
}

func (o *offer) clear() { o.set("", nil) }

// serve returns the data offered for kind, or nil.
func (o *offer) serve(kind string) []byte {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if kind == "" || kind != o.kind || len(o.data) == 0 {
		return nil
	}
	return o.data
}

// offered returns the kind on offer, empty when nothing is.
func (o *offer) offered() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if len(o.data) == 0 {
		return ""
	}
	return o.kind
}

// WriteAnnotations places list on the clipboard as JSON text.
func WriteAnnotations(list []annotation.Annotation) error {
	text, err := formatAnnotations(list)
	if err != nil {
		return err
	}
	return WriteText(text)
}

// ReadAnnotations parses the clipboard text as a JSON or YAML annotation list.
func ReadAnnotations() ([]annotation.Annotation, error) {
	text, err := ReadText()
	if err != nil {
		return nil, err
	}
	return parseAnnotations(text)
}

// ReadAsset wraps the clipboard image as an asset source.
func ReadAsset() (asset.Source, error) {
	img, err := ReadImage()
	if err != nil {
		return nil, err
	}
	data, err := encodeImage(img)
	if err != nil {
		return nil, err
	}
	return asset.Bytes{Name: "clipboard", Data: data}, nil
}

func formatAnnotations(list []annotation.Annotation) (string, error) {
	var buf bytes.Buffer
	if err := annotation.Encode(&buf, annotation.Sanitize(list), true); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func parseAnnotations(text string) ([]annotation.Annotation, error) {
	list, err := annotation.Decode(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("clipboard annotations: %w", err)
	}
	return list, nil
}
