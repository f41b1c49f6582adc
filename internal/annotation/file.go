package annotation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Decode reads an annotation list. Both YAML and JSON documents are accepted;
// either a bare list or an object with an "annotations" key.
func Decode(r io.Reader) ([]Annotation, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var list []Annotation
	if err := yaml.Unmarshal(data, &list); err != nil {
		var doc struct {
			Annotations []Annotation `yaml:"annotations"`
		}
		if derr := yaml.Unmarshal(data, &doc); derr != nil {
			return nil, fmt.Errorf("decode annotations: %w", err)
		}
		list = doc.Annotations
	}
	return Sanitize(list), nil
}

// Encode writes list as YAML, or as JSON when asJSON is set.
func Encode(w io.Writer, list []Annotation, asJSON bool) error {
	if list == nil {
		list = []Annotation{}
	}
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(list); err != nil {
		return err
	}
	return enc.Close()
}

// Load reads an annotation list file.
func Load(path string) ([]Annotation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	list, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return list, nil
}

// Save writes list to path. The format follows the file extension.
func Save(path string, list []Annotation) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	asJSON := strings.EqualFold(filepath.Ext(path), ".json")
	if err := Encode(f, list, asJSON); err != nil {
		if cerr := f.Close(); cerr != nil {
			return fmt.Errorf("%w (closing file: %v)", err, cerr)
		}
		return err
	}
	return f.Close()
}
