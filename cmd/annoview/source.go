package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/annoview/internal/annotation"
	"github.com/example/annoview/internal/asset"
	"github.com/example/annoview/internal/geometry"
)

// assetFlags are shared by every command that opens a file.
type assetFlags struct {
	page        int
	annotations string
}

func (a *assetFlags) register(fs *flag.FlagSet) {
	fs.IntVar(&a.page, "page", 1, "page to open when the file is a PDF")
	fs.StringVar(&a.annotations, "annotations", "", "annotation list (YAML or JSON); defaults to <file>.annotations.yaml")
}

func isPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// sourceFor picks the asset decoder for path. A positive scale fixes the PDF
// render scale, otherwise canvas picks it. Either way absolute marks on a PDF
// page are in points.
func sourceFor(path string, page int, canvas geometry.Size, scale float64) asset.Source {
	if isPDF(path) {
		return asset.PDFPage{Path: path, Page: page, Canvas: canvas, Scale: scale}
	}
	return asset.File{Path: path}
}

func annotationsPath(file, override string) string {
	if override != "" {
		return override
	}
	return strings.TrimSuffix(file, filepath.Ext(file)) + ".annotations.yaml"
}

// readAnnotations loads the list at path. A missing file is an empty list.
func readAnnotations(path string) ([]annotation.Annotation, error) {
	list, err := annotation.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read annotations: %w", err)
	}
	return list, nil
}

// onPage returns the marks shown on page. Marks without a page belong to
// every page.
func onPage(list []annotation.Annotation, page int) []annotation.Annotation {
	var out []annotation.Annotation
	for _, a := range list {
		if a.Page == 0 || a.Page == page {
			out = append(out, a)
		}
	}
	return out
}

// replacePage swaps the marks of page in all for current.
func replacePage(all, current []annotation.Annotation, page int) []annotation.Annotation {
	out := make([]annotation.Annotation, 0, len(all)+len(current))
	for _, a := range all {
		if a.Page != 0 && a.Page != page {
			out = append(out, a)
		}
	}
	for _, a := range current {
		a.Page = page
		out = append(out, a)
	}
	return out
}
