package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/annoview/internal/asset"
	"github.com/example/annoview/internal/export"
	"github.com/example/annoview/internal/geometry"
	"github.com/example/annoview/internal/render"
)

// exportCmd represents the export subcommand.
type exportCmd struct {
	*root
	fs *flag.FlagSet
	assetFlags

	file    string
	output  string
	format  string
	options export.Options
	stdout  io.Writer
}

func (e *exportCmd) Program() string        { return e.root.subcommand("export") }
func (e *exportCmd) FlagSet() *flag.FlagSet { return e.fs }
func (e *exportCmd) Template() string       { return "export.txt" }

func parseExportCmd(args []string, r *root) (*exportCmd, error) {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	e := &exportCmd{root: r, fs: fs, options: export.DefaultOptions(), stdout: os.Stdout}
	e.register(fs)
	fs.StringVar(&e.output, "output", "", "output file; defaults to <file>.annotated.<format>")
	fs.StringVar(&e.format, "format", r.config.ExportFormat, "png or pdf; an -output extension wins")
	fs.Float64Var(&e.options.Scale, "scale", r.config.ExportScale, "output resolution as a multiple of the page size")
	fs.BoolVar(&e.options.DrawText, "text", true, "draw annotation comments")
	fs.BoolVar(&e.options.DrawBox, "box", true, "draw annotation borders")
	fs.BoolVar(&e.options.DrawCustom, "custom", true, "use custom mark renderers")
	fs.Float64Var(&e.options.FontSize, "font-size", e.options.FontSize, "comment font size in page units")
	fs.Float64Var(&e.options.BoxWidth, "box-width", e.options.BoxWidth, "border width of marks without one")
	fs.Usage = usageFunc(e)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, &UsageError{of: e}
	}
	e.file = fs.Arg(0)

	format, err := export.ParseFormat(e.format)
	if e.output != "" {
		format, err = export.ParseFormat(e.output)
	}
	if err != nil {
		return nil, &UsageError{of: e, msg: err.Error()}
	}
	e.options.Format = format
	return e, nil
}

func (e *exportCmd) outputPath() string {
	if e.output != "" {
		return e.output
	}
	base := strings.TrimSuffix(filepath.Base(e.file), filepath.Ext(e.file))
	name := base + ".annotated." + string(e.options.Format)
	if e.root != nil && e.config != nil && e.config.SaveDir != "" {
		return filepath.Join(e.config.SaveDir, name)
	}
	return filepath.Join(filepath.Dir(e.file), name)
}

func (e *exportCmd) Run() error {
	list, err := readAnnotations(annotationsPath(e.file, e.annotations))
	if err != nil {
		return err
	}
	if isPDF(e.file) {
		list = onPage(list, e.page)
	}
	src := sourceFor(e.file, e.page, geometry.Size{}, e.options.Scale)
	img, err := src.Decode(context.Background())
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", e.file, err)
	}

	page := export.Page{Image: asset.Raster(img), Size: asset.Size(img), Registry: render.NewRegistry()}
	if e.root != nil {
		page.Theme = e.activeTheme
	}
	data, err := export.Export(page, list, e.options)
	if err != nil {
		return fmt.Errorf("failed to export %s: %w", e.file, err)
	}
	out := e.outputPath()
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	fmt.Fprintf(e.stdout, "saved %s (%d annotations)\n", out, len(list))
	if e.root != nil && e.notifier != nil {
		e.notifier.Export(out, img)
	}
	return nil
}
