package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/example/annoview/internal/geometry"
	"github.com/example/annoview/internal/viewer"
)

// extractCmd represents the extract subcommand.
type extractCmd struct {
	*root
	fs *flag.FlagSet
	assetFlags

	file   string
	dir    string
	scale  float64
	stdout io.Writer
}

func (x *extractCmd) Program() string        { return x.root.subcommand("extract") }
func (x *extractCmd) FlagSet() *flag.FlagSet { return x.fs }
func (x *extractCmd) Template() string       { return "extract.txt" }

func parseExtractCmd(args []string, r *root) (*extractCmd, error) {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	x := &extractCmd{root: r, fs: fs, stdout: os.Stdout}
	x.register(fs)
	fs.StringVar(&x.dir, "dir", "regions", "directory receiving one PNG per annotation")
	fs.Float64Var(&x.scale, "scale", 1, "PDF region resolution as a multiple of the page size in points")
	fs.Usage = usageFunc(x)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, &UsageError{of: x}
	}
	x.file = fs.Arg(0)
	return x, nil
}

func (x *extractCmd) Run() error {
	list, err := readAnnotations(annotationsPath(x.file, x.annotations))
	if err != nil {
		return err
	}
	if isPDF(x.file) {
		list = onPage(list, x.page)
	}
	src := sourceFor(x.file, x.page, geometry.Size{}, x.scale)
	img, err := src.Decode(context.Background())
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", x.file, err)
	}

	v := viewer.New()
	v.SetImage(src.ID(), img)
	v.Sync(list)
	if err := os.MkdirAll(x.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", x.dir, err)
	}
	for _, a := range v.Annotations() {
		region, err := v.ExtractRegion(a.ID)
		if err != nil {
			fmt.Fprintf(x.stdout, "skip %s: %v\n", a.ID, err)
			continue
		}
		path := filepath.Join(x.dir, a.ID+".png")
		if err := writePNG(path, region); err != nil {
			return err
		}
		fmt.Fprintf(x.stdout, "%s\n", path)
	}
	return nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		if cerr := f.Close(); cerr != nil {
			return fmt.Errorf("%w (closing file: %v)", err, cerr)
		}
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}
