package main

import (
	"context"
	"flag"
	"path/filepath"
	"strings"

	"github.com/example/annoview/internal/annotation"
	"github.com/example/annoview/internal/appstate"
	"github.com/example/annoview/internal/export"
	"github.com/example/annoview/internal/geometry"
	"github.com/example/annoview/internal/viewer"
)

// viewCmd represents the view subcommand.
type viewCmd struct {
	*root
	fs *flag.FlagSet
	assetFlags

	file       string
	output     string
	readOnly   bool
	drawable   bool
	percentage bool
}

func (v *viewCmd) Program() string        { return v.root.subcommand("view") }
func (v *viewCmd) FlagSet() *flag.FlagSet { return v.fs }
func (v *viewCmd) Template() string       { return "view.txt" }

func parseViewCmd(args []string, r *root) (*viewCmd, error) {
	fs := flag.NewFlagSet("view", flag.ContinueOnError)
	v := &viewCmd{root: r, fs: fs}
	v.register(fs)
	cfg := r.config.Viewer
	fs.StringVar(&v.output, "output", "", "file written by ctrl+s; the extension picks png or pdf")
	fs.BoolVar(&v.readOnly, "readonly", !cfg.Editable && !cfg.Creatable, "disable creating and editing marks")
	fs.BoolVar(&v.drawable, "drawable", cfg.Drawable, "enable the freehand paint layer")
	fs.BoolVar(&v.percentage, "percentage", cfg.UsePercentage, "store new marks as fractions of the asset")
	fs.Usage = usageFunc(v)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, &UsageError{of: v}
	}
	v.file = fs.Arg(0)
	return v, nil
}

func (v *viewCmd) viewerOptions() viewer.Options {
	cfg := v.config.Viewer
	o := viewer.DefaultOptions()
	o.Editable = cfg.Editable && !v.readOnly
	o.Creatable = cfg.Creatable && !v.readOnly
	o.Hoverable = cfg.Hoverable
	o.Drawable = v.drawable
	o.UsePercentage = v.percentage
	o.DrawLabel = cfg.DrawLabel
	o.MouseWheelScaleModifier = cfg.MouseWheelScaleModifier
	o.PinchScaleModifier = cfg.PinchScaleModifier
	return o
}

func (v *viewCmd) outputPath() string {
	if v.output != "" {
		return v.output
	}
	base := strings.TrimSuffix(filepath.Base(v.file), filepath.Ext(v.file))
	name := base + ".annotated." + v.config.ExportFormat
	if v.config.SaveDir != "" {
		return filepath.Join(v.config.SaveDir, name)
	}
	return filepath.Join(filepath.Dir(v.file), name)
}

func (v *viewCmd) Run() error {
	pdf := isPDF(v.file)
	listPath := annotationsPath(v.file, v.annotations)
	all, err := readAnnotations(listPath)
	if err != nil {
		return err
	}
	list := all
	if pdf {
		list = onPage(all, v.page)
	}

	opts := export.DefaultOptions()
	opts.Scale = v.config.ExportScale

	state := appstate.New(
		appstate.WithTitle(v.program+" - "+filepath.Base(v.file)),
		appstate.WithOutput(v.outputPath()),
		appstate.WithExportOptions(opts),
		appstate.WithNotifier(v.notifier),
	)
	save := appstate.SaveAnnotations(listPath)
	vw := viewer.New(
		viewer.WithOptions(v.viewerOptions()),
		viewer.WithTheme(v.activeTheme),
		viewer.WithDispatcher(state.Dispatch),
		viewer.WithOnLoadFailure(state.LoadFailed),
		viewer.WithOnAnnotationListChanged(state.SaveOnGestureEnd(func(list []annotation.Annotation) {
			if pdf {
				all = replacePage(all, list, v.page)
				list = all
			}
			save(list)
		})),
	)
	state.Attach(vw)
	vw.Sync(list)

	src := sourceFor(v.file, v.page, geometry.Size{Width: appstate.MaxWidth, Height: appstate.MaxHeight}, 0)
	img, err := src.Decode(context.Background())
	if err != nil {
		return err
	}
	vw.SetImage(src.ID(), img)
	state.Run()
	return nil
}
