package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/example/annoview/internal/asset"
)

type pagesCmd struct {
	*root
	fs     *flag.FlagSet
	file   string
	stdout io.Writer
}

func (p *pagesCmd) Program() string        { return p.root.subcommand("pages") }
func (p *pagesCmd) FlagSet() *flag.FlagSet { return p.fs }
func (p *pagesCmd) Template() string       { return "pages.txt" }

func parsePagesCmd(args []string, r *root) (*pagesCmd, error) {
	fs := flag.NewFlagSet("pages", flag.ContinueOnError)
	p := &pagesCmd{root: r, fs: fs, stdout: os.Stdout}
	fs.Usage = usageFunc(p)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, &UsageError{of: p}
	}
	p.file = fs.Arg(0)
	return p, nil
}

func (p *pagesCmd) Run() error {
	pages, err := asset.Inspect(p.file)
	if err != nil {
		return fmt.Errorf("failed to inspect %s: %w", p.file, err)
	}
	for i, info := range pages {
		d := info.Display()
		fmt.Fprintf(p.stdout, "%d\t%gx%g\trotate %d\n", i+1, d.Width, d.Height, info.Rotation)
	}
	return nil
}
