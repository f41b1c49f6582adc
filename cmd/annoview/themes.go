package main

import (
	"fmt"
	"sort"

	"github.com/example/annoview/internal/theme"
)

type themesCmd struct{ *root }

func (t *themesCmd) Run() error {
	names := theme.NewLoader().Names()
	for name := range t.config.Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	prev := ""
	for _, name := range names {
		if name != prev {
			fmt.Println(name)
		}
		prev = name
	}
	return nil
}
