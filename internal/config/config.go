package config

import (
	"fmt"
	"image/color"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/example/annoview/internal/theme"
)

// Viewer holds the default viewer capabilities.
type Viewer struct {
	Editable                bool
	Creatable               bool
	Hoverable               bool
	Drawable                bool
	UsePercentage           bool
	DrawLabel               bool
	MouseWheelScaleModifier float64
	PinchScaleModifier      float64
}

// Notify holds notification settings.
type Notify struct {
	Export      bool
	Copy        bool
	LoadFailure bool
}

// Config holds the application configuration.
type Config struct {
	Theme        string
	SaveDir      string
	ExportFormat string
	ExportScale  float64
	Viewer       Viewer
	Notify       Notify
	Themes       map[string]*theme.Theme
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Theme:        "", // empty falls back to the environment, then the built-in theme
		ExportFormat: "png",
		ExportScale:  4,
		Viewer: Viewer{
			Editable:                true,
			Creatable:               true,
			Hoverable:               true,
			DrawLabel:               true,
			MouseWheelScaleModifier: 0.001,
			PinchScaleModifier:      0.001,
		},
		Notify: Notify{LoadFailure: true},
		Themes: make(map[string]*theme.Theme),
	}
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	if c.Theme != "" {
		fmt.Fprintf(&sb, "theme = %s\n", c.Theme)
	}
	if c.SaveDir != "" {
		fmt.Fprintf(&sb, "save_dir = %s\n", c.SaveDir)
	}
	fmt.Fprintf(&sb, "export_format = %s\n", c.ExportFormat)
	fmt.Fprintf(&sb, "export_scale = %s\n", formatFloat(c.ExportScale))
	sb.WriteString("\n")

	sb.WriteString("[viewer]\n")
	fmt.Fprintf(&sb, "editable = %v\n", c.Viewer.Editable)
	fmt.Fprintf(&sb, "creatable = %v\n", c.Viewer.Creatable)
	fmt.Fprintf(&sb, "hoverable = %v\n", c.Viewer.Hoverable)
	fmt.Fprintf(&sb, "drawable = %v\n", c.Viewer.Drawable)
	fmt.Fprintf(&sb, "use_percentage = %v\n", c.Viewer.UsePercentage)
	fmt.Fprintf(&sb, "draw_label = %v\n", c.Viewer.DrawLabel)
	fmt.Fprintf(&sb, "mouse_wheel_scale_modifier = %s\n", formatFloat(c.Viewer.MouseWheelScaleModifier))
	fmt.Fprintf(&sb, "pinch_scale_modifier = %s\n", formatFloat(c.Viewer.PinchScaleModifier))
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "export = %v\n", c.Notify.Export)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	fmt.Fprintf(&sb, "load_failure = %v\n", c.Notify.LoadFailure)
	sb.WriteString("\n")

	// Sort keys for deterministic output
	var themeNames []string
	for name := range c.Themes {
		themeNames = append(themeNames, name)
	}
	sort.Strings(themeNames)

	for _, name := range themeNames {
		t := c.Themes[name]
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		fmt.Fprintf(&sb, "Name: %s\n", t.Name)
		val := reflect.ValueOf(t).Elem()
		typ := val.Type()
		for i := 0; i < typ.NumField(); i++ {
			if col, ok := val.Field(i).Interface().(color.RGBA); ok {
				fmt.Fprintf(&sb, "%s: %s\n", typ.Field(i).Name, toHex(col))
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

// toHex writes a premultiplied colour in the straight-alpha hex form that
// theme.ParseColor reads.
func toHex(c color.RGBA) string {
	switch c.A {
	case 255:
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	case 0:
		return "#00000000"
	}
	un := func(v uint8) uint8 {
		return uint8(math.Min(255, math.Round(float64(v)*255/float64(c.A))))
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", un(c.R), un(c.G), un(c.B), c.A)
}
