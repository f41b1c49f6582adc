package config

import (
	"fmt"
	"strings"
)

// EnvPrefix starts every environment override.
const EnvPrefix = "ANNOVIEW_"

var envKeys = []struct {
	name    string
	section string
	key     string
}{
	{"THEME", "", "theme"},
	{"SAVE_DIR", "", "save_dir"},
	{"EXPORT_FORMAT", "", "export_format"},
	{"EXPORT_SCALE", "", "export_scale"},
	{"EDITABLE", "viewer", "editable"},
	{"CREATABLE", "viewer", "creatable"},
	{"HOVERABLE", "viewer", "hoverable"},
	{"DRAWABLE", "viewer", "drawable"},
	{"USE_PERCENTAGE", "viewer", "use_percentage"},
	{"DRAW_LABEL", "viewer", "draw_label"},
	{"MOUSE_WHEEL_SCALE_MODIFIER", "viewer", "mouse_wheel_scale_modifier"},
	{"PINCH_SCALE_MODIFIER", "viewer", "pinch_scale_modifier"},
	{"NOTIFY_EXPORT", "notify", "export"},
	{"NOTIFY_COPY", "notify", "copy"},
	{"NOTIFY_LOAD_FAILURE", "notify", "load_failure"},
}

// ApplyEnv overrides settings from ANNOVIEW_* variables. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	for _, k := range envKeys {
		value, ok := lookup(EnvPrefix + k.name)
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		var err error
		switch k.section {
		case "":
			err = setRootField(c, k.key, value)
		case "viewer":
			err = setViewerField(&c.Viewer, k.key, value)
		case "notify":
			err = setNotifyField(&c.Notify, k.key, value)
		}
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, k.name, err)
		}
	}
	return nil
}
