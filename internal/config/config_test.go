package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	input := `
theme = my_custom_theme
save_dir = /tmp/marks
export_format = PDF
export_scale = 2.5

[viewer]
editable = false
drawable = true
use_percentage = true
mouse_wheel_scale_modifier = 0.002

[notify]
export = true
copy = false
load_failure = false

[theme.my_custom_theme]
Background = #111111
ShapeStroke: "#FF0000"
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Theme != "my_custom_theme" {
		t.Errorf("Expected theme 'my_custom_theme', got '%s'", cfg.Theme)
	}
	if cfg.SaveDir != "/tmp/marks" {
		t.Errorf("Expected save_dir '/tmp/marks', got '%s'", cfg.SaveDir)
	}
	if cfg.ExportFormat != "pdf" || cfg.ExportScale != 2.5 {
		t.Errorf("unexpected export settings %q %v", cfg.ExportFormat, cfg.ExportScale)
	}

	wantViewer := Viewer{
		Editable:                false,
		Creatable:               true,
		Hoverable:               true,
		Drawable:                true,
		UsePercentage:           true,
		DrawLabel:               true,
		MouseWheelScaleModifier: 0.002,
		PinchScaleModifier:      0.001,
	}
	if diff := cmp.Diff(wantViewer, cfg.Viewer); diff != "" {
		t.Errorf("viewer mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Notify{Export: true}, cfg.Notify); diff != "" {
		t.Errorf("notify mismatch (-want +got):\n%s", diff)
	}

	th, ok := cfg.Themes["my_custom_theme"]
	if !ok {
		t.Fatal("Expected theme 'my_custom_theme' to be loaded")
	}
	if th.Background.R != 0x11 || th.Background.G != 0x11 || th.Background.B != 0x11 {
		t.Errorf("Unexpected Background color: %+v", th.Background)
	}
	if th.ShapeStroke.R != 0xFF || th.ShapeStroke.G != 0 {
		t.Errorf("Unexpected ShapeStroke color: %+v", th.ShapeStroke)
	}
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{
		"export_scale = -1",
		"[viewer]\neditable = maybe",
		"[notify]\nexport = 2x",
		"[theme.x]\nBackground = #nothex",
	} {
		if _, err := Parse(strings.NewReader(input)); err == nil {
			t.Errorf("expected error for %q", input)
		}
	}
}

func TestCircular(t *testing.T) {
	input := `theme = dark
save_dir = /home/user/marks

[viewer]
hoverable = false
pinch_scale_modifier = 0.01

[notify]
export = true
copy = true

[theme.custom]
Name = custom
Background = #000000
Foreground = #FFFFFF
ShapeBackground = #0D0D0D40
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Initial parse failed: %v", err)
	}

	cfg2, err := Parse(strings.NewReader(cfg.String()))
	if err != nil {
		t.Fatalf("Circular parse failed: %v", err)
	}

	if diff := cmp.Diff(cfg, cfg2); diff != "" {
		t.Errorf("round trip mismatch (-first +second):\n%s", diff)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"ANNOVIEW_THEME":         "dark",
		"ANNOVIEW_DRAWABLE":      "true",
		"ANNOVIEW_EXPORT_SCALE":  "8",
		"ANNOVIEW_NOTIFY_EXPORT": "1",
	}
	cfg := New()
	if err := cfg.ApplyEnv(func(k string) (string, bool) { v, ok := env[k]; return v, ok }); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.Theme != "dark" || !cfg.Viewer.Drawable || cfg.ExportScale != 8 || !cfg.Notify.Export {
		t.Fatalf("overrides not applied: %+v", cfg)
	}

	bad := func(k string) (string, bool) { return "nope", k == "ANNOVIEW_EDITABLE" }
	if err := New().ApplyEnv(bad); err == nil || !strings.Contains(err.Error(), "ANNOVIEW_EDITABLE") {
		t.Fatalf("expected error naming the variable, got %v", err)
	}
}

func TestLoaderSearchOrder(t *testing.T) {
	home := t.TempDir()
	wd := t.TempDir()
	oldHome, oldWd, oldEnv := userHomeDir, getwd, lookupEnv
	userHomeDir = func() (string, error) { return home, nil }
	getwd = func() (string, error) { return wd, nil }
	lookupEnv = func(string) (string, bool) { return "", false }
	t.Cleanup(func() { userHomeDir, getwd, lookupEnv = oldHome, oldWd, oldEnv })

	l := NewLoader("dev", "")
	if got := l.GetConfigPath(); got != "" {
		t.Fatalf("expected no config, got %q", got)
	}
	cfg, err := l.Load()
	if err != nil || cfg.ExportScale != 4 {
		t.Fatalf("expected defaults, got %+v, %v", cfg, err)
	}

	xdg := filepath.Join(home, ".config", "annoview", "annoview.rc")
	if err := os.MkdirAll(filepath.Dir(xdg), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(xdg, []byte("theme = fallback\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := l.GetConfigPath(); got != xdg {
		t.Fatalf("GetConfigPath = %q, want %q", got, xdg)
	}

	local := filepath.Join(wd, ".annoviewrc")
	if err := os.WriteFile(local, []byte("theme = local\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := l.GetConfigPath(); got != local {
		t.Fatalf("dev build should prefer %q, got %q", local, got)
	}
	if got := NewLoader("1.0.0", "").GetConfigPath(); got != xdg {
		t.Fatalf("release build should skip the working directory, got %q", got)
	}
	cfg, err = l.Load()
	if err != nil || cfg.Theme != "local" {
		t.Fatalf("Load = %+v, %v", cfg, err)
	}
}
