package theme

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"math"
	"reflect"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Parse reads a theme definition from an io.Reader.
// The format is a simple key-value pair per line: Key: colour.
// Keys not present keep their Default value.
func Parse(r io.Reader) (*Theme, error) {
	t := Default() // Start with defaults
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if err := t.Set(strings.TrimSpace(key), strings.TrimSpace(value)); err != nil {
			return nil, err
		}
	}

	return t, scanner.Err()
}

// Set assigns one palette entry by field name. Unknown keys are ignored for
// forward compatibility.
func (t *Theme) Set(key, value string) error {
	if key == "Name" {
		t.Name = value
		return nil
	}
	field := reflect.ValueOf(t).Elem().FieldByName(key)
	if !field.IsValid() || field.Type() != reflect.TypeOf(color.RGBA{}) {
		return nil
	}
	col, err := ParseColor(value)
	if err != nil {
		return fmt.Errorf("invalid color for key %s: %w", key, err)
	}
	field.Set(reflect.ValueOf(col))
	return nil
}

// Apply copies overrides onto a clone of t.
func (t *Theme) Apply(overrides map[string]string) (*Theme, error) {
	out := *t
	for k, v := range overrides {
		if err := out.Set(k, v); err != nil {
			return nil, err
		}
	}
	return &out, nil
}

// ParseColor understands #RGB, #RRGGBB, #RRGGBBAA, rgb(), rgba(), hsl(),
// hsla() and SVG colour names.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(s, "#"):
		return parseHex(strings.TrimPrefix(s, "#"))
	case lower == "transparent":
		return color.RGBA{}, nil
	case strings.HasPrefix(lower, "rgb"):
		return parseFunc(lower, false)
	case strings.HasPrefix(lower, "hsl"):
		return parseFunc(lower, true)
	}
	if c, ok := colornames.Map[lower]; ok {
		return c, nil
	}
	return color.RGBA{}, fmt.Errorf("unknown color %q", s)
}

func parseHex(hex string) (color.RGBA, error) {
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	val, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, err
	}
	switch len(hex) {
	case 6:
		// #RRGGBB
		return color.RGBA{
			R: uint8(val >> 16),
			G: uint8((val >> 8) & 0xFF),
			B: uint8(val & 0xFF),
			A: 255,
		}, nil
	case 8:
		// #RRGGBBAA, straight alpha
		ch := func(shift uint) float64 { return float64((val>>shift)&0xFF) / 255 }
		return premultiply(ch(24), ch(16), ch(8), uint8(val&0xFF)), nil
	}
	return color.RGBA{}, fmt.Errorf("#%s: invalid hex length", hex)
}

func parseFunc(s string, hsl bool) (color.RGBA, error) {
	open, end := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')')
	if open < 0 || end < open {
		return color.RGBA{}, fmt.Errorf("malformed color %q", s)
	}
	parts := strings.Split(s[open+1:end], ",")
	if len(parts) != 3 && len(parts) != 4 {
		return color.RGBA{}, fmt.Errorf("color %q: want 3 or 4 components", s)
	}
	vals := make([]float64, 4)
	vals[3] = 1
	for i, p := range parts {
		p = strings.TrimSpace(p)
		pct := strings.HasSuffix(p, "%")
		v, err := strconv.ParseFloat(strings.TrimSuffix(p, "%"), 64)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("color %q: %w", s, err)
		}
		if pct {
			v /= 100
			if !hsl && i < 3 {
				v *= 255
			}
		}
		vals[i] = v
	}
	a := uint8(math.Round(clamp01(vals[3]) * 255))
	if !hsl {
		return premultiply(vals[0]/255, vals[1]/255, vals[2]/255, a), nil
	}
	r, g, b := hslToRGB(math.Mod(vals[0], 360)/360, clamp01(vals[1]), clamp01(vals[2]))
	return premultiply(r, g, b, a), nil
}

// premultiply builds an alpha-premultiplied color.RGBA from straight channels.
func premultiply(r, g, b float64, a uint8) color.RGBA {
	f := float64(a) / 255
	ch := func(v float64) uint8 { return uint8(math.Round(clamp01(v) * f * 255)) }
	return color.RGBA{R: ch(r), G: ch(g), B: ch(b), A: a}
}

func hslToRGB(h, s, l float64) (float64, float64, float64) {
	if h < 0 {
		h++
	}
	if s == 0 {
		return l, l, l
	}
	q := l * (1 + s)
	if l >= 0.5 {
		q = l + s - l*s
	}
	p := 2*l - q
	return hue(p, q, h+1.0/3), hue(p, q, h), hue(p, q, h-1.0/3)
}

func hue(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 0.5:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	}
	return p
}

func clamp01(v float64) float64 { return math.Max(0, math.Min(1, v)) }
