// Package theme holds the colour palette used to paint the viewer.
package theme

import (
	"image/color"
)

// Theme defines the color palette for the viewer and its marks. Colours are
// alpha-premultiplied like every color.RGBA.
type Theme struct {
	Name string

	// General
	Background color.RGBA // Canvas area around the asset
	Foreground color.RGBA // Status text

	// Toolbar
	ToolbarBackground     color.RGBA
	ButtonBackground      color.RGBA
	ButtonBackgroundHover color.RGBA
	ButtonBackgroundPress color.RGBA
	ButtonText            color.RGBA
	ButtonBorder          color.RGBA

	// Canvas
	CheckerLight color.RGBA
	CheckerDark  color.RGBA

	// Marks
	ShapeStroke     color.RGBA // Used when a mark has no stroke colour
	ShapeBackground color.RGBA // Fill of selected or hovered marks
	Shadow          color.RGBA
	LabelBackground color.RGBA
	LabelText       color.RGBA
	StatusUnhandled color.RGBA
	StatusRing      color.RGBA

	// Transformer
	HandleFill   color.RGBA
	HandleBorder color.RGBA

	// Paint layer
	Brush color.RGBA
}

// Default returns the hardcoded default light theme (fallback).
func Default() *Theme {
	return &Theme{
		Name:                  "Default",
		Background:            color.RGBA{220, 220, 220, 255},
		Foreground:            color.RGBA{0, 0, 0, 255},
		ToolbarBackground:     color.RGBA{220, 220, 220, 255},
		ButtonBackground:      color.RGBA{200, 200, 200, 255},
		ButtonBackgroundHover: color.RGBA{180, 180, 180, 255},
		ButtonBackgroundPress: color.RGBA{150, 150, 150, 255},
		ButtonText:            color.RGBA{0, 0, 0, 255},
		ButtonBorder:          color.RGBA{0, 0, 0, 255},
		CheckerLight:          color.RGBA{220, 220, 220, 255},
		CheckerDark:           color.RGBA{192, 192, 192, 255},
		ShapeStroke:           color.RGBA{51, 51, 51, 255},
		ShapeBackground:       color.RGBA{13, 13, 13, 64},
		Shadow:                color.RGBA{25, 28, 30, 89},
		LabelBackground:       color.RGBA{51, 51, 51, 255},
		LabelText:             color.RGBA{255, 255, 255, 255},
		StatusUnhandled:       color.RGBA{247, 72, 83, 255},
		StatusRing:            color.RGBA{255, 255, 255, 255},
		HandleFill:            color.RGBA{255, 255, 255, 255},
		HandleBorder:          color.RGBA{51, 51, 51, 255},
		Brush:                 color.RGBA{247, 72, 83, 255},
	}
}
