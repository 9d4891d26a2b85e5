package ast

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Color is a normalised text color: either a lower-case CSS named color
// (e.g., "red") or a "#rrggbb" hex value.
type Color string

// namedColors maps the CSS named colors accepted by HTML and BBCode to hex.
var namedColors = map[string]string{
	"black":   "#000000",
	"silver":  "#c0c0c0",
	"gray":    "#808080",
	"grey":    "#808080",
	"white":   "#ffffff",
	"maroon":  "#800000",
	"red":     "#ff0000",
	"purple":  "#800080",
	"fuchsia": "#ff00ff",
	"magenta": "#ff00ff",
	"green":   "#008000",
	"lime":    "#00ff00",
	"olive":   "#808000",
	"yellow":  "#ffff00",
	"navy":    "#000080",
	"blue":    "#0000ff",
	"teal":    "#008080",
	"aqua":    "#00ffff",
	"cyan":    "#00ffff",
	"orange":  "#ffa500",
	"pink":    "#ffc0cb",
	"brown":   "#a52a2a",
	"gold":    "#ffd700",
	"indigo":  "#4b0082",
	"violet":  "#ee82ee",
}

// ParseColor parses a named color or a #rgb / #rrggbb hex value.
func ParseColor(s string) (Color, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return "", fmt.Errorf("empty color")
	}
	if _, ok := namedColors[v]; ok {
		return Color(v), nil
	}
	if !strings.HasPrefix(v, "#") {
		return "", fmt.Errorf("unknown color %q", s)
	}
	hex := v[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return "", fmt.Errorf("invalid hex color %q", s)
	}
	if _, err := strconv.ParseUint(hex, 16, 32); err != nil {
		return "", fmt.Errorf("invalid hex color %q", s)
	}
	return Color("#" + hex), nil
}

// Hex returns the color as #rrggbb.
func (c Color) Hex() string {
	if h, ok := namedColors[string(c)]; ok {
		return h
	}
	return string(c)
}

// String returns the color as stored.
func (c Color) String() string {
	return string(c)
}

// SizeUnit is the unit of a Size.
type SizeUnit string

// Size unit constants.
const (
	// UnitLevel is a relative font level 1-7 (HTML <font size>, most BBCode dialects).
	UnitLevel   SizeUnit = "level"
	UnitPixel   SizeUnit = "px"
	UnitPoint   SizeUnit = "pt"
	UnitEm      SizeUnit = "em"
	UnitPercent SizeUnit = "%"
)

// Size is a font size.
type Size struct {
	// Value is the numeric magnitude.
	Value float64

	// Unit is the unit of Value.
	Unit SizeUnit
}

// ParseSize parses a size. A bare integer from 1 to 7 is a level; any other
// bare number is a percentage (the phpBB convention); otherwise a px, pt, em
// or % suffix is required.
func ParseSize(s string) (Size, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return Size{}, fmt.Errorf("empty size")
	}
	for _, unit := range []SizeUnit{UnitPixel, UnitPoint, UnitEm, UnitPercent} {
		if num, ok := strings.CutSuffix(v, string(unit)); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
			if err != nil || !positive(f) {
				return Size{}, fmt.Errorf("invalid size %q", s)
			}
			return Size{Value: f, Unit: unit}, nil
		}
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || !positive(f) {
		return Size{}, fmt.Errorf("invalid size %q", s)
	}
	if f == float64(int(f)) && f >= 1 && f <= 7 {
		return Size{Value: f, Unit: UnitLevel}, nil
	}
	return Size{Value: f, Unit: UnitPercent}, nil
}

// positive reports whether f is finite and greater than zero.
func positive(f float64) bool {
	return f > 0 && !math.IsInf(f, 0)
}

// String renders the size in the form ParseSize accepts.
func (s Size) String() string {
	num := strconv.FormatFloat(s.Value, 'f', -1, 64)
	if s.Unit == UnitLevel {
		return num
	}
	return num + string(s.Unit)
}

// Level returns the size as a level 1-7 and whether that is exact.
func (s Size) Level() (int, bool) {
	if s.Unit == UnitLevel {
		return int(s.Value), true
	}
	return 0, false
}
