// Package color converts between the two textual color forms used by the
// site: hex ("#rrggbb", for color pickers) and HSL triples ("H S% L%", for
// CSS custom properties). Conversions never fail; malformed input degrades
// to the brand purple and the result says so.
package color

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Fallback values returned for malformed input.
const (
	FallbackHex = "#7c3aed"
	FallbackHSL = "265 84% 63%"
)

// ErrMalformed is returned by the strict parsers when the input cannot be read.
var ErrMalformed = errors.New("malformed color")

// Outcome tags how a conversion produced its value.
type Outcome int

const (
	// OK means the input parsed and the value is its conversion.
	OK Outcome = iota
	// Fallback means the input was malformed and the value is the default.
	Fallback
)

func (o Outcome) String() string {
	if o == Fallback {
		return "fallback"
	}
	return "ok"
}

// Conversion is the tagged result of a lenient conversion.
type Conversion struct {
	Value   string
	Outcome Outcome
}

// Ok reports whether the conversion used the caller's input.
func (c Conversion) Ok() bool { return c.Outcome == OK }

// HSL is a color in hue/saturation/lightness space.
// H is in degrees [0,360), S and L are percentages [0,100].
type HSL struct {
	H, S, L float64
}

// RGB is a color with 8-bit channels.
type RGB struct {
	R, G, B uint8
}

// String formats the color as an integer "H S% L%" triple.
func (c HSL) String() string {
	h := int(math.Round(c.H))
	if h >= 360 {
		h -= 360
	}
	return fmt.Sprintf("%d %d%% %d%%", h, int(math.Round(c.S)), int(math.Round(c.L)))
}

// RGB converts the color using the standard piecewise HSL formula.
func (c HSL) RGB() RGB {
	h := c.H / 360
	s := c.S / 100
	l := c.L / 100

	var r, g, b float64
	if s == 0 {
		r, g, b = l, l, l
	} else {
		var q float64
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q
		r = hueToRGB(p, q, h+1.0/3)
		g = hueToRGB(p, q, h)
		b = hueToRGB(p, q, h-1.0/3)
	}
	return RGB{R: toByte(r), G: toByte(g), B: toByte(b)}
}

// Hex formats the color as "#rrggbb".
func (c HSL) Hex() string { return c.RGB().Hex() }

// Hex formats the color as lowercase "#rrggbb".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// HSL converts the color to hue/saturation/lightness, unrounded.
func (c RGB) HSL() HSL {
	r := float64(c.R) / 255
	g := float64(c.G) / 255
	b := float64(c.B) / 255

	hi := math.Max(r, math.Max(g, b))
	lo := math.Min(r, math.Min(g, b))
	l := (hi + lo) / 2

	if hi == lo {
		return HSL{H: 0, S: 0, L: l * 100}
	}

	d := hi - lo
	var s float64
	if l > 0.5 {
		s = d / (2 - hi - lo)
	} else {
		s = d / (hi + lo)
	}

	var h float64
	switch hi {
	case r:
		h = (g - b) / d
		if g < b {
			h += 6
		}
	case g:
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}
	h /= 6
	h -= math.Floor(h)

	return HSL{H: h * 360, S: s * 100, L: l * 100}
}

// Luminance returns the relative luminance in [0,1] (sRGB weights, no gamma).
func (c RGB) Luminance() float64 {
	return 0.2126*float64(c.R)/255 + 0.7152*float64(c.G)/255 + 0.0722*float64(c.B)/255
}

// IsDark reports whether light text reads better on top of the color.
func (c RGB) IsDark() bool { return c.Luminance() < 0.5 }

// ParseHSL reads an "H S% L%" triple. The percent signs are optional.
// Hue wraps into [0,360); saturation and lightness clamp to [0,100].
func ParseHSL(s string) (HSL, error) {
	fields := strings.Fields(s)
	if len(fields) != 3 {
		return HSL{}, fmt.Errorf("%w: want 3 components, got %d in %q", ErrMalformed, len(fields), s)
	}

	var v [3]float64
	for i, f := range fields {
		n, err := strconv.ParseFloat(strings.TrimSuffix(f, "%"), 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return HSL{}, fmt.Errorf("%w: component %d of %q", ErrMalformed, i+1, s)
		}
		v[i] = n
	}

	h := math.Mod(v[0], 360)
	if h < 0 {
		h += 360
	}
	return HSL{H: h, S: clamp(v[1], 0, 100), L: clamp(v[2], 0, 100)}, nil
}

// ParseHex reads "#rgb", "#rrggbb", "rgb" or "rrggbb".
func ParseHex(s string) (RGB, error) {
	digits := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(digits) {
	case 3:
		digits = string([]byte{digits[0], digits[0], digits[1], digits[1], digits[2], digits[2]})
	case 6:
	default:
		return RGB{}, fmt.Errorf("%w: hex %q must have 3 or 6 digits", ErrMalformed, s)
	}

	n, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: hex %q", ErrMalformed, s)
	}
	return RGB{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n)}, nil
}

// ConvertHSLToHex converts an HSL triple to hex, falling back to
// FallbackHex when the triple is malformed.
func ConvertHSLToHex(hsl string) Conversion {
	c, err := ParseHSL(hsl)
	if err != nil {
		return Conversion{Value: FallbackHex, Outcome: Fallback}
	}
	return Conversion{Value: c.Hex(), Outcome: OK}
}

// ConvertHexToHSL converts a hex color to an integer HSL triple, falling
// back to FallbackHSL when the hex is malformed.
func ConvertHexToHSL(hex string) Conversion {
	c, err := ParseHex(hex)
	if err != nil {
		return Conversion{Value: FallbackHSL, Outcome: Fallback}
	}
	return Conversion{Value: c.HSL().String(), Outcome: OK}
}

// HSLToHex is ConvertHSLToHex without the outcome tag.
func HSLToHex(hsl string) string { return ConvertHSLToHex(hsl).Value }

// HexToHSL is ConvertHexToHSL without the outcome tag.
func HexToHSL(hex string) string { return ConvertHexToHSL(hex).Value }

// NormalizeHSL re-formats a valid triple as integers ("20.4 76% 57%" ->
// "20 76% 57%"). Malformed input yields FallbackHSL.
func NormalizeHSL(hsl string) Conversion {
	c, err := ParseHSL(hsl)
	if err != nil {
		return Conversion{Value: FallbackHSL, Outcome: Fallback}
	}
	return Conversion{Value: c.String(), Outcome: OK}
}

// IsHex reports whether s parses as a 3 or 6 digit hex color.
func IsHex(s string) bool {
	_, err := ParseHex(s)
	return err == nil
}

// IsHSL reports whether s parses as an HSL triple.
func IsHSL(s string) bool {
	_, err := ParseHSL(s)
	return err == nil
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 1.0/2:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	default:
		return p
	}
}

func toByte(v float64) uint8 {
	return uint8(clamp(math.Round(v*255), 0, 255))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
