package color

import (
	"fmt"
	"testing"
)

func TestHSLToHex(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"pure red", "0 100% 50%", "#ff0000"},
		{"pure green", "120 100% 50%", "#00ff00"},
		{"pure blue", "240 100% 50%", "#0000ff"},
		{"achromatic grey", "0 0% 50%", "#808080"},
		{"white", "0 0% 100%", "#ffffff"},
		{"black", "0 0% 0%", "#000000"},
		{"dark green", "120 100% 25%", "#008000"},
		{"default purple", "265 84% 63%", "#9351f0"},
		{"percent signs optional", "240 100 50", "#0000ff"},
		{"hue wraps", "360 100% 50%", "#ff0000"},
		{"extra whitespace", "  0   100%  50% ", "#ff0000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HSLToHex(tt.in)
			if got != tt.want {
				t.Errorf("HSLToHex(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if len(got) != 7 {
				t.Errorf("HSLToHex(%q) length = %d, want 7", tt.in, len(got))
			}
		})
	}
}

func TestHSLToHex_MalformedFallsBack(t *testing.T) {
	inputs := []string{
		"",
		"abc",
		"265 84%",
		"265 abc% 63%",
		"NaN 84% 63%",
		"265 84% 63% 10%",
		"hsl(265, 84%, 63%)",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			c := ConvertHSLToHex(in)
			if c.Value != FallbackHex {
				t.Errorf("ConvertHSLToHex(%q).Value = %q, want %q", in, c.Value, FallbackHex)
			}
			if c.Outcome != Fallback {
				t.Errorf("ConvertHSLToHex(%q).Outcome = %v, want fallback", in, c.Outcome)
			}
			if got := HSLToHex(in); got != FallbackHex {
				t.Errorf("HSLToHex(%q) = %q, want %q", in, got, FallbackHex)
			}
		})
	}
}

func TestHexToHSL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"#ff0000", "0 100% 50%"},
		{"#f00", "0 100% 50%"},
		{"f00", "0 100% 50%"},
		{"00ff00", "120 100% 50%"},
		{"#0000FF", "240 100% 50%"},
		{"#ffffff", "0 0% 100%"},
		{"#000000", "0 0% 0%"},
		{"#E6834D", "21 75% 60%"},
		{"#3b82f6", "217 91% 60%"},
		{"#7c3aed", "262 83% 58%"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c := ConvertHexToHSL(tt.in)
			if !c.Ok() {
				t.Fatalf("ConvertHexToHSL(%q) fell back", tt.in)
			}
			if c.Value != tt.want {
				t.Errorf("HexToHSL(%q) = %q, want %q", tt.in, c.Value, tt.want)
			}
		})
	}
}

func TestHexToHSL_MalformedFallsBack(t *testing.T) {
	inputs := []string{"", "#", "#f", "#ff", "#ffff", "#fffff", "#fffffff", "#ggghhh", "#12345z", "red"}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			c := ConvertHexToHSL(in)
			if c.Value != FallbackHSL || c.Outcome != Fallback {
				t.Errorf("ConvertHexToHSL(%q) = %+v, want fallback %q", in, c, FallbackHSL)
			}
		})
	}
}

func channelDrift(t *testing.T, a, b string) int {
	t.Helper()
	ra, err := ParseHex(a)
	if err != nil {
		t.Fatalf("ParseHex(%q): %v", a, err)
	}
	rb, err := ParseHex(b)
	if err != nil {
		t.Fatalf("ParseHex(%q): %v", b, err)
	}
	worst := 0
	for _, d := range []int{
		int(ra.R) - int(rb.R),
		int(ra.G) - int(rb.G),
		int(ra.B) - int(rb.B),
	} {
		if d < 0 {
			d = -d
		}
		if d > worst {
			worst = d
		}
	}
	return worst
}

func TestRoundTrip_CommonColors(t *testing.T) {
	colors := []string{
		"#e6834d", "#7c3aed", "#3b82f6", "#10b981", "#ef4444", "#f59e0b",
		"#6b7280", "#111827", "#f9fafb", "#ec4899", "#14b8a6", "#8b5cf6",
	}
	for _, hex := range colors {
		back := HSLToHex(HexToHSL(hex))
		if d := channelDrift(t, hex, back); d > 2 {
			t.Errorf("round trip %s -> %s -> %s drifts %d, want <= 2", hex, HexToHSL(hex), back, d)
		}
	}
}

func TestRoundTrip_QuantizationBound(t *testing.T) {
	// Integer H/S/L loses at most half a unit per component, which bounds the
	// per-channel drift at 5 even for fully saturated dark colors.
	for r := 0; r < 256; r += 15 {
		for g := 0; g < 256; g += 15 {
			for b := 0; b < 256; b += 15 {
				hex := fmt.Sprintf("#%02x%02x%02x", r, g, b)
				back := HSLToHex(HexToHSL(hex))
				if d := channelDrift(t, hex, back); d > 5 {
					t.Fatalf("round trip %s -> %s drifts %d", hex, back, d)
				}
			}
		}
	}
}

func TestParseHSL_Clamps(t *testing.T) {
	c, err := ParseHSL("-30 150% -5%")
	if err != nil {
		t.Fatalf("ParseHSL: %v", err)
	}
	if c.H != 330 || c.S != 100 || c.L != 0 {
		t.Errorf("ParseHSL clamped = %+v, want {330 100 0}", c)
	}
}

func TestNormalizeHSL(t *testing.T) {
	if got := NormalizeHSL("20.4 75.6% 57.2%").Value; got != "20 76% 57%" {
		t.Errorf("NormalizeHSL = %q, want %q", got, "20 76% 57%")
	}
	if c := NormalizeHSL("junk"); c.Ok() || c.Value != FallbackHSL {
		t.Errorf("NormalizeHSL(junk) = %+v, want fallback", c)
	}
}

func TestIsDark(t *testing.T) {
	tests := []struct {
		hex  string
		dark bool
	}{
		{"#000000", true},
		{"#ffffff", false},
		{"#111827", true},
		{"#f9fafb", false},
	}
	for _, tt := range tests {
		rgb, err := ParseHex(tt.hex)
		if err != nil {
			t.Fatalf("ParseHex(%q): %v", tt.hex, err)
		}
		if rgb.IsDark() != tt.dark {
			t.Errorf("IsDark(%s) = %v, want %v", tt.hex, rgb.IsDark(), tt.dark)
		}
	}
}

func TestValidators(t *testing.T) {
	if !IsHex("#abc") || IsHex("#abcd") {
		t.Error("IsHex misclassified input")
	}
	if !IsHSL("1 2% 3%") || IsHSL("1 2%") {
		t.Error("IsHSL misclassified input")
	}
}
