package theme

import (
	"fmt"

	"github.com/thebooleanin/techstory-weaver/pkg/color"
)

// Preset is a read-only named color bundle.
type Preset struct {
	Name   string `json:"name" toml:"name"`
	Colors Colors `json:"colors" toml:"colors"`
	IsDark bool   `json:"isDark" toml:"is_dark"`
}

var builtinPresets = []Preset{
	{
		Name: "Modern Purple",
		Colors: Colors{
			Primary:    "265 84% 63%",
			Secondary:  "240 5% 96%",
			Accent:     "280 65% 60%",
			Background: "0 0% 100%",
			Foreground: "240 10% 4%",
		},
	},
	{
		Name: "Tech Blue",
		Colors: Colors{
			Primary:    "217 91% 60%",
			Secondary:  "214 32% 91%",
			Accent:     "199 89% 48%",
			Background: "0 0% 100%",
			Foreground: "222 47% 11%",
		},
	},
	{
		Name: "Corporate Green",
		Colors: Colors{
			Primary:    "142 71% 45%",
			Secondary:  "138 76% 97%",
			Accent:     "160 84% 39%",
			Background: "0 0% 100%",
			Foreground: "150 10% 10%",
		},
	},
	{
		Name: "Minimal Gray",
		Colors: Colors{
			Primary:    "220 9% 46%",
			Secondary:  "220 14% 96%",
			Accent:     "215 16% 47%",
			Background: "0 0% 100%",
			Foreground: "224 71% 4%",
		},
	},
	{
		Name: "Bold Red",
		Colors: Colors{
			Primary:    "0 84% 60%",
			Secondary:  "0 0% 96%",
			Accent:     "25 95% 53%",
			Background: "0 0% 100%",
			Foreground: "0 0% 9%",
		},
	},
	{
		Name: "Dark Mode",
		Colors: Colors{
			Primary:    "265 84% 70%",
			Secondary:  "240 4% 16%",
			Accent:     "280 65% 65%",
			Background: "240 10% 4%",
			Foreground: "0 0% 98%",
		},
		IsDark: true,
	},
}

// BuiltinPresets returns the built-in catalog in display order.
func BuiltinPresets() []Preset {
	return append([]Preset(nil), builtinPresets...)
}

// Catalog is the ordered preset list: built-ins first, then any extras
// loaded from the presets file.
type Catalog struct {
	presets []Preset
}

// NewCatalog returns the built-ins followed by extra.
func NewCatalog(extra ...Preset) *Catalog {
	return &Catalog{presets: append(BuiltinPresets(), extra...)}
}

// Len returns the number of presets.
func (c *Catalog) Len() int { return len(c.presets) }

// Presets returns a copy of the catalog.
func (c *Catalog) Presets() []Preset {
	return append([]Preset(nil), c.presets...)
}

// Get returns the preset at index.
func (c *Catalog) Get(index int) (Preset, error) {
	if index < 0 || index >= len(c.presets) {
		return Preset{}, fmt.Errorf("%w: index %d (catalog has %d)", ErrPresetNotFound, index, len(c.presets))
	}
	return c.presets[index], nil
}

// Swatches returns the preset colors as hex for color-picker inputs.
func (p Preset) Swatches() map[Role]string {
	return p.Colors.Hex()
}

// Swatch returns the primary color parsed for terminal rendering.
func (p Preset) Swatch() color.RGB {
	rgb, err := color.ParseHex(color.HSLToHex(p.Colors.Primary))
	if err != nil {
		return color.RGB{}
	}
	return rgb
}
