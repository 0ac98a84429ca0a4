package theme

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/thebooleanin/techstory-weaver/pkg/color"
)

type presetsFile struct {
	Preset []Preset `toml:"preset"`
}

// LoadPresetsFile reads extra presets from a TOML file:
//
//	[[preset]]
//	name = "Sunset"
//	is_dark = false
//	[preset.colors]
//	primary = "#E6834D"      # hex or "H S% L%"
//	secondary = "30 40% 96%"
//	...
//
// Every role must be set and parse; hex values are converted to HSL.
func LoadPresetsFile(path string) ([]Preset, error) {
	var f presetsFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("decode presets %s: %w", path, err)
	}

	for i := range f.Preset {
		p := &f.Preset[i]
		if p.Name == "" {
			return nil, fmt.Errorf("preset #%d in %s: name is required", i+1, path)
		}
		for _, r := range Roles {
			v := p.Colors.Get(r)
			switch {
			case color.IsHex(v):
				_ = p.Colors.Set(r, color.HexToHSL(v))
			case color.IsHSL(v):
				_ = p.Colors.Set(r, color.NormalizeHSL(v).Value)
			default:
				return nil, fmt.Errorf("preset %q in %s: %s %q is neither hex nor HSL", p.Name, path, r, v)
			}
		}
	}
	return f.Preset, nil
}
