// Package theme owns the site color theme: the editable configuration, the
// preset catalog, and the appliers that publish it as CSS variables.
package theme

import (
	"errors"
	"fmt"

	"github.com/thebooleanin/techstory-weaver/pkg/color"
)

// Sentinel errors returned by the Editor.
var (
	ErrUnknownRole    = errors.New("unknown color role")
	ErrPresetNotFound = errors.New("preset not found")
	ErrSaveFailed     = errors.New("theme save failed")
	ErrInvalidTheme   = errors.New("invalid theme")
)

// Role names one color slot of the theme.
type Role string

const (
	RolePrimary    Role = "primary"
	RoleSecondary  Role = "secondary"
	RoleAccent     Role = "accent"
	RoleBackground Role = "background"
	RoleForeground Role = "foreground"
)

// Roles lists every color role in CSS output order.
var Roles = []Role{RolePrimary, RoleSecondary, RoleAccent, RoleBackground, RoleForeground}

// ParseRole validates a role name from a request path or CLI flag.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// Colors holds one "H S% L%" triple per role.
type Colors struct {
	Primary    string `json:"primary" toml:"primary"`
	Secondary  string `json:"secondary" toml:"secondary"`
	Accent     string `json:"accent" toml:"accent"`
	Background string `json:"background" toml:"background"`
	Foreground string `json:"foreground" toml:"foreground"`
}

func (c *Colors) slot(r Role) *string {
	switch r {
	case RolePrimary:
		return &c.Primary
	case RoleSecondary:
		return &c.Secondary
	case RoleAccent:
		return &c.Accent
	case RoleBackground:
		return &c.Background
	case RoleForeground:
		return &c.Foreground
	}
	return nil
}

// Get returns the HSL value for r, or "" for an unknown role.
func (c Colors) Get(r Role) string {
	if p := c.slot(r); p != nil {
		return *p
	}
	return ""
}

// Set stores v for r.
func (c *Colors) Set(r Role, v string) error {
	p := c.slot(r)
	if p == nil {
		return fmt.Errorf("%w: %q", ErrUnknownRole, r)
	}
	*p = v
	return nil
}

// Hex returns every role converted to "#rrggbb".
func (c Colors) Hex() map[Role]string {
	out := make(map[Role]string, len(Roles))
	for _, r := range Roles {
		out[r] = color.HSLToHex(c.Get(r))
	}
	return out
}

// Validate reports the first role whose value is not an HSL triple.
func (c Colors) Validate() error {
	for _, r := range Roles {
		if !color.IsHSL(c.Get(r)) {
			return fmt.Errorf("%w: %s %q is not an \"H S%% L%%\" triple", ErrInvalidTheme, r, c.Get(r))
		}
	}
	return nil
}

// Sanitize normalizes every role, replacing malformed values with the
// fallback triple. It returns the roles that fell back.
func (c *Colors) Sanitize() []Role {
	var fell []Role
	for _, r := range Roles {
		conv := color.NormalizeHSL(c.Get(r))
		if !conv.Ok() {
			fell = append(fell, r)
		}
		_ = c.Set(r, conv.Value)
	}
	return fell
}

// DarkMode controls the light/dark flag. Default and Auto only take effect
// when Enabled; stale values are kept when it is off.
type DarkMode struct {
	Enabled bool `json:"enabled"`
	Default bool `json:"default"`
	Auto    bool `json:"auto"`
}

// Config is the persisted theme.
type Config struct {
	Colors   Colors   `json:"colors"`
	DarkMode DarkMode `json:"darkMode"`
	Name     string   `json:"name,omitempty"`
}

// IsDark reports the root dark flag.
func (c Config) IsDark() bool {
	return c.DarkMode.Default
}

// Mode returns "dark" or "light" for the data-theme attribute.
func (c Config) Mode() string {
	if c.IsDark() {
		return "dark"
	}
	return "light"
}

// Default returns the theme used when nothing has been saved yet.
func Default() Config {
	p := builtinPresets[0]
	return Config{
		Colors:   p.Colors,
		DarkMode: DarkMode{Enabled: true, Default: p.IsDark},
		Name:     p.Name,
	}
}
