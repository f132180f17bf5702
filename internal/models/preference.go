package models

import (
	"fmt"
	"strings"
)

// PreferenceTheme is the only preference key the client persists.
const PreferenceTheme = "theme"

// Theme is the persisted colour scheme.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// ParseTheme accepts "dark" or "light" in any case.
func ParseTheme(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case ThemeDark:
		return ThemeDark, nil
	case ThemeLight:
		return ThemeLight, nil
	default:
		return "", fmt.Errorf("unknown theme %q", s)
	}
}

// Toggle returns the opposite theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// Preference is a persisted key-value pair.
type Preference struct {
	base
	key   string
	value string
}

// NewPreference creates a new [Preference].
func NewPreference(key, value string) *Preference {
	return &Preference{base: newBase(), key: key, value: value}
}

func (p *Preference) Key() string       { return p.key }
func (p *Preference) Value() string     { return p.value }
func (p *Preference) SetValue(v string) { p.value = v }

// Validate checks that the key is set and that known keys hold valid values.
func (p *Preference) Validate() error {
	if strings.TrimSpace(p.key) == "" {
		return fmt.Errorf("preference key is required")
	}
	if p.key == PreferenceTheme {
		if _, err := ParseTheme(p.value); err != nil {
			return err
		}
	}
	return nil
}
