package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/desertthunder/vtx/internal/models"
)

var (
	darkStyles  = NewPalette("#7D56F4", "#04B575", "#FF5F5F", "#FFA500", "#8A8A8A", "#3C3C3C")
	lightStyles = NewPalette("#5A3FC0", "#0A7F4F", "#C62828", "#B26A00", "#6C6C6C", "#D0D0D0")
)

// Palette is a simple stylesheet built with named [lipgloss.Style] fields.
type Palette struct {
	title  lipgloss.Style
	ok     lipgloss.Style
	err    lipgloss.Style
	warn   lipgloss.Style
	help   lipgloss.Style
	badge  lipgloss.Style
	border lipgloss.Style
	focus  lipgloss.Style
}

func NewPalette(t, s, e, w, h, b string) *Palette {
	return &Palette{
		title:  NewBold(t).MarginBottom(1),
		ok:     NewBold(s),
		err:    NewBold(e),
		warn:   NewStyle(w),
		help:   NewEm(h),
		badge:  lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color(t)),
		border: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color(b)).Padding(0, 1),
		focus:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color(t)).Padding(0, 1),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// PaletteFor returns the stylesheet for theme.
func PaletteFor(theme models.Theme) *Palette {
	if theme == models.ThemeLight {
		return lightStyles
	}
	return darkStyles
}

// ResolveTheme picks the starting theme: a saved preference wins, then an explicit configured value,
// then the terminal background.
func ResolveTheme(saved models.Theme, hasSaved bool, configured string) models.Theme {
	if hasSaved {
		return saved
	}
	if t, err := models.ParseTheme(configured); err == nil {
		return t
	}
	if lipgloss.HasDarkBackground() {
		return models.ThemeDark
	}
	return models.ThemeLight
}
