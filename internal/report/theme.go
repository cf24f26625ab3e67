package report

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/stepref/internal/core/domain"
)

// Theme defines the colour palette for styled output.
type Theme struct {
	// Primary is the main accent colour.
	Primary lipgloss.Color

	// Muted is for less important text.
	Muted lipgloss.Color

	// Success indicates loaded documents.
	Success lipgloss.Color

	// Warning indicates documents still waiting.
	Warning lipgloss.Color

	// Error indicates failures.
	Error lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary: lipgloss.Color("#7C3AED"), // Purple
		Muted:   lipgloss.Color("#6C7086"), // Medium gray
		Success: lipgloss.Color("#A6E3A1"), // Green
		Warning: lipgloss.Color("#F9E2AF"), // Yellow
		Error:   lipgloss.Color("#F38BA8"), // Red
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	Title   lipgloss.Style
	Name    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

// NewStyles builds styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}
	return &Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(theme.Primary),
		Name:    lipgloss.NewStyle().Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(theme.Muted),
		Success: lipgloss.NewStyle().Foreground(theme.Success),
		Warning: lipgloss.NewStyle().Foreground(theme.Warning),
		Error:   lipgloss.NewStyle().Foreground(theme.Error),
	}
}

// plainStyles renders everything unstyled.
func plainStyles() *Styles {
	s := lipgloss.NewStyle()
	return &Styles{Title: s, Name: s, Muted: s, Success: s, Warning: s, Error: s}
}

// Status returns the style for a node status.
func (s *Styles) Status(k domain.StatusKind) lipgloss.Style {
	switch k {
	case domain.StatusLoaded:
		return s.Success
	case domain.StatusPending, domain.StatusDeferred:
		return s.Warning
	case domain.StatusFailed, domain.StatusCancelled:
		return s.Error
	default:
		return s.Muted
	}
}
