package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/lessonflow/internal/ui/theme"
)

// Countdown renders the remaining time of a slide as a draining bar.
type Countdown struct {
	Remaining int
	Total     int
	Playing   bool
	Width     int
}

// NewCountdown creates a countdown bar.
func NewCountdown(remaining, total int, playing bool, width int) Countdown {
	return Countdown{
		Remaining: remaining,
		Total:     total,
		Playing:   playing,
		Width:     width,
	}
}

// Fraction returns the share of the slide time still left, in [0, 1].
func (c Countdown) Fraction() float64 {
	if c.Total <= 0 {
		return 0
	}
	f := float64(c.Remaining) / float64(c.Total)
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

// View renders the bar followed by the seconds left and the playback state.
func (c Countdown) View() string {
	icon := "▶"
	if !c.Playing {
		icon = "⏸"
	}
	label := lipgloss.NewStyle().Foreground(theme.Text).Render(icon) + "  "
	suffix := fmt.Sprintf("  %2ds", max(c.Remaining, 0))

	barWidth := c.Width - lipgloss.Width(label) - len(suffix)
	if barWidth < 4 {
		barWidth = 4
	}
	filled := int(float64(barWidth) * c.Fraction())
	empty := barWidth - filled

	fill := theme.Secondary
	if c.Remaining <= 3 {
		fill = theme.Accent
	}
	bar := lipgloss.NewStyle().Background(fill).Render(strings.Repeat(" ", filled)) +
		lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", empty))

	return label + bar + lipgloss.NewStyle().Foreground(theme.TextDim).Render(suffix)
}
