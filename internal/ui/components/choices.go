package components

import (
	"fmt"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lessonflow/internal/ui/theme"
)

// Choices is a numbered option list. Pressing a digit or enter picks an
// option; grading is left to the caller.
type Choices struct {
	Options  []string
	Selected int
	// Chosen is the 0-based picked option, or -1.
	Chosen int
	// Correct colours the chosen option once it is graded.
	Correct *bool
}

// NewChoices creates an option list with nothing picked.
func NewChoices(options []string) Choices {
	return Choices{Options: options, Chosen: -1}
}

// Update moves the cursor and reports the picked option, if any.
func (c Choices) Update(msg tea.Msg) (Choices, int, bool) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || len(c.Options) == 0 {
		return c, 0, false
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if c.Selected > 0 {
			c.Selected--
		}
	case "down", "j":
		if c.Selected < len(c.Options)-1 {
			c.Selected++
		}
	case "enter":
		c.Chosen = c.Selected
		return c, c.Chosen, true
	default:
		n, err := strconv.Atoi(key)
		if err != nil || n < 1 || n > len(c.Options) {
			return c, 0, false
		}
		c.Selected = n - 1
		c.Chosen = n - 1
		return c, c.Chosen, true
	}
	return c, 0, false
}

// View renders the options with 1-based labels.
func (c Choices) View() string {
	var b strings.Builder
	for i, opt := range c.Options {
		prefix := "  "
		if i == c.Selected {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%d)  %s", prefix, i+1, opt)

		style := theme.Unselected
		switch {
		case i == c.Chosen && c.Correct != nil && *c.Correct:
			style = theme.Correct
		case i == c.Chosen && c.Correct != nil:
			style = theme.Incorrect
		case i == c.Chosen:
			style = theme.Selected
		case i == c.Selected:
			style = lipgloss.NewStyle().Foreground(theme.Primary)
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
