package components

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lessonflow/internal/ui/theme"
)

// AnswerInput wraps bubbles/textinput for free-form exercise answers.
// Allowed restricts typed runes; empty allows anything.
type AnswerInput struct {
	Model   textinput.Model
	Allowed string
	graded  bool
	correct bool
}

// Allowed rune sets per answer kind.
const (
	IntegerRunes  = "-0123456789"
	DecimalRunes  = "-.0123456789"
	FractionRunes = "-/0123456789"
)

// NewAnswerInput creates a focused input.
func NewAnswerInput(placeholder, allowed string, limit int) AnswerInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()
	if limit > 0 {
		ti.CharLimit = limit
	}
	return AnswerInput{Model: ti, Allowed: allowed}
}

// Init returns the focus command.
func (a AnswerInput) Init() tea.Cmd {
	return a.Model.Focus()
}

// Update forwards msg to the input, dropping disallowed characters.
// Editing clears a previous grade.
func (a AnswerInput) Update(msg tea.Msg) (AnswerInput, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		key := kmsg.String()
		if a.Allowed != "" && len([]rune(key)) == 1 && !strings.Contains(a.Allowed, key) {
			return a, nil
		}
		a.graded = false
	}

	var cmd tea.Cmd
	a.Model, cmd = a.Model.Update(msg)
	return a, cmd
}

// View renders the input with a ✓ or ✗ once graded.
func (a AnswerInput) View() string {
	view := a.Model.View()
	if a.graded {
		if a.correct {
			view += " " + lipgloss.NewStyle().Foreground(theme.Success).Render("✓")
		} else {
			view += " " + lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
		}
	}
	return view
}

// Value returns the trimmed input.
func (a AnswerInput) Value() string {
	return strings.TrimSpace(a.Model.Value())
}

// Grade records the result shown next to the input.
func (a *AnswerInput) Grade(correct bool) {
	a.graded = true
	a.correct = correct
}
