package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lessonflow/internal/router"
	"github.com/abhisek/lessonflow/internal/screen"
	"github.com/abhisek/lessonflow/internal/ui/layout"
	"github.com/abhisek/lessonflow/internal/ui/theme"
)

// Result describes a finished lesson.
type Result struct {
	LessonTitle string
	Slides      int
	Score       int

	// NextTitle and Next are empty when there is no following lesson.
	NextTitle string
	Next      func() screen.Screen
}

// SummaryScreen is shown after a lesson is finished.
type SummaryScreen struct {
	result Result
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen.
func New(result Result) *SummaryScreen {
	return &SummaryScreen{result: result}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Lesson Complete"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	enter := "Lessons"
	if s.result.Next != nil {
		enter = "Next lesson"
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: enter},
		{Key: "Esc", Description: "Lessons"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "enter":
		if s.result.Next != nil {
			next := s.result.Next()
			return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
		}
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	case "esc":
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	r := s.result
	center := func(str string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, str)
	}

	var b strings.Builder
	b.WriteString(center(theme.Title.Render("Lesson complete!")))
	b.WriteString("\n\n")
	b.WriteString(center(theme.Body.Render(r.LessonTitle)))
	b.WriteString("\n\n")
	b.WriteString(center(theme.Subtitle.Render(
		fmt.Sprintf("Slides: %d        Score: %d", r.Slides, r.Score))))
	b.WriteString("\n\n")

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(
		strings.Repeat("─", max(min(width-8, 48), 0)))
	b.WriteString(center(divider))
	b.WriteString("\n\n")

	if r.Next != nil {
		b.WriteString(center(theme.Selected.Render("Up next: " + r.NextTitle)))
	} else {
		b.WriteString(center(theme.Completed.Render("You have finished every lesson.")))
	}

	return lipgloss.PlaceVertical(height, lipgloss.Center, b.String())
}
