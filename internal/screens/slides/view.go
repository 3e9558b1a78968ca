package slides

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/lessonflow/internal/lesson"
	"github.com/abhisek/lessonflow/internal/ui/components"
	"github.com/abhisek/lessonflow/internal/ui/theme"
)

func (s *SlidesScreen) View(width, height int) string {
	if s.errMsg != "" {
		return components.Center(
			theme.Incorrect.Render("Could not open lesson")+"\n\n"+
				theme.Hint.Render(s.errMsg),
			width, height)
	}
	if !s.ready {
		return components.Center(theme.Hint.Render("Loading lesson..."), width, height)
	}

	v := s.view
	cw := components.ContentWidth(width)

	var b strings.Builder

	// Position and completion line.
	pos := fmt.Sprintf("Slide %d of %d", v.Index+1, v.Total)
	kind := string(v.Slide.Type)
	if v.SlideDone {
		kind += "  ✓"
	}
	left := theme.Subtitle.Render(pos)
	right := lipgloss.NewStyle().Foreground(theme.Secondary).Render(kind)
	gap := cw - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	b.WriteString(left + strings.Repeat(" ", gap) + right)
	b.WriteString("\n")
	b.WriteString(components.NewCountdown(v.SecondsRemaining, v.SlideSeconds, v.Playing, cw).View())
	b.WriteString("\n\n")

	b.WriteString(components.Card(s.renderSlide(v.Slide, cw-6), cw))
	b.WriteString("\n")

	if s.notice != "" {
		style := theme.Hint
		if v.Answer != nil && v.Answer.IsCorrect != nil {
			if *v.Answer.IsCorrect {
				style = theme.Correct
			} else {
				style = theme.Incorrect
			}
		}
		b.WriteString(style.Render(s.notice))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(s.renderDots())
	if v.IsLast() {
		b.WriteString("\n\n")
		b.WriteString(components.NewButton("Finish lesson", v.Finishable, nil).View())
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, b.String())
}

func (s *SlidesScreen) renderSlide(slide lesson.Slide, w int) string {
	c := slide.Content
	var b strings.Builder
	if c.Title != "" {
		b.WriteString(theme.Title.Render(c.Title))
		b.WriteString("\n\n")
	}
	if c.Body != "" {
		b.WriteString(theme.Body.Width(w).Render(c.Body))
		b.WriteString("\n")
	}
	if !slide.Type.AcceptsAnswer() {
		return strings.TrimRight(b.String(), "\n")
	}

	if c.Question != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Width(w).Render(c.Question))
		b.WriteString("\n\n")
	}
	if len(c.Choices) > 0 {
		b.WriteString(s.choices.View())
	} else {
		b.WriteString("Answer: " + s.input.View())
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderDots draws one marker per slide: filled for the current slide.
func (s *SlidesScreen) renderDots() string {
	dots := make([]string, s.view.Total)
	for i := range dots {
		switch {
		case i == s.view.Index:
			dots[i] = theme.Selected.Render("●")
		case i < s.view.Index:
			dots[i] = theme.Completed.Render("○")
		default:
			dots[i] = theme.Locked.Render("○")
		}
	}
	return strings.Join(dots, " ")
}
