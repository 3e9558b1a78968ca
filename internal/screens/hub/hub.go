// Package hub lists the catalog and launches lessons.
package hub

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lessonflow/internal/lesson"
	"github.com/abhisek/lessonflow/internal/player"
	"github.com/abhisek/lessonflow/internal/progress"
	"github.com/abhisek/lessonflow/internal/router"
	"github.com/abhisek/lessonflow/internal/screen"
	"github.com/abhisek/lessonflow/internal/screens/slides"
	"github.com/abhisek/lessonflow/internal/ui/components"
	"github.com/abhisek/lessonflow/internal/ui/layout"
	"github.com/abhisek/lessonflow/internal/ui/theme"
)

// Lesson status markers.
const (
	MarkerCompleted = "✓"
	MarkerAvailable = "○"
	MarkerLocked    = "·"
)

type progressMsg struct {
	doc *progress.LearnerProgress
	err error
}

// HubScreen is the lesson list.
type HubScreen struct {
	env    *player.Env
	doc    *progress.LearnerProgress
	menu   components.Menu
	errMsg string
}

var _ screen.Screen = (*HubScreen)(nil)
var _ screen.KeyHintProvider = (*HubScreen)(nil)
var _ screen.Resumer = (*HubScreen)(nil)

// New creates the hub. Every lesson shows as locked except the first until
// progress has loaded.
func New(env *player.Env) *HubScreen {
	h := &HubScreen{env: env, doc: progress.New()}
	h.rebuild()
	return h
}

func (h *HubScreen) Init() tea.Cmd {
	return h.load()
}

// Resume reloads progress when a lesson screen is popped.
func (h *HubScreen) Resume() tea.Cmd {
	return h.load()
}

func (h *HubScreen) Title() string {
	return "Lessons"
}

func (h *HubScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Open"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (h *HubScreen) load() tea.Cmd {
	return func() tea.Msg {
		doc, err := h.env.Progress(context.Background())
		return progressMsg{doc: doc, err: err}
	}
}

func (h *HubScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		if msg.err != nil {
			h.errMsg = msg.err.Error()
			return h, nil
		}
		h.errMsg = ""
		h.doc = msg.doc
		h.rebuild()
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HubScreen) rebuild() {
	lessons := h.env.Catalog.Lessons()
	items := make([]components.MenuItem, 0, len(lessons))
	for _, l := range lessons {
		items = append(items, h.item(l))
	}
	h.menu = components.NewMenu(items)
	// Start on the learner's current lesson.
	for i, l := range lessons {
		if l.ID == h.doc.CurrentLesson {
			h.menu.Selected = i
		}
	}
}

func (h *HubScreen) item(l *lesson.Lesson) components.MenuItem {
	env, id := h.env, l.ID
	item := components.MenuItem{
		Label:  l.Title,
		Marker: Marker(h.doc, id),
		Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: slides.New(env, id, "")}
			}
		},
	}

	switch player.StatusOf(h.doc, id) {
	case player.StatusCompleted:
		item.Detail = fmt.Sprintf("score %d", h.doc.Record(id).Score)
	case player.StatusLocked:
		item.Disabled = true
		item.Detail = "locked"
	case player.StatusInProgress:
		item.Detail = fmt.Sprintf("resume at slide %d", h.doc.Record(id).LastSlide+1)
	default:
		item.Detail = fmt.Sprintf("%d slides", len(l.Slides))
	}
	return item
}

// Marker returns the status glyph for a lesson.
func Marker(doc *progress.LearnerProgress, id progress.LessonID) string {
	switch player.StatusOf(doc, id) {
	case player.StatusCompleted:
		return MarkerCompleted
	case player.StatusLocked:
		return MarkerLocked
	default:
		return MarkerAvailable
	}
}

func (h *HubScreen) View(width, height int) string {
	done := len(h.doc.CompletedLessons)
	total := h.env.Catalog.Len()

	var b strings.Builder
	b.WriteString(theme.Title.Render("Your lessons"))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("%d of %d complete", done, total)))
	b.WriteString("\n\n")
	b.WriteString(h.menu.View())
	if h.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render("Progress unavailable: " + h.errMsg))
	}

	cw := components.ContentWidth(width)
	return components.Center(components.Card(b.String(), cw), width, height)
}
