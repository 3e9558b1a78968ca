// Package slides is the lesson player screen. It renders one slide at a
// time and forwards learner input to a session controller.
package slides

import (
	"context"
	"errors"
	"strconv"
	"sync"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lessonflow/internal/lesson"
	"github.com/abhisek/lessonflow/internal/player"
	"github.com/abhisek/lessonflow/internal/progress"
	"github.com/abhisek/lessonflow/internal/router"
	"github.com/abhisek/lessonflow/internal/screen"
	"github.com/abhisek/lessonflow/internal/screens/summary"
	sess "github.com/abhisek/lessonflow/internal/session"
	"github.com/abhisek/lessonflow/internal/ui/components"
	"github.com/abhisek/lessonflow/internal/ui/layout"
)

const eventBuffer = 64

// SlidesScreen implements screen.Screen for one lesson.
type SlidesScreen struct {
	env        *player.Env
	lessonID   progress.LessonID
	slideParam string
	events     chan sess.Event

	mu     sync.Mutex
	ctrl   *sess.Controller
	closed bool

	view    sess.View
	ready   bool
	errMsg  string
	notice  string
	slideID progress.SlideID
	choices components.Choices
	input   components.AnswerInput
}

var _ screen.Screen = (*SlidesScreen)(nil)
var _ screen.KeyHintProvider = (*SlidesScreen)(nil)
var _ screen.Closer = (*SlidesScreen)(nil)

// New creates the player for a lesson. slideParam is the optional starting
// slide index.
func New(env *player.Env, id progress.LessonID, slideParam string) *SlidesScreen {
	return &SlidesScreen{
		env:        env,
		lessonID:   id,
		slideParam: slideParam,
		events:     make(chan sess.Event, eventBuffer),
	}
}

func (s *SlidesScreen) Init() tea.Cmd {
	return s.start()
}

func (s *SlidesScreen) Title() string {
	if s.view.LessonTitle != "" {
		return s.view.LessonTitle
	}
	return "Lesson"
}

func (s *SlidesScreen) KeyHints() []layout.KeyHint {
	if !s.ready {
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	}
	var hints []layout.KeyHint
	if s.typing() {
		hints = []layout.KeyHint{
			{Key: "Enter", Description: "Check"},
			{Key: "PgUp/PgDn", Description: "Slides"},
			{Key: "Tab", Description: "Pause"},
		}
	} else {
		hints = []layout.KeyHint{
			{Key: "←→", Description: "Slides"},
			{Key: "Space", Description: "Pause"},
		}
		if len(s.view.Slide.Content.Choices) > 0 {
			hints = append(hints, layout.KeyHint{Key: "1-9", Description: "Answer"})
		}
	}
	if s.view.Finishable {
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Finish"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Leave"})
}

// Close stops the countdown and ends the event stream. Queued progress
// writes still complete.
func (s *SlidesScreen) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	ctrl := s.ctrl
	s.mu.Unlock()

	if ctrl != nil {
		ctrl.Leave()
	}

	s.mu.Lock()
	close(s.events)
	s.mu.Unlock()
}

func (s *SlidesScreen) controller() *sess.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl
}

// start builds and starts the controller off the UI goroutine since both
// read the learner's progress.
func (s *SlidesScreen) start() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		doc, err := s.env.Progress(ctx)
		if err != nil {
			// Without progress the lock check is skipped and the lesson still plays.
			s.env.Log.Warn("load progress for lesson", "lesson_id", int(s.lessonID), "error", err)
		}

		ctrl, err := s.env.Controller(doc, s.lessonID, s.slideParam, s.publish)
		if err != nil {
			return readyMsg{Err: err}
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return readyMsg{Err: errors.New("lesson closed")}
		}
		s.ctrl = ctrl
		s.mu.Unlock()

		ctrl.Start(ctx)
		return readyMsg{}
	}
}

// publish is the controller listener. It never blocks the timer goroutine;
// a dropped event only delays a redraw since views are read fresh. Events
// after Close are dropped.
func (s *SlidesScreen) publish(ev sess.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.events <- ev:
	default:
	}
}

func (s *SlidesScreen) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-s.events
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(ev)
	}
}

func (s *SlidesScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case readyMsg:
		return s.handleReady(msg)

	case eventMsg:
		return s.handleEvent(sess.Event(msg))

	case eventsClosedMsg:
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.typing() {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *SlidesScreen) handleReady(msg readyMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.errMsg = msg.Err.Error()
		return s, nil
	}
	ctrl := s.controller()
	if ctrl == nil {
		return s, nil
	}
	s.ready = true
	cmd := s.refresh(ctrl.View())
	return s, tea.Batch(cmd, s.waitForEvent())
}

func (s *SlidesScreen) handleEvent(ev sess.Event) (screen.Screen, tea.Cmd) {
	ctrl := s.controller()
	if ctrl == nil || ev.Kind == sess.EventLeft {
		return s, nil
	}
	cmd := s.refresh(ctrl.View())
	return s, tea.Batch(cmd, s.waitForEvent())
}

// refresh stores v and resets the answer widgets when the slide changed.
func (s *SlidesScreen) refresh(v sess.View) tea.Cmd {
	s.view = v
	if v.Slide.ID == s.slideID {
		return nil
	}
	s.slideID = v.Slide.ID
	s.notice = ""
	s.choices = components.NewChoices(v.Slide.Content.Choices)
	if v.Answer != nil {
		s.restoreAnswer(*v.Answer)
	}
	if !s.typing() {
		return nil
	}
	s.input = components.NewAnswerInput("Type your answer...", allowedRunes(v.Slide.Content.AnswerType), 24)
	return s.input.Init()
}

func (s *SlidesScreen) restoreAnswer(a lesson.AnswerPayload) {
	for i, c := range s.choices.Options {
		if c == a.Value {
			s.choices.Selected = i
			s.choices.Chosen = i
			s.choices.Correct = a.IsCorrect
		}
	}
}

// typing reports whether the current slide takes free-form input.
func (s *SlidesScreen) typing() bool {
	slide := s.view.Slide
	return s.ready && slide.Type.AcceptsAnswer() && len(slide.Content.Choices) == 0 &&
		s.view.Phase == sess.PhaseViewing
}

func (s *SlidesScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	ctrl := s.controller()
	if !s.ready || ctrl == nil || s.view.Phase == sess.PhaseCompleted {
		return s, nil
	}

	key := msg.String()
	switch key {
	case "pgdown":
		ctrl.Next()
		return s, nil
	case "pgup":
		ctrl.Prev()
		return s, nil
	case "enter":
		if s.view.Finishable && (!s.typing() || s.input.Value() == "") {
			return s.finish(ctrl)
		}
	}

	if s.typing() {
		switch key {
		case "tab":
			ctrl.Toggle()
			return s, nil
		case "enter":
			s.submit(ctrl, s.input.Value())
			return s, nil
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}

	switch key {
	case "right", "l":
		ctrl.Next()
		return s, nil
	case "left", "h":
		ctrl.Prev()
		return s, nil
	case "space":
		ctrl.Toggle()
		return s, nil
	}

	if s.view.Slide.Type.AcceptsAnswer() && len(s.choices.Options) > 0 {
		var (
			idx    int
			picked bool
		)
		s.choices, idx, picked = s.choices.Update(msg)
		if picked {
			s.submit(ctrl, strconv.Itoa(idx+1))
		}
	}
	return s, nil
}

func (s *SlidesScreen) submit(ctrl *sess.Controller, raw string) {
	if raw == "" {
		return
	}
	payload := lesson.CheckAnswer(s.view.Slide, raw)
	if err := ctrl.Answer(s.view.Slide.ID, payload); err != nil {
		s.notice = err.Error()
		return
	}
	s.choices.Correct = payload.IsCorrect
	switch {
	case payload.IsCorrect == nil:
		s.notice = "Thanks for answering!"
	case *payload.IsCorrect:
		s.notice = "Correct!"
		s.input.Grade(true)
	default:
		s.notice = "Not quite. Try again."
		s.input.Grade(false)
	}
}

func (s *SlidesScreen) finish(ctrl *sess.Controller) (screen.Screen, tea.Cmd) {
	nav, err := ctrl.Finish()
	if err != nil {
		s.notice = err.Error()
		return s, nil
	}

	env := s.env
	result := summary.Result{
		LessonTitle: s.view.LessonTitle,
		Slides:      s.view.Total,
		Score:       progress.MaxScore,
	}
	if nav.NextLesson != nil {
		next := *nav.NextLesson
		if l, err := env.Catalog.Get(next); err == nil {
			result.NextTitle = l.Title
		}
		result.Next = func() screen.Screen { return New(env, next, "") }
	}
	return s, func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: summary.New(result)}
	}
}

func allowedRunes(t lesson.AnswerType) string {
	switch t {
	case lesson.AnswerInteger:
		return components.IntegerRunes
	case lesson.AnswerDecimal:
		return components.DecimalRunes
	case lesson.AnswerFraction:
		return components.FractionRunes
	}
	return ""
}
