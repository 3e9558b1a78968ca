// Package lesson defines lessons, their slides, and the catalog that
// orders them.
package lesson

import (
	"time"

	"github.com/abhisek/lessonflow/internal/progress"
)

// SlideType determines how a slide completes.
type SlideType string

const (
	TypePresentation SlideType = "presentation"
	TypeInteractive  SlideType = "interactive"
	TypePoll         SlideType = "poll"
	TypeVideo        SlideType = "video"
	TypeSummary      SlideType = "summary"
)

// RequiresCorrectness reports whether the slide only completes on a
// correct answer. Every other type completes when it is shown.
func (t SlideType) RequiresCorrectness() bool {
	return t == TypeInteractive
}

// AcceptsAnswer reports whether the slide collects learner input.
func (t SlideType) AcceptsAnswer() bool {
	return t == TypeInteractive || t == TypePoll
}

// AnswerType controls how interactive answers are normalized before
// comparison.
type AnswerType string

const (
	AnswerText     AnswerType = "text"
	AnswerInteger  AnswerType = "integer"
	AnswerDecimal  AnswerType = "decimal"
	AnswerFraction AnswerType = "fraction"
)

// Content is the renderable body of a slide.
type Content struct {
	Title string `yaml:"title" json:"title,omitempty"`
	Body  string `yaml:"body" json:"body,omitempty"`
	// Duration is the countdown in seconds. Nil uses the player default.
	Duration   *int       `yaml:"duration" json:"duration,omitempty"`
	Question   string     `yaml:"question" json:"question,omitempty"`
	Choices    []string   `yaml:"choices" json:"choices,omitempty"`
	Answer     string     `yaml:"answer" json:"answer,omitempty"`
	AnswerType AnswerType `yaml:"answerType" json:"answerType,omitempty"`
}

// Slide is one step of a lesson.
type Slide struct {
	ID      progress.SlideID `yaml:"id" json:"id"`
	Type    SlideType        `yaml:"type" json:"type"`
	Content Content          `yaml:"content" json:"content"`
}

// Lesson is an ordered, read-only sequence of slides.
type Lesson struct {
	ID     progress.LessonID `yaml:"id" json:"id"`
	Title  string            `yaml:"title" json:"title"`
	Slides []Slide           `yaml:"slides" json:"slides"`
}

// LastIndex returns the index of the final slide.
func (l *Lesson) LastIndex() int {
	return len(l.Slides) - 1
}

// Duration returns the countdown for slide i, or def when the slide does
// not set one.
func (l *Lesson) Duration(i int, def time.Duration) time.Duration {
	if i < 0 || i >= len(l.Slides) {
		return def
	}
	d := l.Slides[i].Content.Duration
	if d == nil || *d <= 0 {
		return def
	}
	return time.Duration(*d) * time.Second
}

// SlideIndex returns the index of the slide with the given id, or -1.
func (l *Lesson) SlideIndex(id progress.SlideID) int {
	for i, s := range l.Slides {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// InRange reports whether i is a valid slide index.
func (l *Lesson) InRange(i int) bool {
	return i >= 0 && i < len(l.Slides)
}
