package session

import (
	"github.com/abhisek/lessonflow/internal/lesson"
	"github.com/abhisek/lessonflow/internal/progress"
)

// Phase is the controller's top-level state.
type Phase int

const (
	PhaseViewing Phase = iota
	PhaseCompleted
)

func (p Phase) String() string {
	if p == PhaseCompleted {
		return "completed"
	}
	return "viewing"
}

// EventKind says what changed.
type EventKind int

const (
	EventEntered EventKind = iota
	EventTick
	EventAnswered
	EventPlayback
	EventCompleted
	EventLeft
)

func (k EventKind) String() string {
	switch k {
	case EventEntered:
		return "entered"
	case EventTick:
		return "tick"
	case EventAnswered:
		return "answered"
	case EventPlayback:
		return "playback"
	case EventCompleted:
		return "completed"
	case EventLeft:
		return "left"
	default:
		return "unknown"
	}
}

// Event is delivered to the listener after every transition.
type Event struct {
	Kind EventKind
	// Auto is set on entries caused by the countdown.
	Auto bool
	View View
}

// View is an immutable snapshot of the controller for rendering.
type View struct {
	LessonID    progress.LessonID
	LessonTitle string
	Phase       Phase

	Index int
	Total int
	Slide lesson.Slide

	SecondsRemaining int
	SlideSeconds     int
	Playing          bool

	// SlideDone reports whether the current slide counts as complete.
	SlideDone bool
	// Answer is the last answer recorded for the current slide.
	Answer *lesson.AnswerPayload

	CompletedSlides int
	Finishable      bool
}

// IsLast reports whether the view is on the final slide.
func (v View) IsLast() bool {
	return v.Index == v.Total-1
}

// Navigation says where to go after a lesson completes.
type Navigation struct {
	// NextLesson is nil when the learner should return to the hub.
	NextLesson *progress.LessonID
}
