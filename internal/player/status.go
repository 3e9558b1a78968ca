package player

import "github.com/abhisek/lessonflow/internal/progress"

// Status is a lesson's state for one learner.
type Status int

const (
	StatusLocked Status = iota
	StatusAvailable
	StatusInProgress
	StatusCompleted
)

func (s Status) String() string {
	switch s {
	case StatusAvailable:
		return "available"
	case StatusInProgress:
		return "in progress"
	case StatusCompleted:
		return "completed"
	default:
		return "locked"
	}
}

// StatusOf derives the lesson's status from the progress document.
func StatusOf(doc *progress.LearnerProgress, id progress.LessonID) Status {
	switch {
	case doc.IsCompleted(id):
		return StatusCompleted
	case !doc.IsUnlocked(id):
		return StatusLocked
	case doc.HasRecord(id):
		return StatusInProgress
	default:
		return StatusAvailable
	}
}
