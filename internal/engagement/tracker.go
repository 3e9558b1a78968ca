// Package engagement records which slides a learner has seen and where
// they should resume.
package engagement

import (
	"context"

	"github.com/abhisek/lessonflow/internal/learner"
	"github.com/abhisek/lessonflow/internal/progress"
)

// Tracker writes engagement and resume pointers through the learner's
// store. Store failures are logged and swallowed.
type Tracker struct {
	sess *learner.Session
}

func NewTracker(sess *learner.Session) *Tracker {
	return &Tracker{sess: sess}
}

// TrackEngagement adds slideID to the lesson's engaged pages. A slide that
// is already recorded causes no write. It reports whether a write was
// issued.
func (t *Tracker) TrackEngagement(ctx context.Context, lessonID progress.LessonID, slideID progress.SlideID) bool {
	log := t.sess.Log.With("lesson_id", int(lessonID), "slide_id", string(slideID))

	doc, err := t.sess.Store.Load(ctx, t.sess.Identity.ID)
	if err != nil {
		log.Error("load progress for engagement failed", "error", err)
		return false
	}
	if doc.Record(lessonID).HasEngaged(slideID) {
		return false
	}

	now := t.sess.Now()
	err = t.sess.Store.Merge(ctx, t.sess.Identity.ID, progress.Patch{
		LessonID: lessonID,
		Record: &progress.RecordPatch{
			AddPages:     []progress.SlideID{slideID},
			LastActivity: &now,
		},
	})
	if err != nil {
		log.Error("track engagement failed", "error", err)
		return false
	}
	log.Debug("slide engaged")
	return true
}

// SetResumeSlide records the slide index to resume the lesson from.
func (t *Tracker) SetResumeSlide(ctx context.Context, lessonID progress.LessonID, index int) {
	if index < 0 {
		return
	}
	err := t.sess.Store.Merge(ctx, t.sess.Identity.ID, progress.Patch{
		LessonID: lessonID,
		Record:   &progress.RecordPatch{LastSlide: &index},
	})
	if err != nil {
		t.sess.Log.Error("set resume slide failed", "lesson_id", int(lessonID), "index", index, "error", err)
	}
}

// ResumeSlide returns the persisted resume index, or 0 when there is none
// or the store cannot be read.
func (t *Tracker) ResumeSlide(ctx context.Context, lessonID progress.LessonID) int {
	doc, err := t.sess.Store.Load(ctx, t.sess.Identity.ID)
	if err != nil {
		t.sess.Log.Error("load resume slide failed", "lesson_id", int(lessonID), "error", err)
		return 0
	}
	return doc.Record(lessonID).LastSlide
}
