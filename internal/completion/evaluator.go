// Package completion decides when a lesson counts as complete and keeps
// the learner's unlock pointer moving forward.
package completion

import (
	"context"
	"time"

	"github.com/abhisek/lessonflow/internal/learner"
	"github.com/abhisek/lessonflow/internal/progress"
)

// Update is one progress report for a lesson.
type Update struct {
	Completed bool
	Score     int
	// Temporary marks an in-progress checkpoint. Ignored when Completed.
	Temporary bool
	// LastSlide, when non-nil, moves the resume pointer.
	LastSlide *int
}

// Evaluator applies progress updates through the learner's store.
type Evaluator struct {
	sess *learner.Session
}

func NewEvaluator(sess *learner.Session) *Evaluator {
	return &Evaluator{sess: sess}
}

// UpdateProgress merges u into the lesson's record and returns the record
// as it should now look. The returned value reflects the update even if
// persisting it failed; failures are logged, never returned.
//
// A lesson that is already complete stays complete: a later non-completing
// update only refreshes its activity time and resume pointer.
func (e *Evaluator) UpdateProgress(ctx context.Context, lessonID progress.LessonID, u Update) *progress.Record {
	log := e.sess.Log.With("lesson_id", int(lessonID))

	doc, err := e.sess.Store.Load(ctx, e.sess.Identity.ID)
	if err != nil {
		log.Error("load progress failed", "error", err)
		doc = progress.New()
	}

	patch := buildPatch(doc.Record(lessonID), lessonID, u, e.sess.Now())
	progress.Apply(doc, patch)

	if err := e.sess.Store.Merge(ctx, e.sess.Identity.ID, patch); err != nil {
		log.Error("persist progress failed", "completed", u.Completed, "error", err)
	} else if u.Completed {
		log.Info("lesson completed", "score", u.Score, "current_lesson", int(doc.CurrentLesson))
	}
	return doc.Record(lessonID)
}

func buildPatch(prior *progress.Record, lessonID progress.LessonID, u Update, now time.Time) progress.Patch {
	rp := &progress.RecordPatch{
		LastSlide:    u.LastSlide,
		LastActivity: &now,
	}
	patch := progress.Patch{LessonID: lessonID, Record: rp}

	if prior.Completed && !u.Completed {
		return patch
	}

	rp.Completed = &u.Completed
	rp.Score = &u.Score
	rp.Temporary = progress.Ptr(u.Temporary && !u.Completed)
	if u.Completed {
		rp.CompletedAt = &now
		patch.MarkCompleted = true
		patch.CurrentLesson = progress.Ptr(lessonID + 1)
	}
	return patch
}

// RemoveTemporaryProgress deletes every record still flagged temporary.
// It runs for accounts only; guest progress is discarded wholesale on
// logout instead.
func (e *Evaluator) RemoveTemporaryProgress(ctx context.Context) {
	if e.sess.Identity.IsGuest() {
		return
	}

	doc, err := e.sess.Store.Load(ctx, e.sess.Identity.ID)
	if err != nil {
		e.sess.Log.Error("load progress for sweep failed", "error", err)
		return
	}
	ids := doc.TemporaryLessons()
	if len(ids) == 0 {
		return
	}

	if err := e.sess.Store.Merge(ctx, e.sess.Identity.ID, progress.Patch{RemoveTemporary: ids}); err != nil {
		e.sess.Log.Error("remove temporary progress failed", "error", err)
		return
	}
	e.sess.Log.Info("temporary progress removed", "lessons", len(ids))
}
