// Package player bundles the engine pieces a front end needs to run
// lessons for one learner.
package player

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/lessonflow/internal/completion"
	"github.com/abhisek/lessonflow/internal/engagement"
	"github.com/abhisek/lessonflow/internal/learner"
	"github.com/abhisek/lessonflow/internal/lesson"
	"github.com/abhisek/lessonflow/internal/logger"
	"github.com/abhisek/lessonflow/internal/progress"
	"github.com/abhisek/lessonflow/internal/session"
)

// Env is constructed once per learner session and shared by every screen.
type Env struct {
	Catalog   *lesson.Catalog
	Session   *learner.Session
	Tracker   *engagement.Tracker
	Evaluator *completion.Evaluator

	SlideDuration time.Duration
	// Scheduler is nil for the runtime timer.
	Scheduler session.Scheduler
	Log       *logger.Logger
}

// NewEnv wires the tracker and evaluator to sess.
func NewEnv(cat *lesson.Catalog, sess *learner.Session, slideDuration time.Duration) *Env {
	return &Env{
		Catalog:       cat,
		Session:       sess,
		Tracker:       engagement.NewTracker(sess),
		Evaluator:     completion.NewEvaluator(sess),
		SlideDuration: slideDuration,
		Log:           sess.Log,
	}
}

// Progress flushes queued writes and loads the learner's document.
func (e *Env) Progress(ctx context.Context) (*progress.LearnerProgress, error) {
	if err := e.Session.Flush(ctx); err != nil {
		return nil, err
	}
	return e.Session.Store.Load(ctx, e.Session.Identity.ID)
}

// Controller builds a session controller for a lesson. It refuses lessons
// the learner has not unlocked yet.
func (e *Env) Controller(doc *progress.LearnerProgress, id progress.LessonID, slideParam string, onEvent func(session.Event)) (*session.Controller, error) {
	l, err := e.Catalog.Get(id)
	if err != nil {
		return nil, err
	}
	if doc != nil && !doc.IsUnlocked(id) {
		return nil, fmt.Errorf("lesson %d is locked", id)
	}
	return session.New(session.Config{
		Lesson:          l,
		Catalog:         e.Catalog,
		Tracker:         e.Tracker,
		Evaluator:       e.Evaluator,
		Dispatcher:      e.Session,
		Scheduler:       e.Scheduler,
		DefaultDuration: e.SlideDuration,
		SlideParam:      slideParam,
		OnEvent:         onEvent,
		Log:             e.Log,
	})
}

// Logout ends the learner session: guests lose device progress, accounts
// have temporary records swept.
func (e *Env) Logout(ctx context.Context) error {
	return e.Session.Logout(ctx, e.Evaluator)
}
