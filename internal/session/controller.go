// Package session drives one learner through one lesson: slide
// navigation, the auto-advance countdown, answers, and completion.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/abhisek/lessonflow/internal/completion"
	"github.com/abhisek/lessonflow/internal/learner"
	"github.com/abhisek/lessonflow/internal/lesson"
	"github.com/abhisek/lessonflow/internal/logger"
	"github.com/abhisek/lessonflow/internal/progress"
)

var (
	ErrNotFinishable   = errors.New("lesson cannot be finished yet")
	ErrUnknownSlide    = errors.New("unknown slide")
	ErrCompleted       = errors.New("lesson already completed")
	ErrIndexOutOfRange = errors.New("slide index out of range")

	errNilLesson   = errors.New("lesson is required")
	errEmptyLesson = errors.New("lesson has no slides")
	errMissingDeps = errors.New("tracker, evaluator and dispatcher are required")
)

// DefaultSlideDuration is used for slides without their own duration.
const DefaultSlideDuration = 30 * time.Second

// Tracker records engagement and the resume pointer.
type Tracker interface {
	TrackEngagement(ctx context.Context, lessonID progress.LessonID, slideID progress.SlideID) bool
	SetResumeSlide(ctx context.Context, lessonID progress.LessonID, index int)
	ResumeSlide(ctx context.Context, lessonID progress.LessonID) int
}

// Evaluator records lesson progress.
type Evaluator interface {
	UpdateProgress(ctx context.Context, lessonID progress.LessonID, u completion.Update) *progress.Record
}

// Dispatcher runs persistence jobs in the background.
type Dispatcher interface {
	Go(job learner.Job)
}

// Config wires a Controller.
type Config struct {
	Lesson *lesson.Lesson
	// Catalog, when set, is used to pick the lesson after this one.
	Catalog *lesson.Catalog

	Tracker    Tracker
	Evaluator  Evaluator
	Dispatcher Dispatcher

	// Scheduler defaults to SystemScheduler.
	Scheduler Scheduler
	// TickInterval is the length of one countdown second. Defaults to
	// time.Second.
	TickInterval time.Duration
	// DefaultDuration defaults to DefaultSlideDuration.
	DefaultDuration time.Duration

	// SlideParam is the raw "slide" navigation parameter. Empty, malformed
	// or out of range values are ignored.
	SlideParam string
	// StartPaused disables autoplay on Start.
	StartPaused bool

	// OnEvent is called after every transition, outside the controller
	// lock. It may be called from the timer goroutine.
	OnEvent func(Event)

	Log *logger.Logger
}

// Controller is the per-lesson state machine. All methods are safe for
// concurrent use; the countdown runs on the Scheduler.
type Controller struct {
	cfg Config
	les *lesson.Lesson
	log *logger.Logger

	mu        sync.Mutex
	started   bool
	left      bool
	phase     Phase
	index     int
	remaining int
	playing   bool
	answers   map[progress.SlideID]lesson.AnswerPayload
	done      map[progress.SlideID]bool

	// timer is the single outstanding tick. gen invalidates callbacks that
	// were already running when their timer was stopped.
	timer Timer
	gen   uint64
}

// New validates cfg and returns an unstarted controller.
func New(cfg Config) (*Controller, error) {
	if cfg.Lesson == nil {
		return nil, errNilLesson
	}
	if len(cfg.Lesson.Slides) == 0 {
		return nil, errEmptyLesson
	}
	if cfg.Tracker == nil || cfg.Evaluator == nil || cfg.Dispatcher == nil {
		return nil, errMissingDeps
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = SystemScheduler()
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.DefaultDuration <= 0 {
		cfg.DefaultDuration = DefaultSlideDuration
	}
	if cfg.Log == nil {
		cfg.Log = logger.Nop()
	}

	return &Controller{
		cfg:     cfg,
		les:     cfg.Lesson,
		log:     cfg.Log.With("lesson_id", int(cfg.Lesson.ID)),
		answers: make(map[progress.SlideID]lesson.AnswerPayload),
		done:    make(map[progress.SlideID]bool),
	}, nil
}

// ParseSlideParam returns the slide index named by raw if it is a
// non-negative integer below total.
func ParseSlideParam(raw string, total int) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	i, err := strconv.Atoi(raw)
	if err != nil || i < 0 || i >= total {
		return 0, false
	}
	return i, true
}

// Start enters the first slide: the slide parameter if valid, else the
// persisted resume pointer if in range, else 0. Calling Start again has no
// effect.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	started := c.started
	c.mu.Unlock()
	if started {
		return
	}

	i, ok := ParseSlideParam(c.cfg.SlideParam, len(c.les.Slides))
	if !ok {
		if c.cfg.SlideParam != "" {
			c.log.Warn("ignoring invalid slide parameter", "slide", c.cfg.SlideParam)
		}
		if r := c.cfg.Tracker.ResumeSlide(ctx, c.les.ID); c.les.InRange(r) {
			i = r
		}
	}

	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.playing = !c.cfg.StartPaused
	job := c.enterLocked(i)
	ev := c.eventLocked(EventEntered, false)
	c.mu.Unlock()

	c.log.Debug("lesson started", "index", i)
	c.cfg.Dispatcher.Go(job)
	c.emit(ev)
}

// Next moves to the following slide and resumes playback. It reports
// false, and does nothing, on the last slide.
func (c *Controller) Next() bool {
	return c.step(+1)
}

// Prev moves to the preceding slide and resumes playback. It reports
// false, and does nothing, on the first slide.
func (c *Controller) Prev() bool {
	return c.step(-1)
}

func (c *Controller) step(delta int) bool {
	c.mu.Lock()
	if !c.activeLocked() {
		c.mu.Unlock()
		return false
	}
	target := c.index + delta
	if !c.les.InRange(target) {
		c.mu.Unlock()
		return false
	}
	c.playing = true
	job := c.enterLocked(target)
	ev := c.eventLocked(EventEntered, false)
	c.mu.Unlock()

	c.cfg.Dispatcher.Go(job)
	c.emit(ev)
	return true
}

// GoTo jumps to slide i and resumes playback.
func (c *Controller) GoTo(i int) error {
	c.mu.Lock()
	if c.phase == PhaseCompleted {
		c.mu.Unlock()
		return ErrCompleted
	}
	if !c.activeLocked() {
		c.mu.Unlock()
		return nil
	}
	if !c.les.InRange(i) {
		c.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	c.playing = true
	job := c.enterLocked(i)
	ev := c.eventLocked(EventEntered, false)
	c.mu.Unlock()

	c.cfg.Dispatcher.Go(job)
	c.emit(ev)
	return nil
}

// Play resumes the countdown. A slide whose countdown already ran out
// starts over.
func (c *Controller) Play() {
	c.setPlaying(true)
}

// Pause stops the countdown without losing the remaining time.
func (c *Controller) Pause() {
	c.setPlaying(false)
}

// Toggle flips between Play and Pause.
func (c *Controller) Toggle() {
	c.mu.Lock()
	playing := c.playing
	c.mu.Unlock()
	c.setPlaying(!playing)
}

func (c *Controller) setPlaying(on bool) {
	c.mu.Lock()
	if !c.activeLocked() || c.playing == on {
		c.mu.Unlock()
		return
	}
	c.playing = on
	if on {
		if c.remaining <= 0 {
			c.remaining = c.slideSeconds(c.index)
		}
		c.armLocked()
	} else {
		c.stopTimerLocked()
	}
	ev := c.eventLocked(EventPlayback, false)
	c.mu.Unlock()

	c.emit(ev)
}

// Answer records an exercise result for a slide. Interactive slides
// complete unless the payload is explicitly incorrect; other slides
// already completed when they were shown.
func (c *Controller) Answer(slideID progress.SlideID, payload lesson.AnswerPayload) error {
	c.mu.Lock()
	if c.phase == PhaseCompleted {
		c.mu.Unlock()
		return ErrCompleted
	}
	i := c.les.SlideIndex(slideID)
	if i < 0 {
		c.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownSlide, slideID)
	}
	c.answers[slideID] = payload
	slide := c.les.Slides[i]
	if slide.Type.RequiresCorrectness() && (payload.IsCorrect == nil || *payload.IsCorrect) {
		c.done[slideID] = true
	}
	complete := c.done[slideID]
	ev := c.eventLocked(EventAnswered, false)
	c.mu.Unlock()

	c.log.Debug("answer recorded", "slide_id", string(slideID), "complete", complete)
	c.emit(ev)
	return nil
}

// Finishable reports whether Finish would succeed.
func (c *Controller) Finishable() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.finishableLocked()
}

func (c *Controller) finishableLocked() bool {
	if !c.started || c.phase != PhaseViewing || c.index != c.les.LastIndex() {
		return false
	}
	for _, s := range c.les.Slides {
		if !c.done[s.ID] {
			return false
		}
	}
	return true
}

// Finish completes the lesson. It is allowed only on the last slide once
// every slide is complete. The completion write is queued, not awaited.
func (c *Controller) Finish() (Navigation, error) {
	c.mu.Lock()
	if c.phase == PhaseCompleted {
		c.mu.Unlock()
		return Navigation{}, ErrCompleted
	}
	if !c.finishableLocked() {
		c.mu.Unlock()
		return Navigation{}, ErrNotFinishable
	}
	c.stopTimerLocked()
	c.playing = false
	c.phase = PhaseCompleted
	ev := c.eventLocked(EventCompleted, false)
	c.mu.Unlock()

	lessonID := c.les.ID
	c.cfg.Dispatcher.Go(func(ctx context.Context) {
		c.cfg.Evaluator.UpdateProgress(ctx, lessonID, completion.Update{Completed: true, Score: progress.MaxScore})
	})

	var nav Navigation
	if c.cfg.Catalog != nil {
		if next, ok := c.cfg.Catalog.Next(lessonID); ok {
			id := next.ID
			nav.NextLesson = &id
		}
	}
	c.log.Info("lesson finished", "next", nav.NextLesson != nil)
	c.emit(ev)
	return nav, nil
}

// Leave cancels the pending countdown. Queued persistence still runs.
func (c *Controller) Leave() {
	c.mu.Lock()
	if c.left {
		c.mu.Unlock()
		return
	}
	c.left = true
	c.stopTimerLocked()
	ev := c.eventLocked(EventLeft, false)
	c.mu.Unlock()

	c.emit(ev)
}

// View returns a snapshot of the current state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *Controller) activeLocked() bool {
	return c.started && !c.left && c.phase == PhaseViewing
}

// enterLocked moves to slide i, resets its countdown, and returns the
// persistence job for the entry.
func (c *Controller) enterLocked(i int) learner.Job {
	c.index = i
	c.remaining = c.slideSeconds(i)
	slide := c.les.Slides[i]
	if !slide.Type.RequiresCorrectness() {
		c.done[slide.ID] = true
	}
	c.armLocked()

	lessonID, slideID, index := c.les.ID, slide.ID, i
	return func(ctx context.Context) {
		c.cfg.Tracker.TrackEngagement(ctx, lessonID, slideID)
		c.cfg.Tracker.SetResumeSlide(ctx, lessonID, index)
		c.cfg.Evaluator.UpdateProgress(ctx, lessonID, completion.Update{Temporary: true, LastSlide: &index})
	}
}

func (c *Controller) slideSeconds(i int) int {
	secs := int(c.les.Duration(i, c.cfg.DefaultDuration) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

// armLocked replaces any pending tick with a fresh one.
func (c *Controller) armLocked() {
	c.stopTimerLocked()
	if !c.playing || !c.activeLocked() || c.remaining <= 0 {
		return
	}
	gen := c.gen
	c.timer = c.cfg.Scheduler.AfterFunc(c.cfg.TickInterval, func() { c.onTick(gen) })
}

func (c *Controller) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.gen++
}

func (c *Controller) onTick(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || !c.playing || !c.activeLocked() {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	c.remaining--

	var (
		job learner.Job
		ev  Event
	)
	switch {
	case c.remaining > 0:
		c.armLocked()
		ev = c.eventLocked(EventTick, true)
	case c.index < c.les.LastIndex():
		job = c.enterLocked(c.index + 1)
		ev = c.eventLocked(EventEntered, true)
	default:
		// Countdown ran out on the last slide.
		c.playing = false
		c.gen++
		ev = c.eventLocked(EventPlayback, true)
	}
	c.mu.Unlock()

	if job != nil {
		c.cfg.Dispatcher.Go(job)
	}
	c.emit(ev)
}

func (c *Controller) eventLocked(kind EventKind, auto bool) Event {
	return Event{Kind: kind, Auto: auto, View: c.viewLocked()}
}

func (c *Controller) viewLocked() View {
	slide := c.les.Slides[c.index]
	v := View{
		LessonID:         c.les.ID,
		LessonTitle:      c.les.Title,
		Phase:            c.phase,
		Index:            c.index,
		Total:            len(c.les.Slides),
		Slide:            slide,
		SecondsRemaining: c.remaining,
		SlideSeconds:     c.slideSeconds(c.index),
		Playing:          c.playing,
		SlideDone:        c.done[slide.ID],
		CompletedSlides:  len(c.done),
		Finishable:       c.finishableLocked(),
	}
	if a, ok := c.answers[slide.ID]; ok {
		v.Answer = &a
	}
	return v
}

func (c *Controller) emit(ev Event) {
	if c.cfg.OnEvent != nil {
		c.cfg.OnEvent(ev)
	}
}
