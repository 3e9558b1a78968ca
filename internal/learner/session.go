package learner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/abhisek/lessonflow/internal/logger"
	"github.com/abhisek/lessonflow/internal/store"
)

// logoutCloseTimeout bounds the queue shutdown when Logout could not flush.
const logoutCloseTimeout = 5 * time.Second

// Job is a unit of background persistence work.
type Job func(ctx context.Context)

// Sweeper removes provisional progress on logout.
type Sweeper interface {
	RemoveTemporaryProgress(ctx context.Context)
}

// Session is the per-learner context injected into the tracker, the
// evaluator and the controller. It owns the identity, the store selected
// for it, and a single-goroutine queue that runs persistence jobs in
// submission order without blocking the caller.
type Session struct {
	Identity Identity
	Store    store.Store
	Log      *logger.Logger

	now func() time.Time

	mu      sync.Mutex
	pending []Job
	closed  bool
	wake    chan struct{}
	stop    chan struct{}
	done    chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
}

// Option configures a Session.
type Option func(*Session)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// NewSession starts the persistence queue. Call Close or Logout when the
// learner session ends.
func NewSession(id Identity, st store.Store, log *logger.Logger, opts ...Option) *Session {
	if log == nil {
		log = logger.Nop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		Identity: id,
		Store:    st,
		Log:      log.With("learner_id", id.ID, "mode", id.Mode.String()),
		now:      time.Now,
		wake:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.run()
	return s
}

// Now returns the session clock's current time.
func (s *Session) Now() time.Time {
	return s.now()
}

// Go queues job. It never blocks. Jobs submitted after Close are dropped.
func (s *Session) Go(job Job) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.Log.Warn("persistence job dropped after close")
		return
	}
	s.pending = append(s.pending, job)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Flush waits until every job queued before the call has run.
func (s *Session) Flush(ctx context.Context) error {
	marker := make(chan struct{})
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.pending = append(s.pending, func(context.Context) { close(marker) })
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}

	select {
	case <-marker:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("flush persistence queue: %w", ctx.Err())
	}
}

func (s *Session) run() {
	defer close(s.done)
	for {
		s.drain()
		select {
		case <-s.wake:
		case <-s.stop:
			s.drain()
			return
		}
	}
}

func (s *Session) drain() {
	for {
		s.mu.Lock()
		if len(s.pending) == 0 {
			s.mu.Unlock()
			return
		}
		job := s.pending[0]
		s.pending[0] = nil
		s.pending = s.pending[1:]
		s.mu.Unlock()

		job(s.ctx)
	}
}

// Close drains queued jobs and stops the queue. It is safe to call more
// than once.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	close(s.stop)
	select {
	case <-s.done:
		s.cancel()
		return nil
	case <-ctx.Done():
		s.cancel()
		return fmt.Errorf("close persistence queue: %w", ctx.Err())
	}
}

// Logout ends the session. Pending writes land first. Accounts then have
// their temporary records swept; guests lose the device-local entry.
func (s *Session) Logout(ctx context.Context, sweeper Sweeper) error {
	if err := s.Flush(ctx); err != nil {
		// ctx is spent; give the queue its own deadline to stop.
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), logoutCloseTimeout)
		defer cancel()
		if cerr := s.Close(closeCtx); cerr != nil {
			s.Log.Error("close persistence queue after failed flush", "error", cerr)
		}
		return err
	}

	var err error
	if s.Identity.IsGuest() {
		if d, ok := s.Store.(store.Discarder); ok {
			if derr := d.Discard(ctx, s.Identity.ID); derr != nil {
				s.Log.Error("discard guest progress failed", "error", derr)
				err = fmt.Errorf("discard guest progress: %w", derr)
			}
		}
		if err == nil {
			s.Log.Info("guest progress discarded")
		}
	} else if sweeper != nil {
		sweeper.RemoveTemporaryProgress(ctx)
	}

	if cerr := s.Close(ctx); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
