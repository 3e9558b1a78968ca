package completion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/lessonflow/internal/learner"
	"github.com/abhisek/lessonflow/internal/logger"
	"github.com/abhisek/lessonflow/internal/progress"
	"github.com/abhisek/lessonflow/internal/store"
)

var _ learner.Sweeper = (*Evaluator)(nil)

type failingStore struct{ err error }

func (f failingStore) Load(context.Context, string) (*progress.LearnerProgress, error) {
	return nil, f.err
}

func (f failingStore) Merge(context.Context, string, progress.Patch) error {
	return f.err
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestEvaluator(t *testing.T, id learner.Identity, st store.Store) (*Evaluator, *clock) {
	t.Helper()
	c := &clock{t: time.Date(2026, 4, 10, 8, 0, 0, 0, time.UTC)}
	sess := learner.NewSession(id, st, logger.Nop(), learner.WithClock(c.now))
	t.Cleanup(func() { sess.Close(context.Background()) })
	return NewEvaluator(sess), c
}

func load(t *testing.T, st store.Store, id string) *progress.LearnerProgress {
	t.Helper()
	doc, err := st.Load(context.Background(), id)
	require.NoError(t, err)
	return doc
}

func TestUpdateProgress_IdempotentCompletion(t *testing.T) {
	ctx := context.Background()
	st := store.NewDurable(newMemBackend())
	ev, _ := newTestEvaluator(t, learner.AccountIdentity("a"), st)

	ev.UpdateProgress(ctx, 2, Update{Completed: true, Score: 80})
	rec := ev.UpdateProgress(ctx, 2, Update{Completed: true, Score: 95})

	doc := load(t, st, "a")
	assert.Equal(t, []progress.LessonID{2}, doc.CompletedLessons)
	assert.True(t, doc.Progress[2].Completed)
	assert.Equal(t, 95, doc.Progress[2].Score)
	assert.Equal(t, 95, rec.Score)
}

func TestUpdateProgress_CompletedNeverTemporary(t *testing.T) {
	ctx := context.Background()
	st := store.NewDurable(newMemBackend())
	ev, _ := newTestEvaluator(t, learner.AccountIdentity("a"), st)

	rec := ev.UpdateProgress(ctx, 1, Update{Completed: true, Score: 100, Temporary: true})
	assert.True(t, rec.Completed)
	assert.False(t, rec.Temporary)

	doc := load(t, st, "a")
	assert.False(t, doc.Progress[1].Temporary)
}

func TestUpdateProgress_TemporaryFlag(t *testing.T) {
	ctx := context.Background()
	st := store.NewDurable(newMemBackend())
	ev, _ := newTestEvaluator(t, learner.AccountIdentity("a"), st)

	assert.True(t, ev.UpdateProgress(ctx, 1, Update{Temporary: true}).Temporary)
	assert.False(t, ev.UpdateProgress(ctx, 1, Update{Temporary: false}).Temporary)
}

func TestUpdateProgress_MonotonicUnlock(t *testing.T) {
	ctx := context.Background()
	st := store.NewDurable(newMemBackend())
	ev, _ := newTestEvaluator(t, learner.AccountIdentity("a"), st)

	seq := []struct {
		lesson progress.LessonID
		u      Update
	}{
		{5, Update{Completed: true, Score: 100}},
		{1, Update{Completed: true, Score: 100}},
		{3, Update{Temporary: true}},
		{2, Update{Completed: true, Score: 70}},
		{5, Update{Temporary: true}},
	}

	var prev progress.LessonID
	for _, step := range seq {
		ev.UpdateProgress(ctx, step.lesson, step.u)
		cur := load(t, st, "a").CurrentLesson
		if cur < prev {
			t.Fatalf("currentLesson decreased from %d to %d", prev, cur)
		}
		prev = cur
	}
	assert.Equal(t, progress.LessonID(6), prev)
}

func TestUpdateProgress_UnlocksNextLesson(t *testing.T) {
	ctx := context.Background()
	st := store.NewDurable(newMemBackend())
	require.NoError(t, st.Merge(ctx, "a", progress.Patch{CurrentLesson: progress.Ptr(progress.LessonID(2))}))
	ev, _ := newTestEvaluator(t, learner.AccountIdentity("a"), st)

	ev.UpdateProgress(ctx, 3, Update{Completed: true, Score: 92})

	doc := load(t, st, "a")
	assert.Equal(t, progress.LessonID(4), doc.CurrentLesson)
	assert.Equal(t, 92, doc.Progress[3].Score)
}

func TestUpdateProgress_CheckpointThenComplete(t *testing.T) {
	ctx := context.Background()
	st := store.NewDurable(newMemBackend())
	ev, _ := newTestEvaluator(t, learner.AccountIdentity("a"), st)

	ev.UpdateProgress(ctx, 5, Update{Temporary: true})
	ev.UpdateProgress(ctx, 5, Update{Completed: true, Score: 100})

	rec := load(t, st, "a").Progress[5]
	require.NotNil(t, rec)
	assert.True(t, rec.Completed)
	assert.Equal(t, 100, rec.Score)
	assert.False(t, rec.Temporary)
}

func TestUpdateProgress_CompletedAt(t *testing.T) {
	ctx := context.Background()
	st := store.NewDurable(newMemBackend())
	ev, c := newTestEvaluator(t, learner.AccountIdentity("a"), st)

	rec := ev.UpdateProgress(ctx, 1, Update{Temporary: true})
	assert.Nil(t, rec.CompletedAt)

	finished := c.t
	rec = ev.UpdateProgress(ctx, 1, Update{Completed: true, Score: 100})
	require.NotNil(t, rec.CompletedAt)
	assert.True(t, rec.CompletedAt.Equal(finished))

	// Revisiting a completed lesson keeps it complete.
	c.t = c.t.Add(time.Hour)
	rec = ev.UpdateProgress(ctx, 1, Update{Temporary: true, LastSlide: progress.Ptr(2)})
	assert.True(t, rec.Completed)
	assert.False(t, rec.Temporary)
	assert.Equal(t, 100, rec.Score)
	assert.Equal(t, 2, rec.LastSlide)
	assert.True(t, rec.CompletedAt.Equal(finished))
	assert.True(t, rec.LastActivity.Equal(c.t))

	doc := load(t, st, "a")
	assert.True(t, doc.IsCompleted(1))
	assert.True(t, doc.Progress[1].Completed)
}

func TestUpdateProgress_RevisitSurvivesSweep(t *testing.T) {
	ctx := context.Background()
	st := store.NewDurable(newMemBackend())
	ev, _ := newTestEvaluator(t, learner.AccountIdentity("a"), st)

	ev.UpdateProgress(ctx, 2, Update{Completed: true, Score: 100})
	ev.UpdateProgress(ctx, 2, Update{Temporary: true, LastSlide: progress.Ptr(1)})
	ev.RemoveTemporaryProgress(ctx)

	doc := load(t, st, "a")
	rec := doc.Progress[2]
	require.NotNil(t, rec, "completed record swept")
	assert.True(t, rec.Completed)
	assert.False(t, rec.Temporary)
	assert.Equal(t, 100, rec.Score)
	if rec.LastSlide != 1 {
		t.Errorf("LastSlide = %d, want 1", rec.LastSlide)
	}
	assert.Equal(t, []progress.LessonID{2}, doc.CompletedLessons)
}

func TestUpdateProgress_StoreFailureIsOptimistic(t *testing.T) {
	ev, _ := newTestEvaluator(t, learner.AccountIdentity("a"), failingStore{err: errors.New("down")})

	var rec *progress.Record
	assert.NotPanics(t, func() {
		rec = ev.UpdateProgress(context.Background(), 4, Update{Completed: true, Score: 90, LastSlide: progress.Ptr(3)})
	})
	assert.True(t, rec.Completed)
	assert.Equal(t, 90, rec.Score)
	assert.Equal(t, 3, rec.LastSlide)
}

func TestRemoveTemporaryProgress(t *testing.T) {
	ctx := context.Background()
	st := store.NewDurable(newMemBackend())
	ev, _ := newTestEvaluator(t, learner.AccountIdentity("a"), st)

	ev.UpdateProgress(ctx, 1, Update{Temporary: true})  // A
	ev.UpdateProgress(ctx, 2, Update{Temporary: false}) // B

	ev.RemoveTemporaryProgress(ctx)

	doc := load(t, st, "a")
	assert.False(t, doc.HasRecord(1))
	assert.True(t, doc.HasRecord(2))
}

func TestRemoveTemporaryProgress_NothingToSweep(t *testing.T) {
	ctx := context.Background()
	b := newMemBackend()
	st := store.NewDurable(b)
	ev, _ := newTestEvaluator(t, learner.AccountIdentity("a"), st)

	ev.UpdateProgress(ctx, 1, Update{Completed: true, Score: 100})
	before := b.puts
	ev.RemoveTemporaryProgress(ctx)
	assert.Equal(t, before, b.puts)
}

func TestRemoveTemporaryProgress_GuestIsNoop(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	st := store.NewEphemeral(kv, "g")
	ev, _ := newTestEvaluator(t, learner.Identity{ID: "g", Mode: learner.Guest}, st)

	ev.UpdateProgress(ctx, 1, Update{Temporary: true})
	ev.RemoveTemporaryProgress(ctx)

	doc := load(t, st, "g")
	assert.True(t, doc.HasRecord(1))
	assert.True(t, doc.Progress[1].Temporary)
}

func TestRemoveTemporaryProgress_LoadFailureSwallowed(t *testing.T) {
	ev, _ := newTestEvaluator(t, learner.AccountIdentity("a"), failingStore{err: errors.New("down")})
	assert.NotPanics(t, func() { ev.RemoveTemporaryProgress(context.Background()) })
}

// memBackend is an in-memory store.Backend.
type memBackend struct {
	docs map[string][]byte
	puts int
}

func newMemBackend() *memBackend {
	return &memBackend{docs: make(map[string][]byte)}
}

func (m *memBackend) Fetch(_ context.Context, id string) ([]byte, error) {
	d, ok := m.docs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return d, nil
}

func (m *memBackend) Put(_ context.Context, id string, doc []byte) error {
	m.puts++
	m.docs[id] = doc
	return nil
}

func (m *memBackend) Delete(_ context.Context, id string) error {
	delete(m.docs, id)
	return nil
}
