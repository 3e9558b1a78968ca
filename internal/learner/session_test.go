package learner

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/abhisek/lessonflow/internal/config"
	"github.com/abhisek/lessonflow/internal/logger"
	"github.com/abhisek/lessonflow/internal/progress"
	"github.com/abhisek/lessonflow/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func configWithLearner(id string) config.Config {
	return config.Config{LearnerID: id}
}

type countingSweeper struct{ calls int }

func (c *countingSweeper) RemoveTemporaryProgress(context.Context) { c.calls++ }

func TestGuestIdentity_CreatedOnceAndReused(t *testing.T) {
	kv := store.NewMemoryKV()

	first, err := GuestIdentity(kv)
	require.NoError(t, err)
	assert.True(t, first.IsGuest())
	assert.NotEmpty(t, first.ID)

	second, err := GuestIdentity(kv)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResolveIdentity_Account(t *testing.T) {
	id, err := ResolveIdentity(configWithLearner("acct-9"), store.NewMemoryKV())
	require.NoError(t, err)
	assert.Equal(t, AccountIdentity("acct-9"), id)
	assert.Equal(t, "account", id.Mode.String())
}

func TestSession_JobsRunInOrder(t *testing.T) {
	s := NewSession(AccountIdentity("a"), nil, logger.Nop())
	t.Cleanup(func() { s.Close(context.Background()) })

	var (
		mu  sync.Mutex
		got []int
	)
	for i := 0; i < 50; i++ {
		s.Go(func(context.Context) {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		})
	}
	require.NoError(t, s.Flush(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 50)
	for i, v := range got {
		if v != i {
			t.Fatalf("job %d ran at position %d", v, i)
		}
	}
}

func TestSession_GoDoesNotBlock(t *testing.T) {
	s := NewSession(AccountIdentity("a"), nil, logger.Nop())
	t.Cleanup(func() { s.Close(context.Background()) })

	release := make(chan struct{})
	s.Go(func(context.Context) { <-release })

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			s.Go(func(context.Context) {})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Go blocked behind a slow job")
	}
	close(release)
}

func TestSession_CloseDrainsAndDropsLateJobs(t *testing.T) {
	s := NewSession(AccountIdentity("a"), nil, logger.Nop())

	ran := 0
	s.Go(func(context.Context) { ran++ })
	require.NoError(t, s.Close(context.Background()))
	assert.Equal(t, 1, ran)

	s.Go(func(context.Context) { ran++ })
	require.NoError(t, s.Flush(context.Background()))
	require.NoError(t, s.Close(context.Background()))
	assert.Equal(t, 1, ran)
}

func TestSession_FlushHonoursContext(t *testing.T) {
	s := NewSession(AccountIdentity("a"), nil, logger.Nop())
	release := make(chan struct{})
	s.Go(func(context.Context) { <-release })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, s.Flush(ctx))

	close(release)
	require.NoError(t, s.Close(context.Background()))
}

func TestSession_LogoutFlushFailureStopsQueue(t *testing.T) {
	s := NewSession(AccountIdentity("a"), nil, logger.Nop())
	release := make(chan struct{})
	s.Go(func(context.Context) { <-release })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	time.AfterFunc(50*time.Millisecond, func() { close(release) })

	sweeper := &countingSweeper{}
	assert.Error(t, s.Logout(ctx, sweeper))
	assert.Zero(t, sweeper.calls)

	select {
	case <-s.done:
	default:
		t.Fatal("queue goroutine still running after Logout")
	}

	ran := false
	s.Go(func(context.Context) { ran = true })
	assert.False(t, ran, "job accepted after logout")
}

func TestSession_LogoutGuestDiscardsEntry(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	id, err := GuestIdentity(kv)
	require.NoError(t, err)
	st := store.NewEphemeral(kv, id.ID)
	s := NewSession(id, st, logger.Nop())

	s.Go(func(ctx context.Context) {
		_ = st.Merge(ctx, id.ID, progress.Patch{LessonID: 1, MarkCompleted: true})
	})

	sweeper := &countingSweeper{}
	require.NoError(t, s.Logout(ctx, sweeper))
	assert.Zero(t, sweeper.calls)

	_, err = kv.Get(store.GuestProgressKey)
	assert.ErrorIs(t, err, store.ErrNotFound)

	// The guest id itself survives logout.
	again, err := GuestIdentity(kv)
	require.NoError(t, err)
	assert.Equal(t, id.ID, again.ID)
}

func TestSession_LogoutAccountSweeps(t *testing.T) {
	s := NewSession(AccountIdentity("acct"), store.NewEphemeral(store.NewMemoryKV(), "unused"), logger.Nop())

	sweeper := &countingSweeper{}
	require.NoError(t, s.Logout(context.Background(), sweeper))
	assert.Equal(t, 1, sweeper.calls)
}

func TestWithClock(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s := NewSession(AccountIdentity("a"), nil, logger.Nop(), WithClock(func() time.Time { return fixed }))
	t.Cleanup(func() { s.Close(context.Background()) })

	assert.Equal(t, fixed, s.Now())
}
