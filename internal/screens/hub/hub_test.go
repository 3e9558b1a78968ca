package hub

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/lessonflow/internal/completion"
	"github.com/abhisek/lessonflow/internal/learner"
	"github.com/abhisek/lessonflow/internal/lesson"
	"github.com/abhisek/lessonflow/internal/logger"
	"github.com/abhisek/lessonflow/internal/player"
	"github.com/abhisek/lessonflow/internal/progress"
	"github.com/abhisek/lessonflow/internal/router"
	"github.com/abhisek/lessonflow/internal/store"
)

func newTestEnv(t *testing.T) *player.Env {
	t.Helper()
	cat, err := lesson.DefaultCatalog()
	require.NoError(t, err)
	id := learner.Identity{ID: "guest-1", Mode: learner.Guest}
	s := learner.NewSession(id, store.NewEphemeral(store.NewMemoryKV(), id.ID), logger.Nop())
	t.Cleanup(func() { s.Close(context.Background()) })
	return player.NewEnv(cat, s, 10*time.Second)
}

func loaded(t *testing.T, env *player.Env) *HubScreen {
	t.Helper()
	h := New(env)
	h.Update(h.Init()())
	return h
}

func TestHubScreen_FreshLearner(t *testing.T) {
	h := loaded(t, newTestEnv(t))

	require.Len(t, h.menu.Items, 3)
	assert.Equal(t, MarkerAvailable, h.menu.Items[0].Marker)
	assert.Equal(t, MarkerLocked, h.menu.Items[1].Marker)
	assert.True(t, h.menu.Items[1].Disabled)
	assert.True(t, h.menu.Items[2].Disabled)
	assert.Equal(t, 0, h.menu.Selected)
	assert.Contains(t, h.View(80, 30), "0 of 3 complete")
}

func TestHubScreen_ResumeReflectsCompletion(t *testing.T) {
	env := newTestEnv(t)
	h := loaded(t, env)

	env.Session.Go(func(ctx context.Context) {
		env.Evaluator.UpdateProgress(ctx, 0, completion.Update{Completed: true, Score: progress.MaxScore})
	})
	h.Update(h.Resume()())

	assert.Equal(t, MarkerCompleted, h.menu.Items[0].Marker)
	assert.Equal(t, "score 100", h.menu.Items[0].Detail)
	assert.Equal(t, MarkerAvailable, h.menu.Items[1].Marker)
	assert.False(t, h.menu.Items[1].Disabled)
	assert.Equal(t, 1, h.menu.Selected, "cursor moves to the current lesson")
	assert.Contains(t, h.View(80, 30), "1 of 3 complete")
}

func TestHubScreen_InProgressDetail(t *testing.T) {
	env := newTestEnv(t)
	last := 2
	env.Session.Go(func(ctx context.Context) {
		env.Evaluator.UpdateProgress(ctx, 0, completion.Update{Temporary: true, LastSlide: &last})
	})
	h := loaded(t, env)

	assert.Equal(t, "resume at slide 3", h.menu.Items[0].Detail)
}

func TestHubScreen_EnterPushesLesson(t *testing.T) {
	h := loaded(t, newTestEnv(t))

	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok, "enter should push the lesson player")
	assert.Equal(t, "Lesson", msg.Screen.Title())
}

func TestHubScreen_LockedLessonDoesNotOpen(t *testing.T) {
	h := loaded(t, newTestEnv(t))

	h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	require.Equal(t, 1, h.menu.Selected)
	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestMarker(t *testing.T) {
	doc := progress.New()
	doc.CurrentLesson = 1
	doc.CompletedLessons = []progress.LessonID{0}

	got := strings.Join([]string{Marker(doc, 0), Marker(doc, 1), Marker(doc, 2)}, "")
	assert.Equal(t, MarkerCompleted+MarkerAvailable+MarkerLocked, got)
}
