package app

import (
	"context"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/lessonflow/internal/learner"
	"github.com/abhisek/lessonflow/internal/lesson"
	"github.com/abhisek/lessonflow/internal/logger"
	"github.com/abhisek/lessonflow/internal/player"
	"github.com/abhisek/lessonflow/internal/progress"
	"github.com/abhisek/lessonflow/internal/router"
	"github.com/abhisek/lessonflow/internal/store"
)

func testOptions(t *testing.T) Options {
	t.Helper()
	cat, err := lesson.DefaultCatalog()
	require.NoError(t, err)
	id := learner.Identity{ID: "guest-1", Mode: learner.Guest}
	s := learner.NewSession(id, store.NewEphemeral(store.NewMemoryKV(), id.ID), logger.Nop())
	t.Cleanup(func() { s.Close(context.Background()) })
	return Options{Env: player.NewEnv(cat, s, 10*time.Second)}
}

func TestAppModel_StartsOnHub(t *testing.T) {
	m := newAppModel(testOptions(t))
	assert.Equal(t, 1, m.router.Depth())
	assert.Equal(t, "Lessons", m.router.Active().Title())
	assert.Equal(t, "guest", m.status)
}

func TestAppModel_InitialLessonIsPushed(t *testing.T) {
	opts := testOptions(t)
	id := progress.LessonID(0)
	opts.Lesson = &id
	m := newAppModel(opts)
	t.Cleanup(m.router.Close)

	batch, ok := m.Init()().(tea.BatchMsg)
	require.True(t, ok)
	require.Len(t, batch, 2)

	push, ok := batch[1]().(router.PushScreenMsg)
	require.True(t, ok)
	assert.Equal(t, "Lesson", push.Screen.Title())
}

func TestAppModel_EscAtRootIsNoop(t *testing.T) {
	m := newAppModel(testOptions(t))
	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.Nil(t, cmd)
}

func TestAppModel_CtrlCQuits(t *testing.T) {
	m := newAppModel(testOptions(t))
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestAppModel_FooterUsesScreenHints(t *testing.T) {
	m := newAppModel(testOptions(t))
	hints := m.footerHints(m.router.Active())
	require.NotEmpty(t, hints)
	assert.Equal(t, "Navigate", hints[0].Description)
}
