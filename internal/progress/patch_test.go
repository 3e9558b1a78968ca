package progress

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply_CreatesRecordLazilyWithDefaults(t *testing.T) {
	doc := New()

	changed := Apply(doc, Patch{LessonID: 3, Record: &RecordPatch{}})

	require.True(t, changed)
	rec := doc.Progress[3]
	require.NotNil(t, rec)
	assert.False(t, rec.Completed)
	assert.Equal(t, 0, rec.Score)
	assert.False(t, rec.Temporary)
	assert.Equal(t, 0, rec.LastSlide)
	assert.Empty(t, rec.PagesEngaged)
	assert.Nil(t, rec.CompletedAt)
}

func TestApply_LeavesUnrelatedFieldsAndLessons(t *testing.T) {
	doc := New()
	Apply(doc, Patch{LessonID: 1, Record: &RecordPatch{Score: Ptr(80), LastSlide: Ptr(4)}})
	Apply(doc, Patch{LessonID: 2, Record: &RecordPatch{Temporary: Ptr(true)}})

	Apply(doc, Patch{LessonID: 1, Record: &RecordPatch{LastSlide: Ptr(6)}})

	assert.Equal(t, 80, doc.Progress[1].Score)
	assert.Equal(t, 6, doc.Progress[1].LastSlide)
	assert.True(t, doc.Progress[2].Temporary)
}

func TestApply_PagesEngagedIsASet(t *testing.T) {
	doc := New()
	for _, id := range []SlideID{"b", "a", "b", "c", "a"} {
		Apply(doc, Patch{LessonID: 1, Record: &RecordPatch{AddPages: []SlideID{id}}})
	}

	assert.Equal(t, []SlideID{"a", "b", "c"}, doc.Progress[1].PagesEngaged)
}

func TestApply_DuplicatePageReportsNoChange(t *testing.T) {
	doc := New()
	Apply(doc, Patch{LessonID: 1, Record: &RecordPatch{AddPages: []SlideID{"intro"}}})

	changed := Apply(doc, Patch{LessonID: 1, Record: &RecordPatch{AddPages: []SlideID{"intro"}}})

	assert.False(t, changed)
}

func TestApply_CompletedClearsTemporary(t *testing.T) {
	doc := New()
	Apply(doc, Patch{LessonID: 5, Record: &RecordPatch{Temporary: Ptr(true)}})

	Apply(doc, Patch{LessonID: 5, Record: &RecordPatch{Completed: Ptr(true), Temporary: Ptr(true)}})

	assert.True(t, doc.Progress[5].Completed)
	assert.False(t, doc.Progress[5].Temporary)
}

func TestApply_CurrentLessonNeverDecreases(t *testing.T) {
	doc := New()
	Apply(doc, Patch{CurrentLesson: Ptr(LessonID(4))})
	changed := Apply(doc, Patch{CurrentLesson: Ptr(LessonID(2))})

	assert.False(t, changed)
	assert.Equal(t, LessonID(4), doc.CurrentLesson)
}

func TestApply_MarkCompletedIsIdempotent(t *testing.T) {
	doc := New()
	Apply(doc, Patch{LessonID: 3, MarkCompleted: true})
	Apply(doc, Patch{LessonID: 1, MarkCompleted: true})
	Apply(doc, Patch{LessonID: 3, MarkCompleted: true})

	assert.Equal(t, []LessonID{1, 3}, doc.CompletedLessons)
}

func TestApply_RemoveTemporaryOnlyDropsTemporaryRecords(t *testing.T) {
	doc := New()
	Apply(doc, Patch{LessonID: 1, Record: &RecordPatch{Temporary: Ptr(true)}})
	Apply(doc, Patch{LessonID: 2, Record: &RecordPatch{Temporary: Ptr(false)}})

	changed := Apply(doc, Patch{RemoveTemporary: []LessonID{1, 2, 9}})

	assert.True(t, changed)
	assert.NotContains(t, doc.Progress, LessonID(1))
	assert.Contains(t, doc.Progress, LessonID(2))
}

func TestApply_ScoreIsClamped(t *testing.T) {
	doc := New()
	Apply(doc, Patch{LessonID: 1, Record: &RecordPatch{Score: Ptr(140)}})
	assert.Equal(t, MaxScore, doc.Progress[1].Score)

	Apply(doc, Patch{LessonID: 1, Record: &RecordPatch{Score: Ptr(-3)}})
	assert.Equal(t, 0, doc.Progress[1].Score)
}

func TestRecord_ReturnsCopy(t *testing.T) {
	doc := New()
	Apply(doc, Patch{LessonID: 1, Record: &RecordPatch{AddPages: []SlideID{"a"}}})

	rec := doc.Record(1)
	rec.PagesEngaged = append(rec.PagesEngaged, "z")
	rec.Score = 99

	assert.Equal(t, []SlideID{"a"}, doc.Progress[1].PagesEngaged)
	assert.Equal(t, 0, doc.Progress[1].Score)
	assert.False(t, doc.HasRecord(7))
	assert.NotNil(t, doc.Record(7))
}

func TestNormalize_RepairsDecodedDocument(t *testing.T) {
	raw := `{
		"progress": {
			"2": {"completed": true, "temporary": true, "score": 120, "pagesEngaged": ["b", "a", "b"]},
			"4": null
		},
		"completedLessons": [2, 2, 1],
		"currentLesson": 3
	}`
	var doc LearnerProgress
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	doc.Normalize()

	rec := doc.Progress[2]
	assert.False(t, rec.Temporary)
	assert.Equal(t, MaxScore, rec.Score)
	assert.Equal(t, []SlideID{"a", "b"}, rec.PagesEngaged)
	assert.NotContains(t, doc.Progress, LessonID(4))
	assert.Equal(t, []LessonID{1, 2}, doc.CompletedLessons)
}

func TestTemporaryLessons(t *testing.T) {
	doc := New()
	Apply(doc, Patch{LessonID: 7, Record: &RecordPatch{Temporary: Ptr(true)}})
	Apply(doc, Patch{LessonID: 2, Record: &RecordPatch{Temporary: Ptr(true)}})
	Apply(doc, Patch{LessonID: 3, Record: &RecordPatch{Completed: Ptr(true)}})

	assert.Equal(t, []LessonID{2, 7}, doc.TemporaryLessons())
}

func TestIsUnlocked(t *testing.T) {
	doc := New()
	Apply(doc, Patch{CurrentLesson: Ptr(LessonID(2))})

	tests := []struct {
		id   LessonID
		want bool
	}{
		{0, true},
		{2, true},
		{3, false},
	}
	for _, tt := range tests {
		if got := doc.IsUnlocked(tt.id); got != tt.want {
			t.Errorf("IsUnlocked(%d) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestClone_IsDeep(t *testing.T) {
	doc := New()
	now := time.Now()
	Apply(doc, Patch{LessonID: 1, Record: &RecordPatch{CompletedAt: &now, AddPages: []SlideID{"a"}}, MarkCompleted: true})

	c := doc.Clone()
	c.Progress[1].PagesEngaged[0] = "zzz"
	c.CompletedLessons[0] = 42
	*c.Progress[1].CompletedAt = now.Add(time.Hour)

	assert.Equal(t, SlideID("a"), doc.Progress[1].PagesEngaged[0])
	assert.Equal(t, LessonID(1), doc.CompletedLessons[0])
	assert.True(t, doc.Progress[1].CompletedAt.Equal(now))
}
