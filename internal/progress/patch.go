package progress

import (
	"slices"
	"time"
)

// RecordPatch names the record fields a write changes. Nil fields are left
// untouched; AddPages is merged as a set union.
type RecordPatch struct {
	Completed    *bool
	Score        *int
	CompletedAt  *time.Time
	Temporary    *bool
	LastSlide    *int
	LastActivity *time.Time
	AddPages     []SlideID
}

// Patch is a partial update to one learner's document.
type Patch struct {
	// LessonID selects the record Record applies to.
	LessonID LessonID

	// Record, when non-nil, is merged into Progress[LessonID], creating the
	// record with defaults if absent.
	Record *RecordPatch

	// MarkCompleted adds LessonID to CompletedLessons.
	MarkCompleted bool

	// CurrentLesson raises the unlock pointer. Lower values are ignored.
	CurrentLesson *LessonID

	// RemoveTemporary drops the listed records if they are still temporary
	// when the patch is applied.
	RemoveTemporary []LessonID
}

// IsEmpty reports whether applying the patch would change nothing.
func (p Patch) IsEmpty() bool {
	return p.Record == nil && !p.MarkCompleted && p.CurrentLesson == nil && len(p.RemoveTemporary) == 0
}

// Apply merges the patch into doc in place and reports whether anything
// changed. It is the single merge used by every store backend, so fields
// and lessons the patch does not name are never overwritten.
func Apply(doc *LearnerProgress, p Patch) bool {
	if doc.Progress == nil {
		doc.Progress = make(map[LessonID]*Record)
	}
	changed := false

	if p.Record != nil {
		rec, ok := doc.Progress[p.LessonID]
		if !ok || rec == nil {
			rec = NewRecord()
			doc.Progress[p.LessonID] = rec
			changed = true
		}
		if applyRecord(rec, p.Record) {
			changed = true
		}
	}

	if p.MarkCompleted && !doc.IsCompleted(p.LessonID) {
		doc.markCompleted(p.LessonID)
		changed = true
	}

	if p.CurrentLesson != nil && *p.CurrentLesson > doc.CurrentLesson {
		doc.CurrentLesson = *p.CurrentLesson
		changed = true
	}

	for _, id := range p.RemoveTemporary {
		rec, ok := doc.Progress[id]
		if !ok || rec == nil || !rec.Temporary || rec.Completed {
			continue
		}
		delete(doc.Progress, id)
		changed = true
	}

	return changed
}

func applyRecord(rec *Record, rp *RecordPatch) bool {
	before := rec.Clone()

	if rp.Completed != nil {
		rec.Completed = *rp.Completed
	}
	if rp.Score != nil {
		rec.Score = clampScore(*rp.Score)
	}
	if rp.CompletedAt != nil {
		t := *rp.CompletedAt
		rec.CompletedAt = &t
	}
	if rp.Temporary != nil {
		rec.Temporary = *rp.Temporary
	}
	if rp.LastSlide != nil && *rp.LastSlide >= 0 {
		rec.LastSlide = *rp.LastSlide
	}
	if rp.LastActivity != nil {
		rec.LastActivity = *rp.LastActivity
	}
	for _, id := range rp.AddPages {
		rec.addEngaged(id)
	}

	if rec.Completed {
		rec.Temporary = false
	}

	return !recordsEqual(before, rec)
}

func recordsEqual(a, b *Record) bool {
	if a.Completed != b.Completed || a.Score != b.Score || a.Temporary != b.Temporary ||
		a.LastSlide != b.LastSlide || !a.LastActivity.Equal(b.LastActivity) {
		return false
	}
	if (a.CompletedAt == nil) != (b.CompletedAt == nil) {
		return false
	}
	if a.CompletedAt != nil && !a.CompletedAt.Equal(*b.CompletedAt) {
		return false
	}
	return slices.Equal(a.PagesEngaged, b.PagesEngaged)
}

// Ptr returns a pointer to v. Convenient for building patches.
func Ptr[T any](v T) *T {
	return &v
}
