package progress

import "slices"

// LearnerProgress is the full progress document for one learner.
type LearnerProgress struct {
	Progress         map[LessonID]*Record `json:"progress"`
	CompletedLessons []LessonID           `json:"completedLessons"`
	CurrentLesson    LessonID             `json:"currentLesson"`
}

// New returns an empty progress document.
func New() *LearnerProgress {
	return &LearnerProgress{
		Progress:         make(map[LessonID]*Record),
		CompletedLessons: []LessonID{},
	}
}

// Record returns a copy of the lesson's record, or the defaults if the
// learner has not touched the lesson yet. The document is not modified.
func (lp *LearnerProgress) Record(id LessonID) *Record {
	if rec, ok := lp.Progress[id]; ok && rec != nil {
		return rec.Clone()
	}
	return NewRecord()
}

// HasRecord reports whether a record exists for the lesson.
func (lp *LearnerProgress) HasRecord(id LessonID) bool {
	rec, ok := lp.Progress[id]
	return ok && rec != nil
}

// IsCompleted reports whether the lesson is in the completed set.
func (lp *LearnerProgress) IsCompleted(id LessonID) bool {
	_, found := slices.BinarySearch(lp.CompletedLessons, id)
	return found
}

// IsUnlocked reports whether the learner may open the lesson.
func (lp *LearnerProgress) IsUnlocked(id LessonID) bool {
	return id <= lp.CurrentLesson || lp.IsCompleted(id)
}

// TemporaryLessons returns the ids of all records flagged temporary, sorted.
func (lp *LearnerProgress) TemporaryLessons() []LessonID {
	var ids []LessonID
	for id, rec := range lp.Progress {
		if rec != nil && rec.Temporary {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// Clone returns a deep copy of the document.
func (lp *LearnerProgress) Clone() *LearnerProgress {
	c := &LearnerProgress{
		Progress:         make(map[LessonID]*Record, len(lp.Progress)),
		CompletedLessons: append([]LessonID{}, lp.CompletedLessons...),
		CurrentLesson:    lp.CurrentLesson,
	}
	for id, rec := range lp.Progress {
		c.Progress[id] = rec.Clone()
	}
	return c
}

// Normalize repairs a document decoded from storage: nil maps, duplicate
// or unsorted sets, and completed records still flagged temporary.
func (lp *LearnerProgress) Normalize() {
	if lp.Progress == nil {
		lp.Progress = make(map[LessonID]*Record)
	}
	for id, rec := range lp.Progress {
		if rec == nil {
			delete(lp.Progress, id)
			continue
		}
		rec.normalize()
	}
	if lp.CompletedLessons == nil {
		lp.CompletedLessons = []LessonID{}
	}
	slices.Sort(lp.CompletedLessons)
	lp.CompletedLessons = slices.Compact(lp.CompletedLessons)
	if lp.CurrentLesson < 0 {
		lp.CurrentLesson = 0
	}
}

func (lp *LearnerProgress) markCompleted(id LessonID) {
	i, found := slices.BinarySearch(lp.CompletedLessons, id)
	if found {
		return
	}
	lp.CompletedLessons = slices.Insert(lp.CompletedLessons, i, id)
}
