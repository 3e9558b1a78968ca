package progress

import (
	"slices"
	"time"
)

// LessonID identifies a lesson. Lessons unlock in ascending id order.
type LessonID int

// SlideID identifies a slide within a lesson.
type SlideID string

// MaxScore is the highest score a lesson attempt can record.
const MaxScore = 100

// Record is one learner's progress through one lesson.
type Record struct {
	Completed    bool       `json:"completed"`
	Score        int        `json:"score"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	Temporary    bool       `json:"temporary"`
	LastSlide    int        `json:"lastSlide"`
	PagesEngaged []SlideID  `json:"pagesEngaged"`
	LastActivity time.Time  `json:"lastActivity"`
}

// NewRecord returns a record with the lazily-created defaults.
func NewRecord() *Record {
	return &Record{PagesEngaged: []SlideID{}}
}

// HasEngaged reports whether the slide has been viewed at least once.
func (r *Record) HasEngaged(id SlideID) bool {
	_, found := slices.BinarySearch(r.PagesEngaged, id)
	return found
}

// addEngaged inserts id keeping PagesEngaged sorted and unique.
// Returns false if id was already present.
func (r *Record) addEngaged(id SlideID) bool {
	i, found := slices.BinarySearch(r.PagesEngaged, id)
	if found {
		return false
	}
	r.PagesEngaged = slices.Insert(r.PagesEngaged, i, id)
	return true
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	c.PagesEngaged = append([]SlideID{}, r.PagesEngaged...)
	if r.CompletedAt != nil {
		t := *r.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

// normalize repairs a record decoded from storage so the invariants hold.
func (r *Record) normalize() {
	if r.PagesEngaged == nil {
		r.PagesEngaged = []SlideID{}
	}
	slices.Sort(r.PagesEngaged)
	r.PagesEngaged = slices.Compact(r.PagesEngaged)
	r.Score = clampScore(r.Score)
	if r.LastSlide < 0 {
		r.LastSlide = 0
	}
	if r.Completed {
		r.Temporary = false
	}
}

func clampScore(s int) int {
	return min(max(s, 0), MaxScore)
}
