package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/abhisek/lessonflow/internal/progress"
)

// ErrNotFound is returned by a Backend when no document exists for the
// learner. DocumentStore turns it into a fresh, empty document.
var ErrNotFound = errors.New("document not found")

// Store is the progress persistence contract shared by the guest and
// account identity modes.
type Store interface {
	// Load returns the learner's document. A learner with no document gets
	// an empty one, never an error.
	Load(ctx context.Context, learnerID string) (*progress.LearnerProgress, error)

	// Merge reads the current document, applies patch, and writes the result
	// back. Only the fields named in the patch change.
	Merge(ctx context.Context, learnerID string, patch progress.Patch) error
}

// Backend stores one opaque JSON document per learner.
type Backend interface {
	Fetch(ctx context.Context, learnerID string) ([]byte, error)
	Put(ctx context.Context, learnerID string, doc []byte) error
	Delete(ctx context.Context, learnerID string) error
}

// DocumentStore implements Store over any Backend with a client-side
// fetch-merge-write cycle. The cycle is not atomic: two concurrent merges
// for the same learner race and the later Put wins for the whole document.
type DocumentStore struct {
	backend Backend
	kind    string
}

var _ Store = (*DocumentStore)(nil)

// Kind returns "ephemeral" or "durable".
func (s *DocumentStore) Kind() string {
	return s.kind
}

func (s *DocumentStore) Load(ctx context.Context, learnerID string) (*progress.LearnerProgress, error) {
	raw, err := s.backend.Fetch(ctx, learnerID)
	if errors.Is(err, ErrNotFound) {
		return progress.New(), nil
	}
	if err != nil {
		return nil, &ReadError{LearnerID: learnerID, Err: err}
	}

	doc := progress.New()
	if err := json.Unmarshal(raw, doc); err != nil {
		return nil, &ReadError{LearnerID: learnerID, Err: fmt.Errorf("decode document: %w", err)}
	}
	doc.Normalize()
	return doc, nil
}

func (s *DocumentStore) Merge(ctx context.Context, learnerID string, patch progress.Patch) error {
	if patch.IsEmpty() {
		return nil
	}

	doc, err := s.Load(ctx, learnerID)
	if err != nil {
		return err
	}
	if !progress.Apply(doc, patch) {
		return nil
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return &WriteError{LearnerID: learnerID, Err: fmt.Errorf("encode document: %w", err)}
	}
	if err := s.backend.Put(ctx, learnerID, raw); err != nil {
		return &WriteError{LearnerID: learnerID, Err: err}
	}
	return nil
}

// Discard deletes the learner's whole document.
func (s *DocumentStore) Discard(ctx context.Context, learnerID string) error {
	if err := s.backend.Delete(ctx, learnerID); err != nil {
		return &WriteError{LearnerID: learnerID, Err: err}
	}
	return nil
}

// Close releases the backend's resources, if it holds any.
func (s *DocumentStore) Close() error {
	if c, ok := s.backend.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Discarder is implemented by stores that can drop a learner's whole
// document.
type Discarder interface {
	Discard(ctx context.Context, learnerID string) error
}

var _ Discarder = (*DocumentStore)(nil)
