package store

import "fmt"

// ReadError indicates a backend failed to fetch or decode a document.
type ReadError struct {
	LearnerID string
	Err       error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read progress: %v", e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError indicates a backend failed to store a document.
type WriteError struct {
	LearnerID string
	Err       error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write progress: %v", e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
