package domain

import (
	"encoding/json"
	"fmt"
	"math"
)

// LessonStatus is the viewing state of a lesson for the local user.
type LessonStatus string

const (
	StatusPending    LessonStatus = "PENDING"
	StatusInProgress LessonStatus = "IN_PROGRESS"
	StatusCompleted  LessonStatus = "COMPLETED"
)

// Valid reports whether s is one of the known statuses.
func (s LessonStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// UnmarshalJSON rejects unknown statuses so a corrupt stored mapping is
// treated as unparsable.
func (s *LessonStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	status := LessonStatus(raw)
	if !status.Valid() {
		return fmt.Errorf("%w: unknown lesson status %q", ErrInvalidInput, raw)
	}
	*s = status
	return nil
}

// ProgressRecord tracks a single lesson's status and resume position.
// Records are created lazily the first time a lesson is updated.
type ProgressRecord struct {
	LessonID     string       `json:"lessonId"`
	Status       LessonStatus `json:"status"`
	LastPosition float64      `json:"lastPosition"` // seconds
}

// DefaultProgress is the implicit record of a lesson nobody has touched.
func DefaultProgress(lessonID string) ProgressRecord {
	return ProgressRecord{LessonID: lessonID, Status: StatusPending}
}

// ProgressUpdate is a partial record. Nil fields are left untouched when
// merged over an existing record.
type ProgressUpdate struct {
	Status       *LessonStatus
	LastPosition *float64
}

// WithStatus returns an update that only sets the status.
func WithStatus(status LessonStatus) ProgressUpdate {
	return ProgressUpdate{Status: &status}
}

// WithPosition returns an update that only sets the resume position.
func WithPosition(seconds float64) ProgressUpdate {
	return ProgressUpdate{LastPosition: &seconds}
}

// Apply merges u over r and returns the result.
func (u ProgressUpdate) Apply(r ProgressRecord) ProgressRecord {
	if u.Status != nil {
		r.Status = *u.Status
	}
	if u.LastPosition != nil {
		pos := *u.LastPosition
		if pos < 0 || math.IsNaN(pos) || math.IsInf(pos, 0) {
			pos = 0
		}
		r.LastPosition = pos
	}
	return r
}
