package entity

import (
	"errors"
	"time"
)

// RunStatus is the lifecycle state of a generation run.
type RunStatus string

const (
	RunStatusRunning RunStatus = "running"
	RunStatusSuccess RunStatus = "success"
	RunStatusFailed  RunStatus = "failed"
)

// IsValid reports whether the status is one of the known states.
func (s RunStatus) IsValid() bool {
	switch s {
	case RunStatusRunning, RunStatusSuccess, RunStatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether the status is a final state.
// A run transitions exactly once from running to a terminal state and is
// immutable afterwards.
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusSuccess || s == RunStatusFailed
}

var (
	// ErrRunNotFound indicates the requested generation run does not exist.
	ErrRunNotFound = errors.New("generation run not found")

	// ErrRunAlreadyFinished indicates an attempt to finalize a run that has
	// already reached a terminal status.
	ErrRunAlreadyFinished = errors.New("generation run already finished")

	// ErrInvalidRunStatus indicates an unknown run status value.
	ErrInvalidRunStatus = errors.New("invalid generation run status")
)

// GenerationRun is the audit record of one pipeline execution. It doubles as
// the guard against redundant immediate runs shortly after a process restart.
type GenerationRun struct {
	ID              string
	Status          RunStatus
	ArticlesCreated int
	ErrorMessage    string
	ErrorDetails    string
	StartedAt       time.Time
	CompletedAt     *time.Time
	DurationMS      *int64
}

// Validate checks structural invariants of the run record.
func (r *GenerationRun) Validate() error {
	if !r.Status.IsValid() {
		return ErrInvalidRunStatus
	}
	if r.ArticlesCreated < 0 {
		return &ValidationError{Field: "ArticlesCreated", Message: "must not be negative"}
	}
	if r.Status.IsTerminal() && r.CompletedAt == nil {
		return &ValidationError{Field: "CompletedAt", Message: "required for terminal status"}
	}
	return nil
}
