package entity

import "time"

// Default scheduler settings applied when the singleton row does not exist yet.
const (
	DefaultGenerationIntervalMinutes = 120
	DefaultAutoGenerationEnabled     = true
)

// SchedulerSettings is the singleton configuration row read by the scheduler
// on every (re)start. Mutations happen through the settings endpoints, which
// restart or stop the scheduler as a side effect.
type SchedulerSettings struct {
	ID                        int
	GenerationIntervalMinutes int
	AutoGenerationEnabled     bool
	UpdatedAt                 time.Time
}

// Interval returns the configured generation interval as a duration.
func (s *SchedulerSettings) Interval() time.Duration {
	return time.Duration(s.GenerationIntervalMinutes) * time.Minute
}

// Validate checks that the configured interval is usable.
func (s *SchedulerSettings) Validate() error {
	if s.GenerationIntervalMinutes < 1 {
		return &ValidationError{Field: "GenerationIntervalMinutes", Message: "must be a positive number of minutes"}
	}
	return nil
}
