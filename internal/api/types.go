package api

import "time"

// ScheduleEntry represents one repository under automatic commit management.
// Kept here rather than in registry to avoid a circular dependency with the
// store package.
type ScheduleEntry struct {
	ID               string    `json:"id"`
	RepositoryPath   string    `json:"repository_path"`
	FrequencyMinutes int       `json:"frequency_minutes"`
	CreatedAt        time.Time `json:"created_at"`
}

// Outcome classifies a single pipeline run.
type Outcome string

const (
	OutcomeNoOp      Outcome = "no-op"
	OutcomeCommitted Outcome = "committed"
	OutcomeFailed    Outcome = "failed"
)

// RunRecord describes one pipeline execution. It is written to the per-repo
// run log as a single line and never persisted as structured data.
type RunRecord struct {
	Timestamp time.Time
	Outcome   Outcome
	Message   string
	Truncated bool
	// Fallback is the reason message generation fell back to a timestamp,
	// empty when the diff was summarized.
	Fallback string
	Error    string
}
