package models

import "time"

// Run status values
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// ResolutionRun records one pipeline execution
type ResolutionRun struct {
	ID             string     `json:"id" db:"id"`
	Status         string     `json:"status" db:"status"`
	RecordCount    int        `json:"record_count" db:"record_count"`
	CandidateCount int        `json:"candidate_count" db:"candidate_count"`
	MatchCount     int        `json:"match_count" db:"match_count"`
	ClusterCount   int        `json:"cluster_count" db:"cluster_count"`
	MultiMember    int        `json:"multi_member_count" db:"multi_member_count"`
	ZipPolicy      string     `json:"zip_policy" db:"zip_policy"`
	Error          *string    `json:"error,omitempty" db:"error"`
	StartedAt      time.Time  `json:"started_at" db:"started_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}
