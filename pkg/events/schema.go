package events

import "time"

// EventType defines the type of event
type EventType string

const (
	EventTypeCustomerResolved EventType = "customer.resolved"
	EventTypeRunCompleted     EventType = "run.completed"
)

// SchemaVersion is the current event schema version
const SchemaVersion = "1.0"

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventType     EventType `json:"event_type"`
	SchemaVersion string    `json:"schema_version"`
	RunID         string    `json:"run_id"`
	Timestamp     time.Time `json:"timestamp"`
}

// CustomerResolvedEvent is emitted for each customer with more than one account
type CustomerResolvedEvent struct {
	BaseEvent
	CustomerID string   `json:"customer_id"`
	AccountIDs []string `json:"account_ids"`
	// Rules lists the distinct rule labels that linked the accounts
	Rules []string `json:"rules"`
}

// RunCompletedEvent is emitted once per finished run
type RunCompletedEvent struct {
	BaseEvent
	Records     int            `json:"records"`
	Candidates  int            `json:"candidates"`
	Matches     int            `json:"matches"`
	Clusters    int            `json:"clusters"`
	MultiMember int            `json:"multi_member"`
	Labels      map[string]int `json:"labels"`
	DurationMS  int64          `json:"duration_ms"`
}
