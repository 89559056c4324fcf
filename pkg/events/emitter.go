// Package events emits resolution outcomes to downstream consumers
package events

import (
	"context"
	"sort"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/bramble/pkg/kafka"
	"github.com/Ramsey-B/bramble/pkg/metrics"
	"github.com/Ramsey-B/bramble/pkg/models"
	"github.com/Ramsey-B/bramble/pkg/tracing"
)

// DefaultBatchSize is how many events each publish call carries
const DefaultBatchSize = 500

// Publisher sends messages. *kafka.Producer implements it.
type Publisher interface {
	Publish(ctx context.Context, messages ...kafka.Message) error
}

// RunSummary is the run outcome the emitter reports
type RunSummary struct {
	RunID       string
	Records     int
	Candidates  int
	Matches     int
	Clusters    int
	MultiMember int
	Labels      map[models.MatchLabel]int
	Duration    time.Duration
}

// Emitter handles event emission for bramble
type Emitter struct {
	publisher Publisher
	logger    ectologger.Logger
	batchSize int
	now       func() time.Time
}

// NewEmitter creates a new event emitter
func NewEmitter(publisher Publisher, logger ectologger.Logger) *Emitter {
	return &Emitter{
		publisher: publisher,
		logger:    logger,
		batchSize: DefaultBatchSize,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (e *Emitter) base(eventType EventType, runID string) BaseEvent {
	return BaseEvent{
		EventType:     eventType,
		SchemaVersion: SchemaVersion,
		RunID:         runID,
		Timestamp:     e.now(),
	}
}

// CustomerResolvedEvents builds one event per multi-member cluster, with the rules that
// linked its members
func (e *Emitter) CustomerResolvedEvents(runID string, clusters []models.Cluster, matches []models.MatchDecision) []CustomerResolvedEvent {
	member := make(map[string]string)
	for _, c := range clusters {
		for _, id := range c.Members {
			member[id] = c.CustomerID
		}
	}
	rules := make(map[string]map[string]struct{})
	for _, m := range matches {
		customerID, ok := member[m.AID]
		if !ok {
			continue
		}
		if rules[customerID] == nil {
			rules[customerID] = make(map[string]struct{})
		}
		rules[customerID][string(m.Label)] = struct{}{}
	}

	var out []CustomerResolvedEvent
	for _, c := range clusters {
		if c.Size() < 2 {
			continue
		}
		labels := make([]string, 0, len(rules[c.CustomerID]))
		for l := range rules[c.CustomerID] {
			labels = append(labels, l)
		}
		sort.Strings(labels)

		out = append(out, CustomerResolvedEvent{
			BaseEvent:  e.base(EventTypeCustomerResolved, runID),
			CustomerID: c.CustomerID,
			AccountIDs: c.Members,
			Rules:      labels,
		})
	}
	return out
}

// EmitCustomersResolved emits customer.resolved for every multi-member cluster
func (e *Emitter) EmitCustomersResolved(ctx context.Context, runID string, clusters []models.Cluster, matches []models.MatchDecision) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitCustomersResolved")
	defer span.End()

	events := e.CustomerResolvedEvents(runID, clusters, matches)
	for start := 0; start < len(events); start += e.batchSize {
		end := min(start+e.batchSize, len(events))
		messages := make([]kafka.Message, 0, end-start)
		for _, ev := range events[start:end] {
			messages = append(messages, kafka.Message{
				Key:       ev.CustomerID,
				EventType: string(ev.EventType),
				Payload:   ev,
				Headers:   map[string]string{"run_id": runID, "schema_version": SchemaVersion},
			})
		}
		if err := e.publisher.Publish(ctx, messages...); err != nil {
			e.logger.WithContext(ctx).WithError(err).Error("Failed to emit customer.resolved events")
			return err
		}
		metrics.EventsPublished.WithLabelValues(string(EventTypeCustomerResolved)).Add(float64(len(messages)))
	}

	e.logger.WithContext(ctx).WithFields(map[string]any{
		"run_id": runID,
		"count":  len(events),
	}).Info("Emitted customer.resolved events")
	return nil
}

// EmitRunCompleted emits the run summary
func (e *Emitter) EmitRunCompleted(ctx context.Context, summary RunSummary) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitRunCompleted")
	defer span.End()

	labels := make(map[string]int, len(summary.Labels))
	for l, n := range summary.Labels {
		labels[string(l)] = n
	}

	event := RunCompletedEvent{
		BaseEvent:   e.base(EventTypeRunCompleted, summary.RunID),
		Records:     summary.Records,
		Candidates:  summary.Candidates,
		Matches:     summary.Matches,
		Clusters:    summary.Clusters,
		MultiMember: summary.MultiMember,
		Labels:      labels,
		DurationMS:  summary.Duration.Milliseconds(),
	}

	err := e.publisher.Publish(ctx, kafka.Message{
		Key:       summary.RunID,
		EventType: string(EventTypeRunCompleted),
		Payload:   event,
		Headers:   map[string]string{"run_id": summary.RunID, "schema_version": SchemaVersion},
	})
	if err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit run.completed event")
		return err
	}
	metrics.EventsPublished.WithLabelValues(string(EventTypeRunCompleted)).Inc()
	return nil
}
