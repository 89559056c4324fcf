package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/bramble/pkg/kafka"
	"github.com/Ramsey-B/bramble/pkg/models"
)

type fakePublisher struct {
	batches [][]kafka.Message
	err     error
}

func (f *fakePublisher) Publish(_ context.Context, messages ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, messages)
	return nil
}

func newTestEmitter(p Publisher) *Emitter {
	e := NewEmitter(p, ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {}))
	e.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	return e
}

var (
	testClusters = []models.Cluster{
		{CustomerID: "A", Members: []string{"A", "B", "C"}},
		{CustomerID: "D", Members: []string{"D"}},
		{CustomerID: "E", Members: []string{"E", "F"}},
	}
	testMatches = []models.MatchDecision{
		{AID: "A", BID: "B", Label: "RULE_04"},
		{AID: "B", BID: "C", Label: "RULE_01"},
		{AID: "A", BID: "C", Label: "RULE_04"},
		{AID: "E", BID: "F", Label: "RULE_17"},
	}
)

func TestEmitter_CustomerResolvedEvents(t *testing.T) {
	events := newTestEmitter(&fakePublisher{}).CustomerResolvedEvents("run-1", testClusters, testMatches)

	require.Len(t, events, 2)
	assert.Equal(t, "A", events[0].CustomerID)
	assert.Equal(t, []string{"A", "B", "C"}, events[0].AccountIDs)
	assert.Equal(t, []string{"RULE_01", "RULE_04"}, events[0].Rules)
	assert.Equal(t, EventTypeCustomerResolved, events[0].EventType)
	assert.Equal(t, "run-1", events[0].RunID)
	assert.Equal(t, []string{"RULE_17"}, events[1].Rules)
}

func TestEmitter_EmitCustomersResolved(t *testing.T) {
	pub := &fakePublisher{}
	e := newTestEmitter(pub)
	e.batchSize = 1

	require.NoError(t, e.EmitCustomersResolved(context.Background(), "run-1", testClusters, testMatches))
	require.Len(t, pub.batches, 2)
	assert.Equal(t, "A", pub.batches[0][0].Key)
	assert.Equal(t, "customer.resolved", pub.batches[0][0].EventType)
	assert.Equal(t, "run-1", pub.batches[1][0].Headers["run_id"])

	failing := newTestEmitter(&fakePublisher{err: errors.New("down")})
	assert.Error(t, failing.EmitCustomersResolved(context.Background(), "run-1", testClusters, testMatches))
}

func TestEmitter_EmitRunCompleted(t *testing.T) {
	pub := &fakePublisher{}
	err := newTestEmitter(pub).EmitRunCompleted(context.Background(), RunSummary{
		RunID:    "run-1",
		Records:  6,
		Matches:  4,
		Labels:   map[models.MatchLabel]int{"RULE_04": 2, models.NoMatch: 1},
		Duration: 1500 * time.Millisecond,
	})
	require.NoError(t, err)
	require.Len(t, pub.batches, 1)

	msg := pub.batches[0][0]
	assert.Equal(t, "run-1", msg.Key)
	event, ok := msg.Payload.(RunCompletedEvent)
	require.True(t, ok)
	assert.Equal(t, int64(1500), event.DurationMS)
	assert.Equal(t, 1, event.Labels["NO_MATCH"])
	assert.Equal(t, 6, event.Records)
}
