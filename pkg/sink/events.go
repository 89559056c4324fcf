package sink

import (
	"context"

	"github.com/Ramsey-B/bramble/pkg/events"
	"github.com/Ramsey-B/bramble/pkg/pipeline"
)

// Events announces resolved customers and the finished run
type Events struct {
	emitter *events.Emitter
}

func NewEvents(emitter *events.Emitter) *Events {
	return &Events{emitter: emitter}
}

func (e *Events) Name() string { return "events" }

func (e *Events) Write(ctx context.Context, result *pipeline.Result) error {
	if err := e.emitter.EmitCustomersResolved(ctx, result.RunID, result.Partition.Clusters(), result.Matches); err != nil {
		return err
	}
	return e.emitter.EmitRunCompleted(ctx, events.RunSummary{
		RunID:       result.RunID,
		Records:     result.Stats.Records,
		Candidates:  result.Stats.Candidates,
		Matches:     result.Stats.Matches,
		Clusters:    result.Stats.Clusters,
		MultiMember: result.Stats.MultiMember,
		Labels:      result.Stats.Labels,
		Duration:    result.Stats.Duration,
	})
}
