// Package sink writes resolution results to their destinations
package sink

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/bramble/pkg/metrics"
	"github.com/Ramsey-B/bramble/pkg/pipeline"
)

// Sink receives a completed result
type Sink interface {
	Name() string
	Write(ctx context.Context, result *pipeline.Result) error
}

// WriteAll writes result to every sink in order and stops at the first failure
func WriteAll(ctx context.Context, logger ectologger.Logger, result *pipeline.Result, sinks ...Sink) error {
	for _, s := range sinks {
		log := logger.WithContext(ctx).WithFields(map[string]any{
			"sink":   s.Name(),
			"run_id": result.RunID,
		})

		if err := s.Write(ctx, result); err != nil {
			metrics.SinkWrites.WithLabelValues(s.Name(), "error").Inc()
			log.WithError(err).Error("Failed to write result")
			return fmt.Errorf("%s sink: %w", s.Name(), err)
		}

		metrics.SinkWrites.WithLabelValues(s.Name(), "ok").Inc()
		log.Debug("Wrote result")
	}
	return nil
}
