package sink

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/bramble/internal/database"
	"github.com/Ramsey-B/bramble/pkg/models"
	"github.com/Ramsey-B/bramble/pkg/pipeline"
	"github.com/Ramsey-B/bramble/pkg/tracing"
)

type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx database.Tx) error) error
}

// RunStore tracks the lifecycle of a resolution run
type RunStore interface {
	Start(ctx context.Context, id, zipPolicy string, startedAt time.Time) (*models.ResolutionRun, error)
	Complete(ctx context.Context, run *models.ResolutionRun) error
	Fail(ctx context.Context, id string, runErr error) error
}

type AssignmentStore interface {
	CreateBatch(ctx context.Context, tx database.Tx, accounts []models.CustomerAccount) error
}

type DecisionStore interface {
	CreateBatch(ctx context.Context, tx database.Tx, runID string, decisions []models.MatchDecision) error
}

// Postgres stores the run, the account assignments and the audit trail
type Postgres struct {
	db        TxRunner
	logger    ectologger.Logger
	runs      RunStore
	customers AssignmentStore
	decisions DecisionStore
}

func NewPostgres(db TxRunner, logger ectologger.Logger, runs RunStore, customers AssignmentStore, decisions DecisionStore) *Postgres {
	return &Postgres{
		db:        db,
		logger:    logger,
		runs:      runs,
		customers: customers,
		decisions: decisions,
	}
}

func (p *Postgres) Name() string { return "postgres" }

func (p *Postgres) Write(ctx context.Context, result *pipeline.Result) error {
	ctx, span := tracing.StartSpan(ctx, "sink.Postgres.Write")
	defer span.End()

	summary := result.Run()
	started, err := p.runs.Start(ctx, result.RunID, summary.ZipPolicy, result.StartedAt)
	if err != nil {
		return err
	}

	err = p.db.WithTx(ctx, func(tx database.Tx) error {
		if err := p.customers.CreateBatch(ctx, tx, result.CustomerAccounts()); err != nil {
			return err
		}
		return p.decisions.CreateBatch(ctx, tx, result.RunID, result.Matches)
	})
	if err != nil {
		if failErr := p.runs.Fail(ctx, result.RunID, err); failErr != nil {
			p.logger.WithContext(ctx).WithField("run_id", result.RunID).WithError(failErr).Warn("Failed to mark run as failed")
		}
		return err
	}

	summary.StartedAt = started.StartedAt
	return p.runs.Complete(ctx, &summary)
}

// RecordFailure stores a run that failed before producing a result
func (p *Postgres) RecordFailure(ctx context.Context, runID, zipPolicy string, startedAt time.Time, runErr error) error {
	if _, err := p.runs.Start(ctx, runID, zipPolicy, startedAt); err != nil {
		return err
	}
	return p.runs.Fail(ctx, runID, runErr)
}
