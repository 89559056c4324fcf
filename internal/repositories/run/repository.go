package run

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/bramble/internal/database"
	"github.com/Ramsey-B/bramble/pkg/models"
	"github.com/Ramsey-B/bramble/pkg/tracing"
)

const table = "resolution_runs"

var columns = []string{
	"id", "status", "record_count", "candidate_count", "match_count", "cluster_count",
	"multi_member_count", "zip_policy", "error", "started_at", "completed_at",
}

// Repository handles resolution run persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new resolution run repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Start records a run in the running state
func (r *Repository) Start(ctx context.Context, id, zipPolicy string, startedAt time.Time) (*models.ResolutionRun, error) {
	ctx, span := tracing.StartSpan(ctx, "run.Repository.Start")
	defer span.End()

	run := &models.ResolutionRun{
		ID:        id,
		Status:    models.RunStatusRunning,
		ZipPolicy: zipPolicy,
		StartedAt: startedAt.UTC(),
	}

	ib := database.NewInsertBuilder()
	ib.InsertInto(table)
	ib.Cols("id", "status", "zip_policy", "started_at")
	ib.Values(run.ID, run.Status, run.ZipPolicy, run.StartedAt)

	query, args := ib.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("run_id", id).Error("Failed to create resolution run")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create resolution run")
	}

	return run, nil
}

// Complete stores the final counts of a run
func (r *Repository) Complete(ctx context.Context, run *models.ResolutionRun) error {
	ctx, span := tracing.StartSpan(ctx, "run.Repository.Complete")
	defer span.End()

	now := time.Now().UTC()
	run.Status = models.RunStatusCompleted
	run.CompletedAt = &now

	ub := database.NewUpdateBuilder()
	ub.Update(table)
	ub.Set(
		ub.Assign("status", run.Status),
		ub.Assign("record_count", run.RecordCount),
		ub.Assign("candidate_count", run.CandidateCount),
		ub.Assign("match_count", run.MatchCount),
		ub.Assign("cluster_count", run.ClusterCount),
		ub.Assign("multi_member_count", run.MultiMember),
		ub.Assign("completed_at", now),
	)
	ub.Where(ub.Equal("id", run.ID))

	return r.exec(ctx, run.ID, ub.Build, "failed to complete resolution run")
}

// Fail marks a run failed with the error message
func (r *Repository) Fail(ctx context.Context, id string, runErr error) error {
	ctx, span := tracing.StartSpan(ctx, "run.Repository.Fail")
	defer span.End()

	msg := runErr.Error()
	ub := database.NewUpdateBuilder()
	ub.Update(table)
	ub.Set(
		ub.Assign("status", models.RunStatusFailed),
		ub.Assign("error", msg),
		ub.Assign("completed_at", time.Now().UTC()),
	)
	ub.Where(ub.Equal("id", id))

	return r.exec(ctx, id, ub.Build, "failed to mark resolution run failed")
}

func (r *Repository) exec(ctx context.Context, id string, build func() (string, []any), msg string) error {
	query, args := build()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("run_id", id).Error(msg)
		return httperror.NewHTTPError(http.StatusInternalServerError, msg)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return httperror.NewHTTPErrorf(http.StatusNotFound, "resolution run %s not found", id)
	}
	return nil
}

// Get retrieves a run by ID
func (r *Repository) Get(ctx context.Context, id string) (*models.ResolutionRun, error) {
	ctx, span := tracing.StartSpan(ctx, "run.Repository.Get")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(table)
	sb.Where(sb.Equal("id", id))

	return r.getOne(ctx, sb.Build, "resolution run "+id+" not found")
}

// Latest retrieves the most recently completed run
func (r *Repository) Latest(ctx context.Context) (*models.ResolutionRun, error) {
	ctx, span := tracing.StartSpan(ctx, "run.Repository.Latest")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(table)
	sb.Where(sb.Equal("status", models.RunStatusCompleted))
	sb.OrderBy("started_at").Desc()
	sb.Limit(1)

	return r.getOne(ctx, sb.Build, "no completed resolution run")
}

func (r *Repository) getOne(ctx context.Context, build func() (string, []any), notFound string) (*models.ResolutionRun, error) {
	query, args := build()
	var run models.ResolutionRun
	if err := r.db.GetContext(ctx, &run, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NewHTTPError(http.StatusNotFound, notFound)
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get resolution run")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get resolution run")
	}
	return &run, nil
}

// List retrieves the most recent runs
func (r *Repository) List(ctx context.Context, limit int) ([]models.ResolutionRun, error) {
	ctx, span := tracing.StartSpan(ctx, "run.Repository.List")
	defer span.End()

	if limit < 1 || limit > 100 {
		limit = 20
	}

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(table)
	sb.OrderBy("started_at").Desc()
	sb.Limit(limit)

	query, args := sb.Build()
	var runs []models.ResolutionRun
	if err := r.db.SelectContext(ctx, &runs, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list resolution runs")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list resolution runs")
	}
	return runs, nil
}
