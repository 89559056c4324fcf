package matchdecision

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/bramble/internal/database"
	"github.com/Ramsey-B/bramble/pkg/models"
	"github.com/Ramsey-B/bramble/pkg/tracing"
)

const table = "match_decisions"

const batchSize = 5000

// Repository handles the match decision audit trail
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new match decision repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// CreateBatch stores decisions for a run within tx
func (r *Repository) CreateBatch(ctx context.Context, tx database.Tx, runID string, decisions []models.MatchDecision) error {
	ctx, span := tracing.StartSpan(ctx, "matchdecision.Repository.CreateBatch")
	defer span.End()

	for start := 0; start < len(decisions); start += batchSize {
		end := min(start+batchSize, len(decisions))

		ib := database.NewInsertBuilder()
		ib.InsertInto(table)
		ib.Cols("run_id", "aid", "bid", "label")
		for _, d := range decisions[start:end] {
			ib.Values(runID, d.AID, d.BID, string(d.Label))
		}
		database.OnConflictDoNothing(ib)

		query, args := ib.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			r.logger.WithContext(ctx).WithError(err).WithField("run_id", runID).Error("Failed to create match decisions batch")
			return httperror.NewHTTPError(http.StatusInternalServerError, "failed to create match decisions")
		}
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"run_id": runID, "count": len(decisions)}).Debug("Created match decisions")
	return nil
}

// ListByAccount retrieves every decision involving an account
func (r *Repository) ListByAccount(ctx context.Context, runID, accountID string) ([]models.MatchDecision, error) {
	ctx, span := tracing.StartSpan(ctx, "matchdecision.Repository.ListByAccount")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select("aid", "bid", "label")
	sb.From(table)
	sb.Where(
		sb.Equal("run_id", runID),
		sb.Or(sb.Equal("aid", accountID), sb.Equal("bid", accountID)),
	)
	sb.OrderBy("aid", "bid")

	return r.list(ctx, sb.Build)
}

// ListByAccounts retrieves every decision between accounts of the given set
func (r *Repository) ListByAccounts(ctx context.Context, runID string, accountIDs []string) ([]models.MatchDecision, error) {
	ctx, span := tracing.StartSpan(ctx, "matchdecision.Repository.ListByAccounts")
	defer span.End()

	if len(accountIDs) == 0 {
		return []models.MatchDecision{}, nil
	}

	ids := make([]any, len(accountIDs))
	for i, id := range accountIDs {
		ids[i] = id
	}

	sb := database.NewSelectBuilder()
	sb.Select("aid", "bid", "label")
	sb.From(table)
	sb.Where(
		sb.Equal("run_id", runID),
		sb.In("aid", ids...),
		sb.In("bid", ids...),
	)
	sb.OrderBy("aid", "bid")

	return r.list(ctx, sb.Build)
}

func (r *Repository) list(ctx context.Context, build func() (string, []any)) ([]models.MatchDecision, error) {
	query, args := build()
	var decisions []models.MatchDecision
	if err := r.db.SelectContext(ctx, &decisions, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list match decisions")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list match decisions")
	}
	return decisions, nil
}
