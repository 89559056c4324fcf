package customer

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectolinq"
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/bramble/internal/database"
	"github.com/Ramsey-B/bramble/pkg/models"
	"github.com/Ramsey-B/bramble/pkg/tracing"
)

const table = "customer_accounts"

// batchSize keeps each insert under the PostgreSQL bind parameter limit
const batchSize = 1000

// MaxReviewLimit caps stewardship listings
const MaxReviewLimit = 500

var columns = []string{
	"run_id", "account_id", "customer_id", "cfn", "cln", "dob", "cemail", "cphone", "cid", "caddr", "zip", "created_at",
}

// Repository handles account -> customer assignments
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new customer account repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// CreateBatch stores assignments in batches within tx
func (r *Repository) CreateBatch(ctx context.Context, tx database.Tx, accounts []models.CustomerAccount) error {
	ctx, span := tracing.StartSpan(ctx, "customer.Repository.CreateBatch")
	defer span.End()

	now := time.Now().UTC()
	for start := 0; start < len(accounts); start += batchSize {
		end := min(start+batchSize, len(accounts))

		ib := database.NewInsertBuilder()
		ib.InsertInto(table)
		ib.Cols(columns...)
		for i := start; i < end; i++ {
			a := &accounts[i]
			if a.CreatedAt.IsZero() {
				a.CreatedAt = now
			}
			ib.Values(a.RunID, a.AccountID, a.CustomerID, a.CFN, a.CLN, a.DOB, a.CEmail, a.CPhone, a.CID, a.CAddr, a.Zip, a.CreatedAt)
		}
		database.OnConflictUpdate(ib, []string{"run_id", "account_id"}, "customer_id")

		query, args := ib.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			r.logger.WithContext(ctx).WithError(err).WithField("count", end-start).Error("Failed to create customer accounts batch")
			return httperror.NewHTTPError(http.StatusInternalServerError, "failed to create customer accounts")
		}
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"count": len(accounts)}).Debug("Created customer accounts")
	return nil
}

// ListMultiMember lists customers with more than one account in a run, largest first
func (r *Repository) ListMultiMember(ctx context.Context, runID string, limit int) ([]models.ClusterSize, error) {
	ctx, span := tracing.StartSpan(ctx, "customer.Repository.ListMultiMember")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select("customer_id", "COUNT(*) AS member_count")
	sb.From(table)
	sb.Where(sb.Equal("run_id", runID))
	sb.GroupBy("customer_id")
	sb.Having("COUNT(*) > 1")
	sb.OrderBy("member_count DESC", "customer_id")
	sb.Limit(ClampLimit(limit, 100))

	query, args := sb.Build()
	var sizes []models.ClusterSize
	if err := r.db.SelectContext(ctx, &sizes, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list multi-member customers")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list customers")
	}
	return sizes, nil
}

// ListMembers retrieves the accounts of the given customers ordered by customer then account
func (r *Repository) ListMembers(ctx context.Context, runID string, customerIDs ...string) ([]models.CustomerAccount, error) {
	ctx, span := tracing.StartSpan(ctx, "customer.Repository.ListMembers")
	defer span.End()

	if len(customerIDs) == 0 {
		return []models.CustomerAccount{}, nil
	}

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(table)
	sb.Where(
		sb.Equal("run_id", runID),
		sb.In("customer_id", ectolinq.Map(customerIDs, func(id string) any { return id })...),
	)
	sb.OrderBy("customer_id", "account_id")

	query, args := sb.Build()
	var accounts []models.CustomerAccount
	if err := r.db.SelectContext(ctx, &accounts, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list customer members")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list customer members")
	}
	return accounts, nil
}

// GetCluster retrieves every account of one customer
func (r *Repository) GetCluster(ctx context.Context, runID, customerID string) ([]models.CustomerAccount, error) {
	accounts, err := r.ListMembers(ctx, runID, customerID)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, httperror.NewHTTPErrorf(http.StatusNotFound, "customer %s not found", customerID)
	}
	return accounts, nil
}

// GetAccount retrieves the assignment of one account
func (r *Repository) GetAccount(ctx context.Context, runID, accountID string) (*models.CustomerAccount, error) {
	ctx, span := tracing.StartSpan(ctx, "customer.Repository.GetAccount")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(table)
	sb.Where(sb.Equal("run_id", runID), sb.Equal("account_id", accountID))

	query, args := sb.Build()
	var accounts []models.CustomerAccount
	if err := r.db.SelectContext(ctx, &accounts, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get customer account")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get customer account")
	}
	if len(accounts) == 0 {
		return nil, httperror.NewHTTPErrorf(http.StatusNotFound, "account %s not found", accountID)
	}
	return &accounts[0], nil
}

// ClampLimit applies the default for non-positive limits and caps at MaxReviewLimit
func ClampLimit(limit, def int) int {
	if limit < 1 {
		return def
	}
	return min(limit, MaxReviewLimit)
}
