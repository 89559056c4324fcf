package source

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/bramble/internal/database"
	"github.com/Ramsey-B/bramble/pkg/models"
	"github.com/Ramsey-B/bramble/pkg/tracing"
)

// DefaultTable is the staging table the postgres source reads
const DefaultTable = "source_accounts"

// Postgres streams records from a staging table ordered by account id
type Postgres struct {
	db     database.DB
	logger ectologger.Logger
	table  string
}

func NewPostgres(db database.DB, logger ectologger.Logger, table string) *Postgres {
	if table == "" {
		table = DefaultTable
	}
	return &Postgres{
		db:     db,
		logger: logger,
		table:  table,
	}
}

func (p *Postgres) Name() string { return "postgres:" + p.table }

// Query returns the select statement for the configured table
func (p *Postgres) Query() (string, []any) {
	sb := database.NewSelectBuilder()
	sb.Select("account_id", "first_name", "last_name", "dob", "email", "phone", "address", "gov_id")
	sb.From(p.table)
	sb.OrderBy("account_id")
	return sb.Build()
}

func (p *Postgres) Read(ctx context.Context, fn func(models.RawRecord) error) error {
	ctx, span := tracing.StartSpan(ctx, "source.Postgres.Read")
	defer span.End()

	query, args := p.Query()
	rows, err := p.db.QueryxContext(ctx, query, args...)
	if err != nil {
		p.logger.WithContext(ctx).WithError(err).WithField("table", p.table).Error("Failed to query source accounts")
		return fmt.Errorf("failed to query %s: %w", p.table, err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var r models.RawRecord
		if err := rows.StructScan(&r); err != nil {
			return fmt.Errorf("failed to scan %s row: %w", p.table, err)
		}
		if r.DOB != nil && *r.DOB == "" {
			r.DOB = nil
		}
		if r.GovID != nil && *r.GovID == "" {
			r.GovID = nil
		}
		if err := fn(r); err != nil {
			return err
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", p.table, err)
	}

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"table":   p.table,
		"records": count,
	}).Debug("Read source accounts")
	return nil
}
