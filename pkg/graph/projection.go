package graph

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/bramble/pkg/models"
	"github.com/Ramsey-B/bramble/pkg/tracing"
)

// DefaultBatchSize is how many rows each UNWIND statement carries
const DefaultBatchSize = 500

// Executor runs Cypher statements. *Client implements it.
type Executor interface {
	Execute(ctx context.Context, statements ...Statement) error
}

// Projection is everything one run writes to the graph
type Projection struct {
	RunID    string
	Accounts []models.CustomerAccount
	Matches  []models.MatchDecision
}

// Projector writes account, customer and match nodes and relationships:
// (:Account)-[:BELONGS_TO]->(:Customer) and (:Account)-[:MATCHED {rule}]->(:Account)
type Projector struct {
	exec      Executor
	logger    ectologger.Logger
	batchSize int
}

func NewProjector(exec Executor, logger ectologger.Logger, batchSize int) *Projector {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}
	return &Projector{
		exec:      exec,
		logger:    logger,
		batchSize: batchSize,
	}
}

const (
	indexAccount  = `CREATE INDEX ON :Account(id)`
	indexCustomer = `CREATE INDEX ON :Customer(id)`

	upsertAccounts = `
		UNWIND $rows AS row
		MERGE (a:Account {id: row.account_id})
		SET a.cfn = row.cfn, a.cln = row.cln, a.run_id = $run_id
		WITH a, row
		OPTIONAL MATCH (a)-[old:BELONGS_TO]->(:Customer)
		DELETE old
		WITH a, row
		MERGE (c:Customer {id: row.customer_id})
		SET c.run_id = $run_id
		MERGE (a)-[:BELONGS_TO]->(c)
	`

	upsertMatches = `
		UNWIND $rows AS row
		MATCH (a:Account {id: row.aid}), (b:Account {id: row.bid})
		MERGE (a)-[m:MATCHED]->(b)
		SET m.rule = row.label, m.run_id = $run_id
	`

	pruneMatches   = `MATCH (:Account)-[m:MATCHED]->(:Account) WHERE m.run_id <> $run_id DELETE m`
	pruneCustomers = `MATCH (c:Customer) WHERE NOT (c)<-[:BELONGS_TO]-(:Account) DETACH DELETE c`
)

// Statements builds the Cypher statements for a projection in execution order
func (p *Projector) Statements(proj Projection) []Statement {
	statements := []Statement{
		{Cypher: indexAccount, AutoCommit: true},
		{Cypher: indexCustomer, AutoCommit: true},
	}

	for start := 0; start < len(proj.Accounts); start += p.batchSize {
		end := min(start+p.batchSize, len(proj.Accounts))
		rows := make([]map[string]any, 0, end-start)
		for _, a := range proj.Accounts[start:end] {
			rows = append(rows, map[string]any{
				"account_id":  a.AccountID,
				"customer_id": a.CustomerID,
				"cfn":         a.CFN,
				"cln":         a.CLN,
			})
		}
		statements = append(statements, Statement{
			Cypher: upsertAccounts,
			Params: map[string]any{"run_id": proj.RunID, "rows": rows},
		})
	}

	for start := 0; start < len(proj.Matches); start += p.batchSize {
		end := min(start+p.batchSize, len(proj.Matches))
		rows := make([]map[string]any, 0, end-start)
		for _, m := range proj.Matches[start:end] {
			rows = append(rows, map[string]any{
				"aid":   m.AID,
				"bid":   m.BID,
				"label": string(m.Label),
			})
		}
		statements = append(statements, Statement{
			Cypher: upsertMatches,
			Params: map[string]any{"run_id": proj.RunID, "rows": rows},
		})
	}

	return append(statements,
		Statement{Cypher: pruneMatches, Params: map[string]any{"run_id": proj.RunID}},
		Statement{Cypher: pruneCustomers},
	)
}

// Project writes the projection
func (p *Projector) Project(ctx context.Context, proj Projection) error {
	ctx, span := tracing.StartSpan(ctx, "graph.Projector.Project")
	defer span.End()

	statements := p.Statements(proj)
	if err := p.exec.Execute(ctx, statements...); err != nil {
		return fmt.Errorf("failed to project run %s: %w", proj.RunID, err)
	}

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"run_id":     proj.RunID,
		"accounts":   len(proj.Accounts),
		"matches":    len(proj.Matches),
		"statements": len(statements),
	}).Info("Projected customers to graph")
	return nil
}
