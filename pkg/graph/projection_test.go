package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/bramble/pkg/models"
)

type fakeExecutor struct {
	statements []Statement
	err        error
}

func (f *fakeExecutor) Execute(_ context.Context, statements ...Statement) error {
	f.statements = append(f.statements, statements...)
	return f.err
}

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func testProjection() Projection {
	return Projection{
		RunID: "run-1",
		Accounts: []models.CustomerAccount{
			{AccountID: "A", CustomerID: "A", CFN: "ANN"},
			{AccountID: "B", CustomerID: "A", CFN: "ANN"},
			{AccountID: "C", CustomerID: "C", CFN: "CAL"},
		},
		Matches: []models.MatchDecision{{AID: "A", BID: "B", Label: "RULE_04"}},
	}
}

func TestProjector_Statements(t *testing.T) {
	p := NewProjector(&fakeExecutor{}, testLogger(), 2)
	statements := p.Statements(testProjection())

	// two indexes, two account batches, one match batch, two prunes
	require.Len(t, statements, 7)
	assert.Equal(t, indexAccount, statements[0].Cypher)
	assert.True(t, statements[0].AutoCommit)
	assert.True(t, statements[1].AutoCommit)
	assert.False(t, statements[2].AutoCommit)
	assert.Equal(t, upsertAccounts, statements[2].Cypher)
	assert.Equal(t, upsertAccounts, statements[3].Cypher)
	assert.Equal(t, upsertMatches, statements[4].Cypher)
	assert.Equal(t, pruneCustomers, statements[6].Cypher)

	rows := statements[2].Params["rows"].([]map[string]any)
	require.Len(t, rows, 2)
	assert.Equal(t, "B", rows[1]["account_id"])
	assert.Equal(t, "A", rows[1]["customer_id"])
	assert.Len(t, statements[3].Params["rows"], 1)

	matchRows := statements[4].Params["rows"].([]map[string]any)
	assert.Equal(t, "RULE_04", matchRows[0]["label"])
	assert.Equal(t, "run-1", statements[5].Params["run_id"])
}

func TestProjector_EmptyProjection(t *testing.T) {
	statements := NewProjector(&fakeExecutor{}, testLogger(), 0).Statements(Projection{RunID: "r"})
	assert.Len(t, statements, 4)
}

func TestProjector_Project(t *testing.T) {
	exec := &fakeExecutor{}
	require.NoError(t, NewProjector(exec, testLogger(), 0).Project(context.Background(), testProjection()))
	assert.Len(t, exec.statements, 6)

	failing := &fakeExecutor{err: errors.New("bolt down")}
	err := NewProjector(failing, testLogger(), 0).Project(context.Background(), testProjection())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run-1")
}

func TestConfig_URI(t *testing.T) {
	assert.Equal(t, "bolt://localhost:7687", Config{Host: "localhost", Port: 7687}.URI())
}
