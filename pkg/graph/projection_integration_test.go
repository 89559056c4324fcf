//go:build integration

package graph_test

import (
	"context"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/bramble/internal/testenv"
	"github.com/Ramsey-B/bramble/pkg/graph"
	"github.com/Ramsey-B/bramble/pkg/models"
)

func TestProjector_Memgraph(t *testing.T) {
	ctx := context.Background()
	services := testenv.New(ctx)
	require.NoError(t, services.StartMemgraph())
	t.Cleanup(services.Stop)

	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	client, err := graph.NewClientWithURI(services.MemgraphURL, "", "", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close(ctx) })
	require.NoError(t, client.VerifyConnectivity(ctx))

	projector := graph.NewProjector(client, logger, 2)
	first := graph.Projection{
		RunID: "run-1",
		Accounts: []models.CustomerAccount{
			{AccountID: "ACC_200", CustomerID: "ACC_200"},
			{AccountID: "ACC_201", CustomerID: "ACC_200"},
			{AccountID: "ACC_202", CustomerID: "ACC_200"},
			{AccountID: "ACC_900", CustomerID: "ACC_900"},
		},
		Matches: []models.MatchDecision{
			{AID: "ACC_200", BID: "ACC_201", Label: "RULE_02"},
			{AID: "ACC_201", BID: "ACC_202", Label: "RULE_04"},
		},
	}
	require.NoError(t, projector.Project(ctx, first))

	count := func(cypher string) int64 {
		n, err := client.Count(ctx, cypher, nil)
		require.NoError(t, err)
		return n
	}

	assert.Equal(t, int64(4), count(`MATCH (a:Account) RETURN count(a) AS n`))
	assert.Equal(t, int64(2), count(`MATCH (c:Customer) RETURN count(c) AS n`))
	assert.Equal(t, int64(3), count(`MATCH (:Account)-[:BELONGS_TO]->(:Customer {id: "ACC_200"}) RETURN count(*) AS n`))
	assert.Equal(t, int64(2), count(`MATCH (:Account)-[m:MATCHED]->(:Account) RETURN count(m) AS n`))

	// a later run that splits the cluster prunes stale edges and empty customers
	second := graph.Projection{
		RunID: "run-2",
		Accounts: []models.CustomerAccount{
			{AccountID: "ACC_200", CustomerID: "ACC_200"},
			{AccountID: "ACC_201", CustomerID: "ACC_200"},
			{AccountID: "ACC_202", CustomerID: "ACC_202"},
			{AccountID: "ACC_900", CustomerID: "ACC_900"},
		},
		Matches: []models.MatchDecision{
			{AID: "ACC_200", BID: "ACC_201", Label: "RULE_02"},
		},
	}
	require.NoError(t, projector.Project(ctx, second))

	assert.Equal(t, int64(1), count(`MATCH (:Account)-[m:MATCHED]->(:Account) RETURN count(m) AS n`))
	assert.Equal(t, int64(1), count(`MATCH (:Account {id: "ACC_202"})-[:BELONGS_TO]->(:Customer {id: "ACC_202"}) RETURN count(*) AS n`))
}
