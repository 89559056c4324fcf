package sink

import (
	"context"

	"github.com/Ramsey-B/bramble/pkg/graph"
	"github.com/Ramsey-B/bramble/pkg/pipeline"
)

// Graph projects the result into the graph database
type Graph struct {
	projector *graph.Projector
}

func NewGraph(projector *graph.Projector) *Graph {
	return &Graph{projector: projector}
}

func (g *Graph) Name() string { return "graph" }

func (g *Graph) Write(ctx context.Context, result *pipeline.Result) error {
	return g.projector.Project(ctx, graph.Projection{
		RunID:    result.RunID,
		Accounts: result.CustomerAccounts(),
		Matches:  result.Matches,
	})
}
