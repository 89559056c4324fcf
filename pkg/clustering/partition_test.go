package clustering

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/bramble/pkg/models"
)

func match(a, b string) models.MatchDecision {
	return models.MatchDecision{AID: a, BID: b, Label: "RULE_01"}
}

// propagateMinimum is the naive fixpoint formulation: every node repeatedly takes the
// minimum label among its neighbors until nothing changes.
func propagateMinimum(ids []string, decisions []models.MatchDecision) map[string]string {
	label := make(map[string]string, len(ids))
	for _, id := range ids {
		label[id] = id
	}
	for changed := true; changed; {
		changed = false
		for _, d := range decisions {
			if !d.Label.IsMatch() {
				continue
			}
			a, b := label[d.AID], label[d.BID]
			switch {
			case a < b:
				label[d.BID] = a
				changed = true
			case b < a:
				label[d.AID] = b
				changed = true
			}
		}
	}
	return label
}

func TestBuild_Transitivity(t *testing.T) {
	// A-B and B-C match; A-C was never a candidate
	p := Build([]string{"C", "B", "A", "D"}, []models.MatchDecision{match("A", "B"), match("B", "C")})

	assert.Equal(t, map[string]string{"A": "A", "B": "A", "C": "A", "D": "D"}, p.Mapping())
	assert.Equal(t, []models.Cluster{
		{CustomerID: "A", Members: []string{"A", "B", "C"}},
		{CustomerID: "D", Members: []string{"D"}},
	}, p.Clusters())
	assert.Equal(t, 0, p.Ignored)
}

func TestBuild_MinimumIsGlobalNotOneHop(t *testing.T) {
	// chain Z - Y - X - A: a one-hop minimum would leave Z labelled Y
	p := Build([]string{"A", "X", "Y", "Z"}, []models.MatchDecision{match("Y", "Z"), match("X", "Y"), match("A", "X")})

	for _, id := range []string{"A", "X", "Y", "Z"} {
		got, ok := p.CustomerID(id)
		require.True(t, ok)
		assert.Equal(t, "A", got, id)
	}
}

func TestBuild_NoMatchAndSingletons(t *testing.T) {
	decisions := []models.MatchDecision{
		{AID: "A", BID: "B", Label: models.NoMatch},
		match("C", "D"),
	}
	p := Build([]string{"A", "B", "C", "D", "E"}, decisions)

	assert.Equal(t, "A", p.Mapping()["A"])
	assert.Equal(t, "B", p.Mapping()["B"])
	assert.Equal(t, "C", p.Mapping()["D"])
	assert.Equal(t, "E", p.Mapping()["E"])
	assert.Equal(t, 4, len(p.Clusters()))
	assert.Equal(t, 1, p.MultiMemberCount())
	assert.Equal(t, []models.Edge{{Src: "C", Tgt: "D"}, {Src: "D", Tgt: "C"}}, p.Edges())
}

func TestBuild_Empty(t *testing.T) {
	p := Build(nil, nil)
	assert.Empty(t, p.Mapping())
	assert.Empty(t, p.Clusters())
	assert.Empty(t, p.MultiMember(10))
	assert.Equal(t, 0, p.Accounts())
}

func TestBuild_UnknownAccountsIgnored(t *testing.T) {
	p := Build([]string{"A", "B"}, []models.MatchDecision{match("A", "Q"), match("A", "B")})
	assert.Equal(t, 1, p.Ignored)
	assert.Equal(t, 2, p.Size("A"))
	_, ok := p.CustomerID("Q")
	assert.False(t, ok)
}

func TestBuild_DuplicateIDs(t *testing.T) {
	p := Build([]string{"A", "A", "B"}, nil)
	assert.Equal(t, 2, p.Accounts())
	assert.Equal(t, 1, p.Size("A"))
}

func TestPartition_MultiMember(t *testing.T) {
	decisions := []models.MatchDecision{
		match("B", "C"),
		match("D", "E"), match("E", "F"),
		match("G", "H"),
	}
	p := Build([]string{"A", "B", "C", "D", "E", "F", "G", "H"}, decisions)

	got := p.MultiMember(0)
	require.Len(t, got, 3)
	assert.Equal(t, "D", got[0].CustomerID)
	assert.Equal(t, 3, got[0].Size())
	assert.Equal(t, "B", got[1].CustomerID)
	assert.Equal(t, "G", got[2].CustomerID)

	capped := p.MultiMember(2)
	require.Len(t, capped, 2)
	assert.Equal(t, "B", capped[1].CustomerID)

	assert.Equal(t, []models.ClusterSize{
		{CustomerID: "A", MemberCount: 1},
		{CustomerID: "B", MemberCount: 2},
		{CustomerID: "D", MemberCount: 3},
		{CustomerID: "G", MemberCount: 2},
	}, p.Sizes())

	c, ok := p.Cluster("D")
	require.True(t, ok)
	assert.Equal(t, []string{"D", "E", "F"}, c.Members)
	assert.Equal(t, 0, p.Size("E"))
}

func TestBuild_MatchesFixpoint(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 20; round++ {
		n := 5 + rng.Intn(60)
		ids := make([]string, n)
		for i := range ids {
			ids[i] = fmt.Sprintf("ACC_%03d", rng.Intn(1000))
		}

		var decisions []models.MatchDecision
		for e := rng.Intn(n); e > 0; e-- {
			a, b := ids[rng.Intn(n)], ids[rng.Intn(n)]
			if a == b {
				continue
			}
			if a > b {
				a, b = b, a
			}
			decisions = append(decisions, match(a, b))
		}

		assert.Equal(t, propagateMinimum(ids, decisions), Build(ids, decisions).Mapping(), "round %d", round)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	ids := []string{"E", "A", "D", "B", "C"}
	decisions := []models.MatchDecision{match("D", "E"), match("A", "C")}

	first := Build(ids, decisions)
	reversed := []models.MatchDecision{decisions[1], decisions[0]}
	second := Build([]string{"C", "B", "D", "A", "E"}, reversed)

	assert.Equal(t, first.Mapping(), second.Mapping())
	assert.Equal(t, first.Clusters(), second.Clusters())
	assert.Equal(t, first.Edges(), second.Edges())
}

func TestUnionFind(t *testing.T) {
	uf := newUnionFind(4)
	assert.True(t, uf.union(0, 1))
	assert.True(t, uf.union(2, 3))
	assert.False(t, uf.union(1, 0))
	assert.True(t, uf.union(1, 3))
	assert.Equal(t, uf.find(0), uf.find(2))
}
