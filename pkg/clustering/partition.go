// Package clustering groups matched accounts into customers. Each connected component of the
// match graph becomes one customer whose ID is the lowest account ID in the component.
package clustering

import (
	"sort"

	"github.com/Ramsey-B/bramble/pkg/models"
)

// DefaultReviewLimit caps MultiMember listings when no limit is given
const DefaultReviewLimit = 100

// Partition is the result of clustering: every account belongs to exactly one cluster
type Partition struct {
	mapping  map[string]string
	clusters []models.Cluster
	index    map[string]int
	edges    []models.Edge

	// Ignored counts match decisions that referenced an account outside the vertex set
	Ignored int
}

// Build computes connected components over accountIDs using the matching decisions as
// edges. NO_MATCH decisions are skipped. Duplicate account IDs collapse to one vertex.
func Build(accountIDs []string, decisions []models.MatchDecision) *Partition {
	ids := distinctSorted(accountIDs)
	pos := make(map[string]int, len(ids))
	for i, id := range ids {
		pos[id] = i
	}

	p := &Partition{}
	uf := newUnionFind(len(ids))
	for _, d := range decisions {
		if !d.Label.IsMatch() {
			continue
		}
		a, okA := pos[d.AID]
		b, okB := pos[d.BID]
		if !okA || !okB {
			p.Ignored++
			continue
		}
		uf.union(a, b)
		p.edges = append(p.edges, models.Edge{Src: d.AID, Tgt: d.BID}, models.Edge{Src: d.BID, Tgt: d.AID})
	}
	sort.Slice(p.edges, func(i, j int) bool {
		if p.edges[i].Src != p.edges[j].Src {
			return p.edges[i].Src < p.edges[j].Src
		}
		return p.edges[i].Tgt < p.edges[j].Tgt
	})

	// ids are ascending, so the first member seen for a root is the component minimum
	// and clusters are discovered in customer ID order
	p.mapping = make(map[string]string, len(ids))
	p.index = make(map[string]int)
	byRoot := make(map[int]int)
	for i, id := range ids {
		root := uf.find(i)
		ci, ok := byRoot[root]
		if !ok {
			ci = len(p.clusters)
			byRoot[root] = ci
			p.clusters = append(p.clusters, models.Cluster{CustomerID: id})
			p.index[id] = ci
		}
		p.clusters[ci].Members = append(p.clusters[ci].Members, id)
		p.mapping[id] = p.clusters[ci].CustomerID
	}

	return p
}

// Mapping returns a copy of the account ID -> customer ID mapping
func (p *Partition) Mapping() map[string]string {
	out := make(map[string]string, len(p.mapping))
	for k, v := range p.mapping {
		out[k] = v
	}
	return out
}

// CustomerID returns the customer an account belongs to
func (p *Partition) CustomerID(accountID string) (string, bool) {
	id, ok := p.mapping[accountID]
	return id, ok
}

// Accounts returns the number of accounts in the partition
func (p *Partition) Accounts() int {
	return len(p.mapping)
}

// Clusters returns every cluster ordered by customer ID
func (p *Partition) Clusters() []models.Cluster {
	out := make([]models.Cluster, len(p.clusters))
	copy(out, p.clusters)
	return out
}

// Cluster returns one cluster by customer ID
func (p *Partition) Cluster(customerID string) (models.Cluster, bool) {
	ci, ok := p.index[customerID]
	if !ok {
		return models.Cluster{}, false
	}
	return p.clusters[ci], true
}

// Size returns the member count of a customer, 0 when unknown
func (p *Partition) Size(customerID string) int {
	c, ok := p.Cluster(customerID)
	if !ok {
		return 0
	}
	return c.Size()
}

// Sizes returns the member count of every customer, ordered by customer ID
func (p *Partition) Sizes() []models.ClusterSize {
	out := make([]models.ClusterSize, 0, len(p.clusters))
	for _, c := range p.clusters {
		out = append(out, models.ClusterSize{CustomerID: c.CustomerID, MemberCount: c.Size()})
	}
	return out
}

// MultiMember returns clusters with more than one member, largest first and then by
// customer ID, capped at limit. A limit <= 0 uses DefaultReviewLimit.
func (p *Partition) MultiMember(limit int) []models.Cluster {
	if limit <= 0 {
		limit = DefaultReviewLimit
	}

	var out []models.Cluster
	for _, c := range p.clusters {
		if c.Size() > 1 {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Size() > out[j].Size()
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// MultiMemberCount returns how many clusters have more than one member
func (p *Partition) MultiMemberCount() int {
	n := 0
	for _, c := range p.clusters {
		if c.Size() > 1 {
			n++
		}
	}
	return n
}

// Edges returns the match edges in both directions, ordered by (Src, Tgt)
func (p *Partition) Edges() []models.Edge {
	out := make([]models.Edge, len(p.edges))
	copy(out, p.edges)
	return out
}

func distinctSorted(ids []string) []string {
	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)

	out := sorted[:0]
	for _, id := range sorted {
		if len(out) > 0 && out[len(out)-1] == id {
			continue
		}
		out = append(out, id)
	}
	return out
}
