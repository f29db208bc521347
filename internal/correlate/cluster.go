package correlate

import (
	"sort"

	"github.com/nao1215/handletrace/internal/model"
)

// unionFind is a plain disjoint-set over account keys with path
// compression and union by size.
type unionFind struct {
	parent map[string]string
	size   map[string]int
}

func newUnionFind() *unionFind {
	return &unionFind{
		parent: make(map[string]string),
		size:   make(map[string]int),
	}
}

func (u *unionFind) add(key string) {
	if _, ok := u.parent[key]; !ok {
		u.parent[key] = key
		u.size[key] = 1
	}
}

func (u *unionFind) find(key string) string {
	root := key
	for u.parent[root] != root {
		root = u.parent[root]
	}
	for u.parent[key] != root {
		u.parent[key], key = root, u.parent[key]
	}
	return root
}

func (u *unionFind) union(a, b string) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if u.size[ra] < u.size[rb] {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
	u.size[ra] += u.size[rb]
}

// Cluster groups accounts into identity clusters: the transitive closure
// of matching edges. Every account participates in the union-find, but
// only components with at least two members become clusters. Cluster IDs
// are assigned in order of the sorted first member, so output is stable
// across runs.
func Cluster(accounts []*model.Account, edges []model.CorrelationEdge) []model.IdentityCluster {
	uf := newUnionFind()
	for _, account := range accounts {
		uf.add(account.Key())
	}
	for _, edge := range edges {
		if !edge.Match {
			continue
		}
		uf.add(edge.AccountA)
		uf.add(edge.AccountB)
		uf.union(edge.AccountA, edge.AccountB)
	}

	members := make(map[string][]string)
	for _, account := range accounts {
		root := uf.find(account.Key())
		members[root] = append(members[root], account.Key())
	}

	var groups [][]string
	for _, group := range members {
		if len(group) < 2 {
			continue
		}
		sort.Strings(group)
		groups = append(groups, group)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i][0] < groups[j][0] })

	clusters := make([]model.IdentityCluster, 0, len(groups))
	for i, group := range groups {
		cluster := model.IdentityCluster{
			ID:       i + 1,
			Accounts: group,
		}
		cluster.Confidence, cluster.Evidence = clusterConfidence(group, edges)
		clusters = append(clusters, cluster)
	}
	return clusters
}

// clusterConfidence is the mean weighted score of the cluster's internal
// matching edges, with their evidence notes aggregated.
func clusterConfidence(group []string, edges []model.CorrelationEdge) (float64, []string) {
	inCluster := make(map[string]struct{}, len(group))
	for _, key := range group {
		inCluster[key] = struct{}{}
	}

	var sum float64
	var count int
	var evidence []string
	for _, edge := range edges {
		if !edge.Match {
			continue
		}
		if _, okA := inCluster[edge.AccountA]; !okA {
			continue
		}
		if _, okB := inCluster[edge.AccountB]; !okB {
			continue
		}
		sum += edge.WeightedScore
		count++
		evidence = append(evidence, edge.Evidence...)
	}
	if count == 0 {
		return 0, nil
	}
	return sum / float64(count), evidence
}
