package grouping

import (
	"sort"

	"github.com/cloudsketch/cloudsketch/pkg/construct"
	"go.uber.org/zap"
)

type (
	// Group is a hub resource with its immediate neighborhood: parents have
	// an edge into the hub, children have an edge out of it. Groups are
	// 1-hop ego networks on purpose; collapsing whole connected components
	// would swallow the entire diagram into one unreadable cluster.
	Group struct {
		Hub      *construct.Resource
		Parents  []*construct.Resource
		Children []*construct.Resource
	}

	// Result partitions the store: every resource lands in exactly one
	// group or in Orphans, never both, never neither.
	Result struct {
		Groups  []Group
		Orphans []*construct.Resource
	}
)

// Build clusters the non-hierarchical relationship graph around high-degree
// hubs. Hierarchical edge kinds are excluded up front; they are already
// expressed by the containment hierarchy and would only add noise here.
//
// Resources are processed in descending degree order with insertion rank as
// the tie-break. The order is load-bearing: it decides which resources end
// up grouped versus orphaned, and tests pin it.
func Build(store *construct.Store, rels *construct.RelationshipSet) Result {
	type adjacency struct {
		out []construct.ResourceId
		in  []construct.ResourceId
	}
	adj := make(map[construct.ResourceId]*adjacency)
	neighbors := func(id construct.ResourceId) *adjacency {
		a, ok := adj[id]
		if !ok {
			a = &adjacency{}
			adj[id] = a
		}
		return a
	}

	for _, rel := range rels.Dedupe() {
		if rel.Kind.Hierarchical() {
			continue
		}
		// Dangling endpoints are tolerated everywhere else, so tolerate
		// them here too: only edges between stored resources count.
		if _, ok := store.GetId(rel.Source); !ok {
			continue
		}
		if _, ok := store.GetId(rel.Target); !ok {
			continue
		}
		neighbors(rel.Source).out = append(neighbors(rel.Source).out, rel.Target)
		neighbors(rel.Target).in = append(neighbors(rel.Target).in, rel.Source)
	}

	order := make([]construct.ResourceId, 0, len(adj))
	for id := range adj {
		order = append(order, id)
	}
	sort.Slice(order, func(i, j int) bool {
		di := len(adj[order[i]].out) + len(adj[order[i]].in)
		dj := len(adj[order[j]].out) + len(adj[order[j]].in)
		if di != dj {
			return di > dj
		}
		return store.Rank(order[i]) < store.Rank(order[j])
	})

	claimed := make(map[construct.ResourceId]bool)
	var groups []Group
	for _, hubId := range order {
		if claimed[hubId] {
			continue
		}
		hub, _ := store.GetId(hubId)

		var children, parents []*construct.Resource
		for _, id := range uniqueIds(adj[hubId].out) {
			if claimed[id] || id == hubId {
				continue
			}
			r, _ := store.GetId(id)
			children = append(children, r)
		}
		for _, id := range uniqueIds(adj[hubId].in) {
			if claimed[id] || id == hubId {
				continue
			}
			r, _ := store.GetId(id)
			parents = append(parents, r)
		}

		// All neighbors already taken by higher-degree hubs: no group, and
		// the would-be hub stays available to become an orphan.
		if len(children) == 0 && len(parents) == 0 {
			continue
		}

		claimed[hubId] = true
		for _, r := range children {
			claimed[r.ID] = true
		}
		for _, r := range parents {
			claimed[r.ID] = true
		}
		groups = append(groups, Group{Hub: hub, Parents: parents, Children: children})
	}

	var orphans []*construct.Resource
	for _, r := range store.All() {
		if !claimed[r.ID] {
			orphans = append(orphans, r)
		}
	}

	zap.S().Named("grouping").Debugf("built %d groups, %d orphans", len(groups), len(orphans))
	return Result{Groups: groups, Orphans: orphans}
}

// uniqueIds keeps first occurrences, preserving adjacency append order so
// parent/child ordering follows relationship insertion order.
func uniqueIds(ids []construct.ResourceId) []construct.ResourceId {
	seen := make(map[construct.ResourceId]struct{}, len(ids))
	var out []construct.ResourceId
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
