package construct

// RelationshipKind is the closed edge vocabulary. Consumers switch on it
// exhaustively; adding a kind means revisiting the style table in layout and
// nothing else.
type RelationshipKind string

const (
	BelongsTo         RelationshipKind = "belongs_to"
	AttachedTo        RelationshipKind = "attached_to"
	InSubnet          RelationshipKind = "in_subnet"
	InVpc             RelationshipKind = "in_vpc"
	InCluster         RelationshipKind = "in_cluster"
	RoutesTo          RelationshipKind = "routes_to"
	Targets           RelationshipKind = "targets"
	Triggers          RelationshipKind = "triggers"
	UsesSecurityGroup RelationshipKind = "uses_sg"
)

// Hierarchical reports whether the edge is already expressed by the
// containment hierarchy; these are excluded from relationship grouping.
func (k RelationshipKind) Hierarchical() bool {
	return k == BelongsTo || k == InSubnet || k == InVpc
}

// Implied reports whether drawing the edge inside a hierarchical diagram
// would only restate the container nesting.
func (k RelationshipKind) Implied() bool {
	return k == BelongsTo || k == InVpc
}

type Relationship struct {
	Source ResourceId
	Target ResourceId
	Kind   RelationshipKind
	Label  string
}

type relKey struct {
	source ResourceId
	target ResourceId
	kind   RelationshipKind
}

// RelationshipSet is the append-only edge list. Duplicates are permitted on
// Add; forward and reverse indices are maintained incrementally so adjacency
// lookups during grouping stay amortized O(1) instead of rescanning the list
// per query.
type RelationshipSet struct {
	all      []Relationship
	bySource map[ResourceId][]int
	byTarget map[ResourceId][]int
}

func NewRelationshipSet() *RelationshipSet {
	return &RelationshipSet{
		bySource: make(map[ResourceId][]int),
		byTarget: make(map[ResourceId][]int),
	}
}

func (s *RelationshipSet) Add(source, target ResourceId, kind RelationshipKind, label string) {
	i := len(s.all)
	s.all = append(s.all, Relationship{Source: source, Target: target, Kind: kind, Label: label})
	s.bySource[source] = append(s.bySource[source], i)
	s.byTarget[target] = append(s.byTarget[target], i)
}

// All returns every relationship in append order, duplicates included.
func (s *RelationshipSet) All() []Relationship {
	out := make([]Relationship, len(s.all))
	copy(out, s.all)
	return out
}

func (s *RelationshipSet) BySource(id ResourceId) []Relationship {
	return s.collect(s.bySource[id])
}

func (s *RelationshipSet) ByTarget(id ResourceId) []Relationship {
	return s.collect(s.byTarget[id])
}

func (s *RelationshipSet) collect(idxs []int) []Relationship {
	if len(idxs) == 0 {
		return nil
	}
	out := make([]Relationship, len(idxs))
	for i, idx := range idxs {
		out[i] = s.all[idx]
	}
	return out
}

func (s *RelationshipSet) Len() int {
	return len(s.all)
}

// Dedupe returns the relationships de-duplicated by (source, target, kind)
// in first-occurrence order. Renderers always consume the deduped view to
// avoid overdrawn edges.
func (s *RelationshipSet) Dedupe() []Relationship {
	seen := make(map[relKey]struct{}, len(s.all))
	var out []Relationship
	for _, rel := range s.all {
		key := relKey{rel.Source, rel.Target, rel.Kind}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rel)
	}
	return out
}
