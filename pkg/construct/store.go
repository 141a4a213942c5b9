package construct

import "sort"

// Store is the single keyed table of discovered resources, written once by a
// producer and read many times by the resolver, grouper, and layout. All
// iteration is in insertion order so every downstream computation is
// reproducible run to run.
type Store struct {
	resources map[ResourceId]*Resource
	order     []ResourceId
	rank      map[ResourceId]int
}

func NewStore() *Store {
	return &Store{
		resources: make(map[ResourceId]*Resource),
		rank:      make(map[ResourceId]int),
	}
}

// Put inserts or overwrites by composite key. Overwriting keeps the original
// insertion slot so a late re-read of the same resource does not shuffle the
// diagram. No attribute validation happens here; producers own the contract.
func (s *Store) Put(kind ResourceKind, name string, attrs Attributes) *Resource {
	r := NewResource(kind, name, attrs)
	if _, exists := s.resources[r.ID]; !exists {
		s.rank[r.ID] = len(s.order)
		s.order = append(s.order, r.ID)
	}
	s.resources[r.ID] = r
	return r
}

func (s *Store) Get(kind ResourceKind, name string) (*Resource, bool) {
	r, ok := s.resources[Id(kind, name)]
	return r, ok
}

func (s *Store) GetId(id ResourceId) (*Resource, bool) {
	r, ok := s.resources[id]
	return r, ok
}

// Kind returns all resources of a kind in insertion order.
func (s *Store) Kind(kind ResourceKind) []*Resource {
	var out []*Resource
	for _, id := range s.order {
		if id.Kind == kind {
			out = append(out, s.resources[id])
		}
	}
	return out
}

// All returns every resource in insertion order.
func (s *Store) All() []*Resource {
	out := make([]*Resource, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.resources[id])
	}
	return out
}

// Rank is the insertion rank of a resource, used as the deterministic
// tie-break in degree sorts. Unknown ids rank after everything.
func (s *Store) Rank(id ResourceId) int {
	if r, ok := s.rank[id]; ok {
		return r
	}
	return len(s.order)
}

func (s *Store) Len() int {
	return len(s.order)
}

// Kinds lists the distinct kinds present, sorted by name.
func (s *Store) Kinds() []ResourceKind {
	seen := make(map[ResourceKind]struct{})
	var kinds []ResourceKind
	for _, id := range s.order {
		if _, ok := seen[id.Kind]; !ok {
			seen[id.Kind] = struct{}{}
			kinds = append(kinds, id.Kind)
		}
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
