package construct

import (
	"fmt"
	"strings"
)

// ResourceId is the composite key for a resource. Names are only unique
// within a kind (an ARN and a plain name can collide across kinds), so the
// store and everything downstream key on the full id.
type ResourceId struct {
	Kind ResourceKind `yaml:"kind" toml:"kind"`
	Name string       `yaml:"name" toml:"name"`
}

func Id(kind ResourceKind, name string) ResourceId {
	return ResourceId{Kind: kind, Name: name}
}

func (id ResourceId) IsZero() bool {
	return id == ResourceId{}
}

func (id ResourceId) String() string {
	return string(id.Kind) + "/" + id.Name
}

func (id ResourceId) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *ResourceId) UnmarshalText(data []byte) error {
	s := string(data)
	kind, name, found := strings.Cut(s, "/")
	if !found || kind == "" || name == "" {
		return fmt.Errorf("invalid resource id '%s': expected kind/name", s)
	}
	id.Kind = ResourceKind(kind)
	id.Name = name
	return nil
}

// SortedIds orders by kind then name, for deterministic output where
// insertion order is not available.
type SortedIds []ResourceId

func (s SortedIds) Len() int      { return len(s) }
func (s SortedIds) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s SortedIds) Less(i, j int) bool {
	if s[i].Kind != s[j].Kind {
		return s[i].Kind < s[j].Kind
	}
	return s[i].Name < s[j].Name
}
