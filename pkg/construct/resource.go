package construct

type Resource struct {
	ID    ResourceId
	Attrs Attributes
}

func NewResource(kind ResourceKind, name string, attrs Attributes) *Resource {
	return &Resource{ID: Id(kind, name), Attrs: attrs}
}

// Label is the display name with the id name as fallback, so a resource is
// always renderable even when the producer had nothing better than the id.
func (r *Resource) Label() string {
	if r.Attrs != nil {
		if name := r.Attrs.DisplayName(); name != "" {
			return name
		}
	}
	return r.ID.Name
}

func (r *Resource) Placement() PlacementKeys {
	if r.Attrs == nil {
		return PlacementKeys{}
	}
	return r.Attrs.Placement()
}
