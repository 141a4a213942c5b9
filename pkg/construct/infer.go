package construct

import "fmt"

// InferRelationships derives the edge list from resource attributes alone,
// so any producer of a Store (live account reader, template importer) gets
// the same relationships without re-implementing the rules. Edges pointing
// at resources missing from the store are still emitted; consumers filter
// dangling endpoints themselves.
func InferRelationships(store *Store) *RelationshipSet {
	rels := NewRelationshipSet()

	for _, r := range store.All() {
		switch attrs := r.Attrs.(type) {
		case SubnetAttrs:
			if attrs.VpcId != "" {
				rels.Add(r.ID, Id(Vpc, attrs.VpcId), BelongsTo, "")
			}
		case InternetGatewayAttrs:
			if attrs.AttachedVpcId != "" {
				rels.Add(r.ID, Id(Vpc, attrs.AttachedVpcId), AttachedTo, "")
			}
		case NatGatewayAttrs:
			addPlacement(rels, r.ID, r.Placement())
		case SecurityGroupAttrs:
			if attrs.VpcId != "" {
				rels.Add(r.ID, Id(Vpc, attrs.VpcId), InVpc, "")
			}
		case VpcEndpointAttrs:
			addPlacement(rels, r.ID, r.Placement())
		case InstanceAttrs:
			addPlacement(rels, r.ID, r.Placement())
		case ContainerServiceAttrs:
			if attrs.Cluster != "" {
				rels.Add(r.ID, Id(ContainerCluster, attrs.Cluster), InCluster, "")
			}
			addPlacement(rels, r.ID, r.Placement())
		case FunctionAttrs:
			addPlacement(rels, r.ID, r.Placement())
			for _, src := range attrs.EventSources {
				rels.Add(src, r.ID, Triggers, "invokes")
			}
		case DatabaseAttrs:
			addPlacement(rels, r.ID, r.Placement())
		case LoadBalancerAttrs:
			addPlacement(rels, r.ID, r.Placement())
			for _, tg := range attrs.TargetGroups {
				rels.Add(r.ID, Id(TargetGroup, tg), RoutesTo, "forwards")
			}
		case TargetGroupAttrs:
			if attrs.VpcId != "" {
				rels.Add(r.ID, Id(Vpc, attrs.VpcId), InVpc, "")
			}
			label := ""
			if attrs.Protocol != "" && attrs.Port > 0 {
				label = fmt.Sprintf("%s:%d", attrs.Protocol, attrs.Port)
			}
			for _, target := range attrs.Targets {
				rels.Add(r.ID, target, Targets, label)
			}
		}
	}
	return rels
}

// addPlacement emits in_subnet for every declared subnet plus in_vpc when
// the VPC is known. The resolver only consumes the first subnet for drawing;
// the rest still matter to relationship mode.
func addPlacement(rels *RelationshipSet, id ResourceId, keys PlacementKeys) {
	for _, subnet := range keys.SubnetIds {
		rels.Add(id, Id(Subnet, subnet), InSubnet, "")
	}
	if keys.VpcId != "" {
		rels.Add(id, Id(Vpc, keys.VpcId), InVpc, "")
	}
}
