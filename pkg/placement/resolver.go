package placement

import (
	"fmt"
	"sort"

	"github.com/cloudsketch/cloudsketch/pkg/construct"
	"go.uber.org/zap"
)

const unknownZone = "unknown"

// Resolve maps every resource in the store to exactly one bucket of the
// containment hierarchy: subnet if its first declared subnet id resolves,
// else the owning VPC's item bucket, else an external per-kind bucket.
// Malformed or missing placement keys never fail; they degrade down that
// chain so a diagram always comes out of a partial inventory.
func Resolve(store *construct.Store, region string) *Hierarchy {
	log := zap.S().Named("placement")

	h := &Hierarchy{
		Cloud:       &Node{Kind: Cloud, ID: "cloud", Label: "AWS Cloud"},
		assignments: make(map[construct.ResourceId]*Node),
	}
	if region == "" {
		region = unknownZone
	}
	regionNode := h.Cloud.child(Region, region, "Region "+region)
	h.external = h.Cloud.child(External, "external", "External Resources")

	subnetBuckets := make(map[string]*Node)
	vpcBuckets := make(map[string]*Node)

	for _, vpc := range store.Kind(construct.Vpc) {
		attrs, _ := vpc.Attrs.(construct.VpcAttrs)
		label := vpc.Label()
		if attrs.CidrBlock != "" {
			label = fmt.Sprintf("%s (%s)", label, attrs.CidrBlock)
		}
		vpcNode := regionNode.child(VpcContainer, vpc.ID.Name, label)
		vpcNode.Resource = vpc
		h.assignments[vpc.ID] = vpcNode

		buildZones(store, vpc.ID.Name, vpcNode, h, subnetBuckets)

		items := vpcNode.child(VpcItems, vpc.ID.Name+"/items", "")
		vpcBuckets[vpc.ID.Name] = items
	}

	kindBuckets := make(map[construct.ResourceKind]*Node)
	for _, r := range store.All() {
		if r.ID.Kind.Container() {
			continue
		}
		keys := r.Placement()

		// First-subnet tie-break: multi-AZ resources are drawn in one AZ.
		if len(keys.SubnetIds) > 0 {
			if bucket, ok := subnetBuckets[keys.SubnetIds[0]]; ok {
				bucket.Resources = append(bucket.Resources, r)
				h.assignments[r.ID] = bucket
				continue
			}
			log.Debugf("%s: subnet %s not in inventory, falling back", r.ID, keys.SubnetIds[0])
		}
		if keys.VpcId != "" {
			if bucket, ok := vpcBuckets[keys.VpcId]; ok {
				bucket.Resources = append(bucket.Resources, r)
				h.assignments[r.ID] = bucket
				continue
			}
			log.Debugf("%s: vpc %s not in inventory, placing external", r.ID, keys.VpcId)
		}

		bucket, ok := kindBuckets[r.ID.Kind]
		if !ok {
			bucket = h.external.child(KindBucket, string(r.ID.Kind), string(r.ID.Kind))
			kindBuckets[r.ID.Kind] = bucket
		}
		bucket.Resources = append(bucket.Resources, r)
		h.assignments[r.ID] = bucket
	}

	log.Debugf("placed %d resources across %d VPCs", len(h.assignments), len(vpcBuckets))
	return h
}

// buildZones groups a VPC's subnets by availability zone. Zones sort by
// name; subnets keep store order within a zone. Subnets without a zone land
// in an "unknown" zone bucket rather than failing.
func buildZones(store *construct.Store, vpcId string, vpcNode *Node, h *Hierarchy, subnetBuckets map[string]*Node) {
	zones := make(map[string][]*construct.Resource)
	for _, subnet := range store.Kind(construct.Subnet) {
		attrs, _ := subnet.Attrs.(construct.SubnetAttrs)
		if attrs.VpcId != vpcId {
			continue
		}
		az := attrs.AvailabilityZone
		if az == "" {
			az = unknownZone
		}
		zones[az] = append(zones[az], subnet)
	}

	names := make([]string, 0, len(zones))
	for az := range zones {
		names = append(names, az)
	}
	sort.Strings(names)

	for _, az := range names {
		zoneNode := vpcNode.child(Zone, az, "Availability Zone "+shortZone(az))
		for _, subnet := range zones[az] {
			attrs, _ := subnet.Attrs.(construct.SubnetAttrs)
			subnetNode := zoneNode.child(SubnetContainer, subnet.ID.Name, subnetLabel(subnet, attrs))
			subnetNode.Resource = subnet
			subnetNode.Public = attrs.IsPublic
			subnetBuckets[subnet.ID.Name] = subnetNode
			h.assignments[subnet.ID] = subnetNode
		}
	}
}

func subnetLabel(subnet *construct.Resource, attrs construct.SubnetAttrs) string {
	label := "Private subnet"
	if attrs.IsPublic {
		label = "Public subnet"
	}
	if name := subnet.Label(); name != subnet.ID.Name {
		label = name
	}
	if attrs.CidrBlock != "" {
		label = fmt.Sprintf("%s %s", label, attrs.CidrBlock)
	}
	return label
}

// shortZone keeps the trailing zone letter ("ap-northeast-1a" -> "1a").
func shortZone(az string) string {
	if az == unknownZone || len(az) < 2 {
		return az
	}
	return az[len(az)-2:]
}
