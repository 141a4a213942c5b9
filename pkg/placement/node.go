package placement

import (
	"github.com/cloudsketch/cloudsketch/pkg/construct"
)

// ContainerKind tags a level of the containment hierarchy.
type ContainerKind string

const (
	Cloud           ContainerKind = "cloud"
	Region          ContainerKind = "region"
	VpcContainer    ContainerKind = "vpc"
	Zone            ContainerKind = "availability_zone"
	SubnetContainer ContainerKind = "subnet"
	// VpcItems holds resources that are VPC-scoped but carry no resolvable
	// subnet (target groups, security group summaries, gateways).
	VpcItems ContainerKind = "vpc_items"
	External ContainerKind = "external"
	// KindBucket partitions the external area by resource kind so the
	// layout can aggregate same-kind resources into one summary node.
	KindBucket ContainerKind = "kind_bucket"
)

// Node is one container in the hierarchy. Bounding boxes are assigned later
// by the layout engine; the resolver only decides membership.
type Node struct {
	Kind  ContainerKind
	ID    string
	Label string
	// Resource backs vpc and subnet containers; nil for synthetic levels.
	Resource *construct.Resource
	// Public is meaningful for subnet containers only.
	Public bool

	Children  []*Node
	Resources []*construct.Resource
}

func (n *Node) child(kind ContainerKind, id, label string) *Node {
	c := &Node{Kind: kind, ID: id, Label: label}
	n.Children = append(n.Children, c)
	return c
}

// Walk visits the node and all descendants in document order.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Path identifies a bucket for test fixtures and debug logging, e.g.
// "cloud/region/vpc-1/ap-northeast-1a/subnet-a".
func (n *Node) Path(parent string) string {
	if parent == "" {
		return n.ID
	}
	return parent + "/" + n.ID
}

// Hierarchy is the resolver output: a single containment tree plus the
// bucket assignment of every placed resource.
type Hierarchy struct {
	Cloud *Node

	assignments map[construct.ResourceId]*Node
	external    *Node
}

// BucketFor returns the bucket a resource landed in. Container-kind
// resources (VPCs, subnets) resolve to their own container node.
func (h *Hierarchy) BucketFor(id construct.ResourceId) (*Node, bool) {
	n, ok := h.assignments[id]
	return n, ok
}

func (h *Hierarchy) External() *Node {
	return h.external
}

// Assignments renders every placement as "resource-id -> bucket path",
// sorted, for byte-stable comparison in tests.
func (h *Hierarchy) Assignments() map[string]string {
	paths := make(map[*Node]string)
	var walk func(n *Node, parent string)
	walk = func(n *Node, parent string) {
		paths[n] = n.Path(parent)
		for _, c := range n.Children {
			walk(c, paths[n])
		}
	}
	walk(h.Cloud, "")

	out := make(map[string]string, len(h.assignments))
	for id, n := range h.assignments {
		out[id.String()] = paths[n]
	}
	return out
}
