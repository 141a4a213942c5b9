package layout

import (
	"testing"

	"github.com/cloudsketch/cloudsketch/pkg/construct"
	"github.com/cloudsketch/cloudsketch/pkg/placement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// vpcFixture is one VPC with a public subnet holding a NAT gateway and a
// private subnet holding three instances.
func vpcFixture() (*construct.Store, *construct.RelationshipSet) {
	s := construct.NewStore()
	rels := construct.NewRelationshipSet()

	vpc := s.Put(construct.Vpc, "vpc-1", construct.VpcAttrs{Name: "main", CidrBlock: "10.0.0.0/16"})
	pub := s.Put(construct.Subnet, "subnet-a", construct.SubnetAttrs{
		Name: "subnet-a", VpcId: "vpc-1", AvailabilityZone: "us-east-1a", IsPublic: true,
	})
	priv := s.Put(construct.Subnet, "subnet-b", construct.SubnetAttrs{
		Name: "subnet-b", VpcId: "vpc-1", AvailabilityZone: "us-east-1b",
	})
	nat := s.Put(construct.NatGateway, "nat-1", construct.NatGatewayAttrs{
		Name: "nat-1", VpcId: "vpc-1", SubnetId: "subnet-a",
	})

	rels.Add(pub.ID, vpc.ID, construct.BelongsTo, "")
	rels.Add(priv.ID, vpc.ID, construct.BelongsTo, "")
	rels.Add(nat.ID, pub.ID, construct.InSubnet, "")

	for _, name := range []string{"i-1", "i-2", "i-3"} {
		i := s.Put(construct.Instance, name, construct.InstanceAttrs{
			Name: name, SubnetId: "subnet-b", VpcId: "vpc-1",
		})
		rels.Add(i.ID, priv.ID, construct.InSubnet, "")
		rels.Add(i.ID, vpc.ID, construct.InVpc, "")
	}
	return s, rels
}

func findNode(d *Diagram, id string) *Node {
	for _, n := range d.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

func findContainer(d *Diagram, id string) *Container {
	for _, c := range d.Containers {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func inside(outer, inner Box) bool {
	return inner.X >= outer.X && inner.Y >= outer.Y &&
		inner.X+inner.W <= outer.X+outer.W &&
		inner.Y+inner.H <= outer.Y+outer.H
}

func TestLayoutHierarchy_collapsesLargeKindGroups(t *testing.T) {
	require, assert := require.New(t), assert.New(t)

	s, rels := vpcFixture()
	h := placement.Resolve(s, "us-east-1")
	d := NewEngine(DefaultPolicy()).LayoutHierarchy(h, rels)

	// NAT is under the inline threshold and stays individual.
	nat := findNode(d, "nat_gateway/nat-1")
	require.NotNil(nat)
	assert.Equal(1, nat.Count)

	// Three instances exceed the threshold and collapse to one summary.
	summary := findNode(d, "summary:cloud/us-east-1/vpc-1/us-east-1b/subnet-b:instance")
	require.NotNil(summary)
	assert.Equal("EC2 (3 instances)", summary.Label)
	assert.Equal(3, summary.Count)
	assert.Nil(findNode(d, "instance/i-1"))

	assert.Len(d.Nodes, 2)
}

func TestLayoutHierarchy_containerNesting(t *testing.T) {
	require, assert := require.New(t), assert.New(t)

	s, rels := vpcFixture()
	h := placement.Resolve(s, "us-east-1")
	d := NewEngine(DefaultPolicy()).LayoutHierarchy(h, rels)

	// cloud, region, vpc, two zones, two subnets. The empty VPC item bucket
	// and the empty external area render nothing.
	assert.Len(d.Containers, 7)
	assert.Nil(findContainer(d, "cloud/external"))
	assert.Nil(findContainer(d, "cloud/us-east-1/vpc-1/vpc-1/items"))

	cloud := findContainer(d, "cloud")
	region := findContainer(d, "cloud/us-east-1")
	vpc := findContainer(d, "cloud/us-east-1/vpc-1")
	pub := findContainer(d, "cloud/us-east-1/vpc-1/us-east-1a/subnet-a")
	priv := findContainer(d, "cloud/us-east-1/vpc-1/us-east-1b/subnet-b")
	require.NotNil(cloud)
	require.NotNil(region)
	require.NotNil(vpc)
	require.NotNil(pub)
	require.NotNil(priv)

	assert.True(pub.Public)
	assert.False(priv.Public)
	assert.Equal("main (10.0.0.0/16)", vpc.Label)

	assert.True(inside(cloud.Box, region.Box))
	assert.True(inside(region.Box, vpc.Box))
	assert.True(inside(vpc.Box, pub.Box))
	assert.True(inside(vpc.Box, priv.Box))

	nat := findNode(d, "nat_gateway/nat-1")
	require.NotNil(nat)
	assert.True(inside(pub.Box, nat.Box))

	// Paint order is outermost first.
	assert.Equal("cloud", d.Containers[0].ID)
	assert.Equal(0, d.Containers[0].Depth)

	assert.Greater(d.Width, vpc.Box.W)
	assert.Greater(d.Height, vpc.Box.H)
}

func TestLayoutHierarchy_edgesRemapToSummariesAndContainers(t *testing.T) {
	require, assert := require.New(t), assert.New(t)

	s, rels := vpcFixture()
	h := placement.Resolve(s, "us-east-1")
	d := NewEngine(DefaultPolicy()).LayoutHierarchy(h, rels)

	// belongs_to and in_vpc are implied by containment and never drawn; the
	// three instance in_subnet edges collapse with their summary node.
	require.Len(d.Edges, 2)

	assert.Equal("nat_gateway/nat-1", d.Edges[0].Source)
	assert.Equal("cloud/us-east-1/vpc-1/us-east-1a/subnet-a", d.Edges[0].Target)
	assert.Equal(construct.InSubnet, d.Edges[0].Kind)

	assert.Equal("summary:cloud/us-east-1/vpc-1/us-east-1b/subnet-b:instance", d.Edges[1].Source)
	assert.Equal("cloud/us-east-1/vpc-1/us-east-1b/subnet-b", d.Edges[1].Target)

	// Every surviving endpoint has a box to route from.
	for _, e := range d.Edges {
		_, ok := d.BoxOf(e.Source)
		assert.True(ok, e.Source)
		_, ok = d.BoxOf(e.Target)
		assert.True(ok, e.Target)
	}
}

func TestLayoutHierarchy_thresholdKeepsSmallGroupsInline(t *testing.T) {
	assert := assert.New(t)

	s, rels := vpcFixture()
	h := placement.Resolve(s, "us-east-1")

	p := DefaultPolicy()
	p.InlineDetailMax = 3
	d := NewEngine(p).LayoutHierarchy(h, rels)

	assert.NotNil(findNode(d, "instance/i-1"))
	assert.NotNil(findNode(d, "instance/i-2"))
	assert.NotNil(findNode(d, "instance/i-3"))
	assert.Nil(findNode(d, "summary:cloud/us-east-1/vpc-1/us-east-1b/subnet-b:instance"))
}

func TestLayoutHierarchy_emptySubnetKeepsPlaceholder(t *testing.T) {
	require, assert := require.New(t), assert.New(t)

	s := construct.NewStore()
	s.Put(construct.Vpc, "vpc-1", construct.VpcAttrs{Name: "vpc"})
	s.Put(construct.Subnet, "subnet-a", construct.SubnetAttrs{
		Name: "subnet-a", VpcId: "vpc-1", AvailabilityZone: "us-east-1a",
	})

	h := placement.Resolve(s, "us-east-1")
	d := NewEngine(DefaultPolicy()).LayoutHierarchy(h, construct.NewRelationshipSet())

	subnet := findContainer(d, "cloud/us-east-1/vpc-1/us-east-1a/subnet-a")
	require.NotNil(subnet)
	assert.Greater(subnet.Box.W, 0.0)
	assert.Empty(d.Nodes)
}

func TestLayoutHierarchy_externalKindBuckets(t *testing.T) {
	require, assert := require.New(t), assert.New(t)

	s := construct.NewStore()
	rels := construct.NewRelationshipSet()
	s.Put(construct.Bucket, "assets", construct.BucketAttrs{Name: "assets"})
	s.Put(construct.Bucket, "logs", construct.BucketAttrs{Name: "logs"})
	s.Put(construct.Bucket, "backups", construct.BucketAttrs{Name: "backups"})
	s.Put(construct.Queue, "jobs", construct.QueueAttrs{Name: "jobs"})

	h := placement.Resolve(s, "us-east-1")
	d := NewEngine(DefaultPolicy()).LayoutHierarchy(h, rels)

	require.NotNil(findContainer(d, "cloud/external"))
	require.NotNil(findContainer(d, "cloud/external/bucket"))
	require.NotNil(findContainer(d, "cloud/external/queue"))

	// Three buckets collapse, one queue stays individual.
	summary := findNode(d, "summary:cloud/external/bucket:bucket")
	require.NotNil(summary)
	assert.Equal("S3 (3)", summary.Label)
	assert.NotNil(findNode(d, "queue/jobs"))
}

func TestLayoutHierarchy_danglingEdgeEndpointsDropped(t *testing.T) {
	assert := assert.New(t)

	s := construct.NewStore()
	rels := construct.NewRelationshipSet()
	fn := s.Put(construct.Function, "fn", construct.FunctionAttrs{Name: "fn"})
	rels.Add(fn.ID, construct.Id(construct.Table, "never-ingested"), construct.Triggers, "")

	h := placement.Resolve(s, "us-east-1")
	d := NewEngine(DefaultPolicy()).LayoutHierarchy(h, rels)

	assert.Empty(d.Edges)
	assert.NotNil(findNode(d, "function/fn"))
}

func TestLayoutHierarchy_deterministic(t *testing.T) {
	assert := assert.New(t)

	s, rels := vpcFixture()
	h := placement.Resolve(s, "us-east-1")
	first := NewEngine(DefaultPolicy()).LayoutHierarchy(h, rels)

	for i := 0; i < 10; i++ {
		next := NewEngine(DefaultPolicy()).LayoutHierarchy(h, rels)
		assert.Equal(len(first.Nodes), len(next.Nodes))
		for j := range first.Nodes {
			assert.Equal(first.Nodes[j].ID, next.Nodes[j].ID)
			assert.Equal(first.Nodes[j].Box, next.Nodes[j].Box)
		}
		assert.Equal(first.Edges, next.Edges)
	}
}

func TestTruncate(t *testing.T) {
	assert := assert.New(t)

	cases := map[string]struct {
		in     string
		budget int
		want   string
	}{
		"short passes through": {"web-server", 16, "web-server"},
		"long is cut":          {"an-instance-name-beyond-budget", 16, "an-instance-name"},
		"exact fits":           {"sixteen-chars-ok", 16, "sixteen-chars-ok"},
		"multibyte safe":       {"データベースサーバー本番環境用", 10, "データベースサーバー"},
		"zero budget disables": {"anything", 0, "anything"},
	}
	for name, tt := range cases {
		assert.Equal(tt.want, Truncate(tt.in, tt.budget), name)
	}
}
