package svg

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudsketch/cloudsketch/pkg/construct"
	"github.com/cloudsketch/cloudsketch/pkg/layout"
	"github.com/cloudsketch/cloudsketch/pkg/placement"
)

func renderFixture() *layout.Diagram {
	s := construct.NewStore()
	s.Put(construct.Vpc, "vpc-1", construct.VpcAttrs{Name: "main", CidrBlock: "10.0.0.0/16"})
	s.Put(construct.Subnet, "subnet-a", construct.SubnetAttrs{
		Name: "subnet-a", VpcId: "vpc-1", AvailabilityZone: "us-east-1a", IsPublic: true,
	})
	s.Put(construct.NatGateway, "nat-1", construct.NatGatewayAttrs{
		Name: "nat & gw", VpcId: "vpc-1", SubnetId: "subnet-a",
	})
	for _, name := range []string{"i-1", "i-2", "i-3"} {
		s.Put(construct.Instance, name, construct.InstanceAttrs{Name: name, SubnetId: "subnet-a", VpcId: "vpc-1"})
	}

	rels := construct.InferRelationships(s)
	h := placement.Resolve(s, "us-east-1")
	return layout.NewEngine(layout.DefaultPolicy()).LayoutHierarchy(h, rels)
}

func TestFile_WriteTo(t *testing.T) {
	require, assert := require.New(t), assert.New(t)

	f := &File{FilenamePrefix: "demo-", Diagram: renderFixture()}
	assert.Equal("demo-diagram.svg", f.Path())

	buf := new(bytes.Buffer)
	n, err := f.WriteTo(buf)
	require.NoError(err)
	assert.Equal(int64(buf.Len()), n)

	out := buf.String()
	assert.Contains(out, `<svg xmlns="http://www.w3.org/2000/svg"`)
	assert.Contains(out, `fill="url(#grid)"`)
	assert.Contains(out, `id="arrow-green"`)

	// Public subnet gets the green treatment, collapsed instances one node.
	assert.Contains(out, `fill="#f0f7ec"`)
	assert.Contains(out, ">EC2 (3 instances)</text>")

	// Ampersands in labels must not break the XML.
	assert.Contains(out, "nat &amp; gw")
	assert.NotContains(out, "nat & gw")

	// in_subnet edges render green with an arrowhead.
	assert.Contains(out, `stroke="#16a34a"`)
	assert.Contains(out, `marker-end="url(#arrow-green)"`)
}

func TestFile_WriteTo_deterministic(t *testing.T) {
	require, assert := require.New(t), assert.New(t)

	d := renderFixture()
	first := new(bytes.Buffer)
	_, err := (&File{Diagram: d}).WriteTo(first)
	require.NoError(err)

	for i := 0; i < 5; i++ {
		next := new(bytes.Buffer)
		_, err := (&File{Diagram: d}).WriteTo(next)
		require.NoError(err)
		assert.Equal(first.String(), next.String())
	}
}
