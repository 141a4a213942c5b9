package drawio

import (
	"bytes"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudsketch/cloudsketch/pkg/construct"
	"github.com/cloudsketch/cloudsketch/pkg/layout"
	"github.com/cloudsketch/cloudsketch/pkg/placement"
)

func renderFixture() *layout.Diagram {
	s := construct.NewStore()
	s.Put(construct.Vpc, "vpc-1", construct.VpcAttrs{Name: "main"})
	s.Put(construct.Subnet, "subnet-a", construct.SubnetAttrs{
		Name: "subnet-a", VpcId: "vpc-1", AvailabilityZone: "us-east-1a",
	})
	s.Put(construct.Instance, "i-1", construct.InstanceAttrs{Name: "web", SubnetId: "subnet-a", VpcId: "vpc-1"})

	rels := construct.InferRelationships(s)
	h := placement.Resolve(s, "us-east-1")
	return layout.NewEngine(layout.DefaultPolicy()).LayoutHierarchy(h, rels)
}

func TestFile_WriteTo(t *testing.T) {
	require, assert := require.New(t), assert.New(t)

	d := renderFixture()
	f := &File{FilenamePrefix: "demo-", Diagram: d}
	assert.Equal("demo-diagram.drawio", f.Path())

	buf := new(bytes.Buffer)
	n, err := f.WriteTo(buf)
	require.NoError(err)
	assert.Equal(int64(buf.Len()), n)

	doc := etree.NewDocument()
	require.NoError(doc.ReadFromBytes(buf.Bytes()))

	root := doc.FindElement("//mxGraphModel/root")
	require.NotNil(root)

	cells := root.SelectElements("mxCell")
	// two layers + containers + nodes + edges
	require.Len(cells, 2+len(d.Containers)+len(d.Nodes)+len(d.Edges))

	node := root.FindElement(`mxCell[@id='instance/i-1']`)
	require.NotNil(node)
	assert.Contains(node.SelectAttrValue("style", ""), "resIcon=mxgraph.aws4.ec2")
	assert.Equal("web", node.SelectAttrValue("value", ""))

	geo := node.FindElement("mxGeometry")
	require.NotNil(geo)
	assert.NotEmpty(geo.SelectAttrValue("x", ""))
	assert.Equal("geometry", geo.SelectAttrValue("as", ""))

	vpc := root.FindElement(`mxCell[@id='cloud/us-east-1/vpc-1']`)
	require.NotNil(vpc)
	assert.Contains(vpc.SelectAttrValue("style", ""), "grIcon=mxgraph.aws4.group_vpc2")

	edge := root.FindElement(`mxCell[@id='edge-0']`)
	require.NotNil(edge)
	assert.Equal("1", edge.SelectAttrValue("edge", ""))
	assert.Equal("instance/i-1", edge.SelectAttrValue("source", ""))
	assert.NotEmpty(edge.SelectAttrValue("target", ""))
}
