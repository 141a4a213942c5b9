package drawio

import (
	"fmt"
	"io"

	"github.com/beevik/etree"
	"github.com/cloudsketch/cloudsketch/pkg/construct"
	"github.com/cloudsketch/cloudsketch/pkg/layout"
	"github.com/cloudsketch/cloudsketch/pkg/placement"
)

// File renders a diagram as a draw.io (mxGraph) document using the
// mxgraph.aws4 shape library. All geometry is absolute with every cell
// parented to the root layer; re-parenting into container cells would force
// relative coordinates and buy nothing for a generated file.
type File struct {
	FilenamePrefix string
	Diagram        *layout.Diagram
}

func (f *File) Path() string {
	return fmt.Sprintf("%sdiagram.drawio", f.FilenamePrefix)
}

func (f *File) WriteTo(w io.Writer) (int64, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	mxfile := doc.CreateElement("mxfile")
	mxfile.CreateAttr("host", "cloudsketch")
	mxfile.CreateAttr("type", "device")

	diagram := mxfile.CreateElement("diagram")
	diagram.CreateAttr("name", "Architecture")
	diagram.CreateAttr("id", "architecture")

	model := diagram.CreateElement("mxGraphModel")
	model.CreateAttr("dx", "800")
	model.CreateAttr("dy", "600")
	model.CreateAttr("grid", "1")
	model.CreateAttr("gridSize", "10")
	model.CreateAttr("page", "1")
	model.CreateAttr("pageWidth", fmt.Sprintf("%.0f", f.Diagram.Width))
	model.CreateAttr("pageHeight", fmt.Sprintf("%.0f", f.Diagram.Height))

	root := model.CreateElement("root")
	layer0 := root.CreateElement("mxCell")
	layer0.CreateAttr("id", "0")
	layer1 := root.CreateElement("mxCell")
	layer1.CreateAttr("id", "1")
	layer1.CreateAttr("parent", "0")

	for _, c := range f.Diagram.Containers {
		f.addContainer(root, c)
	}
	for _, n := range f.Diagram.Nodes {
		f.addNode(root, n)
	}
	for i, e := range f.Diagram.Edges {
		f.addEdge(root, i, e)
	}

	doc.Indent(2)
	return doc.WriteTo(w)
}

func (f *File) addContainer(root *etree.Element, c *layout.Container) {
	cell := root.CreateElement("mxCell")
	cell.CreateAttr("id", c.ID)
	cell.CreateAttr("value", c.Label)
	cell.CreateAttr("style", containerStyle(c))
	cell.CreateAttr("vertex", "1")
	cell.CreateAttr("parent", "1")
	addGeometry(cell, c.Box)
}

func (f *File) addNode(root *etree.Element, n *layout.Node) {
	cell := root.CreateElement("mxCell")
	cell.CreateAttr("id", n.ID)
	cell.CreateAttr("value", n.Label)
	cell.CreateAttr("style", iconStyle(n.Kind))
	cell.CreateAttr("vertex", "1")
	cell.CreateAttr("parent", "1")
	addGeometry(cell, n.Box)
}

func (f *File) addEdge(root *etree.Element, i int, e layout.Edge) {
	cell := root.CreateElement("mxCell")
	cell.CreateAttr("id", fmt.Sprintf("edge-%d", i))
	cell.CreateAttr("value", e.Label)
	cell.CreateAttr("style", edgeStyle(e.Style))
	cell.CreateAttr("edge", "1")
	cell.CreateAttr("parent", "1")
	cell.CreateAttr("source", e.Source)
	cell.CreateAttr("target", e.Target)
	geo := cell.CreateElement("mxGeometry")
	geo.CreateAttr("relative", "1")
	geo.CreateAttr("as", "geometry")
}

func addGeometry(cell *etree.Element, b layout.Box) {
	geo := cell.CreateElement("mxGeometry")
	geo.CreateAttr("x", fmt.Sprintf("%.0f", b.X))
	geo.CreateAttr("y", fmt.Sprintf("%.0f", b.Y))
	geo.CreateAttr("width", fmt.Sprintf("%.0f", b.W))
	geo.CreateAttr("height", fmt.Sprintf("%.0f", b.H))
	geo.CreateAttr("as", "geometry")
}

const groupStyle = "sketch=0;points=[];outlineConnect=0;gradientColor=none;html=1;whiteSpace=wrap;" +
	"fontSize=12;fontStyle=0;container=0;pointerEvents=0;collapsible=0;recursiveResize=0;" +
	"shape=mxgraph.aws4.group;verticalAlign=top;align=left;spacingLeft=30;dashed=0;"

func containerStyle(c *layout.Container) string {
	switch c.Kind {
	case placement.Cloud:
		return groupStyle + "grIcon=mxgraph.aws4.group_aws_cloud_alt;strokeColor=#232F3E;fillColor=none;fontColor=#232F3E;"
	case placement.Region:
		return groupStyle + "grIcon=mxgraph.aws4.group_region;strokeColor=#00A4A6;fillColor=none;fontColor=#00A4A6;dashed=1;"
	case placement.VpcContainer:
		return groupStyle + "grIcon=mxgraph.aws4.group_vpc2;strokeColor=#8C4FFF;fillColor=none;fontColor=#8C4FFF;"
	case placement.Zone:
		return "fillColor=none;strokeColor=#007CBC;dashed=1;verticalAlign=top;fontStyle=0;fontColor=#007CBC;whiteSpace=wrap;html=1;"
	case placement.SubnetContainer:
		if c.Public {
			return groupStyle + "grIcon=mxgraph.aws4.group_security_group;strokeColor=#7AA116;fillColor=#F2F6E8;fontColor=#248814;"
		}
		return groupStyle + "grIcon=mxgraph.aws4.group_security_group;strokeColor=#00A4A6;fillColor=#E6F6F7;fontColor=#147EBA;"
	case placement.External:
		return "fillColor=none;strokeColor=#7D8998;dashed=1;verticalAlign=top;fontColor=#7D8998;whiteSpace=wrap;html=1;"
	default:
		return "fillColor=none;strokeColor=#AAB7B8;verticalAlign=top;fontColor=#5A6B86;whiteSpace=wrap;html=1;"
	}
}

const resourceStyle = "sketch=0;points=[];outlineConnect=0;fontColor=#232F3E;fillColor=%s;strokeColor=#ffffff;" +
	"dashed=0;verticalLabelPosition=bottom;verticalAlign=top;align=center;html=1;fontSize=11;fontStyle=0;" +
	"aspect=fixed;shape=mxgraph.aws4.resourceIcon;resIcon=mxgraph.aws4.%s;"

var resIcons = map[construct.ResourceKind][2]string{
	construct.Instance:         {"#ED7100", "ec2"},
	construct.Function:         {"#ED7100", "lambda"},
	construct.ContainerCluster: {"#ED7100", "elastic_container_service"},
	construct.ContainerService: {"#ED7100", "fargate"},
	construct.Bucket:           {"#7AA116", "s3"},
	construct.FileSystem:       {"#7AA116", "elastic_file_system"},
	construct.Database:         {"#C925D1", "rds"},
	construct.Table:            {"#C925D1", "dynamodb"},
	construct.Queue:            {"#E7157B", "simple_queue_service"},
	construct.Topic:            {"#E7157B", "simple_notification_service"},
	construct.LoadBalancer:     {"#8C4FFF", "elastic_load_balancing"},
	construct.TargetGroup:      {"#8C4FFF", "elastic_load_balancing"},
	construct.NatGateway:       {"#8C4FFF", "nat_gateway"},
	construct.InternetGateway:  {"#8C4FFF", "internet_gateway"},
	construct.VpcEndpoint:      {"#8C4FFF", "endpoints"},
	construct.SecurityGroup:    {"#DD344C", "network_firewall"},
}

func iconStyle(kind construct.ResourceKind) string {
	icon, ok := resIcons[kind]
	if !ok {
		icon = [2]string{"#7D8998", "general"}
	}
	return fmt.Sprintf(resourceStyle, icon[0], icon[1])
}

var edgeColors = map[string]string{
	"blue":   "#2563EB",
	"red":    "#DC2626",
	"green":  "#16A34A",
	"orange": "#EA580C",
	"purple": "#9333EA",
	"gray":   "#6B7280",
}

func edgeStyle(s layout.EdgeStyle) string {
	color, ok := edgeColors[s.Color]
	if !ok {
		color = edgeColors["gray"]
	}
	style := fmt.Sprintf("endArrow=block;html=1;rounded=0;strokeColor=%s;", color)
	if s.Bold {
		style += "strokeWidth=2;"
	}
	if s.Dashed {
		style += "dashed=1;"
	}
	if s.Dotted {
		style += "dashed=1;dashPattern=1 3;"
	}
	return style
}
