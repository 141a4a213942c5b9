package svg

import (
	"fmt"
	"io"
	"math"

	"github.com/cloudsketch/cloudsketch/pkg/construct"
	"github.com/cloudsketch/cloudsketch/pkg/ioutil"
	"github.com/cloudsketch/cloudsketch/pkg/layout"
	"github.com/cloudsketch/cloudsketch/pkg/placement"
	"github.com/cloudsketch/cloudsketch/pkg/set"
)

// snapTolerance is how far apart two edge endpoints' x coordinates may be
// before the connector stops rendering as a straight vertical line.
const snapTolerance = 4.0

type File struct {
	FilenamePrefix string
	Diagram        *layout.Diagram
}

func (f *File) Path() string {
	return fmt.Sprintf("%sdiagram.svg", f.FilenamePrefix)
}

func (f *File) WriteTo(w io.Writer) (n int64, err error) {
	wh := ioutil.NewWriteToHelper(w, &n, &err)
	d := f.Diagram

	wh.Writef(`<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f" font-family="Helvetica, Arial, sans-serif">`+"\n",
		d.Width, d.Height, d.Width, d.Height)
	writeDefs(wh, d)
	wh.Writef(`<rect width="%.0f" height="%.0f" fill="#ffffff"/>`+"\n", d.Width, d.Height)
	wh.Writef(`<rect width="%.0f" height="%.0f" fill="url(#grid)"/>`+"\n", d.Width, d.Height)

	for _, c := range d.Containers {
		writeContainer(wh, c)
	}
	for _, e := range d.Edges {
		writeEdge(wh, d, e)
	}
	for _, node := range d.Nodes {
		writeNode(wh, node)
	}

	wh.Write("</svg>\n")
	return
}

// writeDefs emits the grid pattern plus one arrowhead marker per edge
// colour actually used, so unused markers do not bloat the file.
func writeDefs(wh ioutil.WriteToHelper, d *layout.Diagram) {
	wh.Write("<defs>\n")
	wh.Write(`<pattern id="grid" width="20" height="20" patternUnits="userSpaceOnUse">` +
		`<path d="M 20 0 L 0 0 0 20" fill="none" stroke="#eef1f4" stroke-width="1"/>` +
		"</pattern>\n")

	colors := make(set.Set[string])
	for _, e := range d.Edges {
		colors.Add(e.Style.Color)
	}
	for _, color := range set.Sorted(colors) {
		wh.Writef(`<marker id="arrow-%s" markerWidth="8" markerHeight="8" refX="7" refY="3" orient="auto">`+
			`<path d="M0,0 L7,3 L0,6 z" fill="%s"/>`+
			"</marker>\n", color, hexColor(color))
	}
	wh.Write("</defs>\n")
}

func writeContainer(wh ioutil.WriteToHelper, c *layout.Container) {
	fill, stroke, dash := containerPaint(c)
	dashAttr := ""
	if dash {
		dashAttr = ` stroke-dasharray="6,4"`
	}
	wh.Writef(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" stroke="%s" stroke-width="1.5"%s/>`+"\n",
		c.Box.X, c.Box.Y, c.Box.W, c.Box.H, fill, stroke, dashAttr)
	if c.Label != "" {
		wh.Writef(`<text x="%.1f" y="%.1f" font-size="12" fill="%s">%s</text>`+"\n",
			c.Box.X+8, c.Box.Y+16, stroke, escape(c.Label))
	}
}

func writeNode(wh ioutil.WriteToHelper, node *layout.Node) {
	fill := iconFill(node.Kind)
	wh.Writef(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="6" fill="%s"/>`+"\n",
		node.Box.X, node.Box.Y, node.Box.W, node.Box.H, fill)
	wh.Writef(`<text x="%.1f" y="%.1f" font-size="9" fill="#ffffff" text-anchor="middle">%s</text>`+"\n",
		node.Box.CenterX(), node.Box.CenterY()+3, escape(layout.KindTitle(node.Kind)))
	wh.Writef(`<text x="%.1f" y="%.1f" font-size="10" fill="#232f3e" text-anchor="middle">%s</text>`+"\n",
		node.Box.CenterX(), node.Box.Y+node.Box.H+12, escape(node.Label))
}

// writeEdge draws a center-to-center connector. Endpoints whose horizontal
// centers nearly align snap to a straight vertical line.
func writeEdge(wh ioutil.WriteToHelper, d *layout.Diagram, e layout.Edge) {
	src, ok := d.BoxOf(e.Source)
	if !ok {
		return
	}
	tgt, ok := d.BoxOf(e.Target)
	if !ok {
		return
	}

	x1, y1 := src.CenterX(), src.CenterY()
	x2, y2 := tgt.CenterX(), tgt.CenterY()
	if math.Abs(x1-x2) < snapTolerance {
		x2 = x1
	}

	width := 1.4
	if e.Style.Bold {
		width = 2.4
	}
	dash := ""
	if e.Style.Dashed {
		dash = ` stroke-dasharray="6,4"`
	} else if e.Style.Dotted {
		dash = ` stroke-dasharray="2,3"`
	}
	wh.Writef(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="%.1f"%s marker-end="url(#arrow-%s)"/>`+"\n",
		x1, y1, x2, y2, hexColor(e.Style.Color), width, dash, e.Style.Color)

	if e.Label != "" {
		wh.Writef(`<text x="%.1f" y="%.1f" font-size="9" fill="%s" text-anchor="middle">%s</text>`+"\n",
			(x1+x2)/2, (y1+y2)/2-4, hexColor(e.Style.Color), escape(e.Label))
	}
}

func containerPaint(c *layout.Container) (fill, stroke string, dash bool) {
	switch c.Kind {
	case placement.Cloud:
		return "none", "#232f3e", false
	case placement.Region:
		return "none", "#00a4a6", true
	case placement.VpcContainer:
		return "none", "#8c4fff", false
	case placement.Zone:
		return "none", "#007cbc", true
	case placement.SubnetContainer:
		if c.Public {
			return "#f0f7ec", "#7aa116", false
		}
		return "#eaf3f9", "#00a4a6", false
	case placement.External:
		return "none", "#7d8998", true
	default:
		return "none", "#aab7b8", false
	}
}

var iconFills = map[construct.ResourceKind]string{
	construct.Instance:         "#ed7100",
	construct.Function:         "#ed7100",
	construct.ContainerCluster: "#ed7100",
	construct.ContainerService: "#ed7100",
	construct.Bucket:           "#7aa116",
	construct.FileSystem:       "#7aa116",
	construct.Database:         "#c925d1",
	construct.Table:            "#c925d1",
	construct.Queue:            "#e7157b",
	construct.Topic:            "#e7157b",
	construct.LoadBalancer:     "#8c4fff",
	construct.TargetGroup:      "#8c4fff",
	construct.NatGateway:       "#8c4fff",
	construct.InternetGateway:  "#8c4fff",
	construct.VpcEndpoint:      "#8c4fff",
	construct.SecurityGroup:    "#dd344c",
}

func iconFill(kind construct.ResourceKind) string {
	if fill, ok := iconFills[kind]; ok {
		return fill
	}
	return "#6b7280"
}

var edgeColors = map[string]string{
	"blue":   "#2563eb",
	"red":    "#dc2626",
	"green":  "#16a34a",
	"orange": "#ea580c",
	"purple": "#9333ea",
	"gray":   "#6b7280",
}

func hexColor(name string) string {
	if hex, ok := edgeColors[name]; ok {
		return hex
	}
	return "#6b7280"
}

func escape(s string) string {
	var out []rune
	for _, r := range s {
		switch r {
		case '&':
			out = append(out, []rune("&amp;")...)
		case '<':
			out = append(out, []rune("&lt;")...)
		case '>':
			out = append(out, []rune("&gt;")...)
		default:
			out = append(out, r)
		}
	}
	return string(out)
}
