package layout

import (
	"fmt"
	"math"

	"github.com/cloudsketch/cloudsketch/pkg/construct"
	"github.com/cloudsketch/cloudsketch/pkg/placement"
)

const (
	margin        = 20
	headerHeight  = 24
	padX          = 12
	padBottom     = 10
	childGap      = 16
	minContainerW = 200
	// placeholder footprint for an empty subnet, kept so the container
	// hierarchy stays visually intact.
	emptyBucketW = 110
	emptyBucketH = 26

	externalBucketsPerRow = 4
)

type Engine struct {
	policy Policy
}

func NewEngine(policy Policy) *Engine {
	return &Engine{policy: policy}
}

// LayoutHierarchy sweeps the containment tree top-to-bottom, left-to-right,
// assigning an absolute box to every container and leaf. Sizing is strictly
// bottom-up from child counts. Edges are resolved last so the renderer only
// ever sees endpoints with a box.
func (e *Engine) LayoutHierarchy(h *placement.Hierarchy, rels *construct.RelationshipSet) *Diagram {
	d := newDiagram()
	nodeFor := make(map[construct.ResourceId]string)

	w, height := e.placeContainer(d, h.Cloud, "", margin, margin, 0, nodeFor)
	d.Width = w + 2*margin
	d.Height = height + 2*margin

	e.resolveEdges(d, rels, nodeFor, func(k construct.RelationshipKind) bool {
		return k.Implied()
	})
	return d
}

// placeContainer returns the laid-out width and height of n, or (0, 0) when
// the subtree renders nothing (empty external area, empty VPC item bucket).
func (e *Engine) placeContainer(d *Diagram, n *placement.Node, parentPath string, x, y float64, depth int, nodeFor map[construct.ResourceId]string) (float64, float64) {
	switch n.Kind {
	case placement.Cloud, placement.Region, placement.VpcContainer:
		return e.placeStack(d, n, parentPath, x, y, depth, nodeFor)
	case placement.External:
		if len(n.Children) == 0 {
			return 0, 0
		}
		return e.placeFlow(d, n, parentPath, x, y, depth, externalBucketsPerRow, nodeFor)
	case placement.Zone:
		return e.placeFlow(d, n, parentPath, x, y, depth, e.policy.SubnetsPerRow, nodeFor)
	default:
		return e.placeBucket(d, n, parentPath, x, y, depth, nodeFor)
	}
}

// placeStack lays children out vertically (cloud -> region -> VPCs,
// VPC -> zones -> item bucket).
func (e *Engine) placeStack(d *Diagram, n *placement.Node, parentPath string, x, y float64, depth int, nodeFor map[construct.ResourceId]string) (float64, float64) {
	path := n.Path(parentPath)
	c := &Container{ID: path, Kind: n.Kind, Label: n.Label, Depth: depth}
	d.Containers = append(d.Containers, c)
	if n.Resource != nil {
		nodeFor[n.Resource.ID] = path
	}

	curY := y + headerHeight
	width := float64(minContainerW)
	placedAny := false
	for _, child := range n.Children {
		cw, ch := e.placeContainer(d, child, path, x+padX, curY, depth+1, nodeFor)
		if cw == 0 && ch == 0 {
			continue
		}
		placedAny = true
		curY += ch + childGap
		if cw+2*padX > width {
			width = cw + 2*padX
		}
	}
	if placedAny {
		curY -= childGap
	}
	height := curY - y + padBottom

	c.Box = Box{X: x, Y: y, W: width, H: height}
	d.boxes[path] = c.Box
	return width, height
}

// placeFlow lays children out left-to-right, wrapping after perRow.
func (e *Engine) placeFlow(d *Diagram, n *placement.Node, parentPath string, x, y float64, depth int, perRow int, nodeFor map[construct.ResourceId]string) (float64, float64) {
	path := n.Path(parentPath)
	c := &Container{ID: path, Kind: n.Kind, Label: n.Label, Depth: depth}
	d.Containers = append(d.Containers, c)

	curX := x + padX
	curY := y + headerHeight
	rowH := 0.0
	width := float64(minContainerW)
	col := 0
	placedAny := false
	for _, child := range n.Children {
		cw, ch := e.placeContainer(d, child, path, curX, curY, depth+1, nodeFor)
		if cw == 0 && ch == 0 {
			continue
		}
		placedAny = true
		curX += cw + childGap
		if ch > rowH {
			rowH = ch
		}
		if curX-x > width {
			width = curX - x
		}
		col++
		if col >= perRow {
			col = 0
			curX = x + padX
			curY += rowH + childGap
			rowH = 0
		}
	}
	if placedAny && col > 0 {
		curY += rowH
	} else if placedAny {
		curY -= childGap
	}
	height := curY - y + padBottom

	c.Box = Box{X: x, Y: y, W: width, H: height}
	d.boxes[path] = c.Box
	return width, height
}

// bucketItem is one grid slot: either an individual resource or a per-kind
// summary standing in for members beyond the inline-detail threshold.
type bucketItem struct {
	resource *construct.Resource
	kind     construct.ResourceKind
	count    int
	members  []*construct.Resource
}

// placeBucket renders a leaf bucket (subnet, VPC items, external kind
// bucket) as a fixed-pitch grid. Same-kind members collapse to a single
// summary node once they exceed the inline-detail threshold. Empty subnets
// keep a placeholder box; other empty buckets disappear.
func (e *Engine) placeBucket(d *Diagram, n *placement.Node, parentPath string, x, y float64, depth int, nodeFor map[construct.ResourceId]string) (float64, float64) {
	p := e.policy
	path := n.Path(parentPath)

	if len(n.Resources) == 0 && n.Kind != placement.SubnetContainer {
		return 0, 0
	}

	c := &Container{ID: path, Kind: n.Kind, Label: n.Label, Public: n.Public, Depth: depth}
	d.Containers = append(d.Containers, c)
	if n.Resource != nil {
		nodeFor[n.Resource.ID] = path
	}

	if len(n.Resources) == 0 {
		c.Box = Box{X: x, Y: y, W: emptyBucketW, H: headerHeight + emptyBucketH}
		d.boxes[path] = c.Box
		return c.Box.W, c.Box.H
	}

	items := e.collapse(n.Resources)
	cols := p.BucketColumns
	if len(items) < cols {
		cols = len(items)
	}
	rows := int(math.Ceil(float64(len(items)) / float64(cols)))

	for i, item := range items {
		ix := x + padX + float64(i%cols)*p.pitchX()
		iy := y + headerHeight + float64(i/cols)*p.pitchY()
		box := Box{X: ix, Y: iy, W: p.CellSize, H: p.CellSize}
		if item.resource != nil {
			node := &Node{
				ID:    item.resource.ID.String(),
				Kind:  item.resource.ID.Kind,
				Label: Truncate(item.resource.Label(), p.LabelBudget),
				Count: 1,
				Box:   box,
			}
			d.addNode(node)
			nodeFor[item.resource.ID] = node.ID
		} else {
			node := &Node{
				ID:    fmt.Sprintf("summary:%s:%s", path, item.kind),
				Kind:  item.kind,
				Label: SummaryLabel(item.kind, item.count),
				Count: item.count,
				Box:   box,
			}
			d.addNode(node)
			for _, m := range item.members {
				nodeFor[m.ID] = node.ID
			}
		}
	}

	width := 2*padX + float64(cols)*p.pitchX() - p.CellGapX
	height := headerHeight + float64(rows)*p.pitchY() - p.CellGapY + padBottom
	c.Box = Box{X: x, Y: y, W: width, H: height}
	d.boxes[path] = c.Box
	return width, height
}

// collapse groups a bucket's members by kind in first-seen order; any kind
// whose count exceeds the threshold becomes one summary item.
func (e *Engine) collapse(resources []*construct.Resource) []bucketItem {
	byKind := make(map[construct.ResourceKind][]*construct.Resource)
	var kinds []construct.ResourceKind
	for _, r := range resources {
		if _, ok := byKind[r.ID.Kind]; !ok {
			kinds = append(kinds, r.ID.Kind)
		}
		byKind[r.ID.Kind] = append(byKind[r.ID.Kind], r)
	}

	var items []bucketItem
	for _, kind := range kinds {
		members := byKind[kind]
		if len(members) > e.policy.InlineDetailMax {
			items = append(items, bucketItem{kind: kind, count: len(members), members: members})
			continue
		}
		for _, r := range members {
			items = append(items, bucketItem{resource: r})
		}
	}
	return items
}

// SummaryLabel captions a collapsed bucket, e.g. "EC2 (3 instances)".
func SummaryLabel(kind construct.ResourceKind, count int) string {
	if kind == construct.Instance {
		return fmt.Sprintf("EC2 (%d instances)", count)
	}
	return fmt.Sprintf("%s (%d)", KindTitle(kind), count)
}

type edgeKey struct {
	source, target string
	kind           construct.RelationshipKind
}

// resolveEdges remaps relationship endpoints onto render ids (node, summary
// node, or container), silently dropping anything without an assigned box
// and de-duplicating what remains.
func (e *Engine) resolveEdges(d *Diagram, rels *construct.RelationshipSet, nodeFor map[construct.ResourceId]string, drop func(construct.RelationshipKind) bool) {
	seen := make(map[edgeKey]struct{})
	for _, rel := range rels.Dedupe() {
		if drop(rel.Kind) {
			continue
		}
		src, ok := nodeFor[rel.Source]
		if !ok {
			continue
		}
		tgt, ok := nodeFor[rel.Target]
		if !ok {
			continue
		}
		if src == tgt {
			continue
		}
		key := edgeKey{src, tgt, rel.Kind}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		style := StyleFor(rel.Kind)
		label := ""
		if style.Labeled {
			label = rel.Label
		}
		d.Edges = append(d.Edges, Edge{Source: src, Target: tgt, Kind: rel.Kind, Label: label, Style: style})
	}
}
