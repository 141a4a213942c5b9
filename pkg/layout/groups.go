package layout

import (
	"github.com/cloudsketch/cloudsketch/pkg/construct"
	"github.com/cloudsketch/cloudsketch/pkg/grouping"
)

// LayoutGroups arranges relationship-mode output: each group renders as a
// three-band stanza (parents above, hub centered, children below), stanzas
// flow left-to-right and wrap at the policy row width, and resources with
// no surviving relationships land in a fixed-column grid underneath.
func (e *Engine) LayoutGroups(result grouping.Result, rels *construct.RelationshipSet) *Diagram {
	p := e.policy
	d := newDiagram()
	nodeFor := make(map[construct.ResourceId]string)

	curX, curY := float64(margin), float64(margin)
	rowH := 0.0
	maxX := 0.0

	for _, g := range result.Groups {
		gw, gh := e.stanzaSize(g)
		if curX > margin && curX+gw > p.RowWidth {
			curX = margin
			curY += rowH + 2*childGap
			rowH = 0
		}

		e.placeStanza(d, g, curX, curY, gw, nodeFor)

		curX += gw + 2*childGap
		if curX > maxX {
			maxX = curX
		}
		if gh > rowH {
			rowH = gh
		}
	}
	if len(result.Groups) > 0 {
		curY += rowH + 2*childGap
	}

	// Orphan grid, insertion order.
	for i, r := range result.Orphans {
		x := margin + float64(i%p.OrphanColumns)*p.pitchX()
		y := curY + float64(i/p.OrphanColumns)*p.pitchY()
		e.placeNode(d, r, x, y, nodeFor)
		if x+p.pitchX() > maxX {
			maxX = x + p.pitchX()
		}
	}
	if n := len(result.Orphans); n > 0 {
		rows := (n + p.OrphanColumns - 1) / p.OrphanColumns
		curY += float64(rows) * p.pitchY()
	}

	d.Width = maxX + margin
	d.Height = curY + margin

	e.resolveEdges(d, rels, nodeFor, func(k construct.RelationshipKind) bool {
		return k.Hierarchical()
	})
	return d
}

// stanzaSize reports the footprint of one group before placing it, so row
// wrapping can be decided up front.
func (e *Engine) stanzaSize(g grouping.Group) (float64, float64) {
	p := e.policy
	widest := len(g.Parents)
	if len(g.Children) > widest {
		widest = len(g.Children)
	}
	if widest < 1 {
		widest = 1
	}

	bands := 1
	if len(g.Parents) > 0 {
		bands++
	}
	if len(g.Children) > 0 {
		bands++
	}
	return float64(widest) * p.pitchX(), float64(bands) * p.pitchY()
}

func (e *Engine) placeStanza(d *Diagram, g grouping.Group, x, y, width float64, nodeFor map[construct.ResourceId]string) {
	p := e.policy

	placeBand := func(resources []*construct.Resource, bandY float64) {
		offset := x + (width-float64(len(resources))*p.pitchX())/2
		for i, r := range resources {
			e.placeNode(d, r, offset+float64(i)*p.pitchX(), bandY, nodeFor)
		}
	}

	bandY := y
	if len(g.Parents) > 0 {
		placeBand(g.Parents, bandY)
		bandY += p.pitchY()
	}
	placeBand([]*construct.Resource{g.Hub}, bandY)
	bandY += p.pitchY()
	if len(g.Children) > 0 {
		placeBand(g.Children, bandY)
	}
}

func (e *Engine) placeNode(d *Diagram, r *construct.Resource, x, y float64, nodeFor map[construct.ResourceId]string) {
	p := e.policy
	node := &Node{
		ID:    r.ID.String(),
		Kind:  r.ID.Kind,
		Label: Truncate(r.Label(), p.LabelBudget),
		Count: 1,
		Box:   Box{X: x, Y: y, W: p.CellSize, H: p.CellSize},
	}
	d.addNode(node)
	nodeFor[r.ID] = node.ID
}
