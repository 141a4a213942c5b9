package layout

import (
	"errors"

	"github.com/cloudsketch/cloudsketch/pkg/construct"
	"github.com/cloudsketch/cloudsketch/pkg/placement"
)

// ErrNoResources reports an empty inventory. The pipeline surfaces it as a
// distinct condition instead of silently writing an empty artifact.
var ErrNoResources = errors.New("no resources in inventory")

type (
	Box struct {
		X, Y, W, H float64
	}

	// Node is one leaf icon handed to renderers: id, kind tag, truncated
	// caption, absolute box. Count > 1 marks a collapsed summary node.
	Node struct {
		ID    string
		Kind  construct.ResourceKind
		Label string
		Count int
		Box   Box
	}

	// Container is a cluster box. Depth is the nesting level, outermost
	// first, so renderers can paint background-to-foreground in slice
	// order without re-deriving the tree.
	Container struct {
		ID     string
		Kind   placement.ContainerKind
		Label  string
		Public bool
		Depth  int
		Box    Box
	}

	Edge struct {
		Source string
		Target string
		Kind   construct.RelationshipKind
		Label  string
		Style  EdgeStyle
	}

	// Diagram is the complete renderer input. Every edge endpoint is
	// guaranteed to resolve through BoxOf; dangling references were
	// filtered during layout.
	Diagram struct {
		Width  float64
		Height float64

		Containers []*Container
		Nodes      []*Node
		Edges      []Edge

		boxes map[string]Box
	}
)

func (b Box) CenterX() float64 { return b.X + b.W/2 }
func (b Box) CenterY() float64 { return b.Y + b.H/2 }

func newDiagram() *Diagram {
	return &Diagram{boxes: make(map[string]Box)}
}

func (d *Diagram) addNode(n *Node) {
	d.Nodes = append(d.Nodes, n)
	d.boxes[n.ID] = n.Box
}

// BoxOf resolves a node or container id to its bounding box.
func (d *Diagram) BoxOf(id string) (Box, bool) {
	b, ok := d.boxes[id]
	return b, ok
}

// Empty reports whether the diagram carries nothing renderable.
func (d *Diagram) Empty() bool {
	return len(d.Nodes) == 0 && len(d.Containers) == 0
}
