package layout

import (
	"fmt"
	"testing"

	"github.com/cloudsketch/cloudsketch/pkg/construct"
	"github.com/cloudsketch/cloudsketch/pkg/grouping"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutGroups_stanzaBands(t *testing.T) {
	require, assert := require.New(t), assert.New(t)

	s := construct.NewStore()
	rels := construct.NewRelationshipSet()
	lb := s.Put(construct.LoadBalancer, "lb", construct.LoadBalancerAttrs{Name: "lb"})
	tg := s.Put(construct.TargetGroup, "tg", construct.TargetGroupAttrs{Name: "tg"})
	i1 := s.Put(construct.Instance, "i-1", construct.InstanceAttrs{Name: "i-1"})
	i2 := s.Put(construct.Instance, "i-2", construct.InstanceAttrs{Name: "i-2"})

	rels.Add(lb.ID, tg.ID, construct.RoutesTo, "")
	rels.Add(tg.ID, i1.ID, construct.Targets, "")
	rels.Add(tg.ID, i2.ID, construct.Targets, "")

	result := grouping.Build(s, rels)
	d := NewEngine(DefaultPolicy()).LayoutGroups(result, rels)

	require.Len(d.Nodes, 4)
	hub := findNode(d, "target_group/tg")
	parent := findNode(d, "load_balancer/lb")
	c1 := findNode(d, "instance/i-1")
	c2 := findNode(d, "instance/i-2")
	require.NotNil(hub)
	require.NotNil(parent)
	require.NotNil(c1)
	require.NotNil(c2)

	// Parents above the hub, children below, children on one row.
	assert.Less(parent.Box.Y, hub.Box.Y)
	assert.Greater(c1.Box.Y, hub.Box.Y)
	assert.Equal(c1.Box.Y, c2.Box.Y)
	assert.Less(c1.Box.X, c2.Box.X)

	// Single parent and single hub center over the two-wide child row.
	assert.Equal(hub.Box.CenterX(), parent.Box.CenterX())

	// One routes_to edge plus one targets edge per instance; the two targets
	// edges have distinct endpoints, so neither dedupes away.
	require.Len(d.Edges, 3)
	assert.Equal(construct.RoutesTo, d.Edges[0].Kind)
	assert.Equal(construct.Targets, d.Edges[1].Kind)
	assert.Equal(construct.Targets, d.Edges[2].Kind)
	assert.Equal("instance/i-1", d.Edges[1].Target)
	assert.Equal("instance/i-2", d.Edges[2].Target)
	assert.Equal("red", d.Edges[0].Style.Color)
}

func TestLayoutGroups_orphanGrid(t *testing.T) {
	require, assert := require.New(t), assert.New(t)

	s := construct.NewStore()
	rels := construct.NewRelationshipSet()
	names := []string{"q0", "q1", "q2", "q3", "q4", "q5", "q6", "q7", "q8", "q9"}
	for _, name := range names {
		s.Put(construct.Queue, name, construct.QueueAttrs{Name: name})
	}

	result := grouping.Build(s, rels)
	require.Empty(result.Groups)
	require.Len(result.Orphans, 10)

	p := DefaultPolicy()
	d := NewEngine(p).LayoutGroups(result, rels)
	require.Len(d.Nodes, 10)

	// Insertion order fills rows of OrphanColumns.
	first := findNode(d, "queue/q0")
	last := findNode(d, "queue/q7")
	wrapped := findNode(d, "queue/q8")
	require.NotNil(first)
	require.NotNil(last)
	require.NotNil(wrapped)

	assert.Equal(first.Box.Y, last.Box.Y)
	assert.Equal(first.Box.X+7*p.pitchX(), last.Box.X)
	assert.Equal(first.Box.X, wrapped.Box.X)
	assert.Equal(first.Box.Y+p.pitchY(), wrapped.Box.Y)

	assert.Empty(d.Edges)
	assert.Empty(d.Containers)
}

func TestLayoutGroups_rowWrap(t *testing.T) {
	require, assert := require.New(t), assert.New(t)

	s := construct.NewStore()
	rels := construct.NewRelationshipSet()
	// Many two-node stanzas so the row limit forces a wrap.
	for i := 0; i < 30; i++ {
		hub := s.Put(construct.Topic, fmt.Sprintf("hub-%d", i), construct.TopicAttrs{})
		leaf := s.Put(construct.Function, fmt.Sprintf("fn-%d", i), construct.FunctionAttrs{})
		rels.Add(hub.ID, leaf.ID, construct.Triggers, "")
	}

	p := DefaultPolicy()
	p.RowWidth = 400
	result := grouping.Build(s, rels)
	d := NewEngine(p).LayoutGroups(result, rels)

	require.NotEmpty(d.Nodes)
	var minY, maxY float64
	for i, n := range d.Nodes {
		if i == 0 || n.Box.Y < minY {
			minY = n.Box.Y
		}
		if n.Box.Y > maxY {
			maxY = n.Box.Y
		}
	}
	assert.Greater(maxY, minY+p.pitchY())

	for _, n := range d.Nodes {
		assert.LessOrEqual(n.Box.X+n.Box.W, d.Width)
		assert.LessOrEqual(n.Box.Y+n.Box.H, d.Height)
	}
}

func TestLayoutGroups_hierarchicalEdgesNotDrawn(t *testing.T) {
	require, assert := require.New(t), assert.New(t)

	s := construct.NewStore()
	rels := construct.NewRelationshipSet()
	fn := s.Put(construct.Function, "fn", construct.FunctionAttrs{Name: "fn"})
	q := s.Put(construct.Queue, "jobs", construct.QueueAttrs{Name: "jobs"})
	vpc := s.Put(construct.Vpc, "vpc-1", construct.VpcAttrs{Name: "vpc"})

	rels.Add(q.ID, fn.ID, construct.Triggers, "enqueue")
	rels.Add(fn.ID, vpc.ID, construct.InVpc, "")

	result := grouping.Build(s, rels)
	d := NewEngine(DefaultPolicy()).LayoutGroups(result, rels)

	require.Len(d.Edges, 1)
	assert.Equal(construct.Triggers, d.Edges[0].Kind)
	assert.Equal("enqueue", d.Edges[0].Label)
	assert.True(d.Edges[0].Style.Labeled)
}
