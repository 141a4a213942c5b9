package construct

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelationshipSet_indices(t *testing.T) {
	require, assert := require.New(t), assert.New(t)

	s := NewRelationshipSet()
	lb := Id(LoadBalancer, "lb-1")
	tg := Id(TargetGroup, "tg-1")
	i1 := Id(Instance, "i-1")
	i2 := Id(Instance, "i-2")

	s.Add(lb, tg, RoutesTo, "routes")
	s.Add(tg, i1, Targets, "")
	s.Add(tg, i2, Targets, "")

	out := s.BySource(tg)
	require.Len(out, 2)
	assert.Equal(i1, out[0].Target)
	assert.Equal(i2, out[1].Target)

	in := s.ByTarget(tg)
	require.Len(in, 1)
	assert.Equal(lb, in[0].Source)

	assert.Empty(s.BySource(i1))
	assert.Equal(3, s.Len())
}

func TestRelationshipSet_duplicatesPermittedAndDeduped(t *testing.T) {
	require, assert := require.New(t), assert.New(t)

	s := NewRelationshipSet()
	a := Id(Topic, "a")
	b := Id(Function, "b")

	s.Add(a, b, Triggers, "trigger")
	s.Add(a, b, Triggers, "trigger")
	s.Add(a, b, UsesSecurityGroup, "")

	assert.Equal(3, s.Len())

	deduped := s.Dedupe()
	require.Len(deduped, 2)
	assert.Equal(Triggers, deduped[0].Kind)
	assert.Equal(UsesSecurityGroup, deduped[1].Kind)
}

func TestRelationshipKind_classification(t *testing.T) {
	assert := assert.New(t)

	for _, k := range []RelationshipKind{BelongsTo, InSubnet, InVpc} {
		assert.True(k.Hierarchical(), string(k))
	}
	for _, k := range []RelationshipKind{AttachedTo, InCluster, RoutesTo, Targets, Triggers, UsesSecurityGroup} {
		assert.False(k.Hierarchical(), string(k))
	}

	assert.True(BelongsTo.Implied())
	assert.True(InVpc.Implied())
	assert.False(InSubnet.Implied())
	assert.False(RoutesTo.Implied())
}
