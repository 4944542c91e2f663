package flowchart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalkConditionsPreOrder(t *testing.T) {
	root := &ConditionalNode{NodeType: NodeAnd, Children: []*ConditionalNode{
		criteria(1, criteria(2)),
		criteria(3),
	}}

	var got []int64
	err := WalkConditions(root, func(n *ConditionalNode) {
		got = append(got, n.CriteriaElement)
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 1, 2, 3}, got)
}

func TestWalkConditionsNilRoot(t *testing.T) {
	called := false
	require.NoError(t, WalkConditions(nil, func(*ConditionalNode) { called = true }))
	assert.False(t, called)
}

func TestWalkConditionsSelfLoop(t *testing.T) {
	n := criteria(1)
	n.Children = []*ConditionalNode{n}
	assert.ErrorIs(t, WalkConditions(n, func(*ConditionalNode) {}), ErrMalformedConditionTree)
}

func TestCloneConditions(t *testing.T) {
	root := &ConditionalNode{NodeType: NodeOr, Children: []*ConditionalNode{criteria(4), nil}}

	clone, err := CloneConditions(root)
	require.NoError(t, err)
	require.Len(t, clone.Children, 1)
	assert.Equal(t, int64(4), clone.Children[0].CriteriaElement)

	clone.Children[0].CriteriaElement = 9
	assert.Equal(t, int64(4), root.Children[0].CriteriaElement)
}

func TestCloneConditionsRejectsCycle(t *testing.T) {
	n := criteria(1)
	n.Children = []*ConditionalNode{n}
	_, err := CloneConditions(n)
	assert.ErrorIs(t, err, ErrMalformedConditionTree)
}
