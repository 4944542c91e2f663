package flowchart

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextVersion(t *testing.T) {
	src := sampleProcedure(10)
	src.ID = 3
	src.UUID = uuid.New()
	src.Title = "Triage"
	src.Version = 2
	src.Pages[1].ShowIfs[0].Conditions.Children = append(src.Pages[1].ShowIfs[0].Conditions.Children, criteria(4242))

	cp, err := src.NextVersion(5)
	require.NoError(t, err)

	assert.Zero(t, cp.ID)
	assert.Equal(t, src.UUID, cp.UUID)
	assert.Equal(t, "Triage", cp.Title)
	assert.Equal(t, 5, cp.Version)

	require.Len(t, cp.Pages, 2)
	assert.Equal(t, Element{Ref: "10", Question: "Name"}, cp.Pages[0].Elements[0])
	assert.Equal(t, Element{Ref: "12", Question: "Symptom"}, cp.Pages[1].Elements[0])

	root := cp.Pages[1].ShowIfs[0].Conditions
	assert.Equal(t, "11", root.CriteriaRef)
	assert.Zero(t, root.CriteriaElement)
	assert.Equal(t, "10", root.Children[0].CriteriaRef)
	// Outside references stay as they are.
	assert.Equal(t, int64(4242), root.Children[1].CriteriaElement)
	assert.Empty(t, root.Children[1].CriteriaRef)

	// The source is untouched.
	assert.Equal(t, int64(11), src.Pages[1].ShowIfs[0].Conditions.CriteriaElement)
	assert.Empty(t, src.Pages[0].Elements[0].Ref)
}
