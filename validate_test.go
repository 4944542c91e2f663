package flowchart

import (
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, (&Procedure{}).Validate(), ErrNoPages)

	p := sampleProcedure(10)
	assert.NoError(t, p.Validate())

	p.Pages = append(p.Pages, Page{})
	err := p.Validate()
	assert.ErrorIs(t, err, ErrEmptyPage)
	assert.Contains(t, err.Error(), "page 2")
}

func TestCheckFieldRules(t *testing.T) {
	p := sampleProcedure(10)
	p.Pages[0].Elements[0].ElementType = "ENTRY"
	require.NoError(t, p.Check())

	p.Pages[0].Elements[0].ElementType = "VIDEO"
	var verrs validator.ValidationErrors
	require.ErrorAs(t, p.Check(), &verrs)
	assert.Equal(t, "ElementType", verrs[0].Field())
}

func TestCheckTitleLength(t *testing.T) {
	p := &Procedure{Title: strings.Repeat("x", 256)}
	var verrs validator.ValidationErrors
	require.ErrorAs(t, p.Check(), &verrs)
	assert.Equal(t, "Title", verrs[0].Field())
}

func TestCheckNodeType(t *testing.T) {
	s := &ShowIf{Conditions: &ConditionalNode{NodeType: NodeAnd, Children: []*ConditionalNode{
		{NodeType: "XOR"},
	}}}
	var verrs validator.ValidationErrors
	require.ErrorAs(t, s.Check(), &verrs)
	assert.Equal(t, "NodeType", verrs[0].Field())
}

func TestCheckCyclicShowIf(t *testing.T) {
	n := criteria(1)
	n.Children = []*ConditionalNode{n}

	assert.ErrorIs(t, (&ShowIf{Conditions: n}).Check(), ErrMalformedConditionTree)

	p := sampleProcedure(10)
	p.Pages[1].ShowIfs[0].Conditions = n
	assert.ErrorIs(t, p.Check(), ErrMalformedConditionTree)
}

func TestCheckPluginElementTypes(t *testing.T) {
	p := sampleProcedure(10)
	for _, typ := range []string{"ENTRY_PLUGIN", "PLUGIN_ENTRY", "PLUGIN"} {
		p.Pages[0].Elements[0].ElementType = typ
		assert.NoError(t, p.Check(), typ)
	}
}

func TestCheckPage(t *testing.T) {
	pg := &Page{Elements: []Element{{ElementType: "VIDEO"}}}
	var verrs validator.ValidationErrors
	require.ErrorAs(t, pg.Check(), &verrs)
	assert.Equal(t, "ElementType", verrs[0].Field())

	pg = &Page{ShowIfs: []ShowIf{{Conditions: &ConditionalNode{NodeType: "XOR"}}}}
	require.ErrorAs(t, pg.Check(), &verrs)
	assert.Equal(t, "NodeType", verrs[0].Field())

	n := criteria(3)
	n.Children = []*ConditionalNode{{NodeType: NodeNot, Children: []*ConditionalNode{n}}}
	pg = &Page{ShowIfs: []ShowIf{{Conditions: n}}}
	assert.ErrorIs(t, pg.Check(), ErrMalformedConditionTree)

	pg = &Page{Elements: []Element{{ElementType: "RADIO", Choices: "yes,no"}}}
	assert.NoError(t, pg.Check())
}

func TestCheckConcept(t *testing.T) {
	c := &Concept{Name: "temperature", DisplayName: "Temperature", DataType: "number"}
	require.NoError(t, c.Check())

	c.DataType = "date"
	var verrs validator.ValidationErrors
	require.ErrorAs(t, c.Check(), &verrs)
	assert.Equal(t, "DataType", verrs[0].Field())

	c = &Concept{DisplayName: "Temperature"}
	require.ErrorAs(t, c.Check(), &verrs)
	assert.Equal(t, "Name", verrs[0].Field())
}
