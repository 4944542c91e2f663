package flowchart

import (
	"fmt"
	"strings"
)

// Sentinel node ids of the rendered flowchart.
const (
	StartNodeID = -1
	EndNodeID   = -2
)

const labelMaxWidth = 150

// Flowchart is the node/edge description consumed by the browser network
// renderer.
type Flowchart struct {
	Nodes []FlowchartNode `json:"nodes"`
	Edges []FlowchartEdge `json:"edges"`
}

type FlowchartNode struct {
	ID              int              `json:"id"`
	Label           string           `json:"label"`
	Shape           string           `json:"shape"`
	Group           int              `json:"group"`
	WidthConstraint *WidthConstraint `json:"widthConstraint,omitempty"`
}

type WidthConstraint struct {
	Maximum int `json:"maximum"`
}

// FlowchartEdge is solid for sequential flow and dashed for a condition.
type FlowchartEdge struct {
	From   int    `json:"from"`
	To     int    `json:"to"`
	Arrows string `json:"arrows"`
	Dashes bool   `json:"dashes,omitempty"`
}

func boxNode(id int, label string, group int) FlowchartNode {
	return FlowchartNode{
		ID:              id,
		Label:           label,
		Shape:           "box",
		Group:           group,
		WidthConstraint: &WidthConstraint{Maximum: labelMaxWidth},
	}
}

// Flowchart renders the graph with Start and End terminals. Node ids equal
// graph node indices; page index is the group.
func (g *Graph) Flowchart() *Flowchart {
	fc := &Flowchart{
		Nodes: make([]FlowchartNode, 0, len(g.Nodes)+2),
		Edges: make([]FlowchartEdge, 0, len(g.LinearEdges)+len(g.ConditionalEdges)+2),
	}

	fc.Nodes = append(fc.Nodes, boxNode(StartNodeID, "Start", StartNodeID))
	for i, n := range g.Nodes {
		fc.Nodes = append(fc.Nodes, boxNode(i, n.Label, n.PageIndex))
	}
	fc.Nodes = append(fc.Nodes, boxNode(EndNodeID, "End", EndNodeID))

	for _, e := range g.LinearEdges {
		fc.Edges = append(fc.Edges, FlowchartEdge{From: e.From(), To: e.To(), Arrows: "to"})
	}
	for _, e := range g.ConditionalEdges {
		fc.Edges = append(fc.Edges, FlowchartEdge{From: e.From(), To: e.To(), Arrows: "to", Dashes: true})
	}

	if len(g.Nodes) == 0 {
		fc.Edges = append(fc.Edges, FlowchartEdge{From: StartNodeID, To: EndNodeID, Arrows: "to"})
		return fc
	}
	fc.Edges = append(fc.Edges,
		FlowchartEdge{From: StartNodeID, To: 0, Arrows: "to"},
		FlowchartEdge{From: len(g.Nodes) - 1, To: EndNodeID, Arrows: "to"},
	)
	return fc
}

// Mermaid exports the graph as a Mermaid flowchart, one subgraph per page.
func (g *Graph) Mermaid() string {
	var b strings.Builder
	b.WriteString("flowchart TD\n")
	b.WriteString("    start([Start])\n")

	page := -1
	for i, n := range g.Nodes {
		if n.PageIndex != page {
			if page >= 0 {
				b.WriteString("    end\n")
			}
			page = n.PageIndex
			fmt.Fprintf(&b, "    subgraph page%d [Page %d]\n", page, page+1)
		}
		fmt.Fprintf(&b, "        n%d[\"%s\"]\n", i, mermaidLabel(n.Label))
	}
	if page >= 0 {
		b.WriteString("    end\n")
	}
	b.WriteString("    finish([End])\n")

	if len(g.Nodes) == 0 {
		b.WriteString("    start --> finish\n")
		return b.String()
	}

	b.WriteString("    start --> n0\n")
	for _, e := range g.LinearEdges {
		fmt.Fprintf(&b, "    n%d --> n%d\n", e.From(), e.To())
	}
	for _, e := range g.ConditionalEdges {
		fmt.Fprintf(&b, "    n%d -.-> n%d\n", e.From(), e.To())
	}
	fmt.Fprintf(&b, "    n%d --> finish\n", len(g.Nodes)-1)
	return b.String()
}

var mermaidEscaper = strings.NewReplacer(`"`, "#quot;", "\n", " ")

func mermaidLabel(s string) string {
	return mermaidEscaper.Replace(s)
}
