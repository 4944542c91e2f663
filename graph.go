package flowchart

// Graph is the flowchart description of a procedure. Node indices are
// positions in Nodes.
type Graph struct {
	Nodes            []Node `json:"nodes"`
	LinearEdges      []Edge `json:"linear_edges"`
	ConditionalEdges []Edge `json:"conditional_edges"`
}

// Node is one element of the procedure, tagged with its page position.
type Node struct {
	Label     string `json:"label"`
	PageIndex int    `json:"page_index"`
}

// Edge is a directed [from, to] pair of node indices.
type Edge [2]int

func (e Edge) From() int { return e[0] }
func (e Edge) To() int   { return e[1] }

// nodeIndex holds the lookups produced while enumerating nodes.
type nodeIndex struct {
	byPosition map[[2]int]int // (page, element) -> node
	pageStart  map[int]int    // page -> first node; empty pages are absent
	byElement  map[int64]int  // element id -> node
}

// Build turns a procedure into its flowchart graph. It never fails on
// dangling criteria references, empty pages or missing show-ifs; the only
// error is ErrMalformedConditionTree for a condition tree that loops.
func Build(p *Procedure) (*Graph, error) {
	g := &Graph{
		Nodes:            []Node{},
		LinearEdges:      []Edge{},
		ConditionalEdges: []Edge{},
	}
	if p == nil || len(p.Pages) == 0 {
		return g, nil
	}

	// First pass: enumerate nodes.
	idx := enumerateNodes(p.Pages, g)

	// Second pass: sequential flow.
	g.LinearEdges = linearEdges(len(g.Nodes))

	// Third pass: show-if dependencies. The entry page is unconditional.
	for i := 1; i < len(p.Pages); i++ {
		target, ok := idx.pageStart[i]
		if !ok {
			continue
		}

		deps, err := pageDependencies(&p.Pages[i])
		if err != nil {
			return nil, err
		}

		for _, id := range deps {
			from, ok := idx.byElement[id]
			if !ok {
				continue
			}
			g.ConditionalEdges = append(g.ConditionalEdges, Edge{from, target})
		}
	}

	return g, nil
}

func enumerateNodes(pages []Page, g *Graph) *nodeIndex {
	idx := &nodeIndex{
		byPosition: make(map[[2]int]int),
		pageStart:  make(map[int]int),
		byElement:  make(map[int64]int),
	}

	for i, page := range pages {
		for j, el := range page.Elements {
			n := len(g.Nodes)
			g.Nodes = append(g.Nodes, Node{Label: el.Question, PageIndex: i})

			idx.byPosition[[2]int{i, j}] = n
			if j == 0 {
				idx.pageStart[i] = n
			}
			// Unsaved elements have no id to be referenced by.
			if el.ID > 0 {
				idx.byElement[el.ID] = n
			}
		}
	}

	return idx
}

func linearEdges(n int) []Edge {
	if n < 2 {
		return []Edge{}
	}
	edges := make([]Edge, 0, n-1)
	for i := 1; i < n; i++ {
		edges = append(edges, Edge{i - 1, i})
	}
	return edges
}

// pageDependencies returns the distinct element ids referenced by the page's
// show-if trees, in first-seen pre-order.
func pageDependencies(page *Page) ([]int64, error) {
	seen := make(map[int64]bool)
	var deps []int64

	for _, s := range page.ShowIfs {
		err := walkConditions(s.Conditions, func(n *ConditionalNode) {
			id := n.CriteriaElement
			if id <= 0 || seen[id] {
				return
			}
			seen[id] = true
			deps = append(deps, id)
		})
		if err != nil {
			return nil, err
		}
	}

	return deps, nil
}
