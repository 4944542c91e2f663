package flowchart

// walkConditions visits every node of a condition tree in pre-order.
// A nil root is an empty tree. Nodes shared between branches are visited
// once; a node that is its own descendant yields ErrMalformedConditionTree.
func walkConditions(root *ConditionalNode, visit func(*ConditionalNode)) error {
	if root == nil {
		return nil
	}

	const (
		unvisited = 0
		visiting  = 1
		visited   = 2
	)

	state := make(map[*ConditionalNode]int)

	var dfs func(n *ConditionalNode) bool
	dfs = func(n *ConditionalNode) bool {
		state[n] = visiting
		visit(n)
		for _, child := range n.Children {
			if child == nil {
				continue
			}
			switch state[child] {
			case visiting:
				return true
			case unvisited:
				if dfs(child) {
					return true
				}
			}
		}
		state[n] = visited
		return false
	}

	if dfs(root) {
		return ErrMalformedConditionTree
	}
	return nil
}

// WalkConditions is the exported form of the tree walk, used by stores to
// resolve and rewrite criteria references.
func WalkConditions(root *ConditionalNode, visit func(*ConditionalNode)) error {
	return walkConditions(root, visit)
}

// CloneConditions returns a deep copy of a condition tree.
func CloneConditions(root *ConditionalNode) (*ConditionalNode, error) {
	if root == nil {
		return nil, nil
	}
	if err := walkConditions(root, func(*ConditionalNode) {}); err != nil {
		return nil, err
	}
	return cloneNode(root), nil
}

func cloneNode(n *ConditionalNode) *ConditionalNode {
	c := *n
	c.Children = nil
	for _, child := range n.Children {
		if child == nil {
			continue
		}
		c.Children = append(c.Children, cloneNode(child))
	}
	return &c
}
