package comments

import "iter"

// Forest is an ordered forest of comments derived from a flat,
// parent-referencing row set. It is rebuilt on every read and never
// persisted as a tree.
//
// Nodes live in a flat arena and reference each other through integer
// indices, so the structure carries no parent/child object cycles.
type Forest struct {
	nodes []treeNode
	roots []int
}

type treeNode struct {
	comment  *Comment
	parent   int // index into nodes, -1 for roots
	children []int
}

// Node is a lightweight handle onto one comment inside a Forest.
type Node struct {
	forest *Forest
	index  int
}

// BuildForest assembles the reply hierarchy from a flat set of comments.
//
// Top-level comments (ParentID == 0) and orphans (ParentID referencing an
// id that is not part of the input) both become roots. Orphans surface
// before the true top-level comments; within each group the input order is
// preserved. Nil entries are filtered out rather than rejected.
func BuildForest(comments []*Comment) *Forest {
	f := &Forest{
		nodes: make([]treeNode, 0, len(comments)),
	}

	// Index every comment and partition into top-level nodes and replies,
	// keeping the input order within each partition.
	byID := make(map[int64]int, len(comments))
	var topLevel, replies []int

	for _, c := range comments {
		if c == nil {
			continue
		}

		idx := len(f.nodes)
		f.nodes = append(f.nodes, treeNode{comment: c, parent: -1})
		byID[c.ID] = idx

		if c.IsTopLevel() {
			topLevel = append(topLevel, idx)
		} else {
			replies = append(replies, idx)
		}
	}

	// Attach replies under their parents. Replies to a missing parent are
	// collected as orphans.
	var orphans []int
	for _, idx := range replies {
		parentIdx, ok := byID[f.nodes[idx].comment.ParentID]
		if !ok {
			orphans = append(orphans, idx)
			continue
		}
		f.nodes[idx].parent = parentIdx
		f.nodes[parentIdx].children = append(f.nodes[parentIdx].children, idx)
	}

	// Orphans come first, matching the historical merge order of the root
	// set. Not a load-bearing contract, but kept for compatibility.
	f.roots = append(orphans, topLevel...)

	return f
}

// Len returns the total number of comments in the forest.
func (f *Forest) Len() int {
	return len(f.nodes)
}

// Roots returns the root nodes: orphans first, then top-level comments.
func (f *Forest) Roots() []Node {
	roots := make([]Node, len(f.roots))
	for i, idx := range f.roots {
		roots[i] = Node{forest: f, index: idx}
	}
	return roots
}

// Comment returns the comment held by the node.
func (n Node) Comment() *Comment {
	return n.forest.nodes[n.index].comment
}

// Children returns the direct replies of the node in input order.
func (n Node) Children() []Node {
	indices := n.forest.nodes[n.index].children
	children := make([]Node, len(indices))
	for i, idx := range indices {
		children[i] = Node{forest: n.forest, index: idx}
	}
	return children
}

// Depth returns the nesting level of the node. Roots (including orphans)
// have depth 0.
func (n Node) Depth() int {
	depth := 0
	for idx := n.forest.nodes[n.index].parent; idx >= 0; idx = n.forest.nodes[idx].parent {
		depth++
	}
	return depth
}

// Walker receives callbacks while a forest is traversed depth-first.
// EnterLevel/ExitLevel fire around the child list of a node that has
// children, letting a renderer open and close nesting markup. Any nil hook
// is skipped.
type Walker struct {
	EnterComment func(node Node, depth int)
	ExitComment  func(node Node, depth int)
	EnterLevel   func(depth int)
	ExitLevel    func(depth int)
}

// Walk traverses the forest depth-first, invoking the walker's hooks for
// every node and nesting level.
func (f *Forest) Walk(w Walker) {
	for _, idx := range f.roots {
		f.walk(w, idx, 0)
	}
}

func (f *Forest) walk(w Walker, idx, depth int) {
	node := Node{forest: f, index: idx}

	if w.EnterComment != nil {
		w.EnterComment(node, depth)
	}

	if children := f.nodes[idx].children; len(children) > 0 {
		if w.EnterLevel != nil {
			w.EnterLevel(depth)
		}
		for _, child := range children {
			f.walk(w, child, depth+1)
		}
		if w.ExitLevel != nil {
			w.ExitLevel(depth)
		}
	}

	if w.ExitComment != nil {
		w.ExitComment(node, depth)
	}
}

// All returns a depth-first sequence of (node, depth) pairs. The sequence
// is lazy, finite and restartable: it is a pure function of the built
// forest, so ranging over it twice yields the same order both times.
func (f *Forest) All() iter.Seq2[Node, int] {
	return func(yield func(Node, int) bool) {
		for _, idx := range f.roots {
			if !f.push(yield, idx, 0) {
				return
			}
		}
	}
}

func (f *Forest) push(yield func(Node, int) bool, idx, depth int) bool {
	if !yield(Node{forest: f, index: idx}, depth) {
		return false
	}
	for _, child := range f.nodes[idx].children {
		if !f.push(yield, child, depth+1) {
			return false
		}
	}
	return true
}
