package pack

// Node is a rectangle in the binary split tree.
//
// A node is a placement candidate while Used is false. Once a block is placed
// on it the node is split: Right and Down cover the remaining space and the
// node itself records the placed rectangle's origin. Splitting is final; the
// tree never merges or frees nodes.
type Node struct {
	X, Y int
	W, H int

	Used  bool
	Right *Node
	Down  *Node
}

// Packer owns one placement tree rooted at a fixed-size rectangle.
type Packer struct {
	root *Node
}

// NewPacker creates a packer whose root covers (0, 0, w, h).
func NewPacker(w, h int) *Packer {
	return &Packer{root: &Node{W: w, H: h}}
}

// RestorePacker wraps an existing tree, typically one decoded from a saved
// snapshot. The tree is used as-is so earlier placements keep their space.
func RestorePacker(root *Node) *Packer {
	return &Packer{root: root}
}

// Root returns the root node of the tree.
func (p *Packer) Root() *Node { return p.root }

// Fit places a w×h rectangle using first-fit search and returns the node
// whose X, Y is the placement origin. It returns false when no free leaf is
// large enough; that is not an error, the caller tries elsewhere.
func (p *Packer) Fit(w, h int) (*Node, bool) {
	n := findNode(p.root, w, h)
	if n == nil {
		return nil, false
	}
	return splitNode(n, w, h), true
}

// findNode searches right subtrees before down subtrees and returns the first
// unused node that can hold w×h.
func findNode(n *Node, w, h int) *Node {
	if n == nil {
		return nil
	}
	if n.Used {
		if r := findNode(n.Right, w, h); r != nil {
			return r
		}
		return findNode(n.Down, w, h)
	}
	if w <= n.W && h <= n.H {
		return n
	}
	return nil
}

// splitNode marks n used and creates the two children that tile the space
// left over after a w×h placement at n's origin.
func splitNode(n *Node, w, h int) *Node {
	n.Used = true
	n.Right = &Node{X: n.X + w, Y: n.Y, W: n.W - w, H: h}
	n.Down = &Node{X: n.X, Y: n.Y + h, W: n.W, H: n.H - h}
	return n
}

// Walk visits every node in pre-order (node, right, down). Returning false
// from fn stops the walk.
func (p *Packer) Walk(fn func(n *Node, depth int) bool) {
	walk(p.root, 0, fn)
}

func walk(n *Node, depth int, fn func(*Node, int) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n, depth) {
		return false
	}
	return walk(n.Right, depth+1, fn) && walk(n.Down, depth+1, fn)
}

// UsedArea returns the area covered by placed rectangles.
func (p *Packer) UsedArea() int {
	area := 0
	p.Walk(func(n *Node, _ int) bool {
		if n.Used {
			area += n.placedArea()
		}
		return true
	})
	return area
}

// Count returns the number of nodes in the tree and how many of them hold a
// placed rectangle.
func (p *Packer) Count() (nodes, placed int) {
	p.Walk(func(n *Node, _ int) bool {
		nodes++
		if n.Used {
			placed++
		}
		return true
	})
	return nodes, placed
}

// placedArea derives the placed rectangle from a split node: its width is
// the parent width minus the right child's, its height the parent height
// minus the down child's.
func (n *Node) placedArea() int {
	w, h := n.Placed()
	return w * h
}

// Placed returns the size of the rectangle placed on a used node.
// For an unused node it returns 0, 0.
func (n *Node) Placed() (w, h int) {
	if !n.Used || n.Right == nil || n.Down == nil {
		return 0, 0
	}
	return n.W - n.Right.W, n.H - n.Down.H
}
