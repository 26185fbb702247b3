package bondgraph

import (
	"fmt"
	"slices"
)

// noNode marks an absent child or the root's parent.
const noNode = -1

// nodeWidth is the number of ints stored per node:
// (permutation index, left child, right child, parent).
const nodeWidth = 4

// KDTree is a 3-D k-d tree for bounded nearest-neighbor queries. Points are
// read from a caller-owned flat row-major buffer that is never copied or
// written; the tree only reorders its own permutation array.
//
// Nodes are stored in pre-order in a flat int slice, four ints per node.
// A node at depth d splits on axis d%3. Every point below its left child has
// a coordinate on that axis <= the node's, every point below its right child
// has one >= the node's.
type KDTree struct {
	points  []float64 // caller-owned xyz triples, len 3*n
	n       int
	metric  DistanceMetric
	indices []int // permutation: tree position → original point index
	nodes   []int // nodeWidth ints per node
	root    int
}

// NodeData is the decoded form of one node record.
type NodeData struct {
	Perm   int // position in the permutation array
	Left   int // child node offset, or -1
	Right  int // child node offset, or -1
	Parent int // parent node offset, or -1 for the root
}

// NewKDTree builds a k-d tree over points, a flat row-major buffer of xyz
// triples. A nil metric defaults to SquaredEuclideanMetric. NewKDTree panics
// if len(points) is not a multiple of 3.
func NewKDTree(points []float64, metric DistanceMetric) *KDTree {
	if metric == nil {
		metric = SquaredEuclideanMetric{}
	}
	t := &KDTree{metric: metric}
	t.Rebuild(points)
	return t
}

// Rebuild re-indexes the tree over a new position buffer, reusing the node
// and permutation storage from the previous build when it is large enough.
func (t *KDTree) Rebuild(points []float64) {
	if len(points)%3 != 0 {
		panic(fmt.Sprintf("bondgraph: points length %d is not a multiple of 3", len(points)))
	}
	n := len(points) / 3
	t.points = points
	t.n = n

	t.indices = slices.Grow(t.indices[:0], n)[:n]
	for i := range t.indices {
		t.indices[i] = i
	}
	t.nodes = slices.Grow(t.nodes[:0], n*nodeWidth)

	t.root = t.buildNode(0, n, 0, noNode)
}

// buildNode places the median of indices[begin:end) on axis depth%3 and
// recurses into both halves. It returns the new node's offset, or noNode for
// an empty range.
func (t *KDTree) buildNode(begin, end, depth, parent int) int {
	if end <= begin {
		return noNode
	}
	median := begin + (end-begin)/2
	t.selectMedian(begin, end, median, depth%3)

	node := len(t.nodes) / nodeWidth
	t.nodes = append(t.nodes, median, noNode, noNode, parent)
	if end-begin == 1 {
		return node
	}

	left := t.buildNode(begin, median, depth+1, node)
	right := t.buildNode(median+1, end, depth+1, node)
	t.nodes[node*nodeWidth+1] = left
	t.nodes[node*nodeWidth+2] = right
	return node
}

// selectMedian partially orders indices[begin:end) so that position k holds
// the element it would hold if the range were sorted on axis, with nothing
// larger before it and nothing smaller after it. Hoare partitioning with the
// current k-th value as pivot (Wirth's selection).
func (t *KDTree) selectMedian(begin, end, k, axis int) {
	idx := t.indices
	l, r := begin, end-1
	for l < r {
		x := t.coord(idx[k], axis)
		i, j := l, r
		for i <= j {
			for t.coord(idx[i], axis) < x {
				i++
			}
			for x < t.coord(idx[j], axis) {
				j--
			}
			if i <= j {
				idx[i], idx[j] = idx[j], idx[i]
				i++
				j--
			}
		}
		if j < k {
			l = i
		}
		if k < i {
			r = j
		}
	}
}

func (t *KDTree) coord(id, axis int) float64 { return t.points[3*id+axis] }

// pointOf returns the point index stored at node.
func (t *KDTree) pointOf(node int) int { return t.indices[t.nodes[node*nodeWidth]] }

func (t *KDTree) NumPoints() int    { return t.n }
func (t *KDTree) NumNodes() int     { return len(t.nodes) / nodeWidth }
func (t *KDTree) Root() int         { return t.root }
func (t *KDTree) Indices() []int    { return t.indices }
func (t *KDTree) Points() []float64 { return t.points }

// Node returns the decoded record of the node at offset node.
func (t *KDTree) Node(node int) NodeData {
	b := node * nodeWidth
	return NodeData{Perm: t.nodes[b], Left: t.nodes[b+1], Right: t.nodes[b+2], Parent: t.nodes[b+3]}
}

// PointIndex returns the original point index held by node.
func (t *KDTree) PointIndex(node int) int { return t.pointOf(node) }

// DepthOf returns the depth of node by walking parent links to the root.
// It is O(depth); the search path carries depth explicitly instead.
func (t *KDTree) DepthOf(node int) int {
	depth := 0
	for p := t.nodes[node*nodeWidth+3]; p != noNode; p = t.nodes[p*nodeWidth+3] {
		depth++
	}
	return depth
}

// --- nearest-neighbor search ---

type candidate struct {
	node int
	dist float64
}

// negDistance orders the result heap so its root is the farthest candidate.
func negDistance(c candidate) float64 { return -c.dist }

type searchState struct {
	query       Point
	k           int
	maxDistance float64
	best        *MinHeap[candidate]
}

// worst returns the largest kept distance. Only valid when best is non-empty.
func (s *searchState) worst() float64 {
	top, _ := s.best.PeekMin()
	return top.dist
}

// consider keeps node if it is within range and beats the current worst, or
// if fewer than k candidates are held. The farthest is evicted above k.
func (s *searchState) consider(node int, dist float64) {
	if dist > s.maxDistance {
		return
	}
	if s.best.Len() < s.k || dist < s.worst() {
		s.best.Push(candidate{node: node, dist: dist})
		if s.best.Len() > s.k {
			s.best.PopMin()
		}
	}
}

// Nearest returns up to maxResults points with distance <= maxDistance from
// query. The result is a candidate set and is not sorted.
func (t *KDTree) Nearest(query Point, maxResults int, maxDistance float64) []Neighbor {
	if t.root == noNode || maxResults <= 0 {
		return nil
	}
	s := searchState{
		query:       query,
		k:           maxResults,
		maxDistance: maxDistance,
		best:        newMinHeapCap(negDistance, maxResults+1),
	}
	t.nearestSearch(t.root, 0, &s)

	items := s.best.Items()
	out := make([]Neighbor, len(items))
	for i, c := range items {
		out[i] = Neighbor{Index: t.pointOf(c.node), Distance: c.dist}
	}
	return out
}

// nearestSearch descends the near side of node first, then considers node
// itself, then crosses the splitting plane if a closer point could lie there.
// A query exactly on the plane descends left.
func (t *KDTree) nearestSearch(node, depth int, s *searchState) {
	b := node * nodeWidth
	p := pointAt(t.points, t.indices[t.nodes[b]])
	own := t.metric.Distance(s.query, p)
	left, right := t.nodes[b+1], t.nodes[b+2]

	if left == noNode && right == noNode {
		s.consider(node, own)
		return
	}

	axis := depth % 3
	var near, far int
	switch {
	case right == noNode:
		near, far = left, noNode
	case left == noNode:
		near, far = right, noNode
	case s.query[axis] <= p[axis]:
		near, far = left, right
	default:
		near, far = right, left
	}

	t.nearestSearch(near, depth+1, s)
	s.consider(node, own)

	if far == noNode {
		return
	}
	// Projection of the query onto the splitting plane through p.
	plane := p
	plane[axis] = s.query[axis]
	planeDist := t.metric.Distance(plane, p)
	if planeDist <= s.maxDistance && (s.best.Len() < s.k || planeDist < s.worst()) {
		t.nearestSearch(far, depth+1, s)
	}
}

// --- verification ---

// Verify checks that the permutation array is a permutation of 0..n-1 and
// that the k-d ordering holds at every node. It returns a description of the
// first violation found. Intended for tests and debugging.
func (t *KDTree) Verify() error {
	seen := make([]bool, t.n)
	for pos, id := range t.indices {
		if id < 0 || id >= t.n {
			return fmt.Errorf("bondgraph: indices[%d] = %d out of range [0, %d)", pos, id, t.n)
		}
		if seen[id] {
			return fmt.Errorf("bondgraph: indices contains %d twice", id)
		}
		seen[id] = true
	}
	if t.root == noNode {
		if t.n != 0 {
			return fmt.Errorf("bondgraph: empty tree over %d points", t.n)
		}
		return nil
	}
	if got := t.NumNodes(); got != t.n {
		return fmt.Errorf("bondgraph: %d nodes for %d points", got, t.n)
	}
	return t.VerifyNode(t.root, 0)
}

// VerifyNode checks the k-d ordering for the subtree rooted at node, which
// is assumed to sit at the given depth.
func (t *KDTree) VerifyNode(node, depth int) error {
	nd := t.Node(node)
	axis := depth % 3
	split := t.coord(t.pointOf(node), axis)

	for _, child := range []struct {
		offset int
		left   bool
	}{{nd.Left, true}, {nd.Right, false}} {
		if child.offset == noNode {
			continue
		}
		if parent := t.nodes[child.offset*nodeWidth+3]; parent != node {
			return fmt.Errorf("bondgraph: node %d has parent %d, want %d", child.offset, parent, node)
		}
		if err := t.checkSide(child.offset, node, axis, split, child.left); err != nil {
			return err
		}
		if err := t.VerifyNode(child.offset, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// checkSide walks the subtree at start and reports the first point on the
// wrong side of owner's splitting plane.
func (t *KDTree) checkSide(start, owner, axis int, split float64, left bool) error {
	stack := []int{start}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		id := t.pointOf(node)
		v := t.coord(id, axis)
		if left && v > split {
			return fmt.Errorf("bondgraph: point %d (axis %d = %g) in left subtree of node %d exceeds split %g",
				id, axis, v, owner, split)
		}
		if !left && v < split {
			return fmt.Errorf("bondgraph: point %d (axis %d = %g) in right subtree of node %d is below split %g",
				id, axis, v, owner, split)
		}

		nd := t.Node(node)
		if nd.Left != noNode {
			stack = append(stack, nd.Left)
		}
		if nd.Right != noNode {
			stack = append(stack, nd.Right)
		}
	}
	return nil
}
