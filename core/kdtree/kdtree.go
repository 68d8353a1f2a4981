// Package kdtree implements the balanced partition tree used for dynamic
// feature bucketing. Points are split on the widest dimension at the
// median until a depth or leaf-size limit is reached. The resulting node
// set doubles as the bucket structure for multi-dimension spline
// functions: every node, not just the leaves, identifies one region at
// one resolution.
package kdtree

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	aerrors "github.com/jaydenwhyte/aerosolve/pkg/errors"
)

// Node is one region of the partition. Leaf nodes have Left == -1 and
// Right == -1.
type Node struct {
	Min   []float64 // bounding box, inclusive
	Max   []float64
	Dim   int     // split dimension, -1 for leaves
	Split float64 // split value on Dim
	Left  int32
	Right int32
	Count int // number of fitted sample points in this region
}

// Tree is a balanced KD partition over a point sample.
type Tree struct {
	Nodes []Node
	Dims  int
}

// Options bound the partitioning.
type Options struct {
	MaxTreeDepth int
	MinLeafCount int
}

// Build fits a partition tree to the given sample points. All points must
// share the same dimensionality.
func Build(points [][]float64, opts Options) (*Tree, error) {
	if len(points) == 0 {
		return nil, aerrors.NewValueError("kdtree.Build", "no sample points")
	}
	dims := len(points[0])
	if dims == 0 {
		return nil, aerrors.NewValueError("kdtree.Build", "zero-dimensional points")
	}
	for i, p := range points {
		if len(p) != dims {
			return nil, aerrors.NewDimensionError("kdtree.Build", dims, len(p), i)
		}
	}
	if opts.MaxTreeDepth < 1 {
		opts.MaxTreeDepth = 1
	}
	if opts.MinLeafCount < 1 {
		opts.MinLeafCount = 1
	}

	idx := make([]int, len(points))
	for i := range idx {
		idx[i] = i
	}
	t := &Tree{Dims: dims}
	t.build(points, idx, 1, opts)
	return t, nil
}

// build appends the node covering idx and recurses; returns its index.
func (t *Tree) build(points [][]float64, idx []int, depth int, opts Options) int32 {
	node := Node{
		Min:   make([]float64, t.Dims),
		Max:   make([]float64, t.Dims),
		Dim:   -1,
		Left:  -1,
		Right: -1,
		Count: len(idx),
	}
	copy(node.Min, points[idx[0]])
	copy(node.Max, points[idx[0]])
	for _, i := range idx[1:] {
		for d := 0; d < t.Dims; d++ {
			v := points[i][d]
			if v < node.Min[d] {
				node.Min[d] = v
			}
			if v > node.Max[d] {
				node.Max[d] = v
			}
		}
	}

	self := int32(len(t.Nodes))
	t.Nodes = append(t.Nodes, node)

	if depth >= opts.MaxTreeDepth || len(idx) < 2*opts.MinLeafCount {
		return self
	}

	// Split the widest dimension at its median.
	dim := 0
	width := node.Max[0] - node.Min[0]
	for d := 1; d < t.Dims; d++ {
		if w := node.Max[d] - node.Min[d]; w > width {
			width = w
			dim = d
		}
	}
	if width <= 0 {
		return self // all points identical on every axis
	}

	vals := make([]float64, len(idx))
	for i, p := range idx {
		vals[i] = points[p][dim]
	}
	sort.Float64s(vals)
	split := stat.Quantile(0.5, stat.Empirical, vals, nil)

	var left, right []int
	for _, p := range idx {
		if points[p][dim] < split {
			left = append(left, p)
		} else {
			right = append(right, p)
		}
	}
	if len(left) < opts.MinLeafCount || len(right) < opts.MinLeafCount {
		return self
	}

	l := t.build(points, left, depth+1, opts)
	r := t.build(points, right, depth+1, opts)
	t.Nodes[self].Dim = dim
	t.Nodes[self].Split = split
	t.Nodes[self].Left = l
	t.Nodes[self].Right = r
	return self
}

// Path returns the node indices from the root down to the leaf whose
// region contains x. Points outside the fitted bounding box route to the
// nearest side.
func (t *Tree) Path(x []float64) []int32 {
	path := make([]int32, 0, 8)
	cur := int32(0)
	for cur >= 0 && int(cur) < len(t.Nodes) {
		path = append(path, cur)
		n := t.Nodes[cur]
		if n.Dim < 0 {
			break
		}
		if n.Dim < len(x) && x[n.Dim] < n.Split {
			cur = n.Left
		} else {
			cur = n.Right
		}
	}
	return path
}

// Leaves returns the indices of all leaf nodes.
func (t *Tree) Leaves() []int32 {
	var leaves []int32
	for i, n := range t.Nodes {
		if n.Dim < 0 {
			leaves = append(leaves, int32(i))
		}
	}
	return leaves
}

// Depth returns the maximum depth of the tree (root is depth 1).
func (t *Tree) Depth() int {
	var walk func(i int32, d int) int
	walk = func(i int32, d int) int {
		n := t.Nodes[i]
		if n.Dim < 0 {
			return d
		}
		ld := walk(n.Left, d+1)
		rd := walk(n.Right, d+1)
		if ld > rd {
			return ld
		}
		return rd
	}
	if len(t.Nodes) == 0 {
		return 0
	}
	return walk(0, 1)
}
