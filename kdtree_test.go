package bondgraph

import (
	"math"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// generatePoints returns n random xyz triples in [0, scale)^3.
func generatePoints(n int, seed int64, scale float64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	pts := make([]float64, 3*n)
	for i := range pts {
		pts[i] = rng.Float64() * scale
	}
	return pts
}

func neighborIndices(nbs []Neighbor) []int {
	idx := make([]int, len(nbs))
	for i, nb := range nbs {
		idx[i] = nb.Index
	}
	return idx
}

// --- Construction tests ---

func TestKDTree_Empty(t *testing.T) {
	tree := NewKDTree(nil, nil)

	assert.Equal(t, noNode, tree.Root())
	assert.Equal(t, 0, tree.NumPoints())
	assert.Equal(t, 0, tree.NumNodes())
	assert.NoError(t, tree.Verify())
	assert.Empty(t, tree.Nearest(Point{0, 0, 0}, 4, math.Inf(1)))
}

func TestKDTree_SinglePoint(t *testing.T) {
	tree := NewKDTree([]float64{1, 2, 3}, nil)

	require.Equal(t, 0, tree.Root())
	nd := tree.Node(tree.Root())
	assert.Equal(t, NodeData{Perm: 0, Left: noNode, Right: noNode, Parent: noNode}, nd)
	assert.NoError(t, tree.Verify())

	got := tree.Nearest(Point{1, 2, 4}, 3, math.Inf(1))
	require.Len(t, got, 1)
	assert.Equal(t, 0, got[0].Index)
	assert.InDelta(t, 1.0, got[0].Distance, floatTol)
}

func TestKDTree_PanicsOnRaggedBuffer(t *testing.T) {
	assert.Panics(t, func() { NewKDTree([]float64{1, 2}, nil) })
}

func TestKDTree_VerifyVariousShapes(t *testing.T) {
	collinear := make([]float64, 0, 3*200)
	for i := 0; i < 200; i++ {
		collinear = append(collinear, float64(i%17), 0, 0)
	}
	planar := make([]float64, 0, 3*300)
	for i := 0; i < 300; i++ {
		planar = append(planar, 5, float64(i%11), float64(i%7))
	}
	duplicates := make([]float64, 0, 3*100)
	for i := 0; i < 100; i++ {
		duplicates = append(duplicates, 1.5, -2, 3)
	}

	cases := map[string][]float64{
		"n=0":        {},
		"n=1":        generatePoints(1, 1, 10),
		"n=2":        generatePoints(2, 2, 10),
		"n=3":        generatePoints(3, 3, 10),
		"n=1000":     generatePoints(1000, 4, 10),
		"collinear":  collinear,
		"planar":     planar,
		"duplicates": duplicates,
		"integers":   roundAll(generatePoints(500, 5, 4)),
	}

	for name, pts := range cases {
		t.Run(name, func(t *testing.T) {
			before := slices.Clone(pts)
			tree := NewKDTree(pts, nil)

			require.NoError(t, tree.Verify())
			assert.Equal(t, len(pts)/3, tree.NumNodes())
			assert.Equal(t, before, pts, "points buffer must not be modified")
		})
	}
}

func roundAll(pts []float64) []float64 {
	for i := range pts {
		pts[i] = math.Round(pts[i])
	}
	return pts
}

func TestKDTree_DepthOfMatchesTraversal(t *testing.T) {
	tree := NewKDTree(generatePoints(257, 9, 1), nil)

	type frame struct{ node, depth int }
	stack := []frame{{tree.Root(), 0}}
	maxDepth := 0
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		require.Equal(t, f.depth, tree.DepthOf(f.node), "node %d", f.node)
		maxDepth = max(maxDepth, f.depth)

		nd := tree.Node(f.node)
		if nd.Left != noNode {
			stack = append(stack, frame{nd.Left, f.depth + 1})
		}
		if nd.Right != noNode {
			stack = append(stack, frame{nd.Right, f.depth + 1})
		}
	}
	// Median splits keep the tree balanced: ceil(log2(257+1)) - 1.
	assert.Equal(t, 8, maxDepth)
}

func TestKDTree_VerifyDetectsOrderingViolation(t *testing.T) {
	pts := make([]float64, 0, 21)
	for i := 0; i < 7; i++ {
		pts = append(pts, float64(i), 0, 0)
	}
	tree := NewKDTree(pts, nil)
	require.NoError(t, tree.Verify())

	// Positions 0 and 6 lie in opposite subtrees of the root's x split.
	idx := tree.Indices()
	idx[0], idx[6] = idx[6], idx[0]
	assert.Error(t, tree.Verify())
}

func TestKDTree_VerifyDetectsBadPermutation(t *testing.T) {
	tree := NewKDTree(generatePoints(10, 3, 1), nil)
	idx := tree.Indices()
	idx[0] = idx[1]

	err := tree.Verify()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "twice")
}

func TestKDTree_RebuildReusesStorage(t *testing.T) {
	tree := NewKDTree(generatePoints(1000, 1, 5), nil)
	nodesCap := cap(tree.nodes)

	small := generatePoints(300, 2, 5)
	tree.Rebuild(small)
	require.NoError(t, tree.Verify())
	assert.Equal(t, 300, tree.NumPoints())
	assert.Equal(t, nodesCap, cap(tree.nodes))

	fresh := NewKDTree(small, nil)
	q := Point{2.5, 2.5, 2.5}
	assert.ElementsMatch(t,
		neighborIndices(fresh.Nearest(q, 8, math.Inf(1))),
		neighborIndices(tree.Nearest(q, 8, math.Inf(1))))

	tree.Rebuild(nil)
	assert.Equal(t, noNode, tree.Root())
	assert.Empty(t, tree.Nearest(q, 8, math.Inf(1)))
}

// --- Nearest tests ---

func TestKDTree_NearestMatchesBruteForce(t *testing.T) {
	for _, n := range []int{0, 1, 2, 10, 1000} {
		pts := generatePoints(n, int64(n)+100, 10)
		tree := NewKDTree(pts, nil)
		brute := NewBruteForce(pts, nil)
		queries := generatePoints(50, int64(n)+200, 10)

		for _, k := range []int{1, 4, 10} {
			for q := 0; q < 50; q++ {
				query := pointAt(queries, q)
				want := brute.Nearest(query, k, math.Inf(1))
				got := tree.Nearest(query, k, math.Inf(1))
				require.ElementsMatch(t, neighborIndices(want), neighborIndices(got),
					"n=%d k=%d query=%v", n, k, query)
			}
		}
	}
}

func TestKDTree_NearestSelfQueries(t *testing.T) {
	pts := generatePoints(500, 21, 3)
	tree := NewKDTree(pts, nil)
	brute := NewBruteForce(pts, nil)

	for i := 0; i < 500; i++ {
		q := pointAt(pts, i)
		got := tree.Nearest(q, 4, math.Inf(1))
		require.ElementsMatch(t, neighborIndices(brute.Nearest(q, 4, math.Inf(1))), neighborIndices(got))
		require.Contains(t, neighborIndices(got), i)
	}
}

func TestKDTree_NearestRespectsMaxDistance(t *testing.T) {
	pts := generatePoints(1000, 31, 1)
	tree := NewKDTree(pts, nil)
	brute := NewBruteForce(pts, nil)
	queries := generatePoints(100, 32, 1)

	for _, r := range []float64{0, 0.001, 0.01, 0.05} {
		for q := 0; q < 100; q++ {
			query := pointAt(queries, q)
			got := tree.Nearest(query, 20, r)
			for _, nb := range got {
				require.LessOrEqual(t, nb.Distance, r)
				assert.InDelta(t, SquaredEuclideanMetric{}.Distance(query, pointAt(pts, nb.Index)), nb.Distance, floatTol)
			}
			require.ElementsMatch(t, neighborIndices(brute.Nearest(query, 20, r)), neighborIndices(got))
		}
	}
}

func TestKDTree_NearestNonPositiveK(t *testing.T) {
	tree := NewKDTree(generatePoints(10, 1, 1), nil)
	assert.Empty(t, tree.Nearest(Point{}, 0, math.Inf(1)))
	assert.Empty(t, tree.Nearest(Point{}, -3, math.Inf(1)))
}

func TestKDTree_NearestDuplicatePoints(t *testing.T) {
	pts := make([]float64, 0, 30)
	for i := 0; i < 10; i++ {
		pts = append(pts, 1, 1, 1)
	}
	tree := NewKDTree(pts, nil)

	got := tree.Nearest(Point{1, 1, 1}, 4, math.Inf(1))
	require.Len(t, got, 4)
	for _, nb := range got {
		assert.Equal(t, 0.0, nb.Distance)
	}
	assert.Len(t, uniqueInts(neighborIndices(got)), 4)
}

// Queries lying exactly on splitting planes must still see both sides.
func TestKDTree_NearestOnSplitPlanes(t *testing.T) {
	var pts []float64
	for x := 0; x < 5; x++ {
		for y := 0; y < 5; y++ {
			for z := 0; z < 5; z++ {
				pts = append(pts, float64(x), float64(y), float64(z))
			}
		}
	}
	tree := NewKDTree(pts, nil)
	brute := NewBruteForce(pts, nil)
	require.NoError(t, tree.Verify())

	for i := 0; i < len(pts)/3; i++ {
		onGrid := pointAt(pts, i)
		between := onGrid
		between[0] += 0.5
		for _, q := range []Point{onGrid, between} {
			got := tree.Nearest(q, 7, math.Inf(1))
			want := brute.Nearest(q, 7, math.Inf(1))
			require.Len(t, got, 7)
			// Equidistant candidates: compare distances, not identities.
			assert.ElementsMatch(t, neighborDistances(want), neighborDistances(got), "query %v", q)
		}
	}
}

func TestKDTree_NearestOtherMetrics(t *testing.T) {
	pts := generatePoints(400, 41, 10)
	queries := generatePoints(30, 42, 10)
	for _, metric := range []DistanceMetric{EuclideanMetric{}, ManhattanMetric{}, ChebyshevMetric{}} {
		tree := NewKDTree(pts, metric)
		brute := NewBruteForce(pts, metric)
		for q := 0; q < 30; q++ {
			query := pointAt(queries, q)
			require.ElementsMatch(t,
				neighborIndices(brute.Nearest(query, 5, math.Inf(1))),
				neighborIndices(tree.Nearest(query, 5, math.Inf(1))),
				"metric=%T query=%v", metric, query)
		}
	}
}

func TestKDTree_ConcurrentQueries(t *testing.T) {
	pts := generatePoints(2000, 51, 10)
	tree := NewKDTree(pts, nil)
	brute := NewBruteForce(pts, nil)

	done := make(chan []int, 8)
	for w := 0; w < 8; w++ {
		go func(w int) {
			var bad []int
			for i := w; i < 2000; i += 8 {
				q := pointAt(pts, i)
				got := neighborIndices(tree.Nearest(q, 4, 1.0))
				want := neighborIndices(brute.Nearest(q, 4, 1.0))
				slices.Sort(got)
				slices.Sort(want)
				if !slices.Equal(got, want) {
					bad = append(bad, i)
				}
			}
			done <- bad
		}(w)
	}
	for w := 0; w < 8; w++ {
		assert.Empty(t, <-done)
	}
}

func neighborDistances(nbs []Neighbor) []float64 {
	d := make([]float64, len(nbs))
	for i, nb := range nbs {
		d[i] = nb.Distance
	}
	return d
}

func uniqueInts(xs []int) map[int]bool {
	m := make(map[int]bool, len(xs))
	for _, x := range xs {
		m[x] = true
	}
	return m
}
