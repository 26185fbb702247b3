package bondgraph

// Molecules labels n particles by the connected components of bonds.
// Labels are dense, starting at 0, and assigned in order of each
// component's lowest particle index. Unbonded particles get their own label.
func Molecules(n int, bonds []Bond) []int {
	uf := NewUnionFind(n)
	for _, b := range bonds {
		uf.Union(b.I, b.J)
	}

	labels := make([]int, n)
	byRoot := make(map[int]int)
	for i := 0; i < n; i++ {
		root := uf.Find(i)
		label, ok := byRoot[root]
		if !ok {
			label = len(byRoot)
			byRoot[root] = label
		}
		labels[i] = label
	}
	return labels
}

// MoleculeSizes returns the particle count of each label produced by
// Molecules, indexed by label.
func MoleculeSizes(labels []int) []int {
	var sizes []int
	for _, l := range labels {
		for l >= len(sizes) {
			sizes = append(sizes, 0)
		}
		sizes[l]++
	}
	return sizes
}
