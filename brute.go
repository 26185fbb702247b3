package bondgraph

import (
	"fmt"
	"sort"
)

// BruteForce is a linear-scan NeighborIndex. It answers the same queries as
// KDTree in O(n) per query and serves as the reference for it.
type BruteForce struct {
	points []float64
	n      int
	metric DistanceMetric
}

// NewBruteForce wraps points, a flat row-major xyz buffer, without copying.
// A nil metric defaults to SquaredEuclideanMetric.
func NewBruteForce(points []float64, metric DistanceMetric) *BruteForce {
	if len(points)%3 != 0 {
		panic(fmt.Sprintf("bondgraph: points length %d is not a multiple of 3", len(points)))
	}
	if metric == nil {
		metric = SquaredEuclideanMetric{}
	}
	return &BruteForce{points: points, n: len(points) / 3, metric: metric}
}

func (b *BruteForce) NumPoints() int { return b.n }

// Nearest returns the maxResults closest points within maxDistance, sorted by
// ascending distance with ties broken by lower index.
func (b *BruteForce) Nearest(query Point, maxResults int, maxDistance float64) []Neighbor {
	if b.n == 0 || maxResults <= 0 {
		return nil
	}
	all := make([]Neighbor, 0, b.n)
	for i := 0; i < b.n; i++ {
		d := b.metric.Distance(query, pointAt(b.points, i))
		if d <= maxDistance {
			all = append(all, Neighbor{Index: i, Distance: d})
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Distance == all[j].Distance {
			return all[i].Index < all[j].Index
		}
		return all[i].Distance < all[j].Distance
	})
	if len(all) > maxResults {
		all = all[:maxResults]
	}
	return all
}
