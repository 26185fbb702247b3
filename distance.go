package bondgraph

import "math"

// Point is a single 3-D coordinate triple.
type Point = [3]float64

// DistanceMetric computes the distance between two 3-D points.
//
// Metrics used with a KDTree must be monotone in every per-axis difference,
// so that the distance from a query to a splitting plane is a lower bound on
// the distance to any point on the far side. All metrics in this package
// satisfy that.
type DistanceMetric interface {
	Distance(a, b Point) float64
}

// DistanceFunc adapts a plain function into a DistanceMetric.
type DistanceFunc func(a, b Point) float64

func (f DistanceFunc) Distance(a, b Point) float64 { return f(a, b) }

// SquaredEuclideanMetric computes the squared Euclidean distance. It is the
// metric used for bond inference: thresholds and search radii are compared
// in squared units, so no square root is ever taken.
type SquaredEuclideanMetric struct{}

func (SquaredEuclideanMetric) Distance(a, b Point) float64 {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	dz := a[2] - b[2]
	return dx*dx + dy*dy + dz*dz
}

// EuclideanMetric computes the Euclidean (L2) distance.
type EuclideanMetric struct{}

func (EuclideanMetric) Distance(a, b Point) float64 {
	return math.Sqrt(SquaredEuclideanMetric{}.Distance(a, b))
}

// ManhattanMetric computes the Manhattan (L1 / city-block) distance.
type ManhattanMetric struct{}

func (ManhattanMetric) Distance(a, b Point) float64 {
	return math.Abs(a[0]-b[0]) + math.Abs(a[1]-b[1]) + math.Abs(a[2]-b[2])
}

// ChebyshevMetric computes the Chebyshev (L-infinity) distance.
type ChebyshevMetric struct{}

func (ChebyshevMetric) Distance(a, b Point) float64 {
	return max(math.Abs(a[0]-b[0]), math.Abs(a[1]-b[1]), math.Abs(a[2]-b[2]))
}

// pointAt returns the i-th triple of a flat row-major xyz buffer.
func pointAt(points []float64, i int) Point {
	return Point{points[3*i], points[3*i+1], points[3*i+2]}
}
