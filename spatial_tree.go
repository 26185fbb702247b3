package bondgraph

import "fmt"

// Neighbor is one candidate returned by a nearest-neighbor query.
type Neighbor struct {
	Index    int     // point index into the original position buffer
	Distance float64 // metric distance to the query point
}

// NeighborIndex is the read interface shared by KDTree and BruteForce.
// Implementations are safe for concurrent queries once built.
type NeighborIndex interface {
	// Nearest returns up to maxResults points whose distance to query is
	// <= maxDistance. The order of the returned slice is unspecified.
	Nearest(query Point, maxResults int, maxDistance float64) []Neighbor

	// NumPoints returns the number of indexed points.
	NumPoints() int
}

// IndexKind selects the neighbor index used by the bond builder.
type IndexKind string

const (
	IndexAuto   IndexKind = "auto"
	IndexKDTree IndexKind = "kdtree"
	IndexBrute  IndexKind = "brute"
)

// selectIndex resolves IndexAuto into a concrete index kind. The k-d tree is
// always chosen for auto: its tie-breaking at the neighbor bound is what
// existing bond counts were produced with, and brute force may keep a
// different one of several equidistant candidates.
func selectIndex(kind IndexKind) (IndexKind, error) {
	switch kind {
	case IndexAuto, "":
		return IndexKDTree, nil
	case IndexKDTree, IndexBrute:
		return kind, nil
	default:
		return "", fmt.Errorf("bondgraph: invalid Index %q", kind)
	}
}
