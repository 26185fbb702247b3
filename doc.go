// Package bondgraph infers chemical bonds from unconnected particle
// positions.
//
// A frame of particles is indexed with a 3-D k-d tree; each particle's
// nearest neighbors are tested against a symmetric table of per-type-pair
// squared-distance thresholds, and every qualifying unordered pair is
// emitted once.
//
// Basic usage:
//
//	policy, err := bondgraph.NewPolicy([]bondgraph.PairDistance{
//		{Type1: "H", Type2: "O", Distance: 1.21},
//	})
//	frame := &bondgraph.Particles{Coords: xyz, Types: types}
//	bonds, err := bondgraph.BuildBonds(ctx, frame, policy, bondgraph.DefaultConfig())
//	// bonds[k].I < bonds[k].J are particle indices; A and B their positions.
//
// All distances in the bond pipeline are squared Euclidean, including
// Config.SearchRadius.
//
// # Reusing storage across frames
//
// A [Builder] keeps its k-d tree allocated between calls:
//
//	b, err := bondgraph.NewBuilder(policy, cfg)
//	for _, f := range frames {
//		bonds, err := b.Build(ctx, f)
//		...
//	}
//
// # Post-processing
//
// [Molecules] groups particles into connected components, and [Graph]
// exposes the bond network as a gonum graph.
package bondgraph
