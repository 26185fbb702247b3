package bondgraph

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// searchParallel runs the per-particle neighbor searches on up to
// cfg.Workers goroutines. Each worker handles a contiguous chunk of
// particles and writes only its own slots of the result, so no locking is
// needed. Particles whose type is not in the policy get a nil slot.
//
// index and frame are only read; both must tolerate concurrent readers.
func searchParallel(ctx context.Context, index NeighborIndex, frame Frame, policy *Policy, cfg Config) ([][]Neighbor, error) {
	n := frame.NumParticles()
	positions := frame.Positions()
	out := make([][]Neighbor, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)

	for start := 0; start < n; start += searchChunk {
		start := start // per-iteration copy (go 1.21 loop semantics)
		end := min(start+searchChunk, n)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for i := start; i < end; i++ {
				if !policy.Has(frame.Type(i)) {
					continue
				}
				out[i] = index.Nearest(pointAt(positions, i), cfg.MaxNeighbors, cfg.SearchRadius)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// A cancellation that lands after the last chunk started still counts.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
