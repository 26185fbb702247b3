package bondgraph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrPositionsLength is returned when a frame's position buffer does not hold
// exactly three values per particle.
var ErrPositionsLength = errors.New("bondgraph: positions length does not match particle count")

// searchChunk is the number of particles searched between context checks,
// and the unit of work handed to each worker.
const searchChunk = 256

// Config controls bond inference.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// SearchRadius bounds the neighbor search, in squared distance units.
	// Candidates farther than this are never considered, whatever the
	// policy says. Must be >= 0. Default: 1.4.
	SearchRadius float64

	// MaxNeighbors is the number of nearest candidates examined per particle,
	// the particle itself included when it is returned. Must be >= 1.
	// Default: 4.
	MaxNeighbors int

	// BondRadius is copied onto every emitted bond. Must be >= 0.
	// Default: 0.1.
	BondRadius float64

	// Index selects the neighbor index. "auto" and "kdtree" use the k-d tree,
	// "brute" scans every particle. Default: "auto".
	Index IndexKind

	// Workers sets how many goroutines run the neighbor searches. Values
	// <= 1 search sequentially. The output does not depend on Workers.
	// Must be >= 0. Default: 1.
	Workers int

	// Logger receives one debug record per build. Default: NoopLogger().
	Logger *Logger
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		SearchRadius: 1.4,
		MaxNeighbors: 4,
		BondRadius:   0.1,
		Index:        IndexAuto,
		Workers:      1,
	}
}

// applyDefaults fills in zero-valued config fields with their defaults.
func applyDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.SearchRadius == 0 {
		cfg.SearchRadius = def.SearchRadius
	}
	if cfg.MaxNeighbors == 0 {
		cfg.MaxNeighbors = def.MaxNeighbors
	}
	if cfg.BondRadius == 0 {
		cfg.BondRadius = def.BondRadius
	}
	if cfg.Index == "" {
		cfg.Index = def.Index
	}
	if cfg.Workers == 0 {
		cfg.Workers = def.Workers
	}
	if cfg.Logger == nil {
		cfg.Logger = NoopLogger()
	}
}

// validateConfig checks that cfg fields are valid and returns a descriptive error if not.
func validateConfig(cfg *Config) error {
	if !(cfg.SearchRadius >= 0) {
		return fmt.Errorf("bondgraph: SearchRadius must be >= 0, got %f", cfg.SearchRadius)
	}
	if cfg.MaxNeighbors < 1 {
		return fmt.Errorf("bondgraph: MaxNeighbors must be >= 1, got %d", cfg.MaxNeighbors)
	}
	if !(cfg.BondRadius >= 0) {
		return fmt.Errorf("bondgraph: BondRadius must be >= 0, got %f", cfg.BondRadius)
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("bondgraph: Workers must be >= 0, got %d", cfg.Workers)
	}
	if _, err := selectIndex(cfg.Index); err != nil {
		return err
	}
	return nil
}

// Builder infers bonds frame by frame under a fixed policy and config.
// It keeps the k-d tree's storage between frames to avoid reallocating it;
// no results carry over. A Builder must not be used by several goroutines
// at once.
type Builder struct {
	policy *Policy
	cfg    Config
	kind   IndexKind
	tree   *KDTree
}

// NewBuilder validates cfg and returns a Builder. A nil policy bonds nothing.
func NewBuilder(policy *Policy, cfg Config) (*Builder, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	kind, err := selectIndex(cfg.Index)
	if err != nil {
		return nil, err
	}
	if policy == nil {
		policy = &Policy{}
	}
	return &Builder{policy: policy, cfg: cfg, kind: kind}, nil
}

// BuildBonds infers the bonds of a single frame. See Builder.Build.
func BuildBonds(ctx context.Context, frame Frame, policy *Policy, cfg Config) ([]Bond, error) {
	b, err := NewBuilder(policy, cfg)
	if err != nil {
		return nil, err
	}
	return b.Build(ctx, frame)
}

// Build returns the bonds of frame. For each particle in input order whose
// type appears in the policy, the MaxNeighbors nearest particles within
// SearchRadius are examined; a pair bonds when the policy has a threshold
// for its two types and the squared distance does not exceed it. Each
// unordered pair is emitted once, with I < J, in discovery order.
//
// Empty frames and frames with no bondable types yield no bonds and no
// error. The only errors are a malformed position buffer and cancellation
// of ctx.
func (b *Builder) Build(ctx context.Context, frame Frame) ([]Bond, error) {
	start := time.Now()
	bonds, err := b.build(ctx, frame)
	b.cfg.Logger.LogBuild(ctx, frame.NumParticles(), len(bonds), b.kind, time.Since(start), err)
	return bonds, err
}

func (b *Builder) build(ctx context.Context, frame Frame) ([]Bond, error) {
	n := frame.NumParticles()
	positions := frame.Positions()
	if len(positions) != 3*n {
		return nil, fmt.Errorf("%w: %d values for %d particles", ErrPositionsLength, len(positions), n)
	}
	if n == 0 {
		return []Bond{}, nil
	}

	index := b.index(positions)
	c := newCollector(frame, b.policy, b.cfg.BondRadius)

	if b.cfg.Workers > 1 {
		candidates, err := searchParallel(ctx, index, frame, b.policy, b.cfg)
		if err != nil {
			return nil, err
		}
		for i, nbs := range candidates {
			c.accept(i, nbs)
		}
		return c.bonds, nil
	}

	for i := 0; i < n; i++ {
		if i%searchChunk == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if !b.policy.Has(frame.Type(i)) {
			continue
		}
		c.accept(i, index.Nearest(pointAt(positions, i), b.cfg.MaxNeighbors, b.cfg.SearchRadius))
	}
	return c.bonds, nil
}

// index builds the configured neighbor index over positions.
func (b *Builder) index(positions []float64) NeighborIndex {
	if b.kind == IndexBrute {
		return NewBruteForce(positions, SquaredEuclideanMetric{})
	}
	if b.tree == nil {
		b.tree = NewKDTree(positions, SquaredEuclideanMetric{})
	} else {
		b.tree.Rebuild(positions)
	}
	return b.tree
}

// pairKey is the canonical (smaller, larger) index pair of a bond.
type pairKey struct{ lo, hi int }

// collector applies the policy to neighbor candidates and deduplicates
// symmetric pairs for one build.
type collector struct {
	frame     Frame
	positions []float64
	policy    *Policy
	radius    float64
	seen      map[pairKey]struct{}
	bonds     []Bond
}

func newCollector(frame Frame, policy *Policy, radius float64) *collector {
	return &collector{
		frame:     frame,
		positions: frame.Positions(),
		policy:    policy,
		radius:    radius,
		seen:      make(map[pairKey]struct{}),
		bonds:     []Bond{},
	}
}

// accept records the bonds between particle i and its candidates.
func (c *collector) accept(i int, candidates []Neighbor) {
	row := c.policy.row(c.frame.Type(i))
	if row == nil {
		return
	}
	for _, nb := range candidates {
		j := nb.Index
		if j == i {
			continue
		}
		threshold, ok := row[c.frame.Type(j)]
		if !ok || nb.Distance > threshold {
			continue
		}
		key := pairKey{lo: min(i, j), hi: max(i, j)}
		if _, dup := c.seen[key]; dup {
			continue
		}
		c.seen[key] = struct{}{}
		c.bonds = append(c.bonds, Bond{
			I:      key.lo,
			J:      key.hi,
			A:      c.vec(key.lo),
			B:      c.vec(key.hi),
			Radius: c.radius,
		})
	}
}

func (c *collector) vec(i int) r3.Vec {
	p := pointAt(c.positions, i)
	return r3.Vec{X: p[0], Y: p[1], Z: p[2]}
}
