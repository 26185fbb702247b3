package bondgraph

import "gonum.org/v1/gonum/spatial/r3"

// Bond connects particles I < J. A and B are their positions at build time.
type Bond struct {
	I, J   int
	A, B   r3.Vec
	Radius float64
}

// Length returns the Euclidean length of the bond.
func (b Bond) Length() float64 { return r3.Norm(r3.Sub(b.B, b.A)) }

// BondSink receives bonds in the order they are produced. It owns its own
// storage and capacity management.
type BondSink interface {
	AddBond(a, b r3.Vec, radius float64)
}

// Write sends every bond to sink, in order.
func Write(sink BondSink, bonds []Bond) {
	for _, b := range bonds {
		sink.AddBond(b.A, b.B, b.Radius)
	}
}

// Bonds is a flat bond container in the layout geometry builders consume:
// for bond k, Positions1[3k:3k+3] and Positions2[3k:3k+3] are its endpoints
// and Radii[k] its radius.
type Bonds struct {
	Positions1 []float64
	Positions2 []float64
	Radii      []float64
}

// NewBonds returns an empty container with room for capacity bonds.
func NewBonds(capacity int) *Bonds {
	return &Bonds{
		Positions1: make([]float64, 0, 3*capacity),
		Positions2: make([]float64, 0, 3*capacity),
		Radii:      make([]float64, 0, capacity),
	}
}

// AddBond appends one bond, growing storage as needed.
func (c *Bonds) AddBond(a, b r3.Vec, radius float64) {
	c.Positions1 = append(c.Positions1, a.X, a.Y, a.Z)
	c.Positions2 = append(c.Positions2, b.X, b.Y, b.Z)
	c.Radii = append(c.Radii, radius)
}

// Count returns the number of stored bonds.
func (c *Bonds) Count() int { return len(c.Radii) }

// At returns bond k as (x1, y1, z1, x2, y2, z2, radius).
func (c *Bonds) At(k int) [7]float64 {
	p1, p2 := c.Positions1[3*k:3*k+3], c.Positions2[3*k:3*k+3]
	return [7]float64{p1[0], p1[1], p1[2], p2[0], p2[1], p2[2], c.Radii[k]}
}
