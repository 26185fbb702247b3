package bondgraph

// Frame is a read-only view of one simulation snapshot.
type Frame interface {
	// NumParticles returns the number of particles in the frame.
	NumParticles() int

	// Positions returns the flat row-major xyz buffer, len 3*NumParticles.
	// The bond builder indexes it in place and never writes to it.
	Positions() []float64

	// Type returns the type label of particle i.
	Type(i int) string
}

// Particles is a Frame backed by a position buffer and a parallel slice of
// type labels.
type Particles struct {
	Coords []float64
	Types  []string
}

func (p *Particles) NumParticles() int    { return len(p.Types) }
func (p *Particles) Positions() []float64 { return p.Coords }
func (p *Particles) Type(i int) string    { return p.Types[i] }

// Position returns particle i's coordinates.
func (p *Particles) Position(i int) Point { return pointAt(p.Coords, i) }
