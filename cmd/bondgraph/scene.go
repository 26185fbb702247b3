package main

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/TrevorS/bondgraph"
)

// Scene is one frame plus the rules to bond it, as read from YAML:
//
//	config:
//	  search_radius: 1.4
//	  max_neighbors: 4
//	policy:
//	  - {type1: H, type2: O, distance: 1.21}
//	particles:
//	  - {type: O, position: [0, 0, 0]}
//	  - {type: H, position: [0.96, 0, 0]}
type Scene struct {
	Config    SceneConfig              `yaml:"config"`
	Policy    []bondgraph.PairDistance `yaml:"policy"`
	Particles []SceneParticle          `yaml:"particles"`
}

// SceneConfig mirrors bondgraph.Config. Omitted fields take the library
// defaults.
type SceneConfig struct {
	SearchRadius float64 `yaml:"search_radius"`
	MaxNeighbors int     `yaml:"max_neighbors"`
	BondRadius   float64 `yaml:"bond_radius"`
	Index        string  `yaml:"index"`
	Workers      int     `yaml:"workers"`
}

type SceneParticle struct {
	Type     string     `yaml:"type"`
	Position [3]float64 `yaml:"position"`
}

// loadScene decodes a scene, rejecting unknown keys.
func loadScene(r io.Reader) (*Scene, error) {
	var s Scene
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return &s, nil
		}
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	return &s, nil
}

// Frame flattens the particle list into a bondgraph frame.
func (s *Scene) Frame() *bondgraph.Particles {
	f := &bondgraph.Particles{
		Coords: make([]float64, 0, 3*len(s.Particles)),
		Types:  make([]string, 0, len(s.Particles)),
	}
	for _, p := range s.Particles {
		f.Coords = append(f.Coords, p.Position[:]...)
		f.Types = append(f.Types, p.Type)
	}
	return f
}

// BuildConfig converts the scene's config block.
func (s *Scene) BuildConfig() bondgraph.Config {
	return bondgraph.Config{
		SearchRadius: s.Config.SearchRadius,
		MaxNeighbors: s.Config.MaxNeighbors,
		BondRadius:   s.Config.BondRadius,
		Index:        bondgraph.IndexKind(s.Config.Index),
		Workers:      s.Config.Workers,
	}
}

// bondRecord is the YAML output form of one bond.
type bondRecord struct {
	I      int        `yaml:"i"`
	J      int        `yaml:"j"`
	A      [3]float64 `yaml:"a,flow"`
	B      [3]float64 `yaml:"b,flow"`
	Radius float64    `yaml:"radius"`
}

func writeBonds(w io.Writer, bonds []bondgraph.Bond, format string) error {
	switch format {
	case "text":
		for _, b := range bonds {
			if _, err := fmt.Fprintf(w, "%d %d %g %g %g %g %g %g %g\n",
				b.I, b.J, b.A.X, b.A.Y, b.A.Z, b.B.X, b.B.Y, b.B.Z, b.Radius); err != nil {
				return err
			}
		}
		return nil
	case "yaml":
		records := make([]bondRecord, len(bonds))
		for k, b := range bonds {
			records[k] = bondRecord{
				I:      b.I,
				J:      b.J,
				A:      [3]float64{b.A.X, b.A.Y, b.A.Z},
				B:      [3]float64{b.B.X, b.B.Y, b.B.Z},
				Radius: b.Radius,
			}
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
