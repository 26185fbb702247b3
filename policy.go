package bondgraph

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ErrNegativeThreshold is returned when a pair distance is below zero.
var ErrNegativeThreshold = errors.New("bondgraph: negative pair distance")

// PairDistance is one bonding rule: particles of Type1 and Type2 bond when
// their squared distance is at most Distance.
type PairDistance struct {
	Type1    string  `yaml:"type1" json:"type1"`
	Type2    string  `yaml:"type2" json:"type2"`
	Distance float64 `yaml:"distance" json:"distance"`
}

// Policy is a symmetric lookup from an unordered pair of type labels to a
// squared-distance threshold. A type absent from the table never bonds.
type Policy struct {
	table map[string]map[string]float64
}

// NewPolicy builds a Policy from pairs. Each rule is stored in both
// directions, so lookups are order independent. A later rule for the same
// pair overrides an earlier one.
func NewPolicy(pairs []PairDistance) (*Policy, error) {
	p := &Policy{table: make(map[string]map[string]float64)}
	for _, pd := range pairs {
		if pd.Distance < 0 {
			return nil, fmt.Errorf("%w: %s-%s %g", ErrNegativeThreshold, pd.Type1, pd.Type2, pd.Distance)
		}
		p.set(pd.Type1, pd.Type2, pd.Distance)
		p.set(pd.Type2, pd.Type1, pd.Distance)
	}
	return p, nil
}

// MustPolicy is NewPolicy that panics on error, for literal rule sets.
func MustPolicy(pairs ...PairDistance) *Policy {
	p, err := NewPolicy(pairs)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Policy) set(a, b string, d float64) {
	row, ok := p.table[a]
	if !ok {
		row = make(map[string]float64)
		p.table[a] = row
	}
	row[b] = d
}

// Threshold returns the squared-distance threshold for the pair (a, b).
func (p *Policy) Threshold(a, b string) (float64, bool) {
	d, ok := p.table[a][b]
	return d, ok
}

// Has reports whether typ appears in any rule.
func (p *Policy) Has(typ string) bool {
	_, ok := p.table[typ]
	return ok
}

// row returns the threshold row for typ, or nil.
func (p *Policy) row(typ string) map[string]float64 { return p.table[typ] }

// Types returns the sorted set of type labels mentioned by the policy.
func (p *Policy) Types() []string {
	types := make([]string, 0, len(p.table))
	for t := range p.table {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Pairs returns the policy's rules, one per unordered pair, with
// Type1 <= Type2 and sorted by (Type1, Type2).
func (p *Policy) Pairs() []PairDistance {
	var out []PairDistance
	for a, row := range p.table {
		for b, d := range row {
			if a <= b {
				out = append(out, PairDistance{Type1: a, Type2: b, Distance: d})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type1 == out[j].Type1 {
			return out[i].Type2 < out[j].Type2
		}
		return out[i].Type1 < out[j].Type1
	})
	return out
}

// LoadPolicy reads a YAML list of pair rules:
//
//	- {type1: H, type2: O, distance: 1.21}
//	- {type1: C, type2: C, distance: 2.56}
//
// Unknown keys are rejected.
func LoadPolicy(r io.Reader) (*Policy, error) {
	var pairs []PairDistance
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&pairs); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("bondgraph: decode policy: %w", err)
	}
	return NewPolicy(pairs)
}

// LoadPolicyFile reads a YAML policy from path.
func LoadPolicyFile(path string) (*Policy, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("bondgraph: open policy: %w", err)
	}
	defer f.Close()
	return LoadPolicy(f)
}
