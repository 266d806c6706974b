package hillfit

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Reaction files describe rate laws as an ordered list of factors, each
// either a bare state variable or a Hill term, together with the rate
// constant and the reference operating point. Example:
//
//	reactions:
//	  - name: "29"
//	    constant: {symbol: k29, value: 36.93}
//	    factors:
//	      - hill:
//	          var: x28
//	          n: {symbol: n6, value: 2.137}
//	          km: {symbol: km6, value: 30.54}
//	      - var: x34
//	    reference:
//	      x28: 37.923
//	      x34: 29.576
//
// Factor order determines exponent order in the output (p, then q, ...).

type reactionFile struct {
	Reactions []reactionSpec `yaml:"reactions"`
}

type reactionSpec struct {
	Name      string             `yaml:"name"`
	Constant  paramSpec          `yaml:"constant"`
	Factors   []factorSpec       `yaml:"factors"`
	Reference map[string]float64 `yaml:"reference"`
}

type paramSpec struct {
	Symbol string  `yaml:"symbol"`
	Value  float64 `yaml:"value"`
}

type factorSpec struct {
	Var  string    `yaml:"var,omitempty"`
	Hill *hillSpec `yaml:"hill,omitempty"`
}

type hillSpec struct {
	Var string    `yaml:"var"`
	N   paramSpec `yaml:"n"`
	Km  paramSpec `yaml:"km"`
}

// LoadReactions parses a YAML reaction file into rate laws. Unknown fields
// are rejected.
func LoadReactions(r io.Reader) ([]RateLaw, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file reactionFile
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parsing reaction file: %w", err)
	}
	if len(file.Reactions) == 0 {
		return nil, errors.New("reaction file defines no reactions")
	}

	laws := make([]RateLaw, 0, len(file.Reactions))
	for i, spec := range file.Reactions {
		law, err := spec.toRateLaw()
		if err != nil {
			return nil, fmt.Errorf("reaction %d: %w", i+1, err)
		}
		laws = append(laws, law)
	}
	return laws, nil
}

func (spec reactionSpec) toRateLaw() (RateLaw, error) {
	if spec.Name == "" {
		return RateLaw{}, errors.New("missing name")
	}
	if spec.Constant.Symbol == "" {
		return RateLaw{}, errors.New("missing rate constant symbol")
	}
	if len(spec.Factors) == 0 {
		return RateLaw{}, errors.New("no factors")
	}

	ref := Point{}
	bind := func(name string, v float64) error {
		if _, dup := ref[name]; dup {
			return fmt.Errorf("symbol %s bound twice", name)
		}
		ref[name] = v
		return nil
	}
	if err := bind(spec.Constant.Symbol, spec.Constant.Value); err != nil {
		return RateLaw{}, err
	}

	factors := []Expr{S(spec.Constant.Symbol)}
	var vars []string
	for i, f := range spec.Factors {
		switch {
		case f.Var != "" && f.Hill != nil:
			return RateLaw{}, fmt.Errorf("factor %d: var and hill are mutually exclusive", i+1)
		case f.Var != "":
			factors = append(factors, S(f.Var))
			vars = append(vars, f.Var)
		case f.Hill != nil:
			h := f.Hill
			if h.Var == "" || h.N.Symbol == "" || h.Km.Symbol == "" {
				return RateLaw{}, fmt.Errorf("factor %d: hill term needs var, n and km", i+1)
			}
			if err := bind(h.N.Symbol, h.N.Value); err != nil {
				return RateLaw{}, err
			}
			if err := bind(h.Km.Symbol, h.Km.Value); err != nil {
				return RateLaw{}, err
			}
			factors = append(factors, HillTerm(S(h.Var), S(h.N.Symbol), S(h.Km.Symbol)))
			vars = append(vars, h.Var)
		default:
			return RateLaw{}, fmt.Errorf("factor %d: needs var or hill", i+1)
		}
	}

	for name, v := range spec.Reference {
		if err := bind(name, v); err != nil {
			return RateLaw{}, err
		}
	}
	for _, v := range vars {
		if _, ok := ref[v]; !ok {
			return RateLaw{}, fmt.Errorf("reference is missing state variable %s", v)
		}
	}

	return RateLaw{
		Name: spec.Name,
		Rate: MulOf(factors...),
		Vars: vars,
		Ref:  ref,
	}, nil
}
