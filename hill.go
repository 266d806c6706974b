package hillfit

import (
	"fmt"
	"sort"
)

// HillTerm builds the saturating factor x^n / (km^n + x^n).
//
// x is the substrate or modifier concentration, n the Hill coefficient and
// km the half-saturation constant. All three may be symbols or numbers.
func HillTerm(x, n, km Expr) Expr {
	return MulOf(
		PowOf(x, n),
		PowOf(AddOf(PowOf(km, n), PowOf(x, n)), N(-1)),
	)
}

// RateLaw is one reaction rate to approximate: a symbolic rate expression,
// the ordered state variables that receive power-law exponents, and the
// reference operating point binding every symbol in the expression.
//
// The expression stays symbolic for the whole lifetime of the value; all
// numeric bindings live in Ref. The two never share a name space.
type RateLaw struct {
	// Name identifies the reaction, e.g. "29". Output labels derive
	// from it: p29, q29, k29p.
	Name string
	// Rate is the fully parameterized symbolic rate expression.
	Rate Expr
	// Vars lists the fitted state variables in output order. The first
	// gets the p exponent, the second the q exponent.
	Vars []string
	// Ref is the reference operating point: parameter values and the
	// steady-state concentrations taken from prior simulation.
	Ref Point
}

// Validate checks that every free symbol of the rate is bound by the
// reference point and that every fitted variable occurs in the rate.
func (rl RateLaw) Validate() error {
	free := FreeSymbols(rl.Rate)
	var missing []string
	for name := range free {
		if _, ok := rl.Ref[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("reaction %s: %w: %v", rl.Name, ErrUnboundSymbol, missing)
	}
	for _, v := range rl.Vars {
		if _, ok := free[v]; !ok {
			return fmt.Errorf("reaction %s: fitted variable %s does not occur in the rate", rl.Name, v)
		}
	}
	return nil
}

// Point is a reference operating point: a binding of symbol names to
// numeric values. One Point covers both kinetic parameters and state
// variables; the fit does not distinguish them until exponents are
// assigned.
type Point map[string]float64

// Bind substitutes every binding of the point into e.
func (p Point) Bind(e Expr) Expr {
	out := e
	for name, v := range p {
		out = out.Sub(name, NFloat(v))
	}
	return out.Simplify()
}

// EvalAt substitutes the point into e and evaluates to a float64. It
// fails if a symbol is left unbound or the result is not finite.
func EvalAt(e Expr, at Point) (float64, error) {
	n, err := evalNum(e, at)
	if err != nil {
		return 0, err
	}
	return n.Float64(), nil
}

// evalNum is EvalAt without the final rounding to float64. The fit works
// on the exact rational values so that common factors of the rate and its
// partials cancel exactly: the elasticity of a linear factor comes out as
// exactly 1, not within an ulp of it.
func evalNum(e Expr, at Point) (*Num, error) {
	bound := at.Bind(e)
	n, ok := bound.Eval()
	if !ok {
		free := FreeSymbols(bound)
		if len(free) > 0 {
			names := make([]string, 0, len(free))
			for name := range free {
				names = append(names, name)
			}
			sort.Strings(names)
			return nil, fmt.Errorf("%w: %v", ErrUnboundSymbol, names)
		}
		return nil, fmt.Errorf("expression %s is not finite at the reference point", bound)
	}
	return n, nil
}
