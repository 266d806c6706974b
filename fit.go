package hillfit

import (
	"errors"
	"fmt"
)

// Fit errors. The elasticity quotient divides by the rate and the new
// rate constant divides by powers of the reference concentrations, so a
// zero anywhere at the reference point has no finite answer. These are
// signaled, never silently propagated as NaN or Inf.
var (
	// ErrZeroRate indicates the rate evaluates to zero at the reference
	// point, making every elasticity undefined.
	ErrZeroRate = errors.New("hillfit: rate is zero at the reference point")

	// ErrZeroReference indicates a fitted variable is zero at the
	// reference point, making the back-solved rate constant undefined.
	ErrZeroReference = errors.New("hillfit: fitted variable is zero at the reference point")

	// ErrUnboundSymbol indicates the reference point does not bind every
	// symbol of the rate expression.
	ErrUnboundSymbol = errors.New("hillfit: symbol not bound by reference point")
)

// Elasticity computes the logarithmic sensitivity (∂v/∂x)·x/v of the rate
// with respect to the named variable, evaluated at the reference point.
// This is the power-law exponent of the S-system approximation.
//
// The quotient is taken in exact rational arithmetic, so factors shared by
// the rate and its partial cancel without rounding error.
func Elasticity(rate Expr, name string, at Point) (float64, error) {
	v, err := evalNum(rate, at)
	if err != nil {
		return 0, err
	}
	if v.IsZero() {
		return 0, fmt.Errorf("%w (elasticity in %s)", ErrZeroRate, name)
	}
	d, err := evalNum(Diff(rate, name), at)
	if err != nil {
		return 0, fmt.Errorf("partial in %s: %w", name, err)
	}
	ratio := numMul(numMul(d, NFloat(at[name])), numRecip(v))
	return ratio.Float64(), nil
}

// PowerTerm is one variable of the fitted monomial with its exponent.
type PowerTerm struct {
	Var      string
	Exponent float64
}

// PowerLaw is the fitted S-system form k · Π x_i^p_i. It agrees with the
// original rate in value and first-order sensitivity at the reference
// point, and nowhere else by construction.
type PowerLaw struct {
	Name  string
	Terms []PowerTerm
	K     float64
}

// Fit computes the power-law approximation of the rate law around its
// reference point: one elasticity exponent per fitted variable, then the
// rate constant back-solved so the monomial reproduces the original rate
// exactly at that point.
func Fit(law RateLaw) (*PowerLaw, error) {
	if err := law.Validate(); err != nil {
		return nil, err
	}
	v, err := evalNum(law.Rate, law.Ref)
	if err != nil {
		return nil, fmt.Errorf("reaction %s: %w", law.Name, err)
	}
	if v.IsZero() {
		return nil, fmt.Errorf("reaction %s: %w", law.Name, ErrZeroRate)
	}
	pl := &PowerLaw{Name: law.Name, Terms: make([]PowerTerm, 0, len(law.Vars))}
	for _, name := range law.Vars {
		if law.Ref[name] == 0 {
			return nil, fmt.Errorf("reaction %s: %w (%s)", law.Name, ErrZeroReference, name)
		}
		exp, err := Elasticity(law.Rate, name, law.Ref)
		if err != nil {
			return nil, fmt.Errorf("reaction %s: %w", law.Name, err)
		}
		pl.Terms = append(pl.Terms, PowerTerm{Var: name, Exponent: exp})
	}
	// Back-solve k' = v / Π x_i^p_i at the reference point, again in
	// rational arithmetic.
	k := v
	for _, t := range pl.Terms {
		denom, err := evalNum(PowOf(S(t.Var), NFloat(t.Exponent)), Point{t.Var: law.Ref[t.Var]})
		if err != nil {
			return nil, fmt.Errorf("reaction %s: %w", law.Name, err)
		}
		if denom.IsZero() {
			return nil, fmt.Errorf("reaction %s: %w (%s)", law.Name, ErrZeroReference, t.Var)
		}
		k = numMul(k, numRecip(denom))
	}
	pl.K = k.Float64()
	return pl, nil
}

// Monomial returns the fitted form k · Π x_i^p_i as a symbolic expression.
func (pl *PowerLaw) Monomial() Expr {
	factors := make([]Expr, 0, len(pl.Terms)+1)
	factors = append(factors, NFloat(pl.K))
	for _, t := range pl.Terms {
		factors = append(factors, PowOf(S(t.Var), NFloat(t.Exponent)))
	}
	return MulOf(factors...)
}

// RateAt evaluates the fitted monomial at a point. At the reference point
// of the fitted law this reproduces the original rate value.
func (pl *PowerLaw) RateAt(at Point) (float64, error) {
	return EvalAt(pl.Monomial(), at)
}

// ExponentLabel names the i-th exponent of a reaction: p, q, r, ...
// followed by the reaction name, matching the conventional p/q naming for
// two-variable rate laws.
func ExponentLabel(name string, i int) string {
	return fmt.Sprintf("%c%s", rune('p'+i), name)
}

// ConstantLabel names the back-solved rate constant of a reaction,
// e.g. k29p for reaction 29.
func ConstantLabel(name string) string {
	return "k" + name + "p"
}
