// Package hillfit computes local power-law (S-system) approximations of
// Hill-type kinetic rate laws around a fixed reference operating point.
//
// The package carries its own small symbolic kernel:
//   - Exact rational arithmetic (math/big.Rat) with float-valued evaluation
//   - Deterministic simplification and stable output
//   - Differentiation covering the rate-law shapes the fit produces,
//     including powers with symbolic Hill exponents
//
// On top of the kernel sit Hill rate-law constructors, reference operating
// points, and the elasticity-based power-law fit.
package hillfit

import (
	"fmt"
	"math"
	"math/big"
	"sort"
	"strings"
)

// Expr is a symbolic expression. All implementations are immutable;
// operations return new expressions.
type Expr interface {
	// Simplify returns a canonical-enough form: flattened sums and
	// products, numeric constants folded exactly, deterministic ordering.
	Simplify() Expr
	// String renders the expression in plain text.
	String() string
	// LaTeX renders the expression for typesetting.
	LaTeX() string
	// Sub replaces every occurrence of the named symbol with value.
	Sub(name string, value Expr) Expr
	// Diff differentiates with respect to the named symbol.
	Diff(name string) Expr
	// Eval reduces the expression to a number. ok is false if any symbol
	// remains unbound or the result is not finite.
	Eval() (*Num, bool)
	// Equal reports structural equality.
	Equal(other Expr) bool
}

// ============================================================
// Num — exact rational constant
// ============================================================

type Num struct{ val *big.Rat }

// N builds an integer constant.
func N(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }

// F builds an exact fraction p/q.
func F(p, q int64) *Num {
	if q == 0 {
		panic("hillfit: denominator is zero")
	}
	return &Num{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}

// NFloat builds the exact rational value of a float64. Reference
// concentrations and parameters enter the kernel through here.
func NFloat(f float64) *Num {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		panic("hillfit: non-finite constant")
	}
	return &Num{val: new(big.Rat).SetFloat64(f)}
}

func (n *Num) Simplify() Expr        { return n }
func (n *Num) Sub(string, Expr) Expr { return n }
func (n *Num) Diff(string) Expr      { return N(0) }
func (n *Num) Eval() (*Num, bool)    { return n, true }
func (n *Num) Equal(other Expr) bool { o, ok := other.(*Num); return ok && n.val.Cmp(o.val) == 0 }

func (n *Num) Float64() float64 { f, _ := n.val.Float64(); return f }
func (n *Num) IsZero() bool     { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool      { return n.val.Cmp(ratOne) == 0 }
func (n *Num) IsNegOne() bool   { return n.val.Cmp(ratNegOne) == 0 }
func (n *Num) IsInteger() bool  { return n.val.IsInt() }
func (n *Num) IsNegative() bool { return n.val.Sign() < 0 }

var (
	ratOne    = new(big.Rat).SetInt64(1)
	ratNegOne = new(big.Rat).SetInt64(-1)
)

func (n *Num) String() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.RatString()
}

func (n *Num) LaTeX() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	sign := ""
	v := new(big.Rat).Set(n.val)
	if v.Sign() < 0 {
		sign = "-"
		v.Neg(v)
	}
	return fmt.Sprintf("%s\\frac{%s}{%s}", sign, v.Num().String(), v.Denom().String())
}

func numAdd(a, b *Num) *Num { return &Num{val: new(big.Rat).Add(a.val, b.val)} }
func numMul(a, b *Num) *Num { return &Num{val: new(big.Rat).Mul(a.val, b.val)} }
func numRecip(a *Num) *Num {
	if a.IsZero() {
		panic("hillfit: division by zero")
	}
	return &Num{val: new(big.Rat).Inv(a.val)}
}

// ============================================================
// Sym — named symbolic variable
// ============================================================

type Sym struct{ name string }

// S builds a symbolic variable.
func S(name string) *Sym { return &Sym{name: name} }

func (s *Sym) Simplify() Expr     { return s }
func (s *Sym) String() string     { return s.name }
func (s *Sym) LaTeX() string      { return s.name }
func (s *Sym) Name() string       { return s.name }
func (s *Sym) Eval() (*Num, bool) { return nil, false }

func (s *Sym) Equal(other Expr) bool { o, ok := other.(*Sym); return ok && s.name == o.name }

func (s *Sym) Sub(name string, value Expr) Expr {
	if s.name == name {
		return value
	}
	return s
}

func (s *Sym) Diff(name string) Expr {
	if s.name == name {
		return N(1)
	}
	return N(0)
}

// ============================================================
// Add — sum of terms
// ============================================================

type Add struct{ terms []Expr }

// AddOf builds a simplified sum.
func AddOf(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

func (a *Add) Simplify() Expr {
	flat := make([]Expr, 0, len(a.terms))
	for _, t := range a.terms {
		s := t.Simplify()
		if inner, ok := s.(*Add); ok {
			flat = append(flat, inner.terms...)
		} else {
			flat = append(flat, s)
		}
	}
	numAccum := N(0)
	symCoeffs := map[string]*Num{}
	others := []Expr{}
	for _, t := range flat {
		switch v := t.(type) {
		case *Num:
			numAccum = numAdd(numAccum, v)
		case *Sym:
			if _, seen := symCoeffs[v.name]; !seen {
				symCoeffs[v.name] = N(0)
			}
			symCoeffs[v.name] = numAdd(symCoeffs[v.name], N(1))
		default:
			others = append(others, t)
		}
	}
	names := make([]string, 0, len(symCoeffs))
	for name := range symCoeffs {
		names = append(names, name)
	}
	sort.Strings(names)
	result := []Expr{}
	for _, name := range names {
		coeff := symCoeffs[name]
		switch {
		case coeff.IsZero():
		case coeff.IsOne():
			result = append(result, S(name))
		default:
			result = append(result, MulOf(coeff, S(name)))
		}
	}
	result = append(result, others...)
	if !numAccum.IsZero() {
		result = append(result, numAccum)
	}
	if len(result) == 0 {
		return N(0)
	}
	if len(result) == 1 {
		return result[0]
	}
	return &Add{terms: result}
}

func (a *Add) String() string {
	parts := make([]string, len(a.terms))
	for i, t := range a.terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, " + ")
}

func (a *Add) LaTeX() string {
	parts := make([]string, len(a.terms))
	for i, t := range a.terms {
		parts[i] = t.LaTeX()
	}
	return strings.Join(parts, " + ")
}

func (a *Add) Sub(name string, value Expr) Expr {
	out := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		out[i] = t.Sub(name, value)
	}
	return AddOf(out...)
}

func (a *Add) Diff(name string) Expr {
	out := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		out[i] = t.Diff(name)
	}
	return AddOf(out...)
}

func (a *Add) Eval() (*Num, bool) {
	acc := N(0)
	for _, t := range a.terms {
		v, ok := t.Eval()
		if !ok {
			return nil, false
		}
		acc = numAdd(acc, v)
	}
	return acc, true
}

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)
	if !ok || len(a.terms) != len(o.terms) {
		return false
	}
	for i := range a.terms {
		if !a.terms[i].Equal(o.terms[i]) {
			return false
		}
	}
	return true
}

// Terms exposes the summands of a simplified sum.
func (a *Add) Terms() []Expr { return a.terms }

// ============================================================
// Mul — product of factors
// ============================================================

type Mul struct{ factors []Expr }

// MulOf builds a simplified product.
func MulOf(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

func (m *Mul) Simplify() Expr {
	flat := make([]Expr, 0, len(m.factors))
	for _, f := range m.factors {
		s := f.Simplify()
		if inner, ok := s.(*Mul); ok {
			flat = append(flat, inner.factors...)
		} else {
			flat = append(flat, s)
		}
	}
	coeff := N(1)
	others := []Expr{}
	for _, f := range flat {
		if v, ok := f.(*Num); ok {
			coeff = numMul(coeff, v)
		} else {
			others = append(others, f)
		}
	}
	if coeff.IsZero() {
		return N(0)
	}
	if len(others) == 0 {
		return coeff
	}

	// Stable factor order keeps output deterministic across runs.
	type keyed struct {
		e   Expr
		key string
	}
	ks := make([]keyed, len(others))
	for i, e := range others {
		ks[i] = keyed{e: e, key: e.String()}
	}
	sort.SliceStable(ks, func(i, j int) bool { return ks[i].key < ks[j].key })
	for i := range ks {
		others[i] = ks[i].e
	}

	if coeff.IsOne() {
		if len(others) == 1 {
			return others[0]
		}
		return &Mul{factors: others}
	}
	return &Mul{factors: append([]Expr{coeff}, others...)}
}

func (m *Mul) String() string {
	if len(m.factors) == 0 {
		return "1"
	}
	parts := make([]string, len(m.factors))
	for i, f := range m.factors {
		if _, isAdd := f.(*Add); isAdd {
			parts[i] = "(" + f.String() + ")"
		} else {
			parts[i] = f.String()
		}
	}
	return strings.Join(parts, "*")
}

func (m *Mul) LaTeX() string {
	parts := make([]string, len(m.factors))
	for i, f := range m.factors {
		if _, isAdd := f.(*Add); isAdd {
			parts[i] = "\\left(" + f.LaTeX() + "\\right)"
		} else {
			parts[i] = f.LaTeX()
		}
	}
	return strings.Join(parts, " ")
}

func (m *Mul) Sub(name string, value Expr) Expr {
	out := make([]Expr, len(m.factors))
	for i, f := range m.factors {
		out[i] = f.Sub(name, value)
	}
	return MulOf(out...)
}

// Diff applies the product rule across all factors.
func (m *Mul) Diff(name string) Expr {
	terms := make([]Expr, len(m.factors))
	for i, fi := range m.factors {
		dfi := fi.Diff(name)
		rest := make([]Expr, 0, len(m.factors))
		rest = append(rest, dfi)
		for j, fj := range m.factors {
			if j != i {
				rest = append(rest, fj)
			}
		}
		terms[i] = MulOf(rest...)
	}
	return AddOf(terms...)
}

func (m *Mul) Eval() (*Num, bool) {
	acc := N(1)
	for _, f := range m.factors {
		v, ok := f.Eval()
		if !ok {
			return nil, false
		}
		acc = numMul(acc, v)
	}
	return acc, true
}

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)
	if !ok || len(m.factors) != len(o.factors) {
		return false
	}
	for i := range m.factors {
		if !m.factors[i].Equal(o.factors[i]) {
			return false
		}
	}
	return true
}

// Factors exposes the factors of a simplified product.
func (m *Mul) Factors() []Expr { return m.factors }

// ============================================================
// Pow — base^exponent
// ============================================================

type Pow struct{ base, exp Expr }

// PowOf builds a simplified power.
func PowOf(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }

func (p *Pow) Simplify() Expr {
	base := p.base.Simplify()
	exp := p.exp.Simplify()

	if en, ok := exp.(*Num); ok {
		if en.IsZero() {
			return N(1)
		}
		if en.IsOne() {
			return base
		}
	}
	if bn, ok := base.(*Num); ok {
		if bn.IsZero() {
			if en, ok2 := exp.(*Num); ok2 && (en.IsZero() || en.IsNegative()) {
				// 0^0 and 0^negative stay unevaluated symbolically.
				// Eval gives 1 for 0^0 and !ok for 0^negative.
				return &Pow{base: base, exp: exp}
			}
			return N(0)
		}
		if bn.IsOne() {
			return N(1)
		}
		if en, ok2 := exp.(*Num); ok2 && en.IsInteger() {
			e := en.val.Num().Int64()
			if e >= -20 && e <= 20 {
				abs := e
				if abs < 0 {
					abs = -abs
				}
				result := N(1)
				for i := int64(0); i < abs; i++ {
					result = numMul(result, bn)
				}
				if e < 0 {
					result = numRecip(result)
				}
				return result
			}
		}
	}
	if inner, ok := base.(*Pow); ok {
		return PowOf(inner.base, MulOf(inner.exp, exp))
	}
	return &Pow{base: base, exp: exp}
}

func (p *Pow) String() string {
	baseStr := p.base.String()
	switch p.base.(type) {
	case *Add, *Mul:
		baseStr = "(" + baseStr + ")"
	}
	expStr := p.exp.String()
	switch p.exp.(type) {
	case *Add, *Mul:
		expStr = "(" + expStr + ")"
	default:
		if en, ok := p.exp.(*Num); ok && (en.IsNegative() || !en.IsInteger()) {
			expStr = "(" + expStr + ")"
		}
	}
	return baseStr + "^" + expStr
}

func (p *Pow) LaTeX() string {
	baseStr := p.base.LaTeX()
	switch p.base.(type) {
	case *Add, *Mul:
		baseStr = "\\left(" + baseStr + "\\right)"
	}
	return baseStr + "^{" + p.exp.LaTeX() + "}"
}

func (p *Pow) Sub(name string, value Expr) Expr {
	return PowOf(p.base.Sub(name, value), p.exp.Sub(name, value))
}

// Diff uses the plain power rule whenever the exponent does not depend on
// the differentiation variable. Hill exponents are symbols until the
// reference point is substituted, so this branch must accept symbolic
// exponents, not just numeric ones.
func (p *Pow) Diff(name string) Expr {
	du := p.base.Diff(name)
	if !DependsOn(p.exp, name) {
		return MulOf(p.exp, PowOf(p.base, AddOf(p.exp, N(-1))), du)
	}
	dv := p.exp.Diff(name)
	if !DependsOn(p.base, name) {
		return MulOf(PowOf(p.base, p.exp), LnOf(p.base), dv)
	}
	logTerm := MulOf(dv, LnOf(p.base))
	quotTerm := MulOf(p.exp, du, PowOf(p.base, N(-1)))
	return MulOf(PowOf(p.base, p.exp), AddOf(logTerm, quotTerm))
}

func (p *Pow) Eval() (*Num, bool) {
	b, ok1 := p.base.Eval()
	e, ok2 := p.exp.Eval()
	if !ok1 || !ok2 {
		return nil, false
	}
	v := math.Pow(b.Float64(), e.Float64())
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, false
	}
	return NFloat(v), true
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

// Base returns the base of the power.
func (p *Pow) Base() Expr { return p.base }

// Exponent returns the exponent of the power.
func (p *Pow) Exponent() Expr { return p.exp }

// ============================================================
// Ln — natural logarithm
// ============================================================

// Ln is the only transcendental function the kernel carries: it appears in
// the derivative of a power whose exponent depends on the differentiation
// variable.
type Ln struct{ arg Expr }

// LnOf builds a simplified natural logarithm.
func LnOf(arg Expr) Expr { return (&Ln{arg: arg}).Simplify() }

func (l *Ln) Simplify() Expr {
	arg := l.arg.Simplify()
	if n, ok := arg.(*Num); ok {
		if n.IsOne() {
			return N(0)
		}
		if v := n.Float64(); v > 0 {
			return NFloat(math.Log(v))
		}
	}
	return &Ln{arg: arg}
}

func (l *Ln) String() string { return "ln(" + l.arg.String() + ")" }
func (l *Ln) LaTeX() string  { return "\\ln\\left(" + l.arg.LaTeX() + "\\right)" }

func (l *Ln) Sub(name string, value Expr) Expr { return LnOf(l.arg.Sub(name, value)) }

func (l *Ln) Diff(name string) Expr {
	return MulOf(PowOf(l.arg, N(-1)), l.arg.Diff(name))
}

func (l *Ln) Eval() (*Num, bool) {
	n, ok := l.arg.Eval()
	if !ok {
		return nil, false
	}
	v := n.Float64()
	if v <= 0 {
		return nil, false
	}
	return NFloat(math.Log(v)), true
}

func (l *Ln) Equal(other Expr) bool {
	o, ok := other.(*Ln)
	return ok && l.arg.Equal(o.arg)
}

// Arg returns the logarithm's argument.
func (l *Ln) Arg() Expr { return l.arg }

// ============================================================
// Package-level helpers
// ============================================================

// Simplify simplifies e.
func Simplify(e Expr) Expr { return e.Simplify() }

// String renders the simplified form of e.
func String(e Expr) string { return e.Simplify().String() }

// LaTeX renders the simplified form of e for typesetting.
func LaTeX(e Expr) string { return e.Simplify().LaTeX() }

// Sub substitutes value for the named symbol and simplifies.
func Sub(e Expr, name string, value Expr) Expr { return e.Sub(name, value).Simplify() }

// Diff differentiates e with respect to the named symbol and simplifies.
func Diff(e Expr, name string) Expr { return e.Diff(name).Simplify() }

// FreeSymbols returns the set of unbound symbol names in e.
func FreeSymbols(e Expr) map[string]struct{} {
	out := map[string]struct{}{}
	collectSymbols(e, out)
	return out
}

func collectSymbols(e Expr, out map[string]struct{}) {
	switch v := e.(type) {
	case *Sym:
		out[v.name] = struct{}{}
	case *Add:
		for _, t := range v.terms {
			collectSymbols(t, out)
		}
	case *Mul:
		for _, f := range v.factors {
			collectSymbols(f, out)
		}
	case *Pow:
		collectSymbols(v.base, out)
		collectSymbols(v.exp, out)
	case *Ln:
		collectSymbols(v.arg, out)
	}
}

// DependsOn reports whether the named symbol occurs in e.
func DependsOn(e Expr, name string) bool {
	switch v := e.(type) {
	case *Sym:
		return v.name == name
	case *Add:
		for _, t := range v.terms {
			if DependsOn(t, name) {
				return true
			}
		}
	case *Mul:
		for _, f := range v.factors {
			if DependsOn(f, name) {
				return true
			}
		}
	case *Pow:
		return DependsOn(v.base, name) || DependsOn(v.exp, name)
	case *Ln:
		return DependsOn(v.arg, name)
	}
	return false
}
