package hillfit_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sysbiogo/hillfit"
)

// hillElasticity is the closed form n*km^n/(km^n + x^n) of the Hill
// function's logarithmic derivative.
func hillElasticity(x, n, km float64) float64 {
	return n * math.Pow(km, n) / (math.Pow(km, n) + math.Pow(x, n))
}

func demoLaw() hillfit.RateLaw {
	return hillfit.RateLaw{
		Name: "1",
		Rate: hillfit.MulOf(
			hillfit.S("k"),
			hillfit.HillTerm(hillfit.S("x"), hillfit.S("n"), hillfit.S("km")),
			hillfit.S("y"),
		),
		Vars: []string{"x", "y"},
		Ref:  hillfit.Point{"k": 2.5, "x": 12.0, "n": 3.0, "km": 8.0, "y": 4.0},
	}
}

func TestElasticity_HillClosedForm(t *testing.T) {
	law := demoLaw()
	got, err := hillfit.Elasticity(law.Rate, "x", law.Ref)
	require.NoError(t, err)
	assert.InEpsilon(t, hillElasticity(12.0, 3.0, 8.0), got, 1e-12)
}

func TestElasticity_LinearFactorIsExactlyOne(t *testing.T) {
	law := demoLaw()
	got, err := hillfit.Elasticity(law.Rate, "y", law.Ref)
	require.NoError(t, err)
	// Exact, not approximate: the quotient is taken in rational
	// arithmetic and the shared factors cancel.
	assert.Equal(t, 1.0, got)
}

func TestFit_Demo(t *testing.T) {
	pl, err := hillfit.Fit(demoLaw())
	require.NoError(t, err)
	require.Len(t, pl.Terms, 2)
	assert.Equal(t, "x", pl.Terms[0].Var)
	assert.Equal(t, "y", pl.Terms[1].Var)
	assert.InEpsilon(t, hillElasticity(12.0, 3.0, 8.0), pl.Terms[0].Exponent, 1e-12)
	assert.Equal(t, 1.0, pl.Terms[1].Exponent)
	assert.Greater(t, pl.K, 0.0)
}

func TestFit_RoundTrip(t *testing.T) {
	// k' * x^p * y^q must reproduce the original rate at the reference
	// point.
	law := demoLaw()
	pl, err := hillfit.Fit(law)
	require.NoError(t, err)

	orig, err := hillfit.EvalAt(law.Rate, law.Ref)
	require.NoError(t, err)
	approx, err := pl.RateAt(law.Ref)
	require.NoError(t, err)
	assert.InEpsilon(t, orig, approx, 1e-9)
}

func TestFit_ZeroState_Errors(t *testing.T) {
	law := demoLaw()
	law.Ref["x"] = 0 // rate collapses to zero
	_, err := hillfit.Fit(law)
	require.Error(t, err)
	assert.ErrorIs(t, err, hillfit.ErrZeroRate)
}

func TestFit_ZeroRateConstant_Errors(t *testing.T) {
	law := demoLaw()
	law.Ref["k"] = 0
	_, err := hillfit.Fit(law)
	require.Error(t, err)
	assert.ErrorIs(t, err, hillfit.ErrZeroRate)
}

func TestFit_ZeroFittedVariable_Errors(t *testing.T) {
	// A rate that stays nonzero when a fitted variable is zero: the
	// back-solved constant would divide by zero, so the fit refuses.
	law := hillfit.RateLaw{
		Name: "sum",
		Rate: hillfit.AddOf(hillfit.S("x"), hillfit.S("y")),
		Vars: []string{"x"},
		Ref:  hillfit.Point{"x": 0.0, "y": 2.0},
	}
	_, err := hillfit.Fit(law)
	require.Error(t, err)
	assert.ErrorIs(t, err, hillfit.ErrZeroReference)
}

func TestFit_UnboundSymbol_Errors(t *testing.T) {
	law := demoLaw()
	delete(law.Ref, "km")
	_, err := hillfit.Fit(law)
	require.Error(t, err)
	assert.ErrorIs(t, err, hillfit.ErrUnboundSymbol)
}

func TestFit_VariableMissingFromRate_Errors(t *testing.T) {
	law := demoLaw()
	law.Vars = append(law.Vars, "z")
	_, err := hillfit.Fit(law)
	require.Error(t, err)
}

func TestElasticity_ZeroRate_Errors(t *testing.T) {
	law := demoLaw()
	law.Ref["y"] = 0
	_, err := hillfit.Elasticity(law.Rate, "x", law.Ref)
	assert.ErrorIs(t, err, hillfit.ErrZeroRate)
}

func TestPowerLaw_Monomial(t *testing.T) {
	pl := &hillfit.PowerLaw{
		Name: "1",
		K:    2.0,
		Terms: []hillfit.PowerTerm{
			{Var: "x", Exponent: 1.0},
			{Var: "y", Exponent: 2.0},
		},
	}
	assert.Equal(t, "2*x*y^2", hillfit.String(pl.Monomial()))

	v, err := pl.RateAt(hillfit.Point{"x": 3.0, "y": 2.0})
	require.NoError(t, err)
	assert.InEpsilon(t, 24.0, v, 1e-12)
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "p29", hillfit.ExponentLabel("29", 0))
	assert.Equal(t, "q29", hillfit.ExponentLabel("29", 1))
	assert.Equal(t, "r29", hillfit.ExponentLabel("29", 2))
	assert.Equal(t, "k29p", hillfit.ConstantLabel("29"))
}
