package hillfit

// Built-in reactions v29 and v33 of the Brännmark et al. (2013) insulin
// signaling model (BioModels BIOMD0000000448). Reference values are the
// published parameter set and the steady state reached by simulating the
// model to t = 1000.
//
// v29 drives protein synthesis through S6 kinase: a Hill function of
// phosphorylated S6K (x28, coefficient n6, half-saturation km6) times the
// S6 concentration (x34).
//
// v33 is the symmetric case with the linear factor first: glucose uptake
// driven by x36 times a Hill function of membrane GLUT4 (x31, coefficient
// n9, half-saturation km9).

// BrannmarkV29 returns reaction v29: k29 · x28^n6/(km6^n6 + x28^n6) · x34.
func BrannmarkV29() RateLaw {
	return RateLaw{
		Name: "29",
		Rate: MulOf(
			S("k29"),
			HillTerm(S("x28"), S("n6"), S("km6")),
			S("x34"),
		),
		Vars: []string{"x28", "x34"},
		Ref: Point{
			"k29": 36.93,
			"x28": 37.923,
			"n6":  2.137,
			"km6": 30.54,
			"x34": 29.576,
		},
	}
}

// BrannmarkV33 returns reaction v33: k33 · x36 · x31^n9/(km9^n9 + x31^n9).
func BrannmarkV33() RateLaw {
	return RateLaw{
		Name: "33",
		Rate: MulOf(
			S("k33"),
			S("x36"),
			HillTerm(S("x31"), S("n9"), S("km9")),
		),
		Vars: []string{"x36", "x31"},
		Ref: Point{
			"k33": 0.1298,
			"x36": 96.047,
			"x31": 78.791,
			"n9":  0.9855,
			"km9": 5873.0,
		},
	}
}

// Brannmark returns both built-in reactions in output order.
func Brannmark() []RateLaw {
	return []RateLaw{BrannmarkV29(), BrannmarkV33()}
}
