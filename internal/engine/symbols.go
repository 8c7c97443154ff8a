package engine

import "math"

// Function is a unary numeric binding callable from an expression.
type Function func(float64) float64

// Symbols is the closed table of names an expression may reference. The
// evaluator resolves identifiers only through these two maps.
type Symbols struct {
	Functions map[string]Function
	Constants map[string]float64
}

// NewSymbols returns the calculator's symbol table: sin, cos, tan, log, ln
// and sqrt, plus the constants PI, E and Ans bound to ans.
func NewSymbols(mode AngleMode, ans float64) Symbols {
	toRadians := func(x float64) float64 { return x }
	if mode == Degrees {
		toRadians = func(x float64) float64 { return x * math.Pi / 180 }
	}
	return Symbols{
		Functions: map[string]Function{
			"sin":  func(x float64) float64 { return math.Sin(toRadians(x)) },
			"cos":  func(x float64) float64 { return math.Cos(toRadians(x)) },
			"tan":  func(x float64) float64 { return math.Tan(toRadians(x)) },
			"log":  math.Log10,
			"ln":   math.Log,
			"sqrt": math.Sqrt,
		},
		Constants: map[string]float64{
			"PI":  math.Pi,
			"E":   math.E,
			"Ans": ans,
		},
	}
}
