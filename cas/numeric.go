package cas

import (
	"math"
)

// ============================================================
// Float evaluation
// ============================================================

// Lambdify compiles expr into a float function of varName. The function
// never panics: domain errors give NaN, poles give ±Inf.
func Lambdify(expr Expr, varName string) func(float64) float64 {
	return func(x float64) float64 { return evalFloat(expr, varName, x) }
}

// Float evaluates a closed expression. ok is false when the value is not a
// finite real number.
func Float(e Expr) (float64, bool) {
	v := evalFloat(e, "", math.NaN())
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v, false
	}
	return v, true
}

func evalFloat(e Expr, varName string, x float64) float64 {
	switch v := e.(type) {
	case *Num:
		return v.Float64()
	case *Sym:
		if v.name == varName {
			return x
		}
		return math.NaN()
	case *Const:
		return v.value
	case *Inf:
		return v.Float64()
	case *Add:
		acc := 0.0
		for _, t := range v.terms {
			acc += evalFloat(t, varName, x)
		}
		return acc
	case *Mul:
		acc := 1.0
		for _, f := range v.factors {
			acc *= evalFloat(f, varName, x)
		}
		return acc
	case *Pow:
		return powFloat(evalFloat(v.base, varName, x), evalFloat(v.exp, varName, x))
	case *Func:
		return applyFloat(v.name, evalFloat(v.arg, varName, x))
	}
	return math.NaN()
}

// powFloat is math.Pow restricted to real results; a negative base with a
// fractional exponent is NaN, never a silent principal value.
func powFloat(b, e float64) float64 {
	if math.IsNaN(b) || math.IsNaN(e) {
		return math.NaN()
	}
	if b == 0 && e < 0 {
		if math.Trunc(e) == e && math.Mod(-e, 2) == 1 && math.Signbit(b) {
			return math.Inf(-1)
		}
		return math.Inf(1)
	}
	return math.Pow(b, e)
}

func applyFloat(name string, v float64) float64 {
	if math.IsNaN(v) {
		return math.NaN()
	}
	switch name {
	case "sin":
		return math.Sin(v)
	case "cos":
		return math.Cos(v)
	case "tan":
		return math.Tan(v)
	case "exp":
		return math.Exp(v)
	case "ln":
		if v < 0 {
			return math.NaN()
		}
		return math.Log(v)
	case "abs":
		return math.Abs(v)
	case "asin":
		return math.Asin(v)
	case "acos":
		return math.Acos(v)
	case "atan":
		return math.Atan(v)
	case "sinh":
		return math.Sinh(v)
	case "cosh":
		return math.Cosh(v)
	case "tanh":
		return math.Tanh(v)
	case "floor":
		return math.Floor(v)
	case "ceil":
		return math.Ceil(v)
	case "sign":
		switch {
		case v > 0:
			return 1
		case v < 0:
			return -1
		}
		return 0
	}
	return math.NaN()
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
