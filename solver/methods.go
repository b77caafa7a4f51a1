package solver

import "strings"

// Euler returns the forward Euler method, the default for deterministic
// runs. First order, one derivative evaluation per step, accurate
// enough at daily step sizes for well-mixed compartmental models.
func Euler() *Method {
	return &Method{
		Name:  "Euler",
		Order: 1,
		C:     []float64{0},
		A:     [][]float64{{}},
		B:     []float64{1},
	}
}

// Heun returns Heun's method (improved Euler / RK2). A second-order
// predictor-corrector; more accurate than Euler at the cost of one
// extra derivative evaluation.
func Heun() *Method {
	return &Method{
		Name:  "Heun",
		Order: 2,
		C: []float64{
			0,
			1,
		},
		A: [][]float64{
			{},
			{1},
		},
		B: []float64{
			0.5,
			0.5,
		},
	}
}

// Midpoint returns the midpoint method (RK2).
func Midpoint() *Method {
	return &Method{
		Name:  "Midpoint",
		Order: 2,
		C: []float64{
			0,
			0.5,
		},
		A: [][]float64{
			{},
			{0.5},
		},
		B: []float64{
			0,
			1,
		},
	}
}

// RK4 returns the classic 4th order Runge-Kutta method. Use this when
// large step sizes would make Euler visibly distort the epidemic curve.
func RK4() *Method {
	return &Method{
		Name:  "RK4",
		Order: 4,
		C: []float64{
			0,
			0.5,
			0.5,
			1,
		},
		A: [][]float64{
			{},
			{0.5},
			{0, 0.5},
			{0, 0, 1},
		},
		B: []float64{
			1.0 / 6.0,
			1.0 / 3.0,
			1.0 / 3.0,
			1.0 / 6.0,
		},
	}
}

// ByName resolves a method name (case-insensitive) to its constructor.
// Unknown names return nil.
func ByName(name string) *Method {
	switch strings.ToLower(name) {
	case "euler":
		return Euler()
	case "heun":
		return Heun()
	case "midpoint":
		return Midpoint()
	case "rk4":
		return RK4()
	default:
		return nil
	}
}
