// Package solver implements fixed-step explicit Runge-Kutta methods for
// the compartmental rate equations. Methods are expressed as Butcher
// tableaux so the stepping code is shared across Euler, Heun, Midpoint
// and RK4.
package solver

// DerivFunc computes the derivative du/dt given time t and state u.
// Implementations must not retain or modify u.
type DerivFunc func(t float64, u []float64) []float64

// Method represents an explicit Runge-Kutta method.
type Method struct {
	Name  string
	Order int
	C     []float64   // Runge-Kutta nodes
	A     [][]float64 // Runge-Kutta matrix
	B     []float64   // Solution weights
}

// Step advances the state u from t by a single step of size dt and
// returns the new state. The input slice is not modified.
func (m *Method) Step(f DerivFunc, t float64, u []float64, dt float64) []float64 {
	n := len(u)
	numStages := len(m.C)

	k := make([][]float64, numStages)
	k[0] = f(t, u)

	for stage := 1; stage < numStages; stage++ {
		tstage := t + m.C[stage]*dt
		ustage := append([]float64(nil), u...)
		for j := 0; j < stage; j++ {
			aj := 0.0
			if len(m.A) > stage && len(m.A[stage]) > j {
				aj = m.A[stage][j]
			}
			if aj != 0 {
				scale := dt * aj
				for i := 0; i < n; i++ {
					ustage[i] += scale * k[j][i]
				}
			}
		}
		k[stage] = f(tstage, ustage)
	}

	unext := append([]float64(nil), u...)
	for j := 0; j < len(m.B); j++ {
		if m.B[j] != 0 {
			scale := dt * m.B[j]
			for i := 0; i < n; i++ {
				unext[i] += scale * k[j][i]
			}
		}
	}
	return unext
}
