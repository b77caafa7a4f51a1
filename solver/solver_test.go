package solver

import (
	"math"
	"testing"
)

// decay is du/dt = -k*u with analytic solution u0*exp(-k*t).
func decay(k float64) DerivFunc {
	return func(_ float64, u []float64) []float64 {
		return []float64{-k * u[0]}
	}
}

func integrate(m *Method, f DerivFunc, u0, dt float64, steps int) float64 {
	u := []float64{u0}
	for i := 0; i < steps; i++ {
		u = m.Step(f, float64(i)*dt, u, dt)
	}
	return u[0]
}

func TestEulerDecay(t *testing.T) {
	// Euler is first order; expect rough agreement at small dt.
	got := integrate(Euler(), decay(0.5), 100, 0.01, 1000)
	want := 100 * math.Exp(-0.5*10)
	if math.Abs(got-want)/want > 0.02 {
		t.Errorf("Expected ~%f, got %f", want, got)
	}
}

func TestRK4Decay(t *testing.T) {
	got := integrate(RK4(), decay(0.5), 100, 0.1, 100)
	want := 100 * math.Exp(-0.5*10)
	if math.Abs(got-want)/want > 1e-6 {
		t.Errorf("Expected %f, got %f", want, got)
	}
}

func TestHeunBeatsEuler(t *testing.T) {
	want := 100 * math.Exp(-1.0)
	euler := integrate(Euler(), decay(1), 100, 0.1, 10)
	heun := integrate(Heun(), decay(1), 100, 0.1, 10)
	if math.Abs(heun-want) >= math.Abs(euler-want) {
		t.Errorf("Expected Heun error < Euler error: heun=%f euler=%f want=%f", heun, euler, want)
	}
}

func TestMidpointOrder(t *testing.T) {
	want := 100 * math.Exp(-1.0)
	got := integrate(Midpoint(), decay(1), 100, 0.1, 10)
	if math.Abs(got-want)/want > 1e-2 {
		t.Errorf("Expected ~%f, got %f", want, got)
	}
}

func TestStepConservation(t *testing.T) {
	// Mass moving between two pools must stay constant under any tableau.
	f := func(_ float64, u []float64) []float64 {
		flux := 0.3 * u[0]
		return []float64{-flux, flux}
	}
	for _, m := range []*Method{Euler(), Heun(), Midpoint(), RK4()} {
		u := []float64{10, 0}
		for i := 0; i < 50; i++ {
			u = m.Step(f, float64(i)*0.1, u, 0.1)
		}
		total := u[0] + u[1]
		if math.Abs(total-10) > 1e-9 {
			t.Errorf("%s: expected total 10, got %f", m.Name, total)
		}
	}
}

func TestStepDoesNotModifyInput(t *testing.T) {
	u := []float64{5, 5}
	f := func(_ float64, u []float64) []float64 {
		return []float64{-u[0], u[0]}
	}
	RK4().Step(f, 0, u, 0.1)
	if u[0] != 5 || u[1] != 5 {
		t.Errorf("Step modified input state: %v", u)
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"euler", "Euler", "heun", "midpoint", "RK4", "rk4"} {
		if ByName(name) == nil {
			t.Errorf("ByName(%q) = nil", name)
		}
	}
	if ByName("tsit5") != nil {
		t.Error("Expected nil for unknown method")
	}
}
