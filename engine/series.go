package engine

// TimeSeries is the trajectory of one simulation run: compartment states
// at each time point, ordered by time ascending. It is immutable once
// returned by Run and owned by the caller.
type TimeSeries struct {
	T      []float64            // Time points
	U      []map[string]float64 // State at each time point
	Labels []string             // Ordered compartment labels
}

// Len returns the number of time points in the series.
func (s *TimeSeries) Len() int {
	return len(s.T)
}

// GetVariable extracts the time series for a single compartment label.
func (s *TimeSeries) GetVariable(label string) []float64 {
	out := make([]float64, 0, len(s.U))
	for _, st := range s.U {
		out = append(out, st[label])
	}
	return out
}

// GetFinalState returns the final state of the run, or nil when empty.
func (s *TimeSeries) GetFinalState() map[string]float64 {
	if len(s.U) == 0 {
		return nil
	}
	return s.U[len(s.U)-1]
}

// GetState returns the state at a specific time point index,
// or nil when the index is out of range.
func (s *TimeSeries) GetState(i int) map[string]float64 {
	if i < 0 || i >= len(s.U) {
		return nil
	}
	return s.U[i]
}

// CopyState creates a deep copy of a state map.
func CopyState(u map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(u))
	for k, v := range u {
		out[k] = v
	}
	return out
}
