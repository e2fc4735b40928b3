package agent

// Decision maps an observation to an action. Implementations may keep
// recurrent memory between calls through MakeMemory.
type Decision interface {
	Decide(state []float64, reward float64, done bool, memory []float64) []float64
	MakeMemory(state []float64, reward float64, done bool, memory []float64) []float64
}

// HeuristicDecision is the stand-in used when no trained model is attached:
// it holds still.
type HeuristicDecision struct {
	Space ActionSpace
}

// Decide returns four zeros for continuous control and action 1 for discrete.
func (d HeuristicDecision) Decide([]float64, float64, bool, []float64) []float64 {
	if d.Space == Continuous {
		return []float64{0, 0, 0, 0}
	}
	return []float64{1}
}

// MakeMemory keeps no memory.
func (HeuristicDecision) MakeMemory([]float64, float64, bool, []float64) []float64 {
	return []float64{}
}
