package game

// Phase represents a round lifecycle phase.
type Phase string

const (
	// PhaseWaiting indicates the pre-round betting countdown.
	PhaseWaiting Phase = "waiting"
	// PhaseFlying indicates the multiplier is rising.
	PhaseFlying Phase = "flying"
	// PhaseCrashed indicates the round ended at its crash point.
	PhaseCrashed Phase = "crashed"
)

// validTransitions contains the only permitted phase changes. The round loop
// cycles waiting -> flying -> crashed -> waiting forever.
var validTransitions = map[Phase]Phase{
	PhaseWaiting: PhaseFlying,
	PhaseFlying:  PhaseCrashed,
	PhaseCrashed: PhaseWaiting,
}

// IsTransitionAllowed reports whether moving from one phase to another is valid.
func IsTransitionAllowed(from, to Phase) bool {
	return validTransitions[from] == to
}

var transitionRecorder = func(from, to string) {}

// RegisterTransitionRecorder lets the metrics package observe phase changes
// without this package importing it.
func RegisterTransitionRecorder(recorder func(from, to string)) {
	if recorder == nil {
		transitionRecorder = func(string, string) {}
		return
	}

	transitionRecorder = recorder
}

var roundRecorder = func(crashPoint float64) {}

// RegisterRoundRecorder lets the metrics package observe completed rounds.
func RegisterRoundRecorder(recorder func(crashPoint float64)) {
	if recorder == nil {
		roundRecorder = func(float64) {}
		return
	}

	roundRecorder = recorder
}
