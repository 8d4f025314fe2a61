package game

// Push-channel message shapes. The Type discriminator is what clients switch
// on; Status duplicates the phase for older client builds that read it.

// TickEvent is sent once per second during the betting countdown.
type TickEvent struct {
	Type    string    `json:"type"`
	Status  Phase     `json:"status"`
	Time    int       `json:"time"`
	History []float64 `json:"history"`
}

// FlyEvent is sent at the update cadence while the multiplier rises.
type FlyEvent struct {
	Type       string  `json:"type"`
	Status     Phase   `json:"status"`
	Multiplier float64 `json:"multiplier"`
}

// CrashEvent is sent once when the round ends.
type CrashEvent struct {
	Type       string    `json:"type"`
	Status     Phase     `json:"status"`
	Multiplier float64   `json:"multiplier"`
	History    []float64 `json:"history"`
}

func newTickEvent(secondsLeft int, history []float64) TickEvent {
	return TickEvent{Type: "tick", Status: PhaseWaiting, Time: secondsLeft, History: history}
}

func newFlyEvent(multiplier float64) FlyEvent {
	return FlyEvent{Type: "fly", Status: PhaseFlying, Multiplier: multiplier}
}

func newCrashEvent(crashPoint float64, history []float64) CrashEvent {
	return CrashEvent{Type: "crash", Status: PhaseCrashed, Multiplier: crashPoint, History: history}
}

// Broadcaster receives every engine event exactly once, in order. It must
// return promptly: slow consumers are the broadcaster's problem, not the
// engine's.
type Broadcaster interface {
	Broadcast(event any)
}
