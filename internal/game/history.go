package game

// WindowSize is how many past crash points are ever exposed to clients.
const WindowSize = 7

// historyCap bounds internal retention; only the newest entries survive a trim.
const historyCap = 512

// History is an append-only record of past crash points. It is owned by the
// engine goroutine and needs no locking of its own.
type History struct {
	points []float64
}

// NewHistory creates a History pre-seeded with the given crash points, oldest
// first. Seeding lets a freshly booted server show a non-empty window.
func NewHistory(seed ...float64) *History {
	h := &History{points: make([]float64, 0, historyCap)}
	h.points = append(h.points, seed...)
	return h
}

// Append records the crash point of a finished round.
func (h *History) Append(point float64) {
	h.points = append(h.points, point)

	if len(h.points) > historyCap {
		keep := h.points[len(h.points)-WindowSize:]
		h.points = append(h.points[:0], keep...)
	}
}

// Window returns a copy of the most recent crash points, oldest first, never
// more than WindowSize entries.
func (h *History) Window() []float64 {
	start := 0
	if len(h.points) > WindowSize {
		start = len(h.points) - WindowSize
	}

	window := make([]float64, len(h.points)-start)
	copy(window, h.points[start:])
	return window
}

// Len reports how many crash points are currently retained.
func (h *History) Len() int {
	return len(h.points)
}
