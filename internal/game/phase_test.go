package game

import "testing"

func TestIsTransitionAllowed(t *testing.T) {
	tests := []struct {
		name string
		from Phase
		to   Phase
		want bool
	}{
		{name: "waiting to flying", from: PhaseWaiting, to: PhaseFlying, want: true},
		{name: "flying to crashed", from: PhaseFlying, to: PhaseCrashed, want: true},
		{name: "crashed to waiting", from: PhaseCrashed, to: PhaseWaiting, want: true},
		{name: "waiting to crashed", from: PhaseWaiting, to: PhaseCrashed, want: false},
		{name: "flying to waiting", from: PhaseFlying, to: PhaseWaiting, want: false},
		{name: "crashed to flying", from: PhaseCrashed, to: PhaseFlying, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransitionAllowed(tt.from, tt.to); got != tt.want {
				t.Errorf("IsTransitionAllowed(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestRegisterTransitionRecorder(t *testing.T) {
	var got [][2]string
	RegisterTransitionRecorder(func(from, to string) {
		got = append(got, [2]string{from, to})
	})
	defer RegisterTransitionRecorder(nil)

	transitionRecorder("waiting", "flying")

	if len(got) != 1 || got[0] != [2]string{"waiting", "flying"} {
		t.Fatalf("recorder not invoked, got %v", got)
	}
}
