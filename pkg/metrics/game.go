package metrics

import "github.com/elitecasino/crash-backend/internal/game"

func init() {
	game.RegisterTransitionRecorder(RecordPhaseTransition)
	game.RegisterRoundRecorder(RecordRound)
}
