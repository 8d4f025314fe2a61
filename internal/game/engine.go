package game

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// growthFactor scales the quadratic multiplier curve: 1 + factor*elapsed^2.
// The accelerating curve makes late cash-outs disproportionately risky.
const growthFactor = 0.1

// Timing holds the engine's phase durations. Tests compress them.
type Timing struct {
	CountdownTicks int           // waiting ticks before flight, one event each
	TickInterval   time.Duration // spacing between waiting ticks
	FlyInterval    time.Duration // multiplier update cadence while flying
	CrashPause     time.Duration // idle time after a crash
}

// DefaultTiming matches the production round: 5s countdown, 10Hz flight
// updates, 3s post-crash pause.
func DefaultTiming() Timing {
	return Timing{
		CountdownTicks: 5,
		TickInterval:   time.Second,
		FlyInterval:    100 * time.Millisecond,
		CrashPause:     3 * time.Second,
	}
}

// Engine drives the perpetual round loop. It is the sole writer of round
// state; everything leaves through the Broadcaster. A single Engine instance
// runs per process.
type Engine struct {
	gen         *Generator
	broadcaster Broadcaster
	history     *History
	timing      Timing
	log         *slog.Logger

	phase      Phase
	multiplier float64
}

// NewEngine constructs the round engine. historySeed optionally pre-fills the
// history window shown before the first round completes.
func NewEngine(gen *Generator, broadcaster Broadcaster, timing Timing, log *slog.Logger, historySeed ...float64) *Engine {
	if log == nil {
		log = slog.Default()
	}

	return &Engine{
		gen:         gen,
		broadcaster: broadcaster,
		history:     NewHistory(historySeed...),
		timing:      timing,
		log:         log,
		phase:       PhaseCrashed, // so the first transition into waiting is valid
		multiplier:  1.0,
	}
}

// Run executes rounds until ctx is cancelled. It only returns between phases,
// never mid-computation, and it returns ctx.Err() exclusively: any other exit
// would mean a dead round system, which callers must treat as fatal.
func (e *Engine) Run(ctx context.Context) error {
	e.log.Info("round engine started",
		slog.Int("countdown_ticks", e.timing.CountdownTicks),
		slog.Duration("fly_interval", e.timing.FlyInterval),
	)

	for {
		roundID := uuid.NewString()
		log := e.log.With(slog.String("round_id", roundID))

		if err := e.waitPhase(ctx, log); err != nil {
			return err
		}

		crashPoint, err := e.flyPhase(ctx, log)
		if err != nil {
			return err
		}

		if err := e.crashPhase(ctx, log, crashPoint); err != nil {
			return err
		}
	}
}

// waitPhase runs the betting countdown, one tick event per second.
func (e *Engine) waitPhase(ctx context.Context, log *slog.Logger) error {
	e.transition(PhaseWaiting)
	e.multiplier = 1.0

	for secondsLeft := e.timing.CountdownTicks; secondsLeft >= 1; secondsLeft-- {
		e.broadcaster.Broadcast(newTickEvent(secondsLeft, e.history.Window()))

		if err := sleep(ctx, e.timing.TickInterval); err != nil {
			return err
		}
	}

	return nil
}

// flyPhase draws the hidden crash point and rises toward it. The final value
// is clamped to the target exactly; no fly event is emitted at the clamped
// value, the crash event carries it instead.
func (e *Engine) flyPhase(ctx context.Context, log *slog.Logger) (float64, error) {
	e.transition(PhaseFlying)

	crashPoint := e.gen.Generate()
	start := time.Now()

	log.Debug("flight started", slog.Float64("crash_point", crashPoint))

	for e.multiplier < crashPoint {
		elapsed := time.Since(start).Seconds()
		e.multiplier = 1.0 + elapsed*elapsed*growthFactor

		if e.multiplier >= crashPoint {
			e.multiplier = crashPoint
			break
		}

		e.broadcaster.Broadcast(newFlyEvent(Round2(e.multiplier)))

		if err := sleep(ctx, e.timing.FlyInterval); err != nil {
			return 0, err
		}
	}

	return crashPoint, nil
}

// crashPhase settles the round state: history gets the target, clients get the
// crash event, then the engine idles before the next countdown.
func (e *Engine) crashPhase(ctx context.Context, log *slog.Logger, crashPoint float64) error {
	e.transition(PhaseCrashed)
	e.multiplier = crashPoint
	e.history.Append(crashPoint)

	e.broadcaster.Broadcast(newCrashEvent(crashPoint, e.history.Window()))
	roundRecorder(crashPoint)

	log.Info("round crashed", slog.Float64("crash_point", crashPoint))

	return sleep(ctx, e.timing.CrashPause)
}

func (e *Engine) transition(to Phase) {
	if !IsTransitionAllowed(e.phase, to) {
		// The loop structure makes this unreachable; log loudly if it ever
		// happens rather than continuing with a corrupt phase.
		e.log.Error("invalid phase transition", slog.String("from", string(e.phase)), slog.String("to", string(to)))
	}

	transitionRecorder(string(e.phase), string(to))
	e.phase = to
}

// sleep waits for d or until ctx is cancelled, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
