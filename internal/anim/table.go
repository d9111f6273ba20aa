package anim

// Input is anything that can move the state machine.
type Input int

const (
	InputTick Input = iota
	InputStart
	InputFinish
)

func (in Input) String() string {
	switch in {
	case InputTick:
		return "tick"
	case InputStart:
		return "start"
	case InputFinish:
		return "finish"
	default:
		return "unknown"
	}
}

// Signal is an inbound payload on the phase channel.
type Signal string

const (
	SignalStart  Signal = "start"
	SignalFinish Signal = "finish"
)

// ParseSignal maps a channel payload to a signal. Only the exact literals
// match; anything else is not an error and callers ignore it.
func ParseSignal(payload string) (Signal, bool) {
	switch Signal(payload) {
	case SignalStart:
		return SignalStart, true
	case SignalFinish:
		return SignalFinish, true
	default:
		return "", false
	}
}

// Input returns the table input for the signal.
func (s Signal) Input() Input {
	if s == SignalFinish {
		return InputFinish
	}
	return InputStart
}

// Effect is a side effect requested by a transition.
type Effect int

const (
	EffectNone Effect = iota
	// EffectComplete asks the owner to emit the completion notification.
	EffectComplete
)

type rule func(frame int) (State, Effect)

func enter(p Phase, frame int) rule {
	return func(int) (State, Effect) {
		return State{Phase: p, Frame: frame, Hold: true}, EffectNone
	}
}

// transitions is the whole machine. A missing (phase, input) pair is a no-op.
var transitions = map[Phase]map[Input]rule{
	PhaseIntro: {
		InputTick: func(frame int) (State, Effect) {
			if frame >= IntroLast {
				return State{Phase: PhaseRunning, Frame: RunFirst}, EffectNone
			}
			return State{Phase: PhaseIntro, Frame: frame + 1}, EffectNone
		},
		InputStart:  enter(PhaseIntro, IntroFirst),
		InputFinish: enter(PhaseOutro, OutroFirst),
	},
	PhaseRunning: {
		InputTick: func(frame int) (State, Effect) {
			if frame == RunFirst {
				return State{Phase: PhaseRunning, Frame: RunLast}, EffectNone
			}
			return State{Phase: PhaseRunning, Frame: RunFirst}, EffectNone
		},
		InputStart:  enter(PhaseIntro, IntroFirst),
		InputFinish: enter(PhaseOutro, OutroFirst),
	},
	PhaseOutro: {
		InputTick: func(frame int) (State, Effect) {
			if frame >= OutroLast {
				return State{Phase: PhaseDone, Frame: OutroLast}, EffectComplete
			}
			return State{Phase: PhaseOutro, Frame: frame + 1}, EffectNone
		},
		InputStart: enter(PhaseIntro, IntroFirst),
	},
	PhaseDone: {},
}

// Step applies one input to a state. A tick on a held entry frame only
// releases the hold, so a redirect never consumes a tick.
func Step(s State, in Input) (State, Effect) {
	if in == InputTick && s.Hold && s.Phase != PhaseDone {
		s.Hold = false
		return s, EffectNone
	}
	r, ok := transitions[s.Phase][in]
	if !ok {
		return s, EffectNone
	}
	return r(s.Frame)
}
