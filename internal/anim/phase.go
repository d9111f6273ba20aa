// Package anim drives the processing-indicator animation shown while a fix
// is in flight. The controller is a small state machine advanced by a fixed
// tick and redirected by start/finish signals from the backend.
package anim

import "time"

// Phase is one coarse step of the animation lifecycle.
type Phase int

const (
	// PhaseIntro plays the introductory frames once.
	PhaseIntro Phase = iota
	// PhaseRunning loops the two running frames until a finish signal.
	PhaseRunning
	// PhaseOutro plays the closing frames once, then completes.
	PhaseOutro
	// PhaseDone is terminal; nothing is rendered and ticking stops.
	PhaseDone
)

// String returns the lowercase name used in logs.
func (p Phase) String() string {
	switch p {
	case PhaseIntro:
		return "intro"
	case PhaseRunning:
		return "running"
	case PhaseOutro:
		return "outro"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// Frame layout of the 11-frame asset set.
const (
	FrameCount = 11

	IntroFirst = 0
	IntroLast  = 4
	RunFirst   = 5
	RunLast    = 6
	OutroFirst = 7
	OutroLast  = 10
)

// Timing constants shared with the backend pipeline.
const (
	FrameDuration = 150 * time.Millisecond

	IntroFrames     = IntroLast - IntroFirst + 1
	OutroFrames     = OutroLast - OutroFirst + 1
	FramesPerCycle  = RunLast - RunFirst + 1
	MinRunningLoops = 2
)

// Channel names on the event bridge.
const (
	PhaseChannel    = "animation-phase"
	CompleteChannel = "animation-complete"
)

// State is the controller's (phase, frame) pair. Hold marks an entry frame
// reached through a signal that has not yet been shown for a full tick.
type State struct {
	Phase Phase
	Frame int
	Hold  bool
}

// Initial is the state every controller starts from.
func Initial() State {
	return State{Phase: PhaseIntro, Frame: IntroFirst}
}

// InRange reports whether the frame lies in the sub-range owned by the phase.
func (s State) InRange() bool {
	switch s.Phase {
	case PhaseIntro:
		return s.Frame >= IntroFirst && s.Frame <= IntroLast
	case PhaseRunning:
		return s.Frame >= RunFirst && s.Frame <= RunLast
	case PhaseOutro, PhaseDone:
		return s.Frame >= OutroFirst && s.Frame <= OutroLast
	default:
		return false
	}
}

// MinDisplay is how long the backend keeps the overlay up before sending
// finish, so the intro and a couple of running loops are always seen.
func MinDisplay() time.Duration {
	return FrameDuration * time.Duration(IntroFrames+MinRunningLoops*FramesPerCycle)
}

// OutroBudget bounds how long the backend waits for the completion signal
// after sending finish.
func OutroBudget() time.Duration {
	return FrameDuration*time.Duration(OutroFrames+2) + 100*time.Millisecond
}
