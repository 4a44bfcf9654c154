package session

import "time"

// Option configures a runtime at Join time.
type Option func(*options)

type options struct {
	updateListener func()
	phaseListener  func(prev, next string)

	timerPhase string
	timerDelay time.Duration
	timerFn    func()
}

// WithUpdateListener registers fn to run after every observed state or
// chat change. It runs outside the runtime's lock, so it may call back
// into the runtime.
func WithUpdateListener(fn func()) Option {
	return func(o *options) {
		o.updateListener = fn
	}
}

// WithPhaseListener registers fn to run whenever the observed phase
// changes, with the previous and current phase names.
func WithPhaseListener(fn func(prev, next string)) Option {
	return func(o *options) {
		o.phaseListener = fn
	}
}

// WithPhaseTimer arms a one-shot timer each time the session enters the
// named phase and disarms it when the phase is left or the runtime closes.
// The runtime owns the timer, so a fire after close never lands.
func WithPhaseTimer(phase string, delay time.Duration, fn func()) Option {
	return func(o *options) {
		o.timerPhase = phase
		o.timerDelay = delay
		o.timerFn = fn
	}
}
