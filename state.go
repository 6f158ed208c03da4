package actorloop

import "sync/atomic"

// actorState is the lifecycle of an Actor: Uninstalled -> Running ->
// Stopping -> Closed. Uninstalled -> Running happens on reset-to-reactor,
// Running -> Stopping -> Closed on reset-to-nil: Reset passes through
// Stopping and stores Closed within the same call, since the actor has no
// per-actor handles to close asynchronously.
type actorState uint32

const (
	actorUninstalled actorState = iota
	actorRunning
	actorStopping
	actorClosed
)

func (s actorState) String() string {
	switch s {
	case actorUninstalled:
		return "Uninstalled"
	case actorRunning:
		return "Running"
	case actorStopping:
		return "Stopping"
	case actorClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// fastState is a lock-free CAS state machine with cache-line padding to
// avoid false sharing between cores. Reused for both the actor lifecycle
// and the loop's own awake/running/terminating/terminated states.
type fastState struct { //nolint:structcheck
	_ [64]byte
	v atomic.Uint32
	_ [60]byte
}

func newFastState(initial uint32) *fastState {
	s := &fastState{}
	s.v.Store(initial)
	return s
}

func (s *fastState) load() uint32 {
	return s.v.Load()
}

func (s *fastState) store(v uint32) {
	s.v.Store(v)
}

// tryTransition attempts an atomic CAS from `from` to `to`, returning
// whether it succeeded.
func (s *fastState) tryTransition(from, to uint32) bool {
	return s.v.CompareAndSwap(from, to)
}
