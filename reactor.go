package actorloop

import "io"

// Reactor is the contract implemented by user code. A Reactor is installed
// into an Actor's Stateful container and owns the actor's application state
// exclusively while installed.
type Reactor interface {
	// React is invoked on the actor's loop thread, once per dequeued event,
	// in the order dequeued. React may call back into the owning actor's
	// Send (always thread-safe), Reset, or Spawn (loop-thread only).
	//
	// A returned error aborts delivery of the remaining events in the
	// current batch that were destined for this reactor identity; see
	// stateful.trigger for the exact semantics.
	React(event Event, timestampMs uint64) error

	// Dump writes a diagnostic serialization of the reactor's state. May be
	// a no-op.
	Dump(w io.Writer) error
}
