package actorloop

// Event is an immutable, shared-ownership payload tagged with an opaque
// 32-bit type id chosen by the producer. The runtime never inspects
// anything but Type; dispatch on the tag is entirely the concern of the
// Reactor that receives the event.
type Event interface {
	// Type returns the producer-chosen tag used for dispatch by reactors.
	// The runtime treats it as an opaque cookie.
	Type() uint32
}

// timedEvent pairs an Event with an absolute millisecond deadline, measured
// from the owning actor's birth on its loop. Deadlines never decrease.
type timedEvent struct {
	event    Event
	deadline uint64
}

// TypedEvent is a minimal, ready-made Event: a type tag plus an opaque
// payload. Application code is free to define its own Event
// implementations (the runtime only ever calls Type), but most reactors
// that don't need a bespoke struct per event kind can use this directly.
type TypedEvent struct {
	TypeID  uint32
	Payload any
}

func (e TypedEvent) Type() uint32 { return e.TypeID }

