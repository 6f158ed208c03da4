package actorloop

// wakeHandle is the only primitive usable from producer threads to reach a
// loop. Its signal is idempotent and coalescing: many calls to signal
// before the loop drains yield at most one extra wakeup, satisfying the
// invariant that a producer making a queue non-empty always causes at
// least one subsequent loop turn.
type wakeHandle interface {
	// signal requests a wakeup, returning true iff this call was the one
	// that transitioned the handle from idle to pending (i.e. the loop
	// wasn't already going to wake up because of an earlier, undrained
	// signal). The return value feeds the wake-coalescing metric.
	signal() bool
	// c is the channel the owning loop selects on to observe a wakeup.
	c() <-chan struct{}
	// drained must be called by the loop immediately after consuming a
	// value from c(), rearming the handle so a subsequent signal wakes it
	// again.
	drained()
	// close releases the handle's resources. Idempotent.
	close()
}
