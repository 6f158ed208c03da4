package actorloop

import "sync/atomic"

// stateful holds zero or one installed reactor and drives a batch of events
// through it, tolerating the reactor replacing or clearing itself mid-batch
// from inside React.
//
// Grounded on the upstream Stateful::trigger/process/reaction algorithm:
// capture the current reactor identity, deliver sequentially until either
// events are exhausted, the identity changes (hot-swap or reset-to-nil), or
// React errors; on error, discard the remainder destined for that identity
// and propagate. The upstream's unimplemented post_factum hook is
// deliberately not reintroduced here (see DESIGN.md).
type stateful struct {
	reactor atomic.Pointer[reactorHolder]
}

// reactorHolder wraps the installed Reactor (possibly nil) so it can be
// stored in a single atomic.Pointer. Identity across the loop below is
// compared on the Reactor interface value itself, not on the holder, so
// reinstalling the same instance (which allocates a new holder) is not
// treated as a change.
type reactorHolder struct {
	r Reactor
}

func (s *stateful) isRunning() bool {
	h := s.reactor.Load()
	return h != nil && h.r != nil
}

func (s *stateful) set(r Reactor) {
	s.reactor.Store(&reactorHolder{r: r})
}

func (s *stateful) current() Reactor {
	h := s.reactor.Load()
	if h == nil {
		return nil
	}
	return h.r
}

// trigger delivers events left-to-right through the currently installed
// reactor(s), returning the first error raised by React, if any. It never
// replays an already-delivered event when the reactor changes mid-batch.
func (s *stateful) trigger(events []timedEvent) error {
	i := 0
	for i < len(events) {
		cur := s.current()
		if cur == nil {
			return nil
		}
		var err error
		i, err = s.reaction(cur, events, i)
		if err != nil {
			return err
		}
	}
	return nil
}

// reaction delivers events[from:] to cur until either events are exhausted,
// the installed reactor is no longer cur (a reset happened inside React,
// compared by Reactor identity so a reset back to the exact same instance
// is not mistaken for a change), or React returns an error. It returns the
// index of the next undelivered event and any error React raised.
func (s *stateful) reaction(cur Reactor, events []timedEvent, from int) (next int, err error) {
	i := from
	for i < len(events) && s.current() == cur {
		te := events[i]
		i++
		if rerr := safeReact(cur, te.event, te.deadline); rerr != nil {
			return i, &ReactorError{EventType: te.event.Type(), Cause: rerr}
		}
	}
	return i, nil
}

// safeReact invokes React with a panic recovered into a *PanicError, so a
// misbehaving reactor can never take down a loop shared by other actors.
func safeReact(r Reactor, event Event, ts uint64) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &PanicError{Value: rec}
		}
	}()
	return r.React(event, ts)
}
