package actorloop

import "sync"

// queue is a per-actor mailbox: a ready FIFO and a waiting list sorted by
// non-decreasing deadline, guarded by a single mutex. The critical sections
// are always a slice append, a slice swap, or a bounded linear walk to find
// an insertion point — never a reactor call.
//
// Grounded on the upstream queue's add_ready/add_waiting/get_events/update
// algorithm, generalized with the open/closed gate the actor lifecycle
// needs: while closed, both sequences stay empty and every operation is a
// no-op.
type queue struct {
	mu      sync.Mutex
	open    bool
	ready   []timedEvent
	waiting []timedEvent
}

// setOpen clears both sequences and flips the gate whenever the requested
// value differs from the current one. This is the only legal way to clear
// the mailbox. A caller observing setOpen(false) return is guaranteed that
// any in-flight producer either observed closed (and no-opped) or was
// serialized strictly before the clear.
func (q *queue) setOpen(v bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.open == v {
		return
	}
	q.open = v
	q.ready = nil
	q.waiting = nil
}

// addReady appends an event to the ready FIFO if the queue is open. Returns
// true if the queue accepted the event.
func (q *queue) addReady(event Event, deadline uint64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.open {
		return false
	}
	q.ready = append(q.ready, timedEvent{event: event, deadline: deadline})
	return true
}

// addWaiting inserts an event into the waiting list at the first position
// whose deadline is strictly greater than the new event's deadline,
// preserving FIFO among equal deadlines. Returns true iff the inserted
// element became the new head (the minimum deadline) — the signal a caller
// uses to decide whether the consumer's timer needs reprogramming.
func (q *queue) addWaiting(event Event, deadline uint64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.open {
		return false
	}
	te := timedEvent{event: event, deadline: deadline}
	i := 0
	for i < len(q.waiting) && deadline >= q.waiting[i].deadline {
		i++
	}
	q.waiting = append(q.waiting, timedEvent{})
	copy(q.waiting[i+1:], q.waiting[i:])
	q.waiting[i] = te
	return i == 0
}

// getEvents atomically moves the entire ready sequence out, leaving ready
// empty, and returns it. A slice swap avoids any per-event allocation on
// the hot path.
func (q *queue) getEvents() []timedEvent {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.ready
	q.ready = nil
	return out
}

// update moves every waiting head whose deadline is <= now to the tail of
// ready, preserving relative order, and returns the deadline of the new
// waiting head, or 0 if waiting is empty.
func (q *queue) update(now uint64) uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	i := 0
	for i < len(q.waiting) && q.waiting[i].deadline <= now {
		i++
	}
	if i > 0 {
		q.ready = append(q.ready, q.waiting[:i]...)
		q.waiting = q.waiting[i:]
	}
	if len(q.waiting) == 0 {
		return 0
	}
	return q.waiting[0].deadline
}

// len reports the combined ready+waiting backlog, for diagnostics and
// metrics only; never gate scheduling decisions on it.
func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ready) + len(q.waiting)
}

// isOpen reports the current gate state. Used only for diagnostics; never
// gate production decisions on a stale read of this value.
func (q *queue) isOpen() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.open
}
