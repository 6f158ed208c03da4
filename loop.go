package actorloop

import (
	"container/heap"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// loopState values for the fastState embedded in loop.
const (
	loopAwake uint32 = iota
	loopRunning
	loopTerminating
	loopTerminated
)

// timerEntry is one actor's pending one-shot timer, ordered by absolute
// deadline in the loop's shared min-heap. Grounded on the upstream
// eventloop package's container/heap-based timer queue, generalized from
// "one heap per loop of arbitrary callbacks" to "one heap per loop of
// per-actor deadlines" since every actor owns at most one outstanding
// timer at a time.
type timerEntry struct {
	at    time.Time
	actor *Actor
	index int
}

type timerHeap []*timerEntry

func (h timerHeap) Len() int           { return len(h) }
func (h timerHeap) Less(i, j int) bool { return h[i].at.Before(h[j].at) }
func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *timerHeap) Push(x any) {
	e := x.(*timerEntry)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// loop is a single-threaded event-dispatch engine, pinned to one OS
// thread, that owns a shared wake handle and a shared timer heap
// multiplexed across every actor spawned on it. Each Actor's own
// scheduler (see actor.go) arms and disarms its slot in this heap; the
// loop's job is only to run the schedulers of actors that a wakeup or a
// timer made due (in no particular order among them) and otherwise stay
// parked.
type loop struct {
	state *fastState

	wake wakeHandle

	mu      sync.Mutex
	timers  timerHeap
	dirty   map[*Actor]struct{}
	entries map[*Actor]*timerEntry

	activeActors int
	everSpawned  bool
	termCheck    chan struct{}

	loopGID atomic.Int64
}

func newLoop() (*loop, error) {
	wh, err := newWakeHandle()
	if err != nil {
		return nil, &LoopError{Op: "init wake handle", Cause: err}
	}
	l := &loop{
		state:     newFastState(loopAwake),
		wake:      wh,
		dirty:     make(map[*Actor]struct{}),
		entries:   make(map[*Actor]*timerEntry),
		termCheck: make(chan struct{}, 1),
	}
	l.loopGID.Store(-1)
	return l, nil
}

// isLoopThread reports whether the calling goroutine is this loop's
// worker goroutine. Before Exec starts the worker there is no loop thread
// yet, so setup code (spawning actors and installing reactors from a CLI
// harness's main goroutine) is accepted unconditionally. Used only as a
// soft assertion backing the loop-thread-only contract on Reset and
// Spawn; it never gates behavior.
func (l *loop) isLoopThread() bool {
	gid := l.loopGID.Load()
	return gid == -1 || gid == getGoroutineID()
}

// markDirty records that an actor needs its scheduler re-run and wakes the
// loop. Safe from any thread. Returns whether this call was the one that
// transitioned the wake handle from idle to pending.
func (l *loop) markDirty(a *Actor) bool {
	l.mu.Lock()
	l.dirty[a] = struct{}{}
	l.mu.Unlock()
	return l.wake.signal()
}

// armTimer schedules (or reschedules) a's one-shot timer for `at`,
// replacing any prior arming for the same actor.
func (l *loop) armTimer(a *Actor, at time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.entries[a]; ok {
		e.at = at
		heap.Fix(&l.timers, e.index)
		return
	}
	e := &timerEntry{at: at, actor: a}
	heap.Push(&l.timers, e)
	l.entries[a] = e
}

// disarmTimer cancels a's pending timer, if any.
func (l *loop) disarmTimer(a *Actor) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[a]
	if !ok {
		return
	}
	heap.Remove(&l.timers, e.index)
	delete(l.entries, a)
}

func (l *loop) registerActor() {
	l.mu.Lock()
	l.activeActors++
	l.everSpawned = true
	l.mu.Unlock()
}

// actorClosed is called exactly once per actor, when it completes its
// Stopping->Closed transition, so the loop can notice it has no more work
// and terminate.
func (l *loop) actorClosed(a *Actor) {
	l.mu.Lock()
	l.activeActors--
	delete(l.dirty, a)
	l.mu.Unlock()
	l.disarmTimer(a)
	select {
	case l.termCheck <- struct{}{}:
	default:
	}
	l.wake.signal()
}

func (l *loop) shouldTerminate() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.everSpawned && l.activeActors == 0
}

// nextTimer returns the loop's current minimum deadline and whether one
// exists, without mutating the heap.
func (l *loop) nextTimer() (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.timers) == 0 {
		return time.Time{}, false
	}
	return l.timers[0].at, true
}

// popDueTimers moves every timer entry whose deadline has passed into the
// dirty set.
func (l *loop) popDueTimers(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for len(l.timers) > 0 && !l.timers[0].at.After(now) {
		e := heap.Pop(&l.timers).(*timerEntry)
		delete(l.entries, e.actor)
		l.dirty[e.actor] = struct{}{}
	}
}

// drainDirty moves the current dirty set out, leaving it empty, so the
// run loop can iterate it without holding the lock across actor calls.
func (l *loop) drainDirty() []*Actor {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.dirty) == 0 {
		return nil
	}
	out := make([]*Actor, 0, len(l.dirty))
	for a := range l.dirty {
		out = append(out, a)
	}
	l.dirty = make(map[*Actor]struct{})
	return out
}

// run is the worker goroutine body: it locks the OS thread (the loop is,
// by design, pinned to exactly one OS thread for its whole life) and
// alternates between waiting for a wakeup or the nearest timer, and
// running every actor that became runnable.
func (l *loop) run(stop <-chan struct{}, onActorDue func(a *Actor)) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer l.wake.close()

	l.loopGID.Store(getGoroutineID())
	l.state.store(loopRunning)
	for {
		if l.shouldTerminate() {
			l.state.store(loopTerminated)
			return
		}

		var timer *time.Timer
		var timerC <-chan time.Time
		if at, ok := l.nextTimer(); ok {
			d := time.Until(at)
			if d < 0 {
				d = 0
			}
			timer = time.NewTimer(d)
			timerC = timer.C
		}

		select {
		case <-stop:
			stopTimer(timer)
			l.state.store(loopTerminated)
			return
		case <-l.wake.c():
			l.wake.drained()
		case now := <-timerC:
			l.popDueTimers(now)
		case <-l.termCheck:
		}
		stopTimer(timer)

		for _, a := range l.drainDirty() {
			onActorDue(a)
		}
	}
}

func stopTimer(t *time.Timer) {
	if t == nil {
		return
	}
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}
