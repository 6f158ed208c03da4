package actorloop

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Actor is a single-threaded consumer of events bound to exactly one
// Context's loop. Send is safe from any goroutine; Reset, Spawn, and
// ReactiveTime must only be called from inside a React call delivered on
// this actor's own loop (i.e. on the actor's owning Context's worker
// goroutine).
//
// Grounded on the upstream ActorUV class: one Queue, one Stateful, a
// birth timestamp establishing the actor-local monotonic clock, and a
// reactive-time accumulator. Where ActorUV attaches its own uv_async_t
// and uv_timer_t handles to the shared uv_loop_t on the start transition,
// this implementation registers into its Context's shared wake handle and
// timer heap instead (see DESIGN.md) — functionally the same multiplexing
// libuv performs internally, made explicit because Go has no equivalent
// single-call multi-handle loop primitive.
type Actor struct {
	id    uuid.UUID
	ctx   *Context
	queue queue
	state stateful

	lifecycle *fastState

	birth time.Time

	reactiveNanos atomic.Int64
}

// ID returns the actor's identifier, stable for its whole lifetime.
func (a *Actor) ID() uuid.UUID { return a.id }

func newActor(ctx *Context) *Actor {
	a := &Actor{
		id:        uuid.New(),
		ctx:       ctx,
		lifecycle: newFastState(uint32(actorUninstalled)),
		birth:     time.Now(),
	}
	ctx.loop.registerActor()
	return a
}

// monotonicMsSinceBirth is the actor-local clock the public API's delay
// semantics are expressed in: milliseconds since this actor was
// constructed, monotonic and never decreasing.
func (a *Actor) monotonicMsSinceBirth() uint64 {
	return uint64(time.Since(a.birth) / time.Millisecond)
}

// Send enqueues event for delivery after delay (zero meaning immediate
// "ready" delivery). Safe to call from any goroutine at any time,
// including after the actor has been closed, in which case the event is
// silently dropped.
func (a *Actor) Send(event Event, delay time.Duration) {
	t := a.monotonicMsSinceBirth()
	if delay > 0 {
		t += uint64(delay / time.Millisecond)
	}

	var accepted, needsWake bool
	if delay <= 0 {
		accepted = a.queue.addReady(event, t)
		needsWake = accepted
	} else {
		accepted = a.queue.addWaiting(event, t)
		needsWake = accepted
	}
	if !accepted {
		return
	}
	if !a.ctx.loop.markDirty(a) && needsWake {
		a.ctx.metricsSink().incWakeCoalesced(a.ctx.id.String())
	}
}

// IsRunning reports whether a reactor is currently installed.
func (a *Actor) IsRunning() bool { return a.state.isRunning() }

// Reset installs newReactor (nil to clear), driving the Uninstalled ->
// Running -> Stopping -> Closed lifecycle described in SPEC_FULL.md §4.4.
// Must only be called from this actor's own loop thread, typically from
// inside a React call.
func (a *Actor) Reset(newReactor Reactor) {
	if !a.ctx.loop.isLoopThread() {
		a.ctx.opts.logger.Logf(LevelWarn, "actor %s: Reset called off the loop thread", a.id)
	}
	wasRunning := a.state.isRunning()
	a.state.set(newReactor)
	isRunning := a.state.isRunning()

	switch {
	case !wasRunning && isRunning:
		a.lifecycle.store(uint32(actorRunning))
		a.queue.setOpen(true)
	case wasRunning && !isRunning:
		a.queue.setOpen(false)
		a.lifecycle.store(uint32(actorStopping))
		a.lifecycle.store(uint32(actorClosed))
		a.ctx.loop.actorClosed(a)
	}
	// Hot-swap (wasRunning && isRunning) changes only the installed
	// reactor; the queue stays open and no lifecycle transition occurs.
}

// Spawn constructs a new Actor bound to the same Context as a. Must only
// be called from this actor's own loop thread.
func (a *Actor) Spawn() *Actor {
	if !a.ctx.loop.isLoopThread() {
		a.ctx.opts.logger.Logf(LevelWarn, "actor %s: Spawn called off the loop thread", a.id)
	}
	return newActor(a.ctx)
}

// ReactiveTime returns the cumulative time spent inside Stateful.Trigger
// for this actor. Implemented with an atomic counter so it is in practice
// safe to call from any goroutine, though the contract only promises
// loop-thread callers a value consistent with the most recently completed
// scheduler tick.
func (a *Actor) ReactiveTime() time.Duration {
	return time.Duration(a.reactiveNanos.Load())
}

func (a *Actor) addReactiveTime(d time.Duration) {
	a.reactiveNanos.Add(int64(d))
}

// runScheduler implements the scheduler algorithm of SPEC_FULL.md §4.4: on
// wake or timer fire, drain due waiting events into ready, reprogram the
// timer, drain ready into a batch, and trigger the installed reactor(s)
// with it, accounting the elapsed time and recording any error.
func (a *Actor) runScheduler() {
	now := a.monotonicMsSinceBirth()
	next := a.queue.update(now)
	if next > now {
		a.ctx.loop.armTimer(a, a.birth.Add(time.Duration(next)*time.Millisecond))
	} else {
		a.ctx.loop.disarmTimer(a)
	}

	a.ctx.metricsSink().setQueueDepth(a.ctx.id.String(), a.queue.len())
	batch := a.queue.getEvents()

	start := time.Now()
	err := a.state.trigger(batch)
	elapsed := time.Since(start)
	a.addReactiveTime(elapsed)
	a.ctx.metricsSink().observeReactiveTime(a.ctx.id.String(), elapsed)

	if err != nil {
		a.ctx.opts.logger.Logf(LevelWarn, "actor %s: %v", a.id, err)
		a.ctx.metricsSink().incReactorErrors(a.ctx.id.String())
	}
}

