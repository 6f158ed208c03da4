// Package actorloop is a multi-threaded actor runtime: a small kernel that
// hosts independent state machines ("reactors") which communicate
// exclusively by asynchronously delivered, timestamped messages.
//
// # Architecture
//
// A [Context] owns a [loop] and, after Exec, the single OS thread that
// runs it. [Context.Spawn] constructs an [Actor] bound to that loop.
// Every Actor owns a per-actor mailbox (a two-tier queue of ready and
// time-delayed events), a stateful container holding the
// currently installed [Reactor], and an accumulated reactive-time counter.
//
// Reactors are plugged in with [Actor.Reset], which drives the lifecycle
// Uninstalled -> Running -> Stopping -> Closed. [Actor.Send] is the only
// operation safe to call from any goroutine; Reset, Spawn, and
// ReactiveTime are loop-thread-only.
//
// # Concurrency model
//
// Each loop runs on exactly one OS thread; each actor is pinned to
// exactly one loop for its whole life. Many loops typically run in
// parallel, one per hardware thread, with distinct actors on distinct
// loops running truly concurrently. Within one actor, React runs to
// completion (or error) for every event before the next is delivered —
// there are no suspension points inside the kernel.
//
// # Usage
//
//	ctx, err := actorloop.NewContext()
//	if err != nil {
//		log.Fatal(err)
//	}
//	a := ctx.Spawn()
//	a.Reset(myReactor{})
//	ctx.Exec(context.Background())
//	a.Send(myEvent{}, 0)
//	// ... later, from inside a React call: a.Reset(nil) to stop.
//	if err := ctx.Wait(); err != nil {
//		log.Fatal(err)
//	}
package actorloop
