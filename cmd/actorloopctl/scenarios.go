package main

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/nexusforge/actorloop"
)

// recordedEvent is what every scenario reactor below appends to its
// received log: the delivered event's type tag and the timestamp React
// receives as its second argument, which is the event's actor-local
// millisecond deadline (send time plus delay), not the moment of delivery.
type recordedEvent struct {
	typeID uint32
	ts     uint64
}

// funcReactor adapts a plain React closure to the actorloop.Reactor
// interface, since none of the seed scenarios need a Dump beyond a
// one-line summary of what they've seen so far.
type funcReactor struct {
	name    string
	react   func(event actorloop.Event, ts uint64) error
	history func() []recordedEvent
}

func (r *funcReactor) React(event actorloop.Event, ts uint64) error {
	return r.react(event, ts)
}

func (r *funcReactor) Dump(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s: %d events received\n", r.name, len(r.history()))
	return err
}

func runBasicDelivery(numContexts int, sink scenarioSink) error {
	ctx, err := actorloop.NewContext(actorloop.WithMetrics(sink.metrics))
	if err != nil {
		return err
	}
	a := ctx.Spawn()

	var mu sync.Mutex
	var received []recordedEvent
	a.Reset(&funcReactor{
		name: "basic-delivery",
		react: func(event actorloop.Event, ts uint64) error {
			mu.Lock()
			received = append(received, recordedEvent{typeID: event.Type(), ts: ts})
			done := len(received) == 3
			mu.Unlock()
			if done {
				a.Reset(nil)
			}
			return nil
		},
		history: func() []recordedEvent { mu.Lock(); defer mu.Unlock(); return received },
	})

	runCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ctx.Exec(runCtx)

	a.Send(actorloop.TypedEvent{TypeID: 1}, 0)
	a.Send(actorloop.TypedEvent{TypeID: 2}, 0)
	a.Send(actorloop.TypedEvent{TypeID: 3}, 0)

	if err := ctx.Wait(); err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	want := []uint32{1, 2, 3}
	for i, w := range want {
		if i >= len(received) || received[i].typeID != w {
			return fmt.Errorf("expected order %v, got %+v", want, received)
		}
	}
	fmt.Printf("received in order: %v\n", want)
	return nil
}

func runTimerOrdering(numContexts int, sink scenarioSink) error {
	ctx, err := actorloop.NewContext(actorloop.WithMetrics(sink.metrics))
	if err != nil {
		return err
	}
	a := ctx.Spawn()

	var mu sync.Mutex
	var received []recordedEvent
	count := 0
	a.Reset(&funcReactor{
		name: "timer-ordering",
		react: func(event actorloop.Event, ts uint64) error {
			mu.Lock()
			received = append(received, recordedEvent{typeID: event.Type(), ts: ts})
			count++
			done := count == 3
			mu.Unlock()
			if done {
				a.Reset(nil)
			}
			return nil
		},
		history: func() []recordedEvent { mu.Lock(); defer mu.Unlock(); return received },
	})

	runCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ctx.Exec(runCtx)

	const (
		eventA uint32 = iota + 1
		eventB
		eventC
	)
	a.Send(actorloop.TypedEvent{TypeID: eventA}, 50*time.Millisecond)
	a.Send(actorloop.TypedEvent{TypeID: eventB}, 10*time.Millisecond)
	a.Send(actorloop.TypedEvent{TypeID: eventC}, 0)

	if err := ctx.Wait(); err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	want := []uint32{eventC, eventB, eventA}
	for i, w := range want {
		if i >= len(received) || received[i].typeID != w {
			return fmt.Errorf("expected delivery order %v, got %+v", want, received)
		}
	}
	if received[1].ts < 10 || received[2].ts < 50 {
		return fmt.Errorf("delays not honored: %+v", received)
	}
	fmt.Printf("delivery order C,B,A confirmed, timestamps=%v\n", received)
	return nil
}

func runHotSwap(numContexts int, sink scenarioSink) error {
	ctx, err := actorloop.NewContext(actorloop.WithMetrics(sink.metrics))
	if err != nil {
		return err
	}
	a := ctx.Spawn()

	var mu sync.Mutex
	var seenByR1, seenByR2 []string

	r2 := &funcReactor{name: "hot-swap-r2"}
	r2.react = func(event actorloop.Event, ts uint64) error {
		name := event.(actorloop.TypedEvent).Payload.(string)
		mu.Lock()
		seenByR2 = append(seenByR2, name)
		mu.Unlock()
		if name == "b" {
			a.Reset(nil)
		}
		return nil
	}
	r2.history = func() []recordedEvent { return nil }

	r1 := &funcReactor{name: "hot-swap-r1"}
	r1.react = func(event actorloop.Event, ts uint64) error {
		name := event.(actorloop.TypedEvent).Payload.(string)
		mu.Lock()
		seenByR1 = append(seenByR1, name)
		mu.Unlock()
		if name == "swap" {
			a.Reset(r2)
		}
		return nil
	}
	r1.history = func() []recordedEvent { return nil }
	a.Reset(r1)

	runCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ctx.Exec(runCtx)

	a.Send(actorloop.TypedEvent{TypeID: 1, Payload: "a"}, 0)
	a.Send(actorloop.TypedEvent{TypeID: 2, Payload: "swap"}, 0)
	a.Send(actorloop.TypedEvent{TypeID: 3, Payload: "b"}, 0)

	if err := ctx.Wait(); err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	for _, name := range seenByR2 {
		if name == "a" || name == "swap" {
			return fmt.Errorf("R2 must not see pre-swap events, saw %q", name)
		}
	}
	fmt.Printf("R1 saw %v, R2 saw %v\n", seenByR1, seenByR2)
	return nil
}

func runGracefulStop(numContexts int, sink scenarioSink) error {
	ctx, err := actorloop.NewContext(actorloop.WithMetrics(sink.metrics))
	if err != nil {
		return err
	}
	a := ctx.Spawn()

	var mu sync.Mutex
	var received []string
	reactor := &funcReactor{name: "graceful-stop"}
	reactor.react = func(event actorloop.Event, ts uint64) error {
		name := event.(actorloop.TypedEvent).Payload.(string)
		mu.Lock()
		received = append(received, name)
		mu.Unlock()
		if name == "exit" {
			a.Reset(nil)
		}
		return nil
	}
	reactor.history = func() []recordedEvent { return nil }
	a.Reset(reactor)

	runCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ctx.Exec(runCtx)

	a.Send(actorloop.TypedEvent{TypeID: 1, Payload: "x"}, 0)
	a.Send(actorloop.TypedEvent{TypeID: 2, Payload: "exit"}, 0)
	a.Send(actorloop.TypedEvent{TypeID: 3, Payload: "y"}, 0)

	if err := ctx.Wait(); err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	for _, name := range received {
		if name == "y" {
			return fmt.Errorf("expected \"y\" to be discarded after exit, received %v", received)
		}
	}
	fmt.Printf("received %v, worker joined cleanly\n", received)
	return nil
}

func runCrossThreadProducers(numContexts int, sink scenarioSink) error {
	ctx, err := actorloop.NewContext(actorloop.WithMetrics(sink.metrics))
	if err != nil {
		return err
	}
	a := ctx.Spawn()

	const producers = 4
	const perProducer = 1000

	var mu sync.Mutex
	lastSeqByProducer := make(map[int]int)
	total := 0
	var orderErr error

	reactor := &funcReactor{name: "cross-thread-producers"}
	reactor.react = func(event actorloop.Event, ts uint64) error {
		te := event.(actorloop.TypedEvent)
		payload := te.Payload.(producerSeq)
		mu.Lock()
		defer mu.Unlock()
		total++
		if last, ok := lastSeqByProducer[payload.producer]; ok && payload.seq <= last {
			if orderErr == nil {
				orderErr = fmt.Errorf("producer %d delivered out of order: %d after %d", payload.producer, payload.seq, last)
			}
		}
		lastSeqByProducer[payload.producer] = payload.seq
		if total == producers*perProducer {
			a.Reset(nil)
		}
		return nil
	}
	reactor.history = func() []recordedEvent { return nil }
	a.Reset(reactor)

	runCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ctx.Exec(runCtx)

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				a.Send(actorloop.TypedEvent{TypeID: uint32(p), Payload: producerSeq{producer: p, seq: i}}, 0)
			}
		}(p)
	}
	wg.Wait()

	if err := ctx.Wait(); err != nil {
		return err
	}
	if orderErr != nil {
		return orderErr
	}
	mu.Lock()
	defer mu.Unlock()
	if total != producers*perProducer {
		return fmt.Errorf("expected %d deliveries, got %d", producers*perProducer, total)
	}
	fmt.Printf("delivered %d events from %d producers, FIFO preserved per producer\n", total, producers)
	return nil
}

type producerSeq struct {
	producer int
	seq      int
}

// runMultiActorFanout wires 100 actors into a ring: for each actor i the
// harness sends 10 pings to its neighbor, actor i+1 mod 100. Total deliveries across the ring is therefore 100*10, and
// since every actor is also somebody's neighbor, every actor ends up
// processing at least one batch and so accrues non-zero ReactiveTime.
// Each actor resets itself to nil once it has received its 10 pings, so
// every context terminates once its share of the ring has drained.
func runMultiActorFanout(numContexts int, sink scenarioSink) error {
	const numActors = 100
	const pingsPerActor = 10
	const pingEvent uint32 = 1

	if numContexts <= 0 {
		numContexts = 8
	}

	contexts := make([]*actorloop.Context, numContexts)
	for i := range contexts {
		c, err := actorloop.NewContext(actorloop.WithMetrics(sink.metrics))
		if err != nil {
			return err
		}
		contexts[i] = c
	}

	actors := make([]*actorloop.Actor, numActors)
	for i := range actors {
		actors[i] = contexts[i%numContexts].Spawn()
	}

	var mu sync.Mutex
	deliveries := 0
	received := make([]int, numActors)

	for i := range actors {
		i := i
		actors[i].Reset(&funcReactor{
			name: fmt.Sprintf("ring-actor-%d", i),
			react: func(event actorloop.Event, ts uint64) error {
				mu.Lock()
				deliveries++
				received[i]++
				done := received[i] == pingsPerActor
				mu.Unlock()
				if done {
					actors[i].Reset(nil)
				}
				return nil
			},
			history: func() []recordedEvent { return nil },
		})
	}

	runCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, c := range contexts {
		c.Exec(runCtx)
	}

	for i := range actors {
		next := actors[(i+1)%numActors]
		for n := 0; n < pingsPerActor; n++ {
			next.Send(actorloop.TypedEvent{TypeID: pingEvent}, 0)
		}
	}

	for _, c := range contexts {
		if err := c.Wait(); err != nil {
			return err
		}
	}

	mu.Lock()
	total := deliveries
	mu.Unlock()
	if total != numActors*pingsPerActor {
		return fmt.Errorf("expected %d deliveries, got %d", numActors*pingsPerActor, total)
	}
	for _, a := range actors {
		if a.ReactiveTime() <= 0 {
			return fmt.Errorf("actor %s has zero reactive time", a.ID())
		}
	}
	fmt.Printf("delivered %d pings across %d actors on %d contexts, every actor recorded reactive time\n", total, numActors, numContexts)
	return nil
}
