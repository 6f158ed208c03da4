package actorloop

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Context owns one loop and, after Exec, the single OS thread that runs
// it. It is the factory for every Actor bound to that loop.
//
// Grounded on the upstream ContextUV class: construction creates a fresh
// loop, Spawn may be called before Exec (spawned actors stay dormant
// until reset), Exec starts the worker, Wait joins it.
type Context struct {
	id   uuid.UUID
	opts *contextOptions
	loop *loop

	mu       sync.Mutex
	execOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
	err      error
}

// NewContext constructs a Context with a fresh loop, ready to Spawn actors
// onto even before Exec is called.
func NewContext(opts ...ContextOption) (*Context, error) {
	l, err := newLoop()
	if err != nil {
		return nil, err
	}
	return &Context{
		id:     uuid.New(),
		opts:   resolveContextOptions(opts),
		loop:   l,
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}, nil
}

// ID returns the context's identifier, used as the label on every metric
// this context's actors record.
func (c *Context) ID() uuid.UUID { return c.id }

func (c *Context) metricsSink() *Metrics { return c.opts.metrics }

// Spawn constructs a new Actor bound to this Context's loop. May be called
// before Exec; the actor remains Uninstalled (dormant) until Reset.
func (c *Context) Spawn() *Actor {
	return newActor(c)
}

// Exec starts the worker goroutine that runs this Context's loop to
// completion. The loop runs until every actor spawned on it has reached
// the Closed state, or ctx is cancelled. Exec returns immediately; use
// Wait to join the worker.
func (c *Context) Exec(ctx context.Context) {
	c.execOnce.Do(func() {
		go func() {
			defer close(c.done)
			stop := c.stopCh
			go func() {
				select {
				case <-ctx.Done():
					select {
					case <-stop:
					default:
						close(stop)
					}
				case <-stop:
				}
			}()
			c.loop.run(stop, func(a *Actor) { a.runScheduler() })
		}()
	})
}

// Wait blocks until the worker goroutine started by Exec has joined,
// returning the first fatal loop error, if any. Calling Wait before Exec
// blocks forever; callers are expected to always pair Exec with Wait.
func (c *Context) Wait() error {
	<-c.done
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Stop requests the loop terminate even if actors remain open, for tests
// and harnesses that need a hard shutdown rather than the cooperative
// all-actors-closed termination. It does not wait for the worker to join;
// call Wait for that.
func (c *Context) Stop() {
	select {
	case <-c.stopCh:
	default:
		close(c.stopCh)
	}
}

func (c *Context) String() string {
	return fmt.Sprintf("Context{%s}", c.id)
}
