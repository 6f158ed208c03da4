package actorloop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueAddWaitingKeepsNonDecreasingDeadlines(t *testing.T) {
	var q queue
	q.setOpen(true)

	deadlines := []uint64{50, 10, 30, 10, 100, 0}
	for _, d := range deadlines {
		q.addWaiting(TypedEvent{TypeID: uint32(d)}, d)

		q.mu.Lock()
		for i := 1; i < len(q.waiting); i++ {
			assert.LessOrEqualf(t, q.waiting[i-1].deadline, q.waiting[i].deadline,
				"waiting list out of order after inserting %d: %+v", d, q.waiting)
		}
		q.mu.Unlock()
	}
}

func TestQueueAddWaitingReturnsTrueOnlyWhenNewHead(t *testing.T) {
	var q queue
	q.setOpen(true)

	assert.True(t, q.addWaiting(TypedEvent{TypeID: 1}, 50), "first insert is always the head")
	assert.False(t, q.addWaiting(TypedEvent{TypeID: 2}, 100), "100 after 50 is not the new head")
	assert.True(t, q.addWaiting(TypedEvent{TypeID: 3}, 10), "10 is strictly less than the current head")
	assert.False(t, q.addWaiting(TypedEvent{TypeID: 4}, 10), "equal deadline preserves FIFO, not a new head")
}

func TestQueueClosedIsNoOp(t *testing.T) {
	var q queue
	// never opened

	assert.False(t, q.addReady(TypedEvent{TypeID: 1}, 0))
	assert.False(t, q.addWaiting(TypedEvent{TypeID: 2}, 10))

	q.mu.Lock()
	assert.Empty(t, q.ready)
	assert.Empty(t, q.waiting)
	q.mu.Unlock()
}

func TestQueueSetOpenFalseTrueResetsContents(t *testing.T) {
	var q queue
	q.setOpen(true)
	q.addReady(TypedEvent{TypeID: 1}, 0)
	q.addWaiting(TypedEvent{TypeID: 2}, 10)

	q.setOpen(false)
	q.setOpen(true)

	assert.Equal(t, 0, q.len())
	assert.True(t, q.isOpen())
}

func TestQueueUpdateMovesDueWaitingToReady(t *testing.T) {
	var q queue
	q.setOpen(true)
	q.addWaiting(TypedEvent{TypeID: 1}, 10)
	q.addWaiting(TypedEvent{TypeID: 2}, 20)
	q.addWaiting(TypedEvent{TypeID: 3}, 30)

	next := q.update(20)
	assert.Equal(t, uint64(30), next, "remaining waiting head deadline")

	batch := q.getEvents()
	require.Len(t, batch, 2)
	assert.Equal(t, uint32(1), batch[0].event.Type())
	assert.Equal(t, uint32(2), batch[1].event.Type())
	for _, te := range batch {
		assert.LessOrEqual(t, te.deadline, uint64(20))
	}
}

func TestQueueUpdateReturnsZeroWhenWaitingEmpty(t *testing.T) {
	var q queue
	q.setOpen(true)
	q.addWaiting(TypedEvent{TypeID: 1}, 5)

	next := q.update(100)
	assert.Equal(t, uint64(0), next)
}

func TestQueueDelayZeroEquivalentToImmediateReady(t *testing.T) {
	ctx := newTestContext(t)
	a := ctx.Spawn()
	a.Reset(noopReactor{})

	a.Send(TypedEvent{TypeID: 1}, 0)

	batch := a.queue.getEvents()
	require.Len(t, batch, 1)
	assert.Equal(t, uint32(1), batch[0].event.Type())

	a.queue.mu.Lock()
	assert.Empty(t, a.queue.waiting, "delay==0 must never touch the waiting list")
	a.queue.mu.Unlock()
}

func TestQueueGetEventsDrainsReadyOnly(t *testing.T) {
	var q queue
	q.setOpen(true)
	q.addReady(TypedEvent{TypeID: 1}, 0)
	q.addReady(TypedEvent{TypeID: 2}, 0)
	q.addWaiting(TypedEvent{TypeID: 3}, 1000)

	batch := q.getEvents()
	require.Len(t, batch, 2)

	second := q.getEvents()
	assert.Empty(t, second, "ready is drained, not duplicated")
	assert.Equal(t, 1, q.len(), "waiting entry is untouched")
}
