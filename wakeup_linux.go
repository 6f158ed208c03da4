//go:build linux

package actorloop

import (
	"encoding/binary"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// eventfdWake is the Linux wake handle. An eventfd's counter-add semantics
// are exactly the coalescing primitive the design notes require: the
// kernel folds concurrent writes into a single non-zero counter, and one
// read drains every pending add at once, so redundant signals before the
// loop observes the first one are free.
type eventfdWake struct {
	fd        int
	ch        chan struct{}
	pending   atomic.Bool
	closeOnce sync.Once
}

func newWakeHandle() (wakeHandle, error) {
	fd, err := unix.Eventfd(0, unix.EFD_CLOEXEC)
	if err != nil {
		return nil, err
	}
	w := &eventfdWake{fd: fd, ch: make(chan struct{}, 1)}
	go w.pump()
	return w, nil
}

// pump blocks on reading the eventfd on a dedicated goroutine and forwards
// each drain to the buffered wake channel the loop selects on. A blocking
// read on a parked goroutine costs nothing while idle.
func (w *eventfdWake) pump() {
	buf := make([]byte, 8)
	for {
		if _, err := unix.Read(w.fd, buf); err != nil {
			return
		}
		select {
		case w.ch <- struct{}{}:
		default:
		}
	}
}

func (w *eventfdWake) signal() bool {
	if !w.pending.CompareAndSwap(false, true) {
		return false
	}
	buf := make([]byte, 8)
	binary.NativeEndian.PutUint64(buf, 1)
	_, err := unix.Write(w.fd, buf)
	return err == nil
}

func (w *eventfdWake) c() <-chan struct{} { return w.ch }

func (w *eventfdWake) drained() { w.pending.Store(false) }

func (w *eventfdWake) close() {
	w.closeOnce.Do(func() {
		_ = unix.Close(w.fd)
	})
}
