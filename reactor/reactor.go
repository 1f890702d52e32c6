package reactor

import (
	"sync"
	"time"
)

// Reactor runs submitted work items one at a time, in submission order.
type Reactor struct {
	work chan func()
	done chan struct{}
	once sync.Once
}

// New starts a Reactor's single worker goroutine immediately.
func New() *Reactor {
	r := &Reactor{
		work: make(chan func(), 256),
		done: make(chan struct{}),
	}
	go r.loop()
	return r
}

func (r *Reactor) loop() {
	for {
		select {
		case fn := <-r.work:
			fn()
		case <-r.done:
			r.drain()
			return
		}
	}
}

func (r *Reactor) drain() {
	for {
		select {
		case fn := <-r.work:
			fn()
		default:
			return
		}
	}
}

// Submit enqueues fn to run on the reactor goroutine. Submit itself may
// be called from any goroutine; fn always runs serialized against every
// other submission, never concurrently with another. A Submit after
// Stop is a no-op.
func (r *Reactor) Submit(fn func()) {
	select {
	case r.work <- fn:
	case <-r.done:
	}
}

// Every arranges for fn to be Submitted every d until ctx is canceled or
// Stop is called. The ticking itself runs on its own goroutine — fn's
// body is what actually executes on the shared reactor goroutine, so
// concurrent Every registrations from different connections never race
// each other's callback logic even though each has its own timer.
func (r *Reactor) Every(stop <-chan struct{}, d time.Duration, fn func()) {
	go func() {
		t := time.NewTicker(d)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				r.Submit(fn)
			case <-stop:
				return
			case <-r.done:
				return
			}
		}
	}()
}

// Stop signals the loop to drain any buffered work and exit. Submit
// calls made after Stop are silently dropped. Idempotent.
func (r *Reactor) Stop() {
	r.once.Do(func() { close(r.done) })
}
