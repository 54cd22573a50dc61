// Package scheduler provides a single ordered queue of timed tasks driven by
// one loop, with cancellation by opaque handle. It replaces scattered runtime
// timers so that ordering and cancellation are observable and testable with
// an injected clock.
package scheduler

import (
	"container/heap"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Task is a unit of deferred work. Tasks run on their own goroutine so a
// slow task never delays the rest of the queue.
type Task func()

// Handle identifies a scheduled entry for cancellation.
type Handle string

type entry struct {
	handle   Handle
	fireAt   time.Time
	period   time.Duration // 0 for one-shot entries
	task     Task
	canceled bool
	seq      uint64 // FIFO tie-break for equal fire times
	index    int    // heap index
}

// Scheduler owns the queue and its driver loop. The zero value is not
// usable; construct with New.
type Scheduler struct {
	clock Clock

	mu      sync.Mutex
	queue   entryHeap
	entries map[Handle]*entry
	nextSeq uint64
	stopped bool

	wake chan struct{}
	done chan struct{}
}

// New creates a scheduler and starts its driver loop. A nil clock means the
// wall clock.
func New(clock Clock) *Scheduler {
	if clock == nil {
		clock = RealClock()
	}
	s := &Scheduler{
		clock:   clock,
		entries: make(map[Handle]*entry),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go s.run()
	return s
}

// ScheduleOnce enqueues a one-shot task firing after d.
func (s *Scheduler) ScheduleOnce(d time.Duration, task Task) Handle {
	return s.schedule(d, 0, task)
}

// ScheduleEvery enqueues a recurring task firing every period, first fire
// after one period.
func (s *Scheduler) ScheduleEvery(period time.Duration, task Task) Handle {
	return s.schedule(period, period, task)
}

func (s *Scheduler) schedule(d, period time.Duration, task Task) Handle {
	h := Handle(uuid.NewString())
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return h
	}
	e := &entry{
		handle: h,
		fireAt: s.clock.Now().Add(d),
		period: period,
		task:   task,
		seq:    s.nextSeq,
	}
	s.nextSeq++
	heap.Push(&s.queue, e)
	s.entries[h] = e
	s.mu.Unlock()
	s.poke()
	return h
}

// Cancel removes a pending entry. Returns false when the handle is unknown,
// already fired (one-shot) or already cancelled. Cancelled entries never
// fire again, even if their fire time has passed.
func (s *Scheduler) Cancel(h Handle) bool {
	s.mu.Lock()
	e, ok := s.entries[h]
	if ok {
		e.canceled = true
		delete(s.entries, h)
	}
	s.mu.Unlock()
	if ok {
		s.poke()
	}
	return ok
}

// Pending reports the number of live entries in the queue.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Stop terminates the driver loop. Pending entries never fire. Tasks already
// dispatched run to completion.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()
	close(s.done)
}

func (s *Scheduler) poke() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// run is the driver loop: pop due entries, dispatch each on its own
// goroutine, then sleep until the next fire time or a queue change.
func (s *Scheduler) run() {
	for {
		s.mu.Lock()
		// Stop wins over a ready timer: once stopped, nothing still in the
		// queue may dispatch, even if its fire time has passed.
		if s.stopped {
			s.mu.Unlock()
			return
		}
		now := s.clock.Now()
		var due []*entry
		for s.queue.Len() > 0 {
			e := s.queue[0]
			if e.canceled {
				heap.Pop(&s.queue)
				continue
			}
			if e.fireAt.After(now) {
				break
			}
			heap.Pop(&s.queue)
			if e.period > 0 {
				// Re-enqueue before dispatch so a recurring task that
				// cancels itself sees a consistent queue.
				next := &entry{
					handle: e.handle,
					fireAt: e.fireAt.Add(e.period),
					period: e.period,
					task:   e.task,
					seq:    s.nextSeq,
				}
				s.nextSeq++
				heap.Push(&s.queue, next)
				s.entries[e.handle] = next
			} else {
				delete(s.entries, e.handle)
			}
			due = append(due, e)
		}
		var waitCh <-chan time.Time
		if s.queue.Len() > 0 {
			waitCh = s.clock.After(s.queue[0].fireAt.Sub(now))
		}
		s.mu.Unlock()

		for _, e := range due {
			go e.task()
		}

		select {
		case <-waitCh:
		case <-s.wake:
		case <-s.done:
			return
		}
	}
}

// entryHeap orders entries by fire time, then insertion order.
type entryHeap []*entry

func (h entryHeap) Len() int { return len(h) }
func (h entryHeap) Less(i, j int) bool {
	if h[i].fireAt.Equal(h[j].fireAt) {
		return h[i].seq < h[j].seq
	}
	return h[i].fireAt.Before(h[j].fireAt)
}
func (h entryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *entryHeap) Push(x interface{}) {
	e := x.(*entry)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *entryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}
