package embeddedsass

import (
	"container/heap"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// Task is a unit of work run on the loop's owning goroutine.
type Task func()

// Loop is a single-threaded cooperative task executor: every mutation of
// driver, dispatcher, and tracker state happens here, never concurrently.
// This is a narrowing of a general-purpose event loop design (one that
// also multiplexes arbitrary file descriptors via epoll/kqueue/IOCP) down
// to this driver's one always-known I/O source — the child's stdout is
// read by a dedicated blocking-read goroutine that hands decoded frames
// to the loop via SubmitInternal, rather than the loop itself polling for
// readiness.
type Loop struct {
	mu      sync.Mutex
	cond    *sync.Cond
	tasks   []Task
	timers  timerHeap
	running bool
	stopped bool

	// loopGoroutineID records the id of the goroutine running Run, so
	// SubmitInternal can tell whether it's already being called from the
	// loop (and so may run the task inline) or must enqueue. 0 means "not
	// running".
	loopGoroutineID atomic.Uint64
}

// getGoroutineID parses the calling goroutine's id out of runtime.Stack's
// header line ("goroutine 123 [running]:..."), the same technique the
// teacher's event loop uses for its thread-affinity fast path.
func getGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] >= '0' && buf[i] <= '9' {
			id = id*10 + uint64(buf[i]-'0')
		} else {
			break
		}
	}
	return id
}

// NewLoop constructs a Loop that has not yet started running.
func NewLoop() *Loop {
	l := &Loop{}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// Run drains tasks and fired timers until Stop is called. It is meant to
// be the body of the one goroutine that owns this Loop.
func (l *Loop) Run() {
	l.loopGoroutineID.Store(getGoroutineID())
	defer l.loopGoroutineID.Store(0)

	l.mu.Lock()
	l.running = true
	for {
		for len(l.timers) > 0 && !l.timers[0].fireAt.After(time.Now()) {
			t := heap.Pop(&l.timers).(*timerEntry)
			l.mu.Unlock()
			if !t.cancelled {
				t.fn()
			}
			l.mu.Lock()
		}

		if len(l.tasks) > 0 {
			task := l.tasks[0]
			l.tasks = l.tasks[1:]
			l.mu.Unlock()
			task()
			l.mu.Lock()
			continue
		}

		if l.stopped {
			l.mu.Unlock()
			return
		}

		if len(l.timers) > 0 {
			wait := time.Until(l.timers[0].fireAt)
			if wait > 0 {
				l.waitTimeout(wait)
			}
			continue
		}

		l.cond.Wait()
	}
}

// waitTimeout releases the lock, sleeps up to d (or until woken), and
// reacquires it; l.mu must be held on entry and is held on return.
func (l *Loop) waitTimeout(d time.Duration) {
	timer := time.AfterFunc(d, func() {
		l.mu.Lock()
		l.cond.Broadcast()
		l.mu.Unlock()
	})
	l.cond.Wait()
	timer.Stop()
}

// Stop signals Run to return once the current task (if any) finishes and
// no more are queued.
func (l *Loop) Stop() {
	l.mu.Lock()
	l.stopped = true
	l.cond.Broadcast()
	l.mu.Unlock()
}

// Submit enqueues task to run on the loop goroutine, safe to call from
// any goroutine.
func (l *Loop) Submit(task Task) {
	l.mu.Lock()
	l.tasks = append(l.tasks, task)
	l.cond.Broadcast()
	l.mu.Unlock()
}

// SubmitInternal behaves like Submit, except that when called from the
// loop's own goroutine it runs task immediately instead of enqueueing it.
// This is what the reader goroutine must NOT use (it is never on the loop
// goroutine) and what loop-internal code (tracker/dispatcher callbacks)
// should use to avoid an unnecessary round-trip through the queue.
func (l *Loop) SubmitInternal(task Task) {
	if id := l.loopGoroutineID.Load(); id != 0 && id == getGoroutineID() {
		task()
		return
	}
	l.Submit(task)
}

// AfterFunc arms a one-shot timer that runs fn on the loop goroutine after
// d elapses, returning a handle that can cancel it before it fires.
func (l *Loop) AfterFunc(d time.Duration, fn func()) *timerEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	t := &timerEntry{fireAt: time.Now().Add(d), fn: fn}
	heap.Push(&l.timers, t)
	l.cond.Broadcast()
	return t
}

// Cancel marks the timer so it will not fire, if it hasn't already.
func (t *timerEntry) Cancel() {
	t.cancelled = true
}

// timerEntry is one armed timer, ordered by fireAt in timerHeap.
type timerEntry struct {
	fireAt    time.Time
	fn        func()
	cancelled bool
	index     int
}

// timerHeap is a container/heap ordering timerEntry by fireAt, same shape
// as the owning Loop's timer heap.
type timerHeap []*timerEntry

func (h timerHeap) Len() int            { return len(h) }
func (h timerHeap) Less(i, j int) bool  { return h[i].fireAt.Before(h[j].fireAt) }
func (h timerHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
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
	*h = old[:n-1]
	return e
}
