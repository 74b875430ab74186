// Package workerpool implements the fixed worker pool: submit
// nullary tasks, a fixed number of goroutines pull them off one
// shared FIFO queue and run them to completion.
package workerpool

import (
	"errors"
	"sync"

	"github.com/ehrlich-b/go-staticd/internal/interfaces"
)

// ErrStopped is returned by Submit once the pool has been stopped.
var ErrStopped = errors.New("workerpool: pool stopped")

// Task is a unit of work; the reactor submits one per parsed request,
// to resolve the file and build the response. Tasks never block on
// another task and run to completion with no cancellation.
type Task func()

// Pool is a fixed-size worker pool with a FIFO task queue that holds
// up to 4096 pending tasks; it is not unbounded. It provides no ordering guarantee across tasks from different
// submitters; the reactor relies on one-shot readiness (see
// internal/poller) to guarantee at most one task per connection is
// ever in flight, not on pool ordering.
type Pool struct {
	tasks  chan Task
	wg     sync.WaitGroup
	logger interfaces.Logger

	mu      sync.Mutex
	stopped bool
}

// New starts a pool of n workers. n is clamped to at least 1.
func New(n int, logger interfaces.Logger) *Pool {
	if n < 1 {
		n = 1
	}
	p := &Pool{
		tasks:  make(chan Task, 4096),
		logger: logger,
	}
	p.wg.Add(n)
	for i := 0; i < n; i++ {
		go p.worker(i)
	}
	return p
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for task := range p.tasks {
		task()
	}
	if p.logger != nil {
		p.logger.Debugf("worker %d: queue drained, exiting", id)
	}
}

// Submit enqueues task. It returns ErrStopped if Stop has already been
// called. Otherwise it sends task on the queue channel, which blocks
// the caller while 4096 tasks are already waiting.
func (p *Pool) Submit(task Task) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return ErrStopped
	}
	p.mu.Unlock()

	p.tasks <- task
	return nil
}

// Stop closes the task queue, waits for in-flight and queued tasks to
// finish, and joins every worker goroutine. Stop is idempotent.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.tasks)
	p.mu.Unlock()

	p.wg.Wait()
}
