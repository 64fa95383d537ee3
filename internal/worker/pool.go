// Package worker runs best-effort background jobs (audit writes) off
// the request path. The transfer commit itself never goes through here.
package worker

import (
	"sync"

	"github.com/minbank/ledger-service/internal/metrics"
)

type task func()

type Pool struct {
	mu     sync.Mutex
	wg     sync.WaitGroup
	jobs   chan task
	closed bool
}

func NewPool(n int) *Pool {
	p := &Pool{jobs: make(chan task, 1024)}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				job()
				metrics.WorkerQueueDepth.Dec()
			}
		}()
	}
	return p
}

// Submit enqueues a job. After Stop it drops the job instead of
// panicking; the work here is best-effort by contract.
func (p *Pool) Submit(f task) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	metrics.WorkerQueueDepth.Inc()
	p.jobs <- f
}

// Stop drains the queue and waits for in-flight jobs. Idempotent.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}
