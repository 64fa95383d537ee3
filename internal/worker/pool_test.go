package worker

import (
	"sync/atomic"
	"testing"
)

func TestPoolRunsSubmittedJobs(t *testing.T) {
	p := NewPool(2)
	var ran atomic.Int64
	for i := 0; i < 10; i++ {
		p.Submit(func() { ran.Add(1) })
	}
	p.Stop()
	if got := ran.Load(); got != 10 {
		t.Fatalf("ran=%d want 10", got)
	}
}

func TestSubmitAfterStopIsDropped(t *testing.T) {
	p := NewPool(1)
	p.Stop()
	// must not panic, the job is silently dropped
	p.Submit(func() { t.Error("job ran after Stop") })
	p.Stop() // idempotent
}
