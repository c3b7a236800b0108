package utils

import (
	"context"
	"sync"

	goutils "go.viam.com/utils"
)

// StoppableWorkers runs goroutines that share one context. Stop cancels the context
// and waits for every goroutine to return.
type StoppableWorkers struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	running sync.WaitGroup
}

// NewStoppableWorkers starts each function in its own goroutine. The workers are
// also canceled when parent is.
func NewStoppableWorkers(parent context.Context, funcs ...func(context.Context)) *StoppableWorkers {
	ctx, cancel := context.WithCancel(parent)
	sw := &StoppableWorkers{ctx: ctx, cancel: cancel}
	sw.Add(funcs...)
	return sw
}

// Add starts more workers. A panicking worker is logged and counted as returned. Add does
// nothing once the workers are stopped.
func (sw *StoppableWorkers) Add(funcs ...func(context.Context)) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.ctx.Err() != nil {
		return
	}
	for _, f := range funcs {
		sw.running.Add(1)
		goutils.PanicCapturingGo(func() {
			defer sw.running.Done()
			f(sw.ctx)
		})
	}
}

// Stop cancels the workers and waits for them to return.
func (sw *StoppableWorkers) Stop() {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	sw.cancel()
	sw.running.Wait()
}

// Context returns the context handed to the workers.
func (sw *StoppableWorkers) Context() context.Context {
	return sw.ctx
}
