package event

import (
	"sync"

	"golang.org/x/sync/errgroup"
)

// Executor runs listener deliveries. Without one the multicaster delivers
// synchronously on the publishing goroutine.
type Executor interface {
	Execute(task func())
}

// Drainer is an Executor that can wait for every accepted task to finish.
type Drainer interface {
	Wait()
}

// GoExecutor runs every delivery on its own goroutine.
type GoExecutor struct {
	wg sync.WaitGroup
}

func (e *GoExecutor) Execute(task func()) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		task()
	}()
}

func (e *GoExecutor) Wait() { e.wg.Wait() }

// PoolExecutor runs deliveries on at most n goroutines at a time. Execute
// blocks while the pool is full.
type PoolExecutor struct {
	g errgroup.Group
}

// NewPoolExecutor returns a pool of n workers; n < 1 means one.
func NewPoolExecutor(n int) *PoolExecutor {
	p := &PoolExecutor{}
	p.g.SetLimit(max(n, 1))
	return p
}

func (p *PoolExecutor) Execute(task func()) {
	p.g.Go(func() error {
		task()
		return nil
	})
}

// Wait blocks until every submitted task has run. Tasks always return nil,
// so the group has no error to report.
func (p *PoolExecutor) Wait() { _ = p.g.Wait() }
