// Package workerpool provides a small generic worker pool used to fan work
// out across goroutines and collect the results.
package workerpool

import (
	"runtime"
	"sync"
)

// DefaultWorkers returns the worker count used when none is configured.
func DefaultWorkers() int {
	return runtime.GOMAXPROCS(0)
}

// Pool provides a reusable worker pool pattern for parallel processing.
// It manages job distribution across multiple workers and collects results.
type Pool[Job any, Result any] struct {
	numWorkers int
	jobs       chan Job
	results    chan Result
	wg         sync.WaitGroup
}

// New creates a new worker pool with the specified number of workers.
// If numWorkers is 0 or negative, it defaults to DefaultWorkers.
// If numJobs is less than numWorkers, the pool is sized to match numJobs.
func New[Job any, Result any](numWorkers, numJobs int) *Pool[Job, Result] {
	if numWorkers <= 0 {
		numWorkers = DefaultWorkers()
	}
	if numJobs > 0 {
		numWorkers = min(numWorkers, numJobs)
	}

	return &Pool[Job, Result]{
		numWorkers: numWorkers,
		jobs:       make(chan Job, numJobs),
		results:    make(chan Result, numJobs),
	}
}

// Workers returns the number of workers the pool runs.
func (p *Pool[Job, Result]) Workers() int {
	return p.numWorkers
}

// Start begins the worker pool with the provided worker function.
// The workerFn is called for each job and should return a result.
func (p *Pool[Job, Result]) Start(workerFn func(Job) Result) {
	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				p.results <- workerFn(job)
			}
		}()
	}
}

// Submit adds a job to the worker pool's job queue.
func (p *Pool[Job, Result]) Submit(job Job) {
	p.jobs <- job
}

// Close closes the job channel and waits for all workers to complete.
// After calling Close, the results channel will be closed automatically.
func (p *Pool[Job, Result]) Close() {
	close(p.jobs)
	go func() {
		p.wg.Wait()
		close(p.results)
	}()
}

// Results returns the results channel for collecting worker outputs.
func (p *Pool[Job, Result]) Results() <-chan Result {
	return p.results
}

type indexed[T any] struct {
	index int
	value T
}

// Map applies fn to every item using up to workers goroutines and returns
// the results in input order.
func Map[T any, R any](items []T, workers int, fn func(int, T) R) []R {
	out := make([]R, len(items))
	if len(items) == 0 {
		return out
	}

	pool := New[indexed[T], indexed[R]](workers, len(items))
	pool.Start(func(job indexed[T]) indexed[R] {
		return indexed[R]{index: job.index, value: fn(job.index, job.value)}
	})
	for i, item := range items {
		pool.Submit(indexed[T]{index: i, value: item})
	}
	pool.Close()

	for r := range pool.Results() {
		out[r.index] = r.value
	}
	return out
}
