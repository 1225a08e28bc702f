// Copyright 2025 The go-graytone Authors. SPDX-License-Identifier: Apache-2.0

// Package workerpool provides a persistent, reusable worker pool for
// bulk-synchronous parallel loops over pixel buffers. A Pool is created once
// and reused across many passes, so a three-pass image kernel pays for
// goroutine startup only once per process.
//
// Every parallel loop splits [0, n) into contiguous chunks, one per worker,
// and blocks until all chunks are done. Reductions keep one partial result
// per chunk and merge the partials in chunk order after the join, so no
// accumulator is shared between goroutines.
//
// Usage:
//
//	pool := workerpool.Shared()
//
//	sum := workerpool.Reduce(pool, len(pix), func(start, end int) float64 {
//	    var s float64
//	    for _, v := range pix[start:end] {
//	        s += float64(v)
//	    }
//	    return s
//	})
package workerpool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a persistent worker pool that can be reused across many parallel
// operations. Workers are spawned once at creation and reused.
type Pool struct {
	numWorkers int
	workC      chan workItem
	closeOnce  sync.Once
	closed     atomic.Bool
}

// workItem represents a single chunk of a parallel operation.
type workItem struct {
	fn      func()
	barrier *sync.WaitGroup
}

// New creates a new worker pool with the specified number of workers.
// Workers are spawned immediately and persist until Close is called.
// If numWorkers <= 0, uses GOMAXPROCS.
func New(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	p := &Pool{
		numWorkers: numWorkers,
		// Buffer enough for all workers to have pending work
		workC: make(chan workItem, numWorkers*2),
	}

	// Spawn persistent workers
	for range numWorkers {
		go p.worker()
	}

	return p
}

var shared = sync.OnceValue(func() *Pool { return New(0) })

// Shared returns the process-wide pool sized by GOMAXPROCS. It is created on
// first use and never closed.
func Shared() *Pool {
	return shared()
}

// worker is the main loop for each persistent worker goroutine.
func (p *Pool) worker() {
	for item := range p.workC {
		item.fn()
		item.barrier.Done()
	}
}

// NumWorkers returns the number of workers in the pool.
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// Close shuts down the worker pool. All pending work will complete.
// Calling Close multiple times is safe.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.workC)
	})
}

// chunking returns the chunk size and chunk count used to split n items.
// It depends only on n and the pool size, so a given pool always partitions
// a given n the same way.
func (p *Pool) chunking(n int) (size, count int) {
	workers := min(p.numWorkers, n)
	if p.closed.Load() || workers <= 1 {
		return n, 1
	}
	size = (n + workers - 1) / workers
	return size, (n + size - 1) / size
}

// Chunks returns the number of chunks ParallelForChunk splits n items into.
// It returns 0 for n <= 0.
func (p *Pool) Chunks(n int) int {
	if n <= 0 {
		return 0
	}
	_, count := p.chunking(n)
	return count
}

// ParallelFor executes fn for each index in [0, n) using the worker pool.
// Each worker processes a contiguous range of indices.
// Blocks until all work completes.
//
// fn receives (start, end) indices where work should process [start, end).
func (p *Pool) ParallelFor(n int, fn func(start, end int)) {
	p.ParallelForChunk(n, func(_, start, end int) {
		fn(start, end)
	})
}

// ParallelForChunk is ParallelFor with the chunk index passed to fn. Chunk
// indices are dense in [0, Chunks(n)) and chunk c covers lower indices than
// chunk c+1.
func (p *Pool) ParallelForChunk(n int, fn func(chunk, start, end int)) {
	if n <= 0 {
		return
	}

	size, count := p.chunking(n)
	if count == 1 {
		// Closed pool, single worker or tiny n: run sequentially
		fn(0, 0, n)
		return
	}

	var wg sync.WaitGroup
	wg.Add(count)

	for c := range count {
		start := c * size
		end := min(start+size, n)
		p.workC <- workItem{
			fn: func() {
				fn(c, start, end)
			},
			barrier: &wg,
		}
	}

	wg.Wait()
}

// Number is the set of accumulator types Reduce can merge.
type Number interface {
	~int | ~int32 | ~int64 | ~uint32 | ~uint64 | ~float32 | ~float64
}

// Reduce evaluates fn over the chunks of [0, n) in parallel and returns the
// sum of the partial results. Partials are stored per chunk and added in
// chunk order after all workers finish.
func Reduce[T Number](p *Pool, n int, fn func(start, end int) T) T {
	partials := make([]T, p.Chunks(n))
	p.ParallelForChunk(n, func(chunk, start, end int) {
		partials[chunk] = fn(start, end)
	})

	var total T
	for _, v := range partials {
		total += v
	}
	return total
}
