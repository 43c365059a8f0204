package utils

import (
	"sync"
)

// WorkerPool runs jobs on at most maxWorkers goroutines.
type WorkerPool struct {
	slots chan struct{}
	wg    sync.WaitGroup
}

// NewWorkerPool creates a WorkerPool. Values below 1 mean a single worker.
func NewWorkerPool(maxWorkers int) *WorkerPool {
	return &WorkerPool{slots: make(chan struct{}, max(maxWorkers, 1))}
}

// Submit blocks until a worker slot is free, then runs job on its own goroutine.
func (wp *WorkerPool) Submit(job func()) {
	wp.wg.Add(1)
	wp.slots <- struct{}{}

	go func() {
		defer func() {
			<-wp.slots
			wp.wg.Done()
		}()
		job()
	}()
}

// Wait blocks until all submitted jobs have completed.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

// Map applies fn to every element of in using up to workers goroutines.
// out[i] always holds fn(i, in[i]) whatever order the jobs finish in.
func Map[T, R any](workers int, in []T, fn func(int, T) R) []R {
	out := make([]R, len(in))
	pool := NewWorkerPool(workers)
	for i, v := range in {
		pool.Submit(func() { out[i] = fn(i, v) })
	}
	pool.Wait()
	return out
}

// StringSet is a set of strings that remembers insertion order.
// It is safe for concurrent use.
type StringSet struct {
	mu    sync.RWMutex
	seen  map[string]struct{}
	order []string
}

// NewStringSet creates an empty StringSet.
func NewStringSet() *StringSet {
	return &StringSet{seen: make(map[string]struct{})}
}

// Add reports whether v was newly added.
func (s *StringSet) Add(v string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[v]; ok {
		return false
	}
	s.seen[v] = struct{}{}
	s.order = append(s.order, v)
	return true
}

// Members returns the members in the order they were first added.
func (s *StringSet) Members() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}
