package domain

import (
	"errors"
	"sync"
)

// FileResult is the outcome of processing a single source file.
type FileResult struct {
	Source   string
	Output   string
	BytesIn  int
	BytesOut int
	Err      error
}

// Failed reports whether processing the file produced an error.
func (r FileResult) Failed() bool {
	return r.Err != nil
}

// BatchReport accumulates per-file results so a batch can continue past
// individual failures. It is safe for concurrent use.
type BatchReport struct {
	mu      sync.Mutex
	results []FileResult
}

// Add records a result.
func (b *BatchReport) Add(r FileResult) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.results = append(b.results, r)
}

// Results returns a copy of the recorded results in insertion order.
func (b *BatchReport) Results() []FileResult {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]FileResult, len(b.results))
	copy(out, b.results)
	return out
}

// Len returns the number of recorded results.
func (b *BatchReport) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.results)
}

// Succeeded returns the number of results without an error.
func (b *BatchReport) Succeeded() int {
	return b.Len() - b.Failed()
}

// Failed returns the number of results carrying an error.
func (b *BatchReport) Failed() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, r := range b.results {
		if r.Failed() {
			n++
		}
	}
	return n
}

// Err joins every recorded error, or returns nil when all files succeeded.
func (b *BatchReport) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	var errs error
	for _, r := range b.results {
		if r.Err != nil {
			errs = errors.Join(errs, r.Err)
		}
	}
	return errs
}
