// Package stream provides chunked and parallel encode/decode helpers for
// processing TONE data in bounded memory and across multiple goroutines,
// the concurrent counterpart to the reference implementation's async
// batch helpers (Go has no coroutine event loop to target, so a bounded
// worker pool takes the place of asyncio.gather-over-a-semaphore).
package stream

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/tonefmt/tone"
)

// ErrClosed is returned by Submit once the Pool has been closed.
var ErrClosed = fmt.Errorf("stream: pool is closed")

// Pool runs TONE encode/decode jobs across a fixed set of goroutines,
// shaped after the example pack's worker-pool pattern: a buffered work
// channel, a WaitGroup tracking live workers, and an atomic close guard
// so Close is safe to call more than once.
type Pool struct {
	numWorkers int
	workCh     chan func()
	stopCh     chan struct{}
	wg         sync.WaitGroup
	closed     atomic.Bool
	submitMu   sync.RWMutex
}

// NewPool creates a pool with numWorkers goroutines. numWorkers <= 0
// defaults to runtime.GOMAXPROCS(0), matching the guidance used elsewhere
// in the ecosystem for CPU-bound work like encoding/decoding.
func NewPool(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		numWorkers: numWorkers,
		workCh:     make(chan func(), numWorkers*2),
		stopCh:     make(chan struct{}),
	}
	p.wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopCh:
			for {
				select {
				case workFunc, ok := <-p.workCh:
					if !ok {
						return
					}
					workFunc()
				default:
					return
				}
			}
		case workFunc, ok := <-p.workCh:
			if !ok {
				return
			}
			workFunc()
		}
	}
}

// Submit enqueues task, blocking while the work queue is full; it does not
// wait for task to run. It returns ErrClosed if the
// pool has been closed, or ctx.Err() if ctx is cancelled before the task
// could be enqueued.
func (p *Pool) Submit(ctx context.Context, task func()) error {
	p.submitMu.RLock()
	defer p.submitMu.RUnlock()

	if p.closed.Load() {
		return ErrClosed
	}
	select {
	case p.workCh <- task:
		return nil
	case <-p.stopCh:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close shuts the pool down, waiting for in-flight and already-queued
// work to finish. Close is idempotent.
func (p *Pool) Close() {
	if !p.closed.CompareAndSwap(false, true) {
		return
	}
	p.submitMu.Lock()
	close(p.stopCh)
	close(p.workCh)
	p.submitMu.Unlock()
	p.wg.Wait()
}

// BatchResult is one entry of a parallel batch's output, correlated back
// to its input position by Index and tagged with a generated ID for
// logging/tracing.
type BatchResult struct {
	ID    string
	Index int
	Value string
	Err   error
}

func generateBatchID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf("batch_%d_%d", time.Now().UnixMilli(), time.Now().UnixNano())
	}
	return "batch_" + id.String()
}

// EncodeAll encodes each value in values concurrently across the pool,
// returning results in input order.
func (p *Pool) EncodeAll(ctx context.Context, values []interface{}, opts *tone.EncodeOptions) []BatchResult {
	results := make([]BatchResult, len(values))
	var wg sync.WaitGroup
	for i, v := range values {
		i, v := i, v
		wg.Add(1)
		err := p.Submit(ctx, func() {
			defer wg.Done()
			encoded, err := tone.EncodeWithOptions(v, opts)
			results[i] = BatchResult{ID: generateBatchID(), Index: i, Value: encoded, Err: err}
		})
		if err != nil {
			wg.Done()
			results[i] = BatchResult{ID: generateBatchID(), Index: i, Err: err}
		}
	}
	wg.Wait()
	return results
}

// DecodeAll decodes each TONE string in inputs concurrently across the
// pool, returning results in input order. Each BatchResult.Value holds the
// decoded value re-encoded as TONE text with default options (object key
// order is not preserved through that round trip), for symmetry with
// EncodeAll's return shape; callers needing the structured value should
// call tone.DecodeValue directly per item instead.
func (p *Pool) DecodeAll(ctx context.Context, inputs []string, opts *tone.DecodeOptions) []BatchResult {
	results := make([]BatchResult, len(inputs))
	var wg sync.WaitGroup
	for i, s := range inputs {
		i, s := i, s
		wg.Add(1)
		err := p.Submit(ctx, func() {
			defer wg.Done()
			value, err := tone.DecodeWithOptions(s, opts)
			if err != nil {
				results[i] = BatchResult{ID: generateBatchID(), Index: i, Err: err}
				return
			}
			reencoded, err := tone.Encode(value)
			results[i] = BatchResult{ID: generateBatchID(), Index: i, Value: reencoded, Err: err}
		})
		if err != nil {
			wg.Done()
			results[i] = BatchResult{ID: generateBatchID(), Index: i, Err: err}
		}
	}
	wg.Wait()
	return results
}
