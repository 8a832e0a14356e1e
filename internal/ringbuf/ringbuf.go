// Package ringbuf implements the bounded single-producer/single-consumer
// CommandBuffer between one Source's reader thread and its Target's
// writer thread (§5, §6.1 "next_record" consumer side). Mutex + two
// condition variables, per Design Note §9: this does not admit
// wait-free reasoning, but it is the same trade-off the teacher accepts
// for its WAL writer/reader handoff, so it is kept rather than replaced
// with a lock-free structure nothing else in the pack demonstrates.
package ringbuf

import (
	"sync"

	"github.com/leengari/logminer-core/internal/shutdown"
	"github.com/leengari/logminer-core/internal/txstore"
)

// CommandBuffer is a fixed-capacity ring of *txstore.Transaction shared
// 1:1 between a reader and a writer goroutine (§5 "Shared-resource
// policy": "the ring buffer is the only cross-thread state").
type CommandBuffer struct {
	mu          sync.Mutex
	readersCond *sync.Cond
	writerCond  *sync.Cond
	items       []*txstore.Transaction
	head, count int
	tok         *shutdown.Token
}

// New creates a CommandBuffer with room for capacity transactions.
func New(capacity int, tok *shutdown.Token) *CommandBuffer {
	b := &CommandBuffer{
		items: make([]*txstore.Transaction, capacity),
		tok:   tok,
	}
	b.readersCond = sync.NewCond(&b.mu)
	b.writerCond = sync.NewCond(&b.mu)
	return b
}

// Cap returns the buffer's fixed capacity.
func (b *CommandBuffer) Cap() int { return len(b.items) }

// Headroom returns the number of additional transactions the buffer can
// accept right now, used by the Emitter's backpressure check (§4.3).
func (b *CommandBuffer) Headroom() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items) - b.count
}

// Push blocks while the buffer is full, re-checking the shutdown token on
// every wake (§5 "Cancellation"). Returns false if shutdown tripped
// before room became available.
func (b *CommandBuffer) Push(t *txstore.Transaction) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for b.count == len(b.items) {
		if b.tripped() {
			return false
		}
		b.writerCond.Wait()
	}
	idx := (b.head + b.count) % len(b.items)
	b.items[idx] = t
	b.count++
	b.readersCond.Signal()
	return true
}

// Pop blocks while the buffer is empty, re-checking the shutdown token on
// every wake. Returns (nil, false) if shutdown tripped before an item
// became available.
func (b *CommandBuffer) Pop() (*txstore.Transaction, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for b.count == 0 {
		if b.tripped() {
			return nil, false
		}
		b.readersCond.Wait()
	}
	t := b.items[b.head]
	b.items[b.head] = nil
	b.head = (b.head + 1) % len(b.items)
	b.count--
	b.writerCond.Signal()
	return t, true
}

func (b *CommandBuffer) tripped() bool {
	return b.tok != nil && b.tok.Tripped()
}

// Wake releases any goroutine blocked in Push or Pop so it can re-check
// the shutdown token. Tripping the token does not wake them by itself,
// and WatchSignals only trips the token; it does not call Wake.
func (b *CommandBuffer) Wake() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.readersCond.Broadcast()
	b.writerCond.Broadcast()
}
