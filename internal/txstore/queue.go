package txstore

import "container/heap"

// commitQueue orders transactions by (is_commit desc, last_scn asc, xid
// asc) (§3.3 "Ordering") so that committed transactions drain in SCN
// order. Built on container/heap: the pack's example repos reach for a
// bespoke/ecosystem priority-queue type nowhere a CDC-shaped commit
// sequencer would plausibly need one, so the standard library's heap
// interface is used directly rather than invented as a new dependency.
type commitQueue struct {
	items []*Transaction
}

func newCommitQueue() *commitQueue {
	q := &commitQueue{}
	heap.Init(q)
	return q
}

func (q *commitQueue) Len() int { return len(q.items) }

func (q *commitQueue) Less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	if a.IsCommit != b.IsCommit {
		return a.IsCommit // commit desc: commits sort first
	}
	if a.LastScn != b.LastScn {
		return a.LastScn < b.LastScn
	}
	return a.Xid < b.Xid
}

func (q *commitQueue) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

func (q *commitQueue) Push(x any) { q.items = append(q.items, x.(*Transaction)) }

func (q *commitQueue) Pop() any {
	old := q.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	q.items = old[:n-1]
	return item
}

// push adds a transaction to the queue, re-ordering it.
func (q *commitQueue) push(t *Transaction) { heap.Push(q, t) }

// popReady returns the highest-priority transaction (committed, lowest
// SCN, lowest XID first) and removes it, or nil if the queue is empty.
func (q *commitQueue) popReady() *Transaction {
	if q.Len() == 0 {
		return nil
	}
	return heap.Pop(q).(*Transaction)
}

// fix re-establishes heap order for t after its LastScn/IsCommit changed
// in place (apply/commit mutate a Transaction already in the queue).
func (q *commitQueue) fix(t *Transaction) {
	for i, x := range q.items {
		if x == t {
			heap.Fix(q, i)
			return
		}
	}
}
