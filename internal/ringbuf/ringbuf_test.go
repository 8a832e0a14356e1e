package ringbuf

import (
	"testing"
	"time"

	"github.com/leengari/logminer-core/internal/redo"
	"github.com/leengari/logminer-core/internal/shutdown"
	"github.com/leengari/logminer-core/internal/txstore"
	"gotest.tools/v3/assert"
)

func TestPushPopFIFO(t *testing.T) {
	b := New(2, nil)
	t1 := txstore.NewTransaction(redo.NewXid(1, 1, 1), txstore.NewTransactionBuffer())
	t2 := txstore.NewTransaction(redo.NewXid(1, 1, 2), txstore.NewTransactionBuffer())

	assert.Assert(t, b.Push(t1))
	assert.Assert(t, b.Push(t2))
	assert.Equal(t, b.Headroom(), 0)

	got1, ok := b.Pop()
	assert.Assert(t, ok)
	assert.Equal(t, got1.Xid, t1.Xid)

	got2, ok := b.Pop()
	assert.Assert(t, ok)
	assert.Equal(t, got2.Xid, t2.Xid)
}

func TestPushBlocksUntilPop(t *testing.T) {
	b := New(1, nil)
	tx1 := txstore.NewTransaction(redo.NewXid(1, 1, 1), txstore.NewTransactionBuffer())
	tx2 := txstore.NewTransaction(redo.NewXid(1, 1, 2), txstore.NewTransactionBuffer())
	assert.Assert(t, b.Push(tx1))

	done := make(chan bool, 1)
	go func() { done <- b.Push(tx2) }()

	select {
	case <-done:
		t.Fatal("Push should have blocked while full")
	case <-time.After(30 * time.Millisecond):
	}

	_, ok := b.Pop()
	assert.Assert(t, ok)

	select {
	case ok := <-done:
		assert.Assert(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Push did not unblock after Pop freed a slot")
	}
}

func TestShutdownTokenUnblocksPop(t *testing.T) {
	tok := shutdown.NewToken()
	b := New(1, tok)

	done := make(chan bool, 1)
	go func() {
		_, ok := b.Pop()
		done <- ok
	}()

	time.Sleep(20 * time.Millisecond)
	tok.Trip()
	b.Wake()

	select {
	case ok := <-done:
		assert.Assert(t, !ok)
	case <-time.After(time.Second):
		t.Fatal("Pop did not unblock on shutdown")
	}
}
