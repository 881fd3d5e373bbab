package queue

import (
	"context"
	"testing"
	"time"

	"github.com/irongraph/irongraph/internal/domain/model"
)

func event(dots float64, tier string) Event {
	return model.ActivityEvent{Dots: dots, Tier: tier, At: time.Now()}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if !q.Enqueue(ctx, event(310.5, "Advanced")) {
		t.Error("expected enqueue to succeed")
	}

	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	out := q.Dequeue(ctx)
	e := <-out
	if e.Dots != 310.5 || e.Tier != "Advanced" {
		t.Errorf("unexpected event: %+v", e)
	}

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_DropsWhenFull(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, event(100, "Beginner")) {
		t.Error("expected enqueue to succeed")
	}
	if !q.Enqueue(ctx, event(200, "Novice")) {
		t.Error("expected enqueue to succeed")
	}

	// Third event must be dropped, not block.
	done := make(chan bool, 1)
	go func() { done <- q.Enqueue(ctx, event(300, "Intermediate")) }()

	select {
	case ok := <-done:
		if ok {
			t.Error("expected enqueue to fail when full")
		}
	case <-time.After(time.Second):
		t.Fatal("enqueue blocked on a full queue")
	}
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx := context.Background()

	q.Enqueue(ctx, event(250, "Intermediate"))

	if err := q.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to report closed")
	}
	if q.Enqueue(ctx, event(400, "Elite")) {
		t.Error("expected enqueue to fail after close")
	}

	// Close is idempotent.
	if err := q.Close(); err != nil {
		t.Fatalf("second close failed: %v", err)
	}

	// Buffered events drain, then the channel closes.
	out := q.Dequeue(ctx)
	if e, ok := <-out; !ok || e.Dots != 250 {
		t.Errorf("expected buffered event, got %+v ok=%v", e, ok)
	}
	if _, ok := <-out; ok {
		t.Error("expected dequeue channel to close after drain")
	}
}

func TestInMemoryQueue_DequeueContextCancel(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx, cancel := context.WithCancel(context.Background())

	out := q.Dequeue(ctx)
	q.Enqueue(context.Background(), event(320, "Advanced"))
	<-out

	cancel()
	q.Enqueue(context.Background(), event(330, "Advanced"))

	select {
	case _, ok := <-out:
		if ok {
			t.Error("expected no more events after context cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("dequeue channel did not close after context cancel")
	}
}
