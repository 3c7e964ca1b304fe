package containers

import (
	"errors"
	"testing"
)

func TestRingQueueFIFO(t *testing.T) {
	rq := NewRingQueue[int](3)
	if _, err := rq.Dequeue(); !errors.Is(err, ErrQueueEmpty) {
		t.Fatalf("Dequeue on empty = %v", err)
	}
	for i := 1; i <= 3; i++ {
		if err := rq.Enqueue(i); err != nil {
			t.Fatal(err)
		}
	}
	if err := rq.Enqueue(4); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("Enqueue on full = %v", err)
	}
	if v, _ := rq.Peek(); v != 1 {
		t.Errorf("Peek = %d", v)
	}
	// wrap around the end of the buffer
	for want := 1; want <= 2; want++ {
		if v, _ := rq.Dequeue(); v != want {
			t.Errorf("Dequeue = %d, want %d", v, want)
		}
	}
	_ = rq.Enqueue(4)
	_ = rq.Enqueue(5)
	var got []int
	for !rq.IsEmpty() {
		v, _ := rq.Dequeue()
		got = append(got, v)
	}
	if len(got) != 3 || got[0] != 3 || got[1] != 4 || got[2] != 5 {
		t.Errorf("drained %v", got)
	}
}

func TestRingQueuePushEvictsOldest(t *testing.T) {
	rq := NewRingQueue[string](2)
	if _, ok := rq.Push("a"); ok {
		t.Error("evicted from a queue with room")
	}
	rq.Push("b")
	evicted, ok := rq.Push("c")
	if !ok || evicted != "a" {
		t.Errorf("Push evicted %q, %v", evicted, ok)
	}
	if rq.Len() != 2 {
		t.Errorf("Len = %d", rq.Len())
	}
	if v, _ := rq.Peek(); v != "b" {
		t.Errorf("Peek = %q", v)
	}
}
