package ringbuf

import "testing"

func TestPushWithinCapacity(t *testing.T) {
	b := New(3)
	b.Push(1)
	b.Push(2)
	if b.Len() != 2 {
		t.Fatalf("expected len 2, got %d", b.Len())
	}
	if avg := b.Average(); avg != 1.5 {
		t.Fatalf("expected avg 1.5, got %v", avg)
	}
}

func TestPushEvictsOldest(t *testing.T) {
	b := New(3)
	b.Push(1)
	b.Push(2)
	b.Push(3)
	b.Push(4)
	if b.Len() != 3 {
		t.Fatalf("expected len capped at 3, got %d", b.Len())
	}
	first, ok := b.First()
	if !ok || first != 2 {
		t.Fatalf("expected first=2, got %v,%v", first, ok)
	}
	last, ok := b.Last()
	if !ok || last != 4 {
		t.Fatalf("expected last=4, got %v,%v", last, ok)
	}
	want := []float64{2, 3, 4}
	got := b.Values()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Values() = %v, want %v", got, want)
		}
	}
}

func TestEmptyBuffer(t *testing.T) {
	b := New(5)
	if b.Average() != 0 {
		t.Fatal("expected 0 average on empty buffer")
	}
	if _, ok := b.First(); ok {
		t.Fatal("expected no first sample")
	}
}
