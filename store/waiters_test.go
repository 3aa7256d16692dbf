package store

import "testing"

func TestWaitersTakeOrderPreserved(t *testing.T) {
	w := NewWaitersTable()
	id := testID(10)

	w.Add(id, 3)
	w.Add(id, 1)
	w.Add(id, 7)

	fds, ok := w.Take(id)
	if !ok {
		t.Fatalf("Take: expected ok=true")
	}
	want := []int{3, 1, 7}
	if len(fds) != len(want) {
		t.Fatalf("Take: got %v, want %v", fds, want)
	}
	for i := range want {
		if fds[i] != want[i] {
			t.Fatalf("Take: got %v, want %v", fds, want)
		}
	}
}

func TestWaitersTakeIsDestructive(t *testing.T) {
	w := NewWaitersTable()
	id := testID(11)
	w.Add(id, 1)

	if _, ok := w.Take(id); !ok {
		t.Fatalf("first Take: expected ok=true")
	}
	if _, ok := w.Take(id); ok {
		t.Fatalf("second Take: expected ok=false, waiters already drained")
	}
}

func TestWaitersTakeUnknownID(t *testing.T) {
	w := NewWaitersTable()
	if _, ok := w.Take(testID(12)); ok {
		t.Fatalf("Take: expected ok=false for an id nobody waited on")
	}
}

func TestWaitersAllowsRepeatedFD(t *testing.T) {
	w := NewWaitersTable()
	id := testID(13)
	w.Add(id, 5)
	w.Add(id, 5)

	fds, ok := w.Take(id)
	if !ok || len(fds) != 2 || fds[0] != 5 || fds[1] != 5 {
		t.Fatalf("Take: got %v ok=%v, want [5 5] ok=true", fds, ok)
	}
}
