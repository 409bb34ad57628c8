package ident

import (
	"sync"
	"testing"
)

func TestNextIDUnique(t *testing.T) {
	const (
		goroutines = 8
		perWorker  = 12500 // 100k total
	)

	g := New()

	var mu sync.Mutex
	seen := make(map[int64]struct{}, goroutines*perWorker)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids := make([]int64, 0, perWorker)
			for j := 0; j < perWorker; j++ {
				ids = append(ids, g.NextID())
			}
			mu.Lock()
			defer mu.Unlock()
			for _, id := range ids {
				if _, dup := seen[id]; dup {
					t.Errorf("duplicate id %d", id)
				}
				seen[id] = struct{}{}
			}
		}()
	}
	wg.Wait()

	if len(seen) != goroutines*perWorker {
		t.Fatalf("got %d unique ids, want %d", len(seen), goroutines*perWorker)
	}
}

func TestNextIDIncreasing(t *testing.T) {
	g := New()

	prev := g.NextID()
	for i := 0; i < 10000; i++ {
		id := g.NextID()
		if id <= prev {
			t.Fatalf("id %d not greater than previous %d", id, prev)
		}
		prev = id
	}
}

func TestNextIDSequenceInLowBits(t *testing.T) {
	g := New()

	// Two IDs taken in the same millisecond differ only in the sequence
	// bits; the second must be exactly one higher.
	a := g.NextID()
	b := g.NextID()
	if b>>sequenceBits == a>>sequenceBits && b != a+1 {
		t.Fatalf("same-millisecond ids not consecutive: %d then %d", a, b)
	}
}
