package order

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestIDGeneratorFormat(t *testing.T) {
	fixed := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	g := NewIDGeneratorAt(func() time.Time { return fixed })

	id := g.Next()
	want := "ORD-" + "1741597200000"
	if id != want {
		t.Errorf("id = %q, want %q", id, want)
	}
}

func TestIDGeneratorSameMillisecond(t *testing.T) {
	fixed := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	g := NewIDGeneratorAt(func() time.Time { return fixed })

	a, b, c := g.Next(), g.Next(), g.Next()
	if a == b || b == c {
		t.Errorf("ids not unique within one millisecond: %s %s %s", a, b, c)
	}
	if !(a < b && b < c) {
		t.Errorf("ids not strictly increasing: %s %s %s", a, b, c)
	}
}

func TestIDGeneratorConcurrent(t *testing.T) {
	g := NewIDGenerator()

	const n = 200
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- g.Next()
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool, n)
	for id := range ids {
		if !strings.HasPrefix(id, "ORD-") {
			t.Errorf("id %q lacks ORD- prefix", id)
		}
		if seen[id] {
			t.Errorf("duplicate id %q", id)
		}
		seen[id] = true
	}
	if len(seen) != n {
		t.Errorf("unique ids = %d, want %d", len(seen), n)
	}
}
