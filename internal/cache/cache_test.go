package cache

import (
	"errors"
	"strconv"
	"sync"
	"testing"
)

func TestGetSet(t *testing.T) {
	c := New[string, int](0)
	if _, ok := c.Get("a"); ok {
		t.Fatal("empty cache returned a value")
	}
	c.Set("a", 1)
	c.Set("a", 2)
	if v, ok := c.Get("a"); !ok || v != 2 {
		t.Errorf("Get(a) = %d, %v; want 2, true", v, ok)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
	if s := c.Stats(); s.Hits != 1 || s.Misses != 1 {
		t.Errorf("Stats() = %+v, want 1 hit 1 miss", s)
	}
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[int, int](4)
	for i := 0; i < 4; i++ {
		c.Set(i, i)
	}
	// Touch 0 so that 1 becomes the oldest.
	c.Get(0)
	c.Set(4, 4)

	// Over the limit: evict down to 3 entries.
	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}
	for _, k := range []int{1, 2} {
		if _, ok := c.Get(k); ok {
			t.Errorf("key %d survived eviction", k)
		}
	}
	for _, k := range []int{0, 3, 4} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("key %d was evicted", k)
		}
	}
}

func TestGetOrCreate(t *testing.T) {
	c := New[string, []uint32](8)
	calls := 0
	build := func() ([]uint32, error) {
		calls++
		return []uint32{0x07230203}, nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.GetOrCreate("src", build)
		if err != nil || len(v) != 1 {
			t.Fatalf("GetOrCreate() = %v, %v", v, err)
		}
	}
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}
}

func TestGetOrCreateErrorNotCached(t *testing.T) {
	c := New[string, int](8)
	boom := errors.New("boom")

	if _, err := c.GetOrCreate("k", func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("error = %v, want boom", err)
	}
	if c.Len() != 0 {
		t.Errorf("failed value was cached")
	}
	v, err := c.GetOrCreate("k", func() (int, error) { return 7, nil })
	if err != nil || v != 7 {
		t.Errorf("GetOrCreate() = %d, %v; want 7", v, err)
	}
}

func TestConcurrentGetOrCreate(t *testing.T) {
	c := New[string, int](0)
	var mu sync.Mutex
	calls := map[string]int{}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := strconv.Itoa(i % 4)
			_, _ = c.GetOrCreate(key, func() (int, error) {
				mu.Lock()
				calls[key]++
				mu.Unlock()
				return i, nil
			})
		}(i)
	}
	wg.Wait()

	for k, n := range calls {
		if n != 1 {
			t.Errorf("key %s created %d times", k, n)
		}
	}
	if c.Len() != 4 {
		t.Errorf("Len() = %d, want 4", c.Len())
	}
}

func TestClear(t *testing.T) {
	c := New[int, int](0)
	c.Set(1, 1)
	c.Get(1)
	c.Clear()
	if c.Len() != 0 || c.Stats().Hits != 0 {
		t.Errorf("Clear() left %+v", c.Stats())
	}
}
