package cache

import (
	"errors"
	"sync"
	"testing"
)

func TestMemo_LoadsOnce(t *testing.T) {
	calls := 0
	m := NewMemo(func(k int) (string, error) {
		calls++
		return "unit-" + string(rune('0'+k)), nil
	}, Options{})

	for i := 0; i < 3; i++ {
		v, err := m.Get(4)
		if err != nil || v != "unit-4" {
			t.Fatalf("unexpected result v=%q err=%v", v, err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected loader to run once, ran %d times", calls)
	}
	hits, loads := m.Stats()
	if hits != 2 || loads != 1 {
		t.Fatalf("expected hits=2 loads=1, got hits=%d loads=%d", hits, loads)
	}
}

func TestMemo_CachesMisses(t *testing.T) {
	calls := 0
	m := NewMemo(func(k uint) (*string, error) {
		calls++
		return nil, nil
	}, Options{})

	for i := 0; i < 2; i++ {
		if v, err := m.Get(9); err != nil || v != nil {
			t.Fatalf("expected nil miss, got %v %v", v, err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected a cached miss, loader ran %d times", calls)
	}
}

func TestMemo_ErrorsNotCached(t *testing.T) {
	fail := true
	m := NewMemo(func(k string) (int, error) {
		if fail {
			return 0, errors.New("db down")
		}
		return 1, nil
	}, Options{})

	if _, err := m.Get("a"); err == nil {
		t.Fatalf("expected error")
	}
	if m.Len() != 0 {
		t.Fatalf("expected error not to be memoized")
	}
	fail = false
	if v, err := m.Get("a"); err != nil || v != 1 {
		t.Fatalf("expected reload after error, got %v %v", v, err)
	}
}

func TestMemo_PrimeForget(t *testing.T) {
	calls := 0
	m := NewMemo(func(k int) (int, error) {
		calls++
		return k * 10, nil
	}, Options{})

	m.Prime(1, 99)
	if v, _ := m.Get(1); v != 99 {
		t.Fatalf("expected primed value, got %d", v)
	}
	m.Forget(1)
	if v, _ := m.Get(1); v != 10 {
		t.Fatalf("expected reload after Forget, got %d", v)
	}
	if calls != 1 {
		t.Fatalf("expected one load, got %d", calls)
	}
}

func TestMemo_ConcurrencySafe(t *testing.T) {
	m := NewMemo(func(k int) (int, error) { return k, nil }, Options{ConcurrencySafe: true})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for r := 0; r < 100; r++ {
				_, _ = m.Get(i % 10)
			}
		}(i)
	}
	wg.Wait()
	if m.Len() != 10 {
		t.Fatalf("expected 10 keys, got %d", m.Len())
	}
	_, loads := m.Stats()
	if loads != 10 {
		t.Fatalf("expected 10 loads, got %d", loads)
	}
}
