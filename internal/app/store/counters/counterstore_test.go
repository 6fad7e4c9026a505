package counterstore_test

import (
	"sync"
	"testing"

	counterstore "github.com/dalemusser/crewhub/internal/app/store/counters"
	"github.com/dalemusser/crewhub/internal/testutil"
)

func TestNext_Sequential(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := counterstore.New(db)

	for want := int64(1); want <= 3; want++ {
		got, err := store.Next(ctx, "test_counter")
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if got != want {
			t.Errorf("Next: got %d, want %d", got, want)
		}
	}
}

func TestNext_IndependentCounters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := counterstore.New(db)

	if _, err := store.Next(ctx, "a"); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	got, err := store.Next(ctx, "b")
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if got != 1 {
		t.Errorf("counter b should start at 1, got %d", got)
	}
}

func TestNextEmployeeID_Format(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := counterstore.New(db)

	id, err := store.NextEmployeeID(ctx)
	if err != nil {
		t.Fatalf("NextEmployeeID failed: %v", err)
	}
	if id != "EMP-1001" {
		t.Errorf("got %q, want %q", id, "EMP-1001")
	}
}

func TestNext_ConcurrentUnique(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := counterstore.New(db)

	const workers = 10
	results := make(chan int64, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := store.Next(ctx, "concurrent")
			if err != nil {
				t.Errorf("Next failed: %v", err)
				return
			}
			results <- n
		}()
	}
	wg.Wait()
	close(results)

	seen := map[int64]bool{}
	for n := range results {
		if seen[n] {
			t.Errorf("duplicate sequence value %d", n)
		}
		seen[n] = true
	}
}
