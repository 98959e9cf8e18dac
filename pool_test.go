package tpl2pdf

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// Compile-time interface check.
var _ interface {
	Acquire(context.Context) (*Renderer, error)
	Release(*Renderer)
	Size() int
	Close() error
} = (*RendererPool)(nil)

// newFakePool creates a pool whose Renderers print with fake engines.
func newFakePool(t *testing.T, n int) (*RendererPool, *atomic.Int32) {
	t.Helper()

	dir := t.TempDir()
	var created atomic.Int32
	pool := NewRendererPool(n, func() (*Renderer, error) {
		created.Add(1)
		return NewRenderer(WithTemplateDir(dir), WithEngine(newFakeEngine()))
	})
	return pool, &created
}

func TestResolvePoolSize(t *testing.T) {
	t.Parallel()

	gomaxprocs := runtime.GOMAXPROCS(0)

	tests := []struct {
		name    string
		workers int
		want    int
	}{
		{
			name:    "explicit takes priority",
			workers: 4,
			want:    4,
		},
		{
			name:    "explicit=1 for sequential",
			workers: 1,
			want:    1,
		},
		{
			name:    "explicit can exceed max",
			workers: 16,
			want:    16,
		},
		{
			name:    "zero uses auto calculation",
			workers: 0,
			want:    min(max(gomaxprocs/cpuDivisor, MinPoolSize), MaxPoolSize),
		},
		{
			name:    "negative uses auto calculation",
			workers: -5,
			want:    min(max(gomaxprocs/cpuDivisor, MinPoolSize), MaxPoolSize),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ResolvePoolSize(tt.workers)
			if got != tt.want {
				t.Errorf("ResolvePoolSize(%d) = %d, want %d", tt.workers, got, tt.want)
			}
		})
	}
}

func TestRendererPool_Size(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		size int
		want int
	}{
		{"size 1", 1, 1},
		{"size 4", 4, 4},
		{"size 0 becomes 1", 0, 1},
		{"negative becomes 1", -1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pool, _ := newFakePool(t, tt.size)
			defer pool.Close()

			if got := pool.Size(); got != tt.want {
				t.Errorf("Size() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRendererPool_AcquireRelease(t *testing.T) {
	t.Parallel()

	pool, created := newFakePool(t, 2)
	defer pool.Close()
	ctx := context.Background()

	r1, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	r2, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if r1 == r2 {
		t.Error("expected different renderer instances")
	}

	pool.Release(r1)
	r3, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if r3 != r1 {
		t.Error("expected to get back released renderer")
	}
	if got := created.Load(); got != 2 {
		t.Errorf("created %d renderers, want 2", got)
	}

	pool.Release(r2)
	pool.Release(r3)
}

func TestRendererPool_AcquireHonorsContext(t *testing.T) {
	t.Parallel()

	pool, _ := newFakePool(t, 1)
	defer pool.Close()

	r, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer pool.Release(r)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := pool.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Acquire() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestRendererPool_FactoryError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	calls := 0
	pool := NewRendererPool(1, func() (*Renderer, error) {
		calls++
		if calls == 1 {
			return nil, boom
		}
		return NewRenderer(WithTemplateDir(t.TempDir()), WithEngine(newFakeEngine()))
	})
	defer pool.Close()

	if _, err := pool.Acquire(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Acquire() error = %v, want boom", err)
	}

	// The failed slot is freed for the next attempt.
	r, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("second Acquire() error = %v", err)
	}
	pool.Release(r)
}

func TestRendererPool_Close(t *testing.T) {
	t.Parallel()

	t.Run("closes engines", func(t *testing.T) {
		t.Parallel()

		var engines []*fakeEngine
		var mu sync.Mutex
		dir := t.TempDir()
		pool := NewRendererPool(2, func() (*Renderer, error) {
			e := newFakeEngine()
			mu.Lock()
			engines = append(engines, e)
			mu.Unlock()
			return NewRenderer(WithTemplateDir(dir), WithEngine(e))
		})

		r1, _ := pool.Acquire(context.Background())
		r2, _ := pool.Acquire(context.Background())
		pool.Release(r1)

		if err := pool.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		for i, e := range engines {
			if !e.closed {
				t.Errorf("engine %d not closed", i)
			}
		}

		// Release after close is a no-op
		pool.Release(r2)
	})

	t.Run("double close", func(t *testing.T) {
		t.Parallel()

		pool, _ := newFakePool(t, 1)
		if err := pool.Close(); err != nil {
			t.Errorf("first Close() error = %v", err)
		}
		if err := pool.Close(); err != nil {
			t.Errorf("second Close() error = %v", err)
		}
	})

	t.Run("acquire after close", func(t *testing.T) {
		t.Parallel()

		pool, _ := newFakePool(t, 1)
		_ = pool.Close()

		if _, err := pool.Acquire(context.Background()); !errors.Is(err, ErrPoolClosed) {
			t.Errorf("Acquire() error = %v, want ErrPoolClosed", err)
		}
	})
}

// TestRendererPool_HighContention verifies the pool remains deadlock-free
// with many goroutines sharing two renderers.
func TestRendererPool_HighContention(t *testing.T) {
	t.Parallel()

	pool, created := newFakePool(t, 2)
	defer pool.Close()

	var wg sync.WaitGroup
	goroutines := 50
	iterations := 10

	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range iterations {
				r, err := pool.Acquire(context.Background())
				if err != nil {
					t.Errorf("Acquire() error = %v", err)
					return
				}
				time.Sleep(time.Duration(j%3) * time.Millisecond)
				pool.Release(r)
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(30 * time.Second)
	defer timer.Stop()

	select {
	case <-done:
	case <-timer.C:
		t.Fatal("high contention test timed out - possible deadlock")
	}

	if got := created.Load(); got > 2 {
		t.Errorf("created %d renderers, want at most 2", got)
	}
}
