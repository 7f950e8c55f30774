package inject

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type requestScoped struct {
	id int
}

type threadLocalConfig struct {
	next *int
	mu   *sync.Mutex
}

func (c *threadLocalConfig) Configure(b Binder) error {
	b.Bind(KeyOf[*requestScoped](""), func(bb *BindingBuilder) {
		bb.ToThreadLocal(func() (*requestScoped, error) {
			c.mu.Lock()
			defer c.mu.Unlock()
			*c.next++
			return &requestScoped{id: *c.next}, nil
		})
	})
	return nil
}

func TestThreadLocalSingletonIsStablePerGoroutine(t *testing.T) {
	next := 0
	var mu sync.Mutex
	inj, err := Create([]Configuration{&threadLocalConfig{next: &next, mu: &mu}})
	require.NoError(t, err)

	a1, err := GetShared[*requestScoped](inj, "")
	require.NoError(t, err)
	a2, err := GetShared[*requestScoped](inj, "")
	require.NoError(t, err)
	require.Same(t, a1, a2)

	var wg sync.WaitGroup
	results := make([]*requestScoped, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := GetShared[*requestScoped](inj, "")
			require.NoError(t, err)
			results[i] = v
		}(i)
	}
	wg.Wait()

	seen := map[int]bool{a1.id: true}
	for _, r := range results {
		require.False(t, seen[r.id], "goroutine-local values must not collide with the main goroutine's")
		seen[r.id] = true
	}
}
