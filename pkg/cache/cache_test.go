package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/FrenchMajesty/repo-feature-analyzer/pkg/features"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprintIsContentBased(t *testing.T) {
	a := FingerprintOf("func main() {}")
	b := FingerprintOf("func main() {}")
	c := FingerprintOf("func main() { }")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEmpty(t, a.String())
}

func TestCache_MissThenHit(t *testing.T) {
	c := New()
	fp := FingerprintOf("chunk")

	_, ok := c.Get(fp)
	assert.False(t, ok)

	m := features.NewMap()
	m[features.Caching] = features.Verdict{Present: true, Details: "redis client"}
	c.Put(fp, m)

	got, ok := c.Get(fp)
	require.True(t, ok)
	assert.True(t, got[features.Caching].Present)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, Stats{Hits: 1, Misses: 1}, c.Stats())
}

func TestCache_StoresCopies(t *testing.T) {
	c := New()
	fp := FingerprintOf("chunk")

	m := features.NewMap()
	c.Put(fp, m)
	m[features.Database] = features.Verdict{Present: true}

	got, _ := c.Get(fp)
	assert.False(t, got[features.Database].Present, "cache must not alias the caller's map")

	got[features.Storage] = features.Verdict{Present: true}
	again, _ := c.Get(fp)
	assert.False(t, again[features.Storage].Present, "cache must not alias returned maps")
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			fp := FingerprintOf(fmt.Sprintf("chunk-%d", i%10))
			c.Put(fp, features.NewMap())
			_, _ = c.Get(fp)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, c.Len())
	assert.Equal(t, 50, c.Stats().Hits)
}
