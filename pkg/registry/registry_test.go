package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveFirstNameWins(t *testing.T) {
	r := New()

	r.Observe("12ab34cd", "alice")
	r.Observe("12ab34cd", "alice2")

	name, ok := r.Lookup("12ab34cd")
	require.True(t, ok)
	assert.Equal(t, "alice", name)
	assert.Equal(t, 1, r.Len())
}

func TestLookupMissing(t *testing.T) {
	r := New()

	_, ok := r.Lookup("deadbeef")
	assert.False(t, ok)
	assert.Equal(t, "fallback", r.NameOr("deadbeef", "fallback"))
}

func TestClearOnOverflow(t *testing.T) {
	r := New()

	// Fill past the cap. The clear triggers on the first Observe after
	// the table exceeds 1000 entries.
	for i := 0; i <= 1000; i++ {
		r.Observe(fmt.Sprintf("%08x", i), "peer")
	}
	require.Equal(t, 1001, r.Len())

	r.Observe("ffffffff", "late peer")
	assert.Equal(t, 1, r.Len(), "table should be cleared before the overflowing insert")

	name, ok := r.Lookup("ffffffff")
	require.True(t, ok)
	assert.Equal(t, "late peer", name)
}

func TestPrefix(t *testing.T) {
	assert.Equal(t, "0123456789abcdef"[:8], Prefix("0123456789abcdef"))
	assert.Equal(t, "abc", Prefix("abc"))
	assert.Equal(t, "", Prefix(""))
	assert.Len(t, Prefix("0123456789abcdef0123456789abcdef"), PrefixLength)
}

func TestListSnapshot(t *testing.T) {
	r := New()
	r.Observe("aaaaaaaa", "alice")
	r.Observe("bbbbbbbb", "bob")

	peers := r.List()
	require.Len(t, peers, 2)

	found := map[string]string{}
	for _, p := range peers {
		found[p.Prefix] = p.Name
	}
	assert.Equal(t, "alice", found["aaaaaaaa"])
	assert.Equal(t, "bob", found["bbbbbbbb"])
}

func TestConcurrentObserve(t *testing.T) {
	r := New()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				r.Observe(fmt.Sprintf("%08x", i%64), fmt.Sprintf("name-%d", g))
				r.Lookup(fmt.Sprintf("%08x", i%64))
				if i%100 == 0 {
					r.List()
				}
			}
		}(g)
	}
	wg.Wait()

	assert.Equal(t, 64, r.Len())
}
