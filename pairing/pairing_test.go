package pairing_test

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gomultipole/pairing"
)

// ============================================================
// Generate tests
// ============================================================

func TestGenerate_ZeroPairs(t *testing.T) {
	for n := 0; n <= 4; n++ {
		got := pairing.Generate(n, 0)
		require.Len(t, got, 1, "n=%d", n)
		assert.Empty(t, got[0])
	}
}

func TestGenerate_OnePair(t *testing.T) {
	got := pairing.Generate(4, 1)
	want := []pairing.Pairing{
		{{0, 1}}, {{0, 2}}, {{0, 3}},
		{{1, 2}}, {{1, 3}},
		{{2, 3}},
	}
	assert.Equal(t, want, got)
}

func TestGenerate_TwoPairsOfFour(t *testing.T) {
	got := pairing.Generate(4, 2)
	want := []pairing.Pairing{
		{{0, 1}, {2, 3}},
		{{0, 2}, {1, 3}},
		{{0, 3}, {1, 2}},
	}
	assert.Equal(t, want, got)
}

func TestGenerate_Unsupported(t *testing.T) {
	assert.Empty(t, pairing.Generate(3, 2))
	assert.Empty(t, pairing.Generate(-1, 0))
	assert.Empty(t, pairing.Generate(4, -1))
	assert.Empty(t, pairing.Generate(0, 1))
}

func TestGenerate_CountMatchesFormula(t *testing.T) {
	for n := 0; n <= 10; n++ {
		for k := 0; 2*k <= n; k++ {
			got := pairing.Generate(n, k)
			assert.Equal(t, pairing.Count(n, k).Int64(), int64(len(got)), "n=%d k=%d", n, k)
		}
	}
}

func TestGenerate_DisjointAndUnique(t *testing.T) {
	for n := 0; n <= 10; n++ {
		for k := 0; 2*k <= n; k++ {
			seen := map[string]bool{}
			for _, p := range pairing.Generate(n, k) {
				require.Len(t, p, k)
				assert.True(t, p.Valid(n), "n=%d k=%d invalid %s", n, k, p)
				for _, pr := range p {
					assert.Less(t, pr.I, pr.J)
				}
				key := p.Key()
				assert.False(t, seen[key], "n=%d k=%d duplicate %s", n, k, key)
				seen[key] = true
			}
		}
	}
}

func TestGenerate_Determinism(t *testing.T) {
	want := pairing.Generate(8, 3)
	for i := 0; i < 5; i++ {
		assert.Equal(t, want, pairing.Generate(8, 3), "iteration %d", i)
	}
}

// ============================================================
// Count tests
// ============================================================

func TestCount(t *testing.T) {
	cases := []struct {
		n, k int
		want int64
	}{
		{0, 0, 1},
		{2, 1, 1},
		{4, 1, 6},
		{4, 2, 3},
		{6, 3, 15},
		{8, 4, 105},
		{3, 2, 0},
		{-1, 0, 0},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("n=%d,k=%d", tc.n, tc.k), func(t *testing.T) {
			assert.Equal(t, 0, pairing.Count(tc.n, tc.k).Cmp(big.NewInt(tc.want)))
		})
	}
}

func TestCount_Large(t *testing.T) {
	// 30 slots fully paired: 29!! = 6190283353629375
	assert.Equal(t, "6190283353629375", pairing.Count(30, 15).String())
}

// ============================================================
// Helper tests
// ============================================================

func TestNormalize(t *testing.T) {
	p := pairing.Pairing{{3, 1}, {2, 0}}
	assert.Equal(t, pairing.Pairing{{0, 2}, {1, 3}}, p.Normalize())
	assert.Equal(t, pairing.Pairing{{3, 1}, {2, 0}}, p, "input must not change")
	assert.Equal(t, pairing.Pairing{{0, 2}, {1, 3}}.Key(), p.Key())
	assert.Equal(t, "{(0,2)(1,3)}", p.Key())
}

func TestFreeAndCovered(t *testing.T) {
	p := pairing.Pairing{{0, 3}}
	assert.Equal(t, []bool{true, false, false, true, false}, p.Covered(5))
	assert.Equal(t, []int{1, 2, 4}, p.Free(5))
	assert.Equal(t, []int{0, 1}, pairing.Pairing{}.Free(2))
}

func TestValid(t *testing.T) {
	assert.True(t, pairing.Pairing{{0, 1}, {2, 3}}.Valid(4))
	assert.False(t, pairing.Pairing{{0, 1}, {1, 2}}.Valid(4), "overlap")
	assert.False(t, pairing.Pairing{{0, 0}}.Valid(4), "degenerate")
	assert.False(t, pairing.Pairing{{0, 4}}.Valid(4), "out of range")
}
