package tensor

import (
	"fmt"
	"sort"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/njchilds90/gomultipole/symbolic"
)

// DefaultIndexPrefix labels the slots of tabled derivatives: i1, i2, ...
const DefaultIndexPrefix = "i"

// DerivativeTable memoizes Derivative(order, [i1..in]) per order. Each order
// is computed once and never replaced; concurrent callers asking for the same
// missing order share a single computation.
type DerivativeTable struct {
	builder *Builder
	prefix  string

	mu      sync.RWMutex
	entries map[int]symbolic.Expr
	group   singleflight.Group
}

// NewDerivativeTable returns an empty table backed by b.
func NewDerivativeTable(b *Builder) *DerivativeTable {
	if b == nil {
		b = NewBuilder()
	}
	return &DerivativeTable{builder: b, prefix: DefaultIndexPrefix, entries: map[int]symbolic.Expr{}}
}

// Get returns the derivative of the given order over Indices("i", order).
func (t *DerivativeTable) Get(order int) (symbolic.Expr, error) {
	if d, ok := t.lookup(order); ok {
		return d, nil
	}

	v, err, _ := t.group.Do(strconv.Itoa(order), func() (any, error) {
		if d, ok := t.lookup(order); ok {
			return d, nil
		}
		d, err := t.builder.Derivative(order, Indices(t.prefix, order))
		if err != nil {
			return nil, err
		}
		t.mu.Lock()
		defer t.mu.Unlock()
		if existing, ok := t.entries[order]; ok {
			return existing, nil
		}
		t.entries[order] = d
		return d, nil
	})
	if err != nil {
		return nil, fmt.Errorf("derivative table order %d: %w", order, err)
	}
	d, ok := v.(symbolic.Expr)
	if !ok {
		return nil, fmt.Errorf("derivative table order %d: unexpected %T", order, v)
	}
	return d, nil
}

func (t *DerivativeTable) lookup(order int) (symbolic.Expr, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	d, ok := t.entries[order]
	return d, ok
}

// Len returns the number of memoized orders.
func (t *DerivativeTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Orders returns the memoized orders, ascending.
func (t *DerivativeTable) Orders() []int {
	t.mu.RLock()
	out := make([]int, 0, len(t.entries))
	for k := range t.entries {
		out = append(out, k)
	}
	t.mu.RUnlock()
	sort.Ints(out)
	return out
}
