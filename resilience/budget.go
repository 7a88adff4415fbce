package resilience

import (
	"fmt"
	"sync"
)

// CostBudget tracks cumulative estimated spend against an optional
// immutable ceiling.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - The ceiling is fixed at construction; Reset zeroes accumulated
//   spend without touching it.
type CostBudget struct {
	mu      sync.Mutex
	ceiling float64
	bounded bool
	spent   float64
}

// NewCostBudget creates a budget with the given ceiling. A ceiling of
// zero or less means unbounded spend.
func NewCostBudget(ceiling float64) *CostBudget {
	return &CostBudget{
		ceiling: ceiling,
		bounded: ceiling > 0,
	}
}

// Check returns ErrBudgetExceeded if charging cost would push spend
// past the ceiling. It never mutates accumulated spend.
func (b *CostBudget) Check(cost float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.bounded && b.spent+cost > b.ceiling {
		return fmt.Errorf("%w: spent %.4f + estimated %.4f exceeds ceiling %.4f",
			ErrBudgetExceeded, b.spent, cost, b.ceiling)
	}
	return nil
}

// Charge adds cost to accumulated spend.
func (b *CostBudget) Charge(cost float64) {
	if cost <= 0 {
		return
	}
	b.mu.Lock()
	b.spent += cost
	b.mu.Unlock()
}

// Spent returns accumulated spend.
func (b *CostBudget) Spent() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.spent
}

// Remaining returns ceiling minus spend, floored at zero. The second
// return is false when the budget is unbounded.
func (b *CostBudget) Remaining() (float64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.bounded {
		return 0, false
	}
	remaining := b.ceiling - b.spent
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

// Reset zeroes accumulated spend.
func (b *CostBudget) Reset() {
	b.mu.Lock()
	b.spent = 0
	b.mu.Unlock()
}
