package resilience

import (
	"errors"
	"sync"
	"testing"
)

func TestCostBudget_CheckAndCharge(t *testing.T) {
	b := NewCostBudget(10.0)

	// First call estimated at 9.0 fits.
	if err := b.Check(9.0); err != nil {
		t.Fatalf("Check(9.0) on empty budget: %v", err)
	}
	b.Charge(9.0)

	// 9.0 + 2.0 exceeds 10.0.
	if err := b.Check(2.0); !errors.Is(err, ErrBudgetExceeded) {
		t.Fatalf("Check(2.0) with 9.0 spent: got %v, want ErrBudgetExceeded", err)
	}
	// A rejected check leaves spend unchanged.
	if got := b.Spent(); got != 9.0 {
		t.Fatalf("Spent = %v after rejected check, want 9.0", got)
	}

	// A smaller call still fits exactly.
	if err := b.Check(1.0); err != nil {
		t.Fatalf("Check(1.0): %v", err)
	}
}

func TestCostBudget_Unbounded(t *testing.T) {
	for _, ceiling := range []float64{0, -1} {
		b := NewCostBudget(ceiling)
		if err := b.Check(1e12); err != nil {
			t.Fatalf("ceiling %v: Check rejected: %v", ceiling, err)
		}
		b.Charge(1e12)
		if _, ok := b.Remaining(); ok {
			t.Fatalf("ceiling %v: Remaining applicable on unbounded budget", ceiling)
		}
	}
}

func TestCostBudget_Remaining(t *testing.T) {
	b := NewCostBudget(5.0)

	got, ok := b.Remaining()
	if !ok || got != 5.0 {
		t.Fatalf("Remaining = %v,%v, want 5.0,true", got, ok)
	}

	b.Charge(3.0)
	got, _ = b.Remaining()
	if got != 2.0 {
		t.Fatalf("Remaining = %v, want 2.0", got)
	}

	// Overspend floors at zero.
	b.Charge(10.0)
	got, _ = b.Remaining()
	if got != 0 {
		t.Fatalf("Remaining = %v, want 0", got)
	}
}

func TestCostBudget_Reset(t *testing.T) {
	b := NewCostBudget(5.0)
	b.Charge(5.0)
	if err := b.Check(1.0); err == nil {
		t.Fatal("exhausted budget accepted a charge")
	}

	b.Reset()
	if got := b.Spent(); got != 0 {
		t.Fatalf("Spent = %v after Reset, want 0", got)
	}
	// Ceiling survives Reset.
	if err := b.Check(6.0); !errors.Is(err, ErrBudgetExceeded) {
		t.Fatalf("Check(6.0) after Reset: got %v, want ErrBudgetExceeded", err)
	}
}

func TestCostBudget_IgnoresNonPositiveCharges(t *testing.T) {
	b := NewCostBudget(5.0)
	b.Charge(0)
	b.Charge(-3.0)
	if got := b.Spent(); got != 0 {
		t.Fatalf("Spent = %v, want 0", got)
	}
}

func TestCostBudget_Concurrent(t *testing.T) {
	b := NewCostBudget(0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Charge(0.5)
		}()
	}
	wg.Wait()

	if got := b.Spent(); got != 25.0 {
		t.Fatalf("Spent = %v, want 25.0", got)
	}
}
