package bank_test

import (
	"sync"
	"testing"

	"pgregory.net/rapid"

	"github.com/gunbench/gunbench/internal/game/bank"
)

// TestWallet_TrySpend_DeductsOnSuccess verifies that a covered spend
// succeeds and reduces the balance.
func TestWallet_TrySpend_DeductsOnSuccess(t *testing.T) {
	w := bank.NewWallet(100)
	if !w.TrySpend(60) {
		t.Fatal("expected spend of 60 from 100 to succeed")
	}
	if got := w.Balance(); got != 40 {
		t.Fatalf("expected balance 40, got %d", got)
	}
}

// TestWallet_TrySpend_RefusesOverdraft verifies that an uncovered spend
// fails and leaves the balance unchanged.
func TestWallet_TrySpend_RefusesOverdraft(t *testing.T) {
	w := bank.NewWallet(30)
	if w.TrySpend(31) {
		t.Fatal("expected spend of 31 from 30 to fail")
	}
	if got := w.Balance(); got != 30 {
		t.Fatalf("expected balance unchanged at 30, got %d", got)
	}
}

// TestWallet_TrySpend_ZeroAlwaysSucceeds verifies that free purchases work
// even on an empty wallet.
func TestWallet_TrySpend_ZeroAlwaysSucceeds(t *testing.T) {
	w := bank.NewWallet(0)
	if !w.TrySpend(0) {
		t.Fatal("expected zero-cost spend to succeed")
	}
}

// TestWallet_SetBalance_RejectsNegative verifies the invariant guard.
func TestWallet_SetBalance_RejectsNegative(t *testing.T) {
	w := bank.NewWallet(10)
	if err := w.SetBalance(-1); err == nil {
		t.Fatal("expected error setting negative balance, got nil")
	}
	if got := w.Balance(); got != 10 {
		t.Fatalf("expected balance unchanged at 10, got %d", got)
	}
	if err := w.SetBalance(250); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := w.Balance(); got != 250 {
		t.Fatalf("expected balance 250, got %d", got)
	}
}

// TestWallet_ConcurrentSpends_NeverOverdraw hammers TrySpend from many
// goroutines and checks that exactly the covered spends succeeded.
func TestWallet_ConcurrentSpends_NeverOverdraw(t *testing.T) {
	const (
		start    = 50
		spenders = 100
	)
	w := bank.NewWallet(start)
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < spenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if w.TrySpend(1) {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if wins != start {
		t.Fatalf("expected exactly %d successful spends, got %d", start, wins)
	}
	if got := w.Balance(); got != 0 {
		t.Fatalf("expected empty wallet, got %d", got)
	}
}

// TestProperty_Wallet_BalanceNeverNegative asserts the invariant across
// arbitrary spend/deposit sequences.
func TestProperty_Wallet_BalanceNeverNegative(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		w := bank.NewWallet(rapid.IntRange(0, 200).Draw(rt, "initial"))
		ops := rapid.IntRange(0, 20).Draw(rt, "ops")
		for i := 0; i < ops; i++ {
			if rapid.Bool().Draw(rt, "spend") {
				w.TrySpend(rapid.IntRange(0, 100).Draw(rt, "amount"))
			} else {
				w.Deposit(rapid.IntRange(0, 100).Draw(rt, "credit"))
			}
			if w.Balance() < 0 {
				rt.Fatalf("balance went negative: %d", w.Balance())
			}
		}
	})
}
