// Package bank holds the player's credit balance. The wallet is the single
// spending gate: every purchase goes through TrySpend, so the balance can
// never be driven negative no matter how many systems touch it concurrently.
package bank

import (
	"fmt"
	"sync"
)

// Wallet tracks a single credit balance.
// Invariant: balance >= 0.
type Wallet struct {
	mu      sync.Mutex
	balance int
}

// NewWallet returns a wallet holding the given starting balance.
//
// Precondition:  initial >= 0 (panics otherwise).
// Postcondition: Balance() == initial.
func NewWallet(initial int) *Wallet {
	if initial < 0 {
		panic(fmt.Sprintf("bank: NewWallet: initial balance must be >= 0, got %d", initial))
	}
	return &Wallet{balance: initial}
}

// Balance returns the current credit balance.
func (w *Wallet) Balance() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balance
}

// SetBalance replaces the balance outright. Restores from persisted data use
// this; gameplay goes through TrySpend and Deposit.
//
// Postcondition: on success Balance() == balance; returns error if balance < 0.
func (w *Wallet) SetBalance(balance int) error {
	if balance < 0 {
		return fmt.Errorf("bank: Wallet.SetBalance: balance must be >= 0, got %d", balance)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.balance = balance
	return nil
}

// TrySpend atomically checks the balance and deducts amount. It reports
// whether the deduction happened; on false the balance is unchanged.
//
// Precondition:  amount >= 0 (panics otherwise). Zero-cost purchases are
// allowed and always succeed.
// Postcondition: result implies the balance decreased by exactly amount.
func (w *Wallet) TrySpend(amount int) bool {
	if amount < 0 {
		panic(fmt.Sprintf("bank: Wallet.TrySpend: amount must be >= 0, got %d", amount))
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.balance < amount {
		return false
	}
	w.balance -= amount
	return true
}

// Deposit adds amount to the balance and returns the new balance.
//
// Precondition:  amount >= 0 (panics otherwise).
func (w *Wallet) Deposit(amount int) int {
	if amount < 0 {
		panic(fmt.Sprintf("bank: Wallet.Deposit: amount must be >= 0, got %d", amount))
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.balance += amount
	return w.balance
}
