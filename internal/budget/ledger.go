// Package budget tracks metered upstream units consumed by a single run.
package budget

import (
	"errors"
	"sync"
)

// ErrBudgetExhausted is returned by callers that stop because the ledger denied a reservation
var ErrBudgetExhausted = errors.New("run budget exhausted")

// Ledger counts consumed units against a ceiling. It never calls the network.
// A zero or negative max means the run may not spend anything.
type Ledger struct {
	consumed int
	max      int
	mu       sync.Mutex
}

// NewLedger creates a ledger with the given ceiling
func NewLedger(maxUnits int) *Ledger {
	return &Ledger{max: maxUnits}
}

// CanAfford reports whether a call costing units would fit without reserving anything
func (l *Ledger) CanAfford(units int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fits(units)
}

// Reserve books units ahead of a call. It returns false, and books nothing,
// when the call would take consumed past the ceiling.
func (l *Ledger) Reserve(units int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.fits(units) {
		return false
	}
	l.consumed += units
	return true
}

// Settle replaces a reservation with what the upstream actually billed.
// Billed may exceed the reservation; consumed is never driven below zero.
func (l *Ledger) Settle(reserved, billed int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.consumed += billed - reserved
	if l.consumed < 0 {
		l.consumed = 0
	}
}

// Consumed returns the units spent so far
func (l *Ledger) Consumed() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.consumed
}

// Max returns the ceiling
func (l *Ledger) Max() int {
	return l.max
}

// Remaining returns the units left before the ceiling
func (l *Ledger) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.consumed >= l.max {
		return 0
	}
	return l.max - l.consumed
}

func (l *Ledger) fits(units int) bool {
	if l.consumed >= l.max {
		return false
	}
	return l.consumed+units <= l.max
}
