// Package ratelimit caps how many generative-model requests the pipeline
// may issue per day.
package ratelimit

import (
	"sync"
	"time"
)

type Budget struct {
	mu      sync.Mutex
	used    int
	max     int // 0 = unlimited
	resetAt time.Time
}

func NewBudget(max int) *Budget {
	return &Budget{
		max:     max,
		resetAt: time.Now().Add(24 * time.Hour),
	}
}

// CanRequest reports whether another model request fits the budget.
func (b *Budget) CanRequest() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.checkReset()
	return b.max <= 0 || b.used < b.max
}

// RecordRequest counts one issued model request.
func (b *Budget) RecordRequest() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.checkReset()
	b.used++
}

// Usage returns the used and maximum request counts.
func (b *Budget) Usage() (used, max int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.checkReset()
	return b.used, b.max
}

func (b *Budget) checkReset() {
	if time.Now().After(b.resetAt) {
		b.used = 0
		b.resetAt = time.Now().Add(24 * time.Hour)
	}
}
