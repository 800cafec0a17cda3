// internal/hydration/hydration.go

// Package hydration is the drink reminder: a tick counter since the last
// drink and a saturating drink count.
package hydration

import (
	"fmt"
	"sync"
	"time"
)

const (
	// DefaultTickPeriod is the display scheduler period.
	DefaultTickPeriod = 30 * time.Millisecond
	// DefaultThreshold is 60 minutes of DefaultTickPeriod ticks.
	DefaultThreshold = 120000
	// MaxDrinks is the daily goal; the count saturates here.
	MaxDrinks = 8
)

// Timer is owned by the display loop. Drink and Reset may be called from
// the UI goroutine.
type Timer struct {
	mu        sync.Mutex
	threshold int
	period    time.Duration

	ticksSinceDrink int
	drinkCount      int
}

// New returns a timer due after threshold ticks of period each.
// Non-positive arguments fall back to the defaults.
func New(threshold int, period time.Duration) *Timer {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if period <= 0 {
		period = DefaultTickPeriod
	}
	return &Timer{threshold: threshold, period: period}
}

// Tick advances one scheduler period.
func (t *Timer) Tick() {
	t.mu.Lock()
	t.ticksSinceDrink++
	t.mu.Unlock()
}

// Drink acknowledges a drink: the idle counter restarts and the count
// goes up by one, never past MaxDrinks.
func (t *Timer) Drink() {
	t.mu.Lock()
	t.ticksSinceDrink = 0
	if t.drinkCount < MaxDrinks {
		t.drinkCount++
	}
	t.mu.Unlock()
}

// Reset zeroes the drink count only.
func (t *Timer) Reset() {
	t.mu.Lock()
	t.drinkCount = 0
	t.mu.Unlock()
}

// Due is true from the tick that reaches the threshold until the next Drink.
func (t *Timer) Due() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ticksSinceDrink >= t.threshold
}

// Remaining is the time left until Due, never negative.
func (t *Timer) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	left := t.threshold - t.ticksSinceDrink
	if left < 0 {
		left = 0
	}
	return time.Duration(left) * t.period
}

// Clock formats Remaining as mm:ss.
func (t *Timer) Clock() string {
	secs := int(t.Remaining() / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

func (t *Timer) Drinks() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.drinkCount
}

// Percent is progress toward MaxDrinks.
func (t *Timer) Percent() int {
	return t.Drinks() * 100 / MaxDrinks
}

func (t *Timer) Ticks() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ticksSinceDrink
}
