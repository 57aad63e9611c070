package race

import (
	"slices"
	"sync"
)

const (
	SLIDER_MIN   = 0   // Lowest tunable value.
	SLIDER_MAX   = 100 // Highest tunable value.
	SLIDER_START = 50  // Initial tunable value.
)

// Panel is the live control surface for the tunable values. It may be
// updated while a race runs; each execution reads a snapshot.
type Panel struct {
	Min int64
	Max int64

	mutex  sync.RWMutex
	values []int64
}

// NewPanel creates a panel with slots tunables at SLIDER_START.
func NewPanel(slots int) (panel *Panel) {
	panel = &Panel{
		Min:    SLIDER_MIN,
		Max:    SLIDER_MAX,
		values: make([]int64, slots),
	}

	for n := range panel.values {
		panel.values[n] = SLIDER_START
	}

	return
}

// Len returns the number of slots.
func (panel *Panel) Len() int {
	panel.mutex.RLock()
	defer panel.mutex.RUnlock()

	return len(panel.values)
}

func (panel *Panel) clamp(value int64) int64 {
	return min(max(value, panel.Min), panel.Max)
}

// Set sets a slot (0-based), clamped to [Min, Max].
func (panel *Panel) Set(slot int, value int64) (err error) {
	panel.mutex.Lock()
	defer panel.mutex.Unlock()

	if slot < 0 || slot >= len(panel.values) {
		err = ErrSlot(slot)
		return
	}

	panel.values[slot] = panel.clamp(value)
	return
}

// Nudge adds delta to a slot, clamped, and returns the new value.
func (panel *Panel) Nudge(slot int, delta int64) (value int64, err error) {
	panel.mutex.Lock()
	defer panel.mutex.Unlock()

	if slot < 0 || slot >= len(panel.values) {
		err = ErrSlot(slot)
		return
	}

	value = panel.clamp(panel.values[slot] + delta)
	panel.values[slot] = value
	return
}

// Value returns a slot's value.
func (panel *Panel) Value(slot int) (value int64, err error) {
	panel.mutex.RLock()
	defer panel.mutex.RUnlock()

	if slot < 0 || slot >= len(panel.values) {
		err = ErrSlot(slot)
		return
	}

	value = panel.values[slot]
	return
}

// Snapshot returns a copy of all values.
func (panel *Panel) Snapshot() []int64 {
	if panel == nil {
		return nil
	}

	panel.mutex.RLock()
	defer panel.mutex.RUnlock()

	return slices.Clone(panel.values)
}
