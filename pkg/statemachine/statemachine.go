package statemachine

import (
	"sync"
)

// StateFn represents a state function following Rob Pike's pattern: it does
// the work of its state and returns the next one, or nil when done.
type StateFn[T any] func(*T) StateFn[T]

// StateMachine drives state functions over an entity. The current state can
// be inspected concurrently while the machine runs.
type StateMachine[T any] struct {
	entity  *T
	stateFn StateFn[T]
	steps   int
	mutex   sync.RWMutex
}

// NewStateMachine creates a new state machine for the given entity
func NewStateMachine[T any](entity *T, initialStateFn StateFn[T]) *StateMachine[T] {
	return &StateMachine[T]{
		entity:  entity,
		stateFn: initialStateFn,
	}
}

// Step runs the current state function once and moves to the state it
// returns. It reports false once the machine reached the nil state.
func (sm *StateMachine[T]) Step() bool {
	sm.mutex.RLock()
	current := sm.stateFn
	sm.mutex.RUnlock()

	if current == nil {
		return false
	}

	next := current(sm.entity)

	sm.mutex.Lock()
	sm.stateFn = next
	sm.steps++
	sm.mutex.Unlock()
	return next != nil
}

// Run steps the machine until a state function returns nil.
func (sm *StateMachine[T]) Run() {
	for sm.Step() {
	}
}

// GetCurrentState returns the current state function (thread-safe)
func (sm *StateMachine[T]) GetCurrentState() StateFn[T] {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()
	return sm.stateFn
}

// SetState replaces the current state without running it.
func (sm *StateMachine[T]) SetState(stateFn StateFn[T]) {
	sm.mutex.Lock()
	sm.stateFn = stateFn
	sm.mutex.Unlock()
}

// Steps returns how many state functions have run.
func (sm *StateMachine[T]) Steps() int {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()
	return sm.steps
}
