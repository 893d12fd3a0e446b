package statemachine

import (
	"fmt"
	"sync"
)

// StateFn represents a state function following Rob Pike's pattern: the
// states are the functions themselves, and each returns the next state.
type StateFn[T any] func(*T) StateFn[T]

// StateMachine is a small thread-safe wrapper around a StateFn chain.
type StateMachine[T any] struct {
	entity  *T
	stateFn StateFn[T]
	mutex   sync.RWMutex
}

// New creates a state machine for the given entity starting at initial.
func New[T any](entity *T, initial StateFn[T]) *StateMachine[T] {
	return &StateMachine[T]{
		entity:  entity,
		stateFn: initial,
	}
}

// Dispatch sets the given state as current and executes it once,
// transitioning to whatever it returns.
func (sm *StateMachine[T]) Dispatch(stateFn StateFn[T]) {
	sm.mutex.Lock()
	sm.stateFn = stateFn
	sm.mutex.Unlock()

	if stateFn == nil {
		return
	}

	next := stateFn(sm.entity)

	sm.mutex.Lock()
	sm.stateFn = next
	sm.mutex.Unlock()
}

// Current returns the current state function.
func (sm *StateMachine[T]) Current() StateFn[T] {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()
	return sm.stateFn
}

// SetState replaces the current state function without executing it.
func (sm *StateMachine[T]) SetState(stateFn StateFn[T]) {
	sm.mutex.Lock()
	sm.stateFn = stateFn
	sm.mutex.Unlock()
}

// Is reports whether the machine currently sits in the given state. State
// functions have no identity beyond their address, so compare the printed
// pointers.
func (sm *StateMachine[T]) Is(stateFn StateFn[T]) bool {
	return Same(sm.Current(), stateFn)
}

// Same reports whether two state functions are the same state.
func Same[T any](a, b StateFn[T]) bool {
	return fmt.Sprintf("%p", a) == fmt.Sprintf("%p", b)
}
