// Package state provides named, mutex-guarded cells of shared process state.
//
// A Cell is the capability handed to a jsonrpc.Request at registration time
// for each state parameter. Invocations receive the *Cell itself rather than a
// value decoded from the caller's JSON, so every read and write goes through
// the cell's lock and concurrent invocations never race on the shared value.
//
//	y := state.NewCell("global_y", 123)
//	y.Load()                                  // 123
//	y.Update(func(v int) int { return v + 1 }) // 124
package state

import (
	"fmt"
	"sync"
)

// Cell holds a single value of type T shared between invocations.
//
// The zero value is not usable; create cells with NewCell.
// Cell is safe for concurrent use by multiple goroutines.
type Cell[T any] struct {
	name string

	mu    sync.RWMutex
	value T
}

// NewCell creates a cell named name holding initial.
func NewCell[T any](name string, initial T) *Cell[T] {
	return &Cell[T]{name: name, value: initial}
}

// Name returns the name the cell was created with.
func (c *Cell[T]) Name() string {
	return c.name
}

// Load returns the current value.
func (c *Cell[T]) Load() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Store replaces the current value.
func (c *Cell[T]) Store(v T) {
	c.mu.Lock()
	c.value = v
	c.mu.Unlock()
}

// Swap replaces the current value and returns the previous one.
func (c *Cell[T]) Swap(v T) T {
	c.mu.Lock()
	defer c.mu.Unlock()
	old := c.value
	c.value = v
	return old
}

// Update applies fn to the current value under the write lock and stores the
// result, which is also returned. fn must not call back into the cell.
func (c *Cell[T]) Update(fn func(T) T) T {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = fn(c.value)
	return c.value
}

func (c *Cell[T]) String() string {
	return fmt.Sprintf("%s=%v", c.name, c.Load())
}
