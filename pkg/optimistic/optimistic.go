// Package optimistic applies local changes ahead of a server round trip and
// restores the exact previous state when the round trip fails.
package optimistic

import (
	"context"
	"fmt"
)

// Txn is a single snapshot -> apply -> commit-or-revert cycle over *state.
type Txn[T any] struct {
	state    *T
	snapshot T
	open     bool
}

// Begin captures a snapshot of *state. clone must return a value that later
// mutations of *state cannot reach; for slices a shallow copy keeps element identity.
func Begin[T any](state *T, clone func(T) T) *Txn[T] {
	return &Txn[T]{state: state, snapshot: clone(*state), open: true}
}

// Apply replaces *state with mutate's result.
func (t *Txn[T]) Apply(mutate func(T) T) {
	if !t.open {
		return
	}
	*t.state = mutate(*t.state)
}

// Commit keeps the current state. The snapshot is released.
func (t *Txn[T]) Commit() {
	var zero T
	t.snapshot = zero
	t.open = false
}

// Revert restores the snapshot verbatim.
func (t *Txn[T]) Revert() {
	if !t.open {
		return
	}
	*t.state = t.snapshot
	t.Commit()
}

// Run applies mutate, then calls commit with the optimistic value. A commit
// error reverts *state and is returned wrapped.
func Run[T any](ctx context.Context, state *T, clone func(T) T, mutate func(T) T, commit func(context.Context, T) error) error {
	txn := Begin(state, clone)
	txn.Apply(mutate)
	if err := commit(ctx, *state); err != nil {
		txn.Revert()
		return fmt.Errorf("optimistic update reverted: %w", err)
	}
	txn.Commit()
	return nil
}

// CloneSlice copies the slice header and backing array but not the elements.
func CloneSlice[E any](s []E) []E {
	if s == nil {
		return nil
	}
	out := make([]E, len(s))
	copy(out, s)
	return out
}

// Move returns a new slice with the element at from relocated to to.
// Out of range indexes return an unchanged copy.
func Move[E any](s []E, from, to int) []E {
	out := CloneSlice(s)
	if from < 0 || from >= len(out) || to < 0 || to >= len(out) || from == to {
		return out
	}
	item := out[from]
	if from < to {
		copy(out[from:to], out[from+1:to+1])
	} else {
		copy(out[to+1:from+1], out[to:from])
	}
	out[to] = item
	return out
}
