package optimistic

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct{ name string }

func names(items []*item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.name)
	}
	return out
}

func TestMove(t *testing.T) {
	src := []string{"A", "B", "C", "D"}

	assert.Equal(t, []string{"D", "A", "B", "C"}, Move(src, 3, 0))
	assert.Equal(t, []string{"B", "C", "A", "D"}, Move(src, 0, 2))
	assert.Equal(t, []string{"A", "B", "C", "D"}, Move(src, 1, 9))
	assert.Equal(t, []string{"A", "B", "C", "D"}, src)
}

func TestRunRevertsToOriginalElements(t *testing.T) {
	a, b, c := &item{"A"}, &item{"B"}, &item{"C"}
	list := []*item{a, b, c}
	var seen []string

	err := Run(context.Background(), &list, CloneSlice[*item], func(cur []*item) []*item {
		return Move(cur, 2, 0)
	}, func(ctx context.Context, optimistic []*item) error {
		seen = names(optimistic)
		return errors.New("rejected")
	})

	require.Error(t, err)
	assert.Equal(t, []string{"C", "A", "B"}, seen)
	require.Len(t, list, 3)
	assert.Same(t, a, list[0])
	assert.Same(t, b, list[1])
	assert.Same(t, c, list[2])
}

func TestRunKeepsCommittedState(t *testing.T) {
	list := []*item{{"A"}, {"B"}, {"C"}}

	err := Run(context.Background(), &list, CloneSlice[*item], func(cur []*item) []*item {
		return Move(cur, 2, 0)
	}, func(context.Context, []*item) error { return nil })

	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A", "B"}, names(list))
}

func TestRevertAfterCommitIsNoop(t *testing.T) {
	state := 1
	txn := Begin(&state, func(v int) int { return v })
	txn.Apply(func(v int) int { return v + 1 })
	txn.Commit()
	txn.Revert()
	assert.Equal(t, 2, state)
}
