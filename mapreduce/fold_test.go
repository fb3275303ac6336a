package mapreduce

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFoldPairs(t *testing.T) {
	pairs := []*Pair{
		NewPair(NewValue("\x01\x02\x03", 0), NewValue("\x10\x20", 1)),
		NewPair(NewValue("\x0f\x0f\x0f", 0), NewValue("\x01\x01\x01", 2)),
	}

	got, err := FoldPairs(pairs, 6)
	require.NoError(t, err)
	require.Equal(t, NewValue("\x1f\x2c", 6), got)
}

func TestFoldPairsSingle(t *testing.T) {
	got, err := FoldPairs([]*Pair{NewPair(NewValue("abc", 0), NewValue("abc", 1))}, 0)
	require.NoError(t, err)
	require.Equal(t, "\x00\x00\x00", got.Payload)
}

func TestFoldPairsShortestWins(t *testing.T) {
	pairs := []*Pair{
		NewPair(NewValue("abcdef", 0), NewValue("ABCDEF", 0)),
		NewPair(NewValue("", 0), NewValue("xyz", 0)),
	}

	got, err := FoldPairs(pairs, 0)
	require.NoError(t, err)
	require.Empty(t, got.Payload)
}

func TestFoldPairsEmpty(t *testing.T) {
	_, err := FoldPairs(nil, 0)
	require.ErrorIs(t, err, ErrEmptyFold)
}

func TestReduceListPairsUsesSharedColor(t *testing.T) {
	x, y := NewValue("x", 0), NewValue("y", 1)
	shared := buildShared(8, map[Key][]*Pair{1: {NewPair(x, y)}}, 1)
	r := newReducer(0, shared, buildUnshared(9), nil)

	list, _ := shared.Get(1)
	got, err := r.ReduceListPairs(list.Pairs)
	require.NoError(t, err)
	require.Equal(t, NewValue(string([]byte{'x' ^ 'y'}), 8), got)
}
