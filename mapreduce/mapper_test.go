package mapreduce

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type kv struct {
	k Key
	v string
}

func newTestPartition(color int, entries ...kv) Partition {
	p := NewPartition(color, len(entries))
	for _, e := range entries {
		p.Put(e.k, NewValue(e.v, color))
	}

	return p
}

// records counts the records a mapper has sorted: every shared key stands
// for its driving record plus one matched record per pair.
func records(m *Mapper) int {
	n := m.Unshared().Len()
	for _, list := range m.Shared().All() {
		n += list.Len() + 1
	}

	return n
}

func TestMapperSortsKeys(t *testing.T) {
	p0 := newTestPartition(0, kv{1, "a"}, kv{2, "b"}, kv{3, "c"})
	p1 := newTestPartition(1, kv{2, "B"}, kv{4, "d"})
	p2 := newTestPartition(2, kv{2, "BB"}, kv{3, "C"}, kv{5, "e"})

	counters := &Counters{}
	m := NewMapper(0, []Partition{p0, p1, p2}, 4, 5, counters)
	require.Equal(t, StateReady, m.State())

	require.NoError(t, m.Run(context.Background()))
	require.Equal(t, StateDone, m.State())

	require.Equal(t, 4, m.Shared().Color())
	require.Equal(t, 5, m.Unshared().Color())

	require.Equal(t, []Key{2, 3}, keysOf(m.Shared()))
	require.Equal(t, []Key{1, 4, 5}, keysOf(m.Unshared()))

	list, ok := m.Shared().Get(2)
	require.True(t, ok)
	require.Len(t, list.Pairs, 2)
	// matched value first, driving value second
	require.Equal(t, Pair{NewValue("B", 1), NewValue("b", 0)}, *list.Pairs[0])
	require.Equal(t, Pair{NewValue("BB", 2), NewValue("b", 0)}, *list.Pairs[1])

	list, ok = m.Shared().Get(3)
	require.True(t, ok)
	require.Equal(t, []*Pair{{NewValue("C", 2), NewValue("c", 0)}}, list.Pairs)

	v, ok := m.Unshared().Get(4)
	require.True(t, ok)
	require.Equal(t, NewValue("d", 1), v)

	// every partition was consumed
	for _, p := range []Partition{p0, p1, p2} {
		require.Equal(t, 0, p.Len())
	}

	require.Equal(t, 8, records(m))
	require.EqualValues(t, 8, counters.Records.Load())
	require.EqualValues(t, 3, counters.Shared.Load())
	require.EqualValues(t, 3, counters.Unshared.Load())

	require.Positive(t, m.Stats().Accessed())
	require.Positive(t, m.Stats().Written())
}

func TestMapperRecordAccounting(t *testing.T) {
	var parts []Partition
	total := 0
	for color := range 4 {
		var entries []kv
		for i := range 10 {
			// keys 0..9 everywhere, plus keys private to each partition
			entries = append(entries, kv{Key(i), "v"}, kv{Key(100*(color+1) + i), "w"})
		}
		total += len(entries)
		parts = append(parts, newTestPartition(color, entries...))
	}

	m := NewMapper(0, parts, 4, 5, nil)
	require.NoError(t, m.Run(context.Background()))

	require.Equal(t, total, records(m))
	require.Equal(t, 10, m.Shared().Len())
	require.Equal(t, 40, m.Unshared().Len())

	for _, list := range m.Shared().All() {
		require.Len(t, list.Pairs, 3)
	}
}

func TestMapperEmptyQueue(t *testing.T) {
	m := NewMapper(3, nil, 4, 5, nil)
	require.NoError(t, m.Run(context.Background()))

	require.Equal(t, StateDone, m.State())
	require.Equal(t, 0, m.Shared().Len())
	require.Equal(t, 0, m.Unshared().Len())
	require.Zero(t, m.Stats().AvgAccess())
	require.Zero(t, m.Stats().AvgWrite())
	require.Zero(t, m.Stats().Accessed())
	require.Zero(t, m.Stats().Written())
}

func TestMapperNilPartition(t *testing.T) {
	p0 := newTestPartition(0, kv{1, "a"})

	m := NewMapper(1, []Partition{p0, nil}, 4, 5, nil)
	err := m.Run(context.Background())
	require.ErrorIs(t, err, ErrNilPartition)
	require.NotEqual(t, StateDone, m.State())

	_, err = NewReducer(m, nil)
	require.ErrorIs(t, err, ErrMapperNotDone)
}
