package mapreduce

import "iter"

// ColoredMap is an ordered map tagged with the color of the partition it
// represents and, optionally, the partition's permission table.
type ColoredMap[K comparable, V any] struct {
	color int
	perms PermTable
	data  *table[K, V]
}

func NewColoredMap[K comparable, V any](color, capacity int) *ColoredMap[K, V] {
	return &ColoredMap[K, V]{
		color: color,
		data:  newTable[K, V](capacity),
	}
}

func (m *ColoredMap[K, V]) Color() int { return m.color }

func (m *ColoredMap[K, V]) Permissions() PermTable { return m.perms }

func (m *ColoredMap[K, V]) SetPermissions(perms PermTable) { m.perms = perms }

func (m *ColoredMap[K, V]) Len() int { return m.data.Len() }

func (m *ColoredMap[K, V]) Get(key K) (V, bool) { return m.data.Get(key) }

func (m *ColoredMap[K, V]) Has(key K) bool { return m.data.Has(key) }

func (m *ColoredMap[K, V]) Put(key K, val V) { m.data.Put(key, val) }

func (m *ColoredMap[K, V]) Delete(key K) bool { return m.data.Delete(key) }

func (m *ColoredMap[K, V]) Front() (K, V, bool) { return m.data.Front() }

func (m *ColoredMap[K, V]) PopFront() (K, V, bool) { return m.data.PopFront() }

func (m *ColoredMap[K, V]) All() iter.Seq2[K, V] { return m.data.All() }

// Clone copies the map, passing every value through cloneVal. A nil cloneVal
// copies values as they are.
func (m *ColoredMap[K, V]) Clone(cloneVal func(V) V) *ColoredMap[K, V] {
	if cloneVal == nil {
		cloneVal = func(v V) V { return v }
	}

	return &ColoredMap[K, V]{
		color: m.color,
		perms: m.perms,
		data:  m.data.clone(cloneVal),
	}
}

// Partition is one input map of records.
type Partition = *ColoredMap[Key, Value]

func NewPartition(color, capacity int) Partition {
	return NewColoredMap[Key, Value](color, capacity)
}

// PairList holds the collisions found for one key. It is shared by pointer
// so the reducer can prune it while it sits in a SharedMap.
type PairList struct {
	Pairs []*Pair
}

func (l *PairList) Len() int { return len(l.Pairs) }

func (l *PairList) clone() *PairList {
	pairs := make([]*Pair, len(l.Pairs))
	for i, p := range l.Pairs {
		cp := *p
		pairs[i] = &cp
	}

	return &PairList{Pairs: pairs}
}

// SharedMap maps a key to every collision found for it.
type SharedMap = *ColoredMap[Key, *PairList]

// UnsharedMap maps a key to its value when no collision was found for it.
type UnsharedMap = *ColoredMap[Key, Value]

// CloneShared returns a deep copy of a SharedMap, pairs included.
func CloneShared(m SharedMap) SharedMap {
	return m.Clone((*PairList).clone)
}
