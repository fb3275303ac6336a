package mapreduce

import "iter"

// Hashed is implemented by keys that define their own equality, such as
// Value (payload only) and Pair (order independent).
type Hashed[K any] interface {
	Hash() uint64
	Equal(K) bool
}

type hashedEntry[K any, V any] struct {
	key K
	val V
}

// HashedMap is a colored, insertion ordered map keyed by Hashed values.
// Entries sharing a hash are told apart with Equal, so two keys considered
// equal never get two entries.
type HashedMap[K Hashed[K], V any] struct {
	color   int
	entries []hashedEntry[K, V]
	buckets map[uint64][]int
}

func NewHashedMap[K Hashed[K], V any](color, capacity int) *HashedMap[K, V] {
	if capacity < 0 {
		capacity = 0
	}

	return &HashedMap[K, V]{
		color:   color,
		entries: make([]hashedEntry[K, V], 0, capacity),
		buckets: make(map[uint64][]int, capacity),
	}
}

func (m *HashedMap[K, V]) Color() int { return m.color }

func (m *HashedMap[K, V]) Len() int { return len(m.entries) }

func (m *HashedMap[K, V]) find(key K) int {
	for _, i := range m.buckets[key.Hash()] {
		if m.entries[i].key.Equal(key) {
			return i
		}
	}

	return -1
}

func (m *HashedMap[K, V]) Contains(key K) bool {
	return m.find(key) >= 0
}

func (m *HashedMap[K, V]) Get(key K) (V, bool) {
	i := m.find(key)
	if i < 0 {
		var zero V
		return zero, false
	}

	return m.entries[i].val, true
}

// Put stores val under key. When an equal key is already present its value
// is replaced and the stored key is kept; Put reports whether that happened.
func (m *HashedMap[K, V]) Put(key K, val V) (replaced bool) {
	if i := m.find(key); i >= 0 {
		m.entries[i].val = val
		return true
	}

	h := key.Hash()
	m.buckets[h] = append(m.buckets[h], len(m.entries))
	m.entries = append(m.entries, hashedEntry[K, V]{key: key, val: val})

	return false
}

func (m *HashedMap[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, e := range m.entries {
			if !yield(e.key, e.val) {
				return
			}
		}
	}
}

// ReducedSharedMap groups the keys that collided with the same pair of values.
type ReducedSharedMap = *HashedMap[Pair, []Key]

// ReducedUnsharedMap groups the keys whose unshared values are equal.
type ReducedUnsharedMap = *HashedMap[Value, []Key]
