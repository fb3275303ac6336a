package mapreduce

import "iter"

const _compactMin = 32

type slot[K comparable, V any] struct {
	key  K
	val  V
	gone bool
}

// table is an insertion ordered map that can be drained from the front while
// other entries are looked up and removed. Removed entries are tombstoned and
// squeezed out later, never while an All iteration is running, so deleting
// the entry being visited is always safe.
type table[K comparable, V any] struct {
	slots     []slot[K, V]
	index     map[K]int
	head      int
	iterating int
}

func newTable[K comparable, V any](capacity int) *table[K, V] {
	if capacity < 0 {
		capacity = 0
	}

	return &table[K, V]{
		slots: make([]slot[K, V], 0, capacity),
		index: make(map[K]int, capacity),
	}
}

func (t *table[K, V]) Len() int {
	return len(t.index)
}

func (t *table[K, V]) Get(key K) (V, bool) {
	i, ok := t.index[key]
	if !ok {
		var zero V
		return zero, false
	}

	return t.slots[i].val, true
}

func (t *table[K, V]) Has(key K) bool {
	_, ok := t.index[key]
	return ok
}

// Put replaces the value in place when the key exists, so the entry keeps
// its position.
func (t *table[K, V]) Put(key K, val V) {
	if i, ok := t.index[key]; ok {
		t.slots[i].val = val
		return
	}

	t.index[key] = len(t.slots)
	t.slots = append(t.slots, slot[K, V]{key: key, val: val})
}

func (t *table[K, V]) Delete(key K) bool {
	i, ok := t.index[key]
	if !ok {
		return false
	}

	t.slots[i] = slot[K, V]{gone: true}
	delete(t.index, key)
	t.skipGone()
	t.maybeCompact()

	return true
}

// Front returns the oldest live entry without removing it.
func (t *table[K, V]) Front() (key K, val V, ok bool) {
	t.skipGone()
	if t.head >= len(t.slots) {
		return key, val, false
	}

	s := t.slots[t.head]
	return s.key, s.val, true
}

func (t *table[K, V]) PopFront() (key K, val V, ok bool) {
	key, val, ok = t.Front()
	if ok {
		t.Delete(key)
	}

	return key, val, ok
}

// All yields live entries in insertion order. The loop body may delete any
// entry, including the current one.
func (t *table[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		t.iterating++
		defer func() {
			t.iterating--
			t.maybeCompact()
		}()

		for i := t.head; i < len(t.slots); i++ {
			s := t.slots[i]
			if s.gone {
				continue
			}

			if !yield(s.key, s.val) {
				return
			}
		}
	}
}

func (t *table[K, V]) clone(cloneVal func(V) V) *table[K, V] {
	c := newTable[K, V](t.Len())
	for k, v := range t.All() {
		c.Put(k, cloneVal(v))
	}

	return c
}

func (t *table[K, V]) skipGone() {
	for t.head < len(t.slots) && t.slots[t.head].gone {
		t.head++
	}
}

func (t *table[K, V]) maybeCompact() {
	if t.iterating > 0 {
		return
	}

	if len(t.index) == 0 {
		t.slots = t.slots[:0]
		t.head = 0
		return
	}

	dead := len(t.slots) - len(t.index)
	if dead < _compactMin || dead < len(t.slots)/2 {
		return
	}

	live := make([]slot[K, V], 0, len(t.index))
	for _, s := range t.slots[t.head:] {
		if s.gone {
			continue
		}

		t.index[s.key] = len(live)
		live = append(live, s)
	}

	t.slots = live
	t.head = 0
}
