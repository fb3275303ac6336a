package mapreduce

// ReduceListPairs folds a list of collisions into a single value tagged with
// the color of the reducer's shared map. See FoldPairs.
func (r *Reducer) ReduceListPairs(pairs []*Pair) (Value, error) {
	return FoldPairs(pairs, r.shared.Color())
}

// FoldPairs XORs the payload bytes of the two elements of every pair, then
// XORs all of those results together. Byte strings are cut to the shorter
// operand at every step, so the result is as long as the shortest payload
// taking part.
func FoldPairs(pairs []*Pair, color int) (Value, error) {
	if len(pairs) == 0 {
		return Value{}, ErrEmptyFold
	}

	folded := make([][]byte, len(pairs))
	for i, p := range pairs {
		folded[i] = xorBytes([]byte(p.First.Payload), []byte(p.Second.Payload))
	}

	res := make([]byte, len(folded[0]))
	for _, b := range folded {
		res = xorBytes(res, b)
	}

	return NewValue(string(res), color), nil
}

func xorBytes(a, b []byte) []byte {
	n := min(len(a), len(b))

	res := make([]byte, n)
	for i := range n {
		res[i] = a[i] ^ b[i]
	}

	return res
}
