package mapreduce

import (
	"encoding/binary"
	"fmt"

	"github.com/spaolacci/murmur3"
)

// Key identifies a record inside a partition.
type Key int64

// Value is a record payload tagged with the color of the partition it came
// from. Two values are equal when their payloads are equal; the color is
// provenance only.
type Value struct {
	Payload string
	Color   int
}

func NewValue(payload string, color int) Value {
	return Value{Payload: payload, Color: color}
}

// SetPayload rewrites the payload in place, used by scan-and-rewrite passes.
func (v *Value) SetPayload(payload string) *Value {
	v.Payload = payload
	return v
}

func (v Value) Equal(other Value) bool {
	return v.Payload == other.Payload
}

func (v Value) Hash() uint64 {
	return murmur3.Sum64([]byte(v.Payload))
}

func (v Value) String() string {
	return v.Payload
}

// Pair is an unordered couple of values describing one collision of a key
// between two partitions.
type Pair struct {
	First  Value
	Second Value
}

func NewPair(first, second Value) *Pair {
	return &Pair{First: first, Second: second}
}

// Equal reports whether both pairs hold the same two values in either order.
func (p Pair) Equal(other Pair) bool {
	return (p.First.Equal(other.First) && p.Second.Equal(other.Second)) ||
		(p.First.Equal(other.Second) && p.Second.Equal(other.First))
}

// Hash does not depend on the order of the elements, so Pair(a, b) and
// Pair(b, a) land in the same bucket.
func (p Pair) Hash() uint64 {
	lo, hi := p.First.Hash(), p.Second.Hash()
	if lo > hi {
		lo, hi = hi, lo
	}

	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], lo)
	binary.LittleEndian.PutUint64(buf[8:], hi)

	return murmur3.Sum64(buf[:])
}

func (p Pair) String() string {
	return fmt.Sprintf("( %s, %s )", p.First, p.Second)
}

// Permission is an access right stored in a partition's side table.
type Permission uint8

const (
	PermRead Permission = 1 << iota
	PermWrite

	PermReadWrite = PermRead | PermWrite
)

func (p Permission) String() string {
	switch p {
	case PermRead:
		return "READ"
	case PermWrite:
		return "WRITE"
	case PermReadWrite:
		return "READWRITE"
	default:
		return fmt.Sprintf("Permission(%d)", uint8(p))
	}
}

// PermTable maps user ids to their rights on a partition. The pipeline
// carries it along without looking inside.
type PermTable map[int32]Permission
