package mapreduce

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tymbaca/sharedkeys/pkg/caller"
	"github.com/tymbaca/sharedkeys/pkg/tracer"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type WorkerState int

const (
	StateReady WorkerState = iota
	StateDraining
	StateDone
)

func (s WorkerState) String() string {
	switch s {
	case StateReady:
		return "READY"
	case StateDraining:
		return "DRAINING"
	case StateDone:
		return "DONE"
	default:
		return fmt.Sprintf("WorkerState(%d)", int(s))
	}
}

// Mapper drains its own queue of partitions and sorts every record into
// either the shared map, when the same key is present in another partition
// still waiting in the queue, or the unshared map.
//
// Only partitions of the mapper's own queue are searched. A key that also
// lives in a partition handed to another mapper is reported as unshared.
type Mapper struct {
	id       int
	queue    []Partition
	shared   SharedMap
	unshared UnsharedMap
	state    WorkerState
	stats    Stats
	counters *Counters
}

func NewMapper(id int, queue []Partition, sharedColor, unsharedColor int, counters *Counters) *Mapper {
	if counters == nil {
		counters = &Counters{}
	}

	records := 0
	for _, p := range queue {
		if p != nil {
			records += p.Len()
		}
	}

	return &Mapper{
		id:       id,
		queue:    queue,
		shared:   NewColoredMap[Key, *PairList](sharedColor, records/100),
		unshared: NewColoredMap[Key, Value](unsharedColor, records/100),
		counters: counters,
	}
}

func (m *Mapper) ID() int { return m.id }

func (m *Mapper) State() WorkerState { return m.state }

func (m *Mapper) Stats() *Stats { return &m.stats }

func (m *Mapper) Shared() SharedMap { return m.shared }

func (m *Mapper) Unshared() UnsharedMap { return m.unshared }

// Run consumes the whole queue. Partitions are emptied as they are
// processed. Run must be called once.
func (m *Mapper) Run(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, caller.Name(), trace.WithAttributes(attribute.Int("id", m.id)))
	defer span.End()

	m.state = StateDraining
	slog.Info("mapper: draining queue", "id", m.id, "partitions", len(m.queue))

	for len(m.queue) > 0 {
		part := m.queue[0]
		m.queue[0] = nil
		m.queue = m.queue[1:]

		if part == nil {
			err := fmt.Errorf("mapper %d: %w", m.id, ErrNilPartition)
			span.RecordError(err)
			return err
		}

		m.drain(ctx, part)
	}

	m.state = StateDone
	slog.Info("mapper: done", "id", m.id, "shared", m.shared.Len(), "unshared", m.unshared.Len())

	return nil
}

func (m *Mapper) drain(ctx context.Context, part Partition) {
	slog.DebugContext(ctx, "mapper: draining partition", "id", m.id, "color", part.Color(), "records", part.Len())

	for key, val, ok := part.Front(); ok; key, val, ok = part.Front() {
		if !m.findMatchAndRemove(key, val) {
			start := time.Now()
			m.unshared.Put(key, val)
			m.stats.ObserveWrite(time.Since(start))
			m.counters.Unshared.Add(1)
		}

		part.Delete(key)
		m.counters.Records.Add(1)
	}
}

// findMatchAndRemove looks the key up in every partition left in the queue.
// Each hit becomes a Pair in the shared map and is removed from the
// partition it was found in.
func (m *Mapper) findMatchAndRemove(key Key, val Value) bool {
	matched := false

	for _, other := range m.queue {
		if other == nil {
			continue
		}

		start := time.Now()
		otherVal, ok := other.Get(key)
		m.stats.ObserveAccess(time.Since(start))
		if !ok {
			continue
		}

		start = time.Now()
		list, ok := m.shared.Get(key)
		if !ok {
			list = &PairList{}
			m.shared.Put(key, list)
		}
		list.Pairs = append(list.Pairs, NewPair(otherVal, val))
		m.stats.ObserveWrite(time.Since(start))

		other.Delete(key)
		matched = true

		m.counters.Records.Add(1)
		m.counters.Shared.Add(1)
	}

	return matched
}
