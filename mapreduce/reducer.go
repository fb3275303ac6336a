package mapreduce

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/tymbaca/sharedkeys/pkg/caller"
	"github.com/tymbaca/sharedkeys/pkg/tracer"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Reducer consumes the output of exactly one finished Mapper. Shared keys are
// grouped by the pair of values they collided with, unshared keys by value.
type Reducer struct {
	id       int
	shared   SharedMap
	unshared UnsharedMap

	reducedShared   ReducedSharedMap
	reducedUnshared ReducedUnsharedMap

	state    WorkerState
	stats    Stats
	counters *Counters
}

// NewReducer takes over the maps of a mapper that has finished its run.
func NewReducer(m *Mapper, counters *Counters) (*Reducer, error) {
	if m.State() != StateDone {
		return nil, fmt.Errorf("reducer %d: mapper is %s: %w", m.ID(), m.State(), ErrMapperNotDone)
	}

	return newReducer(m.ID(), m.Shared(), m.Unshared(), counters), nil
}

func newReducer(id int, shared SharedMap, unshared UnsharedMap, counters *Counters) *Reducer {
	if counters == nil {
		counters = &Counters{}
	}

	return &Reducer{
		id:              id,
		shared:          shared,
		unshared:        unshared,
		reducedShared:   NewHashedMap[Pair, []Key](shared.Color(), shared.Len()),
		reducedUnshared: NewHashedMap[Value, []Key](unshared.Color(), unshared.Len()),
		counters:        counters,
	}
}

func (r *Reducer) ID() int { return r.id }

func (r *Reducer) State() WorkerState { return r.state }

func (r *Reducer) Stats() *Stats { return &r.stats }

func (r *Reducer) ReducedShared() ReducedSharedMap { return r.reducedShared }

func (r *Reducer) ReducedUnshared() ReducedUnsharedMap { return r.reducedUnshared }

// Run empties both input maps. Run must be called once.
func (r *Reducer) Run(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, caller.Name(), trace.WithAttributes(attribute.Int("id", r.id)))
	defer span.End()

	r.state = StateDraining
	slog.Info("reducer: reducing", "id", r.id, "shared", r.shared.Len(), "unshared", r.unshared.Len())

	r.reduceShared(ctx)
	r.reduceUnshared(ctx)

	r.state = StateDone
	slog.Info("reducer: done", "id", r.id,
		"reducedShared", r.reducedShared.Len(), "reducedUnshared", r.reducedUnshared.Len())

	return nil
}

func (r *Reducer) reduceShared(ctx context.Context) {
	for {
		start := time.Now()
		key, list, ok := r.shared.Front()
		if !ok {
			return
		}
		r.stats.ObserveAccess(time.Since(start))

		// reducePair prunes list.Pairs but always keeps the pair it was
		// called with, which stays first.
		for len(list.Pairs) > 0 {
			pair := list.Pairs[0]
			keys := r.reducePair(pair)

			start = time.Now()
			replaced := r.reducedShared.Put(*pair, keys)
			r.stats.ObserveWrite(time.Since(start))

			if replaced {
				slog.WarnContext(ctx, "reducer: pair reduced twice", "id", r.id, "pair", pair)
			} else {
				r.counters.ReducedShared.Add(1)
			}

			list.Pairs[0] = nil
			list.Pairs = list.Pairs[1:]
		}

		r.shared.Delete(key)
	}
}

// reducePair collects, without duplicates, the keys of every bucket holding
// a pair equal to pair, and removes those equal pairs from their buckets.
// pair itself is left in place for the caller to remove.
func (r *Reducer) reducePair(pair *Pair) []Key {
	var keys []Key

	for key, list := range r.shared.All() {
		start := time.Now()
		kept := list.Pairs[:0]
		for _, p := range list.Pairs {
			if !p.Equal(*pair) {
				kept = append(kept, p)
				continue
			}

			if !slices.Contains(keys, key) {
				keys = append(keys, key)
			}

			if p == pair {
				kept = append(kept, p)
			}
		}

		clear(list.Pairs[len(kept):])
		list.Pairs = kept
		r.stats.ObserveAccess(time.Since(start))
	}

	return keys
}

// reduceUnshared pops every entry and groups it with the remaining entries
// holding an equal value. An entry with no equal value left behind it is
// dropped, so the outcome depends on the order of the map.
func (r *Reducer) reduceUnshared(ctx context.Context) {
	for {
		start := time.Now()
		key, val, ok := r.unshared.PopFront()
		if !ok {
			return
		}
		r.stats.ObserveAccess(time.Since(start))

		if !r.containsValue(val) {
			r.counters.Dropped.Add(1)
			continue
		}

		keys := r.reduceMatchingValues(key, val)

		start = time.Now()
		replaced := r.reducedUnshared.Put(val, keys)
		r.stats.ObserveWrite(time.Since(start))

		if replaced {
			slog.DebugContext(ctx, "reducer: value regrouped", "id", r.id, "value", val, "keys", keys)
		} else {
			r.counters.ReducedUnshared.Add(1)
		}
	}
}

func (r *Reducer) containsValue(val Value) bool {
	for _, v := range r.unshared.All() {
		if v.Equal(val) {
			return true
		}
	}

	return false
}

func (r *Reducer) reduceMatchingValues(key Key, val Value) []Key {
	keys := []Key{key}

	for k, v := range r.unshared.All() {
		start := time.Now()
		equal := v.Equal(val)
		r.stats.ObserveAccess(time.Since(start))

		if equal {
			keys = append(keys, k)
		}
	}

	return keys
}
