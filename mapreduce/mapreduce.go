package mapreduce

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tymbaca/sharedkeys/pkg/caller"
	"github.com/tymbaca/sharedkeys/pkg/tracer"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNoWorkers     = errors.New("worker count must be positive")
	ErrNilPartition  = errors.New("nil partition in queue")
	ErrMapperNotDone = errors.New("mapper has not finished")
	ErrEmptyFold     = errors.New("no pairs to fold")
)

type Phase string

const (
	PhaseMap    Phase = "MAP"
	PhaseReduce Phase = "REDUCE"
)

type Config struct {
	// Workers is the number of mappers, and therefore of reducers.
	Workers int
}

type Option func(*Engine)

// WithCounters makes the engine count records into c instead of a private
// set of counters.
func WithCounters(c *Counters) Option {
	return func(e *Engine) {
		e.counters = c
	}
}

// Engine runs the map phase and then the reduce phase over a set of
// partitions. Every worker gets a fixed, contiguous slice of the input; a
// reducer only ever sees the output of the mapper with the same id.
type Engine struct {
	cfg      Config
	counters *Counters
}

func New(cfg Config, opts ...Option) (*Engine, error) {
	if cfg.Workers <= 0 {
		return nil, fmt.Errorf("create engine: %w", ErrNoWorkers)
	}

	e := &Engine{cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}

	if e.counters == nil {
		e.counters = &Counters{}
	}

	return e, nil
}

func (e *Engine) Counters() *Counters { return e.counters }

// Result holds the workers of a completed run. It is only produced when both
// phases finished without error.
type Result struct {
	Mappers       []*Mapper
	Reducers      []*Reducer
	MapElapsed    time.Duration
	ReduceElapsed time.Duration
}

// Run blocks until both phases are over. The partitions are consumed: they
// are all empty (or dropped as overflow) afterwards.
func (e *Engine) Run(ctx context.Context, maps []Partition) (*Result, error) {
	ctx, span := tracer.Start(ctx, caller.Name(), trace.WithAttributes(
		attribute.Int("workers", e.cfg.Workers),
		attribute.Int("partitions", len(maps)),
	))
	defer span.End()

	queues, err := Partition(maps, e.cfg.Workers)
	if err != nil {
		return nil, err
	}

	sharedColor := evenCeil(len(maps))
	mappers := make([]*Mapper, len(queues))
	for i, queue := range queues {
		mappers[i] = NewMapper(i, queue, sharedColor+i, sharedColor+i+1, e.counters)
	}

	mapElapsed, err := runPhase(ctx, PhaseMap, mappers)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	reducers := make([]*Reducer, len(mappers))
	for i, m := range mappers {
		reducers[i], err = NewReducer(m, e.counters)
		if err != nil {
			return nil, err
		}
	}

	reduceElapsed, err := runPhase(ctx, PhaseReduce, reducers)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	slog.Info("engine: run finished", "stats", e.counters.String())

	return &Result{
		Mappers:       mappers,
		Reducers:      reducers,
		MapElapsed:    mapElapsed,
		ReduceElapsed: reduceElapsed,
	}, nil
}

// Partition splits maps into workers contiguous slices of
// round(len(maps)/workers) maps each. Slots past the end of maps are left
// out of the last queues, and maps past the last full slice are not handed
// to anyone; both cases are logged as overflow.
func Partition(maps []Partition, workers int) ([][]Partition, error) {
	if workers <= 0 {
		return nil, fmt.Errorf("partition: %w", ErrNoWorkers)
	}

	// round half up, like Math.round on the float quotient
	perWorker := (2*len(maps) + workers) / (2 * workers)
	slog.Info("engine: partitioning", "maps", len(maps), "workers", workers, "perWorker", perWorker)

	queues := make([][]Partition, workers)
	for i := range workers {
		queue := make([]Partition, 0, perWorker)
		for j := range perWorker {
			idx := i*perWorker + j
			if idx >= len(maps) {
				slog.Warn("engine: overflowing with maps", "worker", i, "slot", j)
				continue
			}

			queue = append(queue, maps[idx])
		}

		queues[i] = queue
	}

	if assigned := workers * perWorker; assigned < len(maps) {
		slog.Warn("engine: maps left unassigned", "from", assigned, "count", len(maps)-assigned)
	}

	return queues, nil
}

type worker interface {
	ID() int
	Run(ctx context.Context) error
}

// runPhase starts every worker in its own goroutine and waits for all of
// them, even when one fails. A panicking worker is turned into an error.
func runPhase[W worker](ctx context.Context, phase Phase, workers []W) (time.Duration, error) {
	ctx, span := tracer.Start(ctx, caller.Name(), trace.WithAttributes(attribute.String("phase", string(phase))))
	defer span.End()

	slog.Info("engine: starting phase", "phase", phase, "workers", len(workers))
	start := time.Now()

	var g errgroup.Group
	for _, w := range workers {
		g.Go(func() (err error) {
			defer func() {
				if p := recover(); p != nil {
					err = fmt.Errorf("worker %d panicked: %v", w.ID(), p)
				}
			}()

			return w.Run(ctx)
		})
	}

	err := g.Wait()
	elapsed := time.Since(start)

	if err != nil {
		span.RecordError(err)
		return elapsed, fmt.Errorf("%s phase: %w", phase, err)
	}

	slog.Info("engine: finished phase", "phase", phase, "elapsed", elapsed)

	return elapsed, nil
}

func evenCeil(n int) int {
	if n&1 == 0 {
		return n
	}

	return n + 1
}
