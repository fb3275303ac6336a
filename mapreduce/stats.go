package mapreduce

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Stats keeps running means of how long a worker spent reading and writing
// its maps. It belongs to a single worker and is not safe for concurrent use.
type Stats struct {
	avgAccess time.Duration
	accessed  int64
	avgWrite  time.Duration
	written   int64
}

func (s *Stats) ObserveAccess(elapsed time.Duration) {
	s.accessed++
	s.avgAccess += (elapsed - s.avgAccess) / time.Duration(s.accessed)
}

func (s *Stats) ObserveWrite(elapsed time.Duration) {
	s.written++
	s.avgWrite += (elapsed - s.avgWrite) / time.Duration(s.written)
}

func (s *Stats) AvgAccess() time.Duration { return s.avgAccess }

func (s *Stats) AvgWrite() time.Duration { return s.avgWrite }

func (s *Stats) Accessed() int64 { return s.accessed }

func (s *Stats) Written() int64 { return s.written }

// Counters aggregates record counts of one run across all workers.
type Counters struct {
	Records         atomic.Uint64
	Shared          atomic.Uint64
	Unshared        atomic.Uint64
	ReducedShared   atomic.Uint64
	ReducedUnshared atomic.Uint64
	Dropped         atomic.Uint64
}

func (c *Counters) String() string {
	return fmt.Sprintf("Records: %d, Shared: %d, Unshared: %d, ReducedShared: %d, ReducedUnshared: %d, Dropped: %d",
		c.Records.Load(), c.Shared.Load(), c.Unshared.Load(),
		c.ReducedShared.Load(), c.ReducedUnshared.Load(), c.Dropped.Load())
}
