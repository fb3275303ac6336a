package mapreduce

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/tymbaca/sharedkeys/pkg/caller"
	"github.com/tymbaca/sharedkeys/pkg/tracer"
)

// WriteTimings prints the phase duration followed by one line per worker
// with its mean access and write times.
func (r *Result) WriteTimings(w io.Writer) error {
	bw := bufio.NewWriter(w)

	writePhase(bw, PhaseMap, r.MapElapsed)
	for _, m := range r.Mappers {
		writeWorkerTimes(bw, m.ID(), m.Stats())
	}

	writePhase(bw, PhaseReduce, r.ReduceElapsed)
	for _, red := range r.Reducers {
		writeWorkerTimes(bw, red.ID(), red.Stats())
	}

	return bw.Flush()
}

func writePhase(w io.Writer, phase Phase, elapsed time.Duration) {
	fmt.Fprintf(w, "---- Finished %s phase in %s seconds. ----\n", phase, seconds(elapsed))
	fmt.Fprintln(w, "# Printing thread access and write/update time:")
}

func writeWorkerTimes(w io.Writer, id int, s *Stats) {
	fmt.Fprintf(w, "Thread %d access time %s s -- write/update time %s s\n",
		id, seconds(s.AvgAccess()), seconds(s.AvgWrite()))
}

// WriteDump prints every reduced map of every worker.
func (r *Result) WriteDump(w io.Writer) error {
	bw := bufio.NewWriter(w)

	for _, red := range r.Reducers {
		fmt.Fprintf(bw, "Thread %d\n", red.ID())

		fmt.Fprintln(bw, "  Reduced Shared Map:")
		for pair, keys := range red.ReducedShared().All() {
			fmt.Fprintf(bw, "    Key %s Value %s\n", pair, FormatKeys(keys))
		}

		fmt.Fprintln(bw, "  Reduced Unshared Map:")
		for val, keys := range red.ReducedUnshared().All() {
			fmt.Fprintf(bw, "    Key %s Value %s\n", val, FormatKeys(keys))
		}

		fmt.Fprintln(bw)
	}

	return bw.Flush()
}

// Export appends the reduced maps to st, one bucket per worker and map kind.
func (r *Result) Export(ctx context.Context, st Storage) error {
	ctx, span := tracer.Start(ctx, caller.Name())
	defer span.End()

	for _, red := range r.Reducers {
		bucket := SharedBucket(red.ID())
		for pair, keys := range red.ReducedShared().All() {
			if err := st.Append(ctx, bucket, pair.String(), keyStrings(keys)); err != nil {
				return fmt.Errorf("export %s: %w", bucket, err)
			}
		}

		bucket = UnsharedBucket(red.ID())
		for val, keys := range red.ReducedUnshared().All() {
			if err := st.Append(ctx, bucket, val.Payload, keyStrings(keys)); err != nil {
				return fmt.Errorf("export %s: %w", bucket, err)
			}
		}
	}

	return nil
}

func SharedBucket(workerID int) string {
	return fmt.Sprintf("worker-%d/shared", workerID)
}

func UnsharedBucket(workerID int) string {
	return fmt.Sprintf("worker-%d/unshared", workerID)
}

// FormatKeys renders keys as "[1, 2, 3]".
func FormatKeys(keys []Key) string {
	return "[" + strings.Join(keyStrings(keys), ", ") + "]"
}

func keyStrings(keys []Key) []string {
	strs := make([]string, len(keys))
	for i, k := range keys {
		strs[i] = strconv.FormatInt(int64(k), 10)
	}

	return strs
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'g', -1, 64)
}
