package mapreduce

import "context"

// Storage receives the reduced maps of a finished run when they are
// exported. Nothing in the pipeline reads it back.
//
// Buckets keep the output of different workers (and of their shared and
// unshared maps) apart.
type Storage interface {
	Get(ctx context.Context, bucket string, key string) ([]string, error)
	GetKeys(ctx context.Context, bucket string) ([]string, error)
	Append(ctx context.Context, bucket string, key string, vals []string) error
}
