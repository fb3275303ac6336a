package bbolt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/tymbaca/sharedkeys/pkg/caller"
	"github.com/tymbaca/sharedkeys/pkg/tracer"
	"go.etcd.io/bbolt"
)

// Storage exports results to a bbolt file. Every bucket of the export is a
// bbolt bucket; values are stored as JSON string lists.
type Storage struct {
	db *bbolt.DB
}

func New(path string) (*Storage, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 30 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("create bbolt storage: %w", err)
	}

	return &Storage{
		db: db,
	}, nil
}

func (s *Storage) Get(ctx context.Context, bucket string, key string) ([]string, error) {
	_, span := tracer.Start(ctx, caller.Name())
	defer span.End()

	var vals []string

	err := s.db.View(func(tx *bbolt.Tx) error {
		buck := tx.Bucket([]byte(bucket))
		if buck == nil {
			return nil
		}

		var err error
		vals, err = get(buck, key)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", bucket, key, err)
	}

	return vals, nil
}

// GetKeys lists the keys of bucket in byte order.
func (s *Storage) GetKeys(ctx context.Context, bucket string) ([]string, error) {
	_, span := tracer.Start(ctx, caller.Name())
	defer span.End()

	var keys []string

	err := s.db.View(func(tx *bbolt.Tx) error {
		buck := tx.Bucket([]byte(bucket))
		if buck == nil {
			return nil
		}

		c := buck.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			keys = append(keys, string(k))
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get keys %s: %w", bucket, err)
	}

	return keys, nil
}

func (s *Storage) Append(ctx context.Context, bucket string, key string, newVals []string) error {
	_, span := tracer.Start(ctx, caller.Name())
	defer span.End()

	err := s.db.Update(func(tx *bbolt.Tx) error {
		buck, err := tx.CreateBucketIfNotExists([]byte(bucket))
		if err != nil {
			return err
		}

		vals, err := get(buck, key)
		if err != nil {
			return err
		}
		vals = append(vals, newVals...)

		data, err := json.Marshal(vals)
		if err != nil {
			return err
		}

		return buck.Put([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("append %s/%s: %w", bucket, key, err)
	}

	return nil
}

// Close must be called to release the database file.
func (s *Storage) Close() error {
	return s.db.Close()
}

// Destroy closes the database and removes the file.
func (s *Storage) Destroy() error {
	path := s.db.Path()
	return errors.Join(s.Close(), os.Remove(path))
}

func get(buck *bbolt.Bucket, key string) ([]string, error) {
	data := buck.Get([]byte(key))
	if len(data) == 0 {
		return nil, nil
	}

	var vals []string
	if err := json.Unmarshal(data, &vals); err != nil {
		return nil, fmt.Errorf("decode values: %w", err)
	}

	return vals, nil
}
